package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aetherlens/domain/evidence"
	"aetherlens/internal/testkit"
)

func TestNormalizeFallbackTotality(t *testing.T) {
	obj := map[string]interface{}{"foo": "bar"}
	sections := Normalize(obj)
	require.Len(t, sections, 1)
	assert.Equal(t, evidence.KindRawFallback, sections[0].Kind)
	assert.Equal(t, obj, sections[0].Raw)
}

func TestNormalizeNilAndEmpty(t *testing.T) {
	sections := Normalize(nil)
	require.Len(t, sections, 1)
	assert.Equal(t, evidence.KindRawFallback, sections[0].Kind)

	sections = Normalize(map[string]interface{}{})
	require.Len(t, sections, 1)
	assert.Equal(t, evidence.KindRawFallback, sections[0].Kind)
}

func TestNormalizeSectionOrder(t *testing.T) {
	// Savings and failure triggers on the same object: savings must come
	// first regardless of key order.
	sections := Normalize(map[string]interface{}{
		"exit_code":             1.0,
		"estimated_savings_eur": 4.2,
	})
	require.Len(t, sections, 2)
	assert.Equal(t, evidence.KindSavings, sections[0].Kind)
	assert.Equal(t, evidence.KindFailure, sections[1].Kind)
}

func TestNormalizeMultipleSections(t *testing.T) {
	sections := Normalize(map[string]interface{}{
		"estimated_savings_eur": 4.2,
		"top_consumers": []interface{}{
			map[string]interface{}{"entity_id": "a", "total_kwh": 10.0},
		},
		"peak_hours":     []interface{}{map[string]interface{}{"hour": 18}},
		"off_peak_hours": []interface{}{map[string]interface{}{"hour": 3}},
		"candidates": []interface{}{
			map[string]interface{}{"entity_id": "a", "total_kwh": 10.0},
		},
		"exit_code": 0.0,
		"unrelated": "ignored",
	})
	kinds := make([]evidence.SectionKind, 0, len(sections))
	for _, s := range sections {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []evidence.SectionKind{
		evidence.KindSavings,
		evidence.KindTopConsumers,
		evidence.KindPeakOffPeak,
		evidence.KindCandidates,
		evidence.KindFailure,
	}, kinds)
}

func TestNormalizeWrongTypeTriggersNoOp(t *testing.T) {
	// Array triggers holding non-arrays no-op their detector entirely, so
	// the only section left is the fallback.
	sections := Normalize(map[string]interface{}{
		"top_consumers":  "wrong",
		"candidates":     42.0,
		"peak_hours":     map[string]interface{}{},
		"off_peak_hours": []interface{}{},
	})
	require.Len(t, sections, 1)
	assert.Equal(t, evidence.KindRawFallback, sections[0].Kind)
}

func TestNormalizeDeterministic(t *testing.T) {
	payloads := testkit.NewEvidenceGenerator(testkit.DefaultEvidenceConfig()).Generate(50)
	for _, payload := range payloads {
		first := Normalize(payload)
		second := Normalize(payload)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("normalization of %v is not deterministic", payload)
		}
	}
}

func TestNormalizeTotalityOverGeneratedCorpus(t *testing.T) {
	config := testkit.DefaultEvidenceConfig()
	config.MalformedRate = 0.4
	payloads := testkit.NewEvidenceGenerator(config).Generate(500)

	for _, payload := range payloads {
		sections, report := NormalizeWithReport(payload)
		require.NotEmpty(t, sections, "every input must yield at least one section")
		for _, section := range sections {
			assertSectionSane(t, section)
		}
		for kind, dropped := range report.Dropped {
			assert.Greater(t, dropped, 0, "reported drop count for %s must be positive", kind)
		}
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	payload := map[string]interface{}{
		"estimated_savings_eur": "4.2",
		"top_consumers": []interface{}{
			map[string]interface{}{"entity_id": "a", "total_kwh": 10.0},
			"junk",
		},
	}
	before, err := json.Marshal(payload)
	require.NoError(t, err)

	Normalize(payload)

	after, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func assertSectionSane(t *testing.T, section evidence.Section) {
	t.Helper()
	switch section.Kind {
	case evidence.KindTopConsumers:
		require.NotEmpty(t, section.TopConsumers.Consumers)
		for _, c := range section.TopConsumers.Consumers {
			assert.NotEmpty(t, c.EntityID)
		}
	case evidence.KindPeakOffPeak:
		for _, b := range append(section.PeakOffPeak.PeakHours, section.PeakOffPeak.OffPeakHours...) {
			assert.GreaterOrEqual(t, b.HourOfDay, 0)
			assert.LessOrEqual(t, b.HourOfDay, 23)
		}
	case evidence.KindCandidates:
		require.NotEmpty(t, section.Candidates.Candidates)
	}
}
