package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aetherlens/domain/evidence"
	"aetherlens/internal"
	"aetherlens/internal/testkit"
	"aetherlens/ports"
)

type staticSource struct {
	envelopes []ports.Envelope
	err       error
}

func (s *staticSource) Read(ctx context.Context) ([]ports.Envelope, error) {
	return s.envelopes, s.err
}

func quietLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

func TestBatchRunPreservesSourceOrder(t *testing.T) {
	source := &staticSource{envelopes: []ports.Envelope{
		{InsightID: "first", Payload: map[string]interface{}{"estimated_savings_eur": 10.0}},
		{InsightID: "second", Payload: map[string]interface{}{"exit_code": 1.0}},
		{InsightID: "third", Payload: map[string]interface{}{"foo": "bar"}},
	}}

	var out bytes.Buffer
	batch := NewBatchNormalizer(source, quietLogger(), 8, false)
	report, err := batch.Run(context.Background(), &out)
	require.NoError(t, err)

	var ids []string
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var insight NormalizedInsight
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &insight))
		ids = append(ids, insight.InsightID)
	}
	assert.Equal(t, []string{"first", "second", "third"}, ids)

	assert.Equal(t, 3, report.Envelopes)
	assert.Equal(t, 1, report.SectionCounts[evidence.KindSavings])
	assert.Equal(t, 1, report.SectionCounts[evidence.KindFailure])
	assert.Equal(t, 1, report.SectionCounts[evidence.KindRawFallback])
	assert.Equal(t, 10.0, report.MaxEstimatedSavingsEUR)
	assert.Equal(t, 1.0, report.MeanSectionsPerInsight)
	assert.NotEmpty(t, report.RunID)
}

func TestBatchRunAggregatesDrops(t *testing.T) {
	source := &staticSource{envelopes: []ports.Envelope{
		{InsightID: "a", Payload: map[string]interface{}{
			"top_consumers": []interface{}{
				"junk",
				map[string]interface{}{"entity_id": "x", "total_kwh": 1.0},
			},
		}},
		{InsightID: "b", Payload: map[string]interface{}{
			"top_consumers": []interface{}{"junk"},
		}},
	}}

	var out bytes.Buffer
	batch := NewBatchNormalizer(source, quietLogger(), 2, false)
	report, err := batch.Run(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, report.DroppedElements[evidence.KindTopConsumers])
}

func TestBatchRunGeneratedCorpus(t *testing.T) {
	payloads := testkit.NewEvidenceGenerator(testkit.DefaultEvidenceConfig()).Generate(120)
	envelopes := make([]ports.Envelope, 0, len(payloads))
	for i, payload := range payloads {
		envelopes = append(envelopes, ports.Envelope{InsightID: string(rune('a' + i%26)), Payload: payload})
	}

	var out bytes.Buffer
	batch := NewBatchNormalizer(&staticSource{envelopes: envelopes}, quietLogger(), 4, false)
	report, err := batch.Run(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, len(envelopes), report.Envelopes)
	assert.GreaterOrEqual(t, report.MeanSectionsPerInsight, 1.0, "every insight yields at least one section")
}

func TestBatchRunSourceError(t *testing.T) {
	source := &staticSource{err: assert.AnError}
	batch := NewBatchNormalizer(source, quietLogger(), 1, false)
	_, err := batch.Run(context.Background(), &bytes.Buffer{})
	assert.Error(t, err)
}
