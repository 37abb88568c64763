package normalize

import (
	"aetherlens/domain/evidence"
)

// Report carries advisory counts from one normalization pass. Dropped
// elements are never an error — the counts exist so batch tooling can
// notice when the producer's schema starts drifting.
type Report struct {
	Dropped map[evidence.SectionKind]int `json:"dropped,omitempty"`
}

// detectionOrder is fixed: the dashboard relies on section position for
// visual hierarchy, with savings highlighted first.
var detectionOrder = []struct {
	kind   evidence.SectionKind
	detect detector
}{
	{evidence.KindSavings, detectSavings},
	{evidence.KindTopConsumers, detectTopConsumers},
	{evidence.KindPeakOffPeak, detectPeakOffPeak},
	{evidence.KindCandidates, detectCandidates},
	{evidence.KindFailure, detectFailure},
}

// Normalize reshapes one raw evidence object into render-ready sections.
// It is total: any JSON-decoded input, including nil, yields at least one
// section and never a panic. The input map is only read, never written.
func Normalize(obj map[string]interface{}) []evidence.Section {
	sections, _ := NormalizeWithReport(obj)
	return sections
}

// NormalizeWithReport is Normalize plus drop accounting.
func NormalizeWithReport(obj map[string]interface{}) ([]evidence.Section, Report) {
	report := Report{Dropped: make(map[evidence.SectionKind]int)}
	var sections []evidence.Section
	if obj != nil {
		for _, d := range detectionOrder {
			section, dropped := d.detect(obj)
			if dropped > 0 {
				report.Dropped[d.kind] += dropped
			}
			if section != nil {
				sections = append(sections, *section)
			}
		}
	}
	if len(sections) == 0 {
		sections = append(sections, evidence.Section{
			Kind: evidence.KindRawFallback,
			Raw:  obj,
		})
	}
	return sections, report
}
