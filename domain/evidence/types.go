package evidence

// SectionKind identifies the visual family a normalized section belongs to.
type SectionKind string

const (
	KindSavings      SectionKind = "savings"
	KindTopConsumers SectionKind = "top_consumers"
	KindPeakOffPeak  SectionKind = "peak_off_peak"
	KindCandidates   SectionKind = "candidates"
	KindFailure      SectionKind = "failure"
	KindRawFallback  SectionKind = "raw_fallback"
)

// Section is one render-ready chunk of normalized insight evidence.
// Exactly one payload pointer is populated, matching Kind. Sections are
// constructed fresh per normalization call and never shared or mutated.
type Section struct {
	Kind SectionKind `json:"kind"`

	Savings      *SavingsEvidence      `json:"savings,omitempty"`
	TopConsumers *TopConsumersEvidence `json:"top_consumers,omitempty"`
	PeakOffPeak  *PeakOffPeakEvidence  `json:"peak_off_peak,omitempty"`
	Candidates   *CandidatesEvidence   `json:"candidates,omitempty"`
	Failure      *FailureEvidence      `json:"failure,omitempty"`

	// Raw carries the original evidence object verbatim when no detector
	// recognized it. It aliases the caller's map and must not be written to.
	Raw map[string]interface{} `json:"raw,omitempty"`
}

// NumericEntry is the generic proportional-bar record the rendering layer
// consumes. NumericValue and Percentage are always finite.
type NumericEntry struct {
	Key          string  `json:"key"`
	NumericValue float64 `json:"numeric_value"`
	Percentage   float64 `json:"percentage"`
}

// SavingsEvidence summarizes projected cost savings for an insight.
// Every field is independently coerced with a zero fallback, so a savings
// section can legitimately render as all zeros.
type SavingsEvidence struct {
	EstimatedSavingsEUR  float64 `json:"estimated_savings_eur"`
	ShiftableKWh         float64 `json:"shiftable_kwh"`
	PeakRateEURPerKWh    float64 `json:"peak_rate_eur_kwh"`
	OffPeakRateEURPerKWh float64 `json:"offpeak_rate_eur_kwh"`
}

// ConsumerEntry is one entity in a top-consumers breakdown.
type ConsumerEntry struct {
	EntityID       string  `json:"entity_id"`
	EnergyKWh      float64 `json:"energy_kwh"`
	PercentOfTotal float64 `json:"percent_of_total"`
}

// TopConsumersEvidence lists the highest-usage entities for the period.
type TopConsumersEvidence struct {
	Consumers []ConsumerEntry `json:"consumers"`
}

// HourBucket classifies one hour of the day with its energy and share of
// the period. HourOfDay is always in [0,23]; buckets whose hour could not
// be determined are dropped upstream rather than defaulted.
type HourBucket struct {
	Key             string  `json:"key"`
	HourOfDay       int     `json:"hour_of_day"`
	EnergyKWh       float64 `json:"energy_kwh"`
	PercentOfPeriod float64 `json:"percent_of_period"`
}

// PeakOffPeakEvidence carries the peak/off-peak hour classification.
// HasDetailedPeak reports whether any peak bucket carries a nonzero energy
// or share, which switches the renderer between a proportional bar and a
// flat "Peak" label.
type PeakOffPeakEvidence struct {
	PeakHours       []HourBucket `json:"peak_hours"`
	OffPeakHours    []HourBucket `json:"off_peak_hours"`
	HasDetailedPeak bool         `json:"has_detailed_peak"`
}

// CandidateEntry is one load-shifting candidate entity.
// PeakShare is a ratio in [0,1], not a percentage.
type CandidateEntry struct {
	EntityID   string  `json:"entity_id"`
	TotalKWh   float64 `json:"total_kwh"`
	PeakShare  float64 `json:"peak_share"`
	IsFlexible bool    `json:"is_flexible"`
}

// CandidatesEvidence lists entities reported as shifting candidates.
type CandidatesEvidence struct {
	Candidates []CandidateEntry `json:"candidates"`
}

// FailureEvidence reports an analysis run that exited abnormally.
type FailureEvidence struct {
	ExitCode int  `json:"exit_code"`
	TimedOut bool `json:"timed_out"`
}

// Rows flattens the consumer breakdown into generic render rows.
func (t *TopConsumersEvidence) Rows() []NumericEntry {
	rows := make([]NumericEntry, 0, len(t.Consumers))
	for _, c := range t.Consumers {
		rows = append(rows, NumericEntry{
			Key:          c.EntityID,
			NumericValue: c.EnergyKWh,
			Percentage:   c.PercentOfTotal,
		})
	}
	return rows
}

// PeakRows flattens the peak buckets into generic render rows.
func (p *PeakOffPeakEvidence) PeakRows() []NumericEntry {
	return bucketRows(p.PeakHours)
}

// OffPeakRows flattens the off-peak buckets into generic render rows.
func (p *PeakOffPeakEvidence) OffPeakRows() []NumericEntry {
	return bucketRows(p.OffPeakHours)
}

func bucketRows(buckets []HourBucket) []NumericEntry {
	rows := make([]NumericEntry, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, NumericEntry{
			Key:          b.Key,
			NumericValue: b.EnergyKWh,
			Percentage:   b.PercentOfPeriod,
		})
	}
	return rows
}
