package testkit

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// EvidenceGeneratorConfig configures the synthetic evidence generator
type EvidenceGeneratorConfig struct {
	Seed int64 `json:"seed"`
	// MalformedRate is the probability that a generated array element is
	// deliberately broken (wrong type, missing id, garbage timestamp).
	MalformedRate float64 `json:"malformed_rate"`
	// EntityCount bounds the synthetic entity pool.
	EntityCount int `json:"entity_count"`
}

// DefaultEvidenceConfig returns sensible defaults for evidence generation
func DefaultEvidenceConfig() EvidenceGeneratorConfig {
	return EvidenceGeneratorConfig{
		Seed:          42,
		MalformedRate: 0.15,
		EntityCount:   25,
	}
}

// EvidenceGenerator produces randomized evidence payloads that exercise
// every alias spelling and malformed-shape branch the normalizer tolerates.
// The output deliberately mimics an LLM producer: field names rotate
// between synonyms, derivable fields go missing, and a slice of elements
// is plain junk.
type EvidenceGenerator struct {
	config EvidenceGeneratorConfig
	rng    *rand.Rand
}

// NewEvidenceGenerator creates a generator with a deterministic seed
func NewEvidenceGenerator(config EvidenceGeneratorConfig) *EvidenceGenerator {
	return &EvidenceGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate produces n evidence payloads, each with a random subset of the
// recognized shapes (possibly none, to hit the fallback path).
func (g *EvidenceGenerator) Generate(n int) []map[string]interface{} {
	payloads := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		payloads = append(payloads, g.generateOne())
	}
	return payloads
}

func (g *EvidenceGenerator) generateOne() map[string]interface{} {
	obj := map[string]interface{}{
		"analysis_id": uuid.NewString(),
		"model":       "aether-insight-v2",
	}
	if g.rng.Float64() < 0.6 {
		g.addSavings(obj)
	}
	if g.rng.Float64() < 0.6 {
		obj["top_consumers"] = g.generateConsumers()
	}
	if g.rng.Float64() < 0.5 {
		obj["peak_hours"] = g.generateHourBuckets(true)
		obj[g.pick("off_peak_hours", "offpeak_hours")] = g.generateHourBuckets(false)
	} else if g.rng.Float64() < 0.2 {
		// Partial peak evidence: must not produce a section.
		obj["peak_hours"] = g.generateHourBuckets(true)
	}
	if g.rng.Float64() < 0.5 {
		obj[g.pick("candidates", "shifting_candidates")] = g.generateCandidates()
	}
	if g.rng.Float64() < 0.2 {
		obj["exit_code"] = g.rng.Intn(3)
		obj["timed_out"] = g.pick2(true, "yes")
	}
	return obj
}

func (g *EvidenceGenerator) addSavings(obj map[string]interface{}) {
	obj[g.pick("estimated_savings_eur", "estimated_cost_savings")] = g.numericish(g.rng.Float64() * 40)
	if g.rng.Float64() < 0.7 {
		obj[g.pick("shiftable_kwh", "shiftable_energy_kwh")] = g.numericish(g.rng.Float64() * 12)
	}
	if g.rng.Float64() < 0.5 {
		obj[g.pick("peak_rate_eur_kwh", "peak_rate")] = 0.38
		obj[g.pick("offpeak_rate_eur_kwh", "off_peak_rate")] = 0.21
	}
}

func (g *EvidenceGenerator) generateConsumers() []interface{} {
	count := 1 + g.rng.Intn(6)
	list := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		if g.rng.Float64() < g.config.MalformedRate {
			list = append(list, g.junk())
			continue
		}
		entry := map[string]interface{}{
			g.pick("entity_id", "entity", "name"): g.entityID(),
			g.pick("total_kwh", "kwh"):            g.numericish(g.rng.Float64() * 30),
		}
		if g.rng.Float64() < 0.4 {
			entry[g.pick("percent_of_total", "percentage", "share_pct")] = g.rng.Float64() * 100
		}
		list = append(list, entry)
	}
	return list
}

func (g *EvidenceGenerator) generateHourBuckets(peak bool) []interface{} {
	count := 1 + g.rng.Intn(5)
	list := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		if g.rng.Float64() < g.config.MalformedRate {
			list = append(list, g.pick2("not-a-timestamp", 99))
			continue
		}
		hour := g.rng.Intn(24)
		if g.rng.Float64() < 0.3 {
			list = append(list, fmt.Sprintf("2026-08-%02dT%02d:00:00Z", 1+g.rng.Intn(28), hour))
			continue
		}
		entry := map[string]interface{}{
			g.pick("hour", "hour_start", "timestamp"): hour,
		}
		if peak && g.rng.Float64() < 0.7 {
			entry[g.pick("kwh", "energy_kwh")] = g.rng.Float64() * 5
			entry[g.pick("percent", "share", "pct_of_day")] = g.rng.Float64() * 20
		}
		list = append(list, entry)
	}
	return list
}

func (g *EvidenceGenerator) generateCandidates() []interface{} {
	count := 1 + g.rng.Intn(4)
	list := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		if g.rng.Float64() < g.config.MalformedRate {
			list = append(list, g.junk())
			continue
		}
		total := 5 + g.rng.Float64()*25
		entry := map[string]interface{}{
			"entity_id": g.entityID(),
			"total_kwh": total,
		}
		switch g.rng.Intn(3) {
		case 0:
			entry[g.pick("share_in_peak", "peak_share")] = g.rng.Float64()
		case 1:
			entry["kwh_in_peak_hours"] = total * g.rng.Float64()
		}
		if g.rng.Float64() < 0.6 {
			entry[g.pick("is_flexible", "flexible", "shiftable")] = g.pick2(true, "yes")
		}
		list = append(list, entry)
	}
	return list
}

func (g *EvidenceGenerator) entityID() string {
	domains := []string{"water_heater", "dishwasher", "ev_charger", "heat_pump", "dryer"}
	return fmt.Sprintf("switch.%s_%02d", domains[g.rng.Intn(len(domains))], g.rng.Intn(g.config.EntityCount))
}

// numericish sometimes renders a number as its string form, the way the
// producer does.
func (g *EvidenceGenerator) numericish(f float64) interface{} {
	if g.rng.Float64() < 0.3 {
		return fmt.Sprintf("%.2f", f)
	}
	return f
}

func (g *EvidenceGenerator) junk() interface{} {
	junk := []interface{}{
		"garbage",
		42.0,
		nil,
		[]interface{}{"nested"},
		map[string]interface{}{"unrelated": true},
	}
	return junk[g.rng.Intn(len(junk))]
}

func (g *EvidenceGenerator) pick(a, b string, more ...string) string {
	options := append([]string{a, b}, more...)
	return options[g.rng.Intn(len(options))]
}

func (g *EvidenceGenerator) pick2(a, b interface{}) interface{} {
	if g.rng.Intn(2) == 0 {
		return a
	}
	return b
}
