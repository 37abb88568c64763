package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// CoerceNumber converts a loosely-typed value into a finite float64,
// returning fallback when the value is absent, non-numeric, NaN or
// infinite. Every detector routes numeric extraction through here so the
// fallback policy stays uniform and nothing ever panics on LLM output.
func CoerceNumber(value interface{}, fallback float64) float64 {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback
		}
		return v
	case float32:
		return CoerceNumber(float64(v), fallback)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		return CoerceNumber(v.String(), fallback)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}

// CoerceBool converts boolean-ish values (bool, "true"/"yes"/"on", nonzero
// numbers) to a strict bool, defaulting to false.
func CoerceBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "y", "on":
			return true
		}
		return false
	case float64:
		return v != 0 && !math.IsNaN(v)
	case int:
		return v != 0
	default:
		return false
	}
}

// hourLayouts are tried in order when an hour start arrives as a timestamp.
var hourLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"15:04",
}

// CoerceHourOfDay extracts an hour in [0,23] from an integer, a numeric
// string, or a timestamp string. The second return is false when no valid
// hour can be determined; callers drop the element in that case instead of
// bucketing it at a wrong hour.
func CoerceHourOfDay(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		return hourFromNumber(v)
	case int:
		return hourFromNumber(float64(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return hourFromNumber(f)
		}
		return 0, false
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return hourFromNumber(f)
		}
		for _, layout := range hourLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Hour(), true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

func hourFromNumber(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	h := int(f)
	if float64(h) != f || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}
