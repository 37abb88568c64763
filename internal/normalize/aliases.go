package normalize

// The upstream producer is a language model: the same logical quantity can
// arrive under several spellings, and new spellings show up without notice.
// Every recognized quantity is declared here as an ordered alias list and
// resolved through one helper, so the whole recognition surface is in one
// auditable table instead of scattered lookup chains.

type aliasList []string

var (
	aliasSavingsTrigger = aliasList{"estimated_savings_eur", "estimated_cost_savings"}
	aliasShiftableKWh   = aliasList{"shiftable_kwh", "shiftable_energy_kwh"}
	aliasPeakRate       = aliasList{"peak_rate_eur_kwh", "peak_rate"}
	aliasOffPeakRate    = aliasList{"offpeak_rate_eur_kwh", "off_peak_rate"}

	aliasTopConsumers   = aliasList{"top_consumers"}
	aliasEntityID       = aliasList{"entity_id", "entity", "name"}
	aliasEnergyKWh      = aliasList{"total_kwh", "kwh"}
	aliasPercentOfTotal = aliasList{"percent_of_total", "percentage", "share_pct"}

	aliasPeakHours    = aliasList{"peak_hours"}
	aliasOffPeakHours = aliasList{"off_peak_hours", "offpeak_hours"}
	aliasHourStart    = aliasList{"hour", "hour_start", "timestamp"}
	aliasBucketKWh    = aliasList{"kwh", "energy_kwh"}
	aliasBucketShare  = aliasList{"percent", "share", "pct_of_day"}

	aliasCandidates = aliasList{"candidates", "shifting_candidates"}
	aliasPeakShare  = aliasList{"share_in_peak", "peak_share"}
	aliasPeakKWh    = aliasList{"kwh_in_peak_hours"}
	aliasFlexible   = aliasList{"is_flexible", "flexible", "shiftable"}

	aliasExitCode = aliasList{"exit_code"}
	aliasTimedOut = aliasList{"timed_out"}
)

// resolveRaw returns the first alias present in obj, in declaration order.
// Presence wins over value: a field set to null still resolves.
func (a aliasList) resolveRaw(obj map[string]interface{}) (interface{}, bool) {
	for _, key := range a {
		if v, ok := obj[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// resolveNumber resolves the first present alias and coerces it, returning
// fallback when every alias is absent or the value is not numeric.
func (a aliasList) resolveNumber(obj map[string]interface{}, fallback float64) float64 {
	if v, ok := a.resolveRaw(obj); ok {
		return CoerceNumber(v, fallback)
	}
	return fallback
}

// resolveString resolves the first present alias whose value is a non-empty
// string.
func (a aliasList) resolveString(obj map[string]interface{}) (string, bool) {
	for _, key := range a {
		if v, ok := obj[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// resolveBool resolves the first present alias and coerces it to a strict
// bool, defaulting to false.
func (a aliasList) resolveBool(obj map[string]interface{}) bool {
	if v, ok := a.resolveRaw(obj); ok {
		return CoerceBool(v)
	}
	return false
}

// present reports whether any alias exists as a key in obj.
func (a aliasList) present(obj map[string]interface{}) bool {
	_, ok := a.resolveRaw(obj)
	return ok
}

// resolveList resolves the first present alias whose value is an array.
// A present alias holding a non-array resolves to (nil, false): the caller
// treats the whole quantity as absent rather than half-processing it.
func (a aliasList) resolveList(obj map[string]interface{}) ([]interface{}, bool) {
	v, ok := a.resolveRaw(obj)
	if !ok {
		return nil, false
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	return list, true
}
