package normalize

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"aetherlens/domain/evidence"
)

// A detector inspects raw evidence for one recognized shape and emits a
// section when it matches. Detectors never fail: malformed elements are
// dropped and reported through the dropped count so batch runs can surface
// producer schema drift, but nothing propagates an error.
type detector func(obj map[string]interface{}) (*evidence.Section, int)

// detectSavings triggers on the estimated-savings field. Every other field
// is optional and independently coerced, so the section always materializes
// once the trigger is present, even as all zeros.
func detectSavings(obj map[string]interface{}) (*evidence.Section, int) {
	if !aliasSavingsTrigger.present(obj) {
		return nil, 0
	}
	return &evidence.Section{
		Kind: evidence.KindSavings,
		Savings: &evidence.SavingsEvidence{
			EstimatedSavingsEUR:  aliasSavingsTrigger.resolveNumber(obj, 0),
			ShiftableKWh:         aliasShiftableKWh.resolveNumber(obj, 0),
			PeakRateEURPerKWh:    aliasPeakRate.resolveNumber(obj, 0),
			OffPeakRateEURPerKWh: aliasOffPeakRate.resolveNumber(obj, 0),
		},
	}, 0
}

// detectTopConsumers triggers on a top-consumers array. The maximum energy
// across the list is computed first because entries lacking an explicit
// percentage are expressed relative to it. Entries that are not objects or
// carry no entity id are skipped; an all-invalid list emits no section.
func detectTopConsumers(obj map[string]interface{}) (*evidence.Section, int) {
	list, ok := aliasTopConsumers.resolveList(obj)
	if !ok {
		return nil, 0
	}

	type rawConsumer struct {
		entry  map[string]interface{}
		id     string
		energy float64
	}
	valid := make([]rawConsumer, 0, len(list))
	energies := make([]float64, 0, len(list))
	dropped := 0
	for _, element := range list {
		entry, ok := element.(map[string]interface{})
		if !ok {
			dropped++
			continue
		}
		id, ok := aliasEntityID.resolveString(entry)
		if !ok {
			dropped++
			continue
		}
		energy := aliasEnergyKWh.resolveNumber(entry, 0)
		valid = append(valid, rawConsumer{entry: entry, id: id, energy: energy})
		energies = append(energies, energy)
	}
	if len(valid) == 0 {
		return nil, dropped
	}

	maxEnergy, err := stats.Max(energies)
	if err != nil {
		maxEnergy = 0
	}

	consumers := make([]evidence.ConsumerEntry, 0, len(valid))
	for _, rc := range valid {
		percent := 0.0
		if aliasPercentOfTotal.present(rc.entry) {
			percent = aliasPercentOfTotal.resolveNumber(rc.entry, 0)
		} else if maxEnergy > 0 {
			percent = rc.energy / maxEnergy * 100
		}
		consumers = append(consumers, evidence.ConsumerEntry{
			EntityID:       rc.id,
			EnergyKWh:      rc.energy,
			PercentOfTotal: percent,
		})
	}
	return &evidence.Section{
		Kind:         evidence.KindTopConsumers,
		TopConsumers: &evidence.TopConsumersEvidence{Consumers: consumers},
	}, dropped
}

// detectPeakOffPeak triggers only when both the peak and off-peak arrays
// are present; partial evidence stays invisible. Buckets whose hour cannot
// be parsed are dropped outright — a wrong hour bucket misleads the reader
// where a missing one merely thins the chart.
func detectPeakOffPeak(obj map[string]interface{}) (*evidence.Section, int) {
	peakList, peakOK := aliasPeakHours.resolveList(obj)
	offPeakList, offPeakOK := aliasOffPeakHours.resolveList(obj)
	if !peakOK || !offPeakOK {
		return nil, 0
	}

	peak, droppedPeak := normalizeHourBuckets(peakList)
	offPeak, droppedOff := normalizeHourBuckets(offPeakList)

	hasDetailedPeak := false
	for _, b := range peak {
		if b.EnergyKWh > 0 || b.PercentOfPeriod > 0 {
			hasDetailedPeak = true
			break
		}
	}
	return &evidence.Section{
		Kind: evidence.KindPeakOffPeak,
		PeakOffPeak: &evidence.PeakOffPeakEvidence{
			PeakHours:       peak,
			OffPeakHours:    offPeak,
			HasDetailedPeak: hasDetailedPeak,
		},
	}, droppedPeak + droppedOff
}

// normalizeHourBuckets accepts either bare timestamp strings or objects
// carrying an hour-start field under any recognized alias.
func normalizeHourBuckets(list []interface{}) ([]evidence.HourBucket, int) {
	buckets := make([]evidence.HourBucket, 0, len(list))
	dropped := 0
	for _, element := range list {
		switch v := element.(type) {
		case string:
			hour, ok := CoerceHourOfDay(v)
			if !ok {
				dropped++
				continue
			}
			buckets = append(buckets, evidence.HourBucket{Key: v, HourOfDay: hour})
		case map[string]interface{}:
			raw, ok := aliasHourStart.resolveRaw(v)
			if !ok {
				dropped++
				continue
			}
			hour, ok := CoerceHourOfDay(raw)
			if !ok {
				dropped++
				continue
			}
			key := fmt.Sprintf("%02d:00", hour)
			if s, ok := raw.(string); ok {
				key = s
			}
			buckets = append(buckets, evidence.HourBucket{
				Key:             key,
				HourOfDay:       hour,
				EnergyKWh:       aliasBucketKWh.resolveNumber(v, 0),
				PercentOfPeriod: aliasBucketShare.resolveNumber(v, 0),
			})
		default:
			dropped++
		}
	}
	return buckets, dropped
}

// detectCandidates triggers on a reported-candidates array. The peak-share
// chain intentionally treats an explicit zero the same as an absent field
// before falling through to the derived peakKWh/totalKWh ratio; the
// upstream producer has always been read that way and the dashboard depends
// on it.
func detectCandidates(obj map[string]interface{}) (*evidence.Section, int) {
	list, ok := aliasCandidates.resolveList(obj)
	if !ok {
		return nil, 0
	}

	candidates := make([]evidence.CandidateEntry, 0, len(list))
	dropped := 0
	for _, element := range list {
		entry, ok := element.(map[string]interface{})
		if !ok {
			dropped++
			continue
		}
		id, ok := aliasEntityID.resolveString(entry)
		if !ok {
			dropped++
			continue
		}
		total := aliasEnergyKWh.resolveNumber(entry, 0)

		share := 0.0
		for _, key := range aliasPeakShare {
			if v, present := entry[key]; present {
				if n := CoerceNumber(v, 0); n != 0 {
					share = n
					break
				}
			}
		}
		if share == 0 {
			if peakKWh := aliasPeakKWh.resolveNumber(entry, 0); peakKWh > 0 && total > 0 {
				share = peakKWh / total
			}
		}

		candidates = append(candidates, evidence.CandidateEntry{
			EntityID:   id,
			TotalKWh:   total,
			PeakShare:  share,
			IsFlexible: aliasFlexible.resolveBool(entry),
		})
	}
	if len(candidates) == 0 {
		return nil, dropped
	}
	return &evidence.Section{
		Kind:       evidence.KindCandidates,
		Candidates: &evidence.CandidatesEvidence{Candidates: candidates},
	}, dropped
}

// detectFailure triggers on an exit-code field. It is independent of the
// other detectors: a failed run can still ship partial evidence alongside.
func detectFailure(obj map[string]interface{}) (*evidence.Section, int) {
	if !aliasExitCode.present(obj) {
		return nil, 0
	}
	return &evidence.Section{
		Kind: evidence.KindFailure,
		Failure: &evidence.FailureEvidence{
			ExitCode: int(aliasExitCode.resolveNumber(obj, 0)),
			TimedOut: aliasTimedOut.resolveBool(obj),
		},
	}, 0
}
