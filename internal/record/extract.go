package record

import "github.com/mansoorceksport/liftlog/internal/domain"

// Value extracts the scalar tracked by a record type from a set.
// ok is false when the type does not apply to the set or the exercise shape.
func Value(rt domain.RecordType, set *domain.LoggedSet, isTimed bool) (float64, bool) {
	switch rt {
	case domain.RecordMaxWeight:
		if set.Weight == nil {
			return 0, false
		}
		return *set.Weight, true
	case domain.RecordMaxReps:
		if isTimed || set.Reps == nil {
			return 0, false
		}
		return float64(*set.Reps), true
	case domain.RecordMaxTime:
		if !isTimed || set.TimeSeconds == nil {
			return 0, false
		}
		return float64(*set.TimeSeconds), true
	case domain.RecordMaxVolume:
		return Volume(set)
	}
	return 0, false
}

// Volume returns weight x reps, falling back to weight x seconds for loaded
// timed sets. Unloaded sets have no volume.
func Volume(set *domain.LoggedSet) (float64, bool) {
	if set.Weight == nil {
		return 0, false
	}
	if set.Reps != nil {
		return *set.Weight * float64(*set.Reps), true
	}
	if set.TimeSeconds != nil {
		return *set.Weight * float64(*set.TimeSeconds), true
	}
	return 0, false
}

// Estimated1RM applies the Epley formula. A single rep is the weight itself.
func Estimated1RM(weight float64, reps int) (float64, bool) {
	if reps <= 0 {
		return 0, false
	}
	if reps == 1 {
		return weight, true
	}
	return weight * (1 + float64(reps)/30), true
}
