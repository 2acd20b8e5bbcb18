// Package record decides whether logged sets establish personal records.
//
// Evaluation is pure: current state goes in, deltas come out, and storage is
// never touched. Persisting an update is the caller's job and must be done
// with a compare-and-set so that a lost race can be retried by evaluating
// again against the fresh state.
package record

import (
	"fmt"

	"github.com/mansoorceksport/liftlog/internal/domain"
)

type bestKey struct {
	userID     string
	exerciseID string
	recordType domain.RecordType
}

// EvaluateSet returns one update per record type the set improves on.
// current holds the user's stored records for the set's exercise.
// Warmup and dropset sets never produce updates.
func EvaluateSet(set *domain.LoggedSet, meta domain.ExerciseMeta, current []*domain.PersonalRecord) ([]domain.RecordUpdate, error) {
	if set != nil && !set.CountsForRecords() {
		return []domain.RecordUpdate{}, nil
	}
	if err := ValidateSet(set); err != nil {
		return nil, err
	}
	if meta.ExerciseID != "" && meta.ExerciseID != set.ExerciseID {
		return nil, fmt.Errorf("%w: metadata for %s given for set of %s",
			domain.ErrUnknownExercise, meta.ExerciseID, set.ExerciseID)
	}

	best := make(map[domain.RecordType]float64, len(current))
	for _, rec := range current {
		if rec == nil {
			continue
		}
		if rec.UserID != set.UserID || rec.ExerciseID != set.ExerciseID {
			return nil, fmt.Errorf("%w: record %s/%s does not belong to set %s/%s",
				domain.ErrInvalidRecordState, rec.UserID, rec.ExerciseID, set.UserID, set.ExerciseID)
		}
		if !rec.RecordType.Valid() {
			return nil, fmt.Errorf("%w: unknown record type %q", domain.ErrInvalidRecordState, rec.RecordType)
		}
		if _, dup := best[rec.RecordType]; dup {
			return nil, fmt.Errorf("%w: duplicate %s record", domain.ErrInvalidRecordState, rec.RecordType)
		}
		best[rec.RecordType] = rec.Value
	}

	return evaluate(set, meta.IsTimed, func(rt domain.RecordType) (float64, bool) {
		v, ok := best[rt]
		return v, ok
	}), nil
}

// EvaluateBatch replays sets in chronological order for backfills and imports.
// Every set is judged against the running best, seeded from initial, so a
// sequence of improving sets registers each step. Sets must already be sorted
// by LoggedAt ascending; out-of-order input is rejected, never re-sorted.
func EvaluateBatch(sets []*domain.LoggedSet, catalog domain.ExerciseCatalog, initial []*domain.PersonalRecord) ([]domain.RecordUpdate, error) {
	if err := CheckOrder(sets); err != nil {
		return nil, err
	}

	best := make(map[bestKey]float64, len(initial))
	for _, rec := range initial {
		if rec == nil {
			continue
		}
		if !rec.RecordType.Valid() {
			return nil, fmt.Errorf("%w: unknown record type %q", domain.ErrInvalidRecordState, rec.RecordType)
		}
		key := bestKey{userID: rec.UserID, exerciseID: rec.ExerciseID, recordType: rec.RecordType}
		if _, dup := best[key]; dup {
			return nil, fmt.Errorf("%w: duplicate %s record for exercise %s",
				domain.ErrInvalidRecordState, rec.RecordType, rec.ExerciseID)
		}
		best[key] = rec.Value
	}

	updates := make([]domain.RecordUpdate, 0)
	for i, set := range sets {
		if !set.CountsForRecords() {
			continue
		}
		if err := ValidateSet(set); err != nil {
			return nil, fmt.Errorf("set %d: %w", i, err)
		}
		meta, ok := catalog.Lookup(set.ExerciseID)
		if !ok {
			return nil, fmt.Errorf("set %d: %w: %s", i, domain.ErrUnknownExercise, set.ExerciseID)
		}

		found := evaluate(set, meta.IsTimed, func(rt domain.RecordType) (float64, bool) {
			v, ok := best[bestKey{userID: set.UserID, exerciseID: set.ExerciseID, recordType: rt}]
			return v, ok
		})
		for _, u := range found {
			best[bestKey{userID: u.UserID, exerciseID: u.ExerciseID, recordType: u.RecordType}] = u.Value
		}
		updates = append(updates, found...)
	}
	return updates, nil
}

// CheckOrder rejects sets whose LoggedAt precedes the previous set's.
// Equal timestamps keep their given order.
func CheckOrder(sets []*domain.LoggedSet) error {
	for i, set := range sets {
		if set == nil {
			return fmt.Errorf("%w: set %d is nil", domain.ErrInvalidSet, i)
		}
		if i > 0 && set.LoggedAt.Before(sets[i-1].LoggedAt) {
			return fmt.Errorf("%w: set %d (%s) logged at %s precedes set %d logged at %s",
				domain.ErrOrderingViolation, i, sets[i].ID, sets[i].LoggedAt.Format("2006-01-02T15:04:05Z07:00"),
				i-1, sets[i-1].LoggedAt.Format("2006-01-02T15:04:05Z07:00"))
		}
	}
	return nil
}

// evaluate compares every applicable record type against the stored best.
func evaluate(set *domain.LoggedSet, isTimed bool, stored func(domain.RecordType) (float64, bool)) []domain.RecordUpdate {
	updates := make([]domain.RecordUpdate, 0, len(domain.AllRecordTypes))
	for _, rt := range domain.AllRecordTypes {
		value, ok := Value(rt, set, isTimed)
		if !ok {
			continue
		}
		previous, exists := stored(rt)
		if exists && value <= previous {
			continue
		}
		updates = append(updates, newUpdate(set, rt, value, previous, exists))
	}
	return updates
}

func newUpdate(set *domain.LoggedSet, rt domain.RecordType, value, previous float64, hasPrevious bool) domain.RecordUpdate {
	u := domain.RecordUpdate{
		UserID:     set.UserID,
		ExerciseID: set.ExerciseID,
		RecordType: rt,
		Value:      value,
		SetID:      set.ID,
		AchievedAt: set.LoggedAt,
	}
	if !hasPrevious {
		return u
	}
	return Rebase(u, &previous)
}

// Rebase recomputes the previous value and improvement of u against the value
// storage actually replaced. A nil previous marks an initial record.
func Rebase(u domain.RecordUpdate, previous *float64) domain.RecordUpdate {
	u.Previous, u.Improvement, u.ImprovementPct = nil, nil, nil
	if previous == nil {
		return u
	}

	prev := *previous
	improvement := u.Value - prev
	u.Previous = &prev
	u.Improvement = &improvement
	if prev > 0 {
		pct := improvement / prev * 100
		u.ImprovementPct = &pct
	}
	return u
}
