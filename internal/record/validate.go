package record

import (
	"fmt"
	"math"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"go.uber.org/multierr"
)

const (
	minRPE = 1
	maxRPE = 10
)

// ValidateSet reports every malformed field of a set at once.
// Each returned error wraps domain.ErrInvalidSet.
func ValidateSet(set *domain.LoggedSet) error {
	if set == nil {
		return fmt.Errorf("%w: set is nil", domain.ErrInvalidSet)
	}

	var err error
	if set.UserID == "" {
		err = multierr.Append(err, fmt.Errorf("%w: user_id is required", domain.ErrInvalidSet))
	}
	if set.ExerciseID == "" {
		err = multierr.Append(err, fmt.Errorf("%w: exercise_id is required", domain.ErrInvalidSet))
	}
	if set.LoggedAt.IsZero() {
		err = multierr.Append(err, fmt.Errorf("%w: logged_at is required", domain.ErrInvalidSet))
	}
	if w := set.Weight; w != nil && (*w < 0 || math.IsNaN(*w) || math.IsInf(*w, 0)) {
		err = multierr.Append(err, fmt.Errorf("%w: weight must be a non-negative number, got %v", domain.ErrInvalidSet, *w))
	}
	if r := set.Reps; r != nil && *r < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: reps must be non-negative, got %d", domain.ErrInvalidSet, *r))
	}
	if t := set.TimeSeconds; t != nil && *t < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: time_seconds must be non-negative, got %d", domain.ErrInvalidSet, *t))
	}
	if r := set.RPE; r != nil && (*r < minRPE || *r > maxRPE) {
		err = multierr.Append(err, fmt.Errorf("%w: rpe must be between %d and %d, got %d", domain.ErrInvalidSet, minRPE, maxRPE, *r))
	}
	return err
}
