package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mansoorceksport/liftlog/internal/domain"
	log "github.com/sirupsen/logrus"
)

// ExerciseService manages the global exercise library
type ExerciseService struct {
	exerciseRepo domain.ExerciseRepository
	recordRepo   domain.PersonalRecordRepository
	cache        domain.CacheRepository
}

// NewExerciseService creates a new exercise service. cache may be nil for
// tools that run without Redis.
func NewExerciseService(exerciseRepo domain.ExerciseRepository, recordRepo domain.PersonalRecordRepository, cache domain.CacheRepository) *ExerciseService {
	return &ExerciseService{
		exerciseRepo: exerciseRepo,
		recordRepo:   recordRepo,
		cache:        cache,
	}
}

// Create adds an exercise after checking it against the shared enumerations
func (s *ExerciseService) Create(ctx context.Context, ex *domain.Exercise) error {
	if err := normalizeExercise(ex); err != nil {
		return err
	}
	return s.exerciseRepo.Create(ctx, ex)
}

func (s *ExerciseService) List(ctx context.Context, name, muscleGroup string) ([]*domain.Exercise, error) {
	return s.exerciseRepo.List(ctx, map[string]interface{}{
		"name":         name,
		"muscle_group": muscleGroup,
	})
}

func (s *ExerciseService) Get(ctx context.Context, id string) (*domain.Exercise, error) {
	return s.exerciseRepo.GetByID(ctx, id)
}

// Update applies a partial update. Records were measured under the old
// is_timed shape, so flipping it clears them; users rebuild from history.
func (s *ExerciseService) Update(ctx context.Context, id string, patch domain.ExercisePatch) (*domain.Exercise, error) {
	ex, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasTimed := ex.IsTimed

	if patch.Name != nil {
		ex.Name = *patch.Name
	}
	if patch.MuscleGroup != nil {
		ex.MuscleGroup = *patch.MuscleGroup
	}
	if patch.Equipment != nil {
		ex.Equipment = *patch.Equipment
	}
	if patch.IsTimed != nil {
		ex.IsTimed = *patch.IsTimed
	}
	if patch.VideoURL != nil {
		ex.VideoURL = *patch.VideoURL
	}
	if err := normalizeExercise(ex); err != nil {
		return nil, err
	}

	if err := s.exerciseRepo.Update(ctx, ex); err != nil {
		return nil, err
	}

	if ex.IsTimed != wasTimed {
		removed, err := s.recordRepo.DeleteByExercise(ctx, id)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{"exercise_id": id, "records": removed}).
			Info("exercise shape changed, personal records cleared")
	}

	// Muscle group and shape feed every user's cached views
	s.invalidateAll(ctx)
	return ex, nil
}

// Delete removes an exercise from the library together with every personal
// record measured on it. Logged sets stay in history and are skipped by the
// aggregations. Returns the number of records removed.
func (s *ExerciseService) Delete(ctx context.Context, id string) (int64, error) {
	if _, err := s.exerciseRepo.GetByID(ctx, id); err != nil {
		return 0, err
	}
	if err := s.exerciseRepo.Delete(ctx, id); err != nil {
		return 0, fmt.Errorf("failed to delete exercise: %w", err)
	}

	removed, err := s.recordRepo.DeleteByExercise(ctx, id)
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{"exercise_id": id, "records": removed}).Info("exercise deleted")
	s.invalidateAll(ctx)
	return removed, nil
}

func (s *ExerciseService) invalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, domain.ProgressPattern("*")); err != nil {
		log.WithError(err).Warn("failed to invalidate progression cache")
	}
}

func normalizeExercise(ex *domain.Exercise) error {
	ex.Name = strings.TrimSpace(ex.Name)
	if ex.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidExercise)
	}
	if !ex.MuscleGroup.Valid() {
		return fmt.Errorf("%w: unknown muscle group %q", domain.ErrInvalidExercise, ex.MuscleGroup)
	}
	if ex.Equipment == "" {
		ex.Equipment = domain.EquipmentOther
	}
	if !ex.Equipment.Valid() {
		return fmt.Errorf("%w: unknown equipment %q", domain.ErrInvalidExercise, ex.Equipment)
	}
	return nil
}
