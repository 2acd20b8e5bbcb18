package repository

import (
	"context"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
)

const (
	exerciseByIDKeyPrefix = "exercise:id:"
	exerciseCacheTTL      = 30 * time.Minute
)

// CachedExerciseRepository wraps MongoExerciseRepository with Redis caching.
// Exercise metadata is read on every logged set and rarely changes.
type CachedExerciseRepository struct {
	mongo *MongoExerciseRepository
	cache *RedisCacheRepository
}

// NewCachedExerciseRepository creates a new cached exercise repository
func NewCachedExerciseRepository(mongo *MongoExerciseRepository, cache *RedisCacheRepository) *CachedExerciseRepository {
	return &CachedExerciseRepository{
		mongo: mongo,
		cache: cache,
	}
}

// GetByID retrieves an exercise with caching
func (r *CachedExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	key := exerciseByIDKeyPrefix + id

	// Try cache first
	var exercise domain.Exercise
	if err := r.cache.Get(ctx, key, &exercise); err == nil {
		return &exercise, nil
	}

	// Cache miss - fetch from MongoDB
	result, err := r.mongo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Store in cache (ignore cache errors)
	_ = r.cache.Set(ctx, key, result, exerciseCacheTTL)

	return result, nil
}

// GetByIDs serves what it can from cache and loads the rest in one query
func (r *CachedExerciseRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Exercise, error) {
	exercises := make([]*domain.Exercise, 0, len(ids))
	var missing []string
	for _, id := range ids {
		var exercise domain.Exercise
		if err := r.cache.Get(ctx, exerciseByIDKeyPrefix+id, &exercise); err == nil {
			exercises = append(exercises, &exercise)
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return exercises, nil
	}

	loaded, err := r.mongo.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, ex := range loaded {
		_ = r.cache.Set(ctx, exerciseByIDKeyPrefix+ex.ID, ex, exerciseCacheTTL)
	}
	return append(exercises, loaded...), nil
}

// Update updates an exercise and invalidates its cache entry
func (r *CachedExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if err := r.mongo.Update(ctx, exercise); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, exerciseByIDKeyPrefix+exercise.ID)
	return nil
}

// Delete deletes an exercise and invalidates its cache entry
func (r *CachedExerciseRepository) Delete(ctx context.Context, id string) error {
	if err := r.mongo.Delete(ctx, id); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, exerciseByIDKeyPrefix+id)
	return nil
}

// === Pass-through methods (no caching) ===

func (r *CachedExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) error {
	return r.mongo.Create(ctx, exercise)
}

func (r *CachedExerciseRepository) List(ctx context.Context, filter map[string]interface{}) ([]*domain.Exercise, error) {
	return r.mongo.List(ctx, filter)
}
