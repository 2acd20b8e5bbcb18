package handler

import (
	"context"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/service"
)

// RecordService is the write path for sets and personal records
type RecordService interface {
	LogSet(ctx context.Context, set *domain.LoggedSet) (*service.LogSetResult, error)
	DeleteSet(ctx context.Context, userID, setID string) error
	ListRecords(ctx context.Context, userID, exerciseID string) ([]*domain.PersonalRecord, error)
	RebuildRecords(ctx context.Context, userID, exerciseID string) ([]*domain.PersonalRecord, error)
	RebuildAll(ctx context.Context, userID string, dryRun bool) (map[string][]*domain.PersonalRecord, error)
}

// ProgressionService serves the chart endpoints
type ProgressionService interface {
	Location() *time.Location
	MetricSeries(ctx context.Context, userID, exerciseID string, metric domain.Metric, from *time.Time) ([]domain.DataPoint, error)
	WeeklyVolume(ctx context.Context, userID string, weeks int) ([]domain.WeekBucket, error)
	MuscleGroups(ctx context.Context, userID string, from *time.Time) ([]domain.MuscleShare, error)
	Rpe(ctx context.Context, userID string, from *time.Time) (*domain.RpeSummary, error)
	Overview(ctx context.Context, userID string, from *time.Time, weeks int) (*domain.ProgressOverview, error)
}

type SessionService interface {
	StartSession(ctx context.Context, session *domain.WorkoutSession) error
	FinishSession(ctx context.Context, userID, sessionID string, mood *int) (*domain.WorkoutSession, error)
}

type ExerciseService interface {
	Create(ctx context.Context, ex *domain.Exercise) error
	List(ctx context.Context, name, muscleGroup string) ([]*domain.Exercise, error)
	Get(ctx context.Context, id string) (*domain.Exercise, error)
	Update(ctx context.Context, id string, patch domain.ExercisePatch) (*domain.Exercise, error)
	Delete(ctx context.Context, id string) (int64, error)
}

var (
	_ RecordService      = (*service.RecordService)(nil)
	_ ProgressionService = (*service.ProgressionService)(nil)
	_ SessionService     = (*service.SessionService)(nil)
	_ ExerciseService    = (*service.ExerciseService)(nil)
)
