package service

import (
	"context"
	"testing"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"
)

// TestMain runs goleak after the package tests to catch goroutines left
// behind by the errgroup fan-out
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/redis/go-redis/v9/internal/pool.(*ConnPool).reaper"),
	)
}

type mockSetRepo struct{ mock.Mock }

func (m *mockSetRepo) Create(ctx context.Context, set *domain.LoggedSet) error {
	return m.Called(ctx, set).Error(0)
}

func (m *mockSetRepo) GetByID(ctx context.Context, id string) (*domain.LoggedSet, error) {
	args := m.Called(ctx, id)
	set, _ := args.Get(0).(*domain.LoggedSet)
	return set, args.Error(1)
}

func (m *mockSetRepo) GetByClientID(ctx context.Context, clientID string) (*domain.LoggedSet, error) {
	args := m.Called(ctx, clientID)
	set, _ := args.Get(0).(*domain.LoggedSet)
	return set, args.Error(1)
}

func (m *mockSetRepo) List(ctx context.Context, query domain.SetQuery) ([]*domain.LoggedSet, error) {
	args := m.Called(ctx, query)
	sets, _ := args.Get(0).([]*domain.LoggedSet)
	return sets, args.Error(1)
}

func (m *mockSetRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockRecordRepo struct{ mock.Mock }

func (m *mockRecordRepo) ListByUserAndExercise(ctx context.Context, userID, exerciseID string) ([]*domain.PersonalRecord, error) {
	args := m.Called(ctx, userID, exerciseID)
	records, _ := args.Get(0).([]*domain.PersonalRecord)
	return records, args.Error(1)
}

func (m *mockRecordRepo) ListByUser(ctx context.Context, userID string) ([]*domain.PersonalRecord, error) {
	args := m.Called(ctx, userID)
	records, _ := args.Get(0).([]*domain.PersonalRecord)
	return records, args.Error(1)
}

func (m *mockRecordRepo) CompareAndSet(ctx context.Context, update domain.RecordUpdate) (bool, *float64, error) {
	args := m.Called(ctx, update)
	previous, _ := args.Get(1).(*float64)
	return args.Bool(0), previous, args.Error(2)
}

func (m *mockRecordRepo) DeleteByExercise(ctx context.Context, exerciseID string) (int64, error) {
	args := m.Called(ctx, exerciseID)
	return int64(args.Int(0)), args.Error(1)
}

func (m *mockRecordRepo) ReplaceForExercise(ctx context.Context, userID, exerciseID string, records []*domain.PersonalRecord) error {
	return m.Called(ctx, userID, exerciseID, records).Error(0)
}

type mockExerciseRepo struct{ mock.Mock }

func (m *mockExerciseRepo) Create(ctx context.Context, ex *domain.Exercise) error {
	return m.Called(ctx, ex).Error(0)
}

func (m *mockExerciseRepo) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	args := m.Called(ctx, id)
	ex, _ := args.Get(0).(*domain.Exercise)
	return ex, args.Error(1)
}

func (m *mockExerciseRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.Exercise, error) {
	args := m.Called(ctx, ids)
	exercises, _ := args.Get(0).([]*domain.Exercise)
	return exercises, args.Error(1)
}

func (m *mockExerciseRepo) List(ctx context.Context, filter map[string]interface{}) ([]*domain.Exercise, error) {
	args := m.Called(ctx, filter)
	exercises, _ := args.Get(0).([]*domain.Exercise)
	return exercises, args.Error(1)
}

func (m *mockExerciseRepo) Update(ctx context.Context, ex *domain.Exercise) error {
	return m.Called(ctx, ex).Error(0)
}

func (m *mockExerciseRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockSessionRepo struct{ mock.Mock }

func (m *mockSessionRepo) Create(ctx context.Context, session *domain.WorkoutSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id string) (*domain.WorkoutSession, error) {
	args := m.Called(ctx, id)
	session, _ := args.Get(0).(*domain.WorkoutSession)
	return session, args.Error(1)
}

func (m *mockSessionRepo) ListByUser(ctx context.Context, userID string, from *time.Time) ([]*domain.WorkoutSession, error) {
	args := m.Called(ctx, userID, from)
	sessions, _ := args.Get(0).([]*domain.WorkoutSession)
	return sessions, args.Error(1)
}

func (m *mockSessionRepo) Finish(ctx context.Context, id string, endedAt time.Time, mood *int) error {
	return m.Called(ctx, id, endedAt, mood).Error(0)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	return m.Called(ctx, key, dest).Error(0)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) DeleteByPattern(ctx context.Context, pattern string) error {
	return m.Called(ctx, pattern).Error(0)
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func byRecordType(rt domain.RecordType) interface{} {
	return mock.MatchedBy(func(u domain.RecordUpdate) bool { return u.RecordType == rt })
}
