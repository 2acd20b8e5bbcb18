package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/repository"
	"github.com/mansoorceksport/liftlog/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Wednesday
var progressNow = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

type progressFixture struct {
	sets      *mockSetRepo
	sessions  *mockSessionRepo
	exercises *mockExerciseRepo
	mr        *miniredis.Miniredis
	cache     *repository.RedisCacheRepository
	metrics   *sdkmetric.ManualReader
	svc       *ProgressionService
}

func newProgressFixture(t *testing.T) *progressFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &progressFixture{
		sets:      &mockSetRepo{},
		sessions:  &mockSessionRepo{},
		exercises: &mockExerciseRepo{},
		mr:        mr,
		cache:     repository.NewRedisCacheRepository(client),
		metrics:   sdkmetric.NewManualReader(),
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(f.metrics), sdkmetric.WithView(telemetry.Views()...))
	f.svc = NewProgressionService(f.sets, f.sessions, f.exercises, f.cache, ProgressionOptions{
		CacheTTL:     5 * time.Minute,
		DefaultWeeks: 4,
		Instruments:  telemetry.NewInstruments(provider),
	})
	f.svc.now = func() time.Time { return progressNow }
	return f
}

// cacheLookups sums the progression cache counter for one view and outcome
func (f *progressFixture) cacheLookups(t *testing.T, view, result string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.metrics.Collect(context.Background(), &rm))

	want := attribute.NewSet(telemetry.AttrView.String(view), telemetry.AttrCacheResult.String(result))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != telemetry.MetricProgressionCache {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				if dp.Attributes.Equals(&want) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func squatSet(id, session string, at time.Time, weight float64, reps, rpe int) *domain.LoggedSet {
	return &domain.LoggedSet{
		ID:         id,
		UserID:     "u1",
		SessionID:  session,
		ExerciseID: "squat",
		Weight:     floatPtr(weight),
		Reps:       intPtr(reps),
		RPE:        intPtr(rpe),
		LoggedAt:   at,
	}
}

func squatHistory() []*domain.LoggedSet {
	mon := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	lastWeek := mon.AddDate(0, 0, -6)
	return []*domain.LoggedSet{
		squatSet("1", "s1", lastWeek, 100, 5, 7),
		squatSet("2", "s1", lastWeek.Add(5*time.Minute), 110, 3, 8),
		squatSet("3", "s2", mon, 120, 2, 9),
		squatSet("4", "s2", mon.Add(5*time.Minute), 90, 8, 8),
	}
}

func TestProgressionService_MetricSeries_Cached(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	f.exercises.On("GetByID", mock.Anything, "squat").
		Return(&domain.Exercise{ID: "squat", MuscleGroup: domain.MuscleQuadriceps}, nil).Once()
	f.sets.On("List", mock.Anything, domain.SetQuery{UserID: "u1", ExerciseID: "squat"}).
		Return(squatHistory(), nil).Once()

	first, err := f.svc.MetricSeries(ctx, "u1", "squat", domain.MetricMaxWeight, nil)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 110.0, first[0].Value)
	assert.Equal(t, 120.0, first[1].Value)

	second, err := f.svc.MetricSeries(ctx, "u1", "squat", domain.MetricMaxWeight, nil)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, first[1].Value, second[1].Value)
	assert.True(t, first[0].Date.Equal(second[0].Date))

	assert.True(t, f.mr.Exists(domain.ProgressKey("u1", "series", "squat", "MAX_WEIGHT", "all")))
	assert.Equal(t, int64(1), f.cacheLookups(t, "series", "miss"))
	assert.Equal(t, int64(1), f.cacheLookups(t, "series", "hit"))
	f.sets.AssertExpectations(t)
	f.exercises.AssertExpectations(t)
}

func TestProgressionService_MetricSeries_RecomputesAfterInvalidation(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	f.exercises.On("GetByID", mock.Anything, "squat").Return(&domain.Exercise{ID: "squat"}, nil)
	f.sets.On("List", mock.Anything, mock.Anything).Return(squatHistory(), nil)

	_, err := f.svc.MetricSeries(ctx, "u1", "squat", domain.MetricEstimated1RM, nil)
	require.NoError(t, err)
	require.NoError(t, f.cache.DeleteByPattern(ctx, domain.ProgressPattern("u1")))
	_, err = f.svc.MetricSeries(ctx, "u1", "squat", domain.MetricEstimated1RM, nil)
	require.NoError(t, err)

	f.sets.AssertNumberOfCalls(t, "List", 2)
}

func TestProgressionService_MetricSeries_InvalidMetric(t *testing.T) {
	f := newProgressFixture(t)

	_, err := f.svc.MetricSeries(context.Background(), "u1", "squat", domain.Metric("MAX_SPEED"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidMetric)
	f.sets.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestProgressionService_WeeklyVolume(t *testing.T) {
	f := newProgressFixture(t)
	wantFrom := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)

	f.sets.On("List", mock.Anything, mock.MatchedBy(func(q domain.SetQuery) bool {
		return q.UserID == "u1" && q.From != nil && q.From.Equal(wantFrom)
	})).Return(squatHistory(), nil).Once()

	buckets, err := f.svc.WeeklyVolume(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, buckets, 4)

	assert.Equal(t, 0.0, buckets[0].Volume)
	assert.Equal(t, 830.0, buckets[2].Volume)
	assert.Equal(t, 1, buckets[2].Workouts)
	assert.Equal(t, 960.0, buckets[3].Volume)
	assert.Equal(t, 1, buckets[3].Workouts)
	f.sets.AssertExpectations(t)
}

func TestProgressionService_Overview(t *testing.T) {
	f := newProgressFixture(t)
	started := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
	ended := started.Add(75 * time.Minute)

	f.sets.On("List", mock.Anything, mock.MatchedBy(func(q domain.SetQuery) bool {
		return q.UserID == "u1" && q.From == nil
	})).Return(squatHistory(), nil).Once()
	f.exercises.On("GetByIDs", mock.Anything, []string{"squat"}).
		Return([]*domain.Exercise{{ID: "squat", MuscleGroup: domain.MuscleQuadriceps}}, nil).Once()
	f.sessions.On("ListByUser", mock.Anything, "u1", (*time.Time)(nil)).Return([]*domain.WorkoutSession{
		{ID: "s2", UserID: "u1", StartedAt: started, EndedAt: &ended, Mood: intPtr(4)},
	}, nil).Once()

	overview, err := f.svc.Overview(context.Background(), "u1", nil, 2)
	require.NoError(t, err)

	assert.Equal(t, 4, overview.Summary.TotalSets)
	assert.Equal(t, 18, overview.Summary.TotalReps)
	assert.Equal(t, 2, overview.Summary.Workouts)
	assert.Len(t, overview.WeeklyVolume, 2)

	require.Len(t, overview.MuscleGroups, 1)
	assert.Equal(t, domain.MuscleQuadriceps, overview.MuscleGroups[0].Muscle)
	assert.Equal(t, 100, overview.MuscleGroups[0].Percentage)

	assert.Equal(t, 4, overview.Rpe.TotalRatedSets)
	assert.Equal(t, 8.0, overview.Rpe.AvgRpe)

	require.Len(t, overview.Sessions.Duration, 1)
	assert.Equal(t, 75.0, overview.Sessions.Duration[0].Value)

	again, err := f.svc.Overview(context.Background(), "u1", nil, 2)
	require.NoError(t, err)
	assert.Equal(t, overview.Summary, again.Summary)

	f.sets.AssertExpectations(t)
	f.sessions.AssertExpectations(t)
	f.exercises.AssertExpectations(t)
}

func TestProgressionService_Overview_LoadFailure(t *testing.T) {
	f := newProgressFixture(t)

	f.sets.On("List", mock.Anything, mock.Anything).Return([]*domain.LoggedSet{}, nil)
	f.sessions.On("ListByUser", mock.Anything, "u1", mock.Anything).Return(nil, errors.New("cursor killed"))

	_, err := f.svc.Overview(context.Background(), "u1", nil, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load sessions")
	assert.False(t, f.mr.Exists(domain.ProgressKey("u1", "overview", "all", "4")))
}

func TestProgressionService_CacheDownStillServes(t *testing.T) {
	cache := &mockCache{}
	cache.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	sets := &mockSetRepo{}
	sets.On("List", mock.Anything, mock.Anything).Return(squatHistory(), nil)

	svc := NewProgressionService(sets, &mockSessionRepo{}, &mockExerciseRepo{}, cache, ProgressionOptions{CacheTTL: time.Minute})
	summary, err := svc.Rpe(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalRatedSets)
	assert.Equal(t, 2, summary.Distribution[8])
}

func TestProgressionService_ClampWeeks(t *testing.T) {
	svc := NewProgressionService(nil, nil, nil, nil, ProgressionOptions{DefaultWeeks: 12})
	assert.Equal(t, 12, svc.clampWeeks(0))
	assert.Equal(t, 12, svc.clampWeeks(-3))
	assert.Equal(t, 8, svc.clampWeeks(8))
	assert.Equal(t, maxWeeks, svc.clampWeeks(500))
}
