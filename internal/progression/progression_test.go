package progression

import (
	"testing"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

// Monday
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

var catalog = domain.ExerciseCatalog{
	"bench": {ExerciseID: "bench", MuscleGroup: domain.MuscleChest},
	"fly":   {ExerciseID: "fly", MuscleGroup: domain.MuscleChest},
	"row":   {ExerciseID: "row", MuscleGroup: domain.MuscleBack},
	"squat": {ExerciseID: "squat", MuscleGroup: domain.MuscleQuadriceps},
	"plank": {ExerciseID: "plank", MuscleGroup: domain.MuscleCore, IsTimed: true},
}

func set(exerciseID, sessionID string, at time.Time, weight float64, reps int) *domain.LoggedSet {
	return &domain.LoggedSet{
		UserID:     "u1",
		SessionID:  sessionID,
		ExerciseID: exerciseID,
		Weight:     floatPtr(weight),
		Reps:       intPtr(reps),
		LoggedAt:   at,
	}
}

func TestBuildMetricSeries_DailyMaximum(t *testing.T) {
	sets := []*domain.LoggedSet{
		set("bench", "s1", monday.Add(17*time.Hour), 60, 5),
		set("bench", "s1", monday.Add(18*time.Hour), 80, 5),
		set("bench", "s1", monday.Add(19*time.Hour), 70, 5),
	}

	points, err := BuildMetricSeries(sets, domain.MetricMaxWeight, catalog, nil)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 80.0, points[0].Value)
	assert.Equal(t, monday, points[0].Date)
}

func TestBuildMetricSeries_AscendingAndFiltered(t *testing.T) {
	warmup := set("bench", "s3", monday.AddDate(0, 0, 2), 200, 1)
	warmup.IsWarmup = true
	dropset := set("bench", "s3", monday.AddDate(0, 0, 2), 150, 1)
	dropset.IsDropset = true

	sets := []*domain.LoggedSet{
		set("bench", "s2", monday.AddDate(0, 0, 7), 90, 3),
		set("bench", "s0", monday.AddDate(0, 0, -7), 50, 3),
		set("bench", "s1", monday, 70, 3),
		set("ghost", "s1", monday, 500, 1),
		warmup,
		dropset,
	}

	from := monday
	points, err := BuildMetricSeries(sets, domain.MetricMaxWeight, catalog, &from)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, monday, points[0].Date)
	assert.Equal(t, 70.0, points[0].Value)
	assert.Equal(t, monday.AddDate(0, 0, 7), points[1].Date)
	assert.Equal(t, 90.0, points[1].Value)
}

func TestBuildMetricSeries_Metrics(t *testing.T) {
	plank := &domain.LoggedSet{UserID: "u1", ExerciseID: "plank", TimeSeconds: intPtr(45), Reps: intPtr(1), LoggedAt: monday}

	tests := []struct {
		name   string
		metric domain.Metric
		sets   []*domain.LoggedSet
		want   []float64
	}{
		{"volume", domain.MetricMaxVolume, []*domain.LoggedSet{set("bench", "s", monday, 100, 5)}, []float64{500}},
		{"reps", domain.MetricMaxReps, []*domain.LoggedSet{set("bench", "s", monday, 100, 5)}, []float64{5}},
		{"estimated 1rm", domain.MetricEstimated1RM, []*domain.LoggedSet{set("bench", "s", monday, 90, 10)}, []float64{120}},
		{"time on timed exercise", domain.MetricMaxTime, []*domain.LoggedSet{plank}, []float64{45}},
		{"reps skipped on timed exercise", domain.MetricMaxReps, []*domain.LoggedSet{plank}, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := BuildMetricSeries(tt.sets, tt.metric, catalog, nil)
			require.NoError(t, err)
			got := make([]float64, 0, len(points))
			for _, p := range points {
				got = append(got, p.Value)
			}
			assert.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}
}

func TestBuildMetricSeries_EmptyAndInvalid(t *testing.T) {
	points, err := BuildMetricSeries(nil, domain.MetricMaxWeight, catalog, nil)
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)

	_, err = BuildMetricSeries(nil, domain.Metric("MAX_SPEED"), catalog, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidMetric)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
	}{
		{"monday midnight", monday},
		{"wednesday afternoon", time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)},
		{"sunday night", time.Date(2026, 3, 8, 23, 59, 59, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, monday, WeekStart(tt.in))
		})
	}

	assert.Equal(t, monday.AddDate(0, 0, -7), WeekStart(monday.Add(-time.Second)))
}

func TestBuildWeeklyVolumeTrend_EmptyHistory(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	buckets := BuildWeeklyVolumeTrend(nil, 12, now)
	require.Len(t, buckets, 12)
	assert.Equal(t, monday, buckets[11].WeekStart)
	for i, b := range buckets {
		assert.Equal(t, time.Monday, b.WeekStart.Weekday())
		assert.Zero(t, b.Volume)
		assert.Zero(t, b.Workouts)
		if i > 0 {
			assert.Equal(t, buckets[i-1].WeekStart.AddDate(0, 0, 7), b.WeekStart)
		}
	}
}

func TestBuildWeeklyVolumeTrend_Buckets(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	lastWeek := monday.AddDate(0, 0, -7)

	warmup := set("bench", "s1", monday.Add(time.Hour), 20, 10)
	warmup.IsWarmup = true
	bodyweight := &domain.LoggedSet{UserID: "u1", SessionID: "s2", ExerciseID: "squat", Reps: intPtr(20), LoggedAt: monday.Add(2 * time.Hour)}

	sets := []*domain.LoggedSet{
		set("bench", "s0", lastWeek.AddDate(0, 0, -30), 999, 1),                // outside window
		set("bench", "sA", lastWeek.Add(10*time.Hour), 50, 10),                 // 500
		set("row", "sB", lastWeek.AddDate(0, 0, 6).Add(23*time.Hour), 40, 10), // Sunday night, 400
		set("bench", "s1", monday.Add(time.Hour), 100, 5),                     // 500
		warmup,     // 200, counted
		bodyweight, // no load, session still counted
		set("bench", "s9", monday.AddDate(0, 0, 7), 100, 5), // next week
	}

	buckets := BuildWeeklyVolumeTrend(sets, 4, now)
	require.Len(t, buckets, 4)

	assert.Equal(t, lastWeek, buckets[2].WeekStart)
	assert.Equal(t, 900.0, buckets[2].Volume)
	assert.Equal(t, 2, buckets[2].Workouts)

	assert.Equal(t, monday, buckets[3].WeekStart)
	assert.Equal(t, 700.0, buckets[3].Volume)
	assert.Equal(t, 2, buckets[3].Workouts)

	assert.Zero(t, buckets[0].Volume)
	assert.Zero(t, buckets[1].Volume)
}

func TestBuildWeeklyVolumeTrend_Location(t *testing.T) {
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, plus2)

	// Sunday 23:30 UTC is already Monday locally
	late := set("bench", "s1", time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC), 100, 1)

	buckets := BuildWeeklyVolumeTrend([]*domain.LoggedSet{late}, 2, now)
	require.Len(t, buckets, 2)
	assert.Zero(t, buckets[0].Volume)
	assert.Equal(t, 100.0, buckets[1].Volume)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, plus2), buckets[1].WeekStart)
}

func TestBuildWeeklyVolumeTrend_NoWeeks(t *testing.T) {
	assert.Empty(t, BuildWeeklyVolumeTrend(nil, 0, monday))
	assert.NotNil(t, BuildWeeklyVolumeTrend(nil, -3, monday))
}

func TestBuildMuscleGroupDistribution(t *testing.T) {
	warmup := set("bench", "s1", monday, 20, 10)
	warmup.IsWarmup = true

	sets := []*domain.LoggedSet{
		set("bench", "s1", monday, 100, 5),
		set("fly", "s1", monday, 20, 12),
		set("row", "s1", monday, 60, 10),
		set("ghost", "s1", monday, 60, 10),
		warmup,
	}

	shares := BuildMuscleGroupDistribution(sets, catalog)
	require.Len(t, shares, 2)
	assert.Equal(t, domain.MuscleShare{Muscle: domain.MuscleChest, Count: 2, Percentage: 67}, shares[0])
	assert.Equal(t, domain.MuscleShare{Muscle: domain.MuscleBack, Count: 1, Percentage: 33}, shares[1])
}

func TestBuildMuscleGroupDistribution_RoundingNotCorrected(t *testing.T) {
	sets := []*domain.LoggedSet{
		set("bench", "s1", monday, 100, 5),
		set("row", "s1", monday, 60, 10),
		set("squat", "s1", monday, 120, 5),
	}

	shares := BuildMuscleGroupDistribution(sets, catalog)
	require.Len(t, shares, 3)
	total := 0
	for _, s := range shares {
		assert.Equal(t, 33, s.Percentage)
		total += s.Percentage
	}
	assert.Equal(t, 99, total)

	// Ties break alphabetically
	assert.Equal(t, domain.MuscleBack, shares[0].Muscle)
	assert.Equal(t, domain.MuscleChest, shares[1].Muscle)
	assert.Equal(t, domain.MuscleQuadriceps, shares[2].Muscle)
}

func TestBuildMuscleGroupDistribution_Empty(t *testing.T) {
	shares := BuildMuscleGroupDistribution(nil, catalog)
	assert.NotNil(t, shares)
	assert.Empty(t, shares)
}

func TestBuildRpeDistribution(t *testing.T) {
	var sets []*domain.LoggedSet
	for i, rpe := range []int{7, 7, 8, 9} {
		s := set("bench", "s1", monday.Add(time.Duration(i)*time.Minute), 100, 5)
		s.RPE = intPtr(rpe)
		sets = append(sets, s)
	}
	sets = append(sets, set("bench", "s1", monday, 100, 5)) // unrated

	summary := BuildRpeDistribution(sets)
	assert.Equal(t, 7.8, summary.AvgRpe)
	assert.Equal(t, 4, summary.TotalRatedSets)
	require.Len(t, summary.Distribution, 10)
	for r := 1; r <= 10; r++ {
		want := map[int]int{7: 2, 8: 1, 9: 1}[r]
		assert.Equal(t, want, summary.Distribution[r], "rpe %d", r)
	}
	require.Len(t, summary.Trend, 1)
	assert.Equal(t, 7.8, summary.Trend[0].Value)
}

func TestBuildRpeDistribution_Empty(t *testing.T) {
	summary := BuildRpeDistribution(nil)
	assert.Zero(t, summary.AvgRpe)
	assert.Zero(t, summary.TotalRatedSets)
	assert.Len(t, summary.Distribution, 10)
	assert.NotNil(t, summary.Trend)
	assert.Empty(t, summary.Trend)
}

func TestBuildSessionTrend(t *testing.T) {
	end := func(start time.Time, minutes int) *time.Time {
		e := start.Add(time.Duration(minutes) * time.Minute)
		return &e
	}
	morning := monday.Add(7 * time.Hour)
	evening := monday.Add(18 * time.Hour)
	tuesday := monday.AddDate(0, 0, 1).Add(9 * time.Hour)

	sessions := []*domain.WorkoutSession{
		{StartedAt: morning, EndedAt: end(morning, 60), Mood: intPtr(4)},
		{StartedAt: evening, EndedAt: end(evening, 30), Mood: intPtr(5)},
		{StartedAt: tuesday, Mood: intPtr(3)}, // still open
		{StartedAt: monday.AddDate(0, 0, -10), EndedAt: end(monday.AddDate(0, 0, -10), 45), Mood: intPtr(1)},
	}

	from := monday
	trend := BuildSessionTrend(sessions, &from)

	require.Len(t, trend.Mood, 2)
	assert.Equal(t, 4.5, trend.Mood[0].Value)
	assert.Equal(t, 3.0, trend.Mood[1].Value)
	assert.Equal(t, monday.AddDate(0, 0, 1), trend.Mood[1].Date)

	require.Len(t, trend.Duration, 1)
	assert.Equal(t, monday, trend.Duration[0].Date)
	assert.Equal(t, 90.0, trend.Duration[0].Value)
}

func TestSummarize(t *testing.T) {
	warmup := set("bench", "s1", monday, 20, 10)
	warmup.IsWarmup = true
	plank := &domain.LoggedSet{UserID: "u1", SessionID: "s2", ExerciseID: "plank", TimeSeconds: intPtr(60), LoggedAt: monday}

	summary := Summarize([]*domain.LoggedSet{
		set("bench", "s1", monday, 100, 5),
		warmup,
		plank,
	})

	assert.Equal(t, domain.TrainingSummary{
		TotalSets:   3,
		WorkingSets: 2,
		TotalReps:   15,
		TotalVolume: 700,
		Workouts:    2,
	}, summary)
}

func TestSetsSince(t *testing.T) {
	sets := []*domain.LoggedSet{
		set("bench", "s1", monday.Add(-time.Hour), 100, 5),
		set("bench", "s1", monday, 100, 5),
	}
	assert.Len(t, SetsSince(sets, nil), 2)

	from := monday
	got := SetsSince(sets, &from)
	require.Len(t, got, 1)
	assert.Equal(t, monday, got[0].LoggedAt)
}
