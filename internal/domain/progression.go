package domain

import (
	"context"
	"time"
)

// Metric selects the scalar plotted by a progression series
type Metric string

const (
	MetricMaxWeight    Metric = Metric(RecordMaxWeight)
	MetricMaxReps      Metric = Metric(RecordMaxReps)
	MetricMaxVolume    Metric = Metric(RecordMaxVolume)
	MetricMaxTime      Metric = Metric(RecordMaxTime)
	MetricEstimated1RM Metric = "ESTIMATED_1RM"
)

// Valid reports whether m is a supported metric
func (m Metric) Valid() bool {
	return m == MetricEstimated1RM || RecordType(m).Valid()
}

// DataPoint represents a single (date, value) pair in a chart series
type DataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// WeekBucket aggregates volume and workouts for one Monday-anchored week
type WeekBucket struct {
	WeekStart time.Time `json:"week_start"`
	Volume    float64   `json:"volume"`   // Weight * Reps (or Weight * Seconds) summed
	Workouts  int       `json:"workouts"` // Distinct sessions
}

// MuscleShare is one slice of the muscle group distribution.
// Percentages are rounded independently so they may not sum to exactly 100.
type MuscleShare struct {
	Muscle     MuscleGroup `json:"muscle"`
	Count      int         `json:"count"`
	Percentage int         `json:"percentage"`
}

// RpeSummary describes perceived effort across rated sets
type RpeSummary struct {
	AvgRpe         float64     `json:"avg_rpe"` // One decimal
	TotalRatedSets int         `json:"total_rated_sets"`
	Distribution   map[int]int `json:"distribution"` // Dense 1..10
	Trend          []DataPoint `json:"trend"`        // Daily average
}

// SessionTrend holds per-day mood and duration series
type SessionTrend struct {
	Mood     []DataPoint `json:"mood"`     // Average mood 1-5
	Duration []DataPoint `json:"duration"` // Minutes trained
}

// TrainingSummary represents totals over a set history
type TrainingSummary struct {
	TotalSets   int     `json:"total_sets"`
	WorkingSets int     `json:"working_sets"` // Excludes warmups and dropsets
	TotalReps   int     `json:"total_reps"`
	TotalVolume float64 `json:"total_volume"`
	Workouts    int     `json:"workouts"`
}

// ProgressOverview is the dashboard payload combining every aggregate
type ProgressOverview struct {
	Summary      TrainingSummary `json:"summary"`
	WeeklyVolume []WeekBucket    `json:"weekly_volume"`
	MuscleGroups []MuscleShare   `json:"muscle_groups"`
	Rpe          RpeSummary      `json:"rpe"`
	Sessions     SessionTrend    `json:"sessions"`
}

const progressKeyPrefix = "progress:"

// ProgressKey builds the cache key of one progression view of a user.
// Parts distinguish query parameters (metric, window, ...).
func ProgressKey(userID, view string, parts ...string) string {
	key := progressKeyPrefix + userID + ":" + view
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// ProgressPattern matches every progression view cached for a user
func ProgressPattern(userID string) string {
	return progressKeyPrefix + userID + ":*"
}

// CacheRepository defines the generic cache operations used by read paths
type CacheRepository interface {
	// Get decodes the cached value into dest, returning an error on miss
	Get(ctx context.Context, key string, dest interface{}) error
	// Set stores a value with TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// DeleteByPattern removes every key matching a glob pattern
	DeleteByPattern(ctx context.Context, pattern string) error
}
