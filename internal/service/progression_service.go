package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/progression"
	"github.com/mansoorceksport/liftlog/internal/telemetry"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const maxWeeks = 104

// ProgressionService serves chart data for a user's training history.
// Results are cached per user and dropped whenever the user logs or
// deletes a set.
type ProgressionService struct {
	setRepo      domain.SetLogRepository
	sessionRepo  domain.WorkoutSessionRepository
	exerciseRepo domain.ExerciseRepository
	cache        domain.CacheRepository
	cacheTTL     time.Duration
	defaultWeeks int
	loc          *time.Location
	now          func() time.Time
	tracer       trace.Tracer
	instruments  *telemetry.Instruments
}

// ProgressionOptions tunes caching and calendar behavior
type ProgressionOptions struct {
	CacheTTL     time.Duration
	DefaultWeeks int
	Location     *time.Location
	Instruments  *telemetry.Instruments
}

// NewProgressionService creates a new progression service
func NewProgressionService(
	setRepo domain.SetLogRepository,
	sessionRepo domain.WorkoutSessionRepository,
	exerciseRepo domain.ExerciseRepository,
	cache domain.CacheRepository,
	opts ProgressionOptions,
) *ProgressionService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DefaultWeeks <= 0 {
		opts.DefaultWeeks = 12
	}
	return &ProgressionService{
		setRepo:      setRepo,
		sessionRepo:  sessionRepo,
		exerciseRepo: exerciseRepo,
		cache:        cache,
		cacheTTL:     opts.CacheTTL,
		defaultWeeks: opts.DefaultWeeks,
		loc:          opts.Location,
		now:          time.Now,
		tracer:       otel.Tracer(instrumentationName),
		instruments:  opts.Instruments,
	}
}

// Location is the time zone used to bucket days and weeks
func (s *ProgressionService) Location() *time.Location {
	return s.loc
}

// MetricSeries plots the daily best of metric for one exercise
func (s *ProgressionService) MetricSeries(ctx context.Context, userID, exerciseID string, metric domain.Metric, from *time.Time) ([]domain.DataPoint, error) {
	if !metric.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMetric, metric)
	}

	key := domain.ProgressKey(userID, "series", exerciseID, string(metric), windowKey(from))
	return cached(ctx, s, "series", key, func(ctx context.Context) ([]domain.DataPoint, error) {
		exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
		if err != nil {
			return nil, err
		}
		sets, err := s.loadSets(ctx, domain.SetQuery{UserID: userID, ExerciseID: exerciseID, From: from})
		if err != nil {
			return nil, err
		}
		catalog := domain.NewExerciseCatalog([]*domain.Exercise{exercise})
		return progression.BuildMetricSeries(sets, metric, catalog, from)
	})
}

// WeeklyVolume returns the volume trend of the last weeks weeks, the current
// week included. Non-positive weeks fall back to the configured default.
func (s *ProgressionService) WeeklyVolume(ctx context.Context, userID string, weeks int) ([]domain.WeekBucket, error) {
	weeks = s.clampWeeks(weeks)

	key := domain.ProgressKey(userID, "weekly", strconv.Itoa(weeks))
	return cached(ctx, s, "weekly", key, func(ctx context.Context) ([]domain.WeekBucket, error) {
		now := s.now().In(s.loc)
		from := weeksStart(now, weeks)
		sets, err := s.loadSets(ctx, domain.SetQuery{UserID: userID, From: &from})
		if err != nil {
			return nil, err
		}
		return progression.BuildWeeklyVolumeTrend(sets, weeks, now), nil
	})
}

// MuscleGroups returns the share of working sets per muscle group
func (s *ProgressionService) MuscleGroups(ctx context.Context, userID string, from *time.Time) ([]domain.MuscleShare, error) {
	key := domain.ProgressKey(userID, "muscles", windowKey(from))
	return cached(ctx, s, "muscles", key, func(ctx context.Context) ([]domain.MuscleShare, error) {
		sets, err := s.loadSets(ctx, domain.SetQuery{UserID: userID, From: from})
		if err != nil {
			return nil, err
		}
		catalog, err := LoadCatalog(ctx, s.exerciseRepo, sets)
		if err != nil {
			return nil, err
		}
		return progression.BuildMuscleGroupDistribution(sets, catalog), nil
	})
}

// Rpe summarizes perceived effort over rated sets
func (s *ProgressionService) Rpe(ctx context.Context, userID string, from *time.Time) (*domain.RpeSummary, error) {
	key := domain.ProgressKey(userID, "rpe", windowKey(from))
	return cached(ctx, s, "rpe", key, func(ctx context.Context) (*domain.RpeSummary, error) {
		sets, err := s.loadSets(ctx, domain.SetQuery{UserID: userID, From: from})
		if err != nil {
			return nil, err
		}
		summary := progression.BuildRpeDistribution(sets)
		return &summary, nil
	})
}

// Overview builds the dashboard in one pass. History and sessions load
// concurrently; the aggregates then share the loaded data.
func (s *ProgressionService) Overview(ctx context.Context, userID string, from *time.Time, weeks int) (*domain.ProgressOverview, error) {
	weeks = s.clampWeeks(weeks)

	key := domain.ProgressKey(userID, "overview", windowKey(from), strconv.Itoa(weeks))
	return cached(ctx, s, "overview", key, func(ctx context.Context) (*domain.ProgressOverview, error) {
		ctx, span := s.tracer.Start(ctx, "progression.Overview",
			trace.WithAttributes(attribute.Int("weeks", weeks)))
		defer span.End()

		now := s.now().In(s.loc)
		// Everything since from, widened to cover the weekly window
		var loadFrom *time.Time
		if from != nil {
			earliest := weeksStart(now, weeks)
			if from.Before(earliest) {
				earliest = *from
			}
			loadFrom = &earliest
		}

		var (
			sets     []*domain.LoggedSet
			sessions []*domain.WorkoutSession
			catalog  domain.ExerciseCatalog
		)

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			sets, err = s.loadSets(gCtx, domain.SetQuery{UserID: userID, From: loadFrom})
			if err != nil {
				return err
			}
			catalog, err = LoadCatalog(gCtx, s.exerciseRepo, sets)
			return err
		})
		g.Go(func() error {
			var err error
			sessions, err = s.sessionRepo.ListByUser(gCtx, userID, from)
			if err != nil {
				return fmt.Errorf("failed to load sessions: %w", err)
			}
			for _, session := range sessions {
				session.StartedAt = session.StartedAt.In(s.loc)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		window := progression.SetsSince(sets, from)
		return &domain.ProgressOverview{
			Summary:      progression.Summarize(window),
			WeeklyVolume: progression.BuildWeeklyVolumeTrend(sets, weeks, now),
			MuscleGroups: progression.BuildMuscleGroupDistribution(window, catalog),
			Rpe:          progression.BuildRpeDistribution(window),
			Sessions:     progression.BuildSessionTrend(sessions, from),
		}, nil
	})
}

// loadSets reads history and moves timestamps into the service time zone
func (s *ProgressionService) loadSets(ctx context.Context, query domain.SetQuery) ([]*domain.LoggedSet, error) {
	sets, err := s.setRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load set history: %w", err)
	}
	for _, set := range sets {
		set.LoggedAt = set.LoggedAt.In(s.loc)
	}
	return sets, nil
}

func (s *ProgressionService) clampWeeks(weeks int) int {
	if weeks <= 0 {
		return s.defaultWeeks
	}
	if weeks > maxWeeks {
		return maxWeeks
	}
	return weeks
}

// cached serves key from cache or computes and stores it. Cache failures
// never fail the request.
func cached[T any](ctx context.Context, s *ProgressionService, view, key string, load func(context.Context) (T, error)) (T, error) {
	start := time.Now()

	var value T
	err := s.cache.Get(ctx, key, &value)
	if err == nil {
		s.instruments.ProgressionServed(ctx, view, true, time.Since(start))
		return value, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		log.WithError(err).WithField("key", key).Warn("failed to read progression cache")
	}

	value, err = load(ctx)
	if err != nil {
		return value, err
	}

	if s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
			log.WithError(err).WithField("key", key).Warn("failed to cache progression view")
		}
	}
	s.instruments.ProgressionServed(ctx, view, false, time.Since(start))
	return value, nil
}

func weeksStart(now time.Time, weeks int) time.Time {
	return progression.WeekStart(now).AddDate(0, 0, -7*(weeks-1))
}

func windowKey(from *time.Time) string {
	if from == nil {
		return "all"
	}
	return strconv.FormatInt(from.Unix(), 10)
}
