package progression

import (
	"fmt"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/record"
)

// BuildMetricSeries plots the best value of metric per day.
// Warmups, dropsets, sets before from and sets of exercises missing from the
// catalog are left out. The result is ascending by date and never nil.
func BuildMetricSeries(sets []*domain.LoggedSet, metric domain.Metric, catalog domain.ExerciseCatalog, from *time.Time) ([]domain.DataPoint, error) {
	if !metric.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMetric, metric)
	}

	series := newDailySeries()
	for _, set := range sets {
		if set == nil || !set.CountsForRecords() || !inRange(set.LoggedAt, from) {
			continue
		}
		meta, ok := catalog.Lookup(set.ExerciseID)
		if !ok {
			continue
		}
		v, ok := MetricValue(metric, set, meta.IsTimed)
		if !ok {
			continue
		}
		series.add(set.LoggedAt, v)
	}
	return series.points(maxOf), nil
}

// MetricValue extracts a metric from a single set
func MetricValue(metric domain.Metric, set *domain.LoggedSet, isTimed bool) (float64, bool) {
	if metric == domain.MetricEstimated1RM {
		if set.Weight == nil || set.Reps == nil {
			return 0, false
		}
		return record.Estimated1RM(*set.Weight, *set.Reps)
	}
	return record.Value(domain.RecordType(metric), set, isTimed)
}
