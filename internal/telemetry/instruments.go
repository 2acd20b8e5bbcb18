package telemetry

import (
	"context"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationScope = "github.com/mansoorceksport/liftlog"

// Metric names
const (
	MetricRecordsDetected     = "liftlog.records.detected"
	MetricRecordConflicts     = "liftlog.records.conflicts"
	MetricRecordsRebuilt      = "liftlog.records.rebuilt"
	MetricProgressionCache    = "liftlog.progression.cache"
	MetricProgressionDuration = "liftlog.progression.duration"
)

// Attribute keys
const (
	AttrRecordType   = attribute.Key("record_type")
	AttrRebuildScope = attribute.Key("scope") // "exercise" or "all"
	AttrView         = attribute.Key("view")
	AttrCacheResult  = attribute.Key("result") // "hit" or "miss"
)

// Instruments are the liftlog domain meters. A nil *Instruments is valid and
// records nothing.
type Instruments struct {
	recordsDetected     metric.Int64Counter
	recordConflicts     metric.Int64Counter
	recordsRebuilt      metric.Int64Counter
	progressionCache    metric.Int64Counter
	progressionDuration metric.Float64Histogram
}

// NewInstruments creates the liftlog instruments on mp. An instrument that
// fails to register is logged and left out.
func NewInstruments(mp metric.MeterProvider) *Instruments {
	meter := mp.Meter(instrumentationScope)
	inst := &Instruments{}

	var err error
	if inst.recordsDetected, err = meter.Int64Counter(MetricRecordsDetected,
		metric.WithDescription("Personal records established by logged sets")); err != nil {
		warnInstrument(MetricRecordsDetected, err)
	}
	if inst.recordConflicts, err = meter.Int64Counter(MetricRecordConflicts,
		metric.WithDescription("Record writes that lost a compare-and-set race")); err != nil {
		warnInstrument(MetricRecordConflicts, err)
	}
	if inst.recordsRebuilt, err = meter.Int64Counter(MetricRecordsRebuilt,
		metric.WithDescription("Records written by history rebuilds")); err != nil {
		warnInstrument(MetricRecordsRebuilt, err)
	}
	if inst.progressionCache, err = meter.Int64Counter(MetricProgressionCache,
		metric.WithDescription("Progression view lookups by cache outcome")); err != nil {
		warnInstrument(MetricProgressionCache, err)
	}
	if inst.progressionDuration, err = meter.Float64Histogram(MetricProgressionDuration,
		metric.WithDescription("Time to serve a progression view"),
		metric.WithUnit("ms")); err != nil {
		warnInstrument(MetricProgressionDuration, err)
	}
	return inst
}

func warnInstrument(name string, err error) {
	log.WithError(err).WithField("instrument", name).Warn("failed to create instrument")
}

// RecordDetected counts a record established by a set
func (i *Instruments) RecordDetected(ctx context.Context, rt domain.RecordType) {
	if i == nil || i.recordsDetected == nil {
		return
	}
	i.recordsDetected.Add(ctx, 1, metric.WithAttributes(AttrRecordType.String(string(rt))))
}

// RecordConflict counts a compare-and-set write that lost to a concurrent one
func (i *Instruments) RecordConflict(ctx context.Context, rt domain.RecordType) {
	if i == nil || i.recordConflicts == nil {
		return
	}
	i.recordConflicts.Add(ctx, 1, metric.WithAttributes(AttrRecordType.String(string(rt))))
}

// RecordsRebuilt counts records written by a rebuild of one exercise or all
func (i *Instruments) RecordsRebuilt(ctx context.Context, scope string, n int) {
	if i == nil || i.recordsRebuilt == nil {
		return
	}
	i.recordsRebuilt.Add(ctx, int64(n), metric.WithAttributes(AttrRebuildScope.String(scope)))
}

// ProgressionServed records the cache outcome and latency of one view
func (i *Instruments) ProgressionServed(ctx context.Context, view string, hit bool, elapsed time.Duration) {
	if i == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	if i.progressionCache != nil {
		i.progressionCache.Add(ctx, 1, metric.WithAttributes(AttrView.String(view), AttrCacheResult.String(result)))
	}
	if i.progressionDuration != nil {
		i.progressionDuration.Record(ctx, float64(elapsed)/float64(time.Millisecond),
			metric.WithAttributes(AttrView.String(view)))
	}
}
