package telemetry

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const serviceNamespace = "liftlog"

// Config holds OpenTelemetry configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string // host only, e.g. "otlp-gateway-prod-ap-southeast-2.grafana.net"
	OTLPHeaders    map[string]string
	Enabled        bool
}

// BasicAuthHeaders builds the OTLP headers for Grafana Cloud style
// instanceID:token basic auth. Empty credentials produce no headers.
func BasicAuthHeaders(instanceID, token string) map[string]string {
	if instanceID == "" && token == "" {
		return map[string]string{}
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(instanceID + ":" + token))
	return map[string]string{"Authorization": "Basic " + encoded}
}

// Provider owns the exporting providers and the liftlog instruments bound to them
type Provider struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Instruments    *Instruments
}

// Views shapes the liftlog streams before export. Record counters keep only
// the record type, so a caller passing user or set ids cannot explode
// cardinality; progression timings get buckets sized for cached reads
// (single-digit ms) through cold aggregations (hundreds of ms).
func Views() []sdkmetric.View {
	return []sdkmetric.View{
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: "liftlog.records.*"},
			sdkmetric.Stream{AttributeFilter: attribute.NewAllowKeysFilter(AttrRecordType, AttrRebuildScope)},
		),
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: MetricProgressionCache},
			sdkmetric.Stream{AttributeFilter: attribute.NewAllowKeysFilter(AttrView, AttrCacheResult)},
		),
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: MetricProgressionDuration},
			sdkmetric.Stream{
				AttributeFilter: attribute.NewAllowKeysFilter(AttrView),
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
				},
			},
		),
	}
}

// Initialize exports traces and metrics over OTLP/HTTP and binds the liftlog
// instruments. When disabled it returns nil; services then fall back to the
// global no-op providers.
func Initialize(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		log.Info("OpenTelemetry disabled")
		return nil, nil
	}

	log.WithField("service", cfg.ServiceName).Info("Initializing OpenTelemetry...")

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
			semconv.ServiceNamespace(serviceNamespace),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}
	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.WithField("endpoint", cfg.OTLPEndpoint).Info("✓ OpenTelemetry initialized")

	return &Provider{
		TracerProvider: tp,
		MeterProvider:  mp,
		Instruments:    NewInstruments(mp),
	}, nil
}

// Grafana Cloud serves OTLP under /otlp
func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithURLPath("/otlp/v1/traces"),
		otlptracehttp.WithHeaders(cfg.OTLPHeaders),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	), nil
}

func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetrichttp.WithURLPath("/otlp/v1/metrics"),
		otlpmetrichttp.WithHeaders(cfg.OTLPHeaders),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
		sdkmetric.WithView(Views()...),
	), nil
}

// Shutdown flushes and stops both providers
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}

	log.Info("Shutting down OpenTelemetry...")

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			log.WithError(err).Error("failed to shut down tracer provider")
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			log.WithError(err).Error("failed to shut down meter provider")
		}
	}
	return nil
}
