package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	appCounter    otelmetric.Int64Counter
	appDuration   otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	appCounter, _ := meter.Int64Counter(
		"applications.processed",
		otelmetric.WithDescription("Number of loan applications processed"),
	)

	appDuration, _ := meter.Float64Histogram(
		"applications.duration",
		otelmetric.WithDescription("End-to-end application processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		appCounter:    appCounter,
		appDuration:   appDuration,
	}
}

func (o *Observability) RecordApplicationProcessed(ctx context.Context, recommendation string) {
	if o.appCounter != nil {
		o.appCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("recommendation", recommendation),
		))
	}
}

func (o *Observability) RecordProcessingDuration(ctx context.Context, duration time.Duration, recommendation string) {
	if o.appDuration != nil {
		o.appDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("recommendation", recommendation),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
