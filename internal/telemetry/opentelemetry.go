package telemetry

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	prometheusexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const defaultServiceName = "fitlink"

// InitTracerProvider installs a global TracerProvider that writes spans to w
// through the stdout exporter, and the W3C trace context propagators.
func InitTracerProvider(ctx context.Context, serviceName string, w io.Writer) (*sdktrace.TracerProvider, error) {
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().Str("service", serviceName).Msg("OpenTelemetry TracerProvider initialized")
	return tp, nil
}

// InitMeterProvider initializes the OpenTelemetry meter provider with a
// Prometheus exporter, so instrumentation metrics show up on /metrics.
func InitMeterProvider(reg prometheus.Registerer) (*metric.MeterProvider, error) {
	exporter, err := prometheusexporter.New(prometheusexporter.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}

	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	log.Info().Msg("OpenTelemetry MeterProvider initialized with Prometheus exporter")
	return mp, nil
}

// Shutdown flushes and stops the tracer and meter providers. Either may be nil.
func Shutdown(ctx context.Context, tp *sdktrace.TracerProvider, mp *metric.MeterProvider) {
	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Error shutting down OpenTelemetry TracerProvider")
		}
	}
	if mp != nil {
		if err := mp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Error shutting down OpenTelemetry MeterProvider")
		}
	}
}
