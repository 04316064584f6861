// Package telemetry wires OpenTelemetry tracing and metrics for the service.
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JobsonDeveloper/Product-Microservice/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

func newResource(serviceName string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)
}

func NewTracerProvider(ctx context.Context, serviceName string, cfg config.TelemetryConfig) (*tracesdk.TracerProvider, error) {

	collectorOpts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Traces.OtlpHttp.Endpoint),
		otlptracehttp.WithTimeout(cfg.Traces.OtlpHttp.Timeout),
	}
	if cfg.Traces.OtlpHttp.Insecure {
		collectorOpts = append(collectorOpts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, collectorOpts...)
	if err != nil {
		return nil, err
	}
	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exporter),
		tracesdk.WithResource(newResource(serviceName)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp, nil
}

// NewMeterProvider installs a global meter provider backed by a Prometheus exporter
// and returns the handler exposing the collected metrics.
func NewMeterProvider(serviceName string) (*sdkmetric.MeterProvider, http.Handler, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(newResource(serviceName)),
	)
	otel.SetMeterProvider(mp)
	return mp, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}
