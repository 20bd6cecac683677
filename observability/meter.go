package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/kaproxy-go/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string `mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(ctx, config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the client's metric instruments.
type Metrics struct {
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	operationActive   metric.Int64UpDownCounter
	emptyTotal        metric.Int64Counter
	errorTotal        metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	operationTotal, err := meter.Int64Counter("kaproxy.operation.total",
		metric.WithDescription("Total number of produce and consume calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kaproxy.operation.total counter: %w", err)
	}

	operationDuration, err := meter.Float64Histogram("kaproxy.operation.duration",
		metric.WithDescription("Duration of produce and consume calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kaproxy.operation.duration histogram: %w", err)
	}

	operationActive, err := meter.Int64UpDownCounter("kaproxy.operation.active",
		metric.WithDescription("Number of calls currently waiting on the proxy"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kaproxy.operation.active gauge: %w", err)
	}

	emptyTotal, err := meter.Int64Counter("kaproxy.consume.empty.total",
		metric.WithDescription("Consume calls that found no message"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kaproxy.consume.empty.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("kaproxy.error.total",
		metric.WithDescription("Failed calls by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kaproxy.error.total counter: %w", err)
	}

	return &Metrics{
		operationTotal:    operationTotal,
		operationDuration: operationDuration,
		operationActive:   operationActive,
		emptyTotal:        emptyTotal,
		errorTotal:        errorTotal,
	}, nil
}

// RecordStart increments the active call count.
func (m *Metrics) RecordStart(ctx context.Context, operation string) {
	m.operationActive.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordEnd decrements the active call count and records the completed call.
func (m *Metrics) RecordEnd(ctx context.Context, operation, topic, outcome string, duration time.Duration) {
	m.operationActive.Add(ctx, -1, metric.WithAttributes(attribute.String("operation", operation)))
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("topic", topic),
		attribute.String("outcome", outcome),
	))
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("topic", topic),
	))
}

// RecordEmpty records a consume call that returned no message.
func (m *Metrics) RecordEmpty(ctx context.Context, group, topic string) {
	m.emptyTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("group", group),
		attribute.String("topic", topic),
	))
}

// RecordError records a failed call by error code.
func (m *Metrics) RecordError(ctx context.Context, code, operation string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("operation", operation),
	))
}
