package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "tiniflow-executor"

	metricExecutions        = "execution.runs.total"
	metricExecutionDuration = "execution.duration"
	metricExecutionSuccess  = "execution.success.total"
	metricExecutionFailure  = "execution.failure.total"
	metricProcessesForked   = "process.forked.total"
	metricProcessesReaped   = "process.reaped.total"
	metricProcessDuration   = "process.duration"
)

// Provider manages OpenTelemetry setup and exposes tracers/meters plus
// domain-specific recording helpers to the executor.
type Provider struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider trace.TracerProvider
	meter          metric.Meter
	tracer         trace.Tracer

	executions        metric.Int64Counter
	executionDuration metric.Float64Histogram
	executionSuccess  metric.Int64Counter
	executionFailure  metric.Int64Counter
	processesForked   metric.Int64Counter
	processesReaped   metric.Int64Counter
	processDuration   metric.Float64Histogram

	mu sync.RWMutex
}

// Config holds telemetry configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	EnableTracing  bool
	EnableMetrics  bool
}

// DefaultConfig returns default telemetry configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    "development",
		EnableTracing:  true,
		EnableMetrics:  true,
	}
}

// NewProvider creates a Provider with a Prometheus metrics exporter and
// initializes tracing against the global TracerProvider.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	provider := &Provider{}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating resource: %w", err)
	}

	if config.EnableMetrics {
		if err := provider.initMetrics(res); err != nil {
			return nil, fmt.Errorf("telemetry: initializing metrics: %w", err)
		}
	}

	if config.EnableTracing {
		provider.initTracing()
	}

	return provider, nil
}

func (p *Provider) initMetrics(res *resource.Resource) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("creating prometheus exporter: %w", err)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(p.meterProvider)
	p.meter = p.meterProvider.Meter(serviceName)

	return p.createMetricInstruments()
}

func (p *Provider) initTracing() {
	p.tracerProvider = otel.GetTracerProvider()
	p.tracer = p.tracerProvider.Tracer(serviceName)
}

func (p *Provider) createMetricInstruments() error {
	var err error

	p.executions, err = p.meter.Int64Counter(metricExecutions,
		metric.WithDescription("Total number of pipeline executions"))
	if err != nil {
		return err
	}

	p.executionDuration, err = p.meter.Float64Histogram(metricExecutionDuration,
		metric.WithDescription("Pipeline execution duration in milliseconds"),
		metric.WithUnit("ms"))
	if err != nil {
		return err
	}

	p.executionSuccess, err = p.meter.Int64Counter(metricExecutionSuccess,
		metric.WithDescription("Total number of pipeline executions where every child exited zero"))
	if err != nil {
		return err
	}

	p.executionFailure, err = p.meter.Int64Counter(metricExecutionFailure,
		metric.WithDescription("Total number of pipeline executions with at least one non-zero exit"))
	if err != nil {
		return err
	}

	p.processesForked, err = p.meter.Int64Counter(metricProcessesForked,
		metric.WithDescription("Total number of child processes spawned"))
	if err != nil {
		return err
	}

	p.processesReaped, err = p.meter.Int64Counter(metricProcessesReaped,
		metric.WithDescription("Total number of child processes reaped"))
	if err != nil {
		return err
	}

	p.processDuration, err = p.meter.Float64Histogram(metricProcessDuration,
		metric.WithDescription("Child process wall-clock duration in milliseconds"),
		metric.WithUnit("ms"))
	if err != nil {
		return err
	}

	return nil
}

// Tracer returns the tracer for creating spans.
func (p *Provider) Tracer() trace.Tracer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracer
}

// Meter returns the meter for recording metrics.
func (p *Provider) Meter() metric.Meter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.meter
}

// RecordExecution records metrics for one Executor.Run invocation.
func (p *Provider) RecordExecution(ctx context.Context, executionID string, duration time.Duration, success bool) {
	if p.meter == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("execution.id", executionID)}

	p.executions.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.executionDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if success {
		p.executionSuccess.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		p.executionFailure.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordProcessForked records that a child process was spawned.
func (p *Provider) RecordProcessForked(ctx context.Context, executionID string) {
	if p.meter == nil {
		return
	}
	p.processesForked.Add(ctx, 1, metric.WithAttributes(attribute.String("execution.id", executionID)))
}

// RecordProcessReaped records that a child process exited and was reaped.
func (p *Provider) RecordProcessReaped(ctx context.Context, executionID string, duration time.Duration, exitCode int) {
	if p.meter == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("execution.id", executionID),
		attribute.Int("exit.code", exitCode),
	}
	p.processesReaped.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.processDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// Handler returns the Prometheus scrape handler for the metrics this
// Provider registers, mirroring thaiyyal/backend/pkg/server's own
// mux.Handle("/metrics", promhttp.Handler()) wiring. A caller can mount it on
// whatever mux it likes; pkg/runtime.ServeMetrics, the call cmd/tiniflow's
// --metrics-addr injects into a generated program, mounts it at /metrics.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

// Shutdown gracefully shuts down the telemetry provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: shutting down meter provider: %w", err)
		}
	}
	return nil
}
