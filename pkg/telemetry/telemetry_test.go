package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		config Config
	}{
		{name: "default config", config: DefaultConfig()},
		{
			name: "custom config",
			config: Config{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Environment:    "test",
				EnableTracing:  true,
				EnableMetrics:  true,
			},
		},
		{
			name: "metrics only",
			config: Config{
				ServiceName: "test-service", ServiceVersion: "1.0.0", Environment: "test",
				EnableTracing: false, EnableMetrics: true,
			},
		},
		{
			name: "tracing only",
			config: Config{
				ServiceName: "test-service", ServiceVersion: "1.0.0", Environment: "test",
				EnableTracing: true, EnableMetrics: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(ctx, tt.config)
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}
			if provider == nil {
				t.Fatal("NewProvider() returned nil provider")
			}

			if tt.config.EnableTracing && provider.Tracer() == nil {
				t.Error("Tracer() returned nil when tracing is enabled")
			}
			if tt.config.EnableMetrics && provider.Meter() == nil {
				t.Error("Meter() returned nil when metrics are enabled")
			}

			if err := provider.Shutdown(ctx); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestRecordExecution(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, DefaultConfig())
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Shutdown(ctx)

	tests := []struct {
		name        string
		executionID string
		duration    time.Duration
		success     bool
	}{
		{name: "successful execution", executionID: "exec-1", duration: 100 * time.Millisecond, success: true},
		{name: "failed execution", executionID: "exec-2", duration: 50 * time.Millisecond, success: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider.RecordExecution(ctx, tt.executionID, tt.duration, tt.success)
		})
	}
}

func TestRecordProcessForkedAndReaped(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, DefaultConfig())
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Shutdown(ctx)

	provider.RecordProcessForked(ctx, "exec-1")
	provider.RecordProcessReaped(ctx, "exec-1", 10*time.Millisecond, 0)
	provider.RecordProcessReaped(ctx, "exec-1", 5*time.Millisecond, 1)
}

func TestProvider_NilMeterIsSafe(t *testing.T) {
	var p Provider
	ctx := context.Background()

	p.RecordExecution(ctx, "exec-1", time.Millisecond, true)
	p.RecordProcessForked(ctx, "exec-1")
	p.RecordProcessReaped(ctx, "exec-1", time.Millisecond, 0)
}
