package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tiniflow/tiniflow/pkg/observer"
)

// Observer implements observer.Observer and records telemetry for pipeline
// execution events, bridging the executor's notifications to Prometheus
// counters/histograms and OTel spans.
type Observer struct {
	provider *Provider

	mu            sync.Mutex
	executionSpan trace.Span
	executionTime time.Time
	processSpans  map[int]trace.Span
	processTimes  map[int]time.Time
}

// NewObserver creates an Observer that records against provider.
func NewObserver(provider *Provider) *Observer {
	return &Observer{
		provider:     provider,
		processSpans: make(map[int]trace.Span),
		processTimes: make(map[int]time.Time),
	}
}

// OnEvent implements observer.Observer.
func (o *Observer) OnEvent(ctx context.Context, event observer.Event) {
	switch event.Type {
	case observer.EventExecutionStart:
		o.handleExecutionStart(ctx, event)
	case observer.EventExecutionEnd:
		o.handleExecutionEnd(ctx, event)
	case observer.EventProcessForked:
		o.handleProcessForked(ctx, event)
	case observer.EventProcessReaped:
		o.handleProcessReaped(ctx, event)
	}
}

func (o *Observer) handleExecutionStart(ctx context.Context, event observer.Event) {
	_, span := o.provider.Tracer().Start(ctx, "pipeline.execute",
		trace.WithAttributes(attribute.String("execution.id", event.ExecutionID)))

	o.mu.Lock()
	o.executionSpan = span
	o.executionTime = event.Timestamp
	o.mu.Unlock()
}

func (o *Observer) handleExecutionEnd(ctx context.Context, event observer.Event) {
	o.mu.Lock()
	span := o.executionSpan
	started := o.executionTime
	o.executionSpan = nil
	o.mu.Unlock()

	duration := time.Since(started)
	success := event.Status == observer.StatusSuccess
	o.provider.RecordExecution(ctx, event.ExecutionID, duration, success)

	if span == nil {
		return
	}
	if event.Error != nil {
		span.RecordError(event.Error)
		span.SetStatus(codes.Error, event.Error.Error())
	} else {
		span.SetStatus(codes.Ok, "execution completed")
	}
	span.End()
}

func (o *Observer) handleProcessForked(ctx context.Context, event observer.Event) {
	o.provider.RecordProcessForked(ctx, event.ExecutionID)

	var parent context.Context
	o.mu.Lock()
	if o.executionSpan != nil {
		parent = trace.ContextWithSpan(ctx, o.executionSpan)
	} else {
		parent = ctx
	}
	o.mu.Unlock()

	_, span := o.provider.Tracer().Start(parent, "process.run",
		trace.WithAttributes(
			attribute.String("execution.id", event.ExecutionID),
			attribute.String("node.contents", event.NodeContents),
			attribute.Int("pid", event.PID),
		))

	o.mu.Lock()
	o.processSpans[event.PID] = span
	o.processTimes[event.PID] = event.Timestamp
	o.mu.Unlock()
}

func (o *Observer) handleProcessReaped(ctx context.Context, event observer.Event) {
	o.mu.Lock()
	span := o.processSpans[event.PID]
	started := o.processTimes[event.PID]
	delete(o.processSpans, event.PID)
	delete(o.processTimes, event.PID)
	o.mu.Unlock()

	var duration time.Duration
	if !started.IsZero() {
		duration = time.Since(started)
	}
	o.provider.RecordProcessReaped(ctx, event.ExecutionID, duration, event.ExitCode)

	if span == nil {
		return
	}
	if event.ExitCode != 0 {
		span.SetStatus(codes.Error, "non-zero exit")
	} else {
		span.SetStatus(codes.Ok, "process exited")
	}
	span.End()
}
