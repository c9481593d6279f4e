package observer

import (
	"context"
	"time"
)

// EventType represents the kind of pipeline lifecycle event being reported.
type EventType string

const (
	// Execution-level events
	EventExecutionStart EventType = "execution_start"
	EventExecutionEnd   EventType = "execution_end"

	// Process-level events
	EventProcessForked EventType = "process_forked"
	EventProcessWired  EventType = "process_wired"
	EventProcessExited EventType = "process_exited"
	EventProcessReaped EventType = "process_reaped"

	// Graph-expansion events
	EventTeeInserted   EventType = "tee_inserted"
	EventEdgeRejected  EventType = "edge_rejected"
	EventPipeCoalesced EventType = "pipe_coalesced"
)

// Status represents the outcome of a process or execution.
type Status string

const (
	StatusStarted Status = "started"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDone    Status = "done"
)

// Event carries the metadata for one pipeline lifecycle notification.
type Event struct {
	Type      EventType `json:"type"`
	Status    Status    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	ExecutionID string `json:"execution_id"`

	// Node/process-specific fields (empty for execution-level events).
	NodeContents string `json:"node_contents,omitempty"`
	PID          int    `json:"pid,omitempty"`

	StartTime   time.Time     `json:"start_time,omitempty"`
	ElapsedTime time.Duration `json:"elapsed_time,omitempty"`

	ExitCode int   `json:"exit_code,omitempty"`
	Error    error `json:"error,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Observer receives notifications about pipeline execution.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Multi fans one event out to several observers in registration order.
type Multi []Observer

// OnEvent implements Observer.
func (m Multi) OnEvent(ctx context.Context, event Event) {
	for _, o := range m {
		o.OnEvent(ctx, event)
	}
}

// Nop discards every event. It is the Executor's default observer.
type Nop struct{}

// OnEvent implements Observer.
func (Nop) OnEvent(context.Context, Event) {}
