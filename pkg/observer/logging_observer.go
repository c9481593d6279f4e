package observer

import (
	"context"

	"github.com/tiniflow/tiniflow/pkg/logging"
)

// LoggingObserver adapts a *logging.Logger into an Observer, so pipeline
// lifecycle events show up in the structured log stream without the
// executor needing to know about logging directly.
type LoggingObserver struct {
	log *logging.Logger
}

// NewLoggingObserver returns an Observer that logs every event through log.
func NewLoggingObserver(log *logging.Logger) *LoggingObserver {
	return &LoggingObserver{log: log}
}

// OnEvent implements Observer.
func (o *LoggingObserver) OnEvent(_ context.Context, event Event) {
	l := o.log.WithExecutionID(event.ExecutionID)
	if event.NodeContents != "" {
		l = l.WithNode(event.NodeContents)
	}
	if event.PID != 0 {
		l = l.WithPID(event.PID)
	}
	if event.Error != nil {
		l = l.WithError(event.Error)
	}

	msg := string(event.Type)
	switch event.Type {
	case EventProcessExited:
		if event.ExitCode != 0 {
			l.WithField("exit_code", event.ExitCode).Warn(msg)
			return
		}
		l.Debug(msg)
	case EventEdgeRejected:
		l.Error(msg)
	default:
		l.Debug(msg)
	}
}
