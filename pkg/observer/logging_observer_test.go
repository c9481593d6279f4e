package observer

import (
	"bytes"
	"context"
	"testing"

	"github.com/tiniflow/tiniflow/pkg/logging"
)

func TestLoggingObserver_LogsEvent(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: "debug", Output: &buf})
	o := NewLoggingObserver(log)

	o.OnEvent(context.Background(), Event{
		Type:         EventProcessForked,
		ExecutionID:  "exec-1",
		NodeContents: "echo hi",
		PID:          123,
	})

	if buf.Len() == 0 {
		t.Fatal("expected a log line to be written")
	}
}

func TestLoggingObserver_WarnsOnNonZeroExit(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: "debug", Output: &buf})
	o := NewLoggingObserver(log)

	o.OnEvent(context.Background(), Event{
		Type:        EventProcessExited,
		ExecutionID: "exec-1",
		ExitCode:    1,
	})

	if !bytes.Contains(buf.Bytes(), []byte("WARN")) {
		t.Fatalf("expected a WARN level line for non-zero exit, got: %s", buf.String())
	}
}
