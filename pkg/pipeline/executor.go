package pipeline

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/tiniflow/tiniflow/pkg/config"
	"github.com/tiniflow/tiniflow/pkg/logging"
	"github.com/tiniflow/tiniflow/pkg/observer"
)

// ProcessResult records the outcome of one spawned process.
type ProcessResult struct {
	Contents string
	PID      int
	ExitCode int
}

// Report summarizes one Executor.Run invocation.
type Report struct {
	ExecutionID string
	Processes   []ProcessResult
	Failures    int
}

// Executor spawns and supervises one run of a planned process set.
type Executor struct {
	Config   *config.Config
	Observer observer.Observer
	Log      *logging.Logger
}

// NewExecutor returns an Executor. obs and log may be nil: a nil obs
// behaves as observer.Nop{}, a nil log falls back to
// logging.New(logging.DefaultConfig()).
func NewExecutor(cfg *config.Config, obs observer.Observer, log *logging.Logger) *Executor {
	if obs == nil {
		obs = observer.Nop{}
	}
	if log == nil {
		log = logging.New(logging.DefaultConfig())
	}
	return &Executor{Config: cfg, Observer: obs, Log: log}
}

// reapResult funnels one child's completion onto the shared channel Run
// drains — the Go idiom standing in for a parent looping on
// waitpid(-1, 0): Go cannot waitpid an arbitrary pid with -1 semantics
// portably, so each child instead gets its own goroutine blocked in
// cmd.Wait(), fanning completions into one place.
type reapResult struct {
	proc Spawnable
	cmd  *exec.Cmd
	err  error
}

// Run starts every node in nodes (already expanded via Plan), waits for
// all of them to exit, and returns a Report. A child's non-zero exit is
// never treated as fatal: it is recorded in the Report and reported to the
// Observer/Log, but every sibling is still reaped (§4.3).
func (e *Executor) Run(ctx context.Context, nodes []Spawnable) (*Report, error) {
	executionID := uuid.NewString()
	started := time.Now()
	log := e.Log.WithExecutionID(executionID)

	e.Observer.OnEvent(ctx, observer.Event{
		Type: observer.EventExecutionStart, ExecutionID: executionID, Timestamp: started,
		Status: observer.StatusStarted,
	})
	log.Info("execution started")

	results := make(chan reapResult, len(nodes))
	report := &Report{ExecutionID: executionID}

	for _, n := range nodes {
		cmd, err := n.build(e.Config)
		if err != nil {
			return nil, fmt.Errorf("pipeline: building %s: %w", n, err)
		}

		e.Observer.OnEvent(ctx, observer.Event{
			Type: observer.EventProcessWired, ExecutionID: executionID,
			NodeContents: n.String(), Timestamp: time.Now(),
		})
		log.WithNode(n.String()).Debug("process wired")

		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("pipeline: starting %s: %w", n, err)
		}

		e.Observer.OnEvent(ctx, observer.Event{
			Type: observer.EventProcessForked, ExecutionID: executionID,
			NodeContents: n.String(), PID: cmd.Process.Pid, Timestamp: time.Now(),
			Status: observer.StatusStarted,
		})
		log.WithNode(n.String()).WithPID(cmd.Process.Pid).Debug("process forked")

		go func(n Spawnable, cmd *exec.Cmd) {
			results <- reapResult{proc: n, cmd: cmd, err: cmd.Wait()}
		}(n, cmd)
	}

	for range nodes {
		res := <-results
		exitCode := exitCodeOf(res.err)

		exitStatus := observer.StatusSuccess
		if exitCode != 0 {
			exitStatus = observer.StatusFailure
		}
		e.Observer.OnEvent(ctx, observer.Event{
			Type: observer.EventProcessExited, ExecutionID: executionID,
			NodeContents: res.proc.String(), PID: res.cmd.Process.Pid, ExitCode: exitCode, Timestamp: time.Now(),
			Status: exitStatus,
		})

		for _, f := range res.proc.outputFiles() {
			_ = f.Close()
		}

		e.Observer.OnEvent(ctx, observer.Event{
			Type: observer.EventProcessReaped, ExecutionID: executionID,
			PID: res.cmd.Process.Pid, ExitCode: exitCode, Timestamp: time.Now(),
			Status: observer.StatusDone,
		})
		log.WithNode(res.proc.String()).WithPID(res.cmd.Process.Pid).Debugf("process reaped, exit=%d", exitCode)

		report.Processes = append(report.Processes, ProcessResult{
			Contents: res.proc.String(), PID: res.cmd.Process.Pid, ExitCode: exitCode,
		})
		if exitCode != 0 {
			report.Failures++
		}
	}

	status := observer.StatusSuccess
	if report.Failures > 0 {
		status = observer.StatusFailure
	}
	e.Observer.OnEvent(ctx, observer.Event{
		Type: observer.EventExecutionEnd, ExecutionID: executionID, Status: status,
	})
	log.Infof("execution finished, %d/%d processes failed", report.Failures, len(nodes))

	return report, nil
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
