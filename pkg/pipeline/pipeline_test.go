package pipeline

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"testing"

	"github.com/tiniflow/tiniflow/pkg/config"
	"github.com/tiniflow/tiniflow/pkg/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Resolve()
	if err != nil {
		t.Fatalf("config.Resolve() error = %v", err)
	}
	t.Cleanup(func() { cfg.Close() })
	return cfg
}

// captureStdout redirects the test process's os.Stdout to a pipe for the
// duration of fn, returning everything written to it. Commands with no
// data predecessor/successor inherit this process's Stdout, mirroring a
// real fork()'s fd inheritance (S1).
func captureStdout(t *testing.T, fn func()) []byte {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	old := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	out, _ := io.ReadAll(r)
	r.Close()
	return out
}

func TestExecutor_SingleNodeWritesToInheritedStdout(t *testing.T) {
	wf := &model.Workflow{}
	wf.AddNode("echo hi")
	data, control := wf.Run()

	nodes, err := Plan(context.Background(), data, control, nil)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	cfg := testConfig(t)
	executor := NewExecutor(cfg, nil, nil)

	out := captureStdout(t, func() {
		report, err := executor.Run(context.Background(), nodes)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if report.Failures != 0 {
			t.Errorf("Failures = %d, want 0", report.Failures)
		}
	})

	if string(out) != "hi\n" {
		t.Errorf("stdout = %q, want %q", out, "hi\n")
	}
}

func TestExecutor_LinearDataPipeline(t *testing.T) {
	wf := &model.Workflow{}
	a := wf.AddNode("seq 1 3")
	b := wf.AddNode("wc -l")
	if _, err := wf.AddEdge(nil, [][]byte{{'|'}}, a, b); err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	data, control := wf.Run()

	nodes, err := Plan(context.Background(), data, control, nil)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	cfg := testConfig(t)
	executor := NewExecutor(cfg, nil, nil)

	out := captureStdout(t, func() {
		if _, err := executor.Run(context.Background(), nodes); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	})

	got := bytes.TrimSpace(out)
	if string(got) != "3" {
		t.Errorf("stdout = %q, want %q", got, "3")
	}
}

func TestExecutor_FanOutInsertsTeeAndDuplicatesData(t *testing.T) {
	wf := &model.Workflow{}
	a := wf.AddNode("echo x")
	b := wf.AddNode("cat >/tmp/tiniflow-test-b")
	c := wf.AddNode("cat >/tmp/tiniflow-test-c")
	if _, err := wf.AddEdge(nil, [][]byte{{'|'}}, a, b); err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	if _, err := wf.AddEdge(nil, [][]byte{{'|'}}, a, c); err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	data, control := wf.Run()

	if data.OutDegree(a) <= 1 {
		t.Fatalf("expected a to have out-degree > 1 in the input graph, got %d", data.OutDegree(a))
	}

	nodes, err := Plan(context.Background(), data, control, nil)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	teeCount := 0
	for _, n := range nodes {
		if _, ok := n.(*Tee); ok {
			teeCount++
		}
	}
	if teeCount != 1 {
		t.Errorf("tee count = %d, want 1", teeCount)
	}

	cfg := testConfig(t)
	if _, err := NewExecutor(cfg, nil, nil).Run(context.Background(), nodes); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, path := range []string{"/tmp/tiniflow-test-b", "/tmp/tiniflow-test-c"} {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading %s: %v", path, err)
		}
		if string(got) != "x\n" {
			t.Errorf("%s = %q, want %q", path, got, "x\n")
		}
	}
}

func TestTeeBuild_WiresStdinForControlChannelFanOut(t *testing.T) {
	graph := model.NewGraph()
	u := model.NewNode("u")
	v := model.NewNode("v")
	w := model.NewNode("w")
	graph.AddEdge(u, v)
	graph.AddEdge(u, w)

	commands := map[*model.Node]Spawnable{
		u: NewCommand(u.Contents),
		v: NewCommand(v.Contents),
		w: NewCommand(w.Contents),
	}

	nodes, err := Expand(context.Background(), graph, commands, false, "TF_CTRL", nil)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	var tee *Tee
	for _, n := range nodes {
		if t2, ok := n.(*Tee); ok {
			tee = t2
		}
	}
	if tee == nil {
		t.Fatalf("expected a Tee to be synthesized for control-channel fan-out")
	}

	cfg := testConfig(t)
	cmd, err := tee.build(cfg)
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	if cmd.Stdin == nil {
		t.Error("expected Tee.build to wire stdin for a control-channel input, got nil")
	}
	if cmd.Stdin != tee.ifds[0].file {
		t.Error("expected stdin to be the tee's sole registered input, regardless of isData")
	}
}

func TestExpand_SinkNodesShareOneCoalescedPipe(t *testing.T) {
	data := model.NewGraph()
	u1 := model.NewNode("u1")
	u2 := model.NewNode("u2")
	v := model.NewNode("v")
	data.AddEdge(u1, v)
	data.AddEdge(u2, v)

	commands := map[*model.Node]Spawnable{
		u1: NewCommand(u1.Contents),
		u2: NewCommand(u2.Contents),
		v:  NewCommand(v.Contents),
	}

	if _, err := Expand(context.Background(), data, commands, true, "TF_DATA", nil); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	vCmd := commands[v].(*Command)
	if len(vCmd.ifds) != 2 {
		t.Fatalf("expected v to have 2 registered inputs, got %d", len(vCmd.ifds))
	}
	if vCmd.ifds[0].file != vCmd.ifds[1].file {
		t.Error("expected both predecessors of v to share the same pipe read end")
	}
}

func TestExitCodeOf(t *testing.T) {
	if got := exitCodeOf(nil); got != 0 {
		t.Errorf("exitCodeOf(nil) = %d, want 0", got)
	}

	failing := exec.Command("/bin/sh", "-c", "exit 7")
	err := failing.Run()
	if got := exitCodeOf(err); got != 7 {
		t.Errorf("exitCodeOf(exit 7) = %d, want 7", got)
	}
}
