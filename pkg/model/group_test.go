package model

import (
	"context"
	"testing"

	"github.com/tiniflow/tiniflow/pkg/observer"
)

type recordingObserver struct {
	events []observer.Event
}

func (r *recordingObserver) OnEvent(_ context.Context, e observer.Event) {
	r.events = append(r.events, e)
}

func TestGroup_AnonymousWorkflowPreCreated(t *testing.T) {
	g := NewGroup()
	if len(g.Names()) != 1 || g.Names()[0] != "" {
		t.Fatalf("Names() = %v, want one anonymous entry", g.Names())
	}
	n := g.AddNode("echo hi")
	if len(g.workflows[""].Nodes) != 1 || g.workflows[""].Nodes[0] != n {
		t.Fatalf("AddNode did not target the anonymous workflow")
	}
}

func TestGroup_EnterByNameCreatesLazily(t *testing.T) {
	g := NewGroup()
	restore := g.Enter("build")
	g.AddNode("make")
	restore()

	if len(g.Names()) != 2 || g.Names()[1] != "build" {
		t.Fatalf("Names() = %v, want [\"\", \"build\"]", g.Names())
	}
	if len(g.workflows["build"].Nodes) != 1 {
		t.Fatalf("node was not added to the entered workflow")
	}
	// restore() must have put the anonymous workflow back as current.
	g.AddNode("echo after")
	if len(g.workflows[""].Nodes) != 1 {
		t.Fatalf("current workflow was not restored after Enter's closure ran")
	}
}

func TestGroup_EnterIndexOutOfRangeFails(t *testing.T) {
	g := NewGroup()
	if _, err := g.EnterIndex(5); err == nil {
		t.Fatal("expected an error for an out-of-range workflow index")
	}
}

// TestGroup_AddEdgeReportsEventEdgeRejected checks that a SetObserver'd
// Group notifies EventEdgeRejected when the delegated Workflow.AddEdge call
// rejects an edge for mixing data and control separators.
func TestGroup_AddEdgeReportsEventEdgeRejected(t *testing.T) {
	g := NewGroup()
	rec := &recordingObserver{}
	g.SetObserver(rec)

	a := g.AddNode("a")
	b := g.AddNode("b")
	if _, err := g.AddEdge(nil, [][]byte{{'|', '-'}}, a, b); err != ErrMixedSeparators {
		t.Fatalf("AddEdge() error = %v, want ErrMixedSeparators", err)
	}

	if len(rec.events) != 1 {
		t.Fatalf("got %d events, want 1", len(rec.events))
	}
	if rec.events[0].Type != observer.EventEdgeRejected {
		t.Fatalf("event type = %v, want EventEdgeRejected", rec.events[0].Type)
	}
	if rec.events[0].Error != ErrMixedSeparators {
		t.Fatalf("event error = %v, want ErrMixedSeparators", rec.events[0].Error)
	}
}

// TestGroup_AddEdgeNoEventOnSuccess checks that a valid edge produces no
// EventEdgeRejected notification.
func TestGroup_AddEdgeNoEventOnSuccess(t *testing.T) {
	g := NewGroup()
	rec := &recordingObserver{}
	g.SetObserver(rec)

	a := g.AddNode("a")
	b := g.AddNode("b")
	if _, err := g.AddEdge(nil, [][]byte{{'|'}}, a, b); err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	if len(rec.events) != 0 {
		t.Fatalf("got %d events, want 0", len(rec.events))
	}
}

func TestGroup_EnterIndexSelectsDeclaredWorkflow(t *testing.T) {
	g := NewGroup()
	g.Enter("a")()
	g.Enter("b")()

	restore, err := g.EnterIndex(1)
	if err != nil {
		t.Fatal(err)
	}
	defer restore()
	if g.current != g.workflows["a"] {
		t.Fatalf("EnterIndex(1) selected the wrong workflow")
	}
}
