package model

import (
	"context"
	"fmt"
	"time"

	"github.com/tiniflow/tiniflow/pkg/observer"
)

// ErrUnknownWorkflow is returned by EnterIndex when the index is out of
// range for the workflows declared so far.
type ErrUnknownWorkflow struct{ Index, Count int }

func (e *ErrUnknownWorkflow) Error() string {
	return fmt.Sprintf("model: workflow index %d out of range (have %d)", e.Index, e.Count)
}

// Group is a WorkflowGroup: a mapping from workflow name (or the implicit
// anonymous key "") to Workflow, with a notion of the currently active
// workflow that add_node/add_edge calls target. NewGroup pre-creates the
// anonymous workflow so scripts without an explicit > block still work.
type Group struct {
	workflows map[string]*Workflow
	order     []string // insertion order, for index-based Enter
	current   *Workflow
	obs       observer.Observer
}

// NewGroup returns a Group with one pre-created anonymous workflow active.
func NewGroup() *Group {
	g := &Group{workflows: make(map[string]*Workflow), obs: observer.Nop{}}
	g.new("")
	return g
}

// SetObserver installs obs so AddEdge can report EventEdgeRejected at
// declaration time — before any execution-time Observer normally exists,
// since a transpiled program declares every edge via tf.Edge(...) ahead of
// the final tf.RunDefault(...) call. A nil obs resets to observer.Nop{}.
func (g *Group) SetObserver(obs observer.Observer) {
	if obs == nil {
		obs = observer.Nop{}
	}
	g.obs = obs
}

func (g *Group) new(name string) *Workflow {
	w := &Workflow{}
	if _, exists := g.workflows[name]; !exists {
		g.order = append(g.order, name)
	}
	g.workflows[name] = w
	g.current = w
	return w
}

// AddNode delegates to the currently active workflow.
func (g *Group) AddNode(contents string, metadata ...string) *Node {
	return g.current.AddNode(contents, metadata...)
}

// AddEdge delegates to the currently active workflow, reporting
// EventEdgeRejected to the installed Observer (see SetObserver) whenever the
// delegated call rejects the edge (e.g. ErrMixedSeparators).
func (g *Group) AddEdge(metadata []Tag, seps [][]byte, chain ...any) (*Edge, error) {
	edge, err := g.current.AddEdge(metadata, seps, chain...)
	if err != nil {
		g.obs.OnEvent(context.Background(), observer.Event{
			Type: observer.EventEdgeRejected, Timestamp: time.Now(), Error: err,
		})
	}
	return edge, err
}

// Enter makes the named workflow active, creating it (at the end of the
// declaration order) if it doesn't exist yet, and returns a func that
// restores whichever workflow was active before. A transpiled `> name`
// block is `defer group.Enter(name)()` wrapping the block's Go scope —
// the idiomatic substitute for the original's @contextmanager.
func (g *Group) Enter(name string) func() {
	previous := g.current
	w, ok := g.workflows[name]
	if !ok {
		w = g.new(name)
	}
	g.current = w
	return func() { g.current = previous }
}

// EnterIndex makes the i'th declared workflow (in declaration order)
// active. Unlike Enter, an out-of-range index is a hard error: indexing
// only ever addresses a workflow that already exists.
func (g *Group) EnterIndex(i int) (func(), error) {
	if i < 0 || i >= len(g.order) {
		return nil, &ErrUnknownWorkflow{Index: i, Count: len(g.order)}
	}
	previous := g.current
	g.current = g.workflows[g.order[i]]
	return func() { g.current = previous }, nil
}

// Workflows returns every declared workflow, the anonymous one included, in
// declaration order.
func (g *Group) Workflows() []*Workflow {
	out := make([]*Workflow, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.workflows[name])
	}
	return out
}

// Names returns the declared workflow names in declaration order.
func (g *Group) Names() []string {
	return append([]string(nil), g.order...)
}
