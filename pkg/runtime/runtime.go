package runtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tiniflow/tiniflow/pkg/config"
	"github.com/tiniflow/tiniflow/pkg/logging"
	"github.com/tiniflow/tiniflow/pkg/model"
	"github.com/tiniflow/tiniflow/pkg/observer"
	"github.com/tiniflow/tiniflow/pkg/pipeline"
	"github.com/tiniflow/tiniflow/pkg/telemetry"
)

// On exposes the tag vocabulary for generated programs to reference
// (On.Failure, On.Start, ...), mirroring prologue.py's module-level
// `on = Tags()`.
var On = struct {
	Start, Always, Success, Failure, Data, Control model.Tag
}{
	Start:   model.TagStart,
	Always:  model.TagAlways,
	Success: model.TagSuccess,
	Failure: model.TagFailure,
	Data:    model.TagData,
	Control: model.TagControl,
}

// group is the single WorkflowGroup every generated program targets,
// mirroring prologue.py's module-level __workflow__ = WorkflowGroup().
var group = model.NewGroup()

// Node delegates to the active workflow — the transpiled form of a `*`
// line, the Go analogue of __node__ == WorkflowGroup.add_node.
func Node(contents string, metadata ...string) *model.Node {
	return group.AddNode(contents, metadata...)
}

// Edge delegates to the active workflow — the transpiled form of a `%`
// line. The first chain is the edge's traversal; any further chains
// contribute their values (each expected to be an On.<tag> value) as the
// edge's explicit metadata — the Go analogue of add_edge's
// (contents, metadata, *args) positional binding in the original, without
// requiring generated code to name pkg/model directly.
func Edge(seps [][]byte, chains ...[]any) (*model.Edge, error) {
	if len(chains) == 0 {
		return group.AddEdge(nil, seps)
	}
	var tags []model.Tag
	for _, extra := range chains[1:] {
		for _, v := range extra {
			if tag, ok := v.(model.Tag); ok {
				tags = append(tags, tag)
			}
		}
	}
	return group.AddEdge(tags, seps, chains[0]...)
}

// Enter makes the named workflow active and returns a restore func — the
// transpiled form of a `>` line, used as `defer runtime.Enter(key)()`.
func Enter(key string) func() {
	return group.Enter(key)
}

// EnterIndex makes the i'th declared workflow active — the transpiled
// form of a `>` line whose key is an integer literal.
func EnterIndex(i int) (func(), error) {
	return group.EnterIndex(i)
}

// SetObserver installs obs on the package-level workflow group so that
// EventEdgeRejected is reported as edges are declared, ahead of Run
// constructing its own execution-time Observer. A library consumer calls
// this before any tf.Edge(...) calls it wants rejection-observability for.
func SetObserver(obs observer.Observer) {
	group.SetObserver(obs)
}

// Run executes every declared workflow: assembling its data/control
// graphs, planning the expanded process set, and running it to
// completion. It is the transpiled form of the epilogue's
// `__workflow__.run(filename)`, parameterized so a caller (for example a
// generated program wiring its own observability) can supply a
// Config/Observer/Logger explicitly.
func Run(ctx context.Context, filename string, cfg *config.Config, obs observer.Observer, log *logging.Logger) error {
	executor := pipeline.NewExecutor(cfg, obs, log)
	for _, wf := range group.Workflows() {
		data, control := wf.Run()
		nodes, err := pipeline.Plan(ctx, data, control, obs)
		if err != nil {
			return fmt.Errorf("runtime: planning %s: %w", filename, err)
		}
		if _, err := executor.Run(ctx, nodes); err != nil {
			return fmt.Errorf("runtime: running %s: %w", filename, err)
		}
	}
	return nil
}

// ServeMetrics starts a Prometheus /metrics scrape endpoint on addr in the
// background, backed by pkg/telemetry's own Provider/Handler. This is the
// optional integration the CLI's --metrics-addr flag injects into a
// transpiled program's prologue: the generated program, not cmd/tiniflow
// itself, exposes metrics while its executor runs. Errors starting the
// listener are delivered asynchronously to the returned channel rather than
// blocking the caller, since a scrape endpoint failing to bind shouldn't
// stop the workflow it's observing.
func ServeMetrics(addr string) (<-chan error, error) {
	provider, err := telemetry.NewProvider(context.Background(), telemetry.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("runtime: starting metrics provider: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", provider.Handler())

	errCh := make(chan error, 1)
	go func() {
		errCh <- http.ListenAndServe(addr, mux)
	}()
	return errCh, nil
}

// RunDefault resolves a fresh Config via config.Resolve and runs every
// workflow with no observer/telemetry wiring. This is what the
// transpiler's epilogue calls directly, so a generated program needs no
// further setup to run.
func RunDefault(filename string) error {
	cfg, err := config.Resolve()
	if err != nil {
		return fmt.Errorf("runtime: resolving config: %w", err)
	}
	defer cfg.Close()
	return Run(context.Background(), filename, cfg, nil, nil)
}
