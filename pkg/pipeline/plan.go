package pipeline

import (
	"context"

	"github.com/tiniflow/tiniflow/pkg/model"
	"github.com/tiniflow/tiniflow/pkg/observer"
)

// Plan builds one Command per node in the workflow's assembled graphs and
// expands both the data and control graphs against them, returning the
// union of every Spawnable (the Commands plus however many Tees graph
// expansion synthesized) ready for Executor.Run. It is the direct
// analogue of flow.py's run() building
// "nodes = {n: Command(n.contents) for n in data_graph.nodes()}" before
// expanding each graph and unioning their node sets. obs, which may be
// nil, is notified of every Tee insertion and pipe coalescing Expand
// performs across both graphs.
func Plan(ctx context.Context, data, control *model.Graph, obs observer.Observer) ([]Spawnable, error) {
	commands := make(map[*model.Node]Spawnable, len(data.Nodes()))
	for _, n := range data.Nodes() {
		commands[n] = NewCommand(n.Contents)
	}
	for _, n := range control.Nodes() {
		if _, ok := commands[n]; !ok {
			commands[n] = NewCommand(n.Contents)
		}
	}

	dataNodes, err := Expand(ctx, data, commands, true, "TF_DATA", obs)
	if err != nil {
		return nil, err
	}
	controlNodes, err := Expand(ctx, control, commands, false, "TF_CTRL", obs)
	if err != nil {
		return nil, err
	}

	seen := make(map[Spawnable]bool, len(dataNodes)+len(controlNodes))
	all := make([]Spawnable, 0, len(dataNodes)+len(controlNodes))
	for _, group := range [][]Spawnable{dataNodes, controlNodes} {
		for _, s := range group {
			if seen[s] {
				continue
			}
			seen[s] = true
			all = append(all, s)
		}
	}
	return all, nil
}
