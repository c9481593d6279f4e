package pipeline

import (
	"context"
	"time"

	"github.com/tiniflow/tiniflow/pkg/model"
	"github.com/tiniflow/tiniflow/pkg/observer"
)

// Expand performs one channel's graph expansion: it inserts a Tee at every
// out-degree>1 node (create_xgraph's first loop), then wires one Pipe per
// sink so that every predecessor of a given node shares the same Pipe
// instance — the fan-in coalescing rule (create_xgraph's second loop,
// keyed by (predecessor, sink) but always resolving to one Pipe per sink).
// The returned slice holds every Spawnable this expansion touched — the
// Commands from nodes plus however many Tees were synthesized — each
// already wired via registerInput/registerOutput. obs, which may be nil,
// is notified with EventTeeInserted for every synthesized Tee and
// EventPipeCoalesced for every sink whose predecessors share one pipe.
func Expand(ctx context.Context, graph *model.Graph, nodes map[*model.Node]Spawnable, isData bool, name string, obs observer.Observer) ([]Spawnable, error) {
	if obs == nil {
		obs = observer.Nop{}
	}
	type edgeKey struct{ u, v Spawnable }

	var xnodes []Spawnable
	seen := map[Spawnable]bool{}
	xsucc := map[Spawnable][]Spawnable{}
	xpred := map[Spawnable][]Spawnable{}

	addNode := func(s Spawnable) {
		if !seen[s] {
			seen[s] = true
			xnodes = append(xnodes, s)
		}
	}
	addEdge := func(u, v Spawnable) {
		addNode(u)
		addNode(v)
		xsucc[u] = append(xsucc[u], v)
		xpred[v] = append(xpred[v], u)
	}

	for _, n := range graph.Nodes() {
		u := nodes[n]
		addNode(u)

		succs := graph.Successors(n)
		if len(succs) > 1 {
			t := NewTee()
			addEdge(u, t)
			for _, v := range succs {
				addEdge(t, nodes[v])
			}
			obs.OnEvent(ctx, observer.Event{
				Type: observer.EventTeeInserted, NodeContents: u.String(),
				Timestamp: time.Now(), Metadata: map[string]interface{}{"channel": name, "fan_out": len(succs)},
			})
		} else {
			for _, v := range succs {
				addEdge(u, nodes[v])
			}
		}
	}

	pipes := map[edgeKey]*Pipe{}
	for _, u := range xnodes {
		for _, v := range xsucc[u] {
			key := edgeKey{u, v}
			if _, ok := pipes[key]; ok {
				continue
			}
			p, err := NewPipe()
			if err != nil {
				return nil, err
			}
			for _, pred := range xpred[v] {
				pipes[edgeKey{pred, v}] = p
			}
			if len(xpred[v]) > 1 {
				obs.OnEvent(ctx, observer.Event{
					Type: observer.EventPipeCoalesced, NodeContents: v.String(),
					Timestamp: time.Now(), Metadata: map[string]interface{}{"channel": name, "predecessors": len(xpred[v])},
				})
			}
		}
	}

	for _, u := range xnodes {
		for _, v := range xsucc[u] {
			p := pipes[edgeKey{u, v}]
			u.registerOutput(channelFD{file: p.Write, isData: isData, name: name})
			v.registerInput(channelFD{file: p.Read, isData: isData, name: name})
		}
	}

	return xnodes, nil
}
