package model

// Graph is a directed graph over *Node keys, the Go stand-in for the
// networkx.DiGraph the original builds with add_node/add_edge. It is a
// simple graph (re-adding an existing (u, v) pair is a no-op), with
// insertion-ordered node and successor iteration so pipeline expansion is
// deterministic.
type Graph struct {
	nodes   []*Node
	index   map[*Node]int
	succ    map[*Node][]*Node
	pred    map[*Node][]*Node
	hasEdge map[[2]*Node]bool
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		index:   make(map[*Node]int),
		succ:    make(map[*Node][]*Node),
		pred:    make(map[*Node][]*Node),
		hasEdge: make(map[[2]*Node]bool),
	}
}

// AddNode inserts n if it is not already present. Idempotent, matching
// DiGraph.add_node.
func (g *Graph) AddNode(n *Node) {
	if _, ok := g.index[n]; ok {
		return
	}
	g.index[n] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

// AddEdge inserts the directed edge u -> v, adding either endpoint as a
// node first if needed. Re-adding the same pair is a no-op.
func (g *Graph) AddEdge(u, v *Node) {
	g.AddNode(u)
	g.AddNode(v)
	key := [2]*Node{u, v}
	if g.hasEdge[key] {
		return
	}
	g.hasEdge[key] = true
	g.succ[u] = append(g.succ[u], v)
	g.pred[v] = append(g.pred[v], u)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Successors returns n's out-neighbors in the order their edges were added.
func (g *Graph) Successors(n *Node) []*Node {
	return g.succ[n]
}

// Predecessors returns n's in-neighbors in the order their edges were added.
func (g *Graph) Predecessors(n *Node) []*Node {
	return g.pred[n]
}

// OutDegree returns the number of distinct successors of n.
func (g *Graph) OutDegree(n *Node) int {
	return len(g.succ[n])
}
