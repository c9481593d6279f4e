package model

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrMixedSeparators is returned by AddEdge when a single edge expression's
// primary chain mixes data ('|') and control ('-') separators.
var ErrMixedSeparators = errors.New("model: cannot mix data & control separators in the same edge")

// Workflow is an ordered list of nodes and edges. Declaration order is the
// only tie-breaker when rules are applied at Run time.
type Workflow struct {
	Nodes []*Node
	Edges []*Edge
}

// AddNode appends a new Node to the workflow and returns it.
func (w *Workflow) AddNode(contents string, metadata ...string) *Node {
	n := NewNode(contents, metadata...)
	w.Nodes = append(w.Nodes, n)
	return n
}

// AddEdge appends a new Edge. seps is the per-piece list of separator
// characters the transpiler observed in the edge's source text; seps[0],
// the primary chain's separators, decides the data/control classification.
// Mixing '|' and '-' within seps[0] is rejected with ErrMixedSeparators.
func (w *Workflow) AddEdge(metadata []Tag, seps [][]byte, chain ...any) (*Edge, error) {
	classified := append([]Tag(nil), metadata...)
	if len(seps) > 0 {
		distinct := map[byte]bool{}
		for _, s := range seps[0] {
			distinct[s] = true
		}
		switch {
		case len(distinct) > 1:
			return nil, ErrMixedSeparators
		case distinct['-']:
			classified = append(classified, TagControl)
		case distinct['|']:
			classified = append(classified, TagData)
		}
	}
	e := NewEdge(classified, chain...)
	w.Edges = append(w.Edges, e)
	return e, nil
}

// Run applies the §4.2 metadata propagation rules and assembles the data
// and control graphs, in exactly this order:
//
//  1. For every success/failure/always edge, every node but the first in
//     its traversal has its metadata destructively replaced with the
//     matching single rewrite tag. Order-sensitive: a later edge touching
//     an already-tagged node overwrites it.
//  2. For every start edge, the first node of its traversal gets tf-start
//     prepended to whatever metadata it already carries.
//  3. Every node with non-empty metadata gets its Contents rewritten to
//     "<tags joined by space> <original contents, NFC-normalized and
//     quoted by shellQuote>".
//
// Then every data edge's pairs go into the data graph, every control
// edge's pairs go into the control graph, and every node is inserted into
// both (idempotently) so the node universes match.
func (w *Workflow) Run() (data *Graph, control *Graph) {
	for _, e := range w.Edges {
		rewrite := ""
		switch {
		case e.Has(TagSuccess):
			rewrite = rewriteSuccess
		case e.Has(TagFailure):
			rewrite = rewriteFailure
		case e.Has(TagAlways):
			rewrite = rewriteAlways
		}
		if rewrite != "" {
			nodes := e.Traverse()
			for i, n := range nodes {
				if i == 0 {
					continue
				}
				n.Metadata = []string{rewrite}
			}
		}
	}
	for _, e := range w.Edges {
		if e.Has(TagStart) {
			if nodes := e.Traverse(); len(nodes) > 0 {
				first := nodes[0]
				first.Metadata = append([]string{rewriteStart}, first.Metadata...)
			}
		}
	}

	for _, n := range w.Nodes {
		if len(n.Metadata) == 0 {
			continue
		}
		tags := ""
		for i, t := range n.Metadata {
			if i > 0 {
				tags += " "
			}
			tags += t
		}
		normalized := norm.NFC.String(n.Contents)
		n.Contents = fmt.Sprintf("%s %s", tags, shellQuote(normalized))
	}

	data = NewGraph()
	control = NewGraph()
	for _, e := range w.Edges {
		switch {
		case e.Has(TagData):
			for _, p := range e.Pairs() {
				data.AddEdge(p[0], p[1])
			}
		case e.Has(TagControl):
			for _, p := range e.Pairs() {
				control.AddEdge(p[0], p[1])
			}
		}
	}
	for _, n := range w.Nodes {
		data.AddNode(n)
		control.AddNode(n)
	}
	return data, control
}

// shellQuote wraps s for re-parsing by a POSIX shell, picking a quote style
// the way prologue.py's repr()-based rewrite does: single quotes normally,
// switching to double quotes when s contains a single quote and no double
// quote (so "it's a test" round-trips without the '\''-per-apostrophe
// escaping a plain single-quoted wrap would need). Unlike Python's repr,
// which is only ever read back by Python, the double-quoted form here must
// still be safe for a POSIX shell to parse, so $, `, ", and \ are escaped
// within it.
func shellQuote(s string) string {
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		var b strings.Builder
		b.WriteByte('"')
		for _, r := range s {
			switch r {
			case '"', '\\', '$', '`':
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
		b.WriteByte('"')
		return b.String()
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
