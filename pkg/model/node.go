package model

import "fmt"

// Node is one shell command plus whatever metadata tags Workflow.Run has
// decided belong to it. A Node is only ever handled by pointer: its
// identity, not its contents, is what graph edges key on, mirroring the
// original Python implementation where Node instances are used directly as
// networkx graph nodes.
type Node struct {
	// Contents is the shell command string. It is rewritten exactly once,
	// by Workflow.Run, to prefix any accumulated metadata tags.
	Contents string

	// Metadata holds the tags Workflow.Run writes into Contents: whatever
	// was passed to NewNode, replaced by a single rewrite tag when the node
	// is a non-first member of a success/failure/always edge, with tf-start
	// prepended when it begins a start edge (see Workflow.Run).
	Metadata []string
}

// NewNode constructs a Node. metadata is copied defensively so the caller's
// slice can be reused or mutated afterwards without affecting this Node.
func NewNode(contents string, metadata ...string) *Node {
	n := &Node{Contents: contents}
	if len(metadata) > 0 {
		n.Metadata = append([]string(nil), metadata...)
	}
	return n
}

// String matches the original's Node.__repr__ debug rendering.
func (n *Node) String() string {
	return fmt.Sprintf("Node(%q, %v)", n.Contents, n.Metadata)
}
