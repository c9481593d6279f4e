package model

// Tag is one member of the closed metadata vocabulary a DSL author can
// attach to an edge via on.<tag>. Data/control are normally inferred from
// the separator (see pkg/dsl) but are accepted explicitly too.
type Tag string

const (
	TagStart   Tag = "start"
	TagAlways  Tag = "always"
	TagSuccess Tag = "success"
	TagFailure Tag = "failure"
	TagData    Tag = "data"
	TagControl Tag = "control"
)

// rewrite tags are never placed in Edge.Metadata; they are the literal
// prefixes Workflow.Run writes into a node's Contents.
const (
	rewriteStart   = "tf-start"
	rewriteSuccess = "tf-success"
	rewriteFailure = "tf-failure"
	rewriteAlways  = "tf-always"
)

func hasTag(metadata []Tag, t Tag) bool {
	for _, m := range metadata {
		if m == t {
			return true
		}
	}
	return false
}
