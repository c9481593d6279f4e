package runtime

import (
	"testing"
)

func TestNode_DelegatesToActiveWorkflow(t *testing.T) {
	before := len(group.Workflows()[0].Nodes)
	n := Node("echo hi")
	after := len(group.Workflows()[0].Nodes)

	if after != before+1 {
		t.Fatalf("node count = %d, want %d", after, before+1)
	}
	if n.Contents != "echo hi" {
		t.Errorf("Contents = %q, want %q", n.Contents, "echo hi")
	}
}

func TestEdge_AttachesOnTagsAsMetadata(t *testing.T) {
	a := Node("job")
	b := Node("cleanup")

	e, err := Edge([][]byte{{'-'}}, []any{a, b}, []any{On.Failure})
	if err != nil {
		t.Fatalf("Edge() error = %v", err)
	}
	if !e.Has(On.Failure) {
		t.Errorf("expected edge to carry On.Failure metadata")
	}
}

func TestEnter_RestoresPreviousWorkflowOnRestore(t *testing.T) {
	before := group.Workflows()
	beforeCount := len(before)

	restore := Enter("named")
	Node("inside named")
	restore()

	after := group.Workflows()
	if len(after) != beforeCount+1 {
		t.Fatalf("expected a new workflow to be declared, have %d want %d", len(after), beforeCount+1)
	}
}

func TestEnterIndex_OutOfRangeFails(t *testing.T) {
	if _, err := EnterIndex(len(group.Workflows()) + 1000); err == nil {
		t.Fatal("expected an out-of-range EnterIndex to fail")
	}
}
