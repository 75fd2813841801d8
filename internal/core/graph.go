package core

import "fmt"

// Edge is a directed binding from a source node's output to a specific
// input variable on a target node.
type Edge struct {
	SourceID NodeID
	// SourceHandle names the source output. Nodes currently expose a single
	// output, so this is always "output".
	SourceHandle string
	TargetID     NodeID
	// TargetHandle names the input variable on the target this edge supplies.
	TargetHandle string
}

// Graph is the read-only definition driving a run. The engine never
// mutates it; concurrent runs may share one Graph value.
type Graph struct {
	Nodes []*Node
	Edges []Edge
}

// Entry returns the first entry node, or nil if the graph has none.
func (g *Graph) Entry() *Node {
	for _, n := range g.Nodes {
		if n.Kind == NodeKindEntry {
			return n
		}
	}
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Supplier returns the first edge feeding the given input handle of target.
// The editor enforces at most one binding per (target, handle) pair; when
// that is violated the first match wins.
func (g *Graph) Supplier(target NodeID, handle string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.TargetID == target && e.TargetHandle == handle {
			return e, true
		}
	}
	return Edge{}, false
}

// Validate checks graph invariants: unique node IDs, exactly one entry
// node, and edge endpoints that exist.
func (g *Graph) Validate() error {
	seen := make(map[NodeID]bool, len(g.Nodes))
	entries := 0
	for _, n := range g.Nodes {
		if err := n.Validate(); err != nil {
			return err
		}
		if seen[n.ID] {
			return ErrValidation("NODE_ID_DUPLICATE", fmt.Sprintf("duplicate node ID %q", n.ID))
		}
		seen[n.ID] = true
		if n.Kind == NodeKindEntry {
			entries++
		}
	}
	if entries == 0 {
		return ErrValidation("ENTRY_NODE_REQUIRED", "graph has no entry node")
	}
	if entries > 1 {
		return ErrValidation("ENTRY_NODE_DUPLICATE", "graph has more than one entry node")
	}
	for _, e := range g.Edges {
		if !seen[e.SourceID] {
			return ErrValidation("EDGE_SOURCE_UNKNOWN", fmt.Sprintf("edge source %q does not exist", e.SourceID))
		}
		if !seen[e.TargetID] {
			return ErrValidation("EDGE_TARGET_UNKNOWN", fmt.Sprintf("edge target %q does not exist", e.TargetID))
		}
	}
	return nil
}
