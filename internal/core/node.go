package core

import "fmt"

// NodeID uniquely identifies a node within a graph.
type NodeID string

// NodeKind discriminates the closed set of node types.
type NodeKind string

const (
	NodeKindEntry    NodeKind = "entry"
	NodeKindGenerate NodeKind = "generate"
	NodeKindExit     NodeKind = "exit"
)

// NodeStatus represents the current state of a node during a run.
type NodeStatus string

const (
	NodeStatusPending NodeStatus = "pending"
	NodeStatusRunning NodeStatus = "running"
	NodeStatusSuccess NodeStatus = "success"
	NodeStatusError   NodeStatus = "error"
)

// Node is a vertex in the execution graph. Exactly one of the kind-specific
// config fields is set, matching Kind.
type Node struct {
	ID       NodeID
	Kind     NodeKind
	Name     string
	Entry    *EntryConfig
	Generate *GenerateConfig
	Exit     *ExitConfig
}

// EntryConfig declares the named inputs a run is seeded with.
type EntryConfig struct {
	Inputs []string
}

// GenerateConfig configures a generation node.
type GenerateConfig struct {
	// VersionID references the reusable prompt version to execute.
	VersionID string
	// TemplateOverride, when non-empty, replaces the version's template text.
	TemplateOverride string
	// IncludeSystem controls whether the version's system instruction is
	// sent. Nil means include (the default).
	IncludeSystem *bool
	// OutputVar is the context variable the node's output is published under.
	OutputVar string
}

// IncludesSystem reports whether the system instruction should be sent.
func (c *GenerateConfig) IncludesSystem() bool {
	return c.IncludeSystem == nil || *c.IncludeSystem
}

// ExitConfig holds the output template rendered from the context.
type ExitConfig struct {
	Template string
}

// NewEntryNode creates an entry node declaring the given inputs.
func NewEntryNode(id NodeID, name string, inputs ...string) *Node {
	return &Node{
		ID:    id,
		Kind:  NodeKindEntry,
		Name:  name,
		Entry: &EntryConfig{Inputs: inputs},
	}
}

// NewGenerateNode creates a generation node referencing a prompt version.
func NewGenerateNode(id NodeID, name, versionID, outputVar string) *Node {
	return &Node{
		ID:   id,
		Kind: NodeKindGenerate,
		Name: name,
		Generate: &GenerateConfig{
			VersionID: versionID,
			OutputVar: outputVar,
		},
	}
}

// NewExitNode creates an exit node with the given output template.
func NewExitNode(id NodeID, name, template string) *Node {
	return &Node{
		ID:   id,
		Kind: NodeKindExit,
		Name: name,
		Exit: &ExitConfig{Template: template},
	}
}

// WithTemplateOverride sets an inline template replacing the version's text.
func (n *Node) WithTemplateOverride(template string) *Node {
	n.Generate.TemplateOverride = template
	return n
}

// WithIncludeSystem sets whether the system instruction is sent.
func (n *Node) WithIncludeSystem(include bool) *Node {
	n.Generate.IncludeSystem = &include
	return n
}

// Label returns the name used in logs, falling back to the ID.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return string(n.ID)
}

// Validate checks node invariants.
func (n *Node) Validate() error {
	if n.ID == "" {
		return ErrValidation("NODE_ID_REQUIRED", "node ID cannot be empty")
	}
	switch n.Kind {
	case NodeKindEntry:
		if n.Entry == nil {
			return ErrValidation("NODE_CONFIG_MISSING", fmt.Sprintf("entry node %s has no entry config", n.ID))
		}
	case NodeKindGenerate:
		if n.Generate == nil {
			return ErrValidation("NODE_CONFIG_MISSING", fmt.Sprintf("generate node %s has no generate config", n.ID))
		}
		if n.Generate.VersionID == "" && n.Generate.TemplateOverride == "" {
			return ErrValidation("NODE_VERSION_REQUIRED", fmt.Sprintf("generate node %s references no prompt version and has no template override", n.ID))
		}
	case NodeKindExit:
		if n.Exit == nil {
			return ErrValidation("NODE_CONFIG_MISSING", fmt.Sprintf("exit node %s has no exit config", n.ID))
		}
	default:
		return ErrValidation("NODE_KIND_UNKNOWN", fmt.Sprintf("node %s has unknown kind %q", n.ID, n.Kind))
	}
	return nil
}
