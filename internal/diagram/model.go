// Package diagram draws the procedure logic of a master recipe: steps as
// boxes, transitions as diamonds labeled with their guard.
package diagram

// NodeKind classifies a diagram node.
type NodeKind string

const (
	NodeKindStep       NodeKind = "step"
	NodeKindTransition NodeKind = "transition"
	NodeKindBegin      NodeKind = "begin"
	NodeKindEnd        NodeKind = "end"
)

// Node statuses set by an Overlay.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusSatisfied = "satisfied"
	StatusBlocked   = "blocked"
)

// DiagramModel is the intermediate representation used by all renderers.
type DiagramModel struct {
	Title  string
	Nodes  []*Node
	Edges  []Edge
	Levels [][]string
}

// Node is a step, a transition or one of the virtual Begin/End nodes.
type Node struct {
	ID     string
	Label  string
	Kind   NodeKind
	Status string
}

// Edge joins two nodes.
type Edge struct {
	From  string
	To    string
	Label string
}

// Overlay marks a diagram with the state of a guard dry-run. Steps are
// keyed by export ID, transitions by their T<n> id.
type Overlay struct {
	Completed   []string
	Transitions map[string]bool
}
