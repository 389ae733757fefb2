// Package conditions turns condition trees attached to workspace items into
// transition guard text.
package conditions

import "github.com/rendis/batchml/pkg/schema"

// Clean drops invalid leaves and groups left without valid children. It
// returns nil when nothing valid remains. NOT groups keep only their first
// surviving child. The input is not modified.
func Clean(g *schema.ConditionGroup) *schema.ConditionGroup {
	if g == nil {
		return nil
	}
	children := make([]schema.ConditionNode, 0, len(g.Children))
	for _, child := range g.Children {
		switch {
		case child.Group != nil:
			if cleaned := Clean(child.Group); cleaned != nil {
				children = append(children, schema.ConditionNode{Group: cleaned})
			}
		case child.Leaf != nil && child.Leaf.Valid():
			leaf := *child.Leaf
			children = append(children, schema.ConditionNode{Leaf: &leaf})
		}
	}
	if len(children) == 0 {
		return nil
	}
	if g.Operator == schema.OperatorNot {
		children = children[:1]
	}
	return &schema.ConditionGroup{Operator: g.Operator, Children: children}
}

// HasTree reports whether an item carries a condition tree with at least one child.
func HasTree(it *schema.WorkspaceItem) bool {
	return it != nil && it.ConditionGroup != nil && len(it.ConditionGroup.Children) > 0
}
