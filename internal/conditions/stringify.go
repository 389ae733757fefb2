package conditions

import (
	"fmt"
	"strings"

	"github.com/rendis/batchml/pkg/schema"
)

// DefaultGuard is the guard of a transition whose target has no valid condition.
const DefaultGuard = "True"

// Stringify renders a condition tree. Children are joined with the group's
// operator, nested groups are parenthesized and NOT renders as NOT (child).
// Invalid leaves are skipped; a tree without valid leaves renders as True.
func Stringify(g *schema.ConditionGroup) string {
	if s := renderGroup(g); s != "" {
		return s
	}
	return DefaultGuard
}

func renderGroup(g *schema.ConditionGroup) string {
	if g == nil || len(g.Children) == 0 {
		return ""
	}

	if g.Operator == schema.OperatorNot {
		inner := renderNode(g.Children[0])
		if inner == "" {
			return ""
		}
		return "NOT (" + inner + ")"
	}

	parts := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		s := renderNode(child)
		if s == "" {
			continue
		}
		if child.Group != nil {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " "+string(g.Operator)+" ")
}

func renderNode(n schema.ConditionNode) string {
	switch {
	case n.Group != nil:
		return renderGroup(n.Group)
	case n.Leaf != nil && n.Leaf.Valid():
		return RenderLeaf(n.Leaf)
	default:
		return ""
	}
}

// RenderLeaf renders one comparison as "<instance> <keyword> <operator> <value>",
// or `Step "<instance>" is Complete` for step leaves.
func RenderLeaf(l *schema.ConditionLeaf) string {
	if l.Keyword == schema.StepKeyword {
		return `Step "` + l.Instance + `" is Complete`
	}
	if l.Instance != "" {
		return fmt.Sprintf("%s %s %s %s", l.Instance, l.Keyword, l.Operator, l.Value)
	}
	return fmt.Sprintf("%s %s %s", l.Keyword, l.Operator, l.Value)
}
