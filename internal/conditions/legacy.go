package conditions

import (
	"fmt"
	"strings"

	"github.com/rendis/batchml/pkg/schema"
)

// RenderLegacy renders a flat condition list. Entries are not validated;
// each entry is followed by its own binary operator except the last one.
func RenderLegacy(list []schema.LegacyCondition) string {
	parts := make([]string, len(list))
	for i, c := range list {
		s := fmt.Sprintf("%s %s %s", c.Keyword, c.Operator, c.Value)
		if c.Instance != "" {
			s = c.Instance + ": " + s
		}
		if c.BinaryOperator != "" && i < len(list)-1 {
			s += " " + c.BinaryOperator
		}
		parts[i] = s
	}
	return strings.Join(parts, " ")
}

// Guard computes the transition guard of a target item: its cleaned tree
// when it has one, else its legacy list, else True.
func Guard(target *schema.WorkspaceItem) string {
	switch {
	case target == nil:
		return DefaultGuard
	case HasTree(target):
		return Stringify(Clean(target.ConditionGroup))
	case len(target.ConditionList) > 0:
		return RenderLegacy(target.ConditionList)
	default:
		return DefaultGuard
	}
}
