package schema

import (
	"encoding/json"
	"fmt"
)

// LogicalOperator combines the children of a condition group.
type LogicalOperator string

const (
	OperatorAnd LogicalOperator = "AND"
	OperatorOr  LogicalOperator = "OR"
	OperatorNot LogicalOperator = "NOT"
)

// ConditionGroup is a node of a nested boolean condition tree.
// NOT groups are unary: only their first child is meaningful.
type ConditionGroup struct {
	Operator LogicalOperator `json:"operator"`
	Children []ConditionNode `json:"children"`
}

// ConditionLeaf is a single comparison. It is valid only when keyword,
// operator and a non-empty value are all present.
type ConditionLeaf struct {
	Keyword  string `json:"keyword"`
	Operator string `json:"operator"`
	Value    Scalar `json:"value"`
	Instance string `json:"instance,omitempty"`
}

// StepKeyword marks a leaf that waits for another step to complete.
const StepKeyword = "Step"

// Valid reports whether the leaf carries keyword, operator and value.
func (l *ConditionLeaf) Valid() bool {
	return l.Keyword != "" && l.Operator != "" && !l.Value.IsEmpty()
}

// ConditionNode is either a nested group or a leaf; exactly one field is set.
type ConditionNode struct {
	Group *ConditionGroup
	Leaf  *ConditionLeaf
}

// Group builds a group node.
func Group(op LogicalOperator, children ...ConditionNode) ConditionNode {
	return ConditionNode{Group: &ConditionGroup{Operator: op, Children: children}}
}

// Leaf builds a leaf node.
func Leaf(keyword, operator, value, instance string) ConditionNode {
	return ConditionNode{Leaf: &ConditionLeaf{
		Keyword:  keyword,
		Operator: operator,
		Value:    ScalarOf(value),
		Instance: instance,
	}}
}

type conditionNodeJSON struct {
	Type     string          `json:"type,omitempty"`
	Operator string          `json:"operator,omitempty"`
	Children []ConditionNode `json:"children,omitempty"`
	Keyword  string          `json:"keyword,omitempty"`
	Value    *Scalar         `json:"value,omitempty"`
	Instance string          `json:"instance,omitempty"`
}

func (n *ConditionNode) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type     string           `json:"type"`
		Children *json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	switch {
	case probe.Type == "group", probe.Type == "" && probe.Children != nil:
		var g ConditionGroup
		if err := json.Unmarshal(data, &g); err != nil {
			return err
		}
		*n = ConditionNode{Group: &g}
	case probe.Type == "condition", probe.Type == "":
		var l ConditionLeaf
		if err := json.Unmarshal(data, &l); err != nil {
			return err
		}
		*n = ConditionNode{Leaf: &l}
	default:
		return fmt.Errorf("schema: unknown condition node type %q", probe.Type)
	}
	return nil
}

func (n ConditionNode) MarshalJSON() ([]byte, error) {
	switch {
	case n.Group != nil:
		return json.Marshal(conditionNodeJSON{
			Type:     "group",
			Operator: string(n.Group.Operator),
			Children: n.Group.Children,
		})
	case n.Leaf != nil:
		v := n.Leaf.Value
		return json.Marshal(conditionNodeJSON{
			Type:     "condition",
			Operator: n.Leaf.Operator,
			Keyword:  n.Leaf.Keyword,
			Value:    &v,
			Instance: n.Leaf.Instance,
		})
	default:
		return []byte("null"), nil
	}
}

// LegacyCondition is an entry of the flat condition list used before
// condition trees existed. BinaryOperator joins it to the next entry.
type LegacyCondition struct {
	Keyword        string `json:"keyword"`
	Operator       string `json:"operator"`
	Value          Scalar `json:"value"`
	Instance       string `json:"instance,omitempty"`
	BinaryOperator string `json:"binaryOperator,omitempty"`
}
