package conditions

import (
	"encoding/json"
	"testing"

	"github.com/rendis/batchml/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func and(children ...schema.ConditionNode) schema.ConditionNode {
	return schema.Group(schema.OperatorAnd, children...)
}

func or(children ...schema.ConditionNode) schema.ConditionNode {
	return schema.Group(schema.OperatorOr, children...)
}

func not(children ...schema.ConditionNode) schema.ConditionNode {
	return schema.Group(schema.OperatorNot, children...)
}

func leaf(keyword, op, value, instance string) schema.ConditionNode {
	return schema.Leaf(keyword, op, value, instance)
}

func TestStringify_ScenarioFromEditorJSON(t *testing.T) {
	raw := `{"operator":"AND","children":[
		{"type":"condition","keyword":"Level","operator":">=","value":300,"instance":"Tank1"},
		{"type":"condition","keyword":"Level","operator":"<","value":500}
	]}`
	var g schema.ConditionGroup
	require.NoError(t, json.Unmarshal([]byte(raw), &g))

	assert.Equal(t, "Tank1 Level >= 300 AND Level < 500", Stringify(Clean(&g)))
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		node schema.ConditionNode
		want string
	}{
		{
			name: "single leaf",
			node: and(leaf("Temp", ">", "80", "")),
			want: "Temp > 80",
		},
		{
			name: "or of leaves",
			node: or(leaf("Temp", ">", "80", ""), leaf("Pressure", "<", "2", "R1")),
			want: "Temp > 80 OR R1 Pressure < 2",
		},
		{
			name: "nested group parenthesized",
			node: and(
				leaf("Temp", ">", "80", ""),
				or(leaf("Level", ">=", "300", ""), leaf("Level", "<", "100", "")),
			),
			want: "Temp > 80 AND (Level >= 300 OR Level < 100)",
		},
		{
			name: "not of leaf",
			node: not(leaf("Valve", "=", "open", "V1")),
			want: "NOT (V1 Valve = open)",
		},
		{
			name: "not of group",
			node: not(and(leaf("A", "=", "1", ""), leaf("B", "=", "2", ""))),
			want: "NOT (A = 1 AND B = 2)",
		},
		{
			name: "nested not parenthesized",
			node: and(leaf("A", "=", "1", ""), not(leaf("B", "=", "2", ""))),
			want: "A = 1 AND (NOT (B = 2))",
		},
		{
			name: "step leaf",
			node: and(leaf("Step", "=", "done", "001:Heating"), leaf("Temp", ">", "80", "")),
			want: `Step "001:Heating" is Complete AND Temp > 80`,
		},
		{
			name: "zero is a valid value",
			node: and(leaf("Level", "=", "0", "")),
			want: "Level = 0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Stringify(Clean(tc.node.Group)))
		})
	}
}

func TestStringify_DefaultGuard(t *testing.T) {
	tests := []struct {
		name  string
		group *schema.ConditionGroup
	}{
		{"nil", nil},
		{"no children", &schema.ConditionGroup{Operator: schema.OperatorAnd}},
		{"all invalid", and(leaf("", ">", "1", ""), leaf("Temp", "", "1", ""), leaf("Temp", ">", "", "")).Group},
		{"only empty groups", and(or(), not()).Group},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Nil(t, Clean(tc.group))
			assert.Equal(t, DefaultGuard, Stringify(Clean(tc.group)))
			assert.Equal(t, DefaultGuard, Stringify(tc.group))
		})
	}
}

func TestClean(t *testing.T) {
	g := and(
		leaf("Temp", ">", "80", ""),
		leaf("Temp", ">", "", ""),
		or(leaf("", "=", "1", "")),
		not(leaf("Level", "<", "", ""), leaf("Level", "<", "5", ""), leaf("Flow", ">", "1", "")),
	).Group

	cleaned := Clean(g)
	require.NotNil(t, cleaned)
	require.Len(t, cleaned.Children, 2)
	assert.Equal(t, "Temp", cleaned.Children[0].Leaf.Keyword)

	notGroup := cleaned.Children[1].Group
	require.NotNil(t, notGroup)
	assert.Equal(t, schema.OperatorNot, notGroup.Operator)
	require.Len(t, notGroup.Children, 1)
	assert.Equal(t, "5", notGroup.Children[0].Leaf.Value.String())

	// The input tree is left untouched.
	assert.Len(t, g.Children, 4)
}

func TestClean_Idempotent(t *testing.T) {
	trees := []schema.ConditionNode{
		and(leaf("A", "=", "1", ""), leaf("B", "", "2", "")),
		or(and(leaf("A", "=", "1", "X"), or()), not(leaf("C", ">", "3", ""), leaf("D", "<", "4", ""))),
		not(and(leaf("", "", "", ""))),
		and(leaf("Step", "=", "x", "S1"), not(or(leaf("E", "!=", "5", "")))),
	}
	for _, tree := range trees {
		once := Clean(tree.Group)
		twice := Clean(once)
		assert.Equal(t, Stringify(once), Stringify(twice))
		assert.Equal(t, once, twice)
	}
}

func TestRenderLegacy(t *testing.T) {
	list := []schema.LegacyCondition{
		{Keyword: "Temp", Operator: ">", Value: schema.ScalarOf("80"), Instance: "R1", BinaryOperator: "AND"},
		{Keyword: "Level", Operator: "<", Value: schema.ScalarOf("500"), BinaryOperator: "OR"},
		{Keyword: "Flow", Operator: "=", Value: schema.ScalarOf(""), BinaryOperator: "AND"},
	}
	assert.Equal(t, "R1: Temp > 80 AND Level < 500 OR Flow = ", RenderLegacy(list))
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name   string
		target *schema.WorkspaceItem
		want   string
	}{
		{"missing target", nil, "True"},
		{"no condition", &schema.WorkspaceItem{ID: "S2"}, "True"},
		{
			name:   "tree wins over legacy list",
			target: &schema.WorkspaceItem{
				ConditionGroup: and(leaf("Temp", ">", "80", "")).Group,
				ConditionList:  []schema.LegacyCondition{{Keyword: "X", Operator: "=", Value: schema.ScalarOf("1")}},
			},
			want: "Temp > 80",
		},
		{
			name:   "invalid tree falls back to True",
			target: &schema.WorkspaceItem{
				ConditionGroup: and(leaf("Temp", ">", "", "")).Group,
			},
			want: "True",
		},
		{
			name:   "empty tree uses legacy list",
			target: &schema.WorkspaceItem{
				ConditionGroup: &schema.ConditionGroup{Operator: schema.OperatorAnd},
				ConditionList:  []schema.LegacyCondition{{Keyword: "X", Operator: "=", Value: schema.ScalarOf("1")}},
			},
			want: "X = 1",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Guard(tc.target))
		})
	}
}

func TestToExpr(t *testing.T) {
	tests := []struct {
		name string
		node schema.ConditionNode
		want string
	}{
		{
			name: "comparison",
			node: and(leaf("Level", ">=", "300", "Tank1")),
			want: `(has("Tank1", "Level") and signal("Tank1", "Level") >= 300)`,
		},
		{
			name: "equals and strings",
			node: or(leaf("Valve", "=", "open", "V1"), leaf("Mode", "<>", "auto", "")),
			want: `(has("V1", "Valve") and signal("V1", "Valve") == "open") or (has("", "Mode") and signal("", "Mode") != "auto")`,
		},
		{
			name: "not and step",
			node: and(not(leaf("Step", "=", "x", "S1")), leaf("On", "=", "true", "")),
			want: `(not (completed("S1"))) and (has("", "On") and signal("", "On") == true)`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToExpr(tc.node.Group)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestToExpr_EmptyIsTrue(t *testing.T) {
	got, err := ToExpr(nil)
	require.NoError(t, err)
	assert.Equal(t, "true", got)
}

func TestToExpr_UnsupportedOperator(t *testing.T) {
	_, err := ToExpr(and(leaf("Level", "~", "3", "")).Group)
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeInvalidInput, schema.ErrorCode(err))
}

func TestSignalKey(t *testing.T) {
	assert.Equal(t, "Tank1.Level", SignalKey("Tank1", "Level"))
	assert.Equal(t, "Level", SignalKey("", "Level"))
}
