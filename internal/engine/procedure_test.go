package engine

import (
	"testing"

	"github.com/rendis/batchml/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planInput(recipe []*schema.WorkspaceItem, all []*schema.WorkspaceItem, conns []schema.Connection) ProcedureInput {
	return ProcedureInput{
		Recipe:      recipe,
		All:         all,
		Connections: conns,
		ExportID:    func(it *schema.WorkspaceItem) string { return it.ID },
		Describe: func(_ *schema.WorkspaceItem, exportID string) string {
			return exportID + ": Process"
		},
		Guard: func(target *schema.WorkspaceItem) string {
			if target == nil {
				return "True"
			}
			return "guard(" + target.ID + ")"
		},
	}
}

func TestPlanProcedure_StepsFollowSortOrder(t *testing.T) {
	recipe := items("A", "B", "C", "D")
	p := PlanProcedure(planInput(recipe, recipe, []schema.Connection{
		transition("A", "B"),
		transition("B", "C"),
	}))

	require.Len(t, p.Steps, 4)
	var ids, exports []string
	for _, s := range p.Steps {
		ids = append(ids, s.ID)
		exports = append(exports, s.ExportID)
	}
	assert.Equal(t, []string{"S1", "S2", "S3", "S4"}, ids)
	assert.Equal(t, []string{"A", "D", "B", "C"}, exports)
	assert.Equal(t, "A: Process", p.Steps[0].Description)
}

func TestPlanProcedure_ItemDescriptionWins(t *testing.T) {
	recipe := items("A")
	recipe[0].Description = "Heat up"
	p := PlanProcedure(planInput(recipe, recipe, nil))
	require.Len(t, p.Steps, 1)
	assert.Equal(t, "Heat up", p.Steps[0].Description)
	assert.Empty(t, p.Transitions)
	assert.Empty(t, p.Links)
}

func TestPlanProcedure_TransitionsAndLinks(t *testing.T) {
	recipe := items("A", "B", "C")
	p := PlanProcedure(planInput(recipe, recipe, []schema.Connection{
		transition("A", "B"),
		{SourceID: "B", TargetID: "C"},
		transition("B", "C"),
	}))

	require.Len(t, p.Transitions, 2)
	assert.Equal(t, "T1", p.Transitions[0].ID)
	assert.Equal(t, "guard(B)", p.Transitions[0].Condition)
	assert.Equal(t, "T2", p.Transitions[1].ID)
	assert.Equal(t, "guard(C)", p.Transitions[1].Condition)

	want := []Link{
		{ID: "L1", FromID: "S1", FromType: ElementStep, ToID: "T1", ToType: ElementTransition},
		{ID: "L2", FromID: "T1", FromType: ElementTransition, ToID: "S2", ToType: ElementStep},
		{ID: "L3", FromID: "S2", FromType: ElementStep, ToID: "T2", ToType: ElementTransition},
		{ID: "L4", FromID: "T2", FromType: ElementTransition, ToID: "S3", ToType: ElementStep},
	}
	assert.Equal(t, want, p.Links)
	assert.Equal(t, "Link from S1 to T1", p.Links[0].Description())
}

func TestPlanProcedure_NonStepEndpointsSkipLinks(t *testing.T) {
	recipe := items("A")
	material := &schema.WorkspaceItem{ID: "M1", Type: schema.ItemTypeMaterial}
	all := append([]*schema.WorkspaceItem{material}, recipe...)

	p := PlanProcedure(planInput(recipe, all, []schema.Connection{
		transition("M1", "A"),
		transition("A", "nowhere"),
	}))

	require.Len(t, p.Transitions, 2)
	assert.Equal(t, "guard(A)", p.Transitions[0].Condition)
	assert.Equal(t, "True", p.Transitions[1].Condition)
	require.Len(t, p.Links, 2)
	assert.Equal(t, "T1", p.Links[0].FromID)
	assert.Equal(t, "S1", p.Links[0].ToID)
	assert.Equal(t, "S1", p.Links[1].FromID)
	assert.Equal(t, "T2", p.Links[1].ToID)
}

func TestPlanProcedure_CyclicSteps(t *testing.T) {
	recipe := items("A", "B", "C")
	p := PlanProcedure(planInput(recipe, recipe, []schema.Connection{
		transition("B", "C"),
		transition("C", "B"),
	}))

	cyclic := p.CyclicSteps()
	require.Len(t, cyclic, 2)
	assert.Equal(t, "B", cyclic[0].ExportID)
	assert.Equal(t, "C", cyclic[1].ExportID)
	assert.Len(t, p.Steps, 3)
}
