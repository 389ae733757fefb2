package diagram

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/batchml/internal/engine"
)

// --- Test procedure builders ---

func step(n int, exportID string) engine.Step {
	return engine.Step{ID: fmt.Sprintf("S%d", n), ExportID: exportID}
}

func link(from, fromType, to, toType string) engine.Link {
	return engine.Link{FromID: from, FromType: fromType, ToID: to, ToType: toType}
}

// linearProcedure: A -T1-> B -T2-> C.
func linearProcedure() *engine.Procedure {
	return &engine.Procedure{
		Steps: []engine.Step{step(1, "A"), step(2, "B"), step(3, "C")},
		Transitions: []engine.Transition{
			{ID: "T1", Condition: "Tank.Level > 10"},
			{ID: "T2", Condition: "True"},
		},
		Links: []engine.Link{
			link("S1", engine.ElementStep, "T1", engine.ElementTransition),
			link("T1", engine.ElementTransition, "S2", engine.ElementStep),
			link("S2", engine.ElementStep, "T2", engine.ElementTransition),
			link("T2", engine.ElementTransition, "S3", engine.ElementStep),
		},
	}
}

// parallelProcedure: two unconnected steps.
func parallelProcedure() *engine.Procedure {
	return &engine.Procedure{Steps: []engine.Step{step(1, "A"), step(2, "B")}}
}

// cyclicProcedure: A -T1-> B -T2-> A.
func cyclicProcedure() *engine.Procedure {
	return &engine.Procedure{
		Steps: []engine.Step{step(1, "A"), step(2, "B")},
		Transitions: []engine.Transition{
			{ID: "T1", Condition: "True"},
			{ID: "T2", Condition: "True"},
		},
		Links: []engine.Link{
			link("S1", engine.ElementStep, "T1", engine.ElementTransition),
			link("T1", engine.ElementTransition, "S2", engine.ElementStep),
			link("S2", engine.ElementStep, "T2", engine.ElementTransition),
			link("T2", engine.ElementTransition, "S1", engine.ElementStep),
		},
	}
}

func nodeIDs(model *DiagramModel) []string {
	ids := make([]string, 0, len(model.Nodes))
	for _, n := range model.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func status(model *DiagramModel, id string) string {
	if n := findNode(model.Nodes, id); n != nil {
		return n.Status
	}
	return "<missing>"
}

// --- Builder tests ---

func TestBuildLinear(t *testing.T) {
	model := Build("Flow", linearProcedure(), nil)

	assert.Equal(t, "Flow", model.Title)
	assert.Equal(t, []string{beginID, "S1", "S2", "S3", "T1", "T2", endID}, nodeIDs(model))

	s1 := findNode(model.Nodes, "S1")
	require.NotNil(t, s1)
	assert.Equal(t, "S1: A", s1.Label)
	assert.Equal(t, NodeKindStep, s1.Kind)
	assert.Empty(t, s1.Status)

	t1 := findNode(model.Nodes, "T1")
	require.NotNil(t, t1)
	assert.Equal(t, "T1: Tank.Level > 10", t1.Label)
	assert.Equal(t, NodeKindTransition, t1.Kind)

	assert.Equal(t, []Edge{
		{From: beginID, To: "S1"},
		{From: "S1", To: "T1"},
		{From: "T1", To: "S2"},
		{From: "S2", To: "T2"},
		{From: "T2", To: "S3"},
		{From: "S3", To: endID},
	}, model.Edges)

	assert.Equal(t, [][]string{
		{beginID}, {"S1"}, {"T1"}, {"S2"}, {"T2"}, {"S3"}, {endID},
	}, model.Levels)
}

func TestBuildParallel(t *testing.T) {
	model := Build("", parallelProcedure(), nil)

	assert.Equal(t, "Procedure", model.Title)
	assert.Equal(t, []Edge{
		{From: beginID, To: "S1"},
		{From: beginID, To: "S2"},
		{From: "S1", To: endID},
		{From: "S2", To: endID},
	}, model.Edges)
	assert.Equal(t, [][]string{{beginID}, {"S1", "S2"}, {endID}}, model.Levels)
}

func TestBuildCyclicStepsFormOneLevel(t *testing.T) {
	model := Build("Loop", cyclicProcedure(), nil)

	assert.Len(t, model.Edges, 4)
	assert.Equal(t, [][]string{{beginID}, {"S1", "S2", "T1", "T2"}, {endID}}, model.Levels)
}

func TestBuildEmpty(t *testing.T) {
	model := Build("Empty", nil, nil)

	assert.Equal(t, []string{beginID, endID}, nodeIDs(model))
	assert.Equal(t, []Edge{{From: beginID, To: endID}}, model.Edges)
	assert.Equal(t, [][]string{{beginID}, {endID}}, model.Levels)
}

func TestBuildOverlay(t *testing.T) {
	ov := &Overlay{
		Completed:   []string{"A"},
		Transitions: map[string]bool{"T1": true, "T2": false},
	}
	model := Build("Flow", linearProcedure(), ov)

	tests := []struct {
		id   string
		want string
	}{
		{"S1", StatusCompleted},
		{"S2", StatusPending},
		{"S3", StatusPending},
		{"T1", StatusSatisfied},
		{"T2", StatusBlocked},
		{beginID, ""},
		{endID, ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, status(model, tt.id))
		})
	}
}

func TestBuildOverlayUnknownTransition(t *testing.T) {
	model := Build("Flow", linearProcedure(), &Overlay{})
	assert.Empty(t, status(model, "T1"))
	assert.Equal(t, StatusPending, status(model, "S1"))
}
