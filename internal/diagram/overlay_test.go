package diagram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/batchml/internal/engine"
	"github.com/rendis/batchml/internal/expressions"
	"github.com/rendis/batchml/pkg/schema"
)

func TestGuardOverlay(t *testing.T) {
	ws := &schema.Workspace{
		Items: []*schema.WorkspaceItem{
			{ID: "A", Type: schema.ItemTypeProcess},
			{ID: "B", Type: schema.ItemTypeProcess, ConditionGroup: schema.Group(schema.OperatorAnd,
				schema.Leaf("Level", ">", "10", "Tank"),
			).Group},
			{ID: "C", Type: schema.ItemTypeProcess},
		},
	}
	p := linearProcedure()
	p.Transitions[0].Connection = schema.Connection{SourceID: "A", TargetID: "B", IsTransition: true}
	p.Transitions[1].Connection = schema.Connection{SourceID: "B", TargetID: "C", IsTransition: true}

	ev := expressions.NewGuardEvaluator()
	tests := []struct {
		name string
		snap expressions.Snapshot
		want map[string]bool
	}{
		{
			name: "signal above threshold",
			snap: expressions.Snapshot{Signals: map[string]any{"Tank.Level": 12}},
			want: map[string]bool{"T1": true, "T2": true},
		},
		{
			name: "missing signal blocks",
			snap: expressions.Snapshot{},
			want: map[string]bool{"T1": false, "T2": true},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ov, err := GuardOverlay(context.Background(), ev, p, ws, tc.snap)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ov.Transitions)
		})
	}
}

func TestGuardOverlayCarriesCompleted(t *testing.T) {
	ws := &schema.Workspace{}
	ov, err := GuardOverlay(context.Background(), expressions.NewGuardEvaluator(),
		&engine.Procedure{}, ws, expressions.Snapshot{Completed: []string{"A"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ov.Completed)
	assert.Empty(t, ov.Transitions)
}
