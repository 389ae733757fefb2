package diagram

import (
	"context"
	"fmt"

	"github.com/rendis/batchml/internal/engine"
	"github.com/rendis/batchml/internal/expressions"
	"github.com/rendis/batchml/pkg/schema"
)

// GuardOverlay dry-runs every transition guard of p against snap. A
// transition's guard is the condition tree of its target item; targets
// without a tree are always satisfied.
func GuardOverlay(ctx context.Context, ev *expressions.GuardEvaluator, p *engine.Procedure, ws *schema.Workspace, snap expressions.Snapshot) (*Overlay, error) {
	ov := &Overlay{
		Completed:   snap.Completed,
		Transitions: make(map[string]bool, len(p.Transitions)),
	}
	for _, t := range p.Transitions {
		var group *schema.ConditionGroup
		if target := schema.FindItem(ws.Items, t.Connection.TargetID); target != nil {
			group = target.ConditionGroup
		}
		res, err := ev.Evaluate(ctx, group, snap)
		if err != nil {
			return nil, fmt.Errorf("diagram: evaluate %s: %w", t.ID, err)
		}
		ov.Transitions[t.ID] = res.Satisfied
	}
	return ov, nil
}
