package engine

import (
	"fmt"

	"github.com/rendis/batchml/pkg/schema"
)

// Element types used in procedure-logic link endpoints.
const (
	ElementStep       = "Step"
	ElementTransition = "Transition"
)

// Link constants of the master-recipe control flow.
const (
	LinkTypeControl     = "ControlLink"
	DepictionLineArrow  = "LineAndArrow"
	IDScopeExternal     = "External"
	LinkEvaluationOrder = "1"
)

// Step is one recipe element use in execution order.
type Step struct {
	ID          string
	ExportID    string
	Description string
	Item        *schema.WorkspaceItem
	Node        int
}

// Transition guards the hand-over along one transition connection.
type Transition struct {
	ID         string
	Condition  string
	Connection schema.Connection
}

// Link joins a step and a transition.
type Link struct {
	ID       string
	FromID   string
	FromType string
	ToID     string
	ToType   string
}

// Description renders the link description.
func (l Link) Description() string {
	return fmt.Sprintf("Link from %s to %s", l.FromID, l.ToID)
}

// Procedure is the computed procedure logic of a master recipe.
type Procedure struct {
	Graph       *Graph
	Order       *Order
	Steps       []Step
	Transitions []Transition
	Links       []Link
}

// CyclicSteps returns the steps appended by the cycle policy.
func (p *Procedure) CyclicSteps() []Step {
	cyclic := make(map[int]bool, len(p.Order.Cyclic))
	for _, n := range p.Order.Cyclic {
		cyclic[n] = true
	}
	var out []Step
	for _, s := range p.Steps {
		if cyclic[s.Node] {
			out = append(out, s)
		}
	}
	return out
}

// ProcedureInput carries what the planner needs from the other components.
type ProcedureInput struct {
	// Recipe holds the recipe-bearing items in workspace order.
	Recipe []*schema.WorkspaceItem
	// All holds every workspace item; transition guards are looked up here.
	All         []*schema.WorkspaceItem
	Connections []schema.Connection
	ExportID    func(*schema.WorkspaceItem) string
	Describe    func(item *schema.WorkspaceItem, exportID string) string
	Guard       func(target *schema.WorkspaceItem) string
}

// PlanProcedure sorts the recipe items and derives steps S1..Sn in
// execution order, one transition T1..Tm per transition connection in
// connection order, and the links S(source) → T(k) → S(target).
func PlanProcedure(in ProcedureInput) *Procedure {
	g := BuildGraph(in.Recipe, in.Connections)
	order := g.Sort()

	p := &Procedure{Graph: g, Order: order}

	stepByNode := make(map[int]string, len(order.Nodes))
	for i, node := range order.Nodes {
		item := g.Items[node]
		exportID := in.ExportID(item)
		step := Step{
			ID:       fmt.Sprintf("S%d", i+1),
			ExportID: exportID,
			Item:     item,
			Node:     node,
		}
		step.Description = item.Description
		if step.Description == "" && in.Describe != nil {
			step.Description = in.Describe(item, exportID)
		}
		p.Steps = append(p.Steps, step)
		stepByNode[node] = step.ID
	}

	for _, c := range in.Connections {
		if !c.IsTransition {
			continue
		}
		t := Transition{
			ID:         fmt.Sprintf("T%d", len(p.Transitions)+1),
			Connection: c,
			Condition:  in.Guard(schema.FindItem(in.All, c.TargetID)),
		}
		p.Transitions = append(p.Transitions, t)

		if node, ok := g.Node(c.SourceID); ok {
			p.addLink(stepByNode[node], ElementStep, t.ID, ElementTransition)
		}
		if node, ok := g.Node(c.TargetID); ok {
			p.addLink(t.ID, ElementTransition, stepByNode[node], ElementStep)
		}
	}
	return p
}

func (p *Procedure) addLink(from, fromType, to, toType string) {
	p.Links = append(p.Links, Link{
		ID:       fmt.Sprintf("L%d", len(p.Links)+1),
		FromID:   from,
		FromType: fromType,
		ToID:     to,
		ToType:   toType,
	})
}
