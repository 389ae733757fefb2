package diagram

import (
	"fmt"
	"slices"

	"github.com/rendis/batchml/internal/engine"
)

const (
	beginID = "__begin__"
	endID   = "__end__"
)

// Build constructs a DiagramModel from planned procedure logic. Steps
// without incoming links hang off Begin and steps without outgoing links
// lead to End. ov may be nil.
func Build(title string, p *engine.Procedure, ov *Overlay) *DiagramModel {
	if title == "" {
		title = "Procedure"
	}
	model := &DiagramModel{Title: title}
	model.Nodes = append(model.Nodes, &Node{ID: beginID, Label: "Begin", Kind: NodeKindBegin})

	var steps []engine.Step
	var transitions []engine.Transition
	var links []engine.Link
	if p != nil {
		steps, transitions, links = p.Steps, p.Transitions, p.Links
	}

	for _, s := range steps {
		n := &Node{ID: s.ID, Label: fmt.Sprintf("%s: %s", s.ID, s.ExportID), Kind: NodeKindStep}
		if ov != nil {
			n.Status = StatusPending
			if slices.Contains(ov.Completed, s.ExportID) {
				n.Status = StatusCompleted
			}
		}
		model.Nodes = append(model.Nodes, n)
	}
	for _, t := range transitions {
		n := &Node{ID: t.ID, Label: fmt.Sprintf("%s: %s", t.ID, t.Condition), Kind: NodeKindTransition}
		if ov != nil {
			if ok, known := ov.Transitions[t.ID]; known {
				n.Status = StatusBlocked
				if ok {
					n.Status = StatusSatisfied
				}
			}
		}
		model.Nodes = append(model.Nodes, n)
	}
	model.Nodes = append(model.Nodes, &Node{ID: endID, Label: "End", Kind: NodeKindEnd})

	model.Edges = buildEdges(steps, links)
	model.Levels = buildLevels(model)
	return model
}

// buildEdges turns links into edges and adds the virtual Begin/End edges.
func buildEdges(steps []engine.Step, links []engine.Link) []Edge {
	hasIn := make(map[string]bool)
	hasOut := make(map[string]bool)
	for _, l := range links {
		hasOut[l.FromID] = true
		hasIn[l.ToID] = true
	}

	var edges []Edge
	for _, s := range steps {
		if !hasIn[s.ID] {
			edges = append(edges, Edge{From: beginID, To: s.ID})
		}
	}
	for _, l := range links {
		edges = append(edges, Edge{From: l.FromID, To: l.ToID})
	}
	for _, s := range steps {
		if !hasOut[s.ID] {
			edges = append(edges, Edge{From: s.ID, To: endID})
		}
	}
	if len(steps) == 0 {
		edges = append(edges, Edge{From: beginID, To: endID})
	}
	return edges
}

// buildLevels groups nodes by their BFS distance from Begin. Nodes Begin
// cannot reach, such as steps inside a cycle, form one level before End,
// which always comes last.
func buildLevels(model *DiagramModel) [][]string {
	succ := make(map[string][]string)
	for _, e := range model.Edges {
		succ[e.From] = append(succ[e.From], e.To)
	}

	dist := map[string]int{beginID: 0}
	queue := []string{beginID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range succ[id] {
			if _, seen := dist[next]; !seen {
				dist[next] = dist[id] + 1
				queue = append(queue, next)
			}
		}
	}

	var levels [][]string
	var unreached []string
	for _, n := range model.Nodes {
		if n.ID == endID {
			continue
		}
		d, ok := dist[n.ID]
		if !ok {
			unreached = append(unreached, n.ID)
			continue
		}
		for len(levels) <= d {
			levels = append(levels, nil)
		}
		levels[d] = append(levels[d], n.ID)
	}

	out := make([][]string, 0, len(levels)+2)
	for _, l := range levels {
		if len(l) > 0 {
			out = append(out, l)
		}
	}
	if len(unreached) > 0 {
		out = append(out, unreached)
	}
	return append(out, []string{endID})
}
