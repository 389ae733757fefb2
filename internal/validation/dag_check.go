package validation

import (
	"fmt"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/pkg/schema"
)

// validateProcedureGraph analyses the control flow of each master recipe:
// every transition needs a preceding and a following step, and once the
// recipe has links every step must be reachable from a step without
// predecessors.
func validateProcedureGraph(doc *b2mml.Document) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	if doc.Name != b2mml.RootBatchInfo {
		return result
	}
	for i, mr := range doc.Root.Nodes("MasterRecipe") {
		checkProcedureGraph(mr.Child("ProcedureLogic"), fmt.Sprintf("MasterRecipe[%d].ProcedureLogic", i), result)
	}
	return result
}

func checkProcedureGraph(logic *b2mml.Node, path string, result *schema.ValidationResult) {
	links := logic.Nodes("Link")
	if len(links) == 0 {
		return
	}

	// succ and pred are keyed by "<type>:<id>" so a step and a transition
	// sharing an id stay apart.
	succ := make(map[string][]string)
	pred := make(map[string][]string)
	for _, l := range links {
		from := l.Child("FromID").Text("FromType") + ":" + l.Child("FromID").Text("FromIDValue")
		to := l.Child("ToID").Text("ToType") + ":" + l.Child("ToID").Text("ToIDValue")
		succ[from] = append(succ[from], to)
		pred[to] = append(pred[to], from)
	}

	for i, t := range logic.Nodes("Transition") {
		key := "Transition:" + t.Text("ID")
		if len(pred[key]) == 0 {
			result.AddWarning(fmt.Sprintf("%s.Transition[%d]", path, i), schema.ErrCodeValidation,
				fmt.Sprintf("transition %s has no preceding step", t.Text("ID")))
		}
		if len(succ[key]) == 0 {
			result.AddWarning(fmt.Sprintf("%s.Transition[%d]", path, i), schema.ErrCodeValidation,
				fmt.Sprintf("transition %s has no following step", t.Text("ID")))
		}
	}

	// Reachability: BFS from steps without predecessors.
	steps := logic.Nodes("Step")
	reachable := make(map[string]bool, len(steps))
	var queue []string
	for _, s := range steps {
		key := "Step:" + s.Text("ID")
		if len(pred[key]) == 0 {
			reachable[key] = true
			queue = append(queue, key)
		}
	}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range succ[node] {
			if !reachable[next] {
				reachable[next] = true
				queue = append(queue, next)
			}
		}
	}

	for i, s := range steps {
		if !reachable["Step:"+s.Text("ID")] {
			result.AddWarning(fmt.Sprintf("%s.Step[%d]", path, i), schema.ErrCodeValidation,
				fmt.Sprintf("step %s is unreachable from any initial step", s.Text("ID")))
		}
	}
}
