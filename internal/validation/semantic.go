package validation

import (
	"fmt"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/pkg/schema"
)

// validateSemantic checks the cross-references schemas cannot express.
// Findings are warnings: the document is still exported.
func validateSemantic(doc *b2mml.Document) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	switch doc.Name {
	case b2mml.RootBatchInfo:
		for i, mr := range doc.Root.Nodes("MasterRecipe") {
			validateMasterReferences(mr, fmt.Sprintf("MasterRecipe[%d]", i), result)
		}
	case b2mml.RootGRecipe:
		if pe := doc.Root.Child("ProcessProcedure"); pe != nil {
			validateScopeLinks(pe, "ProcessProcedure", result)
		}
	}
	return result
}

// validateMasterReferences checks that steps name recipe elements, links
// name steps or transitions, and recipe element parameters name formula
// parameters.
func validateMasterReferences(mr *b2mml.Node, path string, result *schema.ValidationResult) {
	elements := idSet(mr.Nodes("RecipeElement"), "ID")
	logic := mr.Child("ProcedureLogic")
	steps := idSet(logic.Nodes("Step"), "ID")
	transitions := idSet(logic.Nodes("Transition"), "ID")
	formula := idSet(mr.Child("Formula").Nodes("Parameter"), "ID")

	for i, s := range logic.Nodes("Step") {
		ref := s.Text("RecipeElementID")
		if !elements[ref] {
			dangling(result, fmt.Sprintf("%s.ProcedureLogic.Step[%d].RecipeElementID", path, i),
				"step %s references unknown recipe element %q", s.Text("ID"), ref)
		}
	}

	for i, l := range logic.Nodes("Link") {
		linkPath := fmt.Sprintf("%s.ProcedureLogic.Link[%d]", path, i)
		from, to := l.Child("FromID"), l.Child("ToID")
		checkEndpoint(result, linkPath+".FromID", l.Text("ID"), from.Text("FromIDValue"), from.Text("FromType"), steps, transitions)
		checkEndpoint(result, linkPath+".ToID", l.Text("ID"), to.Text("ToIDValue"), to.Text("ToType"), steps, transitions)
	}

	for i, el := range mr.Nodes("RecipeElement") {
		for j, p := range el.Nodes("Parameter") {
			if !formula[p.Text("ID")] {
				dangling(result, fmt.Sprintf("%s.RecipeElement[%d].Parameter[%d]", path, i, j),
					"recipe element %s parameter %q has no formula parameter", el.Text("ID"), p.Text("ID"))
			}
		}
	}
}

func checkEndpoint(result *schema.ValidationResult, path, linkID, ref, kind string, steps, transitions map[string]bool) {
	var ok bool
	switch kind {
	case "Step":
		ok = steps[ref]
	case "Transition":
		ok = transitions[ref]
	}
	if !ok {
		dangling(result, path, "link %s references unknown %s %q", linkID, kindName(kind), ref)
	}
}

func kindName(kind string) string {
	if kind == "" {
		return "element"
	}
	return kind
}

// validateScopeLinks checks that every directed link of a process element
// joins elements of its own scope, then recurses into nested elements.
func validateScopeLinks(pe *b2mml.Node, path string, result *schema.ValidationResult) {
	scope := make(map[string]bool)
	for _, m := range pe.Nodes("Materials") {
		for id := range idSet(m.Nodes("Material"), "ID") {
			scope[id] = true
		}
	}
	for id := range idSet(pe.Nodes("ProcessElement"), "ID") {
		scope[id] = true
	}
	for id := range idSet(pe.Nodes("ProcedureChartElement"), "ID") {
		scope[id] = true
	}

	for i, l := range pe.Nodes("DirectedLink") {
		for _, end := range []string{"FromID", "ToID"} {
			ref := l.Text(end)
			if !scope[ref] {
				dangling(result, fmt.Sprintf("%s.DirectedLink[%d].%s", path, i, end),
					"directed link %s references %q outside process element %s", l.Text("ID"), ref, pe.Text("ID"))
			}
		}
	}

	for i, child := range pe.Nodes("ProcessElement") {
		validateScopeLinks(child, fmt.Sprintf("%s.ProcessElement[%d]", path, i), result)
	}
}

func dangling(result *schema.ValidationResult, path, format string, args ...any) {
	result.AddWarning(path, schema.ErrCodeDanglingReference, fmt.Sprintf(format, args...))
}

func idSet(nodes []*b2mml.Node, field string) map[string]bool {
	out := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if id := n.Text(field); id != "" {
			out[id] = true
		}
	}
	return out
}
