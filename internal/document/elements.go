package document

import "github.com/rendis/batchml/pkg/schema"

// recipeElementTypes maps editor element types onto the B2MML
// RecipeElementType enumeration.
var recipeElementTypes = map[string]string{
	"Recipe Procedure Containing Lower Level PFC":                "Procedure",
	"Recipe Unit Procedure Containing Lower Level PFC":           "UnitProcedure",
	"Recipe Operation Containing Lower Level PFC":                "Operation",
	"Recipe Procedure Referencing Equipment Procedure":           "Procedure",
	"Recipe Unit Procedure Referencing Equipment Unit Procedure": "UnitProcedure",
	"Recipe Operation Referencing Equipment Operation":           "Operation",
	"Recipe Phase Referencing Equipment Phase":                   "Phase",
	"Condition":                                                  "Other",
	"Begin":                                                      "Begin",
	"End":                                                        "End",
	"Allocation":                                                 "Allocation",
	"Synchronization Point":                                      "Other",
	"Synchronization Line":                                       "Other",
	"Synchronization Line Indicating Material Transfer":          "Other",
	"Begin and end Sequence Selection":                           "Other",
	"Begin and end Simultaneous Sequence":                        "Other",
	"Procedure":                                                  "Procedure",
	"UnitProcedure":                                              "UnitProcedure",
	"Operation":                                                  "Operation",
	"Phase":                                                      "Phase",
	"Process":                                                    "Operation",
	"Recipe Element":                                             "Other",
}

// RecipeElementType returns the B2MML type of an item. Unknown editor types
// map to Operation for process items and Other for everything else.
func RecipeElementType(it *schema.WorkspaceItem) string {
	if t, ok := recipeElementTypes[it.RecipeElementType]; ok {
		return t
	}
	if it.Type == schema.ItemTypeProcess {
		return "Operation"
	}
	return "Other"
}
