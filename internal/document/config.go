// Package document assembles B2MML general recipes and BatchML master
// recipes from a workspace and the results of the earlier compiler passes.
package document

import (
	"time"

	"github.com/rendis/batchml/internal/codec"
)

// Fixed identifiers of the emitted documents.
const (
	DefaultGeneralRecipeID = "GeneralRecipe"
	DefaultMasterRecipeID  = "MasterRecipe"
	ListHeaderID           = "ListHeadID"
	ProcedureID            = "Procedure1"
	ProcedureDescription   = "This is the top level ProcessElement"
	DefaultConstraintID    = "Material constraint"
	DefaultConstraint      = "Material == H2O"
	DefaultRequirementDesc = "Equipment requirement for the process"
)

// Config is the recipe metadata with every default already applied. Empty
// strings are omitted from the document by pruning.
type Config struct {
	RecipeID              string
	ProductID             string
	ProductName           string
	Version               string
	Description           string
	Created               time.Time
	FormulaParameters     []FormulaParameter
	EquipmentRequirements []EquipmentRequirement
}

// FormulaParameter is a recipe-level parameter from the configuration.
type FormulaParameter struct {
	ID          string
	Description string
	Value       codec.Value
}

// EquipmentRequirement is a recipe-level requirement from the configuration.
type EquipmentRequirement struct {
	ID           string
	ConstraintID string
	Condition    string
	Description  string
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
