package compiler

import (
	"time"

	"k8s.io/utils/ptr"

	"github.com/rendis/batchml/internal/codec"
	"github.com/rendis/batchml/internal/document"
	"github.com/rendis/batchml/internal/equipment"
	"github.com/rendis/batchml/pkg/schema"
)

// resolveConfig applies every default of the recipe metadata. It is the
// only place defaults are decided; a nil field stays empty and is pruned.
func resolveConfig(kind Kind, rc *schema.RecipeConfig, now time.Time) document.Config {
	if rc == nil {
		rc = &schema.RecipeConfig{}
	}
	recipeID := document.DefaultGeneralRecipeID
	if kind == KindMaster {
		recipeID = document.DefaultMasterRecipeID
	}

	cfg := document.Config{
		RecipeID:    ptr.Deref(rc.RecipeID, recipeID),
		ProductID:   ptr.Deref(rc.ProductID, ""),
		ProductName: ptr.Deref(rc.ProductName, ""),
		Version:     ptr.Deref(rc.Version, ""),
		Description: ptr.Deref(rc.Description, ""),
		Created:     now,
	}

	for _, p := range rc.FormulaParameters {
		id, value := ptr.Deref(p.ID, ""), ptr.Deref(p.Value, "")
		if id == "" || value == "" {
			continue
		}
		cfg.FormulaParameters = append(cfg.FormulaParameters, document.FormulaParameter{
			ID:          id,
			Description: ptr.Deref(p.Description, ""),
			Value: codec.Value{
				Text:               value,
				DataType:           orDefault(p.DataType, equipment.DataTypeDuration),
				UnitOfMeasure:      orDefault(p.Unit, equipment.FallbackUnit),
				DataInterpretation: codec.DataInterpretationConstant,
			},
		})
	}

	for _, r := range rc.EquipmentRequirements {
		id := ptr.Deref(r.ID, "")
		if id == "" {
			continue
		}
		cfg.EquipmentRequirements = append(cfg.EquipmentRequirements, document.EquipmentRequirement{
			ID:           id,
			ConstraintID: document.DefaultConstraintID,
			Condition:    orDefault(r.Constraint, document.DefaultConstraint),
			Description:  orDefault(r.Description, document.DefaultRequirementDesc),
		})
	}
	return cfg
}

// orDefault treats an empty string like an absent one.
func orDefault(p *string, def string) string {
	if v := ptr.Deref(p, ""); v != "" {
		return v
	}
	return def
}
