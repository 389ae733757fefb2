package schema

// RecipeConfig carries optional export metadata. A nil pointer means the
// field is omitted from the document; an empty string is emitted as given
// (and later pruned). Defaults are applied only by the compiler.
type RecipeConfig struct {
	RecipeID              *string                `json:"recipe_id,omitempty" yaml:"recipe_id,omitempty"`
	ProductID             *string                `json:"product_id,omitempty" yaml:"product_id,omitempty"`
	ProductName           *string                `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	Version               *string                `json:"version,omitempty" yaml:"version,omitempty"`
	Description           *string                `json:"description,omitempty" yaml:"description,omitempty"`
	FormulaParameters     []FormulaParameter     `json:"formula_parameters,omitempty" yaml:"formula_parameters,omitempty"`
	EquipmentRequirements []EquipmentRequirement `json:"equipment_requirements,omitempty" yaml:"equipment_requirements,omitempty"`
}

// FormulaParameter is an extra master-recipe formula parameter. It is
// emitted only when both ID and Value are set.
type FormulaParameter struct {
	ID          *string `json:"id,omitempty" yaml:"id,omitempty"`
	Value       *string `json:"value,omitempty" yaml:"value,omitempty"`
	DataType    *string `json:"data_type,omitempty" yaml:"data_type,omitempty"`
	Unit        *string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// EquipmentRequirement is an extra master-recipe equipment requirement.
// It is emitted only when ID is set.
type EquipmentRequirement struct {
	ID          *string `json:"id,omitempty" yaml:"id,omitempty"`
	Constraint  *string `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}
