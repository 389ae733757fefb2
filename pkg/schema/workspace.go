package schema

// Workspace is the editor graph handed to the compiler for one export.
type Workspace struct {
	Items       []*WorkspaceItem `json:"workspace_items"`
	Connections []Connection     `json:"connections"`
}

// ItemType enumerates the kinds of workspace items.
type ItemType string

const (
	ItemTypeProcess       ItemType = "process"
	ItemTypeMaterial      ItemType = "material"
	ItemTypeRecipeElement ItemType = "recipe_element"
	ItemTypeChartElement  ItemType = "chart_element"
)

// MaterialType classifies a material item.
type MaterialType string

const (
	MaterialInput        MaterialType = "Input"
	MaterialOutput       MaterialType = "Output"
	MaterialIntermediate MaterialType = "Intermediate"
)

// WorkspaceItem is a node in the editor graph. The compiler never mutates it.
type WorkspaceItem struct {
	ID                 string   `json:"id"`
	Type               ItemType `json:"type"`
	Name               string   `json:"name,omitempty"`
	Description        string   `json:"description,omitempty"`
	ProcessElementType string   `json:"processElementType,omitempty"`
	RecipeElementType  string   `json:"recipeElementType,omitempty"`

	ProcessElementParameter []ParameterValue `json:"processElementParameter,omitempty"`
	EquipmentInfo           *EquipmentInfo   `json:"equipmentInfo,omitempty"`

	ConditionGroup *ConditionGroup   `json:"conditionGroup,omitempty"`
	ConditionList  []LegacyCondition `json:"conditionList,omitempty"`

	MaterialType MaterialType `json:"materialType,omitempty"`
	MaterialID   string       `json:"materialID,omitempty"`
	Order        Scalar       `json:"order"`
	Amount       *ValueSpec   `json:"amount,omitempty"`

	Materials             []*WorkspaceItem `json:"materials,omitempty"`
	ProcessElement        []*WorkspaceItem `json:"processElement,omitempty"`
	ProcedureChartElement []*WorkspaceItem `json:"procedureChartElement,omitempty"`
	DirectedLink          []Connection     `json:"directedLink,omitempty"`

	OtherInformation   []OtherInformation   `json:"otherInformation,omitempty"`
	ResourceConstraint []ResourceConstraint `json:"resourceConstraint,omitempty"`
}

// IsRecipeBearing reports whether the item becomes a step in procedure logic.
func (it *WorkspaceItem) IsRecipeBearing() bool {
	return it.Type == ItemTypeProcess || it.Type == ItemTypeRecipeElement
}

// Children returns the nested scope of a macro step: its materials, process
// elements and chart elements, in that order.
func (it *WorkspaceItem) Children() []*WorkspaceItem {
	n := len(it.Materials) + len(it.ProcessElement) + len(it.ProcedureChartElement)
	if n == 0 {
		return nil
	}
	out := make([]*WorkspaceItem, 0, n)
	out = append(out, it.Materials...)
	out = append(out, it.ProcessElement...)
	out = append(out, it.ProcedureChartElement...)
	return out
}

// Connection is a directed edge between two workspace items.
type Connection struct {
	ID           string `json:"id,omitempty"`
	SourceID     string `json:"sourceId"`
	TargetID     string `json:"targetId"`
	IsTransition bool   `json:"isTransition,omitempty"`
}

// ValueSpec is a typed scalar as entered in the editor.
type ValueSpec struct {
	ValueString   Scalar `json:"valueString"`
	DataType      string `json:"dataType,omitempty"`
	UnitOfMeasure string `json:"unitOfMeasure,omitempty"`
	Key           string `json:"key,omitempty"`
}

// OtherInformation is a free-form annotation attached to a process element.
type OtherInformation struct {
	OtherInfoID string      `json:"otherInfoID"`
	Description StringList  `json:"description,omitempty"`
	OtherValue  []ValueSpec `json:"otherValue,omitempty"`
}

// ResourceConstraint restricts the resources a process element may use.
type ResourceConstraint struct {
	ID             string     `json:"id"`
	Description    StringList `json:"description,omitempty"`
	ConstraintType string     `json:"constraintType,omitempty"`
	Range          *ValueSpec `json:"range,omitempty"`
}

// FindItem returns the first item with the given id, or nil.
func FindItem(items []*WorkspaceItem, id string) *WorkspaceItem {
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	return nil
}
