package document

import (
	"strconv"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/internal/codec"
	"github.com/rendis/batchml/pkg/schema"
)

const (
	formulaDescription  = "The formula defines the Inputs, Intermediates and Outputs of the Procedure"
	processElementType  = "Process"
	generalRecipeType   = "General"
	materialsInputID    = "inputid"
	materialsInterID    = "intermediateid"
	materialsOutputID   = "outputsid"
	materialsInputDesc  = "List of Process Inputs"
	materialsInterDesc  = "List of Process Intermediates"
	materialsOutputDesc = "List of Process Outputs"
)

// BuildGeneral assembles the general recipe. The whole workspace becomes the
// scope of the top level process element. The result is not pruned.
func BuildGeneral(items []*schema.WorkspaceItem, connections []schema.Connection, cfg Config) *b2mml.Document {
	root := b2mml.NewNode().
		SetAttr("xmlns:"+b2mml.Prefix, b2mml.Namespace).
		Set("ID", cfg.RecipeID).
		Set("Version", cfg.Version).
		Set("Description", cfg.Description).
		Set("GRecipeType", generalRecipeType).
		Set("Header", b2mml.NewNode().
			Set("ProductID", cfg.ProductID).
			Set("ProductName", cfg.ProductName)).
		Set("Formula", generalFormula(items, cfg)).
		Set("ProcessProcedure", processElement(&schema.WorkspaceItem{
			ID:                 ProcedureID,
			Description:        ProcedureDescription,
			ProcessElementType: processElementType,
		}, items, connections))
	return &b2mml.Document{Name: b2mml.RootGRecipe, Root: root}
}

func generalFormula(items []*schema.WorkspaceItem, cfg Config) *b2mml.Node {
	params := make([]*b2mml.Node, 0, len(cfg.FormulaParameters))
	for _, p := range cfg.FormulaParameters {
		params = append(params, b2mml.NewNode().
			Set("ID", p.ID).
			Set("Description", p.Description).
			Set("Value", codec.ValueType(p.Value)))
	}
	return b2mml.NewNode().
		Set("Description", formulaDescription).
		Set("ProcessInputs", materials(items, materialsInputID, materialsInputDesc, schema.MaterialInput)).
		Set("ProcessIntermediates", materials(items, materialsInterID, materialsInterDesc, schema.MaterialIntermediate)).
		Set("ProcessOutputs", materials(items, materialsOutputID, materialsOutputDesc, schema.MaterialOutput)).
		Set("ProcessElementParameter", b2mml.List(params))
}

// processElement renders item over its scope. Only process items in the
// scope nest; each nested element recurses over its own children.
func processElement(item *schema.WorkspaceItem, scope []*schema.WorkspaceItem, links []schema.Connection) *b2mml.Node {
	n := b2mml.NewNode().
		Set("ID", item.ID).
		Set("Description", item.Description).
		Set("ProcessElementType", firstNonEmpty(item.ProcessElementType, processElementType)).
		Set("Materials", []any{
			materials(scope, item.ID+"InputMaterials", "Input Materials of Process"+item.ID, schema.MaterialInput),
			materials(scope, item.ID+"IntermediateMaterials", "Intermediate Materials of Process"+item.ID, schema.MaterialIntermediate),
			materials(scope, item.ID+"OutputMaterials", "Output Materials of Process"+item.ID, schema.MaterialOutput),
		})

	directed := make([]*b2mml.Node, 0, len(links))
	for i, c := range links {
		directed = append(directed, b2mml.NewNode().
			Set("ID", firstNonEmpty(c.ID, strconv.Itoa(i+1))).
			Set("FromID", c.SourceID).
			Set("ToID", c.TargetID))
	}
	n.Set("DirectedLink", b2mml.List(directed))

	var charts, children []*b2mml.Node
	for _, child := range scope {
		switch child.Type {
		case schema.ItemTypeChartElement:
			charts = append(charts, b2mml.NewNode().
				Set("ID", child.ID).
				Set("Description", child.Description))
		case schema.ItemTypeProcess:
			children = append(children, processElement(child, child.Children(), child.DirectedLink))
		}
	}
	n.Set("ProcedureChartElement", b2mml.List(charts))
	n.Set("ProcessElement", b2mml.List(children))

	params := make([]*b2mml.Node, 0, len(item.ProcessElementParameter))
	for _, p := range item.ProcessElementParameter {
		params = append(params, b2mml.NewNode().
			Set("ID", p.ID).
			Set("Description", p.Description).
			Set("Value", codec.ValueType(codec.FromUser(p.Value))))
	}
	n.Set("ProcessElementParameter", b2mml.List(params))

	constraints := make([]*b2mml.Node, 0, len(item.ResourceConstraint))
	for _, rc := range item.ResourceConstraint {
		constraints = append(constraints, b2mml.NewNode().
			Set("ConstraintID", rc.ID).
			Set("Description", rc.Description.First()).
			Set("ConstraintType", rc.ConstraintType).
			Set("Range", codec.ValueType(codec.FromSpec(rc.Range))))
	}
	n.Set("ResourceConstraint", b2mml.List(constraints))

	others := make([]*b2mml.Node, 0, len(item.OtherInformation))
	for _, oi := range item.OtherInformation {
		values := make([]*b2mml.Node, 0, len(oi.OtherValue))
		for i := range oi.OtherValue {
			values = append(values, codec.ValueType(codec.FromSpec(&oi.OtherValue[i])))
		}
		others = append(others, b2mml.NewNode().
			Set("OtherInfoID", oi.OtherInfoID).
			Set("Description", b2mml.List(oi.Description)).
			Set("OtherValue", b2mml.List(values)))
	}
	n.Set("OtherInformation", b2mml.List(others))
	return n
}

// materials collects the materials of one type from a scope.
func materials(scope []*schema.WorkspaceItem, id, desc string, kind schema.MaterialType) *b2mml.Node {
	var list []*b2mml.Node
	for _, it := range scope {
		if it.Type != schema.ItemTypeMaterial || it.MaterialType != kind {
			continue
		}
		list = append(list, b2mml.NewNode().
			Set("ID", it.ID).
			Set("Description", it.Description).
			Set("MaterialID", it.MaterialID).
			Set("Order", it.Order.String()).
			Set("Amount", codec.Amount(codec.FromSpec(it.Amount))))
	}
	return b2mml.NewNode().
		Set("ID", id).
		Set("Description", desc).
		Set("MaterialsType", string(kind)).
		Set("Material", b2mml.List(list))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
