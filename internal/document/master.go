package document

import (
	"fmt"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/internal/codec"
	"github.com/rendis/batchml/internal/engine"
	"github.com/rendis/batchml/internal/equipment"
	"github.com/rendis/batchml/internal/identity"
	"github.com/rendis/batchml/pkg/schema"
)

const (
	masterFormulaDescription = "Formula defines the Inputs, Intermediates, Outputs and Parameters of the Master Recipe"
	defaultMaterialAmount    = "1"
	defaultMaterialUnit      = "kg"
	defaultStepService       = "Process"
)

// MasterInput is everything the master recipe is assembled from.
type MasterInput struct {
	Config Config
	// Items holds every workspace item; materials are taken from here.
	Items []*schema.WorkspaceItem
	// Recipe holds the recipe-bearing items in workspace order.
	Recipe      []*schema.WorkspaceItem
	Assignments map[*schema.WorkspaceItem]identity.Assignment
	Bindings    map[*schema.WorkspaceItem]*equipment.Binding
	Procedure   *engine.Procedure
}

func (in MasterInput) exportID(it *schema.WorkspaceItem) string {
	if a, ok := in.Assignments[it]; ok {
		return a.ExportID()
	}
	return it.ID
}

// DescribeStep is the fallback description of a step and its recipe
// element: the export id followed by the service the item runs.
func DescribeStep(item *schema.WorkspaceItem, exportID string, b *equipment.Binding) string {
	service := ""
	if b != nil {
		service = b.ServiceName
	}
	return fmt.Sprintf("%s: %s", exportID, firstNonEmpty(service, item.RecipeElementType, defaultStepService))
}

// BuildMaster assembles the BatchInformation document around one master
// recipe. The result is not pruned.
func BuildMaster(in MasterInput) *b2mml.Document {
	params := planParameters(in)
	created := timestamp(in.Config.Created)

	recipe := b2mml.NewNode().
		Set("ID", in.Config.RecipeID).
		Set("Version", in.Config.Version).
		Set("VersionDate", created).
		Set("Description", in.Config.Description).
		Set("Header", b2mml.NewNode().
			Set("ProductID", in.Config.ProductID).
			Set("ProductName", in.Config.ProductName)).
		Set("EquipmentRequirement", b2mml.List(masterRequirements(in))).
		Set("Formula", masterFormula(in, params)).
		Set("ProcedureLogic", procedureLogic(in.Procedure)).
		Set("RecipeElement", b2mml.List(recipeElements(in, params)))

	root := b2mml.NewNode().
		SetAttr("xmlns:"+b2mml.Prefix, b2mml.Namespace).
		SetAttr("xmlns:xsi", b2mml.XSINamespace).
		SetAttr("xsi:schemaLocation", b2mml.SchemaLocation).
		Set("ListHeader", b2mml.NewNode().
			Set("ID", ListHeaderID).
			Set("CreateDate", created)).
		Set("Description", in.Config.Description).
		Set("MasterRecipe", recipe).
		Set("EquipmentElement", b2mml.List(EquipmentElements(in.Recipe, in.Bindings)))
	return &b2mml.Document{Name: b2mml.RootBatchInfo, Root: root}
}

type paramKey struct {
	item  *schema.WorkspaceItem
	index int
}

type formulaParameter struct {
	ID          string
	Description string
	SubType     string
	Value       codec.Value
}

// parameterPlan holds the formula parameters with their final ids and the
// id each resolved item parameter was given.
type parameterPlan struct {
	formula []formulaParameter
	ids     map[paramKey]string
}

// planParameters lists the resolved parameters of every recipe item,
// qualified with the item's prefix, then the configured parameters, and
// makes the ids unique across the whole formula.
func planParameters(in MasterInput) parameterPlan {
	var (
		list []formulaParameter
		keys []paramKey
	)
	for _, it := range in.Recipe {
		b := in.Bindings[it]
		if b == nil {
			continue
		}
		a := in.Assignments[it]
		for i, p := range b.Parameters {
			list = append(list, formulaParameter{
				ID:          a.Qualify(p.ID),
				Description: p.Description,
				SubType:     p.SubType,
				Value:       p.Value,
			})
			keys = append(keys, paramKey{item: it, index: i})
		}
	}
	for _, p := range in.Config.FormulaParameters {
		list = append(list, formulaParameter{
			ID:          p.ID,
			Description: p.Description,
			SubType:     equipment.FallbackSubType,
			Value:       p.Value,
		})
	}

	ids := make([]string, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}
	plan := parameterPlan{ids: make(map[paramKey]string, len(keys))}
	for i, a := range identity.Disambiguate(ids) {
		list[i].ID = a.ExportID()
		if i < len(keys) {
			plan.ids[keys[i]] = list[i].ID
		}
	}
	plan.formula = list
	return plan
}

func masterRequirements(in MasterInput) []*b2mml.Node {
	var out []*b2mml.Node
	seen := make(map[string]bool)
	for _, it := range in.Recipe {
		b := in.Bindings[it]
		if b == nil {
			continue
		}
		for _, req := range b.Requirements {
			if seen[req.ID] {
				continue
			}
			seen[req.ID] = true
			out = append(out, b2mml.NewNode().
				Set("ID", req.ID).
				Set("Description", req.Description))
		}
	}
	for _, req := range in.Config.EquipmentRequirements {
		out = append(out, b2mml.NewNode().
			Set("ID", req.ID).
			Set("Constraint", b2mml.NewNode().
				Set("ID", req.ConstraintID).
				Set("Condition", req.Condition)).
			Set("Description", req.Description))
	}
	return out
}

func masterFormula(in MasterInput, plan parameterPlan) *b2mml.Node {
	params := make([]*b2mml.Node, 0, len(plan.formula))
	for _, p := range plan.formula {
		params = append(params, b2mml.NewNode().
			Set("ID", p.ID).
			Set("Description", p.Description).
			Set("ParameterType", equipment.ParameterType).
			Set("ParameterSubType", p.SubType).
			Set("Value", codec.ValueType(p.Value)))
	}

	var mats []*b2mml.Node
	for _, kind := range []schema.MaterialType{schema.MaterialInput, schema.MaterialOutput} {
		for _, it := range in.Items {
			if it.Type != schema.ItemTypeMaterial || it.MaterialType != kind {
				continue
			}
			mats = append(mats, masterMaterial(it))
		}
	}

	return b2mml.NewNode().
		Set("Description", masterFormulaDescription).
		Set("Parameter", b2mml.List(params)).
		Set("Material", b2mml.List(mats))
}

func masterMaterial(it *schema.WorkspaceItem) *b2mml.Node {
	amount := codec.FromSpec(it.Amount)
	amount.Text = firstNonEmpty(amount.Text, defaultMaterialAmount)
	amount.UnitOfMeasure = firstNonEmpty(amount.UnitOfMeasure, defaultMaterialUnit)
	return b2mml.NewNode().
		Set("ID", it.ID).
		Set("Description", firstNonEmpty(it.Description, it.Name, fmt.Sprintf("%s material %s", it.MaterialType, it.ID))).
		Set("MaterialType", string(it.MaterialType)).
		Set("Amount", codec.Amount(amount))
}

func procedureLogic(p *engine.Procedure) *b2mml.Node {
	n := b2mml.NewNode()
	if p == nil {
		return n
	}
	links := make([]*b2mml.Node, 0, len(p.Links))
	for _, l := range p.Links {
		links = append(links, b2mml.NewNode().
			Set("ID", l.ID).
			Set("FromID", b2mml.NewNode().
				Set("FromIDValue", l.FromID).
				Set("FromType", l.FromType).
				Set("IDScope", engine.IDScopeExternal)).
			Set("ToID", b2mml.NewNode().
				Set("ToIDValue", l.ToID).
				Set("ToType", l.ToType).
				Set("IDScope", engine.IDScopeExternal)).
			Set("LinkType", engine.LinkTypeControl).
			Set("Depiction", engine.DepictionLineArrow).
			Set("EvaluationOrder", engine.LinkEvaluationOrder).
			Set("Description", l.Description()))
	}
	steps := make([]*b2mml.Node, 0, len(p.Steps))
	for _, s := range p.Steps {
		steps = append(steps, b2mml.NewNode().
			Set("ID", s.ID).
			Set("RecipeElementID", s.ExportID).
			Set("RecipeElementVersion", "").
			Set("Description", s.Description))
	}
	transitions := make([]*b2mml.Node, 0, len(p.Transitions))
	for _, t := range p.Transitions {
		transitions = append(transitions, b2mml.NewNode().
			Set("ID", t.ID).
			Set("Condition", t.Condition))
	}
	return n.
		Set("Link", b2mml.List(links)).
		Set("Step", b2mml.List(steps)).
		Set("Transition", b2mml.List(transitions))
}

// recipeElements renders one flat RecipeElement per recipe item in
// workspace order.
func recipeElements(in MasterInput, plan parameterPlan) []*b2mml.Node {
	out := make([]*b2mml.Node, 0, len(in.Recipe))
	for _, it := range in.Recipe {
		exportID := in.exportID(it)
		b := in.Bindings[it]

		desc := firstNonEmpty(it.Description, DescribeStep(it, exportID, b))
		actual := it.ID + "Instance"
		var reqs, params []*b2mml.Node
		if b != nil {
			if b.Source == schema.SourceMTP && b.ProcedureID != "" {
				desc = fmt.Sprintf("%s:%s:%s", firstNonEmpty(b.ServiceName, "Service"), firstNonEmpty(b.ProcedureName, "Procedure"), it.ID)
			}
			actual = firstNonEmpty(b.EquipmentID, actual)
			for _, req := range b.Requirements {
				reqs = append(reqs, b2mml.NewNode().
					Set("ID", req.ID).
					Set("Description", req.Description))
			}
			for i, p := range b.Parameters {
				params = append(params, b2mml.NewNode().
					Set("ID", plan.ids[paramKey{item: it, index: i}]).
					Set("Description", p.Description).
					Set("ParameterType", equipment.ParameterType).
					Set("Value", codec.ValueType(p.Value)))
			}
		}

		out = append(out, b2mml.NewNode().
			Set("ID", exportID).
			Set("Description", desc).
			Set("RecipeElementType", RecipeElementType(it)).
			Set("ActualEquipmentID", actual).
			Set("EquipmentRequirement", b2mml.List(reqs)).
			Set("Parameter", b2mml.List(params)))
	}
	return out
}
