package document

import (
	"fmt"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/internal/codec"
	"github.com/rendis/batchml/internal/equipment"
	"github.com/rendis/batchml/pkg/schema"
)

const (
	equipmentElementType  = "Other"
	equipmentElementLevel = "EquipmentModule"
	proceduralElementType = "Procedure"
	connectionType        = "MaterialMovement"
	defaultNextEquipment  = "NextEquipment"
)

// EquipmentElements renders one EquipmentElement per distinct equipment
// instance, in the order the recipe items first reference them. The first
// binding seen for an instance describes it.
func EquipmentElements(recipe []*schema.WorkspaceItem, bindings map[*schema.WorkspaceItem]*equipment.Binding) []*b2mml.Node {
	var out []*b2mml.Node
	seen := make(map[string]bool)
	for _, it := range recipe {
		b := bindings[it]
		if b == nil || b.EquipmentID == "" || seen[b.EquipmentID] {
			continue
		}
		seen[b.EquipmentID] = true
		out = append(out, equipmentElement(b))
	}
	return out
}

func equipmentElement(b *equipment.Binding) *b2mml.Node {
	inst := b.EquipmentID
	desc := "Equipment instance " + inst
	var procedural []*b2mml.Node
	if b.Source == schema.SourceMTP {
		service := firstNonEmpty(b.ServiceName, "Service")
		procedure := firstNonEmpty(b.ProcedureName, "Procedure")
		desc = fmt.Sprintf("%s instance for %s", firstNonEmpty(b.ServiceName, "Equipment"), firstNonEmpty(b.ProcedureName, "procedure"))
		for _, p := range b.Parameters {
			name := firstNonEmpty(p.Name, p.ID)
			procedural = append(procedural, b2mml.NewNode().
				Set("ID", p.ID).
				Set("Description", fmt.Sprintf("%s:%s:%s", service, procedure, name)).
				Set("EquipmentProceduralElementType", proceduralElementType).
				Set("Parameter", b2mml.NewNode().
					Set("ID", p.ID).
					Set("Description", name+"_Param").
					Set("ParameterType", equipment.ParameterType).
					Set("ParameterSubType", p.SubType).
					Set("Value", codec.ValueType(p.Value))))
		}
	}

	var conns []*b2mml.Node
	if b.NextEquipment != "" {
		conns = append(conns, connection(inst, b.NextEquipment))
	}
	if b.PrevEquipment != "" {
		conns = append(conns, connection(b.PrevEquipment, inst))
	}
	if len(conns) == 0 {
		conns = append(conns, b2mml.NewNode().
			Set("ID", "EquipmentConnection"+inst).
			Set("Description", "Material transfer from "+inst).
			Set("ConnectionType", connectionType).
			Set("FromEquipmentID", inst).
			Set("ToEquipmentID", defaultNextEquipment))
	}

	return b2mml.NewNode().
		Set("ID", inst).
		Set("Description", desc).
		Set("EquipmentElementType", equipmentElementType).
		Set("EquipmentElementLevel", equipmentElementLevel).
		Set("EquipmentProceduralElement", b2mml.List(procedural)).
		Set("EquipmentConnection", b2mml.List(conns))
}

func connection(from, to string) *b2mml.Node {
	return b2mml.NewNode().
		Set("ID", fmt.Sprintf("EquipmentConnection%sTo%s", from, to)).
		Set("Description", fmt.Sprintf("Material transfer from %s to %s", from, to)).
		Set("ConnectionType", connectionType).
		Set("FromEquipmentID", from).
		Set("ToEquipmentID", to)
}
