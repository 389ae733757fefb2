// Package equipment binds workspace items to the equipment they run on and
// resolves their parameter values.
package equipment

import (
	"context"
	"log/slog"

	"github.com/rendis/batchml/internal/codec"
	"github.com/rendis/batchml/internal/logging"
	"github.com/rendis/batchml/pkg/schema"
)

// Fallbacks applied while resolving parameters.
const (
	FallbackValue    = "10"
	FallbackUnit     = "seconds"
	FallbackSubType  = "ST"
	DataTypeMeasure  = "Measure"
	DataTypeDuration = "duration"
	ParameterType    = "ProcessParameter"
)

// Parameter is an equipment-declared parameter with its final value.
type Parameter struct {
	ID          string
	Name        string
	Description string
	SubType     string
	Value       codec.Value
	// UserID is the id of the user binding that supplied the value, "" when
	// the value came from the equipment or the fallback.
	UserID string
	Min    *float64
	Max    *float64
}

// Requirement is an equipment requirement reference.
type Requirement struct {
	ID          string
	Description string
}

// Binding is what an item contributes to the equipment side of a recipe.
type Binding struct {
	Source schema.SourceType
	// EquipmentID is the actual equipment the item runs on, "" when unknown.
	EquipmentID   string
	ServiceName   string
	ProcedureID   string
	ProcedureName string
	NextEquipment string
	PrevEquipment string
	Requirements  []Requirement
	Parameters    []Parameter
}

// Resolver resolves equipment bindings of workspace items.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a resolver. A nil logger discards output.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Resolver{logger: logger}
}

// Resolve classifies the item's equipment description and resolves its
// parameters. It returns nil when the item has no equipment.
func (r *Resolver) Resolve(ctx context.Context, item *schema.WorkspaceItem) *Binding {
	if item == nil || item.EquipmentInfo == nil || item.EquipmentInfo.Source == nil {
		return nil
	}
	ctx = logging.WithItemID(ctx, item.ID)

	var b *Binding
	switch src := item.EquipmentInfo.Source.(type) {
	case *schema.MTPEquipment:
		b = resolveMTP(item, src)
	case *schema.AASEquipment:
		b = resolveAAS(item, src)
	case *schema.LegacyEquipment:
		b = resolveLegacy(item, src)
	default:
		return nil
	}

	r.logger.DebugContext(ctx, "equipment resolved",
		slog.String("source", sourceName(b.Source)),
		slog.String("equipment_id", b.EquipmentID),
		slog.Int("parameters", len(b.Parameters)),
	)
	return b
}

// ResolveAll resolves every item and validates the resolved values against
// their declared bounds. Range violations are returned as warnings.
func (r *Resolver) ResolveAll(ctx context.Context, items []*schema.WorkspaceItem) (map[*schema.WorkspaceItem]*Binding, *schema.ValidationResult) {
	out := make(map[*schema.WorkspaceItem]*Binding, len(items))
	result := &schema.ValidationResult{}
	for _, it := range items {
		b := r.Resolve(ctx, it)
		if b == nil {
			continue
		}
		out[it] = b
		for _, issue := range CheckRanges(it, b) {
			r.logger.WarnContext(logging.WithItemID(ctx, it.ID), "parameter out of range", slog.String("detail", issue.Message))
			result.Warnings = append(result.Warnings, issue)
		}
	}
	return out, result
}

func sourceName(s schema.SourceType) string {
	if s == schema.SourceLegacy {
		return "legacy"
	}
	return string(s)
}

func resolveMTP(item *schema.WorkspaceItem, m *schema.MTPEquipment) *Binding {
	b := &Binding{
		Source:        schema.SourceMTP,
		EquipmentID:   m.ServiceInfo.ID,
		ServiceName:   m.ServiceInfo.Name,
		ProcedureID:   m.ProcedureInfo.ID,
		ProcedureName: m.ProcedureInfo.Name,
		NextEquipment: m.NextEquipment,
		PrevEquipment: m.PreviousEquipment,
	}
	for _, req := range m.EquipmentRequirements {
		if req.ID == "" {
			continue
		}
		desc := req.Description
		if desc == "" {
			desc = "Equipment requirement for " + firstNonEmpty(m.ServiceInfo.Name, "service")
		}
		b.Requirements = append(b.Requirements, Requirement{ID: req.ID, Description: desc})
	}

	for _, def := range m.RecipeParameters {
		user := schema.FindParameter(item.ProcessElementParameter, def.ID, def.Name)
		dataType := DataTypeDuration
		if def.Unit != "" {
			dataType = DataTypeMeasure
		}
		subType := FallbackSubType
		if def.ParamElem != nil && def.ParamElem.Type != "" {
			subType = def.ParamElem.Type
		}
		b.Parameters = append(b.Parameters, Parameter{
			ID:          def.ID,
			Name:        def.Name,
			Description: firstNonEmpty(def.Name, def.ID),
			SubType:     subType,
			Value: codec.Value{
				Text:               resolveValue(user, def.Default),
				DataType:           dataType,
				UnitOfMeasure:      firstNonEmpty(def.Unit, FallbackUnit),
				DataInterpretation: codec.DataInterpretationConstant,
			},
			UserID: userID(user),
			Min:    def.Min,
			Max:    def.Max,
		})
	}
	return b
}

func resolveAAS(item *schema.WorkspaceItem, a *schema.AASEquipment) *Binding {
	b := &Binding{Source: schema.SourceAAS, EquipmentID: a.AASID}
	for _, p := range a.Properties {
		user := schema.FindParameter(item.ProcessElementParameter, p.ID)
		b.Parameters = append(b.Parameters, Parameter{
			ID:          p.ID,
			Name:        p.Name,
			Description: firstNonEmpty(p.Name, p.ID),
			SubType:     FallbackSubType,
			Value: codec.Value{
				Text:               resolveValue(user, p.Value),
				DataType:           firstNonEmpty(p.DataType, DataTypeDuration),
				UnitOfMeasure:      firstNonEmpty(p.Unit, FallbackUnit),
				DataInterpretation: codec.DataInterpretationConstant,
			},
			UserID: userID(user),
			Min:    p.Min,
			Max:    p.Max,
		})
	}
	return b
}

func resolveLegacy(item *schema.WorkspaceItem, l *schema.LegacyEquipment) *Binding {
	b := &Binding{
		Source:      schema.SourceLegacy,
		EquipmentID: l.Instance,
		ServiceName: l.Service,
	}
	if l.Requirement != nil {
		b.Requirements = append(b.Requirements, Requirement{
			ID:          firstNonEmpty(l.Requirement.ID, "Equipment Requirement"),
			Description: firstNonEmpty(l.Requirement.Description, "Equipment requirement for "+item.ID),
		})
	}
	for _, p := range l.Parameters {
		user := schema.FindParameter(item.ProcessElementParameter, p.ID)
		b.Parameters = append(b.Parameters, Parameter{
			ID:          p.ID,
			Description: firstNonEmpty(p.Description, p.ID),
			SubType:     firstNonEmpty(p.SubType, FallbackSubType),
			Value: codec.Value{
				Text:               resolveValue(user, p.Value),
				DataType:           firstNonEmpty(p.DataType, DataTypeDuration),
				UnitOfMeasure:      firstNonEmpty(p.Unit, FallbackUnit),
				DataInterpretation: codec.DataInterpretationConstant,
			},
			UserID: userID(user),
			Min:    p.Min,
			Max:    p.Max,
		})
	}
	return b
}

// resolveValue applies the override rule: a non-empty user value wins over
// the equipment default, which wins over the fixed fallback.
func resolveValue(user *schema.ParameterValue, def *string) string {
	if user != nil && user.Value.Present() {
		return user.Value.String()
	}
	if def != nil && *def != "" {
		return *def
	}
	return FallbackValue
}

func userID(user *schema.ParameterValue) string {
	if user == nil || !user.Value.Present() {
		return ""
	}
	return user.ID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
