package schema

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// SourceType tags the format of an equipment description.
type SourceType string

const (
	SourceMTP    SourceType = "MTP"
	SourceAAS    SourceType = "AAS"
	SourceLegacy SourceType = ""
)

// EquipmentSource is one variant of an equipment description:
// *MTPEquipment, *AASEquipment or *LegacyEquipment.
type EquipmentSource interface {
	SourceType() SourceType
	isEquipmentSource()
}

// EquipmentInfo binds a workspace item to equipment. Source is never nil
// after decoding; untagged payloads decode as *LegacyEquipment.
type EquipmentInfo struct {
	Source EquipmentSource
}

// NamedRef is an id/name pair from an MTP service or procedure.
type NamedRef struct {
	ID   string `mapstructure:"id" json:"id,omitempty"`
	Name string `mapstructure:"name" json:"name,omitempty"`
}

// RequirementRef names an equipment requirement.
type RequirementRef struct {
	ID          string `mapstructure:"id" json:"id,omitempty"`
	Description string `mapstructure:"description" json:"description,omitempty"`
}

// ParamElem carries the MTP parameter element metadata.
type ParamElem struct {
	Type string `mapstructure:"Type" json:"Type,omitempty"`
}

// ParameterDefinition is an equipment-declared recipe parameter.
type ParameterDefinition struct {
	ID        string     `mapstructure:"id" json:"id"`
	Name      string     `mapstructure:"name" json:"name,omitempty"`
	Default   *string    `mapstructure:"default" json:"default,omitempty"`
	Min       *float64   `mapstructure:"min" json:"min,omitempty"`
	Max       *float64   `mapstructure:"max" json:"max,omitempty"`
	Unit      string     `mapstructure:"unit" json:"unit,omitempty"`
	ParamElem *ParamElem `mapstructure:"paramElem" json:"paramElem,omitempty"`
}

// MTPEquipment is a service/procedure taken from a Module Type Package.
type MTPEquipment struct {
	ServiceInfo           NamedRef              `mapstructure:"service_info" json:"service_info"`
	ProcedureInfo         NamedRef              `mapstructure:"procedure_info" json:"procedure_info"`
	EquipmentRequirements []RequirementRef      `mapstructure:"equipment_requirements" json:"equipment_requirements,omitempty"`
	RecipeParameters      []ParameterDefinition `mapstructure:"recipe_parameters" json:"recipe_parameters,omitempty"`
	NextEquipment         string                `mapstructure:"next_equipment" json:"next_equipment,omitempty"`
	PreviousEquipment     string                `mapstructure:"previous_equipment" json:"previous_equipment,omitempty"`
}

// AASProperty is a property of an Asset Administration Shell submodel.
type AASProperty struct {
	ID       string   `mapstructure:"id" json:"id"`
	Name     string   `mapstructure:"name" json:"name,omitempty"`
	Value    *string  `mapstructure:"value" json:"value,omitempty"`
	Unit     string   `mapstructure:"unit" json:"unit,omitempty"`
	DataType string   `mapstructure:"dataType" json:"dataType,omitempty"`
	Min      *float64 `mapstructure:"min" json:"min,omitempty"`
	Max      *float64 `mapstructure:"max" json:"max,omitempty"`
}

// AASEquipment is an asset described by an Asset Administration Shell.
type AASEquipment struct {
	AASID      string        `mapstructure:"aas_id" json:"aas_id"`
	Properties []AASProperty `mapstructure:"properties" json:"properties,omitempty"`
}

// LegacyParameter is a parameter of the untagged equipment format.
type LegacyParameter struct {
	ID          string   `mapstructure:"id" json:"id"`
	Value       *string  `mapstructure:"value" json:"value,omitempty"`
	Description string   `mapstructure:"description" json:"description,omitempty"`
	SubType     string   `mapstructure:"subType" json:"subType,omitempty"`
	DataType    string   `mapstructure:"dataType" json:"dataType,omitempty"`
	Unit        string   `mapstructure:"unit" json:"unit,omitempty"`
	Min         *float64 `mapstructure:"min" json:"min,omitempty"`
	Max         *float64 `mapstructure:"max" json:"max,omitempty"`
}

// LegacyEquipment is the untagged format that predates MTP and AAS import.
type LegacyEquipment struct {
	Instance    string            `mapstructure:"instance" json:"instance,omitempty"`
	Service     string            `mapstructure:"service" json:"service,omitempty"`
	Requirement *RequirementRef   `mapstructure:"requirement" json:"requirement,omitempty"`
	Parameters  []LegacyParameter `mapstructure:"parameters" json:"parameters,omitempty"`
}

func (*MTPEquipment) SourceType() SourceType { return SourceMTP }
func (*AASEquipment) SourceType() SourceType { return SourceAAS }
func (*LegacyEquipment) SourceType() SourceType { return SourceLegacy }

func (*MTPEquipment) isEquipmentSource() {}
func (*AASEquipment) isEquipmentSource() {}
func (*LegacyEquipment) isEquipmentSource() {}

// MTP returns the MTP variant, or nil.
func (e *EquipmentInfo) MTP() *MTPEquipment {
	if e == nil {
		return nil
	}
	m, _ := e.Source.(*MTPEquipment)
	return m
}

// AAS returns the AAS variant, or nil.
func (e *EquipmentInfo) AAS() *AASEquipment {
	if e == nil {
		return nil
	}
	a, _ := e.Source.(*AASEquipment)
	return a
}

// Legacy returns the legacy variant, or nil.
func (e *EquipmentInfo) Legacy() *LegacyEquipment {
	if e == nil {
		return nil
	}
	l, _ := e.Source.(*LegacyEquipment)
	return l
}

func (e *EquipmentInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	src, err := DecodeEquipment(raw)
	if err != nil {
		return err
	}
	e.Source = src
	return nil
}

func (e EquipmentInfo) MarshalJSON() ([]byte, error) {
	switch s := e.Source.(type) {
	case *MTPEquipment:
		return json.Marshal(map[string]any{"source_type": SourceMTP, "equipment_data": s})
	case *AASEquipment:
		return json.Marshal(map[string]any{"source_type": SourceAAS, "equipment_data": s})
	case *LegacyEquipment:
		return json.Marshal(s)
	default:
		return []byte("null"), nil
	}
}

// DecodeEquipment classifies a loosely typed equipment payload by its
// source_type tag and decodes it into the matching variant. A tagged payload
// without equipment_data falls back to the legacy variant.
func DecodeEquipment(raw map[string]any) (EquipmentSource, error) {
	tag, _ := raw["source_type"].(string)
	data, hasData := raw["equipment_data"].(map[string]any)

	switch {
	case SourceType(tag) == SourceMTP && hasData:
		var m MTPEquipment
		if err := decodeLoose(data, &m); err != nil {
			return nil, fmt.Errorf("schema: decode MTP equipment: %w", err)
		}
		return &m, nil
	case SourceType(tag) == SourceAAS && hasData:
		var a AASEquipment
		if err := decodeLoose(data, &a); err != nil {
			return nil, fmt.Errorf("schema: decode AAS equipment: %w", err)
		}
		return &a, nil
	default:
		var l LegacyEquipment
		if err := decodeLoose(raw, &l); err != nil {
			return nil, fmt.Errorf("schema: decode legacy equipment: %w", err)
		}
		return &l, nil
	}
}

// decodeLoose decodes editor payloads where numbers and strings are used
// interchangeably.
func decodeLoose(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
