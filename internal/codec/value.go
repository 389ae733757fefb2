// Package codec converts typed scalars into B2MML value structures.
package codec

import (
	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/pkg/schema"
)

// DataInterpretationConstant marks a parameter value as a fixed setpoint.
const DataInterpretationConstant = "Constant"

// Value is a scalar with its type metadata.
type Value struct {
	Text               string
	DataType           string
	UnitOfMeasure      string
	Key                string
	DataInterpretation string
}

// FromSpec converts an editor value specification.
func FromSpec(spec *schema.ValueSpec) Value {
	if spec == nil {
		return Value{}
	}
	return Value{
		Text:          spec.ValueString.String(),
		DataType:      spec.DataType,
		UnitOfMeasure: spec.UnitOfMeasure,
		Key:           spec.Key,
	}
}

// FromUser converts a user-entered parameter value.
func FromUser(v schema.UserValue) Value {
	return Value{
		Text:          v.String(),
		DataType:      v.DataType,
		UnitOfMeasure: v.UnitOfMeasure,
		Key:           v.Key,
	}
}

// ValueType renders a B2MML ValueType.
func ValueType(v Value) *b2mml.Node {
	n := b2mml.NewNode().Set("ValueString", v.Text)
	if v.DataInterpretation != "" {
		n.Set("DataInterpretation", v.DataInterpretation)
	}
	return n.
		Set("DataType", v.DataType).
		Set("UnitOfMeasure", v.UnitOfMeasure).
		Set("Key", v.Key)
}

// Amount renders a B2MML QuantityValueType, which names its text
// QuantityString instead of ValueString.
func Amount(v Value) *b2mml.Node {
	return b2mml.NewNode().
		Set("QuantityString", v.Text).
		Set("DataType", v.DataType).
		Set("UnitOfMeasure", v.UnitOfMeasure).
		Set("Key", v.Key)
}
