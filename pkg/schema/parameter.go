package schema

import (
	"bytes"
	"encoding/json"
)

// ParameterValue is a user-entered parameter binding on a workspace item.
type ParameterValue struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	Value       UserValue `json:"value"`
}

// UserValue is a parameter value in any of the shapes the editor produces:
// a scalar, a single-element array, or an object carrying valueString.
type UserValue struct {
	Text          Scalar
	DataType      string
	UnitOfMeasure string
	Key           string
}

// UserScalar is a UserValue holding a plain scalar.
func UserScalar(s string) UserValue {
	return UserValue{Text: ScalarOf(s)}
}

// Present reports whether a non-empty value was entered.
func (v UserValue) Present() bool {
	return !v.Text.IsEmpty()
}

// String returns the entered value text.
func (v UserValue) String() string {
	return v.Text.String()
}

func (v *UserValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = UserValue{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			return err
		}
		if len(elems) == 0 {
			return nil
		}
		return v.UnmarshalJSON(elems[0])
	case '{':
		var spec ValueSpec
		if err := json.Unmarshal(data, &spec); err != nil {
			return err
		}
		*v = UserValue{
			Text:          spec.ValueString,
			DataType:      spec.DataType,
			UnitOfMeasure: spec.UnitOfMeasure,
			Key:           spec.Key,
		}
		return nil
	default:
		return v.Text.UnmarshalJSON(data)
	}
}

func (v UserValue) MarshalJSON() ([]byte, error) {
	if v.DataType == "" && v.UnitOfMeasure == "" && v.Key == "" {
		return v.Text.MarshalJSON()
	}
	return json.Marshal(ValueSpec{
		ValueString:   v.Text,
		DataType:      v.DataType,
		UnitOfMeasure: v.UnitOfMeasure,
		Key:           v.Key,
	})
}

// FindParameter returns the first binding whose id equals one of keys.
func FindParameter(params []ParameterValue, keys ...string) *ParameterValue {
	for i := range params {
		for _, k := range keys {
			if k != "" && params[i].ID == k {
				return &params[i]
			}
		}
	}
	return nil
}
