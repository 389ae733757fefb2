package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Scalar is a JSON scalar (string, number or bool) kept in its textual form.
// Numbers keep the literal spelling of the source document, so 300 stays "300".
type Scalar struct {
	text string
	set  bool
}

// ScalarOf returns a present Scalar holding s.
func ScalarOf(s string) Scalar {
	return Scalar{text: s, set: true}
}

// String returns the textual value, "" when absent.
func (s Scalar) String() string {
	return s.text
}

// Present reports whether the scalar appeared in the source document (even if empty).
func (s Scalar) Present() bool {
	return s.set
}

// IsEmpty reports whether the scalar is absent or the empty string.
func (s Scalar) IsEmpty() bool {
	return !s.set || s.text == ""
}

// Float parses the scalar as a number.
func (s Scalar) Float() (float64, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	f, err := strconv.ParseFloat(s.text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Scalar{}
		return nil
	}
	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = ScalarOf(str)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*s = ScalarOf(strconv.FormatBool(b))
	case '{', '[':
		return fmt.Errorf("schema: expected scalar, got %s", string(data[:1]))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = ScalarOf(n.String())
	}
	return nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	return json.Marshal(s.text)
}

// StringList accepts either a single string or a list of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = StringList{single}
	return nil
}

// First returns the first entry or "".
func (l StringList) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}
