// Package b2mml holds the ordered document tree shared by the assembler,
// the validator and the XML codec.
package b2mml

const (
	Namespace       = "http://www.mesa.org/xml/B2MML"
	Prefix          = "b2mml"
	XSINamespace    = "http://www.w3.org/2001/XMLSchema-instance"
	SchemaLocation  = "http://www.mesa.org/xml/B2MML Schema/AllSchemas.xsd"
	RootGRecipe     = "GRecipe"
	RootBatchInfo   = "BatchInformation"
	attrsInfosetKey = "$"
)

// Document is a named root element and its content.
type Document struct {
	Name string
	Root *Node
}

// Attr is an attribute written verbatim on an element.
type Attr struct {
	Name  string
	Value string
}

// Field is one named child of a Node. Value is nil, a string, a *Node or a
// []any of those; a list is written as repeated elements.
type Field struct {
	Name  string
	Value any
}

// Node is an element whose children keep insertion order, which is the
// element order the target schema requires.
type Node struct {
	Attrs  []Attr
	Fields []Field
}

// NewNode returns an empty node.
func NewNode() *Node {
	return &Node{}
}

// Set appends a child field and returns n for chaining.
func (n *Node) Set(name string, value any) *Node {
	n.Fields = append(n.Fields, Field{Name: name, Value: value})
	return n
}

// SetAttr appends an attribute and returns n for chaining.
func (n *Node) SetAttr(name, value string) *Node {
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	return n
}

// Get returns the value of the first field named name.
func (n *Node) Get(name string) (any, bool) {
	if n == nil {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Text returns the first field named name when it is a string.
func (n *Node) Text(name string) string {
	v, _ := n.Get(name)
	s, _ := v.(string)
	return s
}

// Child returns the first field named name when it is a node. A list
// yields its first node element.
func (n *Node) Child(name string) *Node {
	all := n.All(name)
	for _, v := range all {
		if c, ok := v.(*Node); ok {
			return c
		}
	}
	return nil
}

// All returns every value of the fields named name, flattening lists.
func (n *Node) All(name string) []any {
	if n == nil {
		return nil
	}
	var out []any
	for _, f := range n.Fields {
		if f.Name != name {
			continue
		}
		if list, ok := f.Value.([]any); ok {
			out = append(out, list...)
			continue
		}
		out = append(out, f.Value)
	}
	return out
}

// Nodes is All filtered to node values.
func (n *Node) Nodes(name string) []*Node {
	var out []*Node
	for _, v := range n.All(name) {
		if c, ok := v.(*Node); ok {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// List converts nodes into a field value.
func List[T any](items []T) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}
