package b2mml

// Infoset projects a node onto plain JSON values for schema validation and
// queries. Children are grouped by name: a name that occurs once maps to a
// single value, a repeated name to a list. The projection depends only on
// the XML the node serializes to, so a tree built in memory and the same
// tree parsed back from text yield the same infoset.
func Infoset(n *Node) map[string]any {
	out := make(map[string]any)
	if n == nil {
		return out
	}
	if len(n.Attrs) > 0 {
		attrs := make(map[string]any, len(n.Attrs))
		for _, a := range n.Attrs {
			attrs[a.Name] = a.Value
		}
		out[attrsInfosetKey] = attrs
	}

	groups := make(map[string][]any)
	var order []string
	for _, f := range n.Fields {
		values := flatten(f.Value)
		if len(values) == 0 {
			continue
		}
		if _, seen := groups[f.Name]; !seen {
			order = append(order, f.Name)
		}
		groups[f.Name] = append(groups[f.Name], values...)
	}

	for _, name := range order {
		vals := groups[name]
		if len(vals) == 1 {
			out[name] = vals[0]
			continue
		}
		out[name] = vals
	}
	return out
}

// DocumentInfoset wraps the root infoset under the root element name.
func DocumentInfoset(doc *Document) map[string]any {
	return map[string]any{doc.Name: Infoset(doc.Root)}
}

func flatten(v any) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return []any{val}
	case *Node:
		if val == nil {
			return nil
		}
		return []any{Infoset(val)}
	case []any:
		var out []any
		for _, elem := range val {
			out = append(out, flatten(elem)...)
		}
		return out
	default:
		return []any{val}
	}
}
