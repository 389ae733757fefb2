package b2mml

// Prune returns a copy of n without empty strings, nils, empty nodes and
// empty lists at any depth. Containers emptied by pruning are removed too,
// so the result is nil when nothing survives. n is not modified.
func Prune(n *Node) *Node {
	if n == nil {
		return nil
	}
	out := &Node{}
	if len(n.Attrs) > 0 {
		out.Attrs = append([]Attr(nil), n.Attrs...)
	}
	for _, f := range n.Fields {
		if v, keep := pruneValue(f.Value); keep {
			out.Fields = append(out.Fields, Field{Name: f.Name, Value: v})
		}
	}
	if len(out.Fields) == 0 && len(out.Attrs) == 0 {
		return nil
	}
	return out
}

// PruneDocument prunes the root of doc. The root element itself is kept
// even when empty.
func PruneDocument(doc *Document) *Document {
	root := Prune(doc.Root)
	if root == nil {
		root = &Node{}
	}
	return &Document{Name: doc.Name, Root: root}
}

func pruneValue(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		return val, val != ""
	case *Node:
		p := Prune(val)
		return p, p != nil
	case []any:
		var kept []any
		for _, elem := range val {
			if pv, ok := pruneValue(elem); ok {
				kept = append(kept, pv)
			}
		}
		return kept, len(kept) > 0
	default:
		return val, true
	}
}
