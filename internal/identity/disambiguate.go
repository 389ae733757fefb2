// Package identity assigns export identifiers to workspace items.
package identity

import (
	"fmt"

	"github.com/rendis/batchml/pkg/schema"
)

// Assignment is the export identity of one occurrence of a raw id.
type Assignment struct {
	Raw    string
	Prefix string
}

// ExportID returns the prefixed id.
func (a Assignment) ExportID() string {
	return a.Prefix + a.Raw
}

// Qualify prefixes another id with the same sequence prefix, so ids that
// belong to an occurrence (its parameters) stay distinct as well.
func (a Assignment) Qualify(id string) string {
	return a.Prefix + id
}

// Disambiguate returns one assignment per position of ids. Ids that occur
// once keep their raw form; repeated ids get "001:", "002:", ... in input
// order. Empty ids pass through unprefixed. A generated id never collides
// with an id that is already unique in the input: colliding sequence
// numbers are skipped.
func Disambiguate(ids []string) []Assignment {
	counts := make(map[string]int, len(ids))
	for _, id := range ids {
		counts[id]++
	}

	taken := make(map[string]bool, len(ids))
	for id, c := range counts {
		if c == 1 {
			taken[id] = true
		}
	}

	next := make(map[string]int)
	out := make([]Assignment, len(ids))
	for i, id := range ids {
		if id == "" || counts[id] == 1 {
			out[i] = Assignment{Raw: id}
			continue
		}
		for {
			next[id]++
			prefix := fmt.Sprintf("%03d:", next[id])
			if !taken[prefix+id] {
				taken[prefix+id] = true
				out[i] = Assignment{Raw: id, Prefix: prefix}
				break
			}
		}
	}
	return out
}

// ForItems disambiguates items by their raw id. The map is keyed by item
// identity, so two items sharing an id resolve to different export ids.
func ForItems(items []*schema.WorkspaceItem) map[*schema.WorkspaceItem]Assignment {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	assigned := Disambiguate(ids)

	out := make(map[*schema.WorkspaceItem]Assignment, len(items))
	for i, it := range items {
		out[it] = assigned[i]
	}
	return out
}
