// Package viewer holds the dashboard's view state: category filters,
// selection rules and the session of loaded index documents.
package viewer

import (
	"sort"

	"github.com/starford/metaviz/internal/models"
)

// NodeFilter holds the node view category checkboxes.
type NodeFilter struct {
	Application bool
	System      bool
	Codelist    bool
	Curated     bool
}

// CategoriesDisabled reports whether the category checkboxes are inert.
func (f NodeFilter) CategoriesDisabled() bool { return f.Curated }

func (f NodeFilter) anyCategory() bool {
	return f.Application || f.System || f.Codelist
}

// match applies the category rule to one node type. Codelist is checked
// first: codelist types are application types, and they are shown through
// the codelist category only.
func (f NodeFilter) match(m models.NodeTypeMetadata) bool {
	if f.Codelist && m.IsCodelist {
		return true
	}
	if f.Application && m.IsApplication && !m.IsCodelist {
		return true
	}
	return f.System && m.IsSystem
}

// VisibleNodeTypes derives the visible node types of a snapshot, keeping
// the snapshot's order.
func VisibleNodeTypes(snap models.Snapshot, meta map[string]models.NodeTypeMetadata, curated []string, f NodeFilter) []string {
	switch {
	case f.Curated:
		return intersect(snap.NodeTypes, curated)
	case !f.anyCategory():
		return append([]string{}, snap.NodeTypes...)
	}
	out := []string{}
	for _, name := range snap.NodeTypes {
		m, ok := meta[name]
		if ok && f.match(m) {
			out = append(out, name)
		}
	}
	return out
}

// RelationFilter holds the relation view category checkboxes.
type RelationFilter struct {
	Application bool
	System      bool
	Curated     bool
}

// CategoriesDisabled reports whether the category checkboxes are inert.
func (f RelationFilter) CategoriesDisabled() bool { return f.Curated }

// VisibleRelations derives the visible relations of a snapshot, sorted by
// name.
func VisibleRelations(snap models.Snapshot, meta map[string]models.RelationMetadata, curated []string, f RelationFilter) []string {
	var out []string
	switch {
	case f.Curated:
		out = intersect(snap.Relations, curated)
	case !f.Application && !f.System:
		out = append([]string{}, snap.Relations...)
	default:
		out = []string{}
		for _, name := range snap.Relations {
			m, ok := meta[name]
			if !ok {
				continue
			}
			if (f.Application && m.IsApplication()) || (f.System && m.IsSystem()) {
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

func intersect(list, allow []string) []string {
	set := make(map[string]struct{}, len(allow))
	for _, a := range allow {
		set[a] = struct{}{}
	}
	out := []string{}
	for _, v := range list {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
