package models

import "encoding/json"

// AttributeStats is data/stats/{snapshot}/attributes/{type}.json.
type AttributeStats struct {
	Type       string          `json:"type"`
	Count      Num             `json:"count"`
	Attributes []AttributeStat `json:"attributes"`
}

// AttributeStat is the fill and uniqueness rate of one attribute.
// Pct is the fill rate in [0,100]; UniquePct is the uniqueness rate among
// filled values.
type AttributeStat struct {
	Name        string `json:"name"`
	Count       Num    `json:"count"`
	Pct         Num    `json:"pct"`
	UniqueCount Num    `json:"unique_count"`
	UniquePct   Num    `json:"unique_pct"`
}

// UnmarshalJSON tolerates missing or malformed fields.
func (s *AttributeStats) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = AttributeStats{}
	decodeFields(raw, map[string]any{
		"type":  &s.Type,
		"count": &s.Count,
	})
	var items []json.RawMessage
	decodeFields(raw, map[string]any{"attributes": &items})
	for _, item := range items {
		var a AttributeStat
		if err := json.Unmarshal(item, &a); err != nil || a.Name == "" {
			continue
		}
		s.Attributes = append(s.Attributes, a)
	}
	return nil
}

// UnmarshalJSON tolerates missing or malformed fields.
func (a *AttributeStat) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*a = AttributeStat{}
	decodeFields(raw, map[string]any{
		"name":         &a.Name,
		"count":        &a.Count,
		"pct":          &a.Pct,
		"unique_count": &a.UniqueCount,
		"unique_pct":   &a.UniquePct,
	})
	return nil
}

// RelationStats is data/stats/{snapshot}/relation_attributes/{relation}.json.
type RelationStats struct {
	Relation   string          `json:"relation,omitempty"`
	Snapshot   string          `json:"snapshot,omitempty"`
	SourceType string          `json:"source_type,omitempty"`
	TargetType string          `json:"target_type,omitempty"`
	Stats      RelationSummary `json:"stats"`
}

// RelationSummary holds connectivity figures of one relation.
type RelationSummary struct {
	EdgesTotal      Num         `json:"edges_total"`
	UniquePairs     Num         `json:"unique_pairs"`
	ParallelEdges   Num         `json:"parallel_edges"`
	Cardinality     string      `json:"cardinality,omitempty"`
	SourceTotal     Num         `json:"source_total"`
	SourceConnected Num         `json:"source_connected"`
	TargetTotal     Num         `json:"target_total"`
	TargetConnected Num         `json:"target_connected"`
	DegreeSource    DegreeStats `json:"degree_source"`
	DegreeTarget    DegreeStats `json:"degree_target"`
	TopSource       []TopEntry  `json:"top_source"`
	TopTarget       []TopEntry  `json:"top_target"`
	Islands         IslandPair  `json:"islands"`
}

// UnmarshalJSON tolerates missing or malformed fields.
func (r *RelationSummary) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = RelationSummary{}
	decodeFields(raw, map[string]any{
		"edges_total":      &r.EdgesTotal,
		"unique_pairs":     &r.UniquePairs,
		"parallel_edges":   &r.ParallelEdges,
		"cardinality":      &r.Cardinality,
		"source_total":     &r.SourceTotal,
		"source_connected": &r.SourceConnected,
		"target_total":     &r.TargetTotal,
		"target_connected": &r.TargetConnected,
		"degree_source":    &r.DegreeSource,
		"degree_target":    &r.DegreeTarget,
		"islands":          &r.Islands,
	})
	r.TopSource = decodeTop(raw["top_source"])
	r.TopTarget = decodeTop(raw["top_target"])
	return nil
}

// Parallels returns parallel_edges, derived from edges_total - unique_pairs
// when the field itself is absent.
func (r RelationSummary) Parallels() Num {
	if r.ParallelEdges.Valid {
		return r.ParallelEdges
	}
	if r.EdgesTotal.Valid && r.UniquePairs.Valid {
		return N(r.EdgesTotal.V - r.UniquePairs.V)
	}
	return Num{}
}

// DegreeStats is the degree distribution of one side of a relation.
type DegreeStats struct {
	Min    Num `json:"min"`
	Avg    Num `json:"avg"`
	Median Num `json:"median"`
	P90    Num `json:"p90"`
	P99    Num `json:"p99"`
	Max    Num `json:"max"`
}

// Empty reports whether no bucket is set.
func (d DegreeStats) Empty() bool {
	return !d.Min.Valid && !d.Avg.Valid && !d.Median.Valid && !d.P90.Valid && !d.P99.Valid && !d.Max.Valid
}

// TopEntry is one of the highest-degree entities of a side.
type TopEntry struct {
	UUID   string `json:"uuid,omitempty"`
	Name   string `json:"name,omitempty"`
	Degree Num    `json:"degree"`
}

// Label returns the entity name, falling back to its uuid.
func (t TopEntry) Label() string {
	if t.Name != "" {
		return t.Name
	}
	if t.UUID != "" {
		return t.UUID
	}
	return "?"
}

func decodeTop(raw json.RawMessage) []TopEntry {
	if raw == nil {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []TopEntry
	for _, item := range items {
		var t TopEntry
		if err := json.Unmarshal(item, &t); err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}

// IslandPair holds the island structure projected onto each side.
type IslandPair struct {
	Source IslandStats `json:"source"`
	Target IslandStats `json:"target"`
}

// IslandStats describes connected components among connected nodes of one
// side. MultiIslands lists components with more than one node, largest
// first; Singletons counts components of a single node.
type IslandStats struct {
	Count        Num      `json:"count"`
	Singletons   Num      `json:"singletons"`
	MultiIslands []Island `json:"multi_islands"`
}

// Island is one connected component; Fraction is its share of the side's
// connected nodes.
type Island struct {
	Size     Num `json:"size"`
	Fraction Num `json:"fraction"`
}

// Fractions returns the raw fractions of the multi-node islands.
func (s IslandStats) Fractions() []float64 {
	out := make([]float64, 0, len(s.MultiIslands))
	for _, is := range s.MultiIslands {
		if is.Fraction.Valid {
			out = append(out, is.Fraction.V)
		}
	}
	return out
}
