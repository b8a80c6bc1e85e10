// Package models defines the registry metadata and precomputed statistics
// documents served by metaviz.
package models

import (
	"encoding/json"
	"strings"
)

// Node type kinds as reported by the registry.
const (
	KindApplication = "application"
	KindSystem      = "system"
)

// NodeIndex is data/metadata/node_index.json.
type NodeIndex struct {
	Types map[string]NodeTypeMetadata `json:"types"`
}

// NodeTypeMetadata describes one registry CI type.
type NodeTypeMetadata struct {
	TechnicalName string                       `json:"technicalName"`
	Name          string                       `json:"name"`
	Description   string                       `json:"description,omitempty"`
	TypeKind      string                       `json:"typeKind,omitempty"`
	Labels        []string                     `json:"labels,omitempty"`
	IsApplication bool                         `json:"isApplication"`
	IsSystem      bool                         `json:"isSystem"`
	IsCodelist    bool                         `json:"isCodelist"`
	Attributes    map[string]AttributeMetadata `json:"attributes"`
}

// AttributeMetadata describes one attribute of a CI or relationship type.
type AttributeMetadata struct {
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	Mandatory         string `json:"mandatory,omitempty"`
	Opendata          *bool  `json:"opendata,omitempty"`
	AttributeTypeEnum string `json:"attributeTypeEnum,omitempty"`
	ReadOnly          *bool  `json:"readOnly,omitempty"`
	Invisible         *bool  `json:"invisible,omitempty"`
}

// Critical reports whether the attribute is flagged mandatory-critical.
func (a AttributeMetadata) Critical() bool {
	return strings.EqualFold(a.Mandatory, "critical")
}

// SpriteCategory returns the fallback sprite category of a node type.
func (m NodeTypeMetadata) SpriteCategory() string {
	switch {
	case m.IsCodelist:
		return "codelist"
	case m.IsApplication:
		return "application"
	case m.IsSystem:
		return "system"
	default:
		return "generic"
	}
}

// RelationIndex is data/metadata/relation_index.json.
type RelationIndex struct {
	Relations map[string]RelationMetadata `json:"relations"`
}

// RelationMetadata describes one registry relationship type.
type RelationMetadata struct {
	TechnicalName     string                       `json:"technicalName"`
	Name              string                       `json:"name"`
	Description       string                       `json:"description,omitempty"`
	EngDescription    string                       `json:"engDescription,omitempty"`
	Type              string                       `json:"type"`
	Category          string                       `json:"category,omitempty"`
	Source            EndpointMetadata             `json:"source"`
	Target            EndpointMetadata             `json:"target"`
	SourceCardinality json.RawMessage              `json:"sourceCardinality,omitempty"`
	TargetCardinality json.RawMessage              `json:"targetCardinality,omitempty"`
	Attributes        map[string]AttributeMetadata `json:"attributes,omitempty"`
}

// EndpointMetadata is the source or target side of a relationship type.
type EndpointMetadata struct {
	TechnicalName string   `json:"technicalName"`
	Name          string   `json:"name"`
	Type          string   `json:"type,omitempty"`
	Labels        []string `json:"labels,omitempty"`
}

// IsApplication reports whether the relation is an application relation.
func (r RelationMetadata) IsApplication() bool { return r.Type == KindApplication }

// IsSystem reports whether the relation is a system relation.
func (r RelationMetadata) IsSystem() bool { return r.Type == KindSystem }

// Label returns "Name (TECH)", or TECH alone when no localized name exists.
func (e EndpointMetadata) Label() string {
	switch {
	case e.TechnicalName == "" && e.Name == "":
		return "?"
	case e.Name == "" || e.Name == e.TechnicalName:
		if e.TechnicalName == "" {
			return e.Name
		}
		return e.TechnicalName
	case e.TechnicalName == "":
		return e.Name
	default:
		return e.Name + " (" + e.TechnicalName + ")"
	}
}
