package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/starford/metaviz/internal/loader"
	"github.com/starford/metaviz/internal/models"
	"github.com/starford/metaviz/internal/storage"
)

// Metadata directories of the data root.
const (
	NodeMetadataDir     = "metadata/nodes"
	RelationMetadataDir = "metadata/relations"
)

// codelistLabel marks application node types that are code lists.
const codelistLabel = "codelist"

// MetadataSummary counts what FetchMetadata wrote.
type MetadataSummary struct {
	NodeTypes int
	Relations int
	Skipped   int
}

// FetchMetadata downloads every node type and relationship type, writes
// the raw detail documents and the compact node and relation indexes.
func FetchMetadata(ctx context.Context, c *Client, out *storage.FS, logger *slog.Logger) (*MetadataSummary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sum := &MetadataSummary{}

	nodes, skipped, err := fetchNodeTypes(ctx, c, out, logger)
	if err != nil {
		return nil, err
	}
	sum.NodeTypes, sum.Skipped = len(nodes.Types), skipped
	if err := writeJSON(out, loader.NodeIndexPath, nodes); err != nil {
		return nil, err
	}
	logger.Info("collector: node index written", slog.Int("types", sum.NodeTypes))

	rels, skipped, err := fetchRelationTypes(ctx, c, out, logger)
	if err != nil {
		return nil, err
	}
	sum.Relations = len(rels.Relations)
	sum.Skipped += skipped
	if err := writeJSON(out, loader.RelationIndexPath, rels); err != nil {
		return nil, err
	}
	logger.Info("collector: relation index written", slog.Int("relations", sum.Relations))

	return sum, nil
}

type fields map[string]json.RawMessage

func (f fields) str(key string) string {
	var s string
	if err := json.Unmarshal(f[key], &s); err != nil {
		return ""
	}
	return s
}

func (f fields) strs(key string) []string {
	var out []string
	if err := json.Unmarshal(f[key], &out); err != nil {
		return nil
	}
	return out
}

func (f fields) boolPtr(key string) *bool {
	var b bool
	if err := json.Unmarshal(f[key], &b); err != nil {
		return nil
	}
	return &b
}

func (f fields) list(key string) []fields {
	var items []json.RawMessage
	if err := json.Unmarshal(f[key], &items); err != nil {
		return nil
	}
	var out []fields
	for _, item := range items {
		var m fields
		if err := json.Unmarshal(item, &m); err == nil && m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (f fields) raw(key string) json.RawMessage {
	v := f[key]
	if len(v) == 0 || string(v) == "null" {
		return nil
	}
	return v
}

// first returns the first non-empty string value of key among docs.
func first(key string, docs ...fields) string {
	for _, d := range docs {
		if s := d.str(key); s != "" {
			return s
		}
	}
	return ""
}

// listItem is one entry of a registry list response.
type listItem struct {
	technical string
	base      fields
}

// extractList normalizes a registry list response: a bare list, an object
// holding a list under a well-known key (or any key), or an object whose
// keys are the technical names.
func extractList(data []byte) ([]listItem, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var obj fields
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("collector: cannot extract list: %w", err)
		}
		items = listIn(obj)
		if items == nil {
			keys := make([]string, 0, len(obj))
			for k := range obj {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				b, _ := json.Marshal(k)
				items = append(items, b)
			}
		}
	}

	var out []listItem
	for _, raw := range items {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if validName(s) {
				out = append(out, listItem{technical: s, base: fields{}})
			}
			continue
		}
		var m fields
		if err := json.Unmarshal(raw, &m); err != nil || m == nil {
			continue
		}
		tech := first("technicalName", m)
		if tech == "" {
			tech = m.str("name")
		}
		if !validName(tech) {
			continue
		}
		out = append(out, listItem{technical: tech, base: m})
	}
	return out, nil
}

func listIn(obj fields) []json.RawMessage {
	var items []json.RawMessage
	for _, k := range []string{"result", "items", "types", "data"} {
		if err := json.Unmarshal(obj[k], &items); err == nil && items != nil {
			return items
		}
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := json.Unmarshal(obj[k], &items); err == nil && items != nil {
			return items
		}
	}
	return nil
}

// fetchDetail downloads one detail document. A permanent failure is
// reported as skip.
func fetchDetail(ctx context.Context, c *Client, path string, logger *slog.Logger) (fields, []byte, bool) {
	data, err := c.Get(ctx, path)
	if err != nil {
		logger.Warn("collector: detail skipped", slog.String("path", path), slog.String("error", err.Error()))
		return nil, nil, false
	}
	var doc fields
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		logger.Warn("collector: detail is not an object", slog.String("path", path))
		return nil, nil, false
	}
	return doc, data, true
}

func fetchNodeTypes(ctx context.Context, c *Client, out *storage.FS, logger *slog.Logger) (*models.NodeIndex, int, error) {
	data, err := c.Get(ctx, NodeTypesListPath)
	if err != nil {
		return nil, 0, fmt.Errorf("collector: node types list: %w", err)
	}
	items, err := extractList(data)
	if err != nil {
		return nil, 0, err
	}

	index := &models.NodeIndex{Types: make(map[string]models.NodeTypeMetadata, len(items))}
	skipped := 0
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}
		logger.Debug("collector: node type", slog.String("type", it.technical))
		doc, raw, ok := fetchDetail(ctx, c, NodeTypePath+url.PathEscape(it.technical), logger)
		if !ok {
			skipped++
			continue
		}
		if err := writeRaw(out, NodeMetadataDir+"/"+it.technical+".json", raw); err != nil {
			return nil, skipped, err
		}
		index.Types[it.technical] = nodeEntry(it, doc)
	}
	return index, skipped, nil
}

func nodeEntry(it listItem, doc fields) models.NodeTypeMetadata {
	kind := first("type", doc, it.base)
	labels := it.base.strs("labels")
	if labels == nil {
		labels = doc.strs("labels")
	}
	if labels == nil {
		labels = []string{}
	}
	isApp := kind == models.KindApplication
	return models.NodeTypeMetadata{
		TechnicalName: it.technical,
		Name:          first("name", doc, it.base),
		Description:   first("description", doc, it.base),
		TypeKind:      kind,
		Labels:        labels,
		IsApplication: isApp,
		IsSystem:      kind == models.KindSystem,
		IsCodelist:    isApp && contains(labels, codelistLabel),
		Attributes:    attributes(doc),
	}
}

func fetchRelationTypes(ctx context.Context, c *Client, out *storage.FS, logger *slog.Logger) (*models.RelationIndex, int, error) {
	data, err := c.Get(ctx, RelationTypesListPath)
	if err != nil {
		return nil, 0, fmt.Errorf("collector: relation types list: %w", err)
	}
	items, err := extractList(data)
	if err != nil {
		return nil, 0, err
	}

	index := &models.RelationIndex{Relations: make(map[string]models.RelationMetadata, len(items))}
	skipped := 0
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}
		logger.Debug("collector: relation type", slog.String("relation", it.technical))
		doc, raw, ok := fetchDetail(ctx, c, RelationTypePath+url.PathEscape(it.technical), logger)
		if !ok {
			skipped++
			continue
		}
		if err := writeRaw(out, RelationMetadataDir+"/"+it.technical+".json", raw); err != nil {
			return nil, skipped, err
		}
		index.Relations[it.technical] = relationEntry(it, doc)
	}
	return index, skipped, nil
}

func relationEntry(it listItem, doc fields) models.RelationMetadata {
	return models.RelationMetadata{
		TechnicalName:     it.technical,
		Name:              first("name", doc, it.base),
		Description:       first("description", doc, it.base),
		EngDescription:    doc.str("engDescription"),
		Type:              first("type", doc, it.base),
		Category:          doc.str("category"),
		Source:            endpoint(doc.list("sources")),
		Target:            endpoint(doc.list("targets")),
		SourceCardinality: doc.raw("sourceCardinality"),
		TargetCardinality: doc.raw("targetCardinality"),
		Attributes:        attributes(doc),
	}
}

func endpoint(list []fields) models.EndpointMetadata {
	if len(list) == 0 {
		return models.EndpointMetadata{Labels: []string{}}
	}
	e := list[0]
	labels := e.strs("labels")
	if labels == nil {
		labels = []string{}
	}
	return models.EndpointMetadata{
		TechnicalName: e.str("technicalName"),
		Name:          e.str("name"),
		Type:          e.str("type"),
		Labels:        labels,
	}
}

func attributes(doc fields) map[string]models.AttributeMetadata {
	out := make(map[string]models.AttributeMetadata)
	for _, a := range doc.list("attributes") {
		tech := a.str("technicalName")
		if tech == "" {
			continue
		}
		var mandatory fields
		_ = json.Unmarshal(a["mandatory"], &mandatory)
		out[tech] = models.AttributeMetadata{
			Name:              a.str("name"),
			Description:       a.str("description"),
			Mandatory:         mandatory.str("type"),
			Opendata:          a.boolPtr("opendata"),
			AttributeTypeEnum: a.str("attributeTypeEnum"),
			ReadOnly:          a.boolPtr("readOnly"),
			Invisible:         a.boolPtr("invisible"),
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func writeJSON(out *storage.FS, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("collector: encode %s: %w", path, err)
	}
	return out.Write(path, append(data, '\n'))
}

// writeRaw stores a registry document re-indented for readability.
func writeRaw(out *storage.FS, path string, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return out.Write(path, data)
	}
	buf.WriteByte('\n')
	return out.Write(path, buf.Bytes())
}

// validName rejects technical names that cannot be used as a file name.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
