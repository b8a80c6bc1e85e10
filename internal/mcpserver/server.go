// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the registry statistics over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/metaviz/internal/models"
	"github.com/starford/metaviz/internal/render"
	"github.com/starford/metaviz/internal/viewer"
)

// ContractURI is the resource URI of the data-root contract.
const ContractURI = "metaviz://data-root"

// Server wraps the MCP server with metaviz tools.
type Server struct {
	mcp *server.MCPServer
	svc *viewer.Service
}

// New creates an MCP server over the current session of svc.
func New(svc *viewer.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"metaviz",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_snapshots",
		mcp.WithDescription("List the statistics snapshots, oldest first, with their node type and relation counts."),
	), s.listSnapshots)

	s.mcp.AddTool(mcp.NewTool("list_node_types",
		mcp.WithDescription("List the node types visible in a snapshot under the given category filters. "+
			"With no category set all types are listed; curated restricts to the curated allow-list."),
		mcp.WithString("snapshot", mcp.Description("Snapshot date (YYYY-MM-DD); latest when empty")),
		mcp.WithBoolean("application", mcp.Description("Include application types")),
		mcp.WithBoolean("system", mcp.Description("Include system types")),
		mcp.WithBoolean("codelist", mcp.Description("Include codelists")),
		mcp.WithBoolean("curated", mcp.Description("Only curated types")),
	), s.listNodeTypes)

	s.mcp.AddTool(mcp.NewTool("list_relations",
		mcp.WithDescription("List the relations visible in a snapshot under the given category filters, sorted by name."),
		mcp.WithString("snapshot", mcp.Description("Snapshot date (YYYY-MM-DD); latest when empty")),
		mcp.WithBoolean("application", mcp.Description("Include application relations")),
		mcp.WithBoolean("system", mcp.Description("Include system relations")),
		mcp.WithBoolean("curated", mcp.Description("Only curated relations")),
	), s.listRelations)

	s.mcp.AddTool(mcp.NewTool("get_attribute_stats",
		mcp.WithDescription("Attribute fill and uniqueness rates of a node type in a snapshot."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Node type technical name, e.g. KS")),
		mcp.WithString("snapshot", mcp.Description("Snapshot date (YYYY-MM-DD); latest when empty")),
		mcp.WithString("filter", mcp.Description("Case-insensitive substring of attribute names")),
		mcp.WithNumber("limit", mcp.Description("Maximum rows without a filter; defaults to the viewer limit")),
	), s.getAttributeStats)

	s.mcp.AddTool(mcp.NewTool("get_relation_stats",
		mcp.WithDescription("Connectivity statistics of a relation in a snapshot: edges, coverage, degrees, top entities and islands."),
		mcp.WithString("relation", mcp.Required(), mcp.Description("Relation technical name, e.g. PO_je_gestor_KS")),
		mcp.WithString("snapshot", mcp.Description("Snapshot date (YYYY-MM-DD); latest when empty")),
	), s.getRelationStats)

	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Data Root Contract",
			mcp.WithResourceDescription("Layout and semantics of the statistics documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type snapshotInfo struct {
	Date      string `json:"date"`
	NodeTypes int    `json:"node_types"`
	Relations int    `json:"relations"`
}

type entityList struct {
	Snapshot string       `json:"snapshot"`
	Items    []entityInfo `json:"items"`
}

type entityInfo struct {
	TechnicalName string `json:"technicalName"`
	Name          string `json:"name,omitempty"`
}

type attributeRow struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Critical    bool   `json:"critical,omitempty"`
	Count       string `json:"count"`
	UniqueCount string `json:"unique_count"`
	Filled      string `json:"filled"`
	Unique      string `json:"unique"`
}

type attributeReport struct {
	Snapshot string         `json:"snapshot"`
	Type     string         `json:"type"`
	Count    models.Num     `json:"count"`
	Total    int            `json:"total_attributes"`
	Rows     []attributeRow `json:"rows"`
}

type relationReport struct {
	Snapshot    string               `json:"snapshot"`
	Relation    string               `json:"relation"`
	Cardinality string               `json:"cardinality_label"`
	Stats       models.RelationStats `json:"stats"`
}

func (s *Server) session() (*viewer.Session, *mcp.CallToolResult) {
	sess, err := s.svc.Current()
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return sess, nil
}

// snapshot validates an optional snapshot argument.
func snapshot(sess *viewer.Session, req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	date := req.GetString("snapshot", "")
	if date == "" {
		return "", nil
	}
	if _, ok := sess.Stats.Find(date); !ok {
		return "", mcp.NewToolResultError(fmt.Sprintf("unknown snapshot: %s", date))
	}
	return date, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listSnapshots(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errRes := s.session()
	if errRes != nil {
		return errRes, nil
	}
	out := make([]snapshotInfo, 0, len(sess.Stats.Snapshots))
	for _, snap := range sess.Stats.Snapshots {
		out = append(out, snapshotInfo{Date: snap.Date, NodeTypes: len(snap.NodeTypes), Relations: len(snap.Relations)})
	}
	return jsonResult(out)
}

func (s *Server) listNodeTypes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errRes := s.session()
	if errRes != nil {
		return errRes, nil
	}
	date, errRes := snapshot(sess, req)
	if errRes != nil {
		return errRes, nil
	}
	st := sess.ResolveNodes(viewer.NodeQuery{
		Snapshot: date,
		Filter: viewer.NodeFilter{
			Application: req.GetBool("application", false),
			System:      req.GetBool("system", false),
			Codelist:    req.GetBool("codelist", false),
			Curated:     req.GetBool("curated", false),
		},
	})
	out := entityList{Snapshot: st.Snapshot, Items: []entityInfo{}}
	for _, name := range st.Visible {
		out.Items = append(out.Items, entityInfo{TechnicalName: name, Name: sess.Nodes[name].Name})
	}
	return jsonResult(out)
}

func (s *Server) listRelations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errRes := s.session()
	if errRes != nil {
		return errRes, nil
	}
	date, errRes := snapshot(sess, req)
	if errRes != nil {
		return errRes, nil
	}
	st := sess.ResolveRelations(viewer.RelationQuery{
		Snapshot: date,
		Filter: viewer.RelationFilter{
			Application: req.GetBool("application", false),
			System:      req.GetBool("system", false),
			Curated:     req.GetBool("curated", false),
		},
	})
	out := entityList{Snapshot: st.Snapshot, Items: []entityInfo{}}
	for _, name := range st.Visible {
		out.Items = append(out.Items, entityInfo{TechnicalName: name, Name: sess.Relations[name].Name})
	}
	return jsonResult(out)
}

func (s *Server) getAttributeStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeType, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, errRes := s.session()
	if errRes != nil {
		return errRes, nil
	}
	date, errRes := snapshot(sess, req)
	if errRes != nil {
		return errRes, nil
	}
	st := sess.ResolveNodes(viewer.NodeQuery{Snapshot: date, Entity: nodeType})

	stats := sess.AttributeStats(ctx, st.Snapshot, nodeType)
	if stats == nil {
		return mcp.NewToolResultError(render.NoNodeStats), nil
	}
	limit := req.GetInt("limit", sess.DefaultLimit)
	var meta *models.NodeTypeMetadata
	if m, ok := sess.Nodes[nodeType]; ok {
		meta = &m
	}

	out := attributeReport{
		Snapshot: st.Snapshot,
		Type:     nodeType,
		Count:    stats.Count,
		Total:    len(stats.Attributes),
		Rows:     []attributeRow{},
	}
	for _, r := range render.AttributeRows(stats, meta, req.GetString("filter", ""), limit) {
		out.Rows = append(out.Rows, attributeRow{
			Name:        r.Name,
			Label:       r.Label,
			Critical:    r.Critical,
			Count:       r.Count,
			UniqueCount: r.UniqueCount,
			Filled:      r.Percent,
			Unique:      r.UniquePercent,
		})
	}
	return jsonResult(out)
}

func (s *Server) getRelationStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	relation, err := req.RequireString("relation")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, errRes := s.session()
	if errRes != nil {
		return errRes, nil
	}
	date, errRes := snapshot(sess, req)
	if errRes != nil {
		return errRes, nil
	}
	st := sess.ResolveRelations(viewer.RelationQuery{Snapshot: date, Relation: relation})

	stats := sess.RelationStatsFor(ctx, st.Snapshot, relation)
	if stats == nil {
		return mcp.NewToolResultError(render.NoRelationStats), nil
	}
	return jsonResult(relationReport{
		Snapshot:    st.Snapshot,
		Relation:    relation,
		Cardinality: render.CardinalityLabel(stats.Stats.Cardinality),
		Stats:       *stats,
	})
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     DataRootContract,
		},
	}, nil
}
