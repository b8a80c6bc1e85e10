package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/metaviz/internal/testutil"
	"github.com/starford/metaviz/internal/viewer"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	_, fsys := testutil.TestDataRoot(t)
	svc := viewer.NewService(viewer.Options{
		Provider:      fsys,
		WithRelations: true,
		Logger:        slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	})
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return New(svc, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_snapshots":
		result, err = srv.listSnapshots(ctx, req)
	case "list_node_types":
		result, err = srv.listNodeTypes(ctx, req)
	case "list_relations":
		result, err = srv.listRelations(ctx, req)
	case "get_attribute_stats":
		result, err = srv.getAttributeStats(ctx, req)
	case "get_relation_stats":
		result, err = srv.getRelationStats(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decode[T any](t *testing.T, r *mcp.CallToolResult) T {
	t.Helper()
	if r.IsError {
		t.Fatalf("tool error: %s", resultText(r))
	}
	var v T
	if err := json.Unmarshal([]byte(resultText(r)), &v); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	return v
}

func TestListSnapshots(t *testing.T) {
	srv := testServer(t)
	got := decode[[]snapshotInfo](t, callTool(t, srv, "list_snapshots", nil))
	if len(got) != 2 || got[0].Date != testutil.OldSnapshot || got[1].Date != testutil.NewSnapshot {
		t.Fatalf("snapshots = %+v", got)
	}
	if got[0].NodeTypes != 4 || got[1].Relations != 2 {
		t.Errorf("counts = %+v", got)
	}
}

func TestListNodeTypes(t *testing.T) {
	srv := testServer(t)

	got := decode[entityList](t, callTool(t, srv, "list_node_types", map[string]any{}))
	if got.Snapshot != testutil.NewSnapshot || len(got.Items) != 3 {
		t.Fatalf("default = %+v", got)
	}

	got = decode[entityList](t, callTool(t, srv, "list_node_types", map[string]any{
		"snapshot": testutil.OldSnapshot,
		"codelist": true,
	}))
	if len(got.Items) != 1 || got.Items[0].TechnicalName != "CL_Typ" || got.Items[0].Name != "Číselník" {
		t.Errorf("codelist = %+v", got)
	}

	r := callTool(t, srv, "list_node_types", map[string]any{"snapshot": "1999-01-01"})
	if !r.IsError || !strings.Contains(resultText(r), "unknown snapshot") {
		t.Errorf("unknown snapshot result = %q", resultText(r))
	}
}

func TestListRelations(t *testing.T) {
	srv := testServer(t)
	got := decode[entityList](t, callTool(t, srv, "list_relations", map[string]any{
		"snapshot": testutil.OldSnapshot,
		"system":   true,
	}))
	if len(got.Items) != 1 || got.Items[0].TechnicalName != "ISVS_realizuje_AS" {
		t.Errorf("system relations = %+v", got)
	}
}

func TestGetAttributeStats(t *testing.T) {
	srv := testServer(t)
	got := decode[attributeReport](t, callTool(t, srv, "get_attribute_stats", map[string]any{
		"type":  "KS",
		"limit": float64(2),
	}))
	if got.Snapshot != testutil.NewSnapshot || got.Total != 3 || len(got.Rows) != 2 {
		t.Fatalf("report = %+v", got)
	}
	if got.Rows[0].Name != "Gen_Profil_nazov" || !got.Rows[0].Critical || got.Rows[0].Filled != "100.000%" {
		t.Errorf("first row = %+v", got.Rows[0])
	}

	r := callTool(t, srv, "get_attribute_stats", map[string]any{"type": "PO"})
	if !r.IsError || !strings.Contains(resultText(r), "No stats available") {
		t.Errorf("missing stats result = %q", resultText(r))
	}

	r = callTool(t, srv, "get_attribute_stats", map[string]any{})
	if !r.IsError {
		t.Error("expected error without type")
	}
}

func TestGetRelationStats(t *testing.T) {
	srv := testServer(t)
	got := decode[relationReport](t, callTool(t, srv, "get_relation_stats", map[string]any{
		"relation": "PO_je_gestor_KS",
	}))
	if got.Cardinality != "1:N" || got.Stats.Stats.EdgesTotal.V != 12 {
		t.Errorf("report = %+v", got)
	}

	r := callTool(t, srv, "get_relation_stats", map[string]any{
		"relation": "PO_je_gestor_KS",
		"snapshot": testutil.OldSnapshot,
	})
	if !r.IsError || resultText(r) != "No stats available for this relation in this snapshot." {
		t.Errorf("missing stats result = %q", resultText(r))
	}
}
