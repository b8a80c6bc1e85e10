// Package testutil provides shared test helpers for building data roots.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/metaviz/internal/storage"
)

// Snapshot dates of the fixture data root.
const (
	OldSnapshot = "2025-10-01"
	NewSnapshot = "2025-11-10"
)

// WriteJSON marshals v to root/rel, creating parent directories.
func WriteJSON(t *testing.T, root, rel string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	WriteFile(t, root, rel, data)
}

// WriteFile writes raw bytes to root/rel, creating parent directories.
func WriteFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestDataRoot creates a temporary data root populated with two snapshots,
// node and relation metadata, and a few statistics documents.
//
// Node types: KS (application), PO (system), ISVS (application),
// AS (application), CL_Typ (application + codelist).
func TestDataRoot(t *testing.T) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()

	WriteJSON(t, root, "stats/index.json", map[string]any{
		"snapshots": []map[string]any{
			{
				"date":       OldSnapshot,
				"node_types": []string{"KS", "PO", "ISVS", "CL_Typ"},
				"relations":  []string{"PO_je_gestor_KS", "ISVS_realizuje_AS"},
			},
			{
				"date":       NewSnapshot,
				"node_types": []string{"KS", "PO", "AS"},
				"relations":  []string{"PO_je_gestor_KS", "KS_sluzi_AS"},
			},
		},
	})

	WriteJSON(t, root, "metadata/node_index.json", map[string]any{
		"types": map[string]any{
			"KS": map[string]any{
				"technicalName": "KS", "name": "Koncová služba", "isApplication": true,
				"attributes": map[string]any{
					"Gen_Profil_nazov": map[string]any{"name": "Názov", "mandatory": "critical"},
					"Gen_Profil_popis": map[string]any{"name": "Popis"},
				},
			},
			"PO":     map[string]any{"technicalName": "PO", "name": "Povinná osoba", "isSystem": true},
			"ISVS":   map[string]any{"technicalName": "ISVS", "name": "Informačný systém", "isApplication": true},
			"AS":     map[string]any{"technicalName": "AS", "name": "Aplikačná služba", "isApplication": true},
			"CL_Typ": map[string]any{"technicalName": "CL_Typ", "name": "Číselník", "isApplication": true, "isCodelist": true},
		},
	})

	WriteJSON(t, root, "metadata/relation_index.json", map[string]any{
		"relations": map[string]any{
			"PO_je_gestor_KS": map[string]any{
				"technicalName": "PO_je_gestor_KS", "name": "je gestor", "type": "application",
				"description": "Povinná osoba je gestorom koncovej služby.",
				"source":      map[string]any{"technicalName": "PO", "name": "Povinná osoba"},
				"target":      map[string]any{"technicalName": "KS", "name": "Koncová služba"},
			},
			"ISVS_realizuje_AS": map[string]any{
				"technicalName": "ISVS_realizuje_AS", "name": "realizuje", "type": "system",
				"source": map[string]any{"technicalName": "ISVS"},
				"target": map[string]any{"technicalName": "AS"},
			},
			"KS_sluzi_AS": map[string]any{
				"technicalName": "KS_sluzi_AS", "name": "slúži", "type": "application",
				"source": map[string]any{"technicalName": "KS"},
				"target": map[string]any{"technicalName": "AS"},
			},
		},
	})

	WriteJSON(t, root, "stats/"+NewSnapshot+"/attributes/KS.json", map[string]any{
		"type":  "KS",
		"count": 200,
		"attributes": []map[string]any{
			{"name": "Gen_Profil_nazov", "count": 200, "pct": 100, "unique_count": 198, "unique_pct": 99},
			{"name": "Gen_Profil_popis", "count": 40, "pct": 20, "unique_count": 20, "unique_pct": 50},
			{"name": "KS_Profil_UPVS_url", "count": 1, "pct": 0.5, "unique_count": 1, "unique_pct": 100},
		},
	})

	WriteJSON(t, root, "stats/"+NewSnapshot+"/relation_attributes/PO_je_gestor_KS.json", map[string]any{
		"relation":    "PO_je_gestor_KS",
		"snapshot":    NewSnapshot,
		"source_type": "PO",
		"target_type": "KS",
		"stats": map[string]any{
			"edges_total": 12, "unique_pairs": 10, "parallel_edges": 2, "cardinality": "one-to-many",
			"source_total": 8, "source_connected": 4, "target_total": 20, "target_connected": 10,
			"degree_source": map[string]any{"min": 1, "avg": 3, "median": 2, "p90": 6, "p99": 6, "max": 6},
			"degree_target": map[string]any{"min": 1, "avg": 1.2, "median": 1, "p90": 2, "p99": 2, "max": 2},
			"top_source":    []map[string]any{{"uuid": "u1", "name": "Ministerstvo", "degree": 6}},
			"top_target":    []map[string]any{},
			"islands": map[string]any{
				"source": map[string]any{"count": 2, "singletons": 1, "multi_islands": []map[string]any{{"size": 3, "fraction": 0.75}}},
				"target": map[string]any{"count": 3, "singletons": 0, "multi_islands": []map[string]any{{"size": 6, "fraction": 0.6}, {"size": 4, "fraction": 0.4}}},
			},
		},
	})

	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}
