package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/metaviz/internal/storage"
	"github.com/starford/metaviz/internal/testutil"
)

func TestLoadIndexes(t *testing.T) {
	_, store := testutil.TestDataRoot(t)

	idx, err := LoadIndexes(context.Background(), store, true)
	if err != nil {
		t.Fatalf("LoadIndexes: %v", err)
	}
	if len(idx.Stats.Snapshots) != 2 {
		t.Errorf("snapshots = %d", len(idx.Stats.Snapshots))
	}
	if !idx.Nodes.Types["CL_Typ"].IsCodelist {
		t.Error("CL_Typ should be a codelist")
	}
	if idx.Relations.Relations["PO_je_gestor_KS"].Source.TechnicalName != "PO" {
		t.Error("relation source not decoded")
	}
}

func TestLoadIndexes_WithoutRelations(t *testing.T) {
	root, store := testutil.TestDataRoot(t)
	_ = os.Remove(filepath.Join(root, "metadata", "relation_index.json"))

	idx, err := LoadIndexes(context.Background(), store, false)
	if err != nil {
		t.Fatalf("LoadIndexes: %v", err)
	}
	if idx.Relations == nil || len(idx.Relations.Relations) != 0 {
		t.Errorf("relations = %+v, want empty", idx.Relations)
	}
}

func TestLoadIndexes_FailureAborts(t *testing.T) {
	root, store := testutil.TestDataRoot(t)
	testutil.WriteFile(t, root, "metadata/node_index.json", []byte("{not json"))

	if _, err := LoadIndexes(context.Background(), store, true); err == nil {
		t.Fatal("expected error for malformed node index")
	}
}

func TestLoadJSON_SurfacesURLAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, _ := storage.NewHTTP(srv.URL, nil)
	_, err := LoadIndexes(context.Background(), p, false)
	var se *storage.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if se.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", se.StatusCode)
	}
	if !strings.Contains(err.Error(), srv.URL) {
		t.Errorf("error lacks url: %v", err)
	}
}

func TestPaths(t *testing.T) {
	if got := AttributeStatsPath("2025-11-10", "KS"); got != "stats/2025-11-10/attributes/KS.json" {
		t.Errorf("attribute path = %q", got)
	}
	if got := RelationStatsPath("2025-11-10", "PO_je_gestor_KS"); got != "stats/2025-11-10/relation_attributes/PO_je_gestor_KS.json" {
		t.Errorf("relation path = %q", got)
	}
}
