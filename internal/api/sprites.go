package api

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/metaviz/internal/viewer"
)

const spriteExt = ".svg"

// SpriteHandler serves node type sprites from an optional directory,
// falling back to a default sprite per node type category.
type SpriteHandler struct {
	dir      string
	fallback fs.FS
	svc      *viewer.Service
}

// NewSpriteHandler creates a handler. dir may be empty; fallback holds
// default_{application,system,codelist,generic}.svg.
func NewSpriteHandler(dir string, fallback fs.FS, svc *viewer.Service) *SpriteHandler {
	return &SpriteHandler{dir: dir, fallback: fallback, svc: svc}
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal) and returns the absolute path under the sprites dir.
func (h *SpriteHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(h.dir, cleaned)
	if !strings.HasPrefix(abs, filepath.Clean(h.dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes sprites directory")
	}
	return abs, nil
}

// Serve handles GET /sprites/{name}.
func (h *SpriteHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !strings.HasSuffix(name, spriteExt) || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		http.Error(w, "invalid sprite name", http.StatusBadRequest)
		return
	}

	if h.dir != "" {
		abs, err := h.safeName(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
			w.Header().Set("Content-Type", "image/svg+xml")
			http.ServeFile(w, r, abs)
			return
		}
	}

	data, err := fs.ReadFile(h.fallback, "default_"+h.category(strings.TrimSuffix(name, spriteExt))+spriteExt)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}

// category returns the fallback sprite category of a node type.
func (h *SpriteHandler) category(nodeType string) string {
	sess, err := h.svc.Current()
	if err != nil {
		return "generic"
	}
	meta, ok := sess.Nodes[nodeType]
	if !ok {
		return "generic"
	}
	return meta.SpriteCategory()
}
