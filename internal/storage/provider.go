// Package storage abstracts the read-only data root holding snapshot
// indexes, metadata and statistics documents.
package storage

import (
	"context"
	"fmt"
	"net/http"

	"github.com/starford/metaviz/internal/apperr"
)

// Provider reads documents from a data root.
type Provider interface {
	// Read returns the raw bytes of the document at path (relative to the data root).
	Read(ctx context.Context, path string) ([]byte, error)
	// Location returns the absolute file path or URL of path, for messages.
	Location(path string) string
}

// StatusError reports an unsuccessful HTTP response for a data-root document.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("storage: GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets 404 responses match apperr.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == apperr.ErrNotFound && e.StatusCode == http.StatusNotFound
}
