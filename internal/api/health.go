package api

import (
	"net/http"

	"github.com/starford/metaviz/internal/viewer"
)

// Live handles GET /health/live.
func Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready returns the GET /health/ready handler; it reports ready once a
// session is loaded.
func Ready(svc *viewer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		sess, err := svc.Current()
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":     "ok",
			"generation": sess.Generation,
		})
	}
}
