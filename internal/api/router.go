package api

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/metaviz/internal/viewer"
)

// NewRouter creates a chi router with the JSON API routes.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *viewer.Service, authEnabled bool, token string, events http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/snapshots", h.ListSnapshots)
	r.Get("/nodes", h.ListNodes)
	r.Get("/relations", h.ListRelations)
	r.Get("/stats/attributes/{snapshot}/{type}", h.AttributeStats)
	r.Get("/stats/relations/{snapshot}/{relation}", h.RelationStats)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}

// ServerOptions configures NewServer.
type ServerOptions struct {
	Service     *viewer.Service
	AuthEnabled bool
	Token       string
	Events      http.Handler
	SpritesDir  string
	Templates   fs.FS
	Static      fs.FS
	Sprites     fs.FS
}

// NewServer builds the complete HTTP handler: middleware, health and
// metrics endpoints, pages, sprites, static assets and the API.
func NewServer(opts ServerOptions) (http.Handler, error) {
	pages, err := NewPages(opts.Service, opts.Templates)
	if err != nil {
		return nil, err
	}
	sprites := NewSpriteHandler(opts.SpritesDir, opts.Sprites, opts.Service)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(Instrument)

	r.Get("/health/live", Live)
	r.Get("/health/ready", Ready(opts.Service))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", pages.Nodes)
	r.Get("/relations", pages.Relations)
	r.Get("/sprites/{name}", sprites.Serve)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(opts.Static))))

	r.Mount("/api", NewRouter(opts.Service, opts.AuthEnabled, opts.Token, opts.Events))

	return r, nil
}
