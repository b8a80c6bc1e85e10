package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/metaviz/internal/apperr"
	"github.com/starford/metaviz/internal/viewer"
)

// Handler holds the JSON API route handlers.
type Handler struct {
	svc *viewer.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *viewer.Service) *Handler {
	return &Handler{svc: svc}
}

// session returns the current session or writes 503.
func (h *Handler) session(w http.ResponseWriter) (*viewer.Session, bool) {
	sess, err := h.svc.Current()
	if err != nil {
		if !errors.Is(err, apperr.ErrNoSession) {
			slog.Error("current session failed", slog.String("error", err.Error()))
		}
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no data loaded"))
		return nil, false
	}
	return sess, true
}

// ListSnapshots handles GET /api/snapshots.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w)
	if !ok {
		return
	}
	resp := SnapshotListResponse{
		Snapshots:  make([]SnapshotItem, 0, len(sess.Stats.Snapshots)),
		Generation: sess.Generation,
	}
	for _, s := range sess.Stats.Snapshots {
		resp.Snapshots = append(resp.Snapshots, SnapshotItem{
			Date:      s.Date,
			NodeTypes: len(s.NodeTypes),
			Relations: len(s.Relations),
		})
	}
	if latest, ok := sess.Stats.Latest(); ok {
		resp.Latest = latest.Date
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListNodes handles GET /api/nodes.
func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	q, err := parseNodeQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	sess, ok := h.session(w)
	if !ok {
		return
	}
	st := sess.ResolveNodes(q)
	resp := VisibleListResponse{
		Snapshot:           st.Snapshot,
		Selected:           st.Entity,
		CategoriesDisabled: st.Filter.CategoriesDisabled(),
		Visible:            make([]EntityItem, 0, len(st.Visible)),
	}
	for _, name := range st.Visible {
		resp.Visible = append(resp.Visible, EntityItem{TechnicalName: name, Name: sess.Nodes[name].Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRelations handles GET /api/relations.
func (h *Handler) ListRelations(w http.ResponseWriter, r *http.Request) {
	q, err := parseRelationQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	sess, ok := h.session(w)
	if !ok {
		return
	}
	st := sess.ResolveRelations(q)
	resp := VisibleListResponse{
		Snapshot:           st.Snapshot,
		Selected:           st.Relation,
		CategoriesDisabled: st.Filter.CategoriesDisabled(),
		Visible:            make([]EntityItem, 0, len(st.Visible)),
	}
	for _, name := range st.Visible {
		resp.Visible = append(resp.Visible, EntityItem{TechnicalName: name, Name: sess.Relations[name].Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

// statsParams validates the {snapshot} and entity path parameters.
func (h *Handler) statsParams(w http.ResponseWriter, r *http.Request, entityParam string) (*viewer.Session, string, string, bool) {
	snapshot := chi.URLParam(r, "snapshot")
	entity := chi.URLParam(r, entityParam)
	if err := validateSnapshot(snapshot); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("snapshot: "+err.Error()))
		return nil, "", "", false
	}
	if err := validateEntity(entity); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(entityParam+": "+err.Error()))
		return nil, "", "", false
	}
	sess, ok := h.session(w)
	if !ok {
		return nil, "", "", false
	}
	if _, found := sess.Stats.Find(snapshot); !found {
		writeJSON(w, http.StatusNotFound, errorBody("unknown snapshot"))
		return nil, "", "", false
	}
	return sess, snapshot, entity, true
}

// AttributeStats handles GET /api/stats/attributes/{snapshot}/{type}.
func (h *Handler) AttributeStats(w http.ResponseWriter, r *http.Request) {
	sess, snapshot, nodeType, ok := h.statsParams(w, r, "type")
	if !ok {
		return
	}
	stats := sess.AttributeStats(r.Context(), snapshot, nodeType)
	if stats == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no stats available"))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// RelationStats handles GET /api/stats/relations/{snapshot}/{relation}.
func (h *Handler) RelationStats(w http.ResponseWriter, r *http.Request) {
	sess, snapshot, relation, ok := h.statsParams(w, r, "relation")
	if !ok {
		return
	}
	stats := sess.RelationStatsFor(r.Context(), snapshot, relation)
	if stats == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no stats available"))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
