package api

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/starford/metaviz/internal/apperr"
	"github.com/starford/metaviz/internal/models"
	"github.com/starford/metaviz/internal/render"
	"github.com/starford/metaviz/internal/viewer"
)

// Messages shown when a filter leaves nothing to select.
const (
	NoNodeTypes = "No node types match the selected filters."
	NoRelations = "No relations match the selected filters."
)

// Views of the node page.
const (
	ViewBars  = "bars"
	ViewTable = "table"
)

// Pages renders the node and relation view pages.
type Pages struct {
	svc       *viewer.Service
	nodes     *template.Template
	relations *template.Template
}

// NewPages parses the page templates from fsys.
func NewPages(svc *viewer.Service, fsys fs.FS) (*Pages, error) {
	nodes, err := template.ParseFS(fsys, "layout.tmpl", "nodes.tmpl")
	if err != nil {
		return nil, fmt.Errorf("api: parse node page: %w", err)
	}
	relations, err := template.ParseFS(fsys, "layout.tmpl", "relations.tmpl")
	if err != nil {
		return nil, fmt.Errorf("api: parse relation page: %w", err)
	}
	return &Pages{svc: svc, nodes: nodes, relations: relations}, nil
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type checkbox struct {
	Name     string
	Label    string
	Checked  bool
	Disabled bool
}

type basePage struct {
	Title      string
	Active     string
	Snapshots  []option
	Checkboxes []checkbox
	Entities   []option
	Entity     string
}

type nodePage struct {
	basePage
	EntityName string
	HasStats   bool
	Count      string
	Shown      int
	Total      int
	Query      string
	Limit      int
	View       string
	Content    template.HTML
}

type relationPage struct {
	basePage
	Header  template.HTML
	Summary template.HTML
	Source  template.HTML
	Target  template.HTML
}

func snapshotOptions(sess *viewer.Session, selected string) []option {
	dates := sess.Stats.Dates()
	out := make([]option, len(dates))
	for i, d := range dates {
		label := d
		if i == len(dates)-1 {
			label += " (latest)"
		}
		out[i] = option{Value: d, Label: label, Selected: d == selected}
	}
	return out
}

func (p *Pages) session(w http.ResponseWriter) (*viewer.Session, bool) {
	sess, err := p.svc.Current()
	if err != nil {
		if !errors.Is(err, apperr.ErrNoSession) {
			slog.Error("current session failed", slog.String("error", err.Error()))
		}
		http.Error(w, "no data loaded", http.StatusServiceUnavailable)
		return nil, false
	}
	return sess, true
}

func (p *Pages) execute(w http.ResponseWriter, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("render page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Nodes handles GET /: the attribute view of one node type.
func (p *Pages) Nodes(w http.ResponseWriter, r *http.Request) {
	sess, ok := p.session(w)
	if !ok {
		return
	}
	q, err := parseNodeQuery(r.URL.Query())
	if err != nil {
		slog.Debug("node page query", slog.String("error", err.Error()))
	}
	st := sess.ResolveNodes(q)

	page := nodePage{
		basePage: basePage{
			Title:     "Node types",
			Active:    "nodes",
			Snapshots: snapshotOptions(sess, st.Snapshot),
			Checkboxes: []checkbox{
				{Name: "application", Label: "application", Checked: st.Filter.Application, Disabled: st.Filter.CategoriesDisabled()},
				{Name: "system", Label: "system", Checked: st.Filter.System, Disabled: st.Filter.CategoriesDisabled()},
				{Name: "codelist", Label: "codelist", Checked: st.Filter.Codelist, Disabled: st.Filter.CategoriesDisabled()},
				{Name: "curated", Label: "curated", Checked: st.Filter.Curated},
			},
			Entity: st.Entity,
		},
		Query: st.Query,
		Limit: st.Limit,
		View:  ViewBars,
	}
	if r.URL.Query().Get("view") == ViewTable {
		page.View = ViewTable
	}
	for _, name := range st.Visible {
		page.Entities = append(page.Entities, option{
			Value:    name,
			Label:    models.EndpointMetadata{TechnicalName: name, Name: sess.Nodes[name].Name}.Label(),
			Selected: name == st.Entity,
		})
	}

	if st.Entity == "" {
		page.Content = render.Message(NoNodeTypes)
		p.execute(w, p.nodes, page)
		return
	}

	var meta *models.NodeTypeMetadata
	page.EntityName = st.Entity
	if m, ok := sess.Nodes[st.Entity]; ok {
		meta = &m
		if m.Name != "" {
			page.EntityName = m.Name
		}
	}

	stats := sess.AttributeStats(r.Context(), st.Snapshot, st.Entity)
	if stats == nil {
		page.Content = render.Message(render.NoNodeStats)
		p.execute(w, p.nodes, page)
		return
	}
	rows := render.AttributeRows(stats, meta, st.Query, st.Limit)
	page.HasStats = true
	page.Count = render.FormatCount(stats.Count)
	page.Shown = len(rows)
	page.Total = len(stats.Attributes)
	if page.View == ViewTable {
		page.Content = render.AttributeTable(rows)
	} else {
		page.Content = render.AttributeBars(rows)
	}
	p.execute(w, p.nodes, page)
}

// Relations handles GET /relations: the connectivity view of one relation.
func (p *Pages) Relations(w http.ResponseWriter, r *http.Request) {
	sess, ok := p.session(w)
	if !ok {
		return
	}
	q, err := parseRelationQuery(r.URL.Query())
	if err != nil {
		slog.Debug("relation page query", slog.String("error", err.Error()))
	}
	st := sess.ResolveRelations(q)

	page := relationPage{
		basePage: basePage{
			Title:     "Relations",
			Active:    "relations",
			Snapshots: snapshotOptions(sess, st.Snapshot),
			Checkboxes: []checkbox{
				{Name: "application", Label: "application", Checked: st.Filter.Application, Disabled: st.Filter.CategoriesDisabled()},
				{Name: "system", Label: "system", Checked: st.Filter.System, Disabled: st.Filter.CategoriesDisabled()},
				{Name: "curated", Label: "curated", Checked: st.Filter.Curated},
			},
			Entity: st.Relation,
		},
	}
	for _, name := range st.Visible {
		page.Entities = append(page.Entities, option{
			Value:    name,
			Label:    models.EndpointMetadata{TechnicalName: name, Name: sess.Relations[name].Name}.Label(),
			Selected: name == st.Relation,
		})
	}

	if st.Relation == "" {
		page.Summary = render.Message(NoRelations)
		p.execute(w, p.relations, page)
		return
	}

	var meta *models.RelationMetadata
	if m, ok := sess.Relations[st.Relation]; ok {
		meta = &m
	}
	stats := sess.RelationStatsFor(r.Context(), st.Snapshot, st.Relation)
	source, target := render.Sides(stats)

	page.Header = render.RelationHeader(st.Relation, meta, stats)
	page.Summary = render.RelationSummary(stats)
	page.Source = render.SidePanel(source)
	page.Target = render.SidePanel(target)
	p.execute(w, p.relations, page)
}
