package api

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/metaviz/internal/viewer"
)

// MaxLimit bounds the display limit.
const MaxLimit = 1000

var (
	dateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	entityRe = regexp.MustCompile(`^[\p{L}\p{N}_.-]+$`)
)

func flag(v url.Values, name string) bool {
	switch strings.ToLower(v.Get(name)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

func validateSnapshot(s string) error {
	return validation.Validate(s, validation.Match(dateRe).Error("must be a YYYY-MM-DD date"))
}

func validateEntity(s string) error {
	return validation.Validate(s, validation.Length(1, 200), validation.Match(entityRe).Error("must be a technical name"))
}

// parseNodeQuery reads a node view request. Invalid fields are left at
// their zero value and reported in the returned error.
func parseNodeQuery(v url.Values) (viewer.NodeQuery, error) {
	q := viewer.NodeQuery{
		Snapshot: v.Get("snapshot"),
		Entity:   v.Get("type"),
		Query:    strings.TrimSpace(v.Get("q")),
		Filter: viewer.NodeFilter{
			Application: flag(v, "application"),
			System:      flag(v, "system"),
			Codelist:    flag(v, "codelist"),
			Curated:     flag(v, "curated"),
		},
	}

	errs := validation.Errors{
		"snapshot": validateSnapshot(q.Snapshot),
		"type":     validation.Validate(q.Entity, validation.Match(entityRe)),
		"q":        validation.Validate(q.Query, validation.Length(0, 200)),
	}
	if raw := v.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err == nil {
			err = validation.Validate(n, validation.Required, validation.Min(1), validation.Max(MaxLimit))
		}
		if err == nil {
			q.Limit = n
		} else {
			errs["limit"] = validation.NewError("validation_limit", "must be an integer between 1 and 1000")
		}
	}

	if errs["snapshot"] != nil {
		q.Snapshot = ""
	}
	if errs["type"] != nil {
		q.Entity = ""
	}
	if errs["q"] != nil {
		q.Query = ""
	}
	return q, errs.Filter()
}

// parseRelationQuery reads a relation view request.
func parseRelationQuery(v url.Values) (viewer.RelationQuery, error) {
	q := viewer.RelationQuery{
		Snapshot: v.Get("snapshot"),
		Relation: v.Get("relation"),
		Filter: viewer.RelationFilter{
			Application: flag(v, "application"),
			System:      flag(v, "system"),
			Curated:     flag(v, "curated"),
		},
	}
	errs := validation.Errors{
		"snapshot": validateSnapshot(q.Snapshot),
		"relation": validation.Validate(q.Relation, validation.Match(entityRe)),
	}
	if errs["snapshot"] != nil {
		q.Snapshot = ""
	}
	if errs["relation"] != nil {
		q.Relation = ""
	}
	return q, errs.Filter()
}
