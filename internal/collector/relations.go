package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/metaviz/internal/loader"
	"github.com/starford/metaviz/internal/models"
	"github.com/starford/metaviz/internal/relstats"
	"github.com/starford/metaviz/internal/report"
	"github.com/starford/metaviz/internal/storage"
)

// RelationJob names the inputs of one relation-stats run. Raw dumps are
// read from raw as relations/{Relation}.json and nodes/{type}.json.
type RelationJob struct {
	Snapshot   string
	Relation   string
	SourceType string
	TargetType string
}

// RelationStats computes the statistics of one relation from raw dumps
// and writes stats/{snapshot}/relation_attributes/{relation}.json into out.
func RelationStats(ctx context.Context, raw storage.Provider, out *storage.FS, job RelationJob, logger *slog.Logger) (*models.RelationStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, name := range []string{job.Snapshot, job.Relation, job.SourceType, job.TargetType} {
		if !validName(name) {
			return nil, fmt.Errorf("collector: invalid name %q", name)
		}
	}

	data, err := raw.Read(ctx, "relations/"+job.Relation+".json")
	if err != nil {
		return nil, fmt.Errorf("collector: relation dump: %w", err)
	}
	table, err := report.Parse(data)
	if err != nil {
		return nil, err
	}
	pairs, err := table.Pairs()
	if err != nil {
		return nil, err
	}

	sources, err := readNodes(ctx, raw, job.SourceType)
	if err != nil {
		return nil, err
	}
	targets, err := readNodes(ctx, raw, job.TargetType)
	if err != nil {
		return nil, err
	}

	res := relstats.Compute(relstats.Input{
		Relation:   job.Relation,
		Snapshot:   job.Snapshot,
		SourceType: job.SourceType,
		TargetType: job.TargetType,
		Pairs:      pairs,
		Sources:    sources,
		Targets:    targets,
	})
	if res.Ambiguous > 0 {
		logger.Warn("collector: pairs matched neither orientation",
			slog.String("relation", job.Relation),
			slog.Int("ambiguous", res.Ambiguous))
	}

	dst := loader.RelationStatsPath(job.Snapshot, job.Relation)
	if err := writeJSON(out, dst, res.Stats); err != nil {
		return nil, err
	}
	logger.Info("collector: relation stats written",
		slog.String("path", out.Location(dst)),
		slog.Int("edges", res.Stats.Stats.EdgesTotal.Int()),
		slog.String("cardinality", res.Stats.Stats.Cardinality))
	return &res.Stats, nil
}

func readNodes(ctx context.Context, raw storage.Provider, nodeType string) ([]report.Node, error) {
	data, err := raw.Read(ctx, "nodes/"+nodeType+".json")
	if err != nil {
		return nil, fmt.Errorf("collector: node dump %s: %w", nodeType, err)
	}
	nodes, err := report.ParseNodes(data)
	if err != nil {
		return nil, fmt.Errorf("collector: node dump %s: %w", nodeType, err)
	}
	return nodes, nil
}
