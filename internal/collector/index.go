package collector

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/starford/metaviz/internal/apperr"
	"github.com/starford/metaviz/internal/loader"
	"github.com/starford/metaviz/internal/models"
	"github.com/starford/metaviz/internal/storage"
)

// Stats directories of the data root.
const (
	StatsDir              = "stats"
	AttributesDir         = "attributes"
	RelationAttributesDir = "relation_attributes"
)

// BuildIndex scans stats/{date}/ for attribute and relation statistics and
// writes stats/index.json. A date directory without any statistics is
// left out. Dates and names are sorted.
func BuildIndex(out *storage.FS, logger *slog.Logger) (*models.StatsIndex, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dates, err := out.Dirs(StatsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("collector: %s: %w", out.Location(StatsDir), apperr.ErrNotFound)
		}
		return nil, err
	}

	index := &models.StatsIndex{Snapshots: []models.Snapshot{}}
	for _, date := range dates {
		nodeTypes, ok, err := out.Files(path.Join(StatsDir, date, AttributesDir), ".json")
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Warn("collector: no node stats", slog.String("snapshot", date))
		}
		relations, ok, err := out.Files(path.Join(StatsDir, date, RelationAttributesDir), ".json")
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Info("collector: no relation stats", slog.String("snapshot", date))
		}
		if len(nodeTypes) == 0 && len(relations) == 0 {
			continue
		}
		if nodeTypes == nil {
			nodeTypes = []string{}
		}
		if relations == nil {
			relations = []string{}
		}
		index.Snapshots = append(index.Snapshots, models.Snapshot{
			Date:      date,
			NodeTypes: nodeTypes,
			Relations: relations,
		})
	}

	if err := writeJSON(out, loader.StatsIndexPath, index); err != nil {
		return nil, err
	}
	logger.Info("collector: stats index written",
		slog.String("path", out.Location(loader.StatsIndexPath)),
		slog.Int("snapshots", len(index.Snapshots)))
	return index, nil
}
