// Package loader decodes data-root JSON documents and loads the index
// documents a viewer session starts from.
package loader

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/starford/metaviz/internal/models"
	"github.com/starford/metaviz/internal/storage"
)

// Data-root paths of the index documents.
const (
	StatsIndexPath    = "stats/index.json"
	NodeIndexPath     = "metadata/node_index.json"
	RelationIndexPath = "metadata/relation_index.json"
)

// AttributeStatsPath returns the attribute statistics path of a node type.
func AttributeStatsPath(snapshot, nodeType string) string {
	return "stats/" + snapshot + "/attributes/" + nodeType + ".json"
}

// RelationStatsPath returns the relation statistics path of a relation.
func RelationStatsPath(snapshot, relation string) string {
	return "stats/" + snapshot + "/relation_attributes/" + relation + ".json"
}

// LoadJSON reads path from p and decodes it into a new T. Transport errors
// keep the location and status code of the failed request.
func LoadJSON[T any](ctx context.Context, p storage.Provider, path string) (*T, error) {
	data, err := p.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("loader: decode %s: %w", p.Location(path), err)
	}
	return &v, nil
}

// Indexes are the documents a session is built from.
type Indexes struct {
	Stats     *models.StatsIndex
	Nodes     *models.NodeIndex
	Relations *models.RelationIndex
}

// LoadIndexes loads the stats index, the node metadata index and, when
// withRelations is set, the relation metadata index in parallel. Any failure
// aborts the whole load.
func LoadIndexes(ctx context.Context, p storage.Provider, withRelations bool) (*Indexes, error) {
	out := &Indexes{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := LoadJSON[models.StatsIndex](gCtx, p, StatsIndexPath)
		if err != nil {
			return fmt.Errorf("load stats index: %w", err)
		}
		out.Stats = v
		return nil
	})
	g.Go(func() error {
		v, err := LoadJSON[models.NodeIndex](gCtx, p, NodeIndexPath)
		if err != nil {
			return fmt.Errorf("load node index: %w", err)
		}
		out.Nodes = v
		return nil
	})
	if withRelations {
		g.Go(func() error {
			v, err := LoadJSON[models.RelationIndex](gCtx, p, RelationIndexPath)
			if err != nil {
				return fmt.Errorf("load relation index: %w", err)
			}
			out.Relations = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out.Relations == nil {
		out.Relations = &models.RelationIndex{}
	}
	if out.Nodes.Types == nil {
		out.Nodes.Types = map[string]models.NodeTypeMetadata{}
	}
	if out.Relations.Relations == nil {
		out.Relations.Relations = map[string]models.RelationMetadata{}
	}
	return out, nil
}
