package statscache

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/starford/metaviz/internal/storage"
)

// Cache kinds.
const (
	KindAttributes = "attributes"
	KindRelations  = "relations"
)

// PathFunc maps a snapshot and entity key to a data-root path.
type PathFunc func(snapshot, key string) string

// Cache memoizes decoded documents of type T keyed by "{snapshot}:{key}".
// A failed fetch is cached as nil and never retried within the session.
// Concurrent misses for one key are not coalesced; the last write wins.
type Cache[T any] struct {
	kind   string
	src    storage.Provider
	store  Store
	path   PathFunc
	logger *slog.Logger
}

// New creates a cache reading misses from src.
func New[T any](kind string, src storage.Provider, store Store, path PathFunc, logger *slog.Logger) *Cache[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache[T]{kind: kind, src: src, store: store, path: path, logger: logger}
}

// Key returns the composite cache key.
func Key(snapshot, key string) string {
	return snapshot + ":" + key
}

// Get returns the document for (snapshot, key), or nil when it is
// unavailable.
func (c *Cache[T]) Get(ctx context.Context, snapshot, key string) *T {
	k := Key(snapshot, key)

	data, ok, err := c.store.Get(ctx, k)
	if err != nil {
		c.logger.Warn("statscache: store get failed", slog.String("key", k), slog.String("error", err.Error()))
	}
	if ok {
		if data == nil {
			CacheRequests.WithLabelValues(c.kind, "negative_hit").Inc()
			return nil
		}
		CacheRequests.WithLabelValues(c.kind, "hit").Inc()
		v, err := decode[T](data)
		if err != nil {
			return nil
		}
		return v
	}

	CacheRequests.WithLabelValues(c.kind, "miss").Inc()
	path := c.path(snapshot, key)
	data, err = c.src.Read(ctx, path)
	if err == nil {
		var v *T
		if v, err = decode[T](data); err == nil {
			c.put(ctx, k, data)
			return v
		}
	}

	// A cancelled request says nothing about the document.
	if ctx.Err() != nil {
		return nil
	}
	FetchFailures.WithLabelValues(c.kind).Inc()
	c.logger.Warn("statscache: stats unavailable",
		slog.String("kind", c.kind),
		slog.String("location", c.src.Location(path)),
		slog.String("error", err.Error()))
	c.put(ctx, k, nil)
	return nil
}

func (c *Cache[T]) put(ctx context.Context, key string, data []byte) {
	if err := c.store.Set(ctx, key, data); err != nil {
		c.logger.Warn("statscache: store set failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func decode[T any](data []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
