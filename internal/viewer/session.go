package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/starford/metaviz/internal/apperr"
	"github.com/starford/metaviz/internal/checksum"
	"github.com/starford/metaviz/internal/loader"
	"github.com/starford/metaviz/internal/models"
	"github.com/starford/metaviz/internal/statscache"
	"github.com/starford/metaviz/internal/storage"
)

// Session is one loaded generation of the index documents together with
// its stats caches. Sessions are immutable; a reload builds a new one.
// Generation fingerprints the documents; ID is unique per load and scopes
// the cache stores.
type Session struct {
	ID         string
	Generation string
	LoadedAt   time.Time

	Stats     *models.StatsIndex
	Nodes     map[string]models.NodeTypeMetadata
	Relations map[string]models.RelationMetadata

	CuratedNodes     []string
	CuratedRelations []string
	DefaultLimit     int

	Attributes    *statscache.Cache[models.AttributeStats]
	RelationStats *statscache.Cache[models.RelationStats]
}

// AttributeStats returns the attribute statistics of a node type, nil when
// unavailable.
func (s *Session) AttributeStats(ctx context.Context, snapshot, nodeType string) *models.AttributeStats {
	return s.Attributes.Get(ctx, snapshot, nodeType)
}

// RelationStatsFor returns the statistics of a relation, nil when unavailable.
func (s *Session) RelationStatsFor(ctx context.Context, snapshot, relation string) *models.RelationStats {
	return s.RelationStats.Get(ctx, snapshot, relation)
}

// StoreFactory creates the cache store of one cache kind of a session.
type StoreFactory func(session, kind string) statscache.Store

// Options configures a Service.
type Options struct {
	Provider         storage.Provider
	WithRelations    bool
	CuratedNodes     []string
	CuratedRelations []string
	DefaultLimit     int
	NewStore         StoreFactory
	Logger           *slog.Logger
}

// Service owns the current session and swaps it on reload.
type Service struct {
	opts    Options
	current atomic.Pointer[Session]
}

// NewService creates a service without a session; call Load before use.
func NewService(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewStore == nil {
		opts.NewStore = func(string, string) statscache.Store { return statscache.NewMemory() }
	}
	if opts.CuratedNodes == nil {
		opts.CuratedNodes = DefaultCuratedNodeTypes
	}
	if opts.CuratedRelations == nil {
		opts.CuratedRelations = DefaultCuratedRelations
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	return &Service{opts: opts}
}

// Current returns the active session.
func (s *Service) Current() (*Session, error) {
	sess := s.current.Load()
	if sess == nil {
		return nil, apperr.ErrNoSession
	}
	return sess, nil
}

// Load loads the index documents and makes a fresh session current. On
// failure the previous session, if any, stays current.
func (s *Service) Load(ctx context.Context) (*Session, error) {
	idx, err := loader.LoadIndexes(ctx, s.opts.Provider, s.opts.WithRelations)
	if err != nil {
		return nil, err
	}
	gen, err := generation(idx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	sess := &Session{
		ID:               id,
		Generation:       gen,
		LoadedAt:         time.Now(),
		Stats:            idx.Stats,
		Nodes:            idx.Nodes.Types,
		Relations:        idx.Relations.Relations,
		CuratedNodes:     s.opts.CuratedNodes,
		CuratedRelations: s.opts.CuratedRelations,
		DefaultLimit:     s.opts.DefaultLimit,
		Attributes: statscache.New[models.AttributeStats](statscache.KindAttributes,
			s.opts.Provider, s.opts.NewStore(id, statscache.KindAttributes), loader.AttributeStatsPath, s.opts.Logger),
		RelationStats: statscache.New[models.RelationStats](statscache.KindRelations,
			s.opts.Provider, s.opts.NewStore(id, statscache.KindRelations), loader.RelationStatsPath, s.opts.Logger),
	}
	s.current.Store(sess)

	s.opts.Logger.Info("session loaded",
		slog.String("session", id),
		slog.String("generation", gen),
		slog.Int("snapshots", len(sess.Stats.Snapshots)),
		slog.Int("node_types", len(sess.Nodes)),
		slog.Int("relations", len(sess.Relations)))
	return sess, nil
}

// generation fingerprints the index documents. encoding/json sorts map
// keys, so equal documents give equal generations.
func generation(idx *loader.Indexes) (string, error) {
	data, err := json.Marshal(idx)
	if err != nil {
		return "", fmt.Errorf("viewer: fingerprint indexes: %w", err)
	}
	return checksum.Sum(data)[:16], nil
}
