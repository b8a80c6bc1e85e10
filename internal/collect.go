package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/starford/metaviz/internal/collector"
	"github.com/starford/metaviz/internal/flatten"
	"github.com/starford/metaviz/internal/reportdb"
	"github.com/starford/metaviz/internal/storage"
)

// errRemoteRoot is returned by collector commands run against a remote
// data root.
var errRemoteRoot = errors.New("collector commands need a local data root (data.root)")

// dataRoot opens the local data root for writing, creating it if needed.
func (a *application) dataRoot() (*storage.FS, error) {
	root := a.config.Data.Root
	if root == "" {
		return nil, errRemoteRoot
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data root: %w", err)
	}
	return storage.NewFS(root)
}

// FetchMetadata downloads the registry type metadata into the data root.
func FetchMetadata(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()
	out, err := app.dataRoot()
	if err != nil {
		return err
	}

	cfg := app.config.Collector
	client := collector.NewClient(collector.ClientOptions{
		BaseURL: cfg.RegistryURL,
		Retries: cfg.Retries,
		Backoff: time.Duration(cfg.BackoffMS) * time.Millisecond,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		Logger:  logger,
	})

	sum, err := collector.FetchMetadata(ctx, client, out, logger)
	if err != nil {
		return err
	}
	logger.Info("metadata refreshed",
		slog.Int("node_types", sum.NodeTypes),
		slog.Int("relations", sum.Relations),
		slog.Int("skipped", sum.Skipped))
	return nil
}

// BuildIndex rewrites stats/index.json from the stats directories.
func BuildIndex(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()
	out, err := app.dataRoot()
	if err != nil {
		return err
	}
	_, err = collector.BuildIndex(out, logger)
	return err
}

// RelationStats computes one relation statistics document from the raw
// dumps under rawDir.
func RelationStats(ctx context.Context, rawDir string, job collector.RelationJob, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()
	out, err := app.dataRoot()
	if err != nil {
		return err
	}
	raw, err := storage.NewFS(rawDir)
	if err != nil {
		return fmt.Errorf("open raw dumps: %w", err)
	}
	_, err = collector.RelationStats(ctx, raw, out, job, logger)
	return err
}

// Flatten converts TABLE reports of inDir into CSV files under outDir and,
// when dbPath is set, into a SQLite report database.
func Flatten(ctx context.Context, inDir, outDir, dbPath string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	fo := flatten.Options{InDir: inDir, OutDir: outDir, Logger: logger}
	if dbPath != "" {
		db, err := reportdb.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		fo.Sink = db
	}

	sum, err := flatten.Dir(ctx, fo)
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		logger.Warn("some reports were skipped", slog.Int("failed", sum.Failed))
	}
	return nil
}

// SearchReports prints the report rows of dbPath matching query as JSON
// lines.
func SearchReports(_ context.Context, dbPath, query string, limit int, w io.Writer, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	app.logger()

	db, err := reportdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := db.Search(query, limit)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(map[string]any{
			"report": r.Report,
			"row":    r.Row,
			"cells":  r.Cells,
		}); err != nil {
			return err
		}
	}
	return nil
}
