package flatten

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/metaviz/internal/checksum"
	"github.com/starford/metaviz/internal/report"
	"github.com/starford/metaviz/internal/storage"
)

// Sink receives every converted report.
type Sink interface {
	Checksum(name string) (string, error)
	Store(name, checksum string, t *report.Table) (string, error)
}

// Options configures Dir.
type Options struct {
	InDir  string
	OutDir string
	// Sink is optional; reports whose checksum is unchanged are not
	// stored again.
	Sink   Sink
	Logger *slog.Logger
}

// Summary counts what Dir did.
type Summary struct {
	Converted int
	Stored    int
	Unchanged int
	Failed    int
}

// Dir converts every *.json TABLE report of InDir into OutDir/{name}.csv.
// A report that fails to parse is logged and skipped.
func Dir(ctx context.Context, opts Options) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	in, err := storage.NewFS(opts.InDir)
	if err != nil {
		return nil, fmt.Errorf("flatten: input: %w", err)
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("flatten: create output dir: %w", err)
	}
	out, err := storage.NewFS(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("flatten: output: %w", err)
	}

	names, _, err := in.Files("", ".json")
	if err != nil {
		return nil, fmt.Errorf("flatten: list input: %w", err)
	}

	sum := &Summary{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		data, err := in.Read(ctx, name+".json")
		if err != nil {
			return sum, err
		}
		t, err := report.Parse(data)
		if err != nil {
			logger.Warn("flatten: skipped", slog.String("file", name+".json"), slog.String("error", err.Error()))
			sum.Failed++
			continue
		}

		var buf bytes.Buffer
		if err := WriteCSV(&buf, t); err != nil {
			return sum, fmt.Errorf("flatten: encode %s: %w", name, err)
		}
		if err := out.Write(name+".csv", buf.Bytes()); err != nil {
			return sum, err
		}
		sum.Converted++
		logger.Debug("flatten: converted", slog.String("report", name), slog.Int("rows", len(t.Rows)))

		if opts.Sink == nil {
			continue
		}
		cs := checksum.Sum(data)
		prev, err := opts.Sink.Checksum(name)
		if err != nil {
			return sum, err
		}
		if prev == cs {
			sum.Unchanged++
			continue
		}
		if _, err := opts.Sink.Store(name, cs, t); err != nil {
			return sum, err
		}
		sum.Stored++
	}

	logger.Info("flatten: done",
		slog.Int("converted", sum.Converted),
		slog.Int("stored", sum.Stored),
		slog.Int("unchanged", sum.Unchanged),
		slog.Int("failed", sum.Failed))
	return sum, nil
}
