// Package datawatch reloads the viewer session when the index documents of
// a local data root change.
package datawatch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/metaviz/internal/checksum"
	"github.com/starford/metaviz/internal/loader"
	"github.com/starford/metaviz/internal/viewer"
)

// DefaultDebounce is the quiet period before a reload.
const DefaultDebounce = 300 * time.Millisecond

// Reloader builds a fresh session.
type Reloader interface {
	Load(ctx context.Context) (*viewer.Session, error)
}

// Options configures Watch.
type Options struct {
	Root     string
	Debounce time.Duration
	Logger   *slog.Logger

	// OnChange is called for every index document whose content changed.
	OnChange func(rel string)
	// OnReload is called after a successful reload.
	OnReload func(sess *viewer.Session)
}

// watched lists the index documents, relative to the data root.
var watched = []string{
	loader.StatsIndexPath,
	loader.NodeIndexPath,
	loader.RelationIndexPath,
}

// Watch watches the stats and metadata directories of the data root until
// ctx is cancelled. A change is an index document whose checksum differs
// from the last one seen; changes are debounced into a single reload. A
// failed reload keeps the current session.
func Watch(ctx context.Context, svc Reloader, opts Options) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(opts.Root); err != nil {
		return err
	}
	for _, dir := range watchedDirs() {
		addDir(w, filepath.Join(opts.Root, dir), logger)
	}

	sums := make(map[string]string, len(watched))
	for _, rel := range watched {
		sums[rel] = fileSum(opts.Root, rel)
	}

	logger.Info("datawatch: started", slog.String("root", opts.Root))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(opts.Debounce)
			fire = timer.C
			return
		}
		timer.Reset(opts.Debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("datawatch: stopped")
			return nil

		case <-fire:
			timer, fire = nil, nil
			sess, err := svc.Load(ctx)
			if err != nil {
				logger.Warn("datawatch: reload failed, keeping current session",
					slog.String("error", err.Error()))
				continue
			}
			if opts.OnReload != nil {
				opts.OnReload(sess)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			rel, err := filepath.Rel(opts.Root, ev.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			if ev.Op&fsnotify.Create != 0 && isWatchedDir(rel) {
				addDir(w, ev.Name, logger)
				for _, doc := range watched {
					if changed(sums, opts.Root, doc) {
						notify(opts, logger, doc)
						schedule()
					}
				}
				continue
			}
			if !isWatched(rel) {
				continue
			}
			if changed(sums, opts.Root, rel) {
				notify(opts, logger, rel)
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("datawatch: error", slog.String("error", watchErr.Error()))
		}
	}
}

func notify(opts Options, logger *slog.Logger, rel string) {
	logger.Debug("datawatch: changed", slog.String("path", rel))
	if opts.OnChange != nil {
		opts.OnChange(rel)
	}
}

// changed recomputes the checksum of rel and records it.
func changed(sums map[string]string, root, rel string) bool {
	sum := fileSum(root, rel)
	if sums[rel] == sum {
		return false
	}
	sums[rel] = sum
	return true
}

// fileSum returns the checksum of root/rel, empty when it cannot be read.
func fileSum(root, rel string) string {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return ""
	}
	return checksum.Sum(data)
}

func addDir(w *fsnotify.Watcher, dir string, logger *slog.Logger) {
	err := w.Add(dir)
	switch {
	case err == nil:
		logger.Debug("datawatch: watching", slog.String("dir", dir))
	case errors.Is(err, fs.ErrNotExist):
	default:
		logger.Warn("datawatch: add dir failed", slog.String("dir", dir), slog.String("error", err.Error()))
	}
}

func watchedDirs() []string {
	seen := map[string]bool{}
	var dirs []string
	for _, rel := range watched {
		d := filepath.Dir(filepath.FromSlash(rel))
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func isWatchedDir(rel string) bool {
	for _, d := range watchedDirs() {
		if filepath.ToSlash(d) == rel {
			return true
		}
	}
	return false
}

func isWatched(rel string) bool {
	for _, w := range watched {
		if w == rel {
			return true
		}
	}
	return false
}
