package datawatch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/metaviz/internal/storage"
	"github.com/starford/metaviz/internal/testutil"
	"github.com/starford/metaviz/internal/viewer"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type recorder struct {
	mu      sync.Mutex
	changes []string
	reloads []string
}

func (r *recorder) options(root string) Options {
	return Options{
		Root:     root,
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(rel string) {
			r.mu.Lock()
			r.changes = append(r.changes, rel)
			r.mu.Unlock()
		},
		OnReload: func(sess *viewer.Session) {
			r.mu.Lock()
			r.reloads = append(r.reloads, sess.Generation)
			r.mu.Unlock()
		},
	}
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes), len(r.reloads)
}

func startService(t *testing.T, fsys *storage.FS) *viewer.Service {
	t.Helper()
	svc := viewer.NewService(viewer.Options{Provider: fsys, WithRelations: true, Logger: quietLogger()})
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return svc
}

// write replaces a data-root file atomically so the watcher sees one
// complete version.
func write(t *testing.T, fsys *storage.FS, rel string, data []byte) {
	t.Helper()
	if err := fsys.Write(rel, data); err != nil {
		t.Fatal(err)
	}
}

func addSnapshot(t *testing.T, fsys *storage.FS) {
	t.Helper()
	write(t, fsys, "stats/index.json", []byte(`{"snapshots": [
		{"date": "`+testutil.OldSnapshot+`", "node_types": ["KS"]},
		{"date": "`+testutil.NewSnapshot+`", "node_types": ["KS"]},
		{"date": "2025-12-01", "node_types": ["KS", "PO"]}
	]}`))
}

func TestWatch_ReloadsOnIndexChange(t *testing.T) {
	root, fsys := testutil.TestDataRoot(t)
	svc := startService(t, fsys)
	before, _ := svc.Current()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{}
	go Watch(ctx, svc, rec.options(root))
	time.Sleep(100 * time.Millisecond)

	addSnapshot(t, fsys)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, reloads := rec.counts()
		return reloads >= 1
	}, "expected a reload after index change")

	sess, err := svc.Current()
	if err != nil {
		t.Fatal(err)
	}
	if sess == before || len(sess.Stats.Snapshots) != 3 {
		t.Errorf("session not replaced: %d snapshots", len(sess.Stats.Snapshots))
	}
	if sess.Generation == before.Generation {
		t.Error("generation should change with content")
	}
}

func TestWatch_IgnoresUnchangedContent(t *testing.T) {
	root, fsys := testutil.TestDataRoot(t)
	svc := startService(t, fsys)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{}
	go Watch(ctx, svc, rec.options(root))
	time.Sleep(100 * time.Millisecond)

	idx := filepath.Join(root, "stats", "index.json")
	data, err := os.ReadFile(idx)
	if err != nil {
		t.Fatal(err)
	}
	write(t, fsys, "stats/index.json", data)
	// Stats documents are not index documents.
	testutil.WriteJSON(t, root, "stats/"+testutil.NewSnapshot+"/attributes/PO.json", map[string]any{"count": 1})

	time.Sleep(400 * time.Millisecond)
	if changes, reloads := rec.counts(); changes != 0 || reloads != 0 {
		t.Errorf("changes = %d, reloads = %d, want none", changes, reloads)
	}
}

func TestWatch_DebouncesBurst(t *testing.T) {
	root, fsys := testutil.TestDataRoot(t)
	svc := startService(t, fsys)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{}
	opts := rec.options(root)
	opts.Debounce = 300 * time.Millisecond
	go Watch(ctx, svc, opts)
	time.Sleep(100 * time.Millisecond)

	addSnapshot(t, fsys)
	write(t, fsys, "metadata/relation_index.json", []byte(`{"relations": {}}`))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, reloads := rec.counts()
		return reloads >= 1
	}, "expected a reload")
	time.Sleep(500 * time.Millisecond)

	changes, reloads := rec.counts()
	if changes < 2 {
		t.Errorf("changes = %d, want at least 2", changes)
	}
	if reloads != 1 {
		t.Errorf("reloads = %d, want 1", reloads)
	}
}

func TestWatch_FailedReloadKeepsSession(t *testing.T) {
	root, fsys := testutil.TestDataRoot(t)
	svc := startService(t, fsys)
	before, _ := svc.Current()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{}
	go Watch(ctx, svc, rec.options(root))
	time.Sleep(100 * time.Millisecond)

	write(t, fsys, "metadata/node_index.json", []byte("{broken"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		changes, _ := rec.counts()
		return changes >= 1
	}, "expected a change")
	time.Sleep(300 * time.Millisecond)

	if _, reloads := rec.counts(); reloads != 0 {
		t.Errorf("reloads = %d, want 0", reloads)
	}
	if sess, _ := svc.Current(); sess != before {
		t.Error("failed reload replaced the session")
	}
}
