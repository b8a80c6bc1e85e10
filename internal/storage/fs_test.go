package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/metaviz/internal/apperr"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte(`{"snapshots":[]}`)
	if err := s.Write("stats/index.json", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(context.Background(), "stats/index.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissingIsNotFound(t *testing.T) {
	s := tempRoot(t)
	_, err := s.Read(context.Background(), "stats/2025-01-01/attributes/KS.json")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFilesAndDirs(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("stats/2025-02-01/attributes/PO.json", []byte("{}"))
	_ = s.Write("stats/2025-02-01/attributes/KS.json", []byte("{}"))
	_ = s.Write("stats/2025-02-01/attributes/notes.txt", []byte("x"))
	_ = s.Write("stats/2025-01-01/attributes/KS.json", []byte("{}"))

	dirs, err := s.Dirs("stats")
	if err != nil {
		t.Fatalf("Dirs: %v", err)
	}
	if len(dirs) != 2 || dirs[0] != "2025-01-01" || dirs[1] != "2025-02-01" {
		t.Errorf("dirs = %v", dirs)
	}

	stems, ok, err := s.Files("stats/2025-02-01/attributes", ".json")
	if err != nil || !ok {
		t.Fatalf("Files: ok=%v err=%v", ok, err)
	}
	if len(stems) != 2 || stems[0] != "KS" || stems[1] != "PO" {
		t.Errorf("stems = %v", stems)
	}

	_, ok, err = s.Files("stats/2025-02-01/relation_attributes", ".json")
	if err != nil || ok {
		t.Errorf("missing dir: ok=%v err=%v", ok, err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.json",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(context.Background(), p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("metadata/node_index.json", []byte("v1"))
	if err := s.Write("metadata/node_index.json", []byte("v2")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read(context.Background(), "metadata/node_index.json")
	if string(got) != "v2" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, "metadata", ".metaviz-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "metaviz-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
