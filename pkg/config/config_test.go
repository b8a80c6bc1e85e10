package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name" toml:"name"`
	Port  int    `yaml:"port" toml:"port"`
	Inner struct {
		Tags []string `yaml:"tags" toml:"tags"`
	} `yaml:"inner" toml:"inner"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv("METAVIZ_TEST_NAME", "from-env")
	path := writeFile(t, "c.yaml", "name: ${METAVIZ_TEST_NAME}\nport: 9000\ninner:\n  tags: [a, b]\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "from-env" || s.Port != 9000 || len(s.Inner.Tags) != 2 {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "c.toml", "name = \"viewer\"\nport = 8081\n\n[inner]\ntags = [\"x\"]\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "viewer" || s.Port != 8081 || len(s.Inner.Tags) != 1 {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeFile(t, "c.yaml", "name: x\nport: 0\n")
	var s sample
	err := Load(path, &s)
	if err == nil || !strings.Contains(err.Error(), "validation") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "none.yaml"), &s); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOptional_MissingValidatesDefaults(t *testing.T) {
	s := sample{Port: 1}
	if err := Optional(filepath.Join(t.TempDir(), "none.yaml"), &s); err != nil {
		t.Fatalf("Optional: %v", err)
	}
	s.Port = 0
	if err := Optional(filepath.Join(t.TempDir(), "none.yaml"), &s); err == nil {
		t.Fatal("expected validation error on defaults")
	}
}
