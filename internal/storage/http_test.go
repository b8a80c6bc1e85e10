package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/metaviz/internal/apperr"
)

func TestHTTP_ReadOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/stats/index.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"snapshots":[]}`))
	}))
	defer srv.Close()

	p, err := NewHTTP(srv.URL+"/data/", nil)
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	got, err := p.Read(context.Background(), "stats/index.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != `{"snapshots":[]}` {
		t.Errorf("body = %q", got)
	}
}

func TestHTTP_StatusErrorCarriesURLAndCode(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p, _ := NewHTTP(srv.URL, nil)
	_, err := p.Read(context.Background(), "stats/2025-01-01/relation_attributes/PO_je_gestor_KS.json")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", se.StatusCode)
	}
	if !strings.Contains(err.Error(), "PO_je_gestor_KS.json") || !strings.Contains(err.Error(), "404") {
		t.Errorf("message lacks url or status: %v", err)
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Error("404 should match ErrNotFound")
	}
}

func TestHTTP_EscapesSegments(t *testing.T) {
	p, _ := NewHTTP("http://example.org/data", nil)
	got := p.Location("stats/2025-01-01/attributes/A B.json")
	if got != "http://example.org/data/stats/2025-01-01/attributes/A%20B.json" {
		t.Errorf("location = %q", got)
	}
}

func TestNewHTTP_RejectsScheme(t *testing.T) {
	if _, err := NewHTTP("ftp://example.org", nil); err == nil {
		t.Error("expected error for ftp scheme")
	}
}
