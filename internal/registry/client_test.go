package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/skills/pdf" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"pdf","version":"1.2.0","archive_url":"https://cdn.example.com/pdf-1.2.0.tar.gz"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	pkg, err := c.Resolve(context.Background(), "pdf")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if pkg.Name != "pdf" || pkg.Version != "1.2.0" {
		t.Errorf("pkg = %+v", pkg)
	}
	if pkg.ArchiveURL != "https://cdn.example.com/pdf-1.2.0.tar.gz" {
		t.Errorf("ArchiveURL = %q", pkg.ArchiveURL)
	}
}

func TestResolveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Resolve(context.Background(), "ghost"); err == nil {
		t.Error("expected error for unknown package")
	}
}

func TestResolveMissingArchiveURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"pdf","version":"1.0.0"}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Resolve(context.Background(), "pdf"); err == nil {
		t.Error("expected error for response without archive_url")
	}
}

func TestResolveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Resolve(context.Background(), "pdf"); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestNewDefaultsBaseURL(t *testing.T) {
	c := New("")
	if c.baseURL != defaultAPIBase {
		t.Errorf("baseURL = %q, want %q", c.baseURL, defaultAPIBase)
	}
	c = New("https://skills.internal/")
	if c.baseURL != "https://skills.internal" {
		t.Errorf("baseURL = %q, trailing slash should be trimmed", c.baseURL)
	}
}
