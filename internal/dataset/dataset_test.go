package dataset_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"scentlog/internal/dataset"
	"scentlog/internal/testsupport"
)

const sample = "Brand,Name,Rating\nAcme,Rose,8\n"

func TestDefaultFromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/constants.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	loader := dataset.NewLoader(srv.URL+"/constants.csv", time.Second)
	if got := loader.Default(context.Background()); got != sample {
		t.Fatalf("Default = %q, want %q", got, sample)
	}

	missing := dataset.NewLoader(srv.URL+"/other.csv", time.Second)
	if got := missing.Default(context.Background()); got != "" {
		t.Fatalf("expected empty text on 404, got %q", got)
	}
	if _, err := missing.Fetch(context.Background()); err == nil {
		t.Fatal("expected Fetch error on 404")
	}
}

func TestDefaultFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "constants.csv")
	testsupport.WriteFile(t, path, []byte(sample))

	if got := dataset.NewLoader(path, 0).Default(context.Background()); got != sample {
		t.Fatalf("Default = %q", got)
	}
	if got := dataset.NewLoader(path+".missing", 0).Default(context.Background()); got != "" {
		t.Fatalf("expected empty text for missing file, got %q", got)
	}
}

func TestDefaultDisabled(t *testing.T) {
	loader := dataset.NewLoader("  ", 0)
	if got := loader.Default(context.Background()); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDefaultDataset(sample))
	loader := dataset.FromConfig(cfg, nil)
	if loader.Location() != cfg.Dataset.DefaultURL {
		t.Fatalf("Location = %q", loader.Location())
	}
	if got := loader.Default(context.Background()); got != sample {
		t.Fatalf("Default = %q", got)
	}
}
