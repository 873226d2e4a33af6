package testsupport

import (
	"path/filepath"
	"testing"

	"scentlog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ImagesDir = filepath.Join(base, "images")
	cfgVal.Dataset.DefaultURL = ""
	cfgVal.History.RepoDir = filepath.Join(base, "repo")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDefaultDataset points the bootstrap source at a CSV file written with
// the given contents.
func WithDefaultDataset(csv string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "constants.csv")
		WriteFile(b.t, path, []byte(csv))
		b.cfg.Dataset.DefaultURL = path
	}
}

// WithDefaultURL sets the bootstrap source location.
func WithDefaultURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dataset.DefaultURL = url
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
