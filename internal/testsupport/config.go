package testsupport

import (
	"path/filepath"
	"testing"

	"isodb/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Pauses between mirrored articles are disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.API.Host = "http://127.0.0.1:0"
	cfgVal.Paths = config.Paths{
		LibraryDir:      filepath.Join(base, "JSON_Library"),
		DOIMappingPath:  filepath.Join(base, "DOI_mapping.csv"),
		AdsorbentsDir:   filepath.Join(base, "Adsorbents"),
		AdsorbatesDir:   filepath.Join(base, "Adsorbates"),
		BibliographyDir: filepath.Join(base, "Bibliography"),
		CurationDir:     filepath.Join(base, "curation"),
		ManifestPath:    filepath.Join(base, "state", "manifest.db"),
		LogDir:          filepath.Join(base, "logs"),
		RepoDir:         base,
	}
	cfgVal.Library.PauseSeconds = 0

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

// WithAPIHost points the test config at a fake ISODB server.
func WithAPIHost(host string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.Host = host
	}
}

// WithPauseEvery sets how many articles are mirrored between pauses.
func WithPauseEvery(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Library.PauseEvery = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.RepoDir
}
