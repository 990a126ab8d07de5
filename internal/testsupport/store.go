package testsupport

import (
	"testing"

	"isodb/internal/config"
	"isodb/internal/manifest"
)

// MustOpenManifest opens the manifest configured in cfg and registers cleanup.
func MustOpenManifest(t testing.TB, cfg *config.Config) *manifest.Store {
	t.Helper()

	store, err := manifest.Open(cfg.Paths.ManifestPath)
	if err != nil {
		t.Fatalf("manifest.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
