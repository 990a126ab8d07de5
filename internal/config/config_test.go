package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"isodb/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "isodb", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	wantManifest := filepath.Join(tempHome, ".local", "share", "isodb", "manifest.db")
	if cfg.Paths.ManifestPath != wantManifest {
		t.Fatalf("unexpected manifest path: got %q want %q", cfg.Paths.ManifestPath, wantManifest)
	}
	if !filepath.IsAbs(cfg.Paths.LibraryDir) {
		t.Fatalf("expected absolute library dir, got %q", cfg.Paths.LibraryDir)
	}
	if cfg.API.Host != "https://adsorption.nist.gov" {
		t.Fatalf("unexpected api host: %q", cfg.API.Host)
	}
	if len(cfg.Records.CanonicalKeys) != len(config.DefaultCanonicalKeys) {
		t.Fatalf("expected default canonical keys, got %v", cfg.Records.CanonicalKeys)
	}
	if cfg.Library.PauseEvery != 10 || cfg.Library.PauseSeconds != 5 {
		t.Fatalf("unexpected throttle defaults: %+v", cfg.Library)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "isodb.toml")

	type payload struct {
		API struct {
			Host string `toml:"host"`
		} `toml:"api"`
		Library struct {
			PauseEvery int `toml:"pause_every"`
		} `toml:"library"`
		Records struct {
			CanonicalKeys []string           `toml:"canonical_keys"`
			PressureUnits map[string]float64 `toml:"pressure_units"`
		} `toml:"records"`
	}
	custom := payload{}
	custom.API.Host = "http://localhost:8000/"
	custom.Library.PauseEvery = 3
	custom.Records.CanonicalKeys = []string{"adsorbates", " adsorbates ", "", "isotherm_data"}
	custom.Records.PressureUnits = map[string]float64{"kbar": 1000}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.API.Host != "http://localhost:8000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.Host)
	}
	if cfg.Library.PauseEvery != 3 {
		t.Fatalf("expected pause_every 3, got %d", cfg.Library.PauseEvery)
	}
	if got := cfg.Records.CanonicalKeys; len(got) != 2 || got[0] != "adsorbates" || got[1] != "isotherm_data" {
		t.Fatalf("expected deduplicated canonical keys, got %v", got)
	}
	factors := cfg.PressureUnitFactors()
	if factors["kbar"] != 1000 {
		t.Fatalf("expected configured unit to be merged, got %v", factors["kbar"])
	}
	if factors["bar"] != 1 {
		t.Fatalf("expected built-in bar factor, got %v", factors["bar"])
	}
}

func TestEnvOverridesAPIHost(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ISODB_API_HOST", "http://mirror.example.org")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.Host != "http://mirror.example.org" {
		t.Fatalf("expected env host, got %q", cfg.API.Host)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"scheme":      func(c *config.Config) { c.API.Host = "ftp://example.org" },
		"format":      func(c *config.Config) { c.Logging.Format = "xml" },
		"level":       func(c *config.Config) { c.Logging.Level = "trace" },
		"unit factor": func(c *config.Config) { c.Records.PressureUnits = map[string]float64{"bad": -1} },
		"stub rule":   func(c *config.Config) { c.Library.DOIStubRules = []config.StubRule{{Old: "", New: "x"}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestStubForDOI(t *testing.T) {
	cfg := config.Default()
	if got := cfg.StubForDOI("10.1021/la00001a001"); got != "la00001a001" {
		t.Fatalf("unexpected stub: %q", got)
	}
	if got := cfg.StubForDOI("10.1016/j.micromeso.2010.01.001"); got != "micromeso201001001" {
		t.Fatalf("unexpected stub: %q", got)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load, exists=%v err=%v", exists, err)
	}
}
