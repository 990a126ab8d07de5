package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// API contains connection settings for the remote ISODB service.
type API struct {
	Host           string `toml:"host"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Paths contains the local library layout.
type Paths struct {
	LibraryDir      string `toml:"library_dir"`
	DOIMappingPath  string `toml:"doi_mapping_path"`
	AdsorbentsDir   string `toml:"adsorbents_dir"`
	AdsorbatesDir   string `toml:"adsorbates_dir"`
	BibliographyDir string `toml:"bibliography_dir"`
	CurationDir     string `toml:"curation_dir"`
	ManifestPath    string `toml:"manifest_path"`
	LogDir          string `toml:"log_dir"`
	RepoDir         string `toml:"repo_dir"`
}

// StubRule is a single literal substitution applied to a DOI to derive its
// library folder name.
type StubRule struct {
	Old string `toml:"old"`
	New string `toml:"new"`
}

// Library contains settings for mirroring the remote database.
type Library struct {
	PauseEvery   int        `toml:"pause_every"`
	PauseSeconds int        `toml:"pause_seconds"`
	DOIStubRules []StubRule `toml:"doi_stub_rules"`
}

// Records contains settings that shape accepted isotherm records.
type Records struct {
	CanonicalKeys []string           `toml:"canonical_keys"`
	PressureUnits map[string]float64 `toml:"pressure_units"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the isodb tool.
//
// Configuration sections by subsystem:
//   - API: remote ISODB host and request settings
//   - Paths: local library directories and bookkeeping files
//   - Library: mirror throttling and DOI folder naming
//   - Records: canonical key allow-list and pressure unit factors
//   - Logging: log format and level
type Config struct {
	API     API     `toml:"api"`
	Paths   Paths   `toml:"paths"`
	Library Library `toml:"library"`
	Records Records `toml:"records"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/isodb/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("isodb.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the library directories used by mirror commands.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LibraryDir, c.Paths.AdsorbentsDir, c.Paths.AdsorbatesDir, c.Paths.BibliographyDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PressureUnitFactors returns the built-in unit-to-bar table with any
// configured overrides applied.
func (c *Config) PressureUnitFactors() map[string]float64 {
	out := make(map[string]float64, len(builtinPressureUnits)+len(c.Records.PressureUnits))
	for unit, factor := range builtinPressureUnits {
		out[unit] = factor
	}
	for unit, factor := range c.Records.PressureUnits {
		out[unit] = factor
	}
	return out
}

// StubForDOI shortens a DOI into a folder name by applying the configured
// substitution rules in order.
func (c *Config) StubForDOI(doi string) string {
	stub := doi
	for _, rule := range c.Library.DOIStubRules {
		stub = strings.ReplaceAll(stub, rule.Old, rule.New)
	}
	return stub
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
