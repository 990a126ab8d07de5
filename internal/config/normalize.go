package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeAPI()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLibrary()
	c.normalizeRecords()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeAPI() {
	if value, ok := os.LookupEnv("ISODB_API_HOST"); ok && strings.TrimSpace(value) != "" {
		c.API.Host = value
	}
	c.API.Host = strings.TrimRight(strings.TrimSpace(c.API.Host), "/")
	if c.API.Host == "" {
		c.API.Host = defaultAPIHost
	}
	c.API.UserAgent = strings.TrimSpace(c.API.UserAgent)
	if c.API.UserAgent == "" {
		c.API.UserAgent = defaultUserAgent
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.library_dir", &c.Paths.LibraryDir, defaultLibraryDir},
		{"paths.doi_mapping_path", &c.Paths.DOIMappingPath, defaultDOIMappingPath},
		{"paths.adsorbents_dir", &c.Paths.AdsorbentsDir, defaultAdsorbentsDir},
		{"paths.adsorbates_dir", &c.Paths.AdsorbatesDir, defaultAdsorbatesDir},
		{"paths.bibliography_dir", &c.Paths.BibliographyDir, defaultBibliographyDir},
		{"paths.curation_dir", &c.Paths.CurationDir, defaultCurationDir},
		{"paths.manifest_path", &c.Paths.ManifestPath, defaultManifestPath},
		{"paths.repo_dir", &c.Paths.RepoDir, defaultRepoDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
	}
	for _, field := range fields {
		*field.value = strings.TrimSpace(*field.value)
		if *field.value == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(*field.value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeLibrary() {
	if c.Library.PauseEvery < 0 {
		c.Library.PauseEvery = 0
	}
	if c.Library.PauseSeconds < 0 {
		c.Library.PauseSeconds = 0
	}
}

func (c *Config) normalizeRecords() {
	keys := make([]string, 0, len(c.Records.CanonicalKeys))
	seen := make(map[string]struct{}, len(c.Records.CanonicalKeys))
	for _, key := range c.Records.CanonicalKeys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		keys = append(keys, DefaultCanonicalKeys...)
	}
	c.Records.CanonicalKeys = keys
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
