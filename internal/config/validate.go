package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateRecords(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAPI() error {
	parsed, err := url.Parse(c.API.Host)
	if err != nil {
		return fmt.Errorf("api.host: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.host must use http or https, got %q", c.API.Host)
	}
	if parsed.Host == "" {
		return fmt.Errorf("api.host must include a host name, got %q", c.API.Host)
	}
	return nil
}

func (c *Config) validateRecords() error {
	for unit, factor := range c.Records.PressureUnits {
		if unit == "" {
			return errors.New("records.pressure_units contains an empty unit name")
		}
		if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
			return fmt.Errorf("records.pressure_units.%s must be a positive finite factor", unit)
		}
	}
	return nil
}

func (c *Config) validateLibrary() error {
	for i, rule := range c.Library.DOIStubRules {
		if rule.Old == "" {
			return fmt.Errorf("library.doi_stub_rules[%d].old must not be empty", i)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
