// Package config loads, normalizes, and validates isodb configuration data.
//
// It supplies repository defaults (API host, library layout, the canonical key
// allow-list, the pressure unit table), expands user paths including tilde
// shortcuts, reads TOML files, and honours the ISODB_API_HOST environment
// override. The Config type centralizes every knob the CLI needs so the
// normalizer and mirror commands see sanitized paths in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clear validation errors.
package config
