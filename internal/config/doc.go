// Package config loads, normalizes, and validates scentlog configuration.
//
// It supplies XDG-based defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GITHUB_TOKEN and SCENTLOG_DEFAULT_URL. Always obtain settings through this
// package so downstream code receives sanitized paths, canonical log formats,
// and clear validation errors.
package config
