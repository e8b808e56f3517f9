// Package config loads, normalizes, and validates the tidy configuration.
//
// Configuration is read once at process start from a TOML file and is
// immutable afterwards: watched roots, category rules, and the archive policy
// all require a restart to change. Malformed configuration is a fatal startup
// error; the daemon refuses to run with ambiguous rules.
package config
