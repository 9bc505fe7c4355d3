// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the application configuration structure
// including server settings, the content source set, name resolution entries,
// and probe/fetch timing.
package config
