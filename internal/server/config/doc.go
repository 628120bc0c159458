// Package config provides server configuration for linekv.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (address formats, limits, log settings)
//   - node.go: Node identity
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// LINEKV_ environment variables and command-line overrides.
package config
