// Package config provides configuration loading and validation for the voice
// session service. It handles YAML-based configuration with per-section
// validation, covering the HTTP API, audio pipeline, remote dialogue service,
// local dialogue engine, and logging.
package config
