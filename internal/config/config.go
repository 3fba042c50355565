package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Audio    AudioConfig    `yaml:"audio"`
	Remote   RemoteConfig   `yaml:"remote"`
	Dialogue DialogueConfig `yaml:"dialogue"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// HTTPConfig contains HTTP API server configuration
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// AudioConfig contains audio capture and playback parameters
type AudioConfig struct {
	InputSampleRate  int `yaml:"input_sample_rate"`  // Hz, capture side
	OutputSampleRate int `yaml:"output_sample_rate"` // Hz, playback side
	FrameSize        int `yaml:"frame_size"`         // samples per capture frame
	Channels         int `yaml:"channels"`
	BitDepth         int `yaml:"bit_depth"`
}

// RemoteConfig contains the remote streaming dialogue service configuration.
// When no API key is set the session falls back to the local speech pipeline.
type RemoteConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	Voice          string `yaml:"voice"`
	ConnectTimeout int    `yaml:"connect_timeout"` // seconds
}

// DialogueConfig contains local dialogue engine parameters
type DialogueConfig struct {
	Language       string `yaml:"language"`         // spoken-language locale, e.g. ur-PK
	EndCallGrace   int    `yaml:"end_call_grace"`   // seconds before teardown after end_call
	MinPhoneDigits int    `yaml:"min_phone_digits"` // shortest accepted phone number
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Remote.Validate(); err != nil {
		return fmt.Errorf("remote config: %w", err)
	}

	if err := c.Dialogue.Validate(); err != nil {
		return fmt.Errorf("dialogue config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
		}

		if h.Address == "" {
			return fmt.Errorf("address cannot be empty when HTTP is enabled")
		}
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if a.InputSampleRate < 8000 || a.InputSampleRate > 48000 {
		return fmt.Errorf("input_sample_rate must be between 8000 and 48000 Hz, got %d", a.InputSampleRate)
	}

	if a.OutputSampleRate < 8000 || a.OutputSampleRate > 48000 {
		return fmt.Errorf("output_sample_rate must be between 8000 and 48000 Hz, got %d", a.OutputSampleRate)
	}

	if a.FrameSize < 256 || a.FrameSize > 16384 {
		return fmt.Errorf("frame_size must be between 256 and 16384 samples, got %d", a.FrameSize)
	}

	if a.Channels != 1 {
		return fmt.Errorf("channels must be 1 (mono), got %d", a.Channels)
	}

	if a.BitDepth != 16 {
		return fmt.Errorf("bit_depth must be 16 for PCM transport, got %d", a.BitDepth)
	}

	return nil
}

// Validate validates remote service configuration. An empty API key is valid
// and selects the local fallback pipeline; a configured key requires the
// remaining connection parameters.
func (r *RemoteConfig) Validate() error {
	if r.APIKey == "" {
		return nil
	}

	if r.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty when api_key is set")
	}

	if r.Model == "" {
		return fmt.Errorf("model cannot be empty when api_key is set")
	}

	if r.ConnectTimeout < 1 {
		return fmt.Errorf("connect_timeout must be at least 1 second, got %d", r.ConnectTimeout)
	}

	return nil
}

// Validate validates dialogue configuration
func (d *DialogueConfig) Validate() error {
	if d.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}

	if d.EndCallGrace < 1 {
		return fmt.Errorf("end_call_grace must be at least 1 second, got %d", d.EndCallGrace)
	}

	if d.MinPhoneDigits < 1 {
		return fmt.Errorf("min_phone_digits must be at least 1, got %d", d.MinPhoneDigits)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// Enabled reports whether a remote streaming service is configured.
func (r *RemoteConfig) Enabled() bool {
	return r.APIKey != ""
}

// GetConnectTimeout returns the remote connect timeout as a time.Duration
func (r *RemoteConfig) GetConnectTimeout() time.Duration {
	return time.Duration(r.ConnectTimeout) * time.Second
}

// GetEndCallGrace returns the end-call grace delay as a time.Duration
func (d *DialogueConfig) GetEndCallGrace() time.Duration {
	return time.Duration(d.EndCallGrace) * time.Second
}
