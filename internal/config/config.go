// Package config loads statsdash configuration from an optional YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when STATSDASH_CONFIG is not set.
const DefaultPath = "./statsdash.yaml"

// Config holds every recognized option. All options have defaults; an
// empty or missing config file yields a fully working configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string `yaml:"port"`

	// RecentHistorySize is the number of entries kept in the live
	// in-memory history.
	RecentHistorySize int `yaml:"recent_history_size"`

	// ConsolidationLimit is how many raw samples are collected before
	// they are consolidated into one history entry.
	ConsolidationLimit int `yaml:"consolidation_limit"`

	// UpdateFrequencySeconds is the cadence of the collection loop.
	UpdateFrequencySeconds int `yaml:"update_frequency_seconds"`

	// CPUSampleDurationMS is how long each CPU load measurement blocks.
	// Must be shorter than the update frequency.
	CPUSampleDurationMS int `yaml:"cpu_sample_duration_ms"`

	// PersistHistory toggles writing consolidated history to disk.
	PersistHistory *bool `yaml:"persist_history"`

	// HistoryFilesDirectory is where the history files are written.
	HistoryFilesDirectory string `yaml:"history_files_directory"`

	// HistoryFilesMaxSizeBytes bounds total on-disk history size.
	HistoryFilesMaxSizeBytes int64 `yaml:"history_files_max_size_bytes"`
}

// Load reads the config file (missing files are fine), applies
// environment overrides and defaults, and validates the result.
func Load() (*Config, error) {
	path := os.Getenv("STATSDASH_CONFIG")
	if path == "" {
		path = DefaultPath
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.HistoryFilesDirectory = getEnv("HISTORY_FILES_DIRECTORY", c.HistoryFilesDirectory)
	intEnv("RECENT_HISTORY_SIZE", &c.RecentHistorySize)
	intEnv("CONSOLIDATION_LIMIT", &c.ConsolidationLimit)
	intEnv("UPDATE_FREQUENCY_SECONDS", &c.UpdateFrequencySeconds)
	intEnv("CPU_SAMPLE_DURATION_MS", &c.CPUSampleDurationMS)
	if v := os.Getenv("PERSIST_HISTORY"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.PersistHistory = &enabled
		}
	}
	if v := os.Getenv("HISTORY_FILES_MAX_SIZE_BYTES"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.HistoryFilesMaxSizeBytes = size
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8000"
	}
	if c.RecentHistorySize == 0 {
		c.RecentHistorySize = 180
	}
	if c.ConsolidationLimit == 0 {
		c.ConsolidationLimit = 20
	}
	if c.UpdateFrequencySeconds == 0 {
		c.UpdateFrequencySeconds = 3
	}
	if c.CPUSampleDurationMS == 0 {
		c.CPUSampleDurationMS = 500
	}
	if c.PersistHistory == nil {
		enabled := true
		c.PersistHistory = &enabled
	}
	if c.HistoryFilesDirectory == "" {
		c.HistoryFilesDirectory = "./stats_history"
	}
	if c.HistoryFilesMaxSizeBytes == 0 {
		c.HistoryFilesMaxSizeBytes = 2_000_000
	}
}

func (c *Config) validate() error {
	if c.RecentHistorySize < 1 {
		return fmt.Errorf("recent_history_size must be positive")
	}
	if c.ConsolidationLimit < 1 {
		return fmt.Errorf("consolidation_limit must be positive")
	}
	if c.UpdateFrequencySeconds < 1 {
		return fmt.Errorf("update_frequency_seconds must be positive")
	}
	if c.CPUSampleDurationMS < 1 {
		return fmt.Errorf("cpu_sample_duration_ms must be positive")
	}
	if c.CPUSampleDuration() >= c.UpdateFrequency() {
		return fmt.Errorf("cpu_sample_duration_ms (%d) must be shorter than update_frequency_seconds (%d)",
			c.CPUSampleDurationMS, c.UpdateFrequencySeconds)
	}
	if c.PersistenceEnabled() {
		if c.HistoryFilesDirectory == "" {
			return fmt.Errorf("history_files_directory cannot be empty")
		}
		if c.HistoryFilesMaxSizeBytes < 1 {
			return fmt.Errorf("history_files_max_size_bytes must be positive")
		}
	}
	return nil
}

// UpdateFrequency returns the collection cadence as a duration.
func (c *Config) UpdateFrequency() time.Duration {
	return time.Duration(c.UpdateFrequencySeconds) * time.Second
}

// CPUSampleDuration returns the CPU sample window as a duration.
func (c *Config) CPUSampleDuration() time.Duration {
	return time.Duration(c.CPUSampleDurationMS) * time.Millisecond
}

// PersistenceEnabled reports whether history should be written to disk.
func (c *Config) PersistenceEnabled() bool {
	return c.PersistHistory != nil && *c.PersistHistory
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, dest *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dest = parsed
		}
	}
}
