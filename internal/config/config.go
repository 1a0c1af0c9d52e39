// Package config provides application configuration management for daybook.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// HomeEnv overrides the configuration directory when set.
const HomeEnv = "DAYBOOK_HOME"

// Config holds the daybook configuration.
type Config struct {
	Theme     string          `json:"theme"`              // "dark" or "light"
	Language  string          `json:"language,omitempty"` // BCP 47 tag, empty = detect
	Scroll    ScrollConfig    `json:"scroll"`             // Feed scroll behaviour
	Journal   JournalConfig   `json:"journal"`            // Journal storage
	Server    ServerConfig    `json:"server"`             // daybook serve
	Responder ResponderConfig `json:"responder"`          // Assistant replies
}

// ScrollConfig tunes the feed's auto-follow and restoration behaviour.
// Distances are in terminal lines.
type ScrollConfig struct {
	FollowThreshold    int    `json:"follow_threshold"`     // Hide the follow button within this distance of the edge
	ProximityBand      int    `json:"proximity_band"`       // Re-enable follow within this distance of the edge
	NoiseThreshold     int    `json:"noise_threshold"`      // Ignore scroll-away movements up to this size
	SettleTimeout      string `json:"settle_timeout"`       // Max settling window after attach (e.g. "500ms")
	TargetCleanupDelay string `json:"target_cleanup_delay"` // Drop a consumed deep-link marker after this delay
	RestoreTolerance   int    `json:"restore_tolerance"`    // Skip restores that would move less than this
}

// SettleDuration returns the parsed settle timeout (default: 500ms).
func (c ScrollConfig) SettleDuration() time.Duration {
	return parseDuration(c.SettleTimeout, 500*time.Millisecond)
}

// CleanupDuration returns the parsed target cleanup delay (default: 1.5s).
func (c ScrollConfig) CleanupDuration() time.Duration {
	return parseDuration(c.TargetCleanupDelay, 1500*time.Millisecond)
}

// JournalConfig holds journal storage settings.
type JournalConfig struct {
	Path string `json:"path,omitempty"` // DuckDB file, empty = ~/.daybook/journal.duckdb
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ResponderConfig holds assistant reply settings.
type ResponderConfig struct {
	URL            string `json:"url,omitempty"`    // ws:// endpoint, empty = in-process
	CharsPerSecond int    `json:"chars_per_second"` // Streaming pace
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// Dir returns the path to the .daybook directory.
func Dir() (string, error) {
	if v := os.Getenv(HomeEnv); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".daybook"), nil
}

// Path returns the path to the main config file.
func Path() (string, error) {
	configDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// JournalPath returns the configured journal file, falling back to the
// default location inside Dir.
func (c Config) JournalPath() (string, error) {
	if c.Journal.Path != "" {
		return c.Journal.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal.duckdb"), nil
}

// SessionsDir returns the directory holding per-session scroll positions.
func SessionsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

// Load loads the configuration from ~/.daybook/config.json.
func Load() (Config, error) {
	configPath, err := Path()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		cfg := Default()
		if saveErr := Save(cfg); saveErr != nil {
			return cfg, nil // return defaults even if save fails
		}
		return cfg, nil
	} else if err != nil {
		return Config{}, err
	}

	// Start from defaults so missing keys keep their default values.
	config := Default()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	config.normalize()
	return config, nil
}

func (c *Config) normalize() {
	def := Default()
	if c.Theme != "dark" && c.Theme != "light" {
		c.Theme = def.Theme
	}
	if c.Scroll.FollowThreshold < 0 {
		c.Scroll.FollowThreshold = def.Scroll.FollowThreshold
	}
	if c.Scroll.ProximityBand < 0 {
		c.Scroll.ProximityBand = def.Scroll.ProximityBand
	}
	if c.Scroll.NoiseThreshold < 0 {
		c.Scroll.NoiseThreshold = def.Scroll.NoiseThreshold
	}
	if c.Scroll.RestoreTolerance < 0 {
		c.Scroll.RestoreTolerance = def.Scroll.RestoreTolerance
	}
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port <= 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Responder.CharsPerSecond <= 0 {
		c.Responder.CharsPerSecond = def.Responder.CharsPerSecond
	}
}

// Default returns a default configuration with all defaults set.
func Default() Config {
	return Config{
		Theme: "dark",
		Scroll: ScrollConfig{
			FollowThreshold:    3,
			ProximityBand:      0,
			NoiseThreshold:     0,
			SettleTimeout:      "500ms",
			TargetCleanupDelay: "1.5s",
			RestoreTolerance:   1,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8787,
		},
		Responder: ResponderConfig{
			CharsPerSecond: 120,
		},
	}
}

// Save saves the configuration to ~/.daybook/config.json.
func Save(config Config) error {
	configPath, err := Path()
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}
