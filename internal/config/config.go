// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and live reload for palaver.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/palaver-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete client configuration.
type Config struct {
	// Identity the client presents to the service.
	Viewer ViewerConfig `toml:"viewer" json:"viewer"`

	// Service endpoint settings.
	Service ServiceConfig `toml:"service" json:"service"`

	// UI behavior.
	UI UIConfig `toml:"ui" json:"ui"`

	// Voice recording.
	Recording RecordingConfig `toml:"recording" json:"recording"`

	// Local cache storage.
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// ViewerConfig identifies the local user.
type ViewerConfig struct {
	// ID is the viewer's user id as known by the service.
	ID string `toml:"id" json:"id"`
	// Name is the display name shown on own messages.
	Name string `toml:"name" json:"name"`
}

// ServiceConfig locates the remote service.
type ServiceConfig struct {
	// URL of the chat service. Empty plus Offline=false is a config error.
	URL string `toml:"url" json:"url"`
	// Offline selects the in-process loopback transport.
	Offline bool `toml:"offline" json:"offline"`
	// EchoPeer makes the loopback answer sends (demo mode).
	EchoPeer bool `toml:"echo_peer" json:"echo_peer"`
}

// UIConfig holds view-layer knobs. These are the only settings live reload
// may change mid-session.
type UIConfig struct {
	// Theme is "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// TypingWindowMs is the typing debounce trailing window.
	TypingWindowMs int `toml:"typing_window_ms" json:"typing_window_ms"`
}

// RecordingConfig bounds voice capture.
type RecordingConfig struct {
	// MaxDurationSecs caps a single clip; hitting the cap still yields a
	// usable clip.
	MaxDurationSecs int `toml:"max_duration_secs" json:"max_duration_secs"`
}

// StorageConfig locates the local cache.
type StorageConfig struct {
	// CachePath is the SQLite cache file (empty = ~/.palaver/cache.db).
	CachePath string `toml:"cache_path" json:"cache_path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{ID: "me", Name: "You"},
		Service: ServiceConfig{
			Offline:  true,
			EchoPeer: true,
		},
		UI: UIConfig{
			Theme:          "dark",
			TypingWindowMs: 1000,
		},
		Recording: RecordingConfig{MaxDurationSecs: 60},
		Storage:   StorageConfig{},
	}
}

// TypingWindow returns the debounce window as a duration.
func (c *Config) TypingWindow() time.Duration {
	if c.UI.TypingWindowMs <= 0 {
		return time.Second
	}
	return time.Duration(c.UI.TypingWindowMs) * time.Millisecond
}

// MaxRecording returns the clip cap as a duration.
func (c *Config) MaxRecording() time.Duration {
	if c.Recording.MaxDurationSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Recording.MaxDurationSecs) * time.Second
}

// =============================================================================
// LOADING
// =============================================================================

// DefaultPath returns ~/.palaver/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".palaver", "config.toml"), nil
}

// Load reads the config file at path, layering it over defaults and then
// applying environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if strings.HasSuffix(path, ".json") {
				data, err := os.ReadFile(path)
				if err != nil {
					return nil, err
				}
				if err := json.Unmarshal(data, cfg); err != nil {
					return nil, fmt.Errorf("failed to parse %s: %w", path, err)
				}
			} else if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers PALAVER_* environment variables over the file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PALAVER_VIEWER_ID"); v != "" {
		cfg.Viewer.ID = v
	}
	if v := os.Getenv("PALAVER_SERVICE_URL"); v != "" {
		cfg.Service.URL = v
		cfg.Service.Offline = false
	}
	if v := os.Getenv("PALAVER_OFFLINE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Service.Offline = b
		}
	}
	if v := os.Getenv("PALAVER_THEME"); v != "" {
		cfg.UI.Theme = v
	}
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	if c.Viewer.ID == "" {
		return fmt.Errorf("viewer.id must not be empty")
	}
	if !c.Service.Offline && c.Service.URL == "" {
		return fmt.Errorf("service.url required unless service.offline is set")
	}
	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("ui.theme must be \"dark\" or \"light\", got %q", c.UI.Theme)
	}
	if c.UI.TypingWindowMs < 0 {
		return fmt.Errorf("ui.typing_window_ms must not be negative")
	}
	if c.Recording.MaxDurationSecs < 0 {
		return fmt.Errorf("recording.max_duration_secs must not be negative")
	}
	return nil
}

// Save writes the config as TOML, atomically.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0644)
}
