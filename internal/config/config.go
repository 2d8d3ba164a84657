// Package config manages global (~/.config/memweave/config.toml) and
// per-project (.memweave/config.toml) configuration for Memweave.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// GlobalConfig holds user-wide settings.
type GlobalConfig struct {
	Keys       KeysConfig       `toml:"keys"`
	Session    SessionConfig    `toml:"session"`
	Linker     LinkerConfig     `toml:"linker"`
	Enrichment EnrichmentConfig `toml:"enrichment"`
	Output     OutputConfig     `toml:"output"`
}

type KeysConfig struct {
	Anthropic string `toml:"anthropic"`
	OpenAI    string `toml:"openai"`
}

// SessionConfig controls the activity tracker lifecycle.
type SessionConfig struct {
	TimeoutMinutes     int    `toml:"timeout_minutes"`      // idle minutes before a session is force-closed
	MinDurationMinutes int    `toml:"min_duration_minutes"` // shorter non-manual sessions are discarded
	AutoSaveMinutes    int    `toml:"auto_save_minutes"`    // history persistence cadence
	MaxBufferSize      int    `toml:"max_buffer_size"`      // rolling activity buffer cap
	DataDir            string `toml:"data_dir"`             // relative to .memweave/ unless absolute
}

// LinkerConfig controls the relationship scoring engine.
type LinkerConfig struct {
	SimilarityThreshold   float64 `toml:"similarity_threshold"`
	MinSharedWords        int     `toml:"min_shared_words"`
	TemporalWindowMinutes int     `toml:"temporal_window_minutes"`
	SourceTokenCap        int     `toml:"source_token_cap"`
}

// EnrichmentConfig controls the optional LLM title pass on persisted
// session summaries. Disabled by default; the summarizer itself never
// calls an LLM.
type EnrichmentConfig struct {
	Enabled   bool   `toml:"enabled"`
	Provider  string `toml:"provider"` // claude, openai, ollama
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
	Host      string `toml:"host"` // Ollama base URL
}

type OutputConfig struct {
	Color   bool `toml:"color"`
	Verbose bool `toml:"verbose"`
}

// ProjectConfig holds per-project overrides stored in .memweave/config.toml.
type ProjectConfig struct {
	Project ProjectMeta `toml:"project"`
}

type ProjectMeta struct {
	Name string `toml:"name"`
}

// DefaultGlobal returns sensible defaults.
func DefaultGlobal() GlobalConfig {
	return GlobalConfig{
		Session: SessionConfig{
			TimeoutMinutes:     30,
			MinDurationMinutes: 5,
			AutoSaveMinutes:    5,
			MaxBufferSize:      1000,
			DataDir:            "data",
		},
		Linker: LinkerConfig{
			SimilarityThreshold:   0.15,
			MinSharedWords:        2,
			TemporalWindowMinutes: 120,
			SourceTokenCap:        20,
		},
		Enrichment: EnrichmentConfig{
			Enabled:   false,
			Provider:  "claude",
			MaxTokens: 128,
			Host:      "http://localhost:11434",
		},
		Output: OutputConfig{
			Color: true,
		},
	}
}

// SessionTimeout returns the configured timeout as a duration.
func (c SessionConfig) SessionTimeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// MinSessionDuration returns the configured minimum as a duration.
func (c SessionConfig) MinSessionDuration() time.Duration {
	return time.Duration(c.MinDurationMinutes) * time.Minute
}

// AutoSaveInterval returns the configured autosave cadence as a duration.
func (c SessionConfig) AutoSaveInterval() time.Duration {
	return time.Duration(c.AutoSaveMinutes) * time.Minute
}

// TemporalWindow returns the temporal proximity window as a duration.
func (c LinkerConfig) TemporalWindow() time.Duration {
	return time.Duration(c.TemporalWindowMinutes) * time.Minute
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "memweave", "config.toml"), nil
}

// LoadGlobal loads the global config, applying defaults for any missing values.
func LoadGlobal() (GlobalConfig, error) {
	cfg := DefaultGlobal()

	path, err := GlobalConfigPath()
	if err != nil {
		return cfg, nil // Return defaults if we can't determine home dir.
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // File doesn't exist yet; use defaults.
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: load global: %w", err)
	}

	// Let env vars override config file API keys.
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Keys.Anthropic = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Keys.OpenAI = v
	}

	return cfg, nil
}

// SaveGlobal writes the global config to disk.
func SaveGlobal(cfg GlobalConfig) error {
	path, err := GlobalConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create global config: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// LoadProject loads .memweave/config.toml from the given project root.
func LoadProject(root string) (ProjectConfig, error) {
	var cfg ProjectConfig
	path := filepath.Join(root, ".memweave", "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: load project: %w", err)
	}
	return cfg, nil
}

// SaveProject writes the project config to .memweave/config.toml.
func SaveProject(root string, cfg ProjectConfig) error {
	dir := filepath.Join(root, ".memweave")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: mkdir project: %w", err)
	}

	path := filepath.Join(dir, "config.toml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create project config: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// ProjectDBPath returns the path to the project's SQLite database.
func ProjectDBPath(root string) string {
	return filepath.Join(root, ".memweave", "memweave.db")
}

// DataDirPath resolves the session data directory for a project root.
// Relative data_dir values are rooted under .memweave/.
func DataDirPath(root string, cfg SessionConfig) string {
	if filepath.IsAbs(cfg.DataDir) {
		return cfg.DataDir
	}
	dir := cfg.DataDir
	if dir == "" {
		dir = "data"
	}
	return filepath.Join(root, ".memweave", dir)
}
