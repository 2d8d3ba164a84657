package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultGlobal(t *testing.T) {
	cfg := DefaultGlobal()

	if cfg.Session.TimeoutMinutes != 30 {
		t.Errorf("session timeout: got %d, want 30", cfg.Session.TimeoutMinutes)
	}
	if cfg.Session.MinDurationMinutes != 5 {
		t.Errorf("min duration: got %d, want 5", cfg.Session.MinDurationMinutes)
	}
	if cfg.Session.AutoSaveMinutes != 5 {
		t.Errorf("auto save: got %d, want 5", cfg.Session.AutoSaveMinutes)
	}
	if cfg.Session.MaxBufferSize != 1000 {
		t.Errorf("max buffer size: got %d, want 1000", cfg.Session.MaxBufferSize)
	}
	if cfg.Session.DataDir != "data" {
		t.Errorf("data dir: got %q, want %q", cfg.Session.DataDir, "data")
	}
	if cfg.Linker.SimilarityThreshold != 0.15 {
		t.Errorf("similarity threshold: got %f, want 0.15", cfg.Linker.SimilarityThreshold)
	}
	if cfg.Linker.MinSharedWords != 2 {
		t.Errorf("min shared words: got %d, want 2", cfg.Linker.MinSharedWords)
	}
	if cfg.Linker.TemporalWindowMinutes != 120 {
		t.Errorf("temporal window: got %d, want 120", cfg.Linker.TemporalWindowMinutes)
	}
	if cfg.Linker.SourceTokenCap != 20 {
		t.Errorf("source token cap: got %d, want 20", cfg.Linker.SourceTokenCap)
	}
	if cfg.Enrichment.Enabled {
		t.Error("enrichment should default to disabled")
	}
	if cfg.Enrichment.Provider != "claude" {
		t.Errorf("enrichment provider: got %q", cfg.Enrichment.Provider)
	}
	if !cfg.Output.Color {
		t.Error("color should default to true")
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := DefaultGlobal()

	if got := cfg.Session.SessionTimeout(); got != 30*time.Minute {
		t.Errorf("SessionTimeout: got %v", got)
	}
	if got := cfg.Session.MinSessionDuration(); got != 5*time.Minute {
		t.Errorf("MinSessionDuration: got %v", got)
	}
	if got := cfg.Session.AutoSaveInterval(); got != 5*time.Minute {
		t.Errorf("AutoSaveInterval: got %v", got)
	}
	if got := cfg.Linker.TemporalWindow(); got != 2*time.Hour {
		t.Errorf("TemporalWindow: got %v", got)
	}
}

func TestProjectDBPath(t *testing.T) {
	got := ProjectDBPath("/home/user/project")
	want := filepath.Join("/home/user/project", ".memweave", "memweave.db")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDataDirPath(t *testing.T) {
	cfg := DefaultGlobal().Session

	got := DataDirPath("/home/user/project", cfg)
	want := filepath.Join("/home/user/project", ".memweave", "data")
	if got != want {
		t.Errorf("relative: got %q, want %q", got, want)
	}

	cfg.DataDir = "/var/lib/memweave"
	if got := DataDirPath("/home/user/project", cfg); got != "/var/lib/memweave" {
		t.Errorf("absolute: got %q", got)
	}

	cfg.DataDir = ""
	got = DataDirPath("/home/user/project", cfg)
	if got != want {
		t.Errorf("empty falls back to default: got %q", got)
	}
}

func TestLoadProject_NoFile(t *testing.T) {
	cfg, err := LoadProject(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Project.Name != "" {
		t.Errorf("expected empty project name, got %q", cfg.Project.Name)
	}
}

func TestSaveAndLoadProject(t *testing.T) {
	dir := t.TempDir()
	cfg := ProjectConfig{Project: ProjectMeta{Name: "testproj"}}

	if err := SaveProject(dir, cfg); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}

	loaded, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if loaded.Project.Name != "testproj" {
		t.Errorf("project name: got %q, want %q", loaded.Project.Name, "testproj")
	}
}

func TestLoadGlobal_EnvOverrides(t *testing.T) {
	os.Setenv("ANTHROPIC_API_KEY", "test-key-123")
	defer os.Unsetenv("ANTHROPIC_API_KEY")

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.Keys.Anthropic != "test-key-123" {
		t.Errorf("expected env override, got %q", cfg.Keys.Anthropic)
	}
}

func TestGlobalConfigPath(t *testing.T) {
	path, err := GlobalConfigPath()
	if err != nil {
		t.Fatalf("GlobalConfigPath: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("expected config.toml, got %q", filepath.Base(path))
	}
}
