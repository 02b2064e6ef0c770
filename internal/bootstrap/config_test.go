package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetupReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "SERVER_PORT=9090\nENGINE_PATH=/usr/bin/stockfish\nENGINE_DEPTH=18\nLOCAL_CORS=true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Setup(path)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("server port = %q, want 9090", cfg.ServerPort)
	}
	if cfg.EnginePath != "/usr/bin/stockfish" {
		t.Errorf("engine path = %q", cfg.EnginePath)
	}
	if cfg.EngineDepth != 18 {
		t.Errorf("engine depth = %d, want 18", cfg.EngineDepth)
	}
	if !cfg.IsLocalCors {
		t.Error("local cors not parsed")
	}
	// untouched fields fall back to defaults
	if cfg.EngineWorkers != 1 {
		t.Errorf("engine workers = %d, want default 1", cfg.EngineWorkers)
	}
}

func TestSetupMissingFile(t *testing.T) {
	if _, err := Setup(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Error("missing config file must be an error")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.ServerPort != "8080" {
		t.Errorf("server port = %q, want 8080", cfg.ServerPort)
	}
	if cfg.EngineDepth != 12 {
		t.Errorf("engine depth = %d, want 12", cfg.EngineDepth)
	}
	if cfg.DefaultTotalTime != 600 {
		t.Errorf("default total time = %v, want 600", cfg.DefaultTotalTime)
	}
}
