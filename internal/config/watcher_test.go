package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cleancodehq/usermgmt/internal/logger"
)

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	writeConfig := func(token string) {
		t.Helper()
		doc := "auth:\n  admin_token: " + token + "\n"
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}

	writeConfig("before")

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	w, err := NewWatcher(path, cfg, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	changed := make(chan Config, 1)
	w.OnChange(func(_, next Config) {
		changed <- next
	})
	w.Start()
	defer w.Stop()

	writeConfig("after")

	select {
	case next := <-changed:
		if next.AdminToken != "after" {
			t.Fatalf("expected reloaded token, got %q", next.AdminToken)
		}
		if w.Current().AdminToken != "after" {
			t.Fatalf("expected Current to track reload, got %q", w.Current().AdminToken)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for config reload")
	}
}

func TestWatcherKeepsOldConfigOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("auth:\n  admin_token: good\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	w, err := NewWatcher(path, cfg, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.Start()
	defer w.Stop()

	if err := os.WriteFile(path, []byte("{broken yaml"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// Give the watcher time to see the event and reject the reload.
	time.Sleep(5 * reloadDebounce)

	if w.Current().AdminToken != "good" {
		t.Fatalf("expected previous config to survive bad reload, got %q", w.Current().AdminToken)
	}
}

func TestWatcherDrivesLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	writeConfig := func(env string) {
		t.Helper()
		doc := "env: " + env + "\nauth:\n  admin_token: tok\n"
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}

	writeConfig("production")

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	level := new(slog.LevelVar)
	level.Set(logger.LevelFor(cfg.Env))
	if level.Level() != slog.LevelInfo {
		t.Fatalf("expected info level for production, got %v", level.Level())
	}

	w, err := NewWatcher(path, cfg, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	adjusted := make(chan slog.Level, 1)
	w.OnChange(func(old, next Config) {
		if old.Env != next.Env {
			level.Set(logger.LevelFor(next.Env))
			adjusted <- level.Level()
		}
	})
	w.Start()
	defer w.Stop()

	writeConfig("development")

	select {
	case got := <-adjusted:
		if got != slog.LevelDebug {
			t.Fatalf("expected debug level after reload, got %v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for log level adjustment")
	}
}

func TestNewWatcherRequiresPath(t *testing.T) {
	if _, err := NewWatcher("", Config{}, nil); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
