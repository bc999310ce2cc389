package config

import (
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvPort, EnvLogLevel, EnvDataDir, EnvProjectsDir, EnvFFprobe,
		EnvComponentsDir, EnvDeleteTimeout, EnvAutosaveInterval,
		EnvStorageURL, EnvStorageToken,
	} {
		t.Setenv(name, "")
	}
}

func TestNew_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDataDir, "/data")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Port() != DefaultPort || cfg.LogLevel() != "info" {
		t.Errorf("port/log level = %d/%s", cfg.Port(), cfg.LogLevel())
	}
	if cfg.DBPath() != filepath.Join("/data", "studio.db") {
		t.Errorf("DBPath() = %s", cfg.DBPath())
	}
	if cfg.ProjectsDir() != filepath.Join("/data", "projects") {
		t.Errorf("ProjectsDir() = %s", cfg.ProjectsDir())
	}
	if cfg.ComponentsDir() != filepath.Join("/data", "components") {
		t.Errorf("ComponentsDir() = %s", cfg.ComponentsDir())
	}
	if cfg.FFprobe() != "ffprobe" {
		t.Errorf("FFprobe() = %s", cfg.FFprobe())
	}
	if cfg.DeleteTimeout() != 30*time.Second || cfg.AutosaveInterval() != 10*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.DeleteTimeout(), cfg.AutosaveInterval())
	}
}

func TestNew_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPort, "9000")
	t.Setenv(EnvProjectsDir, "/work")
	t.Setenv(EnvBundler, "")
	t.Setenv(EnvDeleteTimeout, "5")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Port() != 9000 || cfg.ProjectsDir() != "/work" {
		t.Errorf("port/projects = %d/%s", cfg.Port(), cfg.ProjectsDir())
	}
	if cfg.Bundler() != "" {
		t.Errorf("Bundler() = %q, want disabled", cfg.Bundler())
	}
	if cfg.DeleteTimeout() != 5*time.Second {
		t.Errorf("DeleteTimeout() = %v", cfg.DeleteTimeout())
	}
}

func TestNew_RemoteStorage(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvStorageURL, "http://studio.local:8790/")
	t.Setenv(EnvStorageToken, "tok")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.StorageURL() != "http://studio.local:8790" || cfg.StorageToken() != "tok" {
		t.Errorf("storage = %q/%q", cfg.StorageURL(), cfg.StorageToken())
	}
}

func TestNew_InvalidValues(t *testing.T) {
	tests := []struct {
		env, value string
	}{
		{EnvPort, "abc"},
		{EnvPort, "70000"},
		{EnvDeleteTimeout, "-1"},
		{EnvAutosaveInterval, "soon"},
		{EnvStorageURL, "http://studio.local"},
	}
	for _, tt := range tests {
		t.Run(tt.env+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.env, tt.value)
			if _, err := New(); err == nil {
				t.Errorf("New() with %s=%s error = nil", tt.env, tt.value)
			}
		})
	}
}
