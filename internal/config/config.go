// Package config provides configuration management for Heimdex Studio.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort     = 8790
	DefaultLogLevel = "info"
	DefaultDataDir  = ".heimdex-studio"
	DefaultFFprobe  = "ffprobe"
	DefaultBundler  = "esbuild"

	DefaultDeleteTimeoutSeconds   = 30
	DefaultAutosaveIntervalSecond = 10

	EnvPort             = "HEIMDEX_STUDIO_PORT"
	EnvLogLevel         = "HEIMDEX_STUDIO_LOG_LEVEL"
	EnvDataDir          = "HEIMDEX_STUDIO_DATA_DIR"
	EnvProjectsDir      = "HEIMDEX_STUDIO_PROJECTS_DIR"
	EnvFFprobe          = "HEIMDEX_STUDIO_FFPROBE"
	EnvBundler          = "HEIMDEX_STUDIO_BUNDLER"
	EnvComponentsDir    = "HEIMDEX_STUDIO_COMPONENTS_DIR"
	EnvDeleteTimeout    = "HEIMDEX_STUDIO_DELETE_TIMEOUT"
	EnvAutosaveInterval = "HEIMDEX_STUDIO_AUTOSAVE_INTERVAL"
	EnvStorageURL       = "HEIMDEX_STUDIO_STORAGE_URL"
	EnvStorageToken     = "HEIMDEX_STUDIO_STORAGE_TOKEN"

	DBFilename = "studio.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	ProjectsDir() string
	FFprobe() string
	Bundler() string
	ComponentsDir() string
	DeleteTimeout() time.Duration
	AutosaveInterval() time.Duration
	StorageURL() string
	StorageToken() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port             int
	logLevel         string
	dataDir          string
	projectsDir      string
	ffprobe          string
	bundler          string
	componentsDir    string
	deleteTimeout    time.Duration
	autosaveInterval time.Duration
	storageURL       string
	storageToken     string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:             DefaultPort,
		logLevel:         DefaultLogLevel,
		dataDir:          defaultDataDir(),
		ffprobe:          DefaultFFprobe,
		bundler:          DefaultBundler,
		deleteTimeout:    DefaultDeleteTimeoutSeconds * time.Second,
		autosaveInterval: DefaultAutosaveIntervalSecond * time.Second,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}
	cfg.projectsDir = os.Getenv(EnvProjectsDir)
	cfg.componentsDir = os.Getenv(EnvComponentsDir)
	cfg.storageURL = strings.TrimRight(os.Getenv(EnvStorageURL), "/")
	cfg.storageToken = os.Getenv(EnvStorageToken)
	if cfg.storageURL != "" && cfg.storageToken == "" {
		return nil, fmt.Errorf("%s requires %s", EnvStorageURL, EnvStorageToken)
	}

	if fp := os.Getenv(EnvFFprobe); fp != "" {
		cfg.ffprobe = fp
	}
	if b, ok := os.LookupEnv(EnvBundler); ok {
		// empty disables bundling
		cfg.bundler = b
	}

	var err error
	if cfg.deleteTimeout, err = secondsFromEnv(EnvDeleteTimeout, cfg.deleteTimeout); err != nil {
		return nil, err
	}
	if cfg.autosaveInterval, err = secondsFromEnv(EnvAutosaveInterval, cfg.autosaveInterval); err != nil {
		return nil, err
	}

	return cfg, nil
}

func secondsFromEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number of seconds", name)
	}
	return time.Duration(n) * time.Second, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite catalog
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// ProjectsDir is where bare project names resolve and new projects are
// created.
func (c *EnvConfig) ProjectsDir() string {
	if c.projectsDir != "" {
		return c.projectsDir
	}
	return filepath.Join(c.dataDir, "projects")
}

func (c *EnvConfig) FFprobe() string {
	return c.ffprobe
}

// Bundler is the component bundler binary. Empty disables bundling.
func (c *EnvConfig) Bundler() string {
	return c.bundler
}

func (c *EnvConfig) ComponentsDir() string {
	if c.componentsDir != "" {
		return c.componentsDir
	}
	return filepath.Join(c.dataDir, "components")
}

func (c *EnvConfig) DeleteTimeout() time.Duration {
	return c.deleteTimeout
}

func (c *EnvConfig) AutosaveInterval() time.Duration {
	return c.autosaveInterval
}

// StorageURL is the base URL of a remote studio host that owns project
// files. Empty means files are deleted locally.
func (c *EnvConfig) StorageURL() string {
	return c.storageURL
}

func (c *EnvConfig) StorageToken() string {
	return c.storageToken
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
