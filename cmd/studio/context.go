package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/heimdex/heimdex-studio/internal/catalog"
	"github.com/heimdex/heimdex-studio/internal/config"
	"github.com/heimdex/heimdex-studio/internal/db"
	"github.com/heimdex/heimdex-studio/internal/logging"
	"github.com/heimdex/heimdex-studio/internal/storage"
)

type commandContext struct {
	logLevelFlag    *string
	projectsDirFlag *string

	configOnce sync.Once
	config     *config.EnvConfig
	configErr  error
}

func newCommandContext(logLevelFlag, projectsDirFlag *string) *commandContext {
	return &commandContext{
		logLevelFlag:    logLevelFlag,
		projectsDirFlag: projectsDirFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.EnvConfig, error) {
	c.configOnce.Do(func() {
		cfg, err := config.New()
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logLevel(cfg *config.EnvConfig) string {
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		return strings.TrimSpace(*c.logLevelFlag)
	}
	if cfg != nil {
		return cfg.LogLevel()
	}
	return config.DefaultLogLevel
}

// projectsDir honors --projects-dir before the environment.
func (c *commandContext) projectsDir() (string, error) {
	if c.projectsDirFlag != nil && strings.TrimSpace(*c.projectsDirFlag) != "" {
		return strings.TrimSpace(*c.projectsDirFlag), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.ProjectsDir(), nil
}

// cliLogger writes to w so command output on stdout stays clean.
func (c *commandContext) cliLogger(w io.Writer) *slog.Logger {
	cfg, _ := c.ensureConfig()
	return logging.NewLoggerTo(w, c.logLevel(cfg))
}

// openCatalog opens the sqlite catalog and a service on top of it. A nil
// deleter means project files are deleted locally. The returned close
// function closes the database.
func (c *commandContext) openCatalog(logger *slog.Logger, deleter storage.AssetDeleter) (*catalog.Service, catalog.Repository, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	projectsDir, err := c.projectsDir()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(projectsDir, 0755); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create projects dir: %w", err)
	}

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := catalog.NewRepository(database.Conn())
	svc := catalog.NewService(repo, catalog.Options{
		ProjectsDir:   projectsDir,
		Storage:       deleter,
		DeleteTimeout: cfg.DeleteTimeout(),
		Logger:        logger,
	})
	return svc, repo, func() { database.Close() }, nil
}
