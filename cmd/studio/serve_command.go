package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-studio/internal/api"
	"github.com/heimdex/heimdex-studio/internal/builtin"
	"github.com/heimdex/heimdex-studio/internal/catalog"
	"github.com/heimdex/heimdex-studio/internal/config"
	"github.com/heimdex/heimdex-studio/internal/logging"
	"github.com/heimdex/heimdex-studio/internal/pipeline"
	"github.com/heimdex/heimdex-studio/internal/storage"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the studio host API on 127.0.0.1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ctx)
		},
	}
}

func runServe(cmd *cobra.Command, cctx *commandContext) error {
	startTime := time.Now()

	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cctx.logLevel(cfg))
	logger.Info("starting heimdex studio", "version", config.Version, "data_dir", logging.SanitizePath(cfg.DataDir()))

	var deleter storage.AssetDeleter
	if cfg.StorageURL() != "" {
		deleter = storage.NewHTTPClient(cfg.StorageURL(), cfg.StorageToken(), logger)
		logger.Info("remote storage enabled", "base_url", cfg.StorageURL())
	}

	svc, repo, closeDB, err := cctx.openCatalog(logger, deleter)
	if err != nil {
		return err
	}
	defer closeDB()

	authToken, err := svc.EnsureAuthToken(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "╔═══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintf(out, "║  HEIMDEX STUDIO %-61s ║\n", "v"+config.Version)
	fmt.Fprintln(out, "╠═══════════════════════════════════════════════════════════════════════════════╣")
	fmt.Fprintf(out, "║  API URL:    http://127.0.0.1:%-47d ║\n", cfg.Port())
	fmt.Fprintf(out, "║  Auth Token: %-64s ║\n", authToken)
	fmt.Fprintln(out, "╚═══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(out)

	bundler := newBundler(cfg, logger)
	importer := pipeline.NewImporter(newProber(cfg, logger), bundler, logger)

	var installer *builtin.Installer
	if bundler != nil {
		if info, err := os.Stat(cfg.ComponentsDir()); err == nil && info.IsDir() {
			installer = builtin.NewInstaller(cfg.ComponentsDir(), bundler, logger)
		} else {
			logger.Info("builtin components unavailable", "components_dir", logging.SanitizePath(cfg.ComponentsDir()))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	autosaver := catalog.NewAutosaver(svc, cfg.AutosaveInterval(), logger)
	go autosaver.Start(ctx)

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		Catalog:    svc,
		Repository: repo,
		Importer:   importer,
		Installer:  installer,
		Storage:    storage.NewLocal(svc, logger),
		Autosaver:  autosaver,
		Logger:     logger,
		StartTime:  startTime,
		Version:    config.Version,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}
	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to save open projects", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// newProber falls back to a fixed-duration stub when ffprobe is missing so
// imports keep working without it.
func newProber(cfg config.Config, logger *slog.Logger) pipeline.Prober {
	if _, err := exec.LookPath(cfg.FFprobe()); err != nil {
		logger.Warn("ffprobe not found, media durations will be estimated", "binary", cfg.FFprobe())
		return pipeline.NewStubProber(builtin.DefaultDuration, logger)
	}
	return pipeline.NewFFprobe(cfg.FFprobe())
}

func newBundler(cfg config.Config, logger *slog.Logger) builtin.Bundler {
	if cfg.Bundler() == "" {
		logger.Info("component bundling disabled")
		return nil
	}
	if _, err := exec.LookPath(cfg.Bundler()); err != nil {
		logger.Warn("bundler not found, component bundling disabled", "binary", cfg.Bundler())
		return nil
	}
	return builtin.NewCommandBundler(cfg.Bundler(), logger)
}
