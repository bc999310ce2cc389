package builtin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/heimdex/heimdex-studio/internal/logging"
)

const (
	maxStderrBytes = 8 * 1024

	defaultBundleTimeout = 2 * time.Minute
)

// Bundler turns a component source file into a loadable artifact.
type Bundler interface {
	Bundle(ctx context.Context, srcPath, outPath string) error
}

// DefaultBundleArgs invokes esbuild. {in} and {out} are replaced with the
// source and artifact paths.
var DefaultBundleArgs = []string{"{in}", "--bundle", "--format=esm", "--outfile={out}"}

// CommandBundler runs an external bundler binary as a subprocess.
type CommandBundler struct {
	Binary  string
	Args    []string
	Timeout time.Duration
	logger  *slog.Logger
}

func NewCommandBundler(binary string, logger *slog.Logger) *CommandBundler {
	return &CommandBundler{
		Binary:  binary,
		Args:    DefaultBundleArgs,
		Timeout: defaultBundleTimeout,
		logger:  logging.WithComponent(logging.OrDiscard(logger), "bundler"),
	}
}

// BundleError is a bundler run that exited non-zero.
type BundleError struct {
	ExitCode   int
	StderrTail string
}

func (e *BundleError) Error() string {
	return fmt.Sprintf("bundler exited %d: %s", e.ExitCode, truncate(e.StderrTail, 512))
}

func (b *CommandBundler) Bundle(ctx context.Context, srcPath, outPath string) error {
	if strings.TrimSpace(b.Binary) == "" {
		return errors.New("no bundler configured")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("cannot create output dir: %w", err)
	}

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaultBundleTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := make([]string, len(b.Args))
	for i, a := range b.Args {
		a = strings.ReplaceAll(a, "{in}", srcPath)
		args[i] = strings.ReplaceAll(a, "{out}", outPath)
	}

	var stderrBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, b.Binary, args...)
	cmd.Stderr = &limitedWriter{w: &stderrBuf, limit: maxStderrBytes}
	cmd.Stdout = io.Discard

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		b.logger.Warn("bundle failed",
			"exit_code", exitCode,
			"duration_ms", elapsed.Milliseconds(),
			"stderr_tail", truncate(stderrBuf.String(), 512),
		)
		if exitCode == -1 && stderrBuf.Len() == 0 {
			return fmt.Errorf("run bundler: %w", err)
		}
		return &BundleError{ExitCode: exitCode, StderrTail: stderrBuf.String()}
	}

	b.logger.Info("bundle succeeded",
		"duration_ms", elapsed.Milliseconds(),
		"output", logging.SanitizePath(outPath),
	)
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter keeps only the last limit bytes written to it.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		b := lw.w.Bytes()
		tail := append([]byte(nil), b[len(b)-lw.limit:]...)
		lw.w.Reset()
		lw.w.Write(tail)
	}
	return n, nil
}
