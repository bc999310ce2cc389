// Package builtin installs the components that ship with the studio into a
// project's media directory.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/heimdex/heimdex-studio/internal/logging"
	"github.com/heimdex/heimdex-studio/internal/project"
)

var ErrUnknownComponent = errors.New("unknown builtin component")

const (
	SourceExt  = ".tsx"
	SidecarExt = ".md"
	BundleExt  = ".bundle.js"

	// DefaultDuration is the length given to a freshly installed component,
	// in seconds.
	DefaultDuration = 5.0
)

// Installer copies builtin component sources into projects and bundles them.
type Installer struct {
	sourceDir string
	bundler   Bundler
	logger    *slog.Logger
}

func NewInstaller(sourceDir string, bundler Bundler, logger *slog.Logger) *Installer {
	return &Installer{
		sourceDir: sourceDir,
		bundler:   bundler,
		logger:    logging.WithComponent(logging.OrDiscard(logger), "builtin"),
	}
}

// Available lists the component names that can be installed.
func (in *Installer) Available() ([]string, error) {
	entries, err := os.ReadDir(in.sourceDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read components dir: %w", err)
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != SourceExt {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), SourceExt))
	}
	sort.Strings(names)
	return names, nil
}

// Install copies component name (and its sidecar documentation, when one
// exists) into the project's media directory and bundles it. When bundling
// fails the copied files are removed again and the project is left as it
// was. The returned asset is ready to be added to the document.
func (in *Installer) Install(ctx context.Context, projectDir, name string) (project.MediaAsset, error) {
	if !validName(name) {
		return project.MediaAsset{}, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	src := filepath.Join(in.sourceDir, name+SourceExt)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return project.MediaAsset{}, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
		}
		return project.MediaAsset{}, fmt.Errorf("stat component source: %w", err)
	}

	mediaDir := project.MediaDir(projectDir)
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		return project.MediaAsset{}, fmt.Errorf("create media dir: %w", err)
	}

	dst := filepath.Join(mediaDir, name+SourceExt)
	out := filepath.Join(mediaDir, name+BundleExt)
	copied := []string{}
	rollback := func() {
		for _, p := range append(copied, out) {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				in.logger.Warn("rollback failed", "path", logging.SanitizePath(p), "error", err)
			}
		}
	}

	if err := copyFile(src, dst); err != nil {
		rollback()
		return project.MediaAsset{}, fmt.Errorf("copy component source: %w", err)
	}
	copied = append(copied, dst)

	sidecar := filepath.Join(in.sourceDir, name+SidecarExt)
	if _, err := os.Stat(sidecar); err == nil {
		sidecarDst := filepath.Join(mediaDir, name+SidecarExt)
		if err := copyFile(sidecar, sidecarDst); err != nil {
			rollback()
			return project.MediaAsset{}, fmt.Errorf("copy component docs: %w", err)
		}
		copied = append(copied, sidecarDst)
	}

	if err := in.bundler.Bundle(ctx, dst, out); err != nil {
		rollback()
		return project.MediaAsset{}, fmt.Errorf("bundle %s: %w", name, err)
	}

	in.logger.Info("component installed", "component", name, "project_dir", logging.SanitizePath(projectDir))

	return project.MediaAsset{
		Path:       dst,
		Name:       name + SourceExt,
		Extension:  strings.TrimPrefix(SourceExt, "."),
		Kind:       project.KindComponent,
		Duration:   DefaultDuration,
		BundlePath: out,
	}, nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
