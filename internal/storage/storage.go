// Package storage deletes project-owned asset files. Callers address files by
// project id and a POSIX relative path such as "media/a.mp4"; anything that
// would land outside the project's managed media directory is refused.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/heimdex/heimdex-studio/internal/logging"
	"github.com/heimdex/heimdex-studio/internal/project"
)

var (
	ErrAbsolutePath    = errors.New("path must be relative to the project root")
	ErrOutsideMediaDir = errors.New("path is outside the project media directory")
	ErrUnknownProject  = errors.New("unknown project")
)

// AssetDeleter is the storage collaborator used by cascade cleanup.
type AssetDeleter interface {
	DeleteAsset(ctx context.Context, projectID, relativePath string) error
}

// ProjectResolver maps a project id to its directory on disk.
type ProjectResolver interface {
	ProjectDir(ctx context.Context, projectID string) (string, error)
}

type DeleteError struct {
	Path string
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Path, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}

// Local removes files from the local filesystem.
type Local struct {
	projects ProjectResolver
	logger   *slog.Logger
}

func NewLocal(projects ProjectResolver, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Local{projects: projects, logger: logging.WithComponent(logger, "storage")}
}

// DeleteAsset removes one file. A file that is already gone counts as
// deleted.
func (l *Local) DeleteAsset(ctx context.Context, projectID, relativePath string) error {
	dir, err := l.projects.ProjectDir(ctx, projectID)
	if err != nil {
		return &DeleteError{Path: relativePath, Err: err}
	}

	target, err := ResolveRelative(dir, relativePath)
	if err != nil {
		return &DeleteError{Path: relativePath, Err: err}
	}

	if err := os.Remove(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Debug("asset already absent", "project_id", projectID, "path", relativePath)
			return nil
		}
		return &DeleteError{Path: relativePath, Err: err}
	}

	l.logger.Info("asset deleted", "project_id", projectID, "path", relativePath)
	return nil
}

// ResolveRelative turns a POSIX project-relative path into an absolute path
// inside the project's media directory.
func ResolveRelative(projectDir, relativePath string) (string, error) {
	if relativePath == "" {
		return "", ErrOutsideMediaDir
	}
	if path.IsAbs(relativePath) || filepath.IsAbs(relativePath) || strings.Contains(relativePath, `\`) {
		return "", ErrAbsolutePath
	}

	target := filepath.Join(projectDir, filepath.FromSlash(relativePath))
	if !project.WithinMediaDir(projectDir, target) {
		return "", ErrOutsideMediaDir
	}
	return target, nil
}
