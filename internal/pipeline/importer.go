package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/heimdex/heimdex-studio/internal/builtin"
	"github.com/heimdex/heimdex-studio/internal/cascade"
	"github.com/heimdex/heimdex-studio/internal/logging"
	"github.com/heimdex/heimdex-studio/internal/metadata"
	"github.com/heimdex/heimdex-studio/internal/project"
)

var ErrUnsupportedMedia = errors.New("unsupported media type")

// Importer probes a file, warms the session's metadata cache and adds the
// resulting asset to the session.
type Importer struct {
	prober  Prober
	bundler builtin.Bundler
	logger  *slog.Logger
}

// NewImporter creates an importer. bundler may be nil, in which case
// component files are imported without a bundle.
func NewImporter(prober Prober, bundler builtin.Bundler, logger *slog.Logger) *Importer {
	return &Importer{
		prober:  prober,
		bundler: bundler,
		logger:  logging.WithComponent(logging.OrDiscard(logger), "import"),
	}
}

func (im *Importer) Import(ctx context.Context, s *cascade.Session, path string) (project.MediaAsset, error) {
	abs := project.ResolvePath(s.ProjectDir(), path)
	if _, err := os.Stat(abs); err != nil {
		return project.MediaAsset{}, fmt.Errorf("stat media: %w", err)
	}

	ext := filepath.Ext(abs)
	kind := KindForExtension(ext)
	if kind == project.KindUnknown {
		return project.MediaAsset{}, fmt.Errorf("%w: %q", ErrUnsupportedMedia, ext)
	}

	asset := project.MediaAsset{
		Path:      abs,
		Name:      filepath.Base(abs),
		Extension: strings.TrimPrefix(strings.ToLower(ext), "."),
		Kind:      kind,
	}

	switch kind {
	case project.KindComponent:
		asset.Duration = builtin.DefaultDuration
		if im.bundler != nil {
			out := bundlePathFor(s.ProjectDir(), abs)
			if err := im.bundler.Bundle(ctx, abs, out); err != nil {
				return project.MediaAsset{}, fmt.Errorf("bundle component: %w", err)
			}
			asset.BundlePath = out
		}
	default:
		res, err := im.prober.Probe(ctx, abs)
		if err != nil {
			return project.MediaAsset{}, fmt.Errorf("probe media: %w", err)
		}
		asset.Duration = res.Duration
		s.Cache().Put(ctx, metadata.Entry{
			Path:      abs,
			Duration:  res.Duration,
			Width:     res.Width,
			Height:    res.Height,
			Codec:     res.Codec,
			FrameRate: res.FrameRate,
		})
	}

	if err := s.AddMediaFile(asset); err != nil {
		return project.MediaAsset{}, err
	}

	im.logger.Info("media imported",
		"project_id", s.ProjectID(),
		"kind", kind,
		"path", logging.SanitizePath(abs),
		"duration", asset.Duration,
	)
	return asset, nil
}

// bundlePathFor places the artifact next to the source when the project owns
// the source, and in the media directory otherwise.
func bundlePathFor(projectDir, src string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + builtin.BundleExt
	if project.WithinMediaDir(projectDir, src) {
		return filepath.Join(filepath.Dir(src), base)
	}
	return filepath.Join(project.MediaDir(projectDir), base)
}
