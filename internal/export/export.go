// Package export writes a project's timeline in interchange formats for
// other editors.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/heimdex/heimdex-studio/internal/project"
)

var (
	ErrUnsupportedFormat = errors.New("format must be edl")
	ErrNothingToExport   = errors.New("no clips could be resolved")
)

// WriteEDL resolves the document's timeline and writes <title>.edl into
// req.OutputDir. The frame rate comes from the export settings.
func WriteEDL(doc *project.Document, req ExportRequest) (ExportResponse, error) {
	if strings.ToLower(req.Format) != "edl" {
		return ExportResponse{}, ErrUnsupportedFormat
	}
	if err := ValidateOutputDir(req.OutputDir); err != nil {
		return ExportResponse{}, err
	}

	title := req.Title
	if title == "" {
		title = doc.Name
	}
	title = SanitizeName(title, 120)
	if title == "" {
		title = "heimdex_export"
	}

	clips, unresolved := ResolveTimeline(doc)
	if len(clips) == 0 {
		return ExportResponse{UnresolvedClips: unresolved}, ErrNothingToExport
	}

	edl := GenerateEDL(clips, title, doc.ExportSettings.FPS)
	outputPath := filepath.Join(req.OutputDir, title+".edl")
	if err := os.WriteFile(outputPath, []byte(edl), 0o644); err != nil {
		return ExportResponse{}, fmt.Errorf("write export file: %w", err)
	}

	return ExportResponse{
		Status:          "ok",
		Format:          "edl",
		OutputPath:      outputPath,
		ClipCount:       len(clips),
		UnresolvedClips: unresolved,
	}, nil
}
