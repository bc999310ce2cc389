package export

import "github.com/heimdex/heimdex-studio/internal/project"

type ExportRequest struct {
	Format    string `json:"format"`
	OutputDir string `json:"output_dir"`
	// Title overrides the project name in the EDL header and file name.
	Title string `json:"title,omitempty"`
}

// ResolvedClip is a timeline clip joined against its asset. Times are in
// milliseconds.
type ResolvedClip struct {
	ClipID      int
	ClipName    string
	MediaPath   string
	Kind        project.Kind
	Track       int
	SourceInMs  int
	SourceOutMs int
	RecordInMs  int
	RecordOutMs int
}

type ExportResponse struct {
	Status          string `json:"status"`
	Format          string `json:"format"`
	OutputPath      string `json:"output_path"`
	ClipCount       int    `json:"clip_count"`
	UnresolvedClips []int  `json:"unresolved_clips"`
}
