// Package pipeline probes media files on import and turns them into project
// assets.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/heimdex/heimdex-studio/internal/project"
)

// Prober reads technical metadata from a media file.
type Prober interface {
	Probe(ctx context.Context, filePath string) (*ProbeResult, error)
}

type ProbeResult struct {
	Duration  float64
	Width     int
	Height    int
	Codec     string
	Bitrate   int64
	FrameRate float64
	HasVideo  bool
	HasAudio  bool
}

// StubProber answers every probe with a fixed duration. It is used when no
// ffprobe binary is configured and in tests.
type StubProber struct {
	Duration float64
	logger   *slog.Logger
}

func NewStubProber(duration float64, logger *slog.Logger) *StubProber {
	return &StubProber{Duration: duration, logger: logger}
}

func (p *StubProber) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	if p.logger != nil {
		p.logger.Debug("probe stub", "path", filePath)
	}
	return &ProbeResult{Duration: p.Duration}, nil
}

var kindsByExtension = map[string]project.Kind{
	".mp4":  project.KindVideo,
	".mov":  project.KindVideo,
	".mkv":  project.KindVideo,
	".webm": project.KindVideo,
	".avi":  project.KindVideo,
	".m4v":  project.KindVideo,
	".mp3":  project.KindAudio,
	".wav":  project.KindAudio,
	".aac":  project.KindAudio,
	".m4a":  project.KindAudio,
	".flac": project.KindAudio,
	".ogg":  project.KindAudio,
	".tsx":  project.KindComponent,
	".jsx":  project.KindComponent,
}

// KindForExtension maps a file extension (with or without the dot) to an
// asset kind, or KindUnknown.
func KindForExtension(ext string) project.Kind {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return kindsByExtension[ext]
}
