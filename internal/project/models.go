// Package project defines the persisted project document and the conventions
// shared by everything that reads or mutates it.
package project

import (
	"path/filepath"
	"strings"
	"time"
)

type Kind string

const (
	KindVideo     Kind = "video"
	KindAudio     Kind = "audio"
	KindComponent Kind = "component"

	// KindUnknown is what ResolveKind returns for a clip whose mediaPath
	// matches no asset.
	KindUnknown Kind = ""
)

var ValidKinds = map[Kind]bool{
	KindVideo:     true,
	KindAudio:     true,
	KindComponent: true,
}

const (
	DocumentFilename = "project.json"
	MediaDirName     = "media"
	CurrentVersion   = 1
)

type MediaAsset struct {
	Path       string  `json:"path"`
	Name       string  `json:"name"`
	Extension  string  `json:"extension,omitempty"`
	Kind       Kind    `json:"kind"`
	Duration   float64 `json:"duration"`
	BundlePath string  `json:"bundlePath,omitempty"`
}

type TimelineClip struct {
	ID               int      `json:"id"`
	MediaPath        string   `json:"mediaPath"`
	Track            int      `json:"track"`
	StartTime        float64  `json:"startTime"`
	Duration         float64  `json:"duration"`
	TrimStart        float64  `json:"trimStart"`
	TrimEnd          float64  `json:"trimEnd"`
	OriginalDuration float64  `json:"originalDuration,omitempty"`
	X                float64  `json:"x"`
	Y                float64  `json:"y"`
	Scale            float64  `json:"scale,omitempty"`
	ScaleX           *float64 `json:"scaleX,omitempty"`
	ScaleY           *float64 `json:"scaleY,omitempty"`
}

// End is the exclusive end of the clip's span on its track.
func (c TimelineClip) End() float64 {
	return c.StartTime + c.Duration
}

// Overlaps reports whether two half-open spans intersect. Touching endpoints
// do not overlap and an empty span overlaps nothing.
func (c TimelineClip) Overlaps(other TimelineClip) bool {
	if c.Duration <= 0 || other.Duration <= 0 {
		return false
	}
	return c.StartTime < other.End() && other.StartTime < c.End()
}

type Track struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

type ExportSettings struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	FPS     float64 `json:"fps"`
	Bitrate float64 `json:"bitrate"`
}

type Document struct {
	Version        int            `json:"version"`
	Name           string         `json:"name"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Tracks         []Track        `json:"tracks"`
	TrackIDCounter int            `json:"trackIdCounter"`
	ClipIDCounter  int            `json:"clipIdCounter"`
	ExportSettings ExportSettings `json:"exportSettings"`
	MediaFiles     []MediaAsset   `json:"mediaFiles"`
	TimelineClips  []TimelineClip `json:"timelineClips"`
}

// NewDocument returns an empty document with default export settings.
func NewDocument(name string, now time.Time) *Document {
	return &Document{
		Version:   CurrentVersion,
		Name:      name,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
		Tracks:    []Track{},
		ExportSettings: ExportSettings{
			Width:   1920,
			Height:  1080,
			FPS:     30,
			Bitrate: 8_000_000,
		},
		MediaFiles:    []MediaAsset{},
		TimelineClips: []TimelineClip{},
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (d *Document) Clone() *Document {
	out := *d
	out.Tracks = append([]Track(nil), d.Tracks...)
	out.MediaFiles = append([]MediaAsset(nil), d.MediaFiles...)
	out.TimelineClips = make([]TimelineClip, len(d.TimelineClips))
	for i, c := range d.TimelineClips {
		if c.ScaleX != nil {
			v := *c.ScaleX
			c.ScaleX = &v
		}
		if c.ScaleY != nil {
			v := *c.ScaleY
			c.ScaleY = &v
		}
		out.TimelineClips[i] = c
	}
	return &out
}

// FindMedia returns the index of the asset with the given path, or -1.
func (d *Document) FindMedia(path string) int {
	for i := range d.MediaFiles {
		if d.MediaFiles[i].Path == path {
			return i
		}
	}
	return -1
}

// FindClip returns the index of the clip with the given id, or -1.
func (d *Document) FindClip(id int) int {
	for i := range d.TimelineClips {
		if d.TimelineClips[i].ID == id {
			return i
		}
	}
	return -1
}

// ResolveKind derives a clip's kind by joining its mediaPath against the
// asset list. Nothing renders, measures or cascades a clip without going
// through this lookup; KindUnknown means the reference dangles.
func ResolveKind(clip TimelineClip, assets []MediaAsset) Kind {
	for _, a := range assets {
		if a.Path == clip.MediaPath {
			return a.Kind
		}
	}
	return KindUnknown
}

// MediaDir returns the managed media directory of a project.
func MediaDir(projectDir string) string {
	return filepath.Join(projectDir, MediaDirName)
}

// DocumentPath returns the location of project.json inside a project directory.
func DocumentPath(projectDir string) string {
	return filepath.Join(projectDir, DocumentFilename)
}

// ResolvePath makes an asset path absolute, interpreting relative paths
// against the project directory.
func ResolvePath(projectDir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(projectDir, path)
}

// WithinMediaDir reports whether path lies strictly inside the project's
// managed media directory. ".." segments are resolved before comparison, so
// "/p/media/../secret" is outside.
func WithinMediaDir(projectDir, path string) bool {
	if projectDir == "" || path == "" {
		return false
	}
	root := filepath.Clean(MediaDir(projectDir))
	target := ResolvePath(projectDir, path)

	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if rel == "." || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// RelativeToProject returns path relative to the project root in POSIX form,
// e.g. "media/a.mp4".
func RelativeToProject(projectDir, path string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(projectDir), ResolvePath(projectDir, path))
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
