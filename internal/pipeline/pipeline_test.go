package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/heimdex/heimdex-studio/internal/cascade"
	"github.com/heimdex/heimdex-studio/internal/project"
)

func TestParseProbe(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "audio", "codec_name": "aac", "duration": "12.0"},
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "avg_frame_rate": "30000/1001"}
		],
		"format": {"duration": "12.5", "bit_rate": "800000"}
	}`)

	res, err := parseProbe(data)
	if err != nil {
		t.Fatalf("parseProbe() error = %v", err)
	}
	if res.Duration != 12.5 {
		t.Errorf("Duration = %v, want 12.5", res.Duration)
	}
	if res.Codec != "h264" || res.Width != 1920 || res.Height != 1080 {
		t.Errorf("video fields = %+v", res)
	}
	if res.FrameRate < 29.97 || res.FrameRate > 29.98 {
		t.Errorf("FrameRate = %v", res.FrameRate)
	}
	if !res.HasAudio || !res.HasVideo || res.Bitrate != 800000 {
		t.Errorf("flags = %+v", res)
	}
}

func TestParseProbe_FallsBackToStreamDuration(t *testing.T) {
	res, err := parseProbe([]byte(`{"streams":[{"codec_type":"audio","codec_name":"mp3","duration":"3.25"}],"format":{}}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.Duration != 3.25 || res.Codec != "mp3" || res.HasVideo {
		t.Errorf("parseProbe() = %+v", res)
	}

	if _, err := parseProbe([]byte("not json")); err == nil {
		t.Error("parseProbe(garbage) error = nil")
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"25/1", 25},
		{"0/0", 0},
		{"24", 24},
		{"", 0},
		{"x/y", 0},
	}
	for _, tt := range tests {
		if got := parseRate(tt.in); got != tt.want {
			t.Errorf("parseRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKindForExtension(t *testing.T) {
	tests := map[string]project.Kind{
		".mp4": project.KindVideo,
		"MOV":  project.KindVideo,
		".wav": project.KindAudio,
		".tsx": project.KindComponent,
		".txt": project.KindUnknown,
		"":     project.KindUnknown,
	}
	for ext, want := range tests {
		if got := KindForExtension(ext); got != want {
			t.Errorf("KindForExtension(%q) = %q, want %q", ext, got, want)
		}
	}
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type copyBundler struct{ calls int }

func (b *copyBundler) Bundle(ctx context.Context, srcPath, outPath string) error {
	b.calls++
	return os.WriteFile(outPath, []byte("bundle"), 0644)
}

func newSession(t *testing.T) (*cascade.Session, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(project.MediaDir(dir), 0755); err != nil {
		t.Fatal(err)
	}
	return cascade.NewSession(project.NewDocument("demo", testNow), cascade.Options{ProjectDir: dir}), dir
}

func TestImporter_Import(t *testing.T) {
	s, dir := newSession(t)
	video := filepath.Join(project.MediaDir(dir), "clip.MP4")
	os.WriteFile(video, []byte("v"), 0644)

	im := NewImporter(NewStubProber(7.5, nil), nil, nil)
	asset, err := im.Import(context.Background(), s, "media/clip.MP4")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if asset.Path != video || asset.Kind != project.KindVideo || asset.Extension != "mp4" || asset.Duration != 7.5 {
		t.Errorf("asset = %+v", asset)
	}
	if e, ok := s.Cache().Get(context.Background(), video); !ok || e.Duration != 7.5 {
		t.Errorf("cache entry = %+v, %v", e, ok)
	}
	if doc := s.Snapshot(); len(doc.MediaFiles) != 1 {
		t.Errorf("media files = %+v", doc.MediaFiles)
	}

	if _, err := im.Import(context.Background(), s, video); !errors.Is(err, cascade.ErrDuplicateMedia) {
		t.Errorf("second Import() error = %v, want ErrDuplicateMedia", err)
	}
}

func TestImporter_Component(t *testing.T) {
	s, dir := newSession(t)
	src := filepath.Join(project.MediaDir(dir), "Card.tsx")
	os.WriteFile(src, []byte("c"), 0644)

	b := &copyBundler{}
	asset, err := NewImporter(NewStubProber(1, nil), b, nil).Import(context.Background(), s, src)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if b.calls != 1 {
		t.Errorf("bundler calls = %d", b.calls)
	}
	if asset.BundlePath != filepath.Join(project.MediaDir(dir), "Card.bundle.js") {
		t.Errorf("BundlePath = %q", asset.BundlePath)
	}
}

func TestImporter_Rejects(t *testing.T) {
	s, dir := newSession(t)
	txt := filepath.Join(dir, "notes.txt")
	os.WriteFile(txt, []byte("x"), 0644)

	im := NewImporter(NewStubProber(1, nil), nil, nil)
	if _, err := im.Import(context.Background(), s, txt); !errors.Is(err, ErrUnsupportedMedia) {
		t.Errorf("Import(txt) error = %v", err)
	}
	if _, err := im.Import(context.Background(), s, filepath.Join(dir, "missing.mp4")); err == nil {
		t.Error("Import(missing) error = nil")
	}
}

func TestBundlePathFor(t *testing.T) {
	dir := "/p"
	if got := bundlePathFor(dir, "/p/media/sub/A.tsx"); got != filepath.Join("/p/media/sub", "A.bundle.js") {
		t.Errorf("inside = %q", got)
	}
	if got := bundlePathFor(dir, "/elsewhere/A.tsx"); got != filepath.Join("/p/media", "A.bundle.js") {
		t.Errorf("outside = %q", got)
	}
}
