package builtin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/heimdex/heimdex-studio/internal/project"
)

type fakeBundler struct {
	err   error
	calls int
}

func (f *fakeBundler) Bundle(ctx context.Context, srcPath, outPath string) error {
	f.calls++
	if f.err != nil {
		// leave a partial artifact behind like a crashed bundler would
		os.WriteFile(outPath, []byte("partial"), 0644)
		return f.err
	}
	return os.WriteFile(outPath, []byte("export default 1"), 0644)
}

func setupSources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"Title.tsx":      "export const Title = () => null",
		"Title.md":       "# Title",
		"LowerThird.tsx": "export const LowerThird = () => null",
		"notes.txt":      "ignored",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestInstaller_Available(t *testing.T) {
	in := NewInstaller(setupSources(t), &fakeBundler{}, nil)
	got, err := in.Available()
	if err != nil {
		t.Fatalf("Available() error = %v", err)
	}
	if want := []string{"LowerThird", "Title"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}

	empty := NewInstaller(filepath.Join(t.TempDir(), "missing"), &fakeBundler{}, nil)
	if got, err := empty.Available(); err != nil || len(got) != 0 {
		t.Errorf("Available() on missing dir = %v, %v", got, err)
	}
}

func TestInstaller_Install(t *testing.T) {
	projectDir := t.TempDir()
	b := &fakeBundler{}
	in := NewInstaller(setupSources(t), b, nil)

	asset, err := in.Install(context.Background(), projectDir, "Title")
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	mediaDir := project.MediaDir(projectDir)
	want := project.MediaAsset{
		Path:       filepath.Join(mediaDir, "Title.tsx"),
		Name:       "Title.tsx",
		Extension:  "tsx",
		Kind:       project.KindComponent,
		Duration:   DefaultDuration,
		BundlePath: filepath.Join(mediaDir, "Title.bundle.js"),
	}
	if asset != want {
		t.Errorf("Install() = %+v, want %+v", asset, want)
	}
	for _, name := range []string{"Title.tsx", "Title.md", "Title.bundle.js"} {
		if _, err := os.Stat(filepath.Join(mediaDir, name)); err != nil {
			t.Errorf("%s not installed: %v", name, err)
		}
	}
	if !project.WithinMediaDir(projectDir, asset.BundlePath) {
		t.Error("bundle outside media dir")
	}
}

func TestInstaller_InstallWithoutSidecar(t *testing.T) {
	projectDir := t.TempDir()
	in := NewInstaller(setupSources(t), &fakeBundler{}, nil)

	if _, err := in.Install(context.Background(), projectDir, "LowerThird"); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(project.MediaDir(projectDir), "LowerThird.md")); !os.IsNotExist(err) {
		t.Errorf("unexpected sidecar: %v", err)
	}
}

func TestInstaller_RollsBackOnBundleFailure(t *testing.T) {
	projectDir := t.TempDir()
	b := &fakeBundler{err: errors.New("syntax error")}
	in := NewInstaller(setupSources(t), b, nil)

	_, err := in.Install(context.Background(), projectDir, "Title")
	if err == nil {
		t.Fatal("Install() error = nil")
	}
	if b.calls != 1 {
		t.Errorf("bundler calls = %d, want 1", b.calls)
	}

	entries, err := os.ReadDir(project.MediaDir(projectDir))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("media dir not rolled back: %v", names)
	}
}

func TestInstaller_UnknownComponent(t *testing.T) {
	in := NewInstaller(setupSources(t), &fakeBundler{}, nil)

	for _, name := range []string{"Missing", "", "..", "../Title", `a\b`} {
		_, err := in.Install(context.Background(), t.TempDir(), name)
		if !errors.Is(err, ErrUnknownComponent) {
			t.Errorf("Install(%q) error = %v, want ErrUnknownComponent", name, err)
		}
	}
}
