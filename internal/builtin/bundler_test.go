package builtin

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not on PATH")
	}
}

func TestCommandBundler_Success(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "Title.tsx")
	out := filepath.Join(dir, "out", "Title.bundle.js")
	os.WriteFile(src, []byte("component"), 0644)

	b := NewCommandBundler("sh", nil)
	b.Args = []string{"-c", `cp "$0" "$1"`, "{in}", "{out}"}

	if err := b.Bundle(context.Background(), src, out); err != nil {
		t.Fatalf("Bundle() error = %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil || string(got) != "component" {
		t.Errorf("artifact = %q, %v", got, err)
	}
}

func TestCommandBundler_Failure(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	b := NewCommandBundler("sh", nil)
	b.Args = []string{"-c", "echo 'unexpected token' >&2; exit 3"}

	err := b.Bundle(context.Background(), filepath.Join(dir, "a.tsx"), filepath.Join(dir, "a.bundle.js"))
	var be *BundleError
	if !errors.As(err, &be) {
		t.Fatalf("Bundle() error = %v, want *BundleError", err)
	}
	if be.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", be.ExitCode)
	}
	if !strings.Contains(be.StderrTail, "unexpected token") {
		t.Errorf("StderrTail = %q", be.StderrTail)
	}
}

func TestCommandBundler_NotConfigured(t *testing.T) {
	b := NewCommandBundler("", nil)
	if err := b.Bundle(context.Background(), "a.tsx", filepath.Join(t.TempDir(), "a.js")); err == nil {
		t.Error("Bundle() with no binary error = nil")
	}
}

func TestLimitedWriter_KeepsTail(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, limit: 4}
	lw.Write([]byte("abc"))
	lw.Write([]byte("defg"))
	if got := buf.String(); got != "defg" {
		t.Errorf("tail = %q, want defg", got)
	}
}
