package validate

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestWriteReport_Valid(t *testing.T) {
	var buf bytes.Buffer
	res := Result{StructureErrors: []string{}, IntegrityErrors: []string{}, Warnings: []string{"media file \"a.mp4\": not found on disk at /x/a.mp4"}}

	if err := WriteReport(&buf, res); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	want := "STRUCTURE ERRORS (0):\n\n" +
		"INTEGRITY ERRORS (0):\n\n" +
		"WARNINGS (1):\n  - media file \"a.mp4\": not found on disk at /x/a.mp4\n\n" +
		"Result: VALID\n"
	if buf.String() != want {
		t.Fatalf("report mismatch:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteReport_Invalid(t *testing.T) {
	var buf bytes.Buffer
	res := Result{
		StructureErrors: []string{"version: missing", `createdAt: invalid ISO-8601 date-time "nope"`},
		IntegrityErrors: []string{"clips 1 and 2 overlap on track 1"},
		Warnings:        []string{},
	}

	if err := WriteReport(&buf, res); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	want := "STRUCTURE ERRORS (2):\n  - version: missing\n  - createdAt: invalid ISO-8601 date-time \"nope\"\n\n" +
		"INTEGRITY ERRORS (1):\n  - clips 1 and 2 overlap on track 1\n\n" +
		"WARNINGS (0):\n\n" +
		"Result: INVALID (3 errors, 0 warnings)\n"
	if buf.String() != want {
		t.Fatalf("report mismatch:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	res := Validate(map[string]any{}, t.TempDir())

	if err := WriteJSON(&buf, res); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var decoded struct {
		StructureErrors []string `json:"structureErrors"`
		IntegrityErrors []string `json:"integrityErrors"`
		Warnings        []string `json:"warnings"`
		Valid           bool     `json:"valid"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.Valid {
		t.Error("valid = true for empty document")
	}
	if len(decoded.StructureErrors) != len(res.StructureErrors) {
		t.Errorf("structureErrors len = %d, want %d", len(decoded.StructureErrors), len(res.StructureErrors))
	}
	if decoded.IntegrityErrors == nil || decoded.Warnings == nil {
		t.Error("empty lists must encode as [] not null")
	}
}
