// Package validate checks a project document against its structural schema
// and its referential invariants.
//
// Validate is pure apart from read-only existence checks for warnings and
// never fails: every problem is returned as data, in document order, so the
// same input always produces the same report.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/heimdex/heimdex-studio/internal/project"
)

// trimTolerance absorbs float noise when comparing durations in seconds.
const trimTolerance = 1e-6

type Result struct {
	StructureErrors []string `json:"structureErrors"`
	IntegrityErrors []string `json:"integrityErrors"`
	Warnings        []string `json:"warnings"`
}

// Valid reports whether the document has no structural or integrity errors.
// Warnings never affect validity.
func (r Result) Valid() bool {
	return len(r.StructureErrors) == 0 && len(r.IntegrityErrors) == 0
}

func (r Result) ErrorCount() int {
	return len(r.StructureErrors) + len(r.IntegrityErrors)
}

type asset struct {
	index int
	project.MediaAsset
}

type clip struct {
	index int
	project.TimelineClip
	hasOriginal bool
}

type validator struct {
	projectDir string
	res        Result

	trackIDs     []int
	trackCounter *int
	clipCounter  *int
	assets       []asset
	clips        []clip
}

// Validate checks document, which may be any value produced by decoding
// JSON. projectDir anchors relative asset paths for the on-disk checks.
func Validate(document any, projectDir string) Result {
	v := &validator{
		projectDir: projectDir,
		res: Result{
			StructureErrors: []string{},
			IntegrityErrors: []string{},
			Warnings:        []string{},
		},
	}

	root, ok := document.(map[string]any)
	if !ok {
		v.structure("document: expected object, got %s", typeName(document))
		return v.res
	}

	v.checkStructure(root)
	v.checkIntegrity()
	v.checkDisk()
	return v.res
}

func (v *validator) structure(format string, args ...any) {
	v.res.StructureErrors = append(v.res.StructureErrors, fmt.Sprintf(format, args...))
}

func (v *validator) integrity(format string, args ...any) {
	v.res.IntegrityErrors = append(v.res.IntegrityErrors, fmt.Sprintf(format, args...))
}

func (v *validator) warn(format string, args ...any) {
	v.res.Warnings = append(v.res.Warnings, fmt.Sprintf(format, args...))
}

func (v *validator) checkStructure(root map[string]any) {
	if raw, ok := root["version"]; !ok {
		v.structure("version: missing")
	} else if _, ok := asInt(raw); !ok {
		v.structure("version: expected integer, got %s", typeName(raw))
	}

	if raw, ok := root["name"]; !ok {
		v.structure("name: missing")
	} else if s, ok := asString(raw); !ok || strings.TrimSpace(s) == "" {
		v.structure("name: expected non-empty string")
	}

	v.checkTimestamp(root, "createdAt")
	v.checkTimestamp(root, "updatedAt")

	if items, ok := v.list(root, "tracks"); ok {
		v.parseTracks(items)
	}

	v.trackCounter = v.counter(root, "trackIdCounter")
	v.clipCounter = v.counter(root, "clipIdCounter")

	v.checkExportSettings(root)

	if items, ok := v.list(root, "mediaFiles"); ok {
		v.parseMedia(items)
	}
	if items, ok := v.list(root, "timelineClips"); ok {
		v.parseClips(items)
	}
}

func (v *validator) checkTimestamp(root map[string]any, field string) {
	raw, ok := root[field]
	if !ok {
		v.structure("%s: missing", field)
		return
	}
	s, ok := asString(raw)
	if !ok {
		v.structure("%s: expected ISO-8601 date-time string, got %s", field, typeName(raw))
		return
	}
	if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
		v.structure("%s: invalid ISO-8601 date-time %q", field, s)
	}
}

// list returns the named container. A malformed container is reported and
// treated as empty so sibling checks still run.
func (v *validator) list(root map[string]any, field string) ([]any, bool) {
	raw, ok := root[field]
	if !ok {
		v.structure("%s: missing", field)
		return nil, false
	}
	items, ok := raw.([]any)
	if !ok {
		v.structure("%s: expected array, got %s", field, typeName(raw))
		return nil, false
	}
	return items, true
}

// counter returns nil when the field holds something other than a
// non-negative integer. An absent counter is a zero watermark.
func (v *validator) counter(root map[string]any, field string) *int {
	raw, ok := optional(root, field)
	if !ok {
		zero := 0
		return &zero
	}
	n, ok := asInt(raw)
	if !ok || n < 0 {
		v.structure("%s: expected non-negative integer, got %s", field, typeName(raw))
		return nil
	}
	return &n
}

func (v *validator) checkExportSettings(root map[string]any) {
	raw, ok := root["exportSettings"]
	if !ok {
		v.structure("exportSettings: missing")
		return
	}
	settings, ok := raw.(map[string]any)
	if !ok {
		v.structure("exportSettings: expected object, got %s", typeName(raw))
		return
	}
	for _, field := range []string{"width", "height", "fps", "bitrate"} {
		f, ok := asNumber(settings[field])
		if !ok || f <= 0 {
			v.structure("exportSettings.%s: expected positive number", field)
		}
	}
}

func (v *validator) parseTracks(items []any) {
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			v.structure("tracks[%d]: expected object, got %s", i, typeName(item))
			continue
		}
		id, ok := asInt(obj["id"])
		if !ok || id < 0 {
			v.structure("tracks[%d].id: expected non-negative integer", i)
			continue
		}
		if raw, ok := optional(obj, "name"); ok {
			if _, ok := asString(raw); !ok {
				v.structure("tracks[%d].name: expected string, got %s", i, typeName(raw))
				continue
			}
		}
		v.trackIDs = append(v.trackIDs, id)
	}
}

func (v *validator) parseMedia(items []any) {
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			v.structure("mediaFiles[%d]: expected object, got %s", i, typeName(item))
			continue
		}

		before := len(v.res.StructureErrors)
		a := asset{index: i}

		if s, ok := asString(obj["path"]); !ok || s == "" {
			v.structure("mediaFiles[%d].path: expected non-empty string", i)
		} else {
			a.Path = s
		}

		if s, ok := asString(obj["name"]); !ok {
			v.structure("mediaFiles[%d].name: expected string", i)
		} else {
			a.Name = s
		}

		if s, ok := asString(obj["kind"]); !ok || !project.ValidKinds[project.Kind(s)] {
			v.structure("mediaFiles[%d].kind: expected one of video, audio, component", i)
		} else {
			a.Kind = project.Kind(s)
		}

		if raw, ok := optional(obj, "duration"); ok {
			if f, ok := asNumber(raw); !ok || f < 0 {
				v.structure("mediaFiles[%d].duration: expected non-negative number", i)
			} else {
				a.Duration = f
			}
		}

		for _, field := range []string{"extension", "bundlePath"} {
			raw, ok := optional(obj, field)
			if !ok {
				continue
			}
			s, ok := asString(raw)
			if !ok {
				v.structure("mediaFiles[%d].%s: expected string, got %s", i, field, typeName(raw))
				continue
			}
			if field == "extension" {
				a.Extension = s
			} else {
				a.BundlePath = s
			}
		}

		if len(v.res.StructureErrors) == before {
			v.assets = append(v.assets, a)
		}
	}
}

func (v *validator) parseClips(items []any) {
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			v.structure("timelineClips[%d]: expected object, got %s", i, typeName(item))
			continue
		}

		before := len(v.res.StructureErrors)
		c := clip{index: i}

		if id, ok := asInt(obj["id"]); !ok || id < 1 {
			v.structure("timelineClips[%d].id: expected positive integer", i)
		} else {
			c.ID = id
		}

		if s, ok := asString(obj["mediaPath"]); !ok || s == "" {
			v.structure("timelineClips[%d].mediaPath: expected non-empty string", i)
		} else {
			c.MediaPath = s
		}

		if track, ok := asInt(obj["track"]); !ok || track < 0 {
			v.structure("timelineClips[%d].track: expected non-negative integer", i)
		} else {
			c.Track = track
		}

		if f, ok := asNumber(obj["startTime"]); !ok || f < 0 {
			v.structure("timelineClips[%d].startTime: expected non-negative number", i)
		} else {
			c.StartTime = f
		}

		if f, ok := asNumber(obj["duration"]); !ok {
			v.structure("timelineClips[%d].duration: expected number, got %s", i, typeName(obj["duration"]))
		} else {
			c.Duration = f
		}

		optionalNumbers := []struct {
			field string
			dst   *float64
		}{
			{"trimStart", &c.TrimStart},
			{"trimEnd", &c.TrimEnd},
			{"originalDuration", &c.OriginalDuration},
			{"x", &c.X},
			{"y", &c.Y},
			{"scale", &c.Scale},
		}
		for _, f := range optionalNumbers {
			raw, ok := optional(obj, f.field)
			if !ok {
				continue
			}
			n, ok := asNumber(raw)
			if !ok {
				v.structure("timelineClips[%d].%s: expected number, got %s", i, f.field, typeName(raw))
				continue
			}
			*f.dst = n
			if f.field == "originalDuration" {
				c.hasOriginal = true
			}
		}

		for _, field := range []string{"scaleX", "scaleY"} {
			raw, ok := optional(obj, field)
			if !ok {
				continue
			}
			n, ok := asNumber(raw)
			if !ok {
				v.structure("timelineClips[%d].%s: expected number, got %s", i, field, typeName(raw))
				continue
			}
			if field == "scaleX" {
				c.ScaleX = &n
			} else {
				c.ScaleY = &n
			}
		}

		if len(v.res.StructureErrors) == before {
			v.clips = append(v.clips, c)
		}
	}
}
