package validate

import (
	"os"

	"github.com/heimdex/heimdex-studio/internal/project"
)

// checkIntegrity runs over structurally sound entries only.
func (v *validator) checkIntegrity() {
	assets := make([]project.MediaAsset, 0, len(v.assets))
	firstByPath := make(map[string]int, len(v.assets))
	for _, a := range v.assets {
		if first, dup := firstByPath[a.Path]; dup {
			v.integrity("mediaFiles[%d]: duplicate path %q (also mediaFiles[%d])", a.index, a.Path, first)
			continue
		}
		firstByPath[a.Path] = a.index
		assets = append(assets, a.MediaAsset)
	}

	firstByID := make(map[int]int, len(v.clips))
	for _, c := range v.clips {
		if first, dup := firstByID[c.ID]; dup {
			v.integrity("timelineClips[%d]: duplicate clip id %d (also timelineClips[%d])", c.index, c.ID, first)
		} else {
			firstByID[c.ID] = c.index
		}

		if project.ResolveKind(c.TimelineClip, assets) == project.KindUnknown {
			v.integrity("clip %d: mediaPath %q does not match any media file", c.ID, c.MediaPath)
		}

		v.checkTiming(c)
	}

	v.checkOverlaps()
	v.checkCounters()
}

func (v *validator) checkTiming(c clip) {
	if c.Duration <= 0 {
		v.integrity("clip %d: duration must be positive, got %s", c.ID, num(c.Duration))
	}

	trimsOK := true
	if c.TrimStart < 0 {
		v.integrity("clip %d: trimStart must not be negative, got %s", c.ID, num(c.TrimStart))
		trimsOK = false
	}
	if c.TrimEnd < 0 {
		v.integrity("clip %d: trimEnd must not be negative, got %s", c.ID, num(c.TrimEnd))
		trimsOK = false
	}

	if !c.hasOriginal {
		return
	}
	if c.OriginalDuration < 0 {
		v.integrity("clip %d: originalDuration must not be negative, got %s", c.ID, num(c.OriginalDuration))
		return
	}
	// Zero means the source length is unknown.
	if c.OriginalDuration == 0 || !trimsOK {
		return
	}

	if c.TrimStart > c.OriginalDuration {
		v.integrity("clip %d: trimStart %s exceeds originalDuration %s", c.ID, num(c.TrimStart), num(c.OriginalDuration))
		return
	}
	if c.TrimEnd > c.OriginalDuration {
		v.integrity("clip %d: trimEnd %s exceeds originalDuration %s", c.ID, num(c.TrimEnd), num(c.OriginalDuration))
		return
	}

	available := c.OriginalDuration - c.TrimStart - c.TrimEnd
	if available < -trimTolerance {
		v.integrity("clip %d: trimStart + trimEnd %s exceeds originalDuration %s",
			c.ID, num(c.TrimStart+c.TrimEnd), num(c.OriginalDuration))
		return
	}
	if c.Duration > 0 && c.Duration > available+trimTolerance {
		v.integrity("clip %d: duration %s exceeds trimmed source length %s", c.ID, num(c.Duration), num(available))
	}
}

// checkOverlaps compares every pair of clips sharing a track, in document
// order, so each overlapping pair is reported exactly once.
func (v *validator) checkOverlaps() {
	for i := 0; i < len(v.clips); i++ {
		a := v.clips[i]
		for j := i + 1; j < len(v.clips); j++ {
			b := v.clips[j]
			if a.Track != b.Track {
				continue
			}
			if a.Overlaps(b.TimelineClip) {
				v.integrity("clips %d and %d overlap on track %d", a.ID, b.ID, a.Track)
			}
		}
	}
}

func (v *validator) checkCounters() {
	if v.clipCounter != nil {
		maxID := 0
		for _, c := range v.clips {
			if c.ID > maxID {
				maxID = c.ID
			}
		}
		if *v.clipCounter < maxID {
			v.integrity("clipIdCounter %d is below the highest clip id %d", *v.clipCounter, maxID)
		}
	}

	if v.trackCounter != nil {
		maxTrack := 0
		for _, id := range v.trackIDs {
			if id > maxTrack {
				maxTrack = id
			}
		}
		for _, c := range v.clips {
			if c.Track > maxTrack {
				maxTrack = c.Track
			}
		}
		if *v.trackCounter < maxTrack {
			v.integrity("trackIdCounter %d is below the highest track %d", *v.trackCounter, maxTrack)
		}
	}
}

// checkDisk only reads. A missing file is a warning, not an integrity
// error: projects get moved between machines and only playback suffers.
func (v *validator) checkDisk() {
	for _, a := range v.assets {
		label := a.Name
		if label == "" {
			label = a.Path
		}

		path := project.ResolvePath(v.projectDir, a.Path)
		if !fileExists(path) {
			v.warn("media file %q: not found on disk at %s", label, path)
		}

		if a.Kind != project.KindComponent {
			continue
		}
		if a.BundlePath == "" {
			v.warn("media file %q: component has no bundlePath", label)
			continue
		}
		bundle := project.ResolvePath(v.projectDir, a.BundlePath)
		if !fileExists(bundle) {
			v.warn("media file %q: bundle not found on disk at %s", label, bundle)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
