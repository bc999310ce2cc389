package export

import (
	"math"
	"sort"

	"github.com/heimdex/heimdex-studio/internal/project"
)

// ResolveTimeline joins every clip against the asset list, ordered by track
// and then start time. Clips whose mediaPath matches no asset are returned
// by id in the second result and left out of the first.
func ResolveTimeline(doc *project.Document) ([]ResolvedClip, []int) {
	clips := append([]project.TimelineClip(nil), doc.TimelineClips...)
	sort.SliceStable(clips, func(i, j int) bool {
		if clips[i].Track != clips[j].Track {
			return clips[i].Track < clips[j].Track
		}
		return clips[i].StartTime < clips[j].StartTime
	})

	resolved := make([]ResolvedClip, 0, len(clips))
	unresolved := []int{}
	for _, c := range clips {
		kind := project.ResolveKind(c, doc.MediaFiles)
		if kind == project.KindUnknown {
			unresolved = append(unresolved, c.ID)
			continue
		}
		asset := doc.MediaFiles[doc.FindMedia(c.MediaPath)]

		name := SanitizeName(asset.Name, 160)
		if name == "" {
			name = "clip"
		}
		resolved = append(resolved, ResolvedClip{
			ClipID:      c.ID,
			ClipName:    name,
			MediaPath:   asset.Path,
			Kind:        kind,
			Track:       c.Track,
			SourceInMs:  secondsToMs(c.TrimStart),
			SourceOutMs: secondsToMs(c.TrimStart + c.Duration),
			RecordInMs:  secondsToMs(c.StartTime),
			RecordOutMs: secondsToMs(c.End()),
		})
	}
	return resolved, unresolved
}

func secondsToMs(s float64) int {
	return int(math.Round(s * 1000))
}
