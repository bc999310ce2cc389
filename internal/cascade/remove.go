package cascade

import (
	"context"
	"slices"

	"github.com/heimdex/heimdex-studio/internal/project"
)

// Removal reports what a media removal touched.
type Removal struct {
	Asset        project.MediaAsset `json:"asset"`
	RemovedClips []int              `json:"removedClips"`
	// Purged lists the absolute cache keys dropped.
	Purged []string `json:"purged"`
	// Deleted lists the project-relative paths scheduled for deletion.
	Deleted []string `json:"deleted"`
}

// RemoveMediaFile removes the asset at index together with every clip that
// references it, repairs selection and preview, purges cached metadata and
// schedules deletion of the files the project owns. An out-of-range index is
// a no-op and reports false.
func (s *Session) RemoveMediaFile(index int) (Removal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeMediaAt(index)
}

// RemoveMediaByPath removes the asset with the given path, if any.
func (s *Session) RemoveMediaByPath(path string) (Removal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeMediaAt(s.doc.FindMedia(path))
}

func (s *Session) removeMediaAt(index int) (Removal, bool) {
	if index < 0 || index >= len(s.doc.MediaFiles) {
		return Removal{}, false
	}
	asset := s.doc.MediaFiles[index]
	s.doc.MediaFiles = append(s.doc.MediaFiles[:index:index], s.doc.MediaFiles[index+1:]...)

	removed := s.removeClipsOf(asset.Path)
	s.repairSelection(index, removed)

	if s.state.Preview.Path == asset.Path {
		s.state.Preview = Preview{}
	}

	r := Removal{Asset: asset, RemovedClips: removed}
	r.Purged = s.purge(asset)
	r.Deleted = s.scheduleDeletes(asset)
	s.touch()

	s.logger.Info("media removed",
		"path", asset.Path,
		"clips_removed", len(removed),
		"deletes_scheduled", len(r.Deleted),
	)
	return r, true
}

func (s *Session) removeClipsOf(path string) []int {
	removed := []int{}
	kept := s.doc.TimelineClips[:0]
	for _, c := range s.doc.TimelineClips {
		if c.MediaPath == path {
			removed = append(removed, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	s.doc.TimelineClips = kept
	return removed
}

func (s *Session) repairSelection(removedIndex int, removedClips []int) {
	for _, id := range removedClips {
		if id == s.state.SelectedClipID {
			s.state.SelectedClipID = NoClip
			break
		}
	}

	sel := s.state.SelectedMediaIndex
	if sel == NoMedia {
		return
	}
	n := len(s.doc.MediaFiles)
	switch {
	case n == 0:
		sel = NoMedia
	case sel >= removedIndex:
		sel--
		if sel < 0 {
			sel = 0
		}
		if sel > n-1 {
			sel = n - 1
		}
	}
	s.state.SelectedMediaIndex = sel
}

// artifactPaths returns the asset's primary and bundle paths, skipping an
// empty bundle path and a bundle path equal to the primary one.
func artifactPaths(asset project.MediaAsset) []string {
	paths := []string{asset.Path}
	if asset.BundlePath != "" && asset.BundlePath != asset.Path {
		paths = append(paths, asset.BundlePath)
	}
	return paths
}

func (s *Session) purge(asset project.MediaAsset) []string {
	keys := make([]string, 0, 2)
	for _, p := range artifactPaths(asset) {
		keys = append(keys, project.ResolvePath(s.projectDir, p))
	}
	s.cache.Purge(context.Background(), keys...)
	return keys
}

func (s *Session) scheduleDeletes(asset project.MediaAsset) []string {
	deleted := []string{}
	if s.projectDir == "" {
		return deleted
	}
	for _, p := range artifactPaths(asset) {
		if !project.WithinMediaDir(s.projectDir, p) {
			s.logger.Debug("leaving external file in place", "path", p)
			continue
		}
		rel, err := project.RelativeToProject(s.projectDir, p)
		if err != nil {
			s.logger.Warn("cannot relativize asset path", "path", p, "error", err)
			continue
		}
		if slices.Contains(deleted, rel) {
			continue
		}
		if s.stillReferenced(p) {
			s.logger.Debug("leaving shared file in place", "path", p)
			continue
		}
		deleted = append(deleted, rel)
		s.dispatchDelete(rel)
	}
	return deleted
}

// stillReferenced reports whether a remaining asset uses path as its primary
// or bundle file. Must be called with mu held.
func (s *Session) stillReferenced(path string) bool {
	abs := project.ResolvePath(s.projectDir, path)
	for _, a := range s.doc.MediaFiles {
		for _, p := range artifactPaths(a) {
			if project.ResolvePath(s.projectDir, p) == abs {
				return true
			}
		}
	}
	return false
}

// RemoveClip removes one clip and clears the clip selection when it pointed
// at it. Removing an absent id reports false.
func (s *Session) RemoveClip(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.FindClip(id)
	if idx < 0 {
		return false
	}
	s.doc.TimelineClips = append(s.doc.TimelineClips[:idx:idx], s.doc.TimelineClips[idx+1:]...)
	if s.state.SelectedClipID == id {
		s.state.SelectedClipID = NoClip
	}
	s.touch()
	return true
}
