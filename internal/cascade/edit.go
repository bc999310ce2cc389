package cascade

import (
	"errors"
	"fmt"

	"github.com/heimdex/heimdex-studio/internal/project"
)

var (
	ErrDuplicateMedia = errors.New("media path already imported")
	ErrUnknownMedia   = errors.New("media path does not match any imported asset")
	ErrDuplicateClip  = errors.New("clip id already in use")
	ErrOverlap        = errors.New("clip overlaps another clip on the same track")
	ErrInvalidClip    = errors.New("invalid clip")
	ErrOutOfRange     = errors.New("index out of range")
	ErrUnknownClip    = errors.New("unknown clip id")
)

const trimTolerance = 1e-6

// AddMediaFile appends an imported asset.
func (s *Session) AddMediaFile(asset project.MediaAsset) error {
	if asset.Path == "" {
		return errors.New("media path must not be empty")
	}
	if !project.ValidKinds[asset.Kind] {
		return fmt.Errorf("unsupported media kind %q", asset.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.FindMedia(asset.Path) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateMedia, asset.Path)
	}
	s.doc.MediaFiles = append(s.doc.MediaFiles, asset)
	s.touch()
	return nil
}

// AddClip places a new clip and assigns it the next clip id. The returned
// clip carries the assigned id.
func (s *Session) AddClip(clip project.TimelineClip) (project.TimelineClip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip.ID = s.doc.NextClipID()
	if err := s.checkPlacement(clip); err != nil {
		return project.TimelineClip{}, err
	}
	s.placeClip(clip)
	return clip, nil
}

// InsertClip places a clip that already carries an id, as pasted or
// imported clips do. The clip watermark rises to cover the id.
func (s *Session) InsertClip(clip project.TimelineClip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if clip.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidClip, clip.ID)
	}
	if s.doc.FindClip(clip.ID) >= 0 {
		return fmt.Errorf("%w: %d", ErrDuplicateClip, clip.ID)
	}
	if err := s.checkPlacement(clip); err != nil {
		return err
	}
	s.placeClip(clip)
	return nil
}

func (s *Session) checkPlacement(clip project.TimelineClip) error {
	if clip.Track < 0 {
		return fmt.Errorf("%w: track must not be negative", ErrInvalidClip)
	}
	if clip.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidClip)
	}
	if clip.StartTime < 0 || clip.TrimStart < 0 || clip.TrimEnd < 0 {
		return fmt.Errorf("%w: negative timing", ErrInvalidClip)
	}
	if clip.OriginalDuration > 0 {
		avail := clip.OriginalDuration - clip.TrimStart - clip.TrimEnd
		if avail < 0 || clip.Duration > avail+trimTolerance {
			return fmt.Errorf("%w: duration %g exceeds trimmed source length %g", ErrInvalidClip, clip.Duration, avail)
		}
	}
	if project.ResolveKind(clip, s.doc.MediaFiles) == project.KindUnknown {
		return fmt.Errorf("%w: %s", ErrUnknownMedia, clip.MediaPath)
	}
	for _, other := range s.doc.TimelineClips {
		if other.Track == clip.Track && other.Overlaps(clip) {
			return fmt.Errorf("%w: clip %d on track %d", ErrOverlap, other.ID, clip.Track)
		}
	}
	return nil
}

func (s *Session) placeClip(clip project.TimelineClip) {
	s.doc.TimelineClips = append(s.doc.TimelineClips, clip)
	s.doc.ObserveClipID(clip.ID)
	s.doc.ObserveTrackID(clip.Track)
	s.touch()
}

// EnsureTrack adds a track entry for id unless one exists, raising the track
// watermark. A zero id allocates the next track id. It returns the track id.
func (s *Session) EnsureTrack(id int, name string) (int, error) {
	if id < 0 {
		return 0, fmt.Errorf("%w: track must not be negative", ErrInvalidClip)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id == 0 {
		id = s.doc.NextTrackID()
	}
	for _, t := range s.doc.Tracks {
		if t.ID == id {
			return id, nil
		}
	}
	s.doc.Tracks = append(s.doc.Tracks, project.Track{ID: id, Name: name})
	s.doc.ObserveTrackID(id)
	s.touch()
	return id, nil
}

// SelectMedia selects the asset at index, or clears the selection when index
// is NoMedia.
func (s *Session) SelectMedia(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index != NoMedia && (index < 0 || index >= len(s.doc.MediaFiles)) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}
	s.state.SelectedMediaIndex = index
	return nil
}

// SelectClip selects a clip by id, or clears the selection with NoClip.
func (s *Session) SelectClip(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != NoClip && s.doc.FindClip(id) < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownClip, id)
	}
	s.state.SelectedClipID = id
	return nil
}

// SetPreview shows the asset with the given path. The kind comes from the
// asset list; an empty path clears the preview.
func (s *Session) SetPreview(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "" {
		s.state.Preview = Preview{}
		return nil
	}
	idx := s.doc.FindMedia(path)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownMedia, path)
	}
	s.state.Preview = Preview{Path: path, Kind: s.doc.MediaFiles[idx].Kind}
	return nil
}
