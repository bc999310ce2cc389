// Package cascade keeps a live project graph consistent while the user edits
// it. Every mutation finishes before the call returns, so readers never see a
// half-applied cascade. Only the on-disk cleanup that follows a media removal
// runs in the background.
package cascade

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/heimdex/heimdex-studio/internal/logging"
	"github.com/heimdex/heimdex-studio/internal/metadata"
	"github.com/heimdex/heimdex-studio/internal/project"
	"github.com/heimdex/heimdex-studio/internal/storage"
)

const (
	// NoMedia is the selected media index when nothing is selected.
	NoMedia = -1
	// NoClip is the selected clip id when nothing is selected. Clip ids start
	// at 1.
	NoClip = 0

	DefaultDeleteTimeout = 30 * time.Second
)

// Preview describes the asset shown in the preview pane.
type Preview struct {
	Path string       `json:"path"`
	Kind project.Kind `json:"kind"`
}

// State is the derived UI state of a session.
type State struct {
	SelectedMediaIndex int     `json:"selectedMediaIndex"`
	SelectedClipID     int     `json:"selectedClipId"`
	Preview            Preview `json:"preview"`
}

// Options configures a Session.
type Options struct {
	ProjectID  string
	ProjectDir string
	// Storage receives deletions of project-owned files. May be nil, in which
	// case nothing is deleted from disk.
	Storage storage.AssetDeleter
	// Cache is purged on removal. A private cache is created when nil.
	Cache         *metadata.Cache
	Logger        *slog.Logger
	DeleteTimeout time.Duration
}

// Session owns one open project document and its derived state.
type Session struct {
	projectID     string
	projectDir    string
	storage       storage.AssetDeleter
	cache         *metadata.Cache
	logger        *slog.Logger
	deleteTimeout time.Duration
	now           func() time.Time

	mu       sync.Mutex
	doc      *project.Document
	state    State
	revision uint64

	pending sync.WaitGroup
}

// NewSession takes ownership of doc.
func NewSession(doc *project.Document, opts Options) *Session {
	logger := logging.WithComponent(logging.OrDiscard(opts.Logger), "cascade")
	if opts.ProjectID != "" {
		logger = logging.WithProjectID(logger, opts.ProjectID)
	}
	cache := opts.Cache
	if cache == nil {
		cache = metadata.NewCache(nil, logger)
	}
	timeout := opts.DeleteTimeout
	if timeout <= 0 {
		timeout = DefaultDeleteTimeout
	}
	if doc.MediaFiles == nil {
		doc.MediaFiles = []project.MediaAsset{}
	}
	if doc.TimelineClips == nil {
		doc.TimelineClips = []project.TimelineClip{}
	}
	if doc.Tracks == nil {
		doc.Tracks = []project.Track{}
	}

	return &Session{
		projectID:     opts.ProjectID,
		projectDir:    opts.ProjectDir,
		storage:       opts.Storage,
		cache:         cache,
		logger:        logger,
		deleteTimeout: timeout,
		now:           time.Now,
		doc:           doc,
		state:         State{SelectedMediaIndex: NoMedia, SelectedClipID: NoClip},
	}
}

func (s *Session) ProjectID() string  { return s.projectID }
func (s *Session) ProjectDir() string { return s.projectDir }

// Cache returns the metadata cache the session purges.
func (s *Session) Cache() *metadata.Cache { return s.cache }

// Snapshot returns a deep copy of the document, safe to save while the
// session keeps mutating.
func (s *Session) Snapshot() *project.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// State returns the current derived UI state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until every background deletion has finished. Hosts call it
// on shutdown; editing code never needs to.
func (s *Session) Wait() {
	s.pending.Wait()
}

// touch must be called with mu held.
func (s *Session) touch() {
	s.doc.UpdatedAt = s.now().UTC()
	s.revision++
}

// Revision counts document mutations. Savers compare it to decide whether
// the document changed since they last wrote it.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// SnapshotRevision returns a deep copy together with the revision it
// reflects.
func (s *Session) SnapshotRevision() (*project.Document, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone(), s.revision
}

func (s *Session) dispatchDelete(relativePath string) {
	if s.storage == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.deleteTimeout)
		defer cancel()

		if err := s.storage.DeleteAsset(ctx, s.projectID, relativePath); err != nil {
			s.logger.Warn("asset deletion failed", "path", relativePath, "error", err)
			return
		}
		s.logger.Debug("asset deleted", "path", relativePath)
	}()
}
