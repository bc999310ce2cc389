// Package catalog keeps the registry of projects known to the studio and the
// live editing sessions opened on them.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/heimdex/heimdex-studio/internal/cascade"
	"github.com/heimdex/heimdex-studio/internal/logging"
	"github.com/heimdex/heimdex-studio/internal/metadata"
	"github.com/heimdex/heimdex-studio/internal/project"
	"github.com/heimdex/heimdex-studio/internal/storage"
	"github.com/heimdex/heimdex-studio/internal/validate"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectInvalid  = errors.New("project document is invalid")
	ErrProjectExists   = errors.New("project already exists")
	ErrInvalidName     = errors.New("invalid project name")
)

// InvalidProjectError carries the validation result that kept a project
// from opening.
type InvalidProjectError struct {
	ProjectID string
	Result    validate.Result
}

func (e *InvalidProjectError) Error() string {
	return fmt.Sprintf("project %s: %s", e.ProjectID, validate.Summary(e.Result))
}

func (e *InvalidProjectError) Unwrap() error {
	return ErrProjectInvalid
}

type Options struct {
	ProjectsDir string
	// Storage deletes project-owned files. Defaults to the local filesystem.
	Storage       storage.AssetDeleter
	DeleteTimeout time.Duration
	Logger        *slog.Logger
}

type Service struct {
	repo          Repository
	projectsDir   string
	storage       storage.AssetDeleter
	cache         *metadata.Cache
	deleteTimeout time.Duration
	logger        *slog.Logger
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*openSession
}

type openSession struct {
	session *cascade.Session

	// saveMu serializes snapshot, write and saved-revision update so an
	// older snapshot never lands on disk after a newer one.
	saveMu sync.Mutex
	saved  uint64
}

func NewService(repo Repository, opts Options) *Service {
	logger := logging.WithComponent(logging.OrDiscard(opts.Logger), "catalog")
	s := &Service{
		repo:          repo,
		projectsDir:   opts.ProjectsDir,
		storage:       opts.Storage,
		deleteTimeout: opts.DeleteTimeout,
		logger:        logger,
		now:           time.Now,
		sessions:      make(map[string]*openSession),
	}
	s.cache = metadata.NewCache(repo, logging.WithComponent(logging.OrDiscard(opts.Logger), "metadata"))
	if s.storage == nil {
		s.storage = storage.NewLocal(s, opts.Logger)
	}
	return s
}

// Cache returns the metadata cache shared by every session.
func (s *Service) Cache() *metadata.Cache {
	return s.cache
}

// ProjectDir resolves a project id to its directory.
func (s *Service) ProjectDir(ctx context.Context, id string) (string, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", fmt.Errorf("%w: %s", storage.ErrUnknownProject, id)
	}
	return p.Dir, nil
}

// CreateProject makes <projectsDir>/<name> with an empty document and a
// media directory, and registers it.
func (s *Service) CreateProject(ctx context.Context, name string) (*Project, error) {
	if !validProjectName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	dir := filepath.Join(s.projectsDir, name)
	docPath := project.DocumentPath(dir)
	if _, err := os.Stat(docPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectExists, dir)
	}

	if err := os.MkdirAll(project.MediaDir(dir), 0755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	if err := project.Save(docPath, project.NewDocument(name, s.now())); err != nil {
		return nil, err
	}
	return s.register(ctx, name, dir)
}

// RegisterProject adds an existing project directory to the catalog. A
// directory that is already registered returns its existing entry.
func (s *Service) RegisterProject(ctx context.Context, dir string) (*Project, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if existing, err := s.repo.GetProjectByDir(ctx, absDir); err != nil || existing != nil {
		return existing, err
	}

	doc, err := project.Load(project.DocumentPath(absDir))
	name := filepath.Base(absDir)
	if err == nil && validProjectName(doc.Name) {
		name = doc.Name
	} else if errors.Is(err, project.ErrNotFound) {
		return nil, err
	}
	return s.register(ctx, name, absDir)
}

func (s *Service) register(ctx context.Context, name, dir string) (*Project, error) {
	if existing, err := s.repo.GetProjectByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: name %q", ErrProjectExists, name)
	}

	now := s.now().UTC()
	p := &Project{ID: NewID(), Name: name, Dir: dir, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("project registered", "project_id", p.ID, "name", name, "dir", logging.SanitizePath(dir))
	return p, nil
}

func (s *Service) ListProjects(ctx context.Context) ([]*Project, error) {
	return s.repo.ListProjects(ctx)
}

// GetProject looks a project up by id, falling back to its name.
func (s *Service) GetProject(ctx context.Context, idOrName string) (*Project, error) {
	p, err := s.repo.GetProject(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p, err = s.repo.GetProjectByName(ctx, idOrName)
		if err != nil {
			return nil, err
		}
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, idOrName)
	}
	return p, nil
}

// UnregisterProject closes the project's session and forgets it. Files on
// disk are left alone.
func (s *Service) UnregisterProject(ctx context.Context, id string) error {
	if err := s.Close(ctx, id); err != nil && !errors.Is(err, ErrProjectNotFound) {
		return err
	}
	return s.repo.DeleteProject(ctx, id)
}

// ValidateProject validates the project's document as it is on disk.
func (s *Service) ValidateProject(ctx context.Context, id string) (validate.Result, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return validate.Result{}, err
	}
	raw, _, err := project.ReadRaw(project.DocumentPath(p.Dir))
	if err != nil {
		return validate.Result{}, err
	}
	return validate.Validate(raw, p.Dir), nil
}

// Open returns the live session of a project, loading it on first use. Only
// documents without structural or integrity errors are opened.
func (s *Service) Open(ctx context.Context, id string) (*cascade.Session, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if open, ok := s.sessions[p.ID]; ok {
		return open.session, nil
	}

	raw, data, err := project.ReadRaw(project.DocumentPath(p.Dir))
	if err != nil {
		return nil, err
	}
	result := validate.Validate(raw, p.Dir)
	if !result.Valid() {
		s.logger.Warn("refusing to open invalid project",
			"project_id", p.ID,
			"structure_errors", len(result.StructureErrors),
			"integrity_errors", len(result.IntegrityErrors),
		)
		return nil, &InvalidProjectError{ProjectID: p.ID, Result: result}
	}
	for _, w := range result.Warnings {
		s.logger.Info("project warning", "project_id", p.ID, "warning", w)
	}

	doc, err := project.Decode(data)
	if err != nil {
		return nil, err
	}

	session := cascade.NewSession(doc, cascade.Options{
		ProjectID:     p.ID,
		ProjectDir:    p.Dir,
		Storage:       s.storage,
		Cache:         s.cache,
		Logger:        s.logger,
		DeleteTimeout: s.deleteTimeout,
	})
	s.sessions[p.ID] = &openSession{session: session, saved: session.Revision()}

	if err := s.repo.TouchProjectOpened(ctx, p.ID, s.now()); err != nil {
		s.logger.Warn("failed to record project open", "project_id", p.ID, "error", err)
	}
	s.logger.Info("project opened", "project_id", p.ID,
		"media_files", len(doc.MediaFiles), "clips", len(doc.TimelineClips))
	return session, nil
}

// Save writes the project's session to disk if it changed since the last
// save.
func (s *Service) Save(ctx context.Context, id string) error {
	s.mu.Lock()
	open, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s is not open", ErrProjectNotFound, id)
	}
	return s.save(id, open)
}

func (s *Service) save(id string, open *openSession) error {
	open.saveMu.Lock()
	defer open.saveMu.Unlock()

	doc, rev := open.session.SnapshotRevision()

	s.mu.Lock()
	saved := open.saved
	s.mu.Unlock()
	if rev == saved {
		return nil
	}

	if err := project.Save(project.DocumentPath(open.session.ProjectDir()), doc); err != nil {
		return fmt.Errorf("save project %s: %w", id, err)
	}

	s.mu.Lock()
	if rev > open.saved {
		open.saved = rev
	}
	s.mu.Unlock()
	s.logger.Debug("project saved", "project_id", id, "revision", rev)
	return nil
}

// SaveAll saves every dirty open session and returns the first error.
func (s *Service) SaveAll(ctx context.Context) error {
	var firstErr error
	for id, open := range s.openSessions() {
		if err := s.save(id, open); err != nil {
			s.logger.Warn("save failed", "project_id", id, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Close saves a session, waits for its pending deletions and drops it.
func (s *Service) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	open, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s is not open", ErrProjectNotFound, id)
	}

	err := s.save(id, open)
	open.session.Wait()

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return err
}

// Shutdown saves and closes every open session.
func (s *Service) Shutdown(ctx context.Context) error {
	var firstErr error
	for id := range s.openSessions() {
		if err := s.Close(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Service) openSessions() map[string]*openSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*openSession, len(s.sessions))
	for id, open := range s.sessions {
		out[id] = open
	}
	return out
}

// EnsureAuthToken returns the API token, generating and storing one on
// first use.
func (s *Service) EnsureAuthToken(ctx context.Context) (string, error) {
	token, err := s.repo.GetConfig(ctx, ConfigKeyAuthToken)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}
	token = strings.ReplaceAll(NewID()+NewID(), "-", "")
	if err := s.repo.SetConfig(ctx, ConfigKeyAuthToken, token); err != nil {
		return "", err
	}
	s.logger.Info("generated API token", "token", logging.SanitizeToken(token))
	return token, nil
}

func validProjectName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
