package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/heimdex/heimdex-studio/internal/metadata"
)

// Repository persists the catalog. Lookups of absent rows return nil, nil.
type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	GetProjectByName(ctx context.Context, name string) (*Project, error)
	GetProjectByDir(ctx context.Context, dir string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	DeleteProject(ctx context.Context, id string) error
	TouchProjectOpened(ctx context.Context, id string, at time.Time) error

	metadata.Store

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const projectColumns = `id, name, dir, created_at, updated_at, last_opened_at`

func (r *SQLiteRepository) CreateProject(ctx context.Context, p *Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, dir, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Dir, p.CreatedAt.UTC().Format(time.RFC3339), p.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

func (r *SQLiteRepository) GetProjectByName(ctx context.Context, name string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE name = ?`, name)
	return scanProject(row)
}

func (r *SQLiteRepository) GetProjectByDir(ctx context.Context, dir string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE dir = ?`, dir)
	return scanProject(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*Project, error) {
	var p Project
	var createdAt, updatedAt string
	var lastOpened sql.NullString

	err := row.Scan(&p.ID, &p.Name, &p.Dir, &createdAt, &updatedAt, &lastOpened)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if lastOpened.Valid {
		if t, err := time.Parse(time.RFC3339, lastOpened.String); err == nil {
			p.LastOpenedAt = &t
		}
	}
	return &p, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) TouchProjectOpened(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE projects SET last_opened_at = ?, updated_at = ? WHERE id = ?
	`, at.UTC().Format(time.RFC3339), at.UTC().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) PutMetadata(ctx context.Context, e metadata.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO media_metadata (path, duration, width, height, codec, frame_rate, probed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			duration = excluded.duration,
			width = excluded.width,
			height = excluded.height,
			codec = excluded.codec,
			frame_rate = excluded.frame_rate,
			probed_at = excluded.probed_at
	`, e.Path, e.Duration, e.Width, e.Height, e.Codec, e.FrameRate, e.ProbedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (r *SQLiteRepository) GetMetadata(ctx context.Context, path string) (*metadata.Entry, error) {
	var e metadata.Entry
	var probedAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT path, duration, width, height, codec, frame_rate, probed_at
		FROM media_metadata WHERE path = ?
	`, path).Scan(&e.Path, &e.Duration, &e.Width, &e.Height, &e.Codec, &e.FrameRate, &probedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.ProbedAt, _ = time.Parse(time.RFC3339Nano, probedAt)
	return &e, nil
}

func (r *SQLiteRepository) DeleteMetadata(ctx context.Context, path string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM media_metadata WHERE path = ?", path)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
