package api

import (
	"time"

	"github.com/heimdex/heimdex-studio/internal/cascade"
	"github.com/heimdex/heimdex-studio/internal/catalog"
	"github.com/heimdex/heimdex-studio/internal/project"
	"github.com/heimdex/heimdex-studio/internal/validate"
)

type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	UptimeS        int64  `json:"uptime_s"`
	AutosavePaused bool   `json:"autosave_paused"`
}

type ProjectResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Dir          string  `json:"dir"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	LastOpenedAt *string `json:"last_opened_at,omitempty"`
}

// CreateProjectRequest creates a new project under the projects directory
// when Name is set, or registers an existing directory when Dir is set.
type CreateProjectRequest struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
}

type ValidationResponse struct {
	Valid bool `json:"valid"`
	validate.Result
}

type DocumentResponse struct {
	Document *project.Document `json:"document"`
	State    cascade.State     `json:"state"`
	Revision uint64            `json:"revision"`
}

type ImportMediaRequest struct {
	Path string `json:"path"`
}

type TrackRequest struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type TrackResponse struct {
	ID int `json:"id"`
}

// SelectionRequest updates whichever fields are present.
type SelectionRequest struct {
	SelectedMediaIndex *int    `json:"selectedMediaIndex"`
	SelectedClipID     *int    `json:"selectedClipId"`
	PreviewPath        *string `json:"previewPath"`
}

type InstallComponentRequest struct {
	Name string `json:"name"`
}

type ComponentsResponse struct {
	Components []string `json:"components"`
}

// AssetDeleteResponse is the storage collaborator's reply shape.
type AssetDeleteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type InvalidProjectResponse struct {
	ErrorResponse
	Validation validate.Result `json:"validation"`
}

func ProjectToResponse(p *catalog.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		Dir:       p.Dir,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
	if p.LastOpenedAt != nil {
		s := p.LastOpenedAt.Format(time.RFC3339)
		resp.LastOpenedAt = &s
	}
	return resp
}
