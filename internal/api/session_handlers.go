package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/heimdex-studio/internal/builtin"
	"github.com/heimdex/heimdex-studio/internal/cascade"
	"github.com/heimdex/heimdex-studio/internal/project"
)

// openSession returns the live session of the project named in the URL,
// opening it on first use. It writes the error response itself.
func openSession(w http.ResponseWriter, r *http.Request, cfg ServerConfig) (*cascade.Session, bool) {
	s, err := cfg.Catalog.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, cfg, err)
		return nil, false
	}
	return s, true
}

func importMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImportMediaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", CodeBadRequest)
			return
		}

		s, ok := openSession(w, r, cfg)
		if !ok {
			return
		}

		asset, err := cfg.Importer.Import(r.Context(), s, req.Path)
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, asset)
	}
}

func removeMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := pathParamInt(r, "index")
		if !ok {
			WriteError(w, http.StatusBadRequest, "index must be an integer", CodeBadRequest)
			return
		}

		s, ok := openSession(w, r, cfg)
		if !ok {
			return
		}

		removal, removed := s.RemoveMediaFile(index)
		if !removed {
			WriteError(w, http.StatusNotFound, "no media file at that index", CodeNotFound)
			return
		}
		WriteJSON(w, http.StatusOK, removal)
	}
}

func removeMediaByPathHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if path == "" {
			WriteError(w, http.StatusBadRequest, "path query parameter is required", CodeBadRequest)
			return
		}

		s, ok := openSession(w, r, cfg)
		if !ok {
			return
		}

		removal, removed := s.RemoveMediaByPath(project.ResolvePath(s.ProjectDir(), path))
		if !removed {
			WriteError(w, http.StatusNotFound, "media file not found", CodeNotFound)
			return
		}
		WriteJSON(w, http.StatusOK, removal)
	}
}

// addClipHandler places a new clip. A clip without an id gets the next one;
// a clip carrying an id (pasted or imported) keeps it.
func addClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var clip project.TimelineClip
		if err := json.NewDecoder(r.Body).Decode(&clip); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}

		s, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		clip.MediaPath = project.ResolvePath(s.ProjectDir(), clip.MediaPath)

		var err error
		if clip.ID == 0 {
			clip, err = s.AddClip(clip)
		} else {
			err = s.InsertClip(clip)
		}
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, clip)
	}
}

func removeClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathParamInt(r, "clipID")
		if !ok {
			WriteError(w, http.StatusBadRequest, "clip id must be an integer", CodeBadRequest)
			return
		}

		s, ok := openSession(w, r, cfg)
		if !ok {
			return
		}

		s.RemoveClip(id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func ensureTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TrackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}

		s, ok := openSession(w, r, cfg)
		if !ok {
			return
		}

		id, err := s.EnsureTrack(req.ID, req.Name)
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, TrackResponse{ID: id})
	}
}

func selectionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}

		s, ok := openSession(w, r, cfg)
		if !ok {
			return
		}

		var err error
		if req.SelectedMediaIndex != nil {
			err = errors.Join(err, s.SelectMedia(*req.SelectedMediaIndex))
		}
		if req.SelectedClipID != nil {
			err = errors.Join(err, s.SelectClip(*req.SelectedClipID))
		}
		if req.PreviewPath != nil {
			path := *req.PreviewPath
			if path != "" {
				path = project.ResolvePath(s.ProjectDir(), path)
			}
			err = errors.Join(err, s.SetPreview(path))
		}
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, s.State())
	}
}

func installComponentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Installer == nil {
			WriteError(w, http.StatusNotFound, "builtin components are not configured", CodeNotFound)
			return
		}

		var req InstallComponentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", CodeBadRequest)
			return
		}

		s, ok := openSession(w, r, cfg)
		if !ok {
			return
		}

		target := filepath.Join(project.MediaDir(s.ProjectDir()), req.Name+builtin.SourceExt)
		if s.Snapshot().FindMedia(target) >= 0 {
			WriteError(w, http.StatusBadRequest, "component already installed", CodeBadRequest)
			return
		}

		asset, err := cfg.Installer.Install(r.Context(), s.ProjectDir(), req.Name)
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		if err := s.AddMediaFile(asset); err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, asset)
	}
}

// deleteAssetHandler is the storage collaborator endpoint. Refused or failed
// deletions answer 200 with success=false so callers can tell them apart
// from transport errors.
func deleteAssetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if path == "" {
			WriteError(w, http.StatusBadRequest, "path query parameter is required", CodeBadRequest)
			return
		}

		p, err := cfg.Catalog.GetProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}

		if err := cfg.Storage.DeleteAsset(r.Context(), p.ID, path); err != nil {
			cfg.Logger.Warn("asset deletion refused", "project_id", p.ID, "path", path, "error", err)
			WriteJSON(w, http.StatusOK, AssetDeleteResponse{Success: false, Error: err.Error()})
			return
		}
		WriteJSON(w, http.StatusOK, AssetDeleteResponse{Success: true})
	}
}
