package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/heimdex-studio/internal/catalog"
	"github.com/heimdex/heimdex-studio/internal/project"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/components", listComponentsHandler(cfg))

		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects", createProjectHandler(cfg))

		r.Route("/projects/{id}", func(r chi.Router) {
			r.Get("/", getProjectHandler(cfg))
			r.Delete("/", deleteProjectHandler(cfg))
			r.Get("/validate", validateProjectHandler(cfg))

			r.Post("/open", openProjectHandler(cfg))
			r.Post("/save", saveProjectHandler(cfg))
			r.Post("/close", closeProjectHandler(cfg))
			r.Get("/document", documentHandler(cfg))

			r.Post("/media", importMediaHandler(cfg))
			r.Delete("/media", removeMediaByPathHandler(cfg))
			r.Delete("/media/{index}", removeMediaHandler(cfg))

			r.Post("/clips", addClipHandler(cfg))
			r.Delete("/clips/{clipID}", removeClipHandler(cfg))
			r.Post("/tracks", ensureTrackHandler(cfg))
			r.Put("/selection", selectionHandler(cfg))

			r.Post("/components", installComponentHandler(cfg))
			r.Post("/export", exportHandler(cfg))

			r.Delete("/assets", deleteAssetHandler(cfg))
		})
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		resp := HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		}
		if cfg.Autosaver != nil {
			resp.AutosavePaused = cfg.Autosaver.IsPaused()
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Catalog.ListProjects(r.Context())
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}

		resp := make([]ProjectResponse, len(projects))
		for i, p := range projects {
			resp[i] = ProjectToResponse(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}

		var (
			p   *catalog.Project
			err error
		)
		switch {
		case req.Dir != "":
			p, err = cfg.Catalog.RegisterProject(r.Context(), req.Dir)
		case req.Name != "":
			p, err = cfg.Catalog.CreateProject(r.Context(), req.Name)
		default:
			WriteError(w, http.StatusBadRequest, "name or dir is required", CodeBadRequest)
			return
		}
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, ProjectToResponse(p))
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := cfg.Catalog.GetProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := cfg.Catalog.GetProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		if err := cfg.Catalog.UnregisterProject(r.Context(), p.ID); err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func validateProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := cfg.Catalog.ValidateProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, ValidationResponse{Valid: result.Valid(), Result: result})
	}
}

func openProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := cfg.Catalog.Open(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		doc, rev := s.SnapshotRevision()
		WriteJSON(w, http.StatusOK, DocumentResponse{Document: doc, State: s.State(), Revision: rev})
	}
}

func saveProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := cfg.Catalog.GetProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		if err := cfg.Catalog.Save(r.Context(), p.ID); err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func closeProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := cfg.Catalog.GetProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		if err := cfg.Catalog.Close(r.Context(), p.ID); err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func documentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		doc, rev := s.SnapshotRevision()
		WriteJSON(w, http.StatusOK, DocumentResponse{Document: doc, State: s.State(), Revision: rev})
	}
}

func listComponentsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Installer == nil {
			WriteJSON(w, http.StatusOK, ComponentsResponse{Components: []string{}})
			return
		}
		names, err := cfg.Installer.Available()
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, ComponentsResponse{Components: names})
	}
}

func pathParamInt(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	return n, err == nil
}

func isNotFound(err error) bool {
	return errors.Is(err, catalog.ErrProjectNotFound) || errors.Is(err, project.ErrNotFound)
}
