package api

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/heimdex/heimdex-studio/internal/builtin"
	"github.com/heimdex/heimdex-studio/internal/cascade"
	"github.com/heimdex/heimdex-studio/internal/catalog"
	exportpkg "github.com/heimdex/heimdex-studio/internal/export"
	"github.com/heimdex/heimdex-studio/internal/pipeline"
	"github.com/heimdex/heimdex-studio/internal/project"
	"github.com/heimdex/heimdex-studio/internal/storage"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInvalidProject = "INVALID_PROJECT"
	CodeInternal       = "INTERNAL_ERROR"
)

var badRequestErrors = []error{
	catalog.ErrInvalidName,
	cascade.ErrDuplicateMedia,
	cascade.ErrUnknownMedia,
	cascade.ErrDuplicateClip,
	cascade.ErrOverlap,
	cascade.ErrInvalidClip,
	cascade.ErrOutOfRange,
	pipeline.ErrUnsupportedMedia,
	exportpkg.ErrUnsupportedFormat,
	exportpkg.ErrInvalidOutputDir,
	exportpkg.ErrNothingToExport,
	storage.ErrAbsolutePath,
	storage.ErrOutsideMediaDir,
}

var notFoundErrors = []error{
	catalog.ErrProjectNotFound,
	cascade.ErrUnknownClip,
	builtin.ErrUnknownComponent,
	storage.ErrUnknownProject,
	fs.ErrNotExist,
}

// writeServiceError maps domain errors to an HTTP status and error code.
func writeServiceError(w http.ResponseWriter, cfg ServerConfig, err error) {
	var invalid *catalog.InvalidProjectError
	if errors.As(err, &invalid) {
		WriteJSON(w, http.StatusUnprocessableEntity, InvalidProjectResponse{
			ErrorResponse: ErrorResponse{Error: err.Error(), Code: CodeInvalidProject},
			Validation:    invalid.Result,
		})
		return
	}
	if errors.Is(err, project.ErrInvalidJSON) {
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), CodeInvalidProject)
		return
	}
	if errors.Is(err, catalog.ErrProjectExists) {
		WriteError(w, http.StatusConflict, err.Error(), CodeConflict)
		return
	}
	if isNotFound(err) || matchesAny(err, notFoundErrors) {
		WriteError(w, http.StatusNotFound, err.Error(), CodeNotFound)
		return
	}
	if matchesAny(err, badRequestErrors) {
		WriteError(w, http.StatusBadRequest, err.Error(), CodeBadRequest)
		return
	}

	cfg.Logger.Error("request failed", "error", err)
	WriteError(w, http.StatusInternalServerError, "internal server error", CodeInternal)
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
