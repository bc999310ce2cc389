package api

import (
	"encoding/json"
	"net/http"

	exportpkg "github.com/heimdex/heimdex-studio/internal/export"
	"github.com/heimdex/heimdex-studio/internal/logging"
)

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exportpkg.ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}

		s, ok := openSession(w, r, cfg)
		if !ok {
			return
		}

		resp, err := exportpkg.WriteEDL(s.Snapshot(), req)
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}

		cfg.Logger.Info("timeline exported",
			"project_id", s.ProjectID(),
			"format", resp.Format,
			"clips", resp.ClipCount,
			"unresolved", len(resp.UnresolvedClips),
			"output", logging.SanitizePath(resp.OutputPath),
		)
		WriteJSON(w, http.StatusOK, resp)
	}
}
