package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/heimdex-studio/internal/catalog"
	"github.com/heimdex/heimdex-studio/internal/logging"
)

type fakeConfigRepo struct {
	catalog.Repository
	token string
}

func (f *fakeConfigRepo) GetConfig(ctx context.Context, key string) (string, error) {
	if key == catalog.ConfigKeyAuthToken {
		return f.token, nil
	}
	return "", nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestAuthMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name   string
		stored string
		header string
		want   int
	}{
		{name: "valid token", stored: "secret", header: "Bearer secret", want: http.StatusTeapot},
		{name: "missing header", stored: "secret", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", stored: "secret", header: "Basic secret", want: http.StatusUnauthorized},
		{name: "wrong token", stored: "secret", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "no token configured", stored: "", header: "Bearer secret", want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AuthMiddleware(&fakeConfigRepo{token: tt.stored}, discardLogger())(ok)
			req := httptest.NewRequest(http.MethodGet, "/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(RequestIDKey).(string)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 8 || rr.Header().Get("X-Request-ID") != seen {
		t.Errorf("generated id = %q, header = %q", seen, rr.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if seen != "abc123" {
		t.Errorf("propagated id = %q, want abc123", seen)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if body := decodeJSONBody(t, rr); body["code"] != "INTERNAL_ERROR" {
		t.Errorf("code = %v", body["code"])
	}
}

func TestLoggingMiddleware_ProjectContext(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		status    int
		wantLevel string
		wantID    string
		wantRoute string
	}{
		{name: "project route", target: "/projects/demo/document", status: http.StatusOK, wantLevel: "INFO", wantID: "demo", wantRoute: "/projects/{id}/document"},
		{name: "project not found", target: "/projects/gone/document", status: http.StatusNotFound, wantLevel: "WARN", wantID: "gone", wantRoute: "/projects/{id}/document"},
		{name: "server error", target: "/projects", status: http.StatusInternalServerError, wantLevel: "ERROR", wantRoute: "/projects"},
		{name: "unmatched", target: "/nowhere", status: http.StatusNotFound, wantLevel: "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := chi.NewRouter()
			r.Use(RequestIDMiddleware())
			r.Use(LoggingMiddleware(logging.NewLoggerTo(&buf, "info")))
			reply := func(w http.ResponseWriter, r *http.Request) {
				WriteJSON(w, tt.status, map[string]string{"ok": "yes"})
			}
			r.Get("/projects", reply)
			r.Route("/projects/{id}", func(r chi.Router) {
				r.Get("/document", reply)
			})

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))

			var line map[string]any
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
				t.Fatalf("log line %q: %v", buf.String(), err)
			}
			if line["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", line["level"], tt.wantLevel)
			}
			if got, _ := line["project_id"].(string); got != tt.wantID {
				t.Errorf("project_id = %q, want %q", got, tt.wantID)
			}
			if got, _ := line["route"].(string); tt.wantRoute != "" && got != tt.wantRoute {
				t.Errorf("route = %q, want %q", got, tt.wantRoute)
			}
			if line["request_id"] != rr.Header().Get("X-Request-ID") {
				t.Errorf("request_id = %v, header %q", line["request_id"], rr.Header().Get("X-Request-ID"))
			}
			if n, _ := line["bytes"].(float64); int(n) != rr.Body.Len() {
				t.Errorf("bytes = %v, want %d", line["bytes"], rr.Body.Len())
			}
		})
	}
}
