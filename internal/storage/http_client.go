package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// RequestError is a non-2xx answer from a remote studio host.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("asset delete failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx). Client errors are
// permanent.
func (e *RequestError) IsRetryable() bool {
	return e.StatusCode >= 500
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HTTPClient deletes assets through another studio host's API, for editors
// that do not share a filesystem with the project store.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, token string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *HTTPClient) DeleteAsset(ctx context.Context, projectID, relativePath string) error {
	endpoint := fmt.Sprintf("%s/projects/%s/assets?path=%s",
		c.baseURL, url.PathEscape(projectID), url.QueryEscape(relativePath))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-ID", uuid.NewString()[:8])

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result deleteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode delete response: %w", err)
	}
	if !result.Success {
		return &DeleteError{Path: relativePath, Err: fmt.Errorf("%s", result.Error)}
	}

	c.logger.Debug("remote asset deleted", "project_id", projectID, "path", relativePath)
	return nil
}
