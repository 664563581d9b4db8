// Package ollama implements a minimal client for the model server's HTTP
// API: the version probe used by the readiness poll, model listing,
// streamed pulls, and deletion. Only the endpoints the CLI needs are
// covered - inference itself is the web UI's business.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmr-tortoise/ragstack/internal/model"
)

// requestTimeout bounds the quick API calls (version, tags, delete).
// Pulls stream for as long as the download takes and are bounded only by
// the caller's context.
const requestTimeout = 10 * time.Second

// Client talks to one Ollama server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL, e.g.
// "http://localhost:11434".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		// No Timeout on the http.Client itself: it would cut off long
		// pull streams. Quick calls get a per-request context instead.
		http: &http.Client{},
	}
}

// Version returns the server's version string. This is the lightweight
// probe the setup readiness poll hits: it answers as soon as the API is
// listening, without touching any model.
func (c *Client) Version(ctx context.Context) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var resp struct {
		Version string `json:"version"`
	}
	if err := c.getJSON(reqCtx, "/api/version", &resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}

// tagsResponse mirrors the /api/tags payload.
type tagsResponse struct {
	Models []struct {
		Name       string    `json:"name"`
		Size       int64     `json:"size"`
		Digest     string    `json:"digest"`
		ModifiedAt time.Time `json:"modified_at"`
	} `json:"models"`
}

// ListModels returns all models present on the server.
func (c *Client) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var resp tagsResponse
	if err := c.getJSON(reqCtx, "/api/tags", &resp); err != nil {
		return nil, err
	}

	models := make([]model.ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, model.ModelInfo{
			Name:       m.Name,
			Size:       m.Size,
			Digest:     m.Digest,
			ModifiedAt: m.ModifiedAt,
		})
	}
	return models, nil
}

// HasModel reports whether the server already has a model matching name.
// Matching is by substring against the listed model names, mirroring the
// original "list output contains the name" check - so "llama3.1" matches
// an installed "llama3.1:8b".
func (c *Client) HasModel(ctx context.Context, name string) (bool, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range models {
		if strings.Contains(m.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// PullProgress is invoked for each status line of a streamed pull.
// total is 0 while the server hasn't reported a layer size yet.
type PullProgress func(status string, completed, total int64)

// pullEvent mirrors one NDJSON line of the /api/pull stream.
type pullEvent struct {
	Status    string `json:"status"`
	Completed int64  `json:"completed"`
	Total     int64  `json:"total"`
	Error     string `json:"error"`
}

// PullModel downloads a model, streaming progress events to the optional
// callback. The call blocks until the pull finishes, fails, or the
// context is cancelled.
func (c *Client) PullModel(ctx context.Context, name string, progress PullProgress) error {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return fmt.Errorf("failed to encode pull request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build pull request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.WrapCLIError(model.ExitModelFailed,
			fmt.Sprintf("failed to reach model server at %s", c.baseURL), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return model.NewCLIError(model.ExitModelFailed,
			fmt.Sprintf("model server rejected pull of %q: %s", name, readErrorBody(resp.Body)))
	}

	// The pull endpoint streams newline-delimited JSON events until the
	// download completes. A line with an "error" field aborts the pull.
	scanner := bufio.NewScanner(resp.Body)
	// Lines are small, but allow for verbose status messages.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var ev pullEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			// A malformed line is suspicious but not fatal; the stream's
			// final status decides the outcome.
			continue
		}

		if ev.Error != "" {
			return model.NewCLIError(model.ExitModelFailed,
				fmt.Sprintf("pull of %q failed: %s", name, ev.Error))
		}
		if progress != nil {
			progress(ev.Status, ev.Completed, ev.Total)
		}
	}
	if err := scanner.Err(); err != nil {
		return model.WrapCLIError(model.ExitModelFailed,
			fmt.Sprintf("pull stream for %q broke", name), err)
	}

	return nil
}

// DeleteModel removes a model from the server. A 404 is reported as a
// distinct "not found" message since it usually means a typo.
func (c *Client) DeleteModel(ctx context.Context, name string) error {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return fmt.Errorf("failed to encode delete request: %w", err)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodDelete,
		c.baseURL+"/api/delete", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.WrapCLIError(model.ExitModelFailed,
			fmt.Sprintf("failed to reach model server at %s", c.baseURL), err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return model.NewCLIError(model.ExitModelFailed,
			fmt.Sprintf("model %q not found on the server", name))
	default:
		return model.NewCLIError(model.ExitModelFailed,
			fmt.Sprintf("failed to remove model %q: %s", name, readErrorBody(resp.Body)))
	}
}

// getJSON performs a GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("model server at %s is not responding: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server returned %s for %s", resp.Status, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// readErrorBody extracts a short error description from a non-OK response.
// Ollama errors are JSON objects with an "error" field; fall back to the
// raw body when they aren't.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no error detail"
	}

	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		return apiErr.Error
	}
	return strings.TrimSpace(string(data))
}
