package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/ragstack/internal/model"
)

// newTagsServer returns a test server whose /api/tags lists the given
// model names.
func newTagsServer(t *testing.T, names ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		type m struct {
			Name string `json:"name"`
			Size int64  `json:"size"`
		}
		resp := struct {
			Models []m `json:"models"`
		}{}
		for _, n := range names {
			resp.Models = append(resp.Models, m{Name: n, Size: 4661224676})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

// TestVersion verifies the readiness probe parses the version payload
// and fails cleanly on a dead server.
func TestVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/version", r.URL.Path)
		_, _ = w.Write([]byte(`{"version":"0.5.7"}`))
	}))
	defer srv.Close()

	v, err := NewClient(srv.URL).Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.5.7", v)

	t.Run("unreachable server", func(t *testing.T) {
		dead := httptest.NewServer(nil)
		dead.Close()
		_, err := NewClient(dead.URL).Version(context.Background())
		assert.Error(t, err)
	})
}

// TestListModels verifies /api/tags decoding into domain ModelInfo.
func TestListModels(t *testing.T) {
	srv := newTagsServer(t, "llama3.1:8b", "nomic-embed-text:latest")
	defer srv.Close()

	models, err := NewClient(srv.URL).ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "llama3.1:8b", models[0].Name)
	assert.Equal(t, int64(4661224676), models[0].Size)
}

// TestHasModel pins the substring matching the provisioning skip check
// relies on: a bare name matches its tagged installation.
func TestHasModel(t *testing.T) {
	srv := newTagsServer(t, "llama3.1:8b", "nomic-embed-text:latest")
	defer srv.Close()
	c := NewClient(srv.URL)

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "exact tagged name", query: "llama3.1:8b", want: true},
		{name: "bare name matches tagged install", query: "llama3.1", want: true},
		{name: "embedding model", query: "nomic-embed-text", want: true},
		{name: "absent model", query: "mistral", want: false},
		{name: "different tag", query: "llama3.1:70b", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.HasModel(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestPullModel verifies the NDJSON stream handling: progress callbacks
// per event, and an error event aborting the pull.
func TestPullModel(t *testing.T) {
	t.Run("successful stream with progress", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/pull", r.URL.Path)
			require.Equal(t, http.MethodPost, r.Method)

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "llama3.1:8b", req["name"])

			_, _ = w.Write([]byte(
				`{"status":"pulling manifest"}` + "\n" +
					`{"status":"downloading","completed":100,"total":200}` + "\n" +
					`{"status":"success"}` + "\n"))
		}))
		defer srv.Close()

		var statuses []string
		err := NewClient(srv.URL).PullModel(context.Background(), "llama3.1:8b",
			func(status string, completed, total int64) {
				statuses = append(statuses, status)
			})

		require.NoError(t, err)
		assert.Equal(t, []string{"pulling manifest", "downloading", "success"}, statuses)
	})

	t.Run("error event aborts", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(
				`{"status":"pulling manifest"}` + "\n" +
					`{"error":"pull model manifest: file does not exist"}` + "\n"))
		}))
		defer srv.Close()

		err := NewClient(srv.URL).PullModel(context.Background(), "no-such-model", nil)
		require.Error(t, err)

		var cliErr *model.CLIError
		require.True(t, errors.As(err, &cliErr))
		assert.Equal(t, model.ExitModelFailed, cliErr.Code)
		assert.Contains(t, err.Error(), "file does not exist")
	})

	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"server out of memory"}`))
		}))
		defer srv.Close()

		err := NewClient(srv.URL).PullModel(context.Background(), "llama3.1:8b", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server out of memory")
	})
}

// TestDeleteModel verifies the delete call and its 404 handling.
func TestDeleteModel(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/delete", r.URL.Path)
			require.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		assert.NoError(t, NewClient(srv.URL).DeleteModel(context.Background(), "llama3.1:8b"))
	})

	t.Run("not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		err := NewClient(srv.URL).DeleteModel(context.Background(), "ghost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

// TestEnsureModel verifies the skip-if-present and pull-if-absent paths.
func TestEnsureModel(t *testing.T) {
	t.Run("present model is skipped", func(t *testing.T) {
		pulls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/tags":
				_, _ = w.Write([]byte(`{"models":[{"name":"nomic-embed-text:latest"}]}`))
			case "/api/pull":
				pulls++
				_, _ = w.Write([]byte(`{"status":"success"}` + "\n"))
			}
		}))
		defer srv.Close()

		res, err := EnsureModel(context.Background(), NewClient(srv.URL), "nomic-embed-text", nil)
		require.NoError(t, err)
		assert.True(t, res.Skipped)
		assert.False(t, res.Pulled)
		assert.Equal(t, 0, pulls, "pull must not be invoked for a present model")
	})

	t.Run("absent model is pulled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/tags":
				_, _ = w.Write([]byte(`{"models":[]}`))
			case "/api/pull":
				_, _ = w.Write([]byte(`{"status":"success"}` + "\n"))
			}
		}))
		defer srv.Close()

		res, err := EnsureModel(context.Background(), NewClient(srv.URL), "llama3.1:8b", nil)
		require.NoError(t, err)
		assert.True(t, res.Pulled)
		assert.False(t, res.Skipped)
	})

	t.Run("invalid name is rejected before any request", func(t *testing.T) {
		_, err := EnsureModel(context.Background(), NewClient("http://127.0.0.1:1"), "bad name", nil)
		assert.Error(t, err)
	})
}
