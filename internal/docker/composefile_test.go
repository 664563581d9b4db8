package docker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleCompose mirrors the two-service stack definition the CLI ships.
const sampleCompose = `
services:
  ollama:
    image: ollama/ollama:latest
    ports:
      - "11434:11434"
    volumes:
      - ragstack-ollama:/root/.ollama
  webui:
    image: ghcr.io/open-webui/open-webui:main
    ports:
      - "3000:8080"
    volumes:
      - ragstack-webui:/app/backend/data
volumes:
  ragstack-ollama:
  ragstack-webui:
`

func writeCompose(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadComposeFile verifies service and volume discovery from a
// realistic two-service definition.
func TestLoadComposeFile(t *testing.T) {
	cf, err := LoadComposeFile(writeCompose(t, sampleCompose))
	require.NoError(t, err)

	assert.Equal(t, []string{"ollama", "webui"}, cf.ServiceNames())
	assert.Equal(t, []string{"ragstack-ollama", "ragstack-webui"}, cf.VolumeNames())
	assert.True(t, cf.HasService("ollama"))
	assert.False(t, cf.HasService("postgres"))
}

// TestLoadComposeFileErrors covers the rejection paths: missing file,
// invalid YAML, and a definition without services.
func TestLoadComposeFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadComposeFile(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadComposeFile(writeCompose(t, "services: [not: a: map"))
		assert.Error(t, err)
	})

	t.Run("no services", func(t *testing.T) {
		_, err := LoadComposeFile(writeCompose(t, "volumes:\n  data:\n"))
		assert.Error(t, err)
	})
}
