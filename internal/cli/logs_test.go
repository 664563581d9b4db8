package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateService(t *testing.T) {
	dir := t.TempDir()
	composeFile := filepath.Join(dir, "docker-compose.yml")
	require.NoError(t, os.WriteFile(composeFile, []byte(`
services:
  ollama:
    image: ollama/ollama:latest
  webui:
    image: ghcr.io/open-webui/open-webui:main
`), 0o644))

	t.Run("declared services pass", func(t *testing.T) {
		assert.NoError(t, validateService(composeFile, "ollama"))
		assert.NoError(t, validateService(composeFile, "webui"))
	})

	t.Run("unknown service is rejected with the declared names", func(t *testing.T) {
		err := validateService(composeFile, "olama")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"olama"`)
		assert.Contains(t, err.Error(), "ollama, webui")
	})

	t.Run("missing compose file passes through", func(t *testing.T) {
		// Without a readable compose file the name can't be checked;
		// compose itself will report the real problem.
		assert.NoError(t, validateService(filepath.Join(dir, "nope.yml"), "anything"))
	})
}
