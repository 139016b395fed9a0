package configfiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/docsynth/internal/config"
)

// TestGetConfigExample checks the example parses into a valid configuration
func TestGetConfigExample(t *testing.T) {
	content, err := GetConfigExample()
	require.NoError(t, err)
	require.NotEmpty(t, content)

	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("DOCSYNTH_DATA_DIR", "")

	cfg := config.Default()
	require.NoError(t, config.Parse(content, cfg))
	assert.Nil(t, cfg.Validate())

	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "data", cfg.Output.DataDir)
	assert.Equal(t, "data/index.db", cfg.Output.IndexDB)
	assert.Equal(t, config.DefaultDocumentTypes, cfg.Documents.Types)
}

func TestWriteConfigExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	written, err := WriteConfigExample(path, false)
	require.NoError(t, err)
	assert.True(t, written)

	require.NoError(t, os.WriteFile(path, []byte("seed: 1\n"), 0644))

	written, err = WriteConfigExample(path, false)
	require.NoError(t, err)
	assert.False(t, written, "existing file is kept")
	data, _ := os.ReadFile(path)
	assert.Equal(t, "seed: 1\n", string(data))

	written, err = WriteConfigExample(path, true)
	require.NoError(t, err)
	assert.True(t, written)
	data, _ = os.ReadFile(path)
	assert.Contains(t, string(data), "DocSynth configuration")
}
