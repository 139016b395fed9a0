package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/docsynth/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 2, cfg.Issues.MinPerDocument)
	assert.Equal(t, 3, cfg.Issues.MaxPerDocument)
	assert.Equal(t, 3, cfg.Issues.InjectionRetries)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.False(t, cfg.Output.StrictAssembly)
	assert.Equal(t, "section", cfg.Prompts.Section)

	// The pool is copied, so mutating it must not leak into the package default
	cfg.Documents.Types[0] = "changed"
	assert.NotEqual(t, "changed", DefaultDocumentTypes[0])
}

func TestLoad(t *testing.T) {
	t.Setenv("DOCSYNTH_TEST_KEY", "secret-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
seed: 7
tools:
  count: 1
documents:
  types: ["Privacy Policy", "Cookie Policy"]
  per_tool: 2
issues:
  min_per_document: 1
  max_per_document: 1
llm:
  provider: mock
  api_key: ${DOCSYNTH_TEST_KEY}
output:
  data_dir: ${DOCSYNTH_TEST_UNSET:-out}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, []string{"Privacy Policy", "Cookie Policy"}, cfg.Documents.Types)
	assert.Equal(t, "secret-key", cfg.LLM.APIKey)
	assert.Equal(t, "out", cfg.Output.DataDir)
	// Unset keys keep their defaults
	assert.Equal(t, 3, cfg.Issues.InjectionRetries)
	assert.Equal(t, defaultModel, cfg.Models.TOC)
	assert.Nil(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeConfigNotFound))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("seed: [unterminated"), 0644))

		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeConfigParse))
	})
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DOCSYNTH_SET", "value")

	tests := []struct {
		in   string
		want string
	}{
		{"key: ${DOCSYNTH_SET}", "key: value"},
		{"key: ${DOCSYNTH_MISSING}", "key: "},
		{"key: ${DOCSYNTH_MISSING:-fallback}", "key: fallback"},
		{"key: ${DOCSYNTH_SET:-fallback}", "key: value"},
		{"price: $5 and $HOME", "price: $5 and $HOME"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnvVars(tt.in))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCSYNTH_DOTENV_A=from-file\nDOCSYNTH_DOTENV_B=from-file\n"), 0644))

	t.Setenv("DOCSYNTH_DOTENV_B", "from-env")
	t.Cleanup(func() { os.Unsetenv("DOCSYNTH_DOTENV_A") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("DOCSYNTH_DOTENV_A"))
	// Existing variables win
	assert.Equal(t, "from-env", os.Getenv("DOCSYNTH_DOTENV_B"))
}

func TestStage(t *testing.T) {
	cfg := Default()
	cfg.Models.TOC = "toc-model"
	cfg.Generation.Temperature.TOC = 0.1
	cfg.Generation.MaxTokens.TOC = 55

	s := cfg.Stage(StageTOC)
	assert.Equal(t, StageSettings{Model: "toc-model", Temperature: 0.1, MaxTokens: 55, Prompt: "toc"}, s)
	assert.Equal(t, StageSettings{}, cfg.Stage("unknown"))
}
