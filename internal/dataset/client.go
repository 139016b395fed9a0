package dataset

import (
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/docsynth/internal/config"
	"github.com/verustcode/docsynth/internal/llm"
	"github.com/verustcode/docsynth/internal/llm/mock"
	"github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/logger"

	// Import generator clients to register their factories
	_ "github.com/verustcode/docsynth/internal/llm/gemini"
)

// NewClient creates the generator client named by the configuration.
// dryRun swaps in the offline mock regardless of the configured provider.
func NewClient(cfg *config.Config, dryRun bool) (llm.Client, error) {
	provider := cfg.LLM.Provider
	if dryRun {
		provider = mock.ClientName
	}

	clientCfg := llm.NewClientConfig(provider).
		WithAPIKey(cfg.LLM.APIKey).
		WithDefaultModel(cfg.Models.Section).
		WithDefaultTimeout(time.Duration(cfg.LLM.Timeout) * time.Second)

	client, err := llm.Create(provider, clientCfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeGeneratorUnavailable, "failed to create generator client", err)
	}
	if !client.Available() {
		client.Close()
		return nil, errors.Newf(errors.ErrCodeGeneratorUnavailable,
			"generator %q is not available (is the API key set?)", provider)
	}

	logger.Info("Generator client ready", zap.String("provider", client.Name()), zap.Bool("dry_run", dryRun))
	return client, nil
}
