// Package gemini implements the llm.Client interface on the Gemini API
// through the official google.golang.org/genai SDK.
package gemini

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/verustcode/docsynth/internal/llm"
)

// ClientName is the identifier for the Gemini client
const ClientName = "gemini"

// Environment variables consulted when no API key is configured
var apiKeyEnvVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

func init() {
	llm.Register(ClientName, NewClient)
}

// Client implements the llm.Client interface for the Gemini API
type Client struct {
	*llm.BaseClient

	mu  sync.Mutex
	cli *genai.Client
}

// NewClient creates a new Gemini client. The underlying SDK client is created
// on first use so construction never needs network or credentials.
func NewClient(config *llm.ClientConfig) (llm.Client, error) {
	if config == nil {
		config = llm.NewClientConfig(ClientName)
	}

	return &Client{
		BaseClient: llm.NewBaseClient(config),
	}, nil
}

// apiKey returns the configured key, falling back to the environment
func (c *Client) apiKey() string {
	if key := c.GetConfig().APIKey; key != "" {
		return key
	}
	for _, name := range apiKeyEnvVars {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

// Available reports whether an API key is configured
func (c *Client) Available() bool {
	return c.apiKey() != ""
}

// sdk returns the lazily created genai client
func (c *Client) sdk(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cli != nil {
		return c.cli, nil
	}

	key := c.apiKey()
	if key == "" {
		return nil, llm.NewClientError(ClientName, "connect", "no API key configured", llm.ErrClientNotAvailable)
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, llm.NewClientError(ClientName, "connect", "failed to create genai client", err)
	}
	c.cli = cli
	return cli, nil
}

// Execute performs a synchronous generation and returns the complete response
func (c *Client) Execute(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	startTime := time.Now()

	prepared, err := c.PrepareRequest(req)
	if err != nil {
		return nil, err
	}
	c.LogRequest(prepared, "execute")

	cli, err := c.sdk(ctx)
	if err != nil {
		c.LogResponse(nil, time.Since(startTime), err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.GetConfig().GetTimeout(prepared))
	defer cancel()

	result, err := cli.Models.GenerateContent(ctx, prepared.Model,
		genai.Text(prepared.Prompt),
		buildGenerateConfig(prepared),
	)
	if err != nil {
		err = c.classifyError(ctx, err)
		c.LogResponse(nil, time.Since(startTime), err)
		return nil, err
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		err = llm.NewClientError(ClientName, "execute", "model returned no text", llm.ErrEmptyResponse)
		c.LogResponse(nil, time.Since(startTime), err)
		return nil, err
	}

	model := prepared.Model
	if result.ModelVersion != "" {
		model = result.ModelVersion
	}

	resp := c.BuildResponse(text, model, prepared.ResponseSchema)
	if u := result.UsageMetadata; u != nil {
		resp.Usage = &llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	if len(result.Candidates) > 0 {
		resp.Metadata["finish_reason"] = string(result.Candidates[0].FinishReason)
		if result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
			c.Logger().Warn("Response truncated at max output tokens",
				zap.String("model", model),
				zap.Int("max_output_tokens", prepared.MaxOutputTokens),
			)
		}
	}

	c.LogResponse(resp, time.Since(startTime), nil)
	return resp, nil
}

// buildGenerateConfig maps request parameters onto the SDK config
func buildGenerateConfig(req *llm.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxOutputTokens)
	}
	if req.ResponseSchema != nil {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

// classifyError wraps SDK failures, marking rate limits and server errors retryable
func (c *Client) classifyError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return llm.NewClientError(ClientName, "execute", "request timed out", llm.ErrTimeout)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code >= 500 {
			return llm.NewRetryableError(ClientName, "execute", apiErr.Status, err)
		}
		return llm.NewClientError(ClientName, "execute", apiErr.Status, err)
	}
	return llm.NewClientError(ClientName, "execute", "generate content failed", err)
}

// Close releases any resources held by the client
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cli = nil
	return nil
}
