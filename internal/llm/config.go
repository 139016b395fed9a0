package llm

import (
	"time"
)

// DefaultTimeout is used when neither the client config nor the request sets one
const DefaultTimeout = 2 * time.Minute

// ClientConfig contains configuration for a generator client
type ClientConfig struct {
	// Name is the client identifier (e.g., "gemini", "mock")
	Name string

	// APIKey is the API key for authentication (if required)
	APIKey string

	// DefaultModel is the default model to use if not specified in request
	DefaultModel string

	// DefaultTimeout is the default request timeout
	DefaultTimeout time.Duration
}

// NewClientConfig creates a new ClientConfig with default values
func NewClientConfig(name string) *ClientConfig {
	return &ClientConfig{
		Name:           name,
		DefaultTimeout: DefaultTimeout,
	}
}

// WithAPIKey sets the API key
func (c *ClientConfig) WithAPIKey(key string) *ClientConfig {
	c.APIKey = key
	return c
}

// WithDefaultModel sets the default model
func (c *ClientConfig) WithDefaultModel(model string) *ClientConfig {
	c.DefaultModel = model
	return c
}

// WithDefaultTimeout sets the default timeout
func (c *ClientConfig) WithDefaultTimeout(timeout time.Duration) *ClientConfig {
	if timeout > 0 {
		c.DefaultTimeout = timeout
	}
	return c
}

// GetTimeout returns the timeout to use, considering request options
func (c *ClientConfig) GetTimeout(req *Request) time.Duration {
	if req != nil {
		return req.GetTimeout(c.DefaultTimeout)
	}
	return c.DefaultTimeout
}

// GetModel returns the model to use, considering request and default
func (c *ClientConfig) GetModel(req *Request) string {
	if req != nil && req.Model != "" {
		return req.Model
	}
	return c.DefaultModel
}
