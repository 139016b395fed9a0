// Package llm defines the generator contract used by the synthesis pipeline.
// A Client turns a prompt plus generation parameters into either structured
// output (decoded against a schema) or plain text.
package llm

import (
	"context"
)

// Client defines the interface for text generators.
// Implementations (Gemini, mock) register themselves with Register.
type Client interface {
	// Name returns the client identifier (e.g., "gemini", "mock")
	Name() string

	// Available reports whether the client is configured well enough to serve requests
	Available() bool

	// GetConfig returns the client configuration
	GetConfig() *ClientConfig

	// Execute performs a synchronous generation and returns the complete response.
	// When req.ResponseSchema is set, the response is structured if the output
	// could be parsed against it.
	Execute(ctx context.Context, req *Request) (*Response, error)

	// Close releases any resources held by the client
	Close() error
}
