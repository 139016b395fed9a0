package llm

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Metadata keys the pipeline attaches to requests. Clients may use them for
// logging; the mock client uses them to shape its output.
const (
	MetaStage        = "stage"
	MetaDocumentType = "document_type"
	MetaSectionID    = "section_id"
	MetaSectionTitle = "section_title"
	MetaSectionLevel = "section_level"
	MetaIssuePlanned = "issue_planned"
)

// Request represents a request to the generator
type Request struct {
	// Prompt is the fully rendered prompt
	Prompt string

	// Model specifies which model to use (e.g., "gemini-2.5-flash")
	Model string

	// Temperature is the sampling temperature
	Temperature float64

	// MaxOutputTokens caps the response length; 0 leaves the backend default
	MaxOutputTokens int

	// ResponseSchema defines the expected response structure (optional).
	// When provided, the client asks for JSON output and parses the
	// response into a new value of the schema's type.
	ResponseSchema *ResponseSchema

	// Options contains optional configuration
	Options *RequestOptions
}

// ResponseSchema defines the expected response structure for structured output
type ResponseSchema struct {
	// Name is the schema name (e.g., "section_output")
	Name string

	// Description describes what the schema represents
	Description string

	// Schema is a Go value (usually a zero struct) whose type describes the output
	Schema interface{}

	// Strict indicates whether the generator must strictly follow the schema
	Strict bool
}

// RequestOptions contains optional request configuration
type RequestOptions struct {
	// Timeout is the maximum duration for the request
	Timeout time.Duration

	// Metadata contains additional information (e.g., stage, section_id)
	Metadata map[string]string
}

// ResponseKind tags what a Response carries
type ResponseKind int

const (
	// KindText means only raw text is available
	KindText ResponseKind = iota
	// KindStructured means Parsed holds a value of the schema's type
	KindStructured
)

// String returns the kind name
func (k ResponseKind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	default:
		return "text"
	}
}

// Response represents the response from the generator
type Response struct {
	// Kind tells whether Parsed is populated
	Kind ResponseKind

	// Content is the raw response content
	Content string

	// Model is the actual model used for the request
	Model string

	// Metadata contains additional response information
	Metadata map[string]string

	// Usage contains token usage statistics (optional)
	Usage *Usage

	// Parsed is a pointer to the decoded structured value (KindStructured only)
	Parsed interface{}

	// ParseErr is the error from parsing, when a schema was requested but parsing failed
	ParseErr error
}

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// NewRequest creates a new Request with default values
func NewRequest(prompt string) *Request {
	return &Request{
		Prompt: prompt,
	}
}

// WithModel sets the model for the request
func (r *Request) WithModel(model string) *Request {
	r.Model = model
	return r
}

// WithTemperature sets the sampling temperature
func (r *Request) WithTemperature(t float64) *Request {
	r.Temperature = t
	return r
}

// WithMaxOutputTokens sets the output token limit
func (r *Request) WithMaxOutputTokens(n int) *Request {
	r.MaxOutputTokens = n
	return r
}

// WithSchema sets the response schema for structured output
func (r *Request) WithSchema(schema *ResponseSchema) *Request {
	r.ResponseSchema = schema
	return r
}

// WithOptions sets the request options
func (r *Request) WithOptions(opts *RequestOptions) *Request {
	r.Options = opts
	return r
}

// WithMetadata sets a single metadata entry, creating options as needed
func (r *Request) WithMetadata(key, value string) *Request {
	if r.Options == nil {
		r.Options = &RequestOptions{}
	}
	if r.Options.Metadata == nil {
		r.Options.Metadata = make(map[string]string)
	}
	r.Options.Metadata[key] = value
	return r
}

// GetTimeout returns the timeout from options, or the default value
func (r *Request) GetTimeout(defaultTimeout time.Duration) time.Duration {
	if r.Options != nil && r.Options.Timeout > 0 {
		return r.Options.Timeout
	}
	return defaultTimeout
}

// GetMetadata returns a metadata value, or empty string if not found
func (r *Request) GetMetadata(key string) string {
	if r.Options != nil && r.Options.Metadata != nil {
		return r.Options.Metadata[key]
	}
	return ""
}

// IsStructured reports whether the response carries parsed output
func (r *Response) IsStructured() bool {
	return r != nil && r.Kind == KindStructured && r.Parsed != nil
}

// Decode copies the structured output into target, which must be a non-nil pointer.
// It returns ErrNoStructuredOutput when the response only carries text.
func (r *Response) Decode(target interface{}) error {
	if !r.IsStructured() {
		if r != nil && r.ParseErr != nil {
			return fmt.Errorf("%w: %v", ErrNoStructuredOutput, r.ParseErr)
		}
		return ErrNoStructuredOutput
	}

	tv := reflect.ValueOf(target)
	if tv.Kind() != reflect.Ptr || tv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}

	// Fast path: same type as the schema
	pv := reflect.ValueOf(r.Parsed)
	if pv.Kind() == reflect.Ptr && pv.Elem().Type().AssignableTo(tv.Elem().Type()) {
		tv.Elem().Set(pv.Elem())
		return nil
	}

	// Different but compatible shape: round-trip through JSON
	data, err := json.Marshal(r.Parsed)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
