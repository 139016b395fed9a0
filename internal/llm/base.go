package llm

import (
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/docsynth/pkg/logger"
)

// BaseClient provides common functionality for generator clients.
// Concrete implementations (GeminiClient, MockClient) embed this struct.
type BaseClient struct {
	config *ClientConfig
	logger *zap.Logger
}

// NewBaseClient creates a new BaseClient with the given configuration
func NewBaseClient(config *ClientConfig) *BaseClient {
	if config == nil {
		config = NewClientConfig("unknown")
	}

	return &BaseClient{
		config: config,
		logger: logger.Named("llm." + config.Name),
	}
}

// Name returns the client name
func (b *BaseClient) Name() string {
	return b.config.Name
}

// GetConfig returns the client configuration
func (b *BaseClient) GetConfig() *ClientConfig {
	return b.config
}

// Logger returns the client's logger
func (b *BaseClient) Logger() *zap.Logger {
	return b.logger
}

// BuildPromptWithSchema appends JSON output instructions when a schema is given
func (b *BaseClient) BuildPromptWithSchema(prompt string, schema *ResponseSchema) string {
	if schema == nil {
		return prompt
	}
	return prompt + BuildSchemaPrompt(schema)
}

// ParseResponse parses the response content into a new value of the schema's type
func (b *BaseClient) ParseResponse(content string, schema *ResponseSchema) (interface{}, error) {
	if schema == nil || schema.Schema == nil {
		return nil, nil
	}

	schemaType := reflect.TypeOf(schema.Schema)
	for schemaType.Kind() == reflect.Ptr {
		schemaType = schemaType.Elem()
	}

	target := reflect.New(schemaType).Interface()

	if err := ParseResponseJSON(content, target); err != nil {
		return nil, err
	}

	return target, nil
}

// PrepareRequest validates the request and returns a copy with defaults applied
// and schema instructions appended to the prompt
func (b *BaseClient) PrepareRequest(req *Request) (*Request, error) {
	if req == nil {
		return nil, NewClientError(b.config.Name, "prepare", "request is nil", nil)
	}

	if req.Prompt == "" {
		return nil, NewClientError(b.config.Name, "prepare", "prompt is empty", nil)
	}

	if req.MaxOutputTokens < 0 {
		return nil, NewClientError(b.config.Name, "prepare", "max output tokens must not be negative", nil)
	}

	// Copy to avoid modifying the caller's request, which may be re-issued verbatim
	prepared := *req

	if prepared.Model == "" {
		prepared.Model = b.config.DefaultModel
	}

	prepared.Prompt = b.BuildPromptWithSchema(prepared.Prompt, prepared.ResponseSchema)

	return &prepared, nil
}

// BuildResponse builds a tagged response: structured when the schema parsed, text otherwise
func (b *BaseClient) BuildResponse(content string, model string, schema *ResponseSchema) *Response {
	resp := &Response{
		Kind:     KindText,
		Content:  content,
		Model:    model,
		Metadata: make(map[string]string),
	}

	if schema != nil {
		parsed, err := b.ParseResponse(content, schema)
		if err != nil {
			resp.ParseErr = err
			b.logger.Debug("Failed to parse response as structured data",
				zap.String("schema", schema.Name),
				zap.Error(err),
			)
		} else if parsed != nil {
			resp.Kind = KindStructured
			resp.Parsed = parsed
		}
	}

	return resp
}

// LogRequest logs the request details
func (b *BaseClient) LogRequest(req *Request, operation string) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("model", req.Model),
		zap.Float64("temperature", req.Temperature),
		zap.Int("max_output_tokens", req.MaxOutputTokens),
		zap.Int("prompt_length", len(req.Prompt)),
	}
	if stage := req.GetMetadata(MetaStage); stage != "" {
		fields = append(fields, zap.String("stage", stage))
	}
	if sectionID := req.GetMetadata(MetaSectionID); sectionID != "" {
		fields = append(fields, zap.String(logger.FieldSectionID, sectionID))
	}
	b.logger.Debug("Executing request", fields...)
}

// LogResponse logs the response details
func (b *BaseClient) LogResponse(resp *Response, duration time.Duration, err error) {
	if err != nil {
		b.logger.Error("Request failed",
			zap.Error(err),
			zap.Duration("duration", duration),
		)
		return
	}

	if resp == nil {
		b.logger.Warn("Request completed with nil response",
			zap.Duration("duration", duration))
		return
	}

	fields := []zap.Field{
		zap.String("model", resp.Model),
		zap.Stringer("kind", resp.Kind),
		zap.Int("content_length", len(resp.Content)),
		zap.Duration("duration", duration),
	}
	if resp.Usage != nil {
		fields = append(fields, zap.Int("total_tokens", resp.Usage.TotalTokens))
	}
	b.logger.Debug("Request completed", fields...)
}
