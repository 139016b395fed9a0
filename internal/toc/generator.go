package toc

import (
	"context"

	"go.uber.org/zap"

	"github.com/verustcode/docsynth/internal/config"
	"github.com/verustcode/docsynth/internal/llm"
	"github.com/verustcode/docsynth/internal/prompt"
	"github.com/verustcode/docsynth/internal/tool"
	"github.com/verustcode/docsynth/pkg/logger"
)

// Generator produces a table of contents for a tool and document type
type Generator struct {
	client   llm.Client
	prompts  *prompt.Loader
	settings config.StageSettings
	language string
}

// NewGenerator creates a TOC generator
func NewGenerator(client llm.Client, prompts *prompt.Loader, settings config.StageSettings, language string) *Generator {
	return &Generator{
		client:   client,
		prompts:  prompts,
		settings: settings,
		language: language,
	}
}

// Generate asks the generator for the document's structure. The result is
// normalized but not validated; callers run the structural validator.
func (g *Generator) Generate(ctx context.Context, t *tool.Tool, documentType string) (*TOC, error) {
	data := t.PromptData()
	data.DocumentType = documentType
	data.Language = g.language

	text, err := g.prompts.Render(g.settings.Prompt, data)
	if err != nil {
		return nil, err
	}

	req := llm.NewRequest(text).
		WithModel(g.settings.Model).
		WithTemperature(g.settings.Temperature).
		WithMaxOutputTokens(g.settings.MaxTokens).
		WithSchema(&llm.ResponseSchema{
			Name:        "toc",
			Description: "Table of contents for a legal document.",
			Schema:      TOC{},
			Strict:      true,
		}).
		WithMetadata(llm.MetaDocumentType, documentType)

	var out TOC
	if _, err := llm.Generate(ctx, g.client, config.StageTOC, req, &out); err != nil {
		return nil, err
	}
	out.Normalize()

	logger.Debug("TOC generated",
		zap.String(logger.FieldTool, t.Name),
		zap.String("document_type", documentType),
		zap.String("toc_id", out.ID),
		zap.Int("sections", Count(&out)),
		zap.Int("depth", Depth(&out)),
	)
	return &out, nil
}
