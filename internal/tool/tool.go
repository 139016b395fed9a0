// Package tool models the fictitious software products documents are written
// for, and generates new ones from the tool ideation prompt.
package tool

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/verustcode/docsynth/internal/config"
	"github.com/verustcode/docsynth/internal/llm"
	"github.com/verustcode/docsynth/internal/prompt"
	"github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/logger"
)

// Tool is the profile of one synthetic product. It is immutable once generated.
type Tool struct {
	Name     string `json:"name" description:"short product name"`
	Purpose  string `json:"purpose" description:"one sentence on what the tool does and for whom"`
	Category string `json:"category" description:"software category"`
	UserBase string `json:"user_base" description:"primary audience"`
}

// Validate checks the fields every prompt depends on
func (t *Tool) Validate() error {
	var missing []string
	if strings.TrimSpace(t.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(t.Purpose) == "" {
		missing = append(missing, "purpose")
	}
	if len(missing) > 0 {
		return errors.Newf(errors.ErrCodeGeneration, "tool profile is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// PromptData returns the template placeholders describing the tool
func (t *Tool) PromptData() prompt.Data {
	return prompt.Data{
		ToolName: t.Name,
		Purpose:  t.Purpose,
		Category: t.Category,
		UserBase: t.UserBase,
	}
}

// Generator ideates new tools
type Generator struct {
	client   llm.Client
	prompts  *prompt.Loader
	settings config.StageSettings
	language string
}

// NewGenerator creates a tool generator. language is the human-readable
// output language rendered into the prompt, and may be empty.
func NewGenerator(client llm.Client, prompts *prompt.Loader, settings config.StageSettings, language string) *Generator {
	return &Generator{
		client:   client,
		prompts:  prompts,
		settings: settings,
		language: language,
	}
}

// Generate asks the generator for one new tool. Names in avoid are listed in
// the prompt so a batch does not produce the same product twice.
func (g *Generator) Generate(ctx context.Context, avoid []string) (*Tool, error) {
	text, err := g.prompts.Render(g.settings.Prompt, prompt.Data{
		Language: g.language,
		Avoid:    avoid,
	})
	if err != nil {
		return nil, err
	}

	req := llm.NewRequest(text).
		WithModel(g.settings.Model).
		WithTemperature(g.settings.Temperature).
		WithMaxOutputTokens(g.settings.MaxTokens).
		WithSchema(&llm.ResponseSchema{
			Name:        "tool",
			Description: "Profile of one fictitious software tool.",
			Schema:      Tool{},
			Strict:      true,
		})

	var t Tool
	if _, err := llm.Generate(ctx, g.client, config.StageTool, req, &t); err != nil {
		return nil, err
	}

	t.Name = strings.TrimSpace(t.Name)
	t.Purpose = strings.TrimSpace(t.Purpose)
	if err := t.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Tool generated",
		zap.String(logger.FieldTool, t.Name),
		zap.String("category", t.Category),
	)
	return &t, nil
}
