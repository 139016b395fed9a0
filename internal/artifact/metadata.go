package artifact

import (
	"time"

	"github.com/verustcode/docsynth/internal/config"
	"github.com/verustcode/docsynth/internal/issues"
	"github.com/verustcode/docsynth/internal/toc"
	"github.com/verustcode/docsynth/internal/tool"
)

// Metadata is the bundle saved next to every generated document
type Metadata struct {
	RunID      string         `json:"run_id"`
	Seed       uint64         `json:"seed"`
	Tool       tool.Tool      `json:"tool"`
	Document   DocumentInfo   `json:"document"`
	Generation GenerationInfo `json:"generation"`
	Issues     IssueSummary   `json:"issues"`
	Timestamp  time.Time      `json:"timestamp"`
}

// DocumentInfo identifies the document
type DocumentInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// GenerationInfo records the generator settings of every stage
type GenerationInfo struct {
	ModelTool          string  `json:"model_tool"`
	ModelTOC           string  `json:"model_toc"`
	ModelSection       string  `json:"model_section"`
	TemperatureTool    float64 `json:"temperature_tool"`
	TemperatureTOC     float64 `json:"temperature_toc"`
	TemperatureSection float64 `json:"temperature_section"`
	MaxTokensTool      int     `json:"max_tokens_tool"`
	MaxTokensTOC       int     `json:"max_tokens_toc"`
	MaxTokensSection   int     `json:"max_tokens_section"`
}

// IssueSummary lists the confirmed issues. SectionsWithIssues holds titles in document order.
type IssueSummary struct {
	TotalCount         int                    `json:"total_count"`
	SectionsWithIssues []string               `json:"sections_with_issues"`
	Details            []issues.InjectedIssue `json:"details"`
}

// IssuePlan is the set of sections chosen for injection before generation
type IssuePlan struct {
	DocumentID         string   `json:"document_id"`
	SectionsWithIssues []string `json:"sections_with_issues"`
}

// NewGenerationInfo captures the stage settings from cfg
func NewGenerationInfo(cfg *config.Config) GenerationInfo {
	stageTool := cfg.Stage(config.StageTool)
	stageTOC := cfg.Stage(config.StageTOC)
	stageSection := cfg.Stage(config.StageSection)
	return GenerationInfo{
		ModelTool:          stageTool.Model,
		ModelTOC:           stageTOC.Model,
		ModelSection:       stageSection.Model,
		TemperatureTool:    stageTool.Temperature,
		TemperatureTOC:     stageTOC.Temperature,
		TemperatureSection: stageSection.Temperature,
		MaxTokensTool:      stageTool.MaxTokens,
		MaxTokensTOC:       stageTOC.MaxTokens,
		MaxTokensSection:   stageSection.MaxTokens,
	}
}

// NewIssueSummary summarizes confirmed issues
func NewIssueSummary(list []issues.InjectedIssue) IssueSummary {
	titles := make([]string, 0, len(list))
	for _, is := range list {
		titles = append(titles, is.SectionTitle)
	}
	details := list
	if details == nil {
		details = []issues.InjectedIssue{}
	}
	return IssueSummary{
		TotalCount:         len(list),
		SectionsWithIssues: titles,
		Details:            details,
	}
}

// NewDocumentInfo describes a document from its TOC
func NewDocumentInfo(t *toc.TOC, documentType string) DocumentInfo {
	return DocumentInfo{ID: t.ID, Title: t.Title, Type: documentType}
}
