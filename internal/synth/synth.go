// Package synth walks a TOC and generates every section's content, injecting
// the planned quality issues and reconciling what the generator returns
// against the plan.
package synth

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/verustcode/docsynth/internal/config"
	"github.com/verustcode/docsynth/internal/htmldoc"
	"github.com/verustcode/docsynth/internal/issues"
	"github.com/verustcode/docsynth/internal/llm"
	"github.com/verustcode/docsynth/internal/prompt"
	"github.com/verustcode/docsynth/internal/toc"
	"github.com/verustcode/docsynth/internal/tool"
	"github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/logger"
	"github.com/verustcode/docsynth/pkg/telemetry"
)

// Directives rendered into the section prompt
const (
	IssueDirective = "Include exactly ONE subtle quality issue in this section, such as typo, contradiction, " +
		"inconsistent terminology or ambiguity. Choose the issue type yourself. The issue must be minor and realistic."
	NoIssueDirective = "Do NOT introduce any inconsistencies, ambiguities, typos, or errors."
)

const (
	// SummaryWindow is how many recent section titles the prompt sees
	SummaryWindow = 3
	// NoneMarker stands in for an absent parent or an empty summary
	NoneMarker = "None"
)

// SectionOutput is the structured result requested for every section
type SectionOutput struct {
	Content string       `json:"content" description:"HTML fragment with the section body"`
	Issue   *IssueOutput `json:"issue,omitempty" description:"the injected issue, only when one was requested"`
}

// IssueOutput describes an issue the generator says it introduced
type IssueOutput struct {
	Description string `json:"description" description:"what the issue is and where it appears"`
	Severity    string `json:"severity,omitempty" enum:"low,medium,high"`
}

// Observer is notified after each section is synthesized. issue is nil when
// the section is clean.
type Observer interface {
	SectionSynthesized(sec *htmldoc.Section, parentTitle string, issue *issues.InjectedIssue)
}

// Options tune a Synthesizer
type Options struct {
	MinIssues        int
	MaxIssues        int
	InjectionRetries int
	Language         string
	Observer         Observer
}

// OptionsFromConfig builds options from the issue and output settings
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MinIssues:        cfg.Issues.MinPerDocument,
		MaxIssues:        cfg.Issues.MaxPerDocument,
		InjectionRetries: cfg.Issues.InjectionRetries,
		Language:         cfg.Output.OutputLanguage().PromptInstruction(),
	}
}

// Result is everything one document's synthesis produced
type Result struct {
	Sections []htmldoc.Section
	Issues   []issues.InjectedIssue
	Plan     issues.Plan
}

// Synthesizer generates section content for whole documents.
// It is sequential and not safe for concurrent use.
type Synthesizer struct {
	client   llm.Client
	prompts  *prompt.Loader
	planner  *issues.Planner
	settings config.StageSettings
	opts     Options
}

// New creates a Synthesizer. The planner's random stream is shared with the
// caller and advances once per document.
func New(client llm.Client, prompts *prompt.Loader, planner *issues.Planner, settings config.StageSettings, opts Options) *Synthesizer {
	if opts.InjectionRetries < 0 {
		opts.InjectionRetries = 0
	}
	return &Synthesizer{
		client:   client,
		prompts:  prompts,
		planner:  planner,
		settings: settings,
		opts:     opts,
	}
}

// document carries what stays fixed during one walk
type document struct {
	tool         *tool.Tool
	documentType string
	plan         issues.Plan
	log          *zap.Logger
}

// Synthesize plans the tainted sections once, then walks the TOC depth-first
// in pre-order generating each section. Any generation failure is fatal for
// the document.
func (s *Synthesizer) Synthesize(ctx context.Context, t *tool.Tool, doc *toc.TOC, documentType string) (*Result, error) {
	plan, err := s.planner.Plan(toc.CollectIDs(doc), s.opts.MinIssues, s.opts.MaxIssues)
	if err != nil {
		return nil, err
	}

	d := &document{
		tool:         t,
		documentType: documentType,
		plan:         plan,
		log:          logger.With(zap.String(logger.FieldTool, t.Name), zap.String("toc_id", doc.ID)),
	}
	d.log.Debug("Synthesizing document",
		zap.String("document_type", documentType),
		zap.Strings("planned_sections", plan.IDs()),
	)

	result := &Result{Plan: plan}
	var window []string
	for i := range doc.Sections {
		secs, found, next, err := s.walk(ctx, d, &doc.Sections[i], 1, nil, window)
		if err != nil {
			return nil, err
		}
		result.Sections = append(result.Sections, secs...)
		result.Issues = append(result.Issues, found...)
		window = next
	}
	return result, nil
}

// walk synthesizes node, then its subsections in order. It returns the
// sections and issues of the subtree and the rolling title window after it.
func (s *Synthesizer) walk(ctx context.Context, d *document, node *toc.Section, level int, parent *toc.Section, window []string) ([]htmldoc.Section, []issues.InjectedIssue, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, window, err
	}

	sec, issue, err := s.section(ctx, d, node, level, parent, window)
	if err != nil {
		return nil, nil, window, err
	}

	sections := []htmldoc.Section{*sec}
	var found []issues.InjectedIssue
	if issue != nil {
		found = append(found, *issue)
	}
	window = pushWindow(window, node.Title)

	for i := range node.Subsections {
		childSecs, childIssues, next, err := s.walk(ctx, d, &node.Subsections[i], level+1, node, window)
		if err != nil {
			return nil, nil, window, err
		}
		sections = append(sections, childSecs...)
		found = append(found, childIssues...)
		window = next
	}
	return sections, found, window, nil
}

// section runs the generator for one node and reconciles the result with the plan
func (s *Synthesizer) section(ctx context.Context, d *document, node *toc.Section, level int, parent *toc.Section, window []string) (*htmldoc.Section, *issues.InjectedIssue, error) {
	planned := d.plan.Has(node.ID)

	ctx, span := telemetry.StartSpan(ctx, "synth.section",
		telemetry.WithSectionAttributes(node.ID, level, planned))
	defer span.End()

	parentTitle := NoneMarker
	if parent != nil {
		parentTitle = parent.Title
	}

	req, err := s.buildRequest(d, node, level, parentTitle, window, planned)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, nil, err
	}

	out, err := s.generate(ctx, d, node, req, planned)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, nil, err
	}

	sec := &htmldoc.Section{
		ID:          node.ID,
		Title:       node.Title,
		Level:       level,
		ContentHTML: htmldoc.Sanitize(out.Content),
	}
	if parent != nil {
		sec.ParentID = parent.ID
	}

	var issue *issues.InjectedIssue
	switch {
	case planned:
		issue = &issues.InjectedIssue{
			SectionID:    node.ID,
			SectionTitle: node.Title,
			Description:  strings.TrimSpace(out.Issue.Description),
			Severity:     strings.TrimSpace(out.Issue.Severity),
		}
	case out.Issue != nil:
		d.log.Debug("Discarding unrequested issue",
			zap.String(logger.FieldSectionID, node.ID),
			zap.String("description", out.Issue.Description),
		)
		telemetry.GetMetrics().RecordIssueDiscarded(ctx)
	}

	telemetry.GetMetrics().RecordSection(ctx, issue != nil)
	telemetry.SetSpanOK(span)

	if s.opts.Observer != nil {
		s.opts.Observer.SectionSynthesized(sec, parentTitle, issue)
	}
	return sec, issue, nil
}

// generate calls the generator, re-issuing the identical request while a
// planned issue is missing, at most InjectionRetries times.
func (s *Synthesizer) generate(ctx context.Context, d *document, node *toc.Section, req *llm.Request, planned bool) (*SectionOutput, error) {
	for attempt := 0; ; attempt++ {
		var out SectionOutput
		if _, err := llm.Generate(ctx, s.client, config.StageSection, req, &out); err != nil {
			return nil, errors.Wrap(errors.ErrCodeGeneration,
				"section "+strconv.Quote(node.ID)+" generation failed", err)
		}
		if !planned || hasIssue(&out) {
			return &out, nil
		}
		if attempt >= s.opts.InjectionRetries {
			return nil, errors.Newf(errors.ErrCodeIssueInjection,
				"section %q returned no issue after %d retries", node.ID, s.opts.InjectionRetries).
				WithDetails(map[string]any{"section_id": node.ID, "retries": s.opts.InjectionRetries})
		}

		telemetry.GetMetrics().RecordIssueRetry(ctx)
		d.log.Warn("Planned issue missing, retrying section",
			zap.String(logger.FieldSectionID, node.ID),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", s.opts.InjectionRetries),
		)
	}
}

func hasIssue(out *SectionOutput) bool {
	return out.Issue != nil && strings.TrimSpace(out.Issue.Description) != ""
}

func (s *Synthesizer) buildRequest(d *document, node *toc.Section, level int, parentTitle string, window []string, planned bool) (*llm.Request, error) {
	data := d.tool.PromptData()
	data.DocumentType = d.documentType
	data.SectionTitle = node.Title
	data.ParentTitle = parentTitle
	data.PreviousSummary = Summary(window)
	data.IssueInstruction = Directive(planned)
	data.Language = s.opts.Language

	text, err := s.prompts.Render(s.settings.Prompt, data)
	if err != nil {
		return nil, err
	}

	return llm.NewRequest(text).
		WithModel(s.settings.Model).
		WithTemperature(s.settings.Temperature).
		WithMaxOutputTokens(s.settings.MaxTokens).
		WithSchema(&llm.ResponseSchema{
			Name:        "section_output",
			Description: "Body of one document section and the issue injected into it, if any.",
			Schema:      SectionOutput{},
			Strict:      true,
		}).
		WithMetadata(llm.MetaDocumentType, d.documentType).
		WithMetadata(llm.MetaSectionID, node.ID).
		WithMetadata(llm.MetaSectionTitle, node.Title).
		WithMetadata(llm.MetaSectionLevel, strconv.Itoa(level)).
		WithMetadata(llm.MetaIssuePlanned, strconv.FormatBool(planned)), nil
}

// Directive returns the issue instruction for a section
func Directive(planned bool) string {
	if planned {
		return IssueDirective
	}
	return NoIssueDirective
}

// Summary renders the rolling window as "- title" lines
func Summary(window []string) string {
	if len(window) == 0 {
		return NoneMarker
	}
	lines := make([]string, len(window))
	for i, title := range window {
		lines[i] = "- " + title
	}
	return strings.Join(lines, "\n")
}

// pushWindow returns a new window with title appended, keeping the last
// SummaryWindow entries. The input slice is never modified.
func pushWindow(window []string, title string) []string {
	next := make([]string, 0, SummaryWindow)
	if len(window) >= SummaryWindow {
		window = window[len(window)-SummaryWindow+1:]
	}
	next = append(next, window...)
	return append(next, title)
}
