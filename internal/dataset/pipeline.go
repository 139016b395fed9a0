// Package dataset orchestrates a generation run: it ideates tools, samples
// document types per tool and drives each document through TOC generation,
// section synthesis, assembly, validation and persistence.
package dataset

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/verustcode/docsynth/internal/artifact"
	"github.com/verustcode/docsynth/internal/config"
	"github.com/verustcode/docsynth/internal/htmldoc"
	"github.com/verustcode/docsynth/internal/issues"
	"github.com/verustcode/docsynth/internal/llm"
	"github.com/verustcode/docsynth/internal/model"
	"github.com/verustcode/docsynth/internal/prompt"
	"github.com/verustcode/docsynth/internal/store"
	"github.com/verustcode/docsynth/internal/synth"
	"github.com/verustcode/docsynth/internal/toc"
	"github.com/verustcode/docsynth/internal/tool"
	"github.com/verustcode/docsynth/internal/validate"
	"github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/idgen"
	"github.com/verustcode/docsynth/pkg/logger"
	"github.com/verustcode/docsynth/pkg/telemetry"
)

// Pipeline holds everything a run needs. It is built once and passed down;
// nothing in it is process-global. A Pipeline runs one document at a time.
type Pipeline struct {
	cfg    *config.Config
	client llm.Client
	rng    *rand.Rand

	writer  *artifact.Writer
	store   store.Store
	console *Console

	tools     *tool.Generator
	tocs      *toc.Generator
	synth     *synth.Synthesizer
	assembler *htmldoc.Assembler

	runID    string
	failFast bool
	now      func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithStore records every run and document in the dataset index
func WithStore(s store.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithConsole prints progress to the console
func WithConsole(c *Console) Option {
	return func(p *Pipeline) { p.console = c }
}

// WithFailFast stops the run at the first failed document
func WithFailFast(failFast bool) Option {
	return func(p *Pipeline) { p.failFast = failFast }
}

// WithRunID overrides the generated run id
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// New wires a pipeline from a validated configuration
func New(cfg *config.Config, client llm.Client, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:       cfg,
		client:    client,
		rng:       issues.NewRand(cfg.Seed),
		assembler: htmldoc.NewAssembler(cfg.Output.StrictAssembly),
		runID:     idgen.NewRunID(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	prompts, err := prompt.NewLoader(cfg.Prompts.Dir, prompt.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	p.writer, err = artifact.NewWriter(cfg.Output.DataDir)
	if err != nil {
		return nil, err
	}

	language := cfg.Output.OutputLanguage().PromptInstruction()
	p.tools = tool.NewGenerator(client, prompts, cfg.Stage(config.StageTool), language)
	p.tocs = toc.NewGenerator(client, prompts, cfg.Stage(config.StageTOC), language)

	synthOpts := synth.OptionsFromConfig(cfg)
	if p.console != nil {
		synthOpts.Observer = p.console
	}
	// the planner shares the run's stream so one seed fixes the whole dataset
	p.synth = synth.New(client, prompts, issues.NewPlanner(p.rng), cfg.Stage(config.StageSection), synthOpts)

	return p, nil
}

// RunID returns the id of the run
func (p *Pipeline) RunID() string {
	return p.runID
}

// Writer returns the artifact writer
func (p *Pipeline) Writer() *artifact.Writer {
	return p.writer
}

// Run generates the whole dataset. Document failures are collected and the
// batch continues, unless fail-fast is set. The returned error aggregates
// every failure.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := p.now()
	ctx, span := telemetry.StartSpan(ctx, "dataset.run",
		trace.WithAttributes(
			telemetry.AttrRunID.String(p.runID),
			telemetry.AttrSeed.Int64(int64(p.cfg.Seed)),
		),
	)
	defer span.End()

	log := logger.With(zap.String(logger.FieldRunID, p.runID))
	log.Info("Starting dataset generation",
		zap.Uint64("seed", p.cfg.Seed),
		zap.Int("tools", p.cfg.Tools.Count),
		zap.Int("documents_per_tool", p.cfg.Documents.PerTool),
		zap.String("data_dir", p.writer.Root()),
	)
	p.recordRunStart(log)

	summary := &Summary{RunID: p.runID}
	errs := p.generate(ctx, summary)

	summary.Duration = p.now().Sub(start)
	p.recordRunEnd(log, summary, errs)

	if errs != nil {
		telemetry.SetSpanError(span, errs)
	} else {
		telemetry.SetSpanOK(span)
	}
	telemetry.SetSpanAttributes(span, telemetry.AttrIssuesCount.Int(summary.Issues))

	log.Info("Dataset generation finished",
		zap.Int("completed", summary.Completed),
		zap.Int("rejected", summary.Rejected),
		zap.Int("failed", summary.Failed),
		zap.Int("issues", summary.Issues),
		zap.Duration("duration", summary.Duration),
	)
	if p.console != nil {
		p.console.Summary(summary)
	}
	return summary, errs
}

func (p *Pipeline) generate(ctx context.Context, summary *Summary) error {
	var errs error

	tools, err := p.generateTools(ctx, summary)
	errs = multierr.Append(errs, err)
	if err != nil && p.failFast {
		return errs
	}

	for _, t := range tools {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		err := p.processTool(ctx, t, summary)
		errs = multierr.Append(errs, err)
		if err != nil && p.failFast {
			break
		}
	}
	return errs
}

// generateTools ideates the configured number of tools. Earlier names are
// passed to the generator so the batch does not repeat a product.
func (p *Pipeline) generateTools(ctx context.Context, summary *Summary) ([]*tool.Tool, error) {
	var (
		tools []*tool.Tool
		names []string
		errs  error
	)
	total := p.cfg.Tools.Count
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return tools, multierr.Append(errs, err)
		}

		t, err := p.tools.Generate(ctx, names)
		if err != nil {
			summary.ToolsFailed++
			errs = multierr.Append(errs, fmt.Errorf("tool %d: %w", i, err))
			if p.console != nil {
				p.console.ToolFailed(i, total, err)
			}
			if p.failFast {
				return tools, errs
			}
			continue
		}

		tools = append(tools, t)
		names = append(names, t.Name)
		summary.Tools++
		if p.console != nil {
			p.console.ToolGenerated(i, total, t)
		}
	}
	return tools, errs
}

// processTool saves the tool, samples its document types and generates each document
func (p *Pipeline) processTool(ctx context.Context, t *tool.Tool, summary *Summary) error {
	if _, err := p.writer.SaveTool(t); err != nil {
		return fmt.Errorf("tool %q: %w", t.Name, err)
	}

	types, err := SampleTypes(p.rng, p.cfg.Documents.Types, p.cfg.Documents.PerTool)
	if err != nil {
		return err
	}
	if _, err := p.writer.SaveContext(t.Name, types); err != nil {
		return fmt.Errorf("tool %q: %w", t.Name, err)
	}
	if p.console != nil {
		p.console.ToolStart(t, types)
	}

	var errs error
	for _, documentType := range types {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}

		res := p.Document(ctx, t, documentType)
		summary.add(res)
		if res.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s / %s: %w", t.Name, documentType, res.Err))
			if p.failFast {
				break
			}
		}
	}
	return errs
}

// Document runs one document through the pipeline and records its outcome.
// The error, if any, is carried in the result.
func (p *Pipeline) Document(ctx context.Context, t *tool.Tool, documentType string) *DocumentResult {
	start := p.now()
	res := &DocumentResult{
		ID:           idgen.NewID(),
		ToolName:     t.Name,
		DocumentType: documentType,
	}

	ctx, span := telemetry.StartSpan(ctx, "dataset.document",
		telemetry.WithDocumentAttributes(p.runID, t.Name, documentType),
		trace.WithAttributes(telemetry.AttrDocumentID.String(res.ID)),
	)
	defer span.End()

	if p.console != nil {
		p.console.DocumentStart(documentType)
	}

	log := logger.WithDocumentContext(p.runID, res.ID).With(
		zap.String(logger.FieldTool, t.Name),
		zap.String("document_type", documentType),
	)
	rec := &model.Document{
		ID:           res.ID,
		RunID:        p.runID,
		ToolName:     t.Name,
		DocumentType: documentType,
	}

	res.Err = p.document(ctx, log, t, documentType, res, rec)
	res.Status = statusOf(res.Err)
	res.Duration = p.now().Sub(start)

	if res.Err != nil {
		telemetry.SetSpanError(span, res.Err)
		log.Warn("Document not persisted", zap.String("status", string(res.Status)), zap.Error(res.Err))
	} else {
		telemetry.SetSpanOK(span)
		log.Info("Document generated",
			zap.Int("sections", res.Sections),
			zap.Int("issues", res.Issues),
			zap.Duration("duration", res.Duration),
		)
	}
	telemetry.GetMetrics().RecordDocument(ctx, documentType, string(res.Status), res.Duration.Seconds())

	p.recordDocument(log, rec, res)
	if p.console != nil {
		p.console.DocumentDone(res)
	}
	return res
}

// document does the work of Document. Validation runs TOC, then HTML, then
// issue count, all before anything but the TOC is written.
func (p *Pipeline) document(ctx context.Context, log *zap.Logger, t *tool.Tool, documentType string, res *DocumentResult, rec *model.Document) error {
	doc, err := p.tocs.Generate(ctx, t, documentType)
	if err != nil {
		return err
	}
	res.TOCID = doc.ID
	rec.TOCID, rec.Title = doc.ID, doc.Title

	if err := validate.TOC(doc); err != nil {
		return err
	}
	if _, err := p.writer.SaveTOC(t.Name, documentType, doc); err != nil {
		return err
	}

	out, err := p.synth.Synthesize(ctx, t, doc, documentType)
	if err != nil {
		return err
	}
	res.Sections = len(out.Sections)
	rec.SectionCount = len(out.Sections)
	rec.PlannedSections = out.Plan.IDs()

	html, err := p.assembler.Assemble(doc, out.Sections)
	if err != nil {
		return err
	}
	if err := validate.HTML(html); err != nil {
		return err
	}
	if err := validate.IssueCount(out.Issues, p.cfg.Issues.MinPerDocument, p.cfg.Issues.MaxPerDocument); err != nil {
		return err
	}

	if res.HTMLPath, err = p.writer.SaveHTML(t.Name, documentType, html); err != nil {
		return err
	}
	meta := &artifact.Metadata{
		RunID:      p.runID,
		Seed:       p.cfg.Seed,
		Tool:       *t,
		Document:   artifact.NewDocumentInfo(doc, documentType),
		Generation: artifact.NewGenerationInfo(p.cfg),
		Issues:     artifact.NewIssueSummary(out.Issues),
		Timestamp:  p.now().UTC(),
	}
	if rec.MetadataPath, err = p.writer.SaveMetadata(t.Name, meta); err != nil {
		return err
	}
	if _, err := p.writer.SaveIssuePlan(t.Name, documentType, doc.ID, out.Plan.IDs()); err != nil {
		return err
	}

	rec.HTMLPath = res.HTMLPath
	res.Issues = len(out.Issues)
	rec.IssueCount = len(out.Issues)
	for _, is := range out.Issues {
		rec.Issues = append(rec.Issues, model.Issue{
			DocumentID:   rec.ID,
			SectionID:    is.SectionID,
			SectionTitle: is.SectionTitle,
			Description:  is.Description,
			Severity:     is.Severity,
		})
	}
	log.Debug("Document persisted", zap.String("html", res.HTMLPath), zap.String("metadata", rec.MetadataPath))
	return nil
}

// The index is secondary to the files on disk: failures are logged, never fatal.

func (p *Pipeline) recordRunStart(log *zap.Logger) {
	if p.store == nil {
		return
	}
	run := &model.Run{
		ID:         p.runID,
		Seed:       p.cfg.Seed,
		Provider:   p.client.Name(),
		DataDir:    p.writer.Root(),
		Status:     model.RunStatusRunning,
		ToolsCount: p.cfg.Tools.Count,
	}
	if err := p.store.Run().Create(run); err != nil {
		log.Warn("Failed to record run in index", zap.Error(err))
	}
}

func (p *Pipeline) recordRunEnd(log *zap.Logger, summary *Summary, runErr error) {
	if p.store == nil {
		return
	}
	status := model.RunStatusCompleted
	errMsg := ""
	if runErr != nil {
		status = model.RunStatusFailed
		errMsg = runErr.Error()
	}
	err := p.store.Run().Finish(p.runID, status, summary.Completed, summary.Rejected+summary.Failed, summary.Duration, errMsg)
	if err != nil {
		log.Warn("Failed to finish run in index", zap.Error(err))
		return
	}
	if bySeverity, err := p.store.Document().IssuesBySeverity(p.runID); err == nil {
		summary.IssuesBySeverity = bySeverity
	}
}

func (p *Pipeline) recordDocument(log *zap.Logger, rec *model.Document, res *DocumentResult) {
	if p.store == nil {
		return
	}
	rec.Status = res.Status
	rec.Duration = res.Duration.Milliseconds()
	if res.Err != nil {
		rec.Error = res.Err.Error()
		rec.ErrorCode = string(errors.CodeOf(res.Err))
		rec.Issues = nil
	}
	if err := p.store.Document().Create(rec); err != nil {
		log.Warn("Failed to record document in index", zap.Error(errors.Wrap(errors.ErrCodePersistence, "index write failed", err)))
	}
}
