// Package check re-validates a generated dataset on disk. Every saved
// document is run through the same structural checks the pipeline applies
// before persisting, and its metadata is cross-checked against its issue plan.
package check

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/verustcode/docsynth/internal/artifact"
	"github.com/verustcode/docsynth/internal/toc"
	"github.com/verustcode/docsynth/internal/validate"
	"github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/logger"
)

// DocumentResult is the outcome of checking one saved document
type DocumentResult struct {
	Tool     string
	Document string
	TOCID    string
	Sections int
	Issues   int
	// Incomplete is set when only the TOC was saved, meaning the document was
	// rejected or failed during generation
	Incomplete bool
	Errors     []error
	Warnings   []string
}

// Valid reports whether the document passed every check
func (r *DocumentResult) Valid() bool {
	return len(r.Errors) == 0
}

func (r *DocumentResult) fail(err error) {
	r.Errors = append(r.Errors, err)
}

func (r *DocumentResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Checker walks a dataset directory
type Checker struct {
	writer    *artifact.Writer
	minIssues int
	maxIssues int
}

// NewChecker creates a checker for the dataset under dataDir. The issue
// bounds are the ones the dataset was generated with.
func NewChecker(dataDir string, minIssues, maxIssues int) (*Checker, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrNotFound("dataset directory " + dataDir)
		}
		return nil, errors.Wrap(errors.ErrCodePersistence, "cannot read dataset directory", err)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrCodeValidation, "%s is not a directory", dataDir)
	}

	w, err := artifact.NewWriter(dataDir)
	if err != nil {
		return nil, err
	}
	return &Checker{writer: w, minIssues: minIssues, maxIssues: maxIssues}, nil
}

// Run checks every tool and document and returns the collected report
func (c *Checker) Run() (*Report, error) {
	tools, err := c.writer.ListTools()
	if err != nil {
		return nil, err
	}

	report := NewReport(c.writer.Root())
	for _, name := range tools {
		if _, err := c.writer.LoadTool(name); err != nil {
			report.AddToolError(name, err)
			continue
		}
		docs, err := c.writer.ListDocuments(name)
		if err != nil {
			report.AddToolError(name, err)
			continue
		}
		report.Tools++
		for _, doc := range docs {
			report.AddResult(c.checkDocument(name, doc))
		}
	}

	logger.Info("Dataset checked",
		zap.String("dir", c.writer.Root()),
		zap.Int("tools", report.Tools),
		zap.Int("documents", len(report.Results)),
	)
	return report, nil
}

func (c *Checker) checkDocument(toolName, document string) *DocumentResult {
	res := &DocumentResult{Tool: toolName, Document: document}

	doc, err := c.writer.LoadTOC(toolName, document)
	if err != nil {
		res.fail(err)
		return res
	}
	res.TOCID = doc.ID
	res.Sections = toc.Count(doc)
	if err := validate.TOC(doc); err != nil {
		res.fail(err)
		return res
	}

	page, err := c.writer.LoadHTML(toolName, document)
	if errors.HasCode(err, errors.ErrCodeNotFound) {
		res.Incomplete = true
		res.warn("no HTML saved, document was not persisted")
		return res
	}
	if err != nil {
		res.fail(err)
		return res
	}
	if err := validate.HTML(page); err != nil {
		res.fail(err)
	}
	c.checkSections(res, doc, page)

	meta, err := c.writer.LoadMetadata(toolName, document)
	if err != nil {
		res.fail(err)
		return res
	}
	res.Issues = len(meta.Issues.Details)
	if err := validate.IssueCount(meta.Issues.Details, c.minIssues, c.maxIssues); err != nil {
		res.fail(err)
	}
	if meta.Issues.TotalCount != len(meta.Issues.Details) {
		res.fail(errors.Newf(errors.ErrCodeIssueCountValidation,
			"metadata total_count %d does not match %d issue details", meta.Issues.TotalCount, len(meta.Issues.Details)))
	}

	plan, err := c.writer.LoadIssuePlan(toolName, document)
	if err != nil {
		res.fail(err)
		return res
	}
	c.checkPlan(res, doc, meta, plan)
	return res
}

// checkSections compares the TOC with the <section> elements in the page.
// Missing sections are warnings since non-strict assembly skips them.
func (c *Checker) checkSections(res *DocumentResult, doc *toc.TOC, page string) {
	found, err := sectionIDs(page)
	if err != nil {
		res.fail(errors.ErrHTMLValidation("cannot parse document: %v", err))
		return
	}
	for _, id := range toc.CollectIDs(doc) {
		if _, ok := found[id]; !ok {
			res.warn("section %q is in the TOC but not in the document", id)
		}
	}
}

// checkPlan verifies that confirmed issues and the plan name the same sections
func (c *Checker) checkPlan(res *DocumentResult, doc *toc.TOC, meta *artifact.Metadata, plan *artifact.IssuePlan) {
	known := toc.CollectIDs(doc)
	var confirmed []string
	for _, is := range meta.Issues.Details {
		if !slices.Contains(known, is.SectionID) {
			res.fail(errors.Newf(errors.ErrCodeIssueCountValidation, "issue refers to unknown section %q", is.SectionID))
		}
		confirmed = append(confirmed, is.SectionID)
	}
	slices.Sort(confirmed)

	planned := slices.Clone(plan.SectionsWithIssues)
	slices.Sort(planned)
	if !slices.Equal(confirmed, planned) {
		res.fail(errors.Newf(errors.ErrCodeIssueCountValidation,
			"issues [%s] do not match issue plan [%s]", strings.Join(confirmed, ", "), strings.Join(planned, ", ")))
	}
}

// sectionIDs returns the id of every <section> element in page
func sectionIDs(page string) (map[string]struct{}, error) {
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{})
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Section {
			for _, a := range n.Attr {
				if a.Key == "id" {
					ids[a.Val] = struct{}{}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(root)
	return ids, nil
}

// Err aggregates the failures of every invalid document, or returns nil
func (r *Report) Err() error {
	var errs error
	for _, e := range r.ToolErrors {
		errs = multierr.Append(errs, e)
	}
	for _, res := range r.Results {
		for _, e := range res.Errors {
			errs = multierr.Append(errs, fmt.Errorf("%s/%s: %w", res.Tool, res.Document, e))
		}
	}
	return errs
}
