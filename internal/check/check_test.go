package check

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/docsynth/internal/artifact"
	"github.com/verustcode/docsynth/internal/htmldoc"
	"github.com/verustcode/docsynth/internal/issues"
	"github.com/verustcode/docsynth/internal/toc"
	"github.com/verustcode/docsynth/internal/tool"
	"github.com/verustcode/docsynth/pkg/errors"
)

var (
	ledgerly = &tool.Tool{Name: "Ledgerly", Purpose: "bookkeeping"}
	docType  = "Privacy Policy"
)

func policyTOC() *toc.TOC {
	return &toc.TOC{
		ID:    "privacy_policy",
		Title: "Privacy Policy",
		Sections: []toc.Section{
			{ID: "intro", Title: "Introduction", Subsections: []toc.Section{
				{ID: "scope", Title: "Scope", Subsections: []toc.Section{}},
			}},
			{ID: "contact", Title: "Contact", Subsections: []toc.Section{}},
		},
	}
}

type fixture struct {
	dir    string
	writer *artifact.Writer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	w, err := artifact.NewWriter(dir)
	require.NoError(t, err)
	_, err = w.SaveTool(ledgerly)
	require.NoError(t, err)
	return &fixture{dir: dir, writer: w}
}

// document saves a complete, valid document with one issue in "scope"
func (f *fixture) document(t *testing.T, planned []string) {
	t.Helper()
	doc := policyTOC()
	_, err := f.writer.SaveTOC(ledgerly.Name, docType, doc)
	require.NoError(t, err)

	sections := []htmldoc.Section{
		{ID: "intro", Title: "Introduction", Level: 1, ContentHTML: "<h2>Introduction</h2><p>Hello</p>"},
		{ID: "scope", Title: "Scope", Level: 2, ParentID: "intro", ContentHTML: "<h3>Scope</h3><p>Teh scope</p>"},
		{ID: "contact", Title: "Contact", Level: 1, ContentHTML: "<h2>Contact</h2><p>Mail us</p>"},
	}
	page, err := htmldoc.NewAssembler(true).Assemble(doc, sections)
	require.NoError(t, err)
	_, err = f.writer.SaveHTML(ledgerly.Name, docType, page)
	require.NoError(t, err)

	found := []issues.InjectedIssue{{SectionID: "scope", SectionTitle: "Scope", Description: "typo", Severity: issues.SeverityLow}}
	_, err = f.writer.SaveMetadata(ledgerly.Name, &artifact.Metadata{
		Tool:     *ledgerly,
		Document: artifact.NewDocumentInfo(doc, docType),
		Issues:   artifact.NewIssueSummary(found),
	})
	require.NoError(t, err)
	_, err = f.writer.SaveIssuePlan(ledgerly.Name, docType, doc.ID, planned)
	require.NoError(t, err)
}

func run(t *testing.T, dir string, min, max int) *Report {
	t.Helper()
	c, err := NewChecker(dir, min, max)
	require.NoError(t, err)
	report, err := c.Run()
	require.NoError(t, err)
	return report
}

func TestChecker_ValidDataset(t *testing.T) {
	f := newFixture(t)
	f.document(t, []string{"scope"})

	report := run(t, f.dir, 1, 3)
	require.NoError(t, report.Err())
	require.Len(t, report.Results, 1)

	res := report.Results[0]
	assert.Equal(t, "ledgerly", res.Tool)
	assert.Equal(t, "privacy_policy", res.Document)
	assert.Equal(t, 3, res.Sections)
	assert.Equal(t, 1, res.Issues)
	assert.Empty(t, res.Warnings)

	summary := report.Summary()
	assert.Equal(t, 1, report.Tools)
	assert.Equal(t, 1, summary.Valid)
	assert.False(t, summary.HasErrors)
}

func TestChecker_Failures(t *testing.T) {
	tests := []struct {
		name    string
		planned []string
		min     int
		max     int
		code    errors.ErrorCode
	}{
		{"plan mismatch", []string{"contact"}, 1, 3, errors.ErrCodeIssueCountValidation},
		{"too few issues", []string{"scope"}, 2, 3, errors.ErrCodeIssueCountValidation},
		{"too many issues", []string{"scope"}, 0, 0, errors.ErrCodeIssueCountValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.document(t, tt.planned)

			report := run(t, f.dir, tt.min, tt.max)
			err := report.Err()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code))
			assert.Equal(t, 1, report.Summary().Invalid)
		})
	}
}

func TestChecker_BrokenHTML(t *testing.T) {
	f := newFixture(t)
	f.document(t, []string{"scope"})
	_, err := f.writer.SaveHTML(ledgerly.Name, docType, "<p>no structure at all</p>")
	require.NoError(t, err)

	report := run(t, f.dir, 1, 3)
	err = report.Err()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeHTMLValidation))
	assert.NotEmpty(t, report.Results[0].Warnings, "sections missing from the page are reported")
}

func TestChecker_IncompleteDocument(t *testing.T) {
	f := newFixture(t)
	_, err := f.writer.SaveTOC(ledgerly.Name, docType, policyTOC())
	require.NoError(t, err)

	report := run(t, f.dir, 1, 3)
	require.NoError(t, report.Err())
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Incomplete)
	assert.Equal(t, 1, report.Summary().Incomplete)
}

func TestChecker_InvalidTOC(t *testing.T) {
	f := newFixture(t)
	bad := policyTOC()
	bad.Sections[1].ID = "intro"
	_, err := f.writer.SaveTOC(ledgerly.Name, docType, bad)
	require.NoError(t, err)

	report := run(t, f.dir, 1, 3)
	assert.True(t, errors.HasCode(report.Err(), errors.ErrCodeTOCValidation))
}

func TestNewChecker_MissingDir(t *testing.T) {
	_, err := NewChecker(filepath.Join(t.TempDir(), "nope"), 1, 3)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestReport_Print(t *testing.T) {
	color.NoColor = true

	t.Run("clean", func(t *testing.T) {
		f := newFixture(t)
		f.document(t, []string{"scope"})

		var out bytes.Buffer
		run(t, f.dir, 1, 3).Print(&out)

		text := out.String()
		assert.Contains(t, text, "📁 ledgerly")
		assert.Contains(t, text, "✓ privacy_policy (3 sections, 1 issues)")
		assert.Contains(t, text, "✓ Check completed (1 tool(s), 1 document(s), 1 issue(s))")
	})

	t.Run("invalid", func(t *testing.T) {
		f := newFixture(t)
		f.document(t, []string{"contact"})

		var out bytes.Buffer
		run(t, f.dir, 1, 3).Print(&out)

		text := out.String()
		assert.Contains(t, text, "✗ privacy_policy")
		assert.Contains(t, text, "do not match issue plan")
		assert.Contains(t, text, "✗ Check completed (1 tool(s), 1 document(s), 1 invalid, 0 issue(s))")
	})
}
