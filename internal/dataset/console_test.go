package dataset

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/verustcode/docsynth/internal/htmldoc"
	"github.com/verustcode/docsynth/internal/issues"
	"github.com/verustcode/docsynth/internal/tool"
	"github.com/verustcode/docsynth/pkg/errors"
)

func TestConsole_SectionSynthesized(t *testing.T) {
	sec := &htmldoc.Section{ID: "scope", Title: "Scope", Level: 2, ParentID: "intro", ContentHTML: "<h3>Scope</h3>\n<p>Body</p>"}
	issue := &issues.InjectedIssue{SectionID: "scope", Description: "typo in body", Severity: "low"}

	t.Run("verbose", func(t *testing.T) {
		var out bytes.Buffer
		NewConsole(&out, true).SectionSynthesized(sec, "Introduction", issue)

		text := out.String()
		assert.Contains(t, text, "  Introduction → Scope")
		assert.Contains(t, text, "  <h3>Scope</h3>")
		assert.Contains(t, text, "  <p>Body</p>")
		assert.Contains(t, text, "1. typo in body [low]")
	})

	t.Run("quiet", func(t *testing.T) {
		var out bytes.Buffer
		NewConsole(&out, false).SectionSynthesized(sec, "Introduction", issue)
		assert.Empty(t, out.String())
	})

	t.Run("top level without issue", func(t *testing.T) {
		var out bytes.Buffer
		top := &htmldoc.Section{ID: "intro", Title: "Introduction", Level: 1, ContentHTML: "<h2>Introduction</h2>"}
		NewConsole(&out, true).SectionSynthesized(top, "", nil)
		assert.Contains(t, out.String(), "\nIntroduction\n")
		assert.NotContains(t, out.String(), "Injected issue")
	})
}

func TestConsole_Progress(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, false)

	c.ToolGenerated(1, 2, &tool.Tool{Name: "Ledgerly", Category: "Finance"})
	c.ToolStart(&tool.Tool{Name: "Ledgerly"}, []string{"Privacy Policy", "Cookie Policy"})
	c.DocumentStart("Privacy Policy")
	c.DocumentDone(&DocumentResult{Sections: 7, Issues: 2, Duration: 1500 * time.Millisecond})
	c.DocumentDone(&DocumentResult{Err: errors.ErrTOCValidation("TOC id is empty")})
	c.DocumentDone(&DocumentResult{Err: errors.New(errors.ErrCodeGeneration, "timeout")})

	text := out.String()
	assert.Contains(t, text, "[Tool 1/2] Ledgerly (Finance)")
	assert.Contains(t, text, "Generating documents for tool: Ledgerly")
	assert.Contains(t, text, "Privacy Policy, Cookie Policy")
	assert.Contains(t, text, "✓ 7 sections, 2 issues (1.5s)")
	assert.Contains(t, text, "⚠ rejected: [E8001] TOC id is empty")
	assert.Contains(t, text, "✗ failed: [E7002] timeout")
}

func TestConsole_Summary(t *testing.T) {
	var out bytes.Buffer
	NewConsole(&out, false).Summary(&Summary{
		RunID:            "run-1",
		Tools:            2,
		Completed:        3,
		Rejected:         1,
		Issues:           7,
		IssuesBySeverity: map[string]int64{"low": 4, "high": 3},
	})

	text := out.String()
	assert.Contains(t, text, "✗ Dataset generation complete")
	assert.Contains(t, text, "3 completed, 1 rejected, 0 failed")
	assert.Contains(t, text, "issues:    7")
	assert.Contains(t, text, "by severity: high=3 low=4")
}
