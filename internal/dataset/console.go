package dataset

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/verustcode/docsynth/internal/htmldoc"
	"github.com/verustcode/docsynth/internal/issues"
	"github.com/verustcode/docsynth/internal/tool"
)

// Console prints run progress for humans. Section bodies and their issues
// are echoed only in verbose mode.
type Console struct {
	out     io.Writer
	verbose bool

	bold   *color.Color
	faint  *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color
	cyan   *color.Color
}

// NewConsole creates a console writing to out
func NewConsole(out io.Writer, verbose bool) *Console {
	return &Console{
		out:     out,
		verbose: verbose,
		bold:    color.New(color.Bold),
		faint:   color.New(color.Faint),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow),
		red:     color.New(color.FgRed),
		cyan:    color.New(color.FgCyan, color.Bold),
	}
}

// ToolGenerated reports a new tool profile
func (c *Console) ToolGenerated(index, total int, t *tool.Tool) {
	c.faint.Fprintf(c.out, "[Tool %d/%d] ", index, total)
	fmt.Fprintf(c.out, "%s", t.Name)
	if t.Category != "" {
		c.faint.Fprintf(c.out, " (%s)", t.Category)
	}
	fmt.Fprintln(c.out)
}

// ToolFailed reports a tool that could not be generated
func (c *Console) ToolFailed(index, total int, err error) {
	c.red.Fprintf(c.out, "[Tool %d/%d] ✗ %v\n", index, total, err)
}

// ToolStart announces the documents about to be generated for a tool
func (c *Console) ToolStart(t *tool.Tool, documentTypes []string) {
	fmt.Fprintln(c.out)
	c.cyan.Fprintf(c.out, "Generating documents for tool: %s\n", t.Name)
	c.faint.Fprintf(c.out, "  %s\n", strings.Join(documentTypes, ", "))
}

// DocumentStart announces one document
func (c *Console) DocumentStart(documentType string) {
	fmt.Fprintf(c.out, "  → %s\n", documentType)
}

// DocumentDone reports the outcome of one document
func (c *Console) DocumentDone(r *DocumentResult) {
	switch {
	case r.Err == nil:
		c.green.Fprintf(c.out, "    ✓ %d sections, %d issues", r.Sections, r.Issues)
		c.faint.Fprintf(c.out, " (%s)\n", r.Duration.Round(time.Millisecond))
	case IsRejection(r.Err):
		c.yellow.Fprintf(c.out, "    ⚠ rejected: %v\n", r.Err)
	default:
		c.red.Fprintf(c.out, "    ✗ failed: %v\n", r.Err)
	}
}

// SectionSynthesized echoes a section, indented by level, with any injected issue
func (c *Console) SectionSynthesized(sec *htmldoc.Section, parentTitle string, issue *issues.InjectedIssue) {
	if !c.verbose {
		return
	}
	indent := strings.Repeat("  ", max(sec.Level-1, 0))

	fmt.Fprintln(c.out)
	if sec.ParentID != "" {
		c.bold.Fprintf(c.out, "%s%s → %s\n", indent, parentTitle, sec.Title)
	} else {
		c.bold.Fprintf(c.out, "%s%s\n", indent, sec.Title)
	}
	c.faint.Fprintf(c.out, "%s%s\n", indent, strings.Repeat("-", 60))
	for _, line := range strings.Split(sec.ContentHTML, "\n") {
		fmt.Fprintf(c.out, "%s%s\n", indent, line)
	}

	if issue != nil {
		c.yellow.Fprintf(c.out, "%s⚠ Injected issue:\n", indent)
		sev := ""
		if issue.Severity != "" {
			sev = " [" + issue.Severity + "]"
		}
		c.yellow.Fprintf(c.out, "%s  1. %s%s\n", indent, issue.Description, sev)
	}
}

// Summary prints the run totals
func (c *Console) Summary(s *Summary) {
	fmt.Fprintln(c.out)
	c.faint.Fprintln(c.out, strings.Repeat("─", 50))

	status := c.green
	mark := "✓"
	if s.Rejected > 0 || s.Failed > 0 || s.ToolsFailed > 0 {
		status, mark = c.red, "✗"
	}
	status.Fprintf(c.out, "%s Dataset generation complete", mark)
	fmt.Fprintf(c.out, " (run %s, %s)\n", s.RunID, s.Duration.Round(time.Millisecond))

	fmt.Fprintf(c.out, "  tools:     %d", s.Tools)
	if s.ToolsFailed > 0 {
		c.red.Fprintf(c.out, " (%d failed)", s.ToolsFailed)
	}
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "  documents: %d completed, %d rejected, %d failed\n", s.Completed, s.Rejected, s.Failed)
	fmt.Fprintf(c.out, "  issues:    %d\n", s.Issues)

	if len(s.IssuesBySeverity) > 0 {
		keys := make([]string, 0, len(s.IssuesBySeverity))
		for k := range s.IssuesBySeverity {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			name := k
			if name == "" {
				name = "unrated"
			}
			parts = append(parts, fmt.Sprintf("%s=%d", name, s.IssuesBySeverity[k]))
		}
		c.faint.Fprintf(c.out, "  by severity: %s\n", strings.Join(parts, " "))
	}
}
