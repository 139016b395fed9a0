package check

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// Report collects and displays check results
type Report struct {
	Dir        string
	Tools      int
	Results    []*DocumentResult
	ToolErrors []error
}

// NewReport creates a new report for the dataset under dir
func NewReport(dir string) *Report {
	return &Report{
		Dir:     dir,
		Results: make([]*DocumentResult, 0),
	}
}

// AddResult adds a document result
func (r *Report) AddResult(result *DocumentResult) {
	r.Results = append(r.Results, result)
}

// AddToolError records a tool whose directory could not be read
func (r *Report) AddToolError(name string, err error) {
	r.ToolErrors = append(r.ToolErrors, fmt.Errorf("%s: %w", name, err))
}

// ReportSummary holds the summary statistics
type ReportSummary struct {
	Documents   int
	Valid       int
	Invalid     int
	Incomplete  int
	Issues      int
	HasErrors   bool
	HasWarnings bool
}

// Summary calculates the summary from all results
func (r *Report) Summary() ReportSummary {
	summary := ReportSummary{
		Documents: len(r.Results),
		HasErrors: len(r.ToolErrors) > 0,
	}
	for _, result := range r.Results {
		switch {
		case !result.Valid():
			summary.Invalid++
			summary.HasErrors = true
		case result.Incomplete:
			summary.Incomplete++
		default:
			summary.Valid++
			summary.Issues += result.Issues
		}
		if len(result.Warnings) > 0 {
			summary.HasWarnings = true
		}
	}
	return summary
}

// Print writes the detailed report followed by the summary line
func (r *Report) Print(out io.Writer) {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)
	fmt.Fprintln(out, titleStyle.Render("🔍 Dataset check: "+r.Dir))

	r.printToolErrors(out)
	r.printResults(out)

	fmt.Fprintln(out)
	r.printSeparator(out)
	r.printSummary(out, r.Summary())
}

func (r *Report) printToolErrors(out io.Writer) {
	red := color.New(color.FgRed)
	for _, err := range r.ToolErrors {
		red.Fprintf(out, "  ✗ %v\n", err)
	}
}

// printResults prints one block per tool
func (r *Report) printResults(out io.Writer) {
	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("14"))

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	faint := color.New(color.Faint)

	current := ""
	for _, result := range r.Results {
		if result.Tool != current {
			current = result.Tool
			fmt.Fprintln(out, sectionStyle.Render("📁 "+current))
		}

		switch {
		case !result.Valid():
			red.Fprintf(out, "  ✗ %s\n", result.Document)
			for _, err := range result.Errors {
				red.Fprintf(out, "    └─ %v\n", err)
			}
		case result.Incomplete:
			yellow.Fprintf(out, "  ⚠ %s", result.Document)
			faint.Fprintln(out, " (incomplete)")
		default:
			green.Fprintf(out, "  ✓ %s", result.Document)
			faint.Fprintf(out, " (%d sections, %d issues)\n", result.Sections, result.Issues)
		}

		for _, warning := range result.Warnings {
			yellow.Fprintf(out, "    └─ %s\n", warning)
		}
	}
}

// printSeparator prints a separator line
func (r *Report) printSeparator(out io.Writer) {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))
	fmt.Fprintln(out, style.Render(strings.Repeat("─", 50)))
}

// printSummary prints the final summary
func (r *Report) printSummary(out io.Writer, summary ReportSummary) {
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	// Determine overall status
	if summary.HasErrors {
		red.Fprint(out, "✗ Check completed")
	} else if summary.HasWarnings || summary.Incomplete > 0 {
		yellow.Fprint(out, "⚠ Check completed")
	} else {
		green.Fprint(out, "✓ Check completed")
	}

	details := []string{fmt.Sprintf("%d tool(s), %d document(s)", r.Tools, summary.Documents)}
	if summary.Invalid > 0 {
		details = append(details, fmt.Sprintf("%d invalid", summary.Invalid))
	}
	if summary.Incomplete > 0 {
		details = append(details, fmt.Sprintf("%d incomplete", summary.Incomplete))
	}
	if len(r.ToolErrors) > 0 {
		details = append(details, fmt.Sprintf("%d unreadable tool(s)", len(r.ToolErrors)))
	}
	details = append(details, fmt.Sprintf("%d issue(s)", summary.Issues))

	fmt.Fprintf(out, " (%s)\n", strings.Join(details, ", "))
}
