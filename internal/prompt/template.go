// Package prompt loads prompt templates and renders them with pipeline data.
// Templates are embedded in the binary and can be overridden per name from a
// directory on disk.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// templateExt is appended to bare template names
const templateExt = ".tmpl"

// Data is the set of named placeholders available to every template.
// Templates reference only the fields they need.
type Data struct {
	// Tool profile
	ToolName string
	Purpose  string
	Category string
	UserBase string

	// Document and section context
	DocumentType     string
	SectionTitle     string
	ParentTitle      string
	PreviousSummary  string
	IssueInstruction string

	// Language is the human-readable output language, e.g. "English"
	Language string

	// Avoid lists values the generator must not repeat (e.g. tool names)
	Avoid []string
}

// funcMap holds helpers available inside templates
var funcMap = template.FuncMap{
	"join":     strings.Join,
	"indent":   indent,
	"bullet":   bullet,
	"numbered": numbered,
	"quote":    quote,
	"add":      func(a, b int) int { return a + b },
}

// parse compiles template text with the helper functions.
// Unknown fields fail at execution time, so typos in override files surface early.
func parse(name, text string) (*template.Template, error) {
	return template.New(name).Funcs(funcMap).Option("missingkey=error").Parse(text)
}

// execute renders a compiled template
func execute(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %q: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// Helper functions for templates
func indent(spaces int, s string) string {
	pad := strings.Repeat(" ", spaces)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}

func bullet(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}

// numbered formats items as a numbered list (1. 2. 3. etc.)
func numbered(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, item))
	}
	return sb.String()
}

// quote formats text as a markdown blockquote
func quote(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("> ")
		sb.WriteString(line)
	}
	return sb.String()
}
