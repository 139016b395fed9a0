package htmldoc

import (
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/verustcode/docsynth/internal/toc"
	"github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/logger"
)

// Assembler nests section content into a full HTML document.
// In strict mode a TOC node without a synthesized section is an error;
// otherwise the node and its subtree are left out.
type Assembler struct {
	Strict bool
}

// NewAssembler creates an assembler
func NewAssembler(strict bool) *Assembler {
	return &Assembler{Strict: strict}
}

// Assemble renders the document. The output depends only on its inputs.
func (a *Assembler) Assemble(t *toc.TOC, sections []Section) (string, error) {
	byID := Index(sections)

	var blocks []string
	for i := range t.Sections {
		block, err := a.render(&t.Sections[i], 1, byID)
		if err != nil {
			return "", err
		}
		if block != "" {
			blocks = append(blocks, block)
		}
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(t.Title))
	b.WriteString("</head>\n<body>\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	b.WriteString("\n</body>\n</html>\n")
	return b.String(), nil
}

func (a *Assembler) render(node *toc.Section, level int, byID map[string]*Section) (string, error) {
	sec, ok := byID[node.ID]
	if !ok {
		if a.Strict {
			return "", errors.Newf(errors.ErrCodeMissingSection, "no synthesized content for section %q", node.ID).
				WithDetails(map[string]string{"section_id": node.ID, "section_title": node.Title})
		}
		logger.Warn("Section missing, subtree omitted",
			zap.String(logger.FieldSectionID, node.ID),
			zap.Int("subsections", len(node.Subsections)),
		)
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<section id=\"%s\" data-level=\"%d\">\n", html.EscapeString(node.ID), level)
	if content := strings.TrimSpace(sec.ContentHTML); content != "" {
		b.WriteString(content)
		b.WriteString("\n")
	}
	for i := range node.Subsections {
		child, err := a.render(&node.Subsections[i], level+1, byID)
		if err != nil {
			return "", err
		}
		if child != "" {
			b.WriteString(child)
			b.WriteString("\n")
		}
	}
	b.WriteString("</section>")
	return b.String(), nil
}
