// Package validate runs the structural checks a document must pass before it is persisted.
package validate

import (
	"strings"

	"github.com/verustcode/docsynth/internal/issues"
	"github.com/verustcode/docsynth/internal/toc"
	"github.com/verustcode/docsynth/pkg/errors"
)

// TOC checks required fields and id uniqueness across the whole tree
func TOC(t *toc.TOC) error {
	if t == nil {
		return errors.ErrTOCValidation("TOC is nil")
	}
	if strings.TrimSpace(t.ID) == "" {
		return errors.ErrTOCValidation("TOC id is empty")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.ErrTOCValidation("TOC title is empty")
	}
	if len(t.Sections) == 0 {
		return errors.ErrTOCValidation("TOC %q has no sections", t.ID)
	}

	seen := make(map[string]struct{})
	return toc.Walk(t, func(s *toc.Section, _ int, _ *toc.Section) error {
		if strings.TrimSpace(s.ID) == "" {
			return errors.ErrTOCValidation("section id is empty (title %q)", s.Title)
		}
		if strings.TrimSpace(s.Title) == "" {
			return errors.ErrTOCValidation("empty title in section %q", s.ID)
		}
		if _, dup := seen[s.ID]; dup {
			return errors.ErrTOCValidation("duplicate section id: %s", s.ID)
		}
		seen[s.ID] = struct{}{}
		return nil
	})
}

// IssueCount checks the number of confirmed issues against the configured bounds
func IssueCount(list []issues.InjectedIssue, min, max int) error {
	if n := len(list); n < min || n > max {
		return errors.Newf(errors.ErrCodeIssueCountValidation,
			"document has %d injected issues, expected between %d and %d", n, min, max).
			WithDetails(map[string]any{"count": n, "min": min, "max": max, "section_ids": issues.SectionIDs(list)})
	}
	return nil
}
