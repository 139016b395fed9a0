// Package toc models a document's table of contents and generates one for a
// tool and document type.
package toc

import (
	"strings"
)

// Section is one node of the table of contents. Ids are unique across the whole tree.
type Section struct {
	ID          string    `json:"id" description:"lowercase snake_case id, unique in the document"`
	Title       string    `json:"title"`
	Subsections []Section `json:"subsections"`
}

// TOC is the root of one document's structure. It is treated as immutable once validated.
type TOC struct {
	ID       string    `json:"id" description:"document id"`
	Title    string    `json:"title" description:"document title"`
	Sections []Section `json:"sections"`
}

// VisitFunc is called for every section in pre-order. level is the depth
// (top-level sections are 1) and parent is nil for top-level sections.
type VisitFunc func(s *Section, level int, parent *Section) error

// Walk visits every section depth-first, each node before its subsections,
// siblings in order. It stops at the first error returned by fn.
func Walk(t *TOC, fn VisitFunc) error {
	if t == nil {
		return nil
	}
	for i := range t.Sections {
		if err := walk(&t.Sections[i], 1, nil, fn); err != nil {
			return err
		}
	}
	return nil
}

func walk(s *Section, level int, parent *Section, fn VisitFunc) error {
	if err := fn(s, level, parent); err != nil {
		return err
	}
	for i := range s.Subsections {
		if err := walk(&s.Subsections[i], level+1, s, fn); err != nil {
			return err
		}
	}
	return nil
}

// CollectIDs returns every section id in pre-order
func CollectIDs(t *TOC) []string {
	var ids []string
	_ = Walk(t, func(s *Section, _ int, _ *Section) error {
		ids = append(ids, s.ID)
		return nil
	})
	return ids
}

// Count returns the number of sections in the tree
func Count(t *TOC) int {
	n := 0
	_ = Walk(t, func(*Section, int, *Section) error {
		n++
		return nil
	})
	return n
}

// Depth returns the deepest level in the tree, 0 for an empty TOC
func Depth(t *TOC) int {
	depth := 0
	_ = Walk(t, func(_ *Section, level int, _ *Section) error {
		if level > depth {
			depth = level
		}
		return nil
	})
	return depth
}

// Normalize trims ids and titles and replaces nil subsection lists with empty
// ones, so serialized trees always carry "subsections": [].
func (t *TOC) Normalize() {
	t.ID = strings.TrimSpace(t.ID)
	t.Title = strings.TrimSpace(t.Title)
	if t.Sections == nil {
		t.Sections = []Section{}
	}
	for i := range t.Sections {
		normalizeSection(&t.Sections[i])
	}
}

func normalizeSection(s *Section) {
	s.ID = strings.TrimSpace(s.ID)
	s.Title = strings.TrimSpace(s.Title)
	if s.Subsections == nil {
		s.Subsections = []Section{}
	}
	for i := range s.Subsections {
		normalizeSection(&s.Subsections[i])
	}
}
