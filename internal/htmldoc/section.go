// Package htmldoc sanitizes generated section fragments and assembles them
// into one nested HTML document following the TOC.
package htmldoc

// Section is one synthesized TOC node
type Section struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Level       int    `json:"level"`
	ParentID    string `json:"parent_id,omitempty"`
	ContentHTML string `json:"content_html"`
}

// Index maps section ids to sections. Later duplicates win.
func Index(sections []Section) map[string]*Section {
	m := make(map[string]*Section, len(sections))
	for i := range sections {
		m[sections[i].ID] = &sections[i]
	}
	return m
}
