// Package issues holds the injected-issue record and the planner that decides
// which sections of a document carry a deliberate defect.
package issues

// Severity values the generator may attach to an issue
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// InjectedIssue is one defect confirmed in a synthesized section
type InjectedIssue struct {
	SectionID    string `json:"section_id"`
	SectionTitle string `json:"section_title"`
	Description  string `json:"description"`
	Severity     string `json:"severity,omitempty"`
}

// SectionIDs returns the section ids of issues in order, duplicates kept
func SectionIDs(list []InjectedIssue) []string {
	ids := make([]string, 0, len(list))
	for _, is := range list {
		ids = append(ids, is.SectionID)
	}
	return ids
}
