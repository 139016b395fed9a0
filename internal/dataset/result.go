package dataset

import (
	"time"

	"github.com/verustcode/docsynth/internal/model"
	"github.com/verustcode/docsynth/pkg/errors"
)

// DocumentResult describes the outcome of one document
type DocumentResult struct {
	ID           string
	ToolName     string
	DocumentType string
	TOCID        string
	Status       model.DocumentStatus
	Sections     int
	Issues       int
	HTMLPath     string
	Duration     time.Duration
	Err          error
}

// Summary totals a whole run
type Summary struct {
	RunID       string
	Tools       int
	ToolsFailed int
	Completed   int
	Rejected    int
	Failed      int
	Issues      int
	Duration    time.Duration
	// IssuesBySeverity comes from the dataset index, when one is configured
	IssuesBySeverity map[string]int64
}

// Documents returns the number of documents attempted
func (s *Summary) Documents() int {
	return s.Completed + s.Rejected + s.Failed
}

func (s *Summary) add(r *DocumentResult) {
	switch r.Status {
	case model.DocumentStatusCompleted:
		s.Completed++
		s.Issues += r.Issues
	case model.DocumentStatusRejected:
		s.Rejected++
	default:
		s.Failed++
	}
}

// rejectionCodes are the structural validation failures
var rejectionCodes = []errors.ErrorCode{
	errors.ErrCodeTOCValidation,
	errors.ErrCodeHTMLValidation,
	errors.ErrCodeIssueCountValidation,
	errors.ErrCodeMissingSection,
}

// IsRejection reports whether err is a structural validation failure
func IsRejection(err error) bool {
	for _, code := range rejectionCodes {
		if errors.HasCode(err, code) {
			return true
		}
	}
	return false
}

// statusOf maps a document error to its stored status
func statusOf(err error) model.DocumentStatus {
	switch {
	case err == nil:
		return model.DocumentStatusCompleted
	case IsRejection(err):
		return model.DocumentStatusRejected
	default:
		return model.DocumentStatusFailed
	}
}

// ExitCode returns the CLI exit code for a run error. Any rejected document
// wins over other failures.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if IsRejection(err) {
		return errors.ExitCodeDocumentRejected
	}
	return errors.ExitCodeOf(err)
}
