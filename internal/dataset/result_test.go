package dataset

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"

	"github.com/verustcode/docsynth/internal/model"
	"github.com/verustcode/docsynth/pkg/errors"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want model.DocumentStatus
	}{
		{"success", nil, model.DocumentStatusCompleted},
		{"toc", errors.ErrTOCValidation("empty id"), model.DocumentStatusRejected},
		{"html", fmt.Errorf("doc: %w", errors.ErrHTMLValidation("no body")), model.DocumentStatusRejected},
		{"issue count", errors.New(errors.ErrCodeIssueCountValidation, "too few"), model.DocumentStatusRejected},
		{"missing section", errors.New(errors.ErrCodeMissingSection, "gone"), model.DocumentStatusRejected},
		{"injection", errors.New(errors.ErrCodeIssueInjection, "gave up"), model.DocumentStatusFailed},
		{"generation", errors.New(errors.ErrCodeGeneration, "timeout"), model.DocumentStatusFailed},
		{"plain", fmt.Errorf("disk full"), model.DocumentStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"failure", errors.New(errors.ErrCodeGeneration, "x"), errors.ExitCodeFailure},
		{"config", errors.New(errors.ErrCodeConfigInvalid, "x"), errors.ExitCodeConfigValidation},
		{"rejection", errors.ErrTOCValidation("x"), errors.ExitCodeDocumentRejected},
		{"rejection wins", multierr.Combine(
			errors.New(errors.ErrCodeGeneration, "x"),
			errors.ErrHTMLValidation("y"),
		), errors.ExitCodeDocumentRejected},
		{"cancelled", context.Canceled, errors.ExitCodeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestSummary_Add(t *testing.T) {
	s := &Summary{}
	s.add(&DocumentResult{Status: model.DocumentStatusCompleted, Issues: 2})
	s.add(&DocumentResult{Status: model.DocumentStatusCompleted, Issues: 3})
	s.add(&DocumentResult{Status: model.DocumentStatusRejected, Issues: 1})
	s.add(&DocumentResult{Status: model.DocumentStatusFailed})

	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 1, s.Rejected)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 4, s.Documents())
	assert.Equal(t, 5, s.Issues, "issues of rejected documents are not counted")
}
