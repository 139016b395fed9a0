package store

import (
	"gorm.io/gorm"

	"github.com/verustcode/docsynth/internal/model"
)

// DocumentStore defines operations for Document and Issue models.
type DocumentStore interface {
	// Create inserts the document together with its issues
	Create(doc *model.Document) error
	GetByID(id string) (*model.Document, error)
	ListByRun(runID string) ([]model.Document, error)
	ListByTool(toolName string) ([]model.Document, error)

	// CountByStatus returns document counts per status for a run
	CountByStatus(runID string) (map[model.DocumentStatus]int64, error)

	// CountIssues returns the number of issues recorded for a run
	CountIssues(runID string) (int64, error)

	// IssuesBySeverity returns issue counts per severity for a run
	IssuesBySeverity(runID string) (map[string]int64, error)
}

type documentStore struct {
	db *gorm.DB
}

func newDocumentStore(db *gorm.DB) DocumentStore {
	return &documentStore{db: db}
}

func (s *documentStore) Create(doc *model.Document) error {
	return s.db.Create(doc).Error
}

func (s *documentStore) GetByID(id string) (*model.Document, error) {
	var doc model.Document
	err := s.db.Preload("Issues", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *documentStore) ListByRun(runID string) ([]model.Document, error) {
	var docs []model.Document
	err := s.db.Where("run_id = ?", runID).Order("created_at ASC, id ASC").Find(&docs).Error
	return docs, err
}

func (s *documentStore) ListByTool(toolName string) ([]model.Document, error) {
	var docs []model.Document
	err := s.db.Where("tool_name = ?", toolName).Order("created_at ASC, id ASC").Find(&docs).Error
	return docs, err
}

func (s *documentStore) CountByStatus(runID string) (map[model.DocumentStatus]int64, error) {
	var rows []struct {
		Status model.DocumentStatus
		Count  int64
	}
	err := s.db.Model(&model.Document{}).
		Select("status, COUNT(*) AS count").
		Where("run_id = ?", runID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.DocumentStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (s *documentStore) CountIssues(runID string) (int64, error) {
	var count int64
	err := s.issuesOfRun(runID).Count(&count).Error
	return count, err
}

func (s *documentStore) IssuesBySeverity(runID string) (map[string]int64, error) {
	var rows []struct {
		Severity string
		Count    int64
	}
	err := s.issuesOfRun(runID).
		Select("issues.severity AS severity, COUNT(*) AS count").
		Group("issues.severity").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Severity] = r.Count
	}
	return counts, nil
}

func (s *documentStore) issuesOfRun(runID string) *gorm.DB {
	return s.db.Model(&model.Issue{}).
		Joins("JOIN documents ON documents.id = issues.document_id").
		Where("documents.run_id = ?", runID)
}
