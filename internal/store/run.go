package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/verustcode/docsynth/internal/model"
)

// RunStore defines operations for the Run model.
type RunStore interface {
	Create(run *model.Run) error
	GetByID(id string) (*model.Run, error)

	// Finish records the outcome and duration of a run
	Finish(id string, status model.RunStatus, ok, failed int, duration time.Duration, errMsg string) error

	// List returns the latest runs first
	List(limit int) ([]model.Run, error)
}

type runStore struct {
	db *gorm.DB
}

func newRunStore(db *gorm.DB) RunStore {
	return &runStore{db: db}
}

func (s *runStore) Create(run *model.Run) error {
	return s.db.Create(run).Error
}

func (s *runStore) GetByID(id string) (*model.Run, error) {
	var run model.Run
	if err := s.db.First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *runStore) Finish(id string, status model.RunStatus, ok, failed int, duration time.Duration, errMsg string) error {
	now := time.Now()
	result := s.db.Model(&model.Run{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":           status,
		"documents_ok":     ok,
		"documents_failed": failed,
		"completed_at":     &now,
		"duration":         duration.Milliseconds(),
		"error":            errMsg,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *runStore) List(limit int) ([]model.Run, error) {
	var runs []model.Run
	q := s.db.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
