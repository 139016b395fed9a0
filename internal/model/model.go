// Package model defines the dataset index models.
// All models use GORM for ORM operations with SQLite database.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// StringArray is a custom type for storing string arrays in SQLite
type StringArray []string

// Value implements driver.Valuer interface
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	return string(data), err
}

// Scan implements sql.Scanner interface
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	return json.Unmarshal(bytes, s)
}

// RunStatus represents the status of a generation run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one invocation of the generate command
type Run struct {
	ID        string    `gorm:"primarykey;size:20" json:"id"` // xid
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Seed     uint64    `json:"seed"`
	Provider string    `gorm:"size:50" json:"provider"`
	DataDir  string    `gorm:"size:1024" json:"data_dir"`
	Status   RunStatus `gorm:"size:20;not null;default:running;index" json:"status"`

	ToolsCount      int `gorm:"default:0" json:"tools_count"`
	DocumentsOK     int `gorm:"default:0" json:"documents_ok"`
	DocumentsFailed int `gorm:"default:0" json:"documents_failed"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Duration    int64      `json:"duration,omitempty"` // milliseconds
	Error       string     `gorm:"type:text" json:"error,omitempty"`

	Documents []Document `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

// TableName specifies the table name for Run
func (Run) TableName() string {
	return "runs"
}

// DocumentStatus represents the outcome of one document
type DocumentStatus string

const (
	// DocumentStatusCompleted means the document passed validation and was persisted
	DocumentStatusCompleted DocumentStatus = "completed"
	// DocumentStatusRejected means a structural validator rejected it
	DocumentStatusRejected DocumentStatus = "rejected"
	// DocumentStatusFailed means generation failed
	DocumentStatusFailed DocumentStatus = "failed"
)

// Document is one generated (or attempted) document
type Document struct {
	ID        string    `gorm:"primarykey;size:20" json:"id"` // xid
	CreatedAt time.Time `json:"created_at"`

	RunID        string         `gorm:"size:20;not null;index" json:"run_id"`
	ToolName     string         `gorm:"size:255;not null;index" json:"tool_name"`
	DocumentType string         `gorm:"size:255;not null;index" json:"document_type"`
	TOCID        string         `gorm:"size:255" json:"toc_id"`
	Title        string         `gorm:"size:512" json:"title"`
	Status       DocumentStatus `gorm:"size:20;not null;index" json:"status"`

	SectionCount    int         `gorm:"default:0" json:"section_count"`
	IssueCount      int         `gorm:"default:0" json:"issue_count"`
	PlannedSections StringArray `gorm:"type:text" json:"planned_sections"`

	HTMLPath     string `gorm:"size:1024" json:"html_path,omitempty"`
	MetadataPath string `gorm:"size:1024" json:"metadata_path,omitempty"`
	ErrorCode    string `gorm:"size:10" json:"error_code,omitempty"`
	Error        string `gorm:"type:text" json:"error,omitempty"`
	Duration     int64  `json:"duration,omitempty"` // milliseconds

	Issues []Issue `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"issues,omitempty"`
}

// TableName specifies the table name for Document
func (Document) TableName() string {
	return "documents"
}

// Issue is one injected issue confirmed in a persisted document
type Issue struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	DocumentID   string `gorm:"size:20;not null;index" json:"document_id"`
	SectionID    string `gorm:"size:255;not null" json:"section_id"`
	SectionTitle string `gorm:"size:512" json:"section_title"`
	Description  string `gorm:"type:text" json:"description"`
	Severity     string `gorm:"size:20;index" json:"severity,omitempty"`
}

// TableName specifies the table name for Issue
func (Issue) TableName() string {
	return "issues"
}

// AllModels returns every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&Run{},
		&Document{},
		&Issue{},
	}
}
