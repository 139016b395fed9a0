// Package store provides the data access layer for the dataset index.
// It decouples the pipeline from GORM specifics.
package store

import "gorm.io/gorm"

// Store aggregates all data store interfaces.
type Store interface {
	Run() RunStore
	Document() DocumentStore

	// DB returns the underlying database connection for advanced operations.
	DB() *gorm.DB

	// Transaction executes operations within a database transaction.
	Transaction(fn func(Store) error) error
}

// gormStore implements Store interface using GORM.
type gormStore struct {
	db            *gorm.DB
	runStore      RunStore
	documentStore DocumentStore
}

// NewStore creates a new Store instance with GORM backend.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:            db,
		runStore:      newRunStore(db),
		documentStore: newDocumentStore(db),
	}
}

func (s *gormStore) Run() RunStore {
	return s.runStore
}

func (s *gormStore) Document() DocumentStore {
	return s.documentStore
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
