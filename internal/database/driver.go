package database

import "gorm.io/gorm"

// Driver 定义数据库驱动接口
// Driver abstracts the database backend. Only SQLite is implemented.
type Driver interface {
	// Name returns the driver name (e.g., "sqlite")
	Name() string

	// Open returns a GORM dialector for dsn
	Open(dsn string) (gorm.Dialector, error)

	// PreMigrationConfig applies settings before migration (connection pool, WAL mode, etc.)
	// Foreign key constraints must NOT be enabled here.
	PreMigrationConfig(db *gorm.DB) error

	// PostMigrationConfig applies settings after migration (foreign key constraints, etc.)
	PostMigrationConfig(db *gorm.DB) error
}
