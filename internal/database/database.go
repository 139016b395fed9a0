// Package database opens the dataset index. It uses GORM with SQLite for
// embedded storage, behind a driver abstraction.
package database

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/verustcode/docsynth/internal/model"
	"github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/logger"
)

// Open creates the database file if needed, connects and runs migrations.
// The caller owns the returned handle and must Close it.
func Open(dbPath string) (*gorm.DB, error) {
	return OpenWithDriver(&SQLiteDriver{}, dbPath)
}

// OpenWithDriver is Open with an explicit driver
func OpenWithDriver(driver Driver, dbPath string) (*gorm.DB, error) {
	logger.Info("Opening dataset index", zap.String("path", dbPath), zap.String("driver", driver.Name()))

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("Failed to create database directory", zap.Error(err), zap.String("dir", dir))
		return nil, errors.Wrap(errors.ErrCodeDBConnection, "failed to create database directory", err)
	}

	dialector, err := driver.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))
		return nil, errors.Wrap(errors.ErrCodeDBConnection, "failed to open database", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return nil, errors.Wrap(errors.ErrCodeDBConnection, "failed to connect to database", err)
	}

	// Pool and journal settings; foreign keys stay off until migrations ran
	if err := driver.PreMigrationConfig(db); err != nil {
		Close(db)
		return nil, errors.Wrap(errors.ErrCodeDBConnection, "failed to apply pre-migration config", err)
	}

	if err := migrate(db); err != nil {
		Close(db)
		return nil, err
	}

	if err := driver.PostMigrationConfig(db); err != nil {
		Close(db)
		return nil, errors.Wrap(errors.ErrCodeDBConnection, "failed to apply post-migration config", err)
	}

	logger.Debug("Dataset index ready", zap.String("path", dbPath))
	return db, nil
}

// migrate runs auto-migration for all models
func migrate(db *gorm.DB) error {
	models := model.AllModels()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run database migrations", zap.Error(err))
		return errors.Wrap(errors.ErrCodeDBMigration, "failed to run database migrations", err)
	}
	logger.Debug("Database migrations completed", zap.Int("models", len(models)))
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck performs a simple health check on the database
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to get database connection", err)
	}
	return sqlDB.Ping()
}
