package database

import (
	"fmt"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DataflowSolutions/Oncore-sub001/internal/advancing"
	"github.com/DataflowSolutions/Oncore-sub001/internal/logistics"
	"github.com/DataflowSolutions/Oncore-sub001/internal/schedule"
	"github.com/DataflowSolutions/Oncore-sub001/internal/shows"
)

// OpenSQLite establishes a SQLite connection and performs schema migrations.
func OpenSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&shows.Show{},
		&schedule.Item{},
		&logistics.Flight{},
		&logistics.Lodging{},
		&logistics.Catering{},
		&advancing.Session{},
		&advancing.Field{},
		&migrationRecord{},
	); err != nil {
		return nil, err
	}

	if err := applyMigrations(db, logger); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized", zap.String("path", path))
	}

	return db, nil
}
