package db

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

// NewSQLite opens a SQLite database for local runs and tests. SQLite has no
// row locks, so the pool is pinned to one connection to serialize writers.
func NewSQLite(log *logger.Logger, path string) (*gorm.DB, error) {
	log = log.With("service", "SQLiteService")
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.NewGormAdapter(log, gormLogger.Warn, time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = OFF").Error; err != nil {
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	log.Info("opened sqlite", "path", path)
	return db, nil
}
