package stores

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MrEthical07/fittrack/session"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dsnParams applies per connection, unlike the PRAGMAs issued after open.
const dsnParams = "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"

// Open opens the SQLite database at path, creating its directory when
// needed.  verbose turns on gorm's SQL logging.
func Open(path string, verbose bool) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	gormLogger := logger.Default
	if !verbose {
		gormLogger = gormLogger.LogMode(logger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(path+dsnParams), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
	_, _ = sqlDB.Exec("PRAGMA synchronous = NORMAL;")
	_, _ = sqlDB.Exec("PRAGMA foreign_keys = ON;")

	return db, nil
}

// Close closes the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	return sqlDB.Close()
}

// Migrate creates or updates every table, sessions included.  Users go
// first since the other tables reference them.
func Migrate(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).AutoMigrate(
		&User{},
		&Food{},
		&Exercise{},
		&WeightEntry{},
		&Workout{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err = session.NewStore(db).Migrate(ctx); err != nil {
		return fmt.Errorf("migrate sessions: %w", err)
	}

	return nil
}
