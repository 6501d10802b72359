// Package database implements the repositories on gorm, against PostgreSQL
// in production and SQLite for local runs and tests.
package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/dom/snake-game-api/internal/config"
	"github.com/dom/snake-game-api/internal/repository"
	"github.com/dom/snake-game-api/internal/repository/database/migrations"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQueryThreshold is the duration above which a statement is logged as
// a warning.
const slowQueryThreshold = 200 * time.Millisecond

// NewConnection opens driver at databaseURL. gorm logs through log; every
// statement is logged when verbose is set, otherwise only slow statements
// and errors. Lookups that find no row are not logged.
func NewConnection(driver, databaseURL string, log *slog.Logger, verbose bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(databaseURL)
	case config.DriverSQLite:
		dialector = sqlite.Open(databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log, verbose),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	return db, nil
}

func newGormLogger(log *slog.Logger, verbose bool) logger.Interface {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}

	return logger.NewSlogLogger(log.With("component", "gorm"), logger.Config{
		SlowThreshold:             slowQueryThreshold,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      !verbose,
		LogLevel:                  level,
	})
}

// Migrate applies the embedded migrations for driver.
func Migrate(ctx context.Context, db *gorm.DB, driver string) ([]*goose.MigrationResult, error) {
	var dialect goose.Dialect
	switch driver {
	case config.DriverPostgres:
		dialect = goose.DialectPostgres
	case config.DriverSQLite:
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	fsys, err := fs.Sub(migrations.FS, driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return results, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return results, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:         NewUserRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
	}
}
