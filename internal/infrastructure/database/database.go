package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bravo68web/confdash/internal/config"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/pkg/logger"
)

const (
	slowQuery       = 200 * time.Millisecond
	connMaxIdleTime = 10 * time.Minute
)

// Database holds the gorm handle backing the persistent session store
type Database struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewDatabase opens and pings the configured postgres or sqlite database
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	log := logger.Get().WithFields(logger.Component("database"), logger.String("driver", cfg.Driver))

	dialector, err := dialect(cfg)
	if err != nil {
		return nil, err
	}

	sqlLog, err := zap.NewStdLogAt(log.Logger, zapcore.WarnLevel)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(sqlLog, gormlogger.Config{
			SlowThreshold:             slowQuery,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		PrepareStmt: !cfg.IsSQLite(),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	d := &Database{db: db, log: log}
	if err := d.configurePool(cfg); err != nil {
		return nil, err
	}
	if err := d.Ping(context.Background()); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
	}

	log.Info("Session database ready")
	return d, nil
}

func dialect(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	if !cfg.IsSQLite() {
		return postgres.Open(cfg.DSN()), nil
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return sqlite.Open(cfg.DSN()), nil
}

// configurePool applies the pool limits. SQLite gets a single connection so
// writes never contend for the file lock.
func (d *Database) configurePool(cfg *config.DatabaseConfig) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get sql handle: %w", err)
	}

	maxOpen := cmpOr(cfg.MaxOpenConns, 20)
	if cfg.IsSQLite() {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(cmpOr(cfg.MaxIdleConns, 5))
	sqlDB.SetConnMaxLifetime(cmpOr(cfg.ConnMaxLifetime, 30*time.Minute))
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
	return nil
}

func cmpOr[T int | time.Duration](v, fallback T) T {
	if v > 0 {
		return v
	}
	return fallback
}

// Migrate creates or updates the sessions table
func (d *Database) Migrate() error {
	if err := d.db.AutoMigrate(&models.Session{}); err != nil {
		return fmt.Errorf("migrate sessions table: %w", err)
	}
	return nil
}

// DB returns the gorm handle
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Ping checks the connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		d.log.Warn("Failed to close session database", logger.Error(err))
		return err
	}
	return nil
}

// Stats reports pool usage for the health endpoint
func (d *Database) Stats() map[string]any {
	sqlDB, err := d.db.DB()
	if err != nil {
		return nil
	}
	s := sqlDB.Stats()
	return map[string]any{
		"max_open_connections": s.MaxOpenConnections,
		"open_connections":     s.OpenConnections,
		"in_use":               s.InUse,
		"idle":                 s.Idle,
		"wait_count":           s.WaitCount,
	}
}
