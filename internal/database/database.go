package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/blogd/blogd/internal/config"
	"github.com/blogd/blogd/internal/models"
	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNoDSN = errors.New("database connection string is empty")

var (
	mu     sync.Mutex
	cached *gorm.DB
)

// Connect returns the process-wide database handle, opening and migrating
// it on first use. Later calls return the same handle without reconnecting.
func Connect(cfg *config.AppConfig) (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if cached != nil {
		return cached, nil
	}

	db, err := Open(cfg.Database, resolveLogLevel(cfg))
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	cached = db
	return db, nil
}

// Close releases the cached handle, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if cached == nil {
		return nil
	}
	sqlDB, err := cached.DB()
	cached = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Open dials the configured driver without touching the cache.
func Open(cfg config.DatabaseConfig, level logger.LogLevel) (*gorm.DB, error) {
	dsn := cfg.DSNValue()
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrNoDSN
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		dialector = mysql.New(mysql.Config{
			DSN:               dsn,
			DefaultStringSize: 191,
		})
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(level),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve sql db: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db, nil
}

// Migrate creates or alters every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// Ping checks that the connection is alive.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldrv.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func resolveLogLevel(cfg *config.AppConfig) logger.LogLevel {
	if strings.EqualFold(cfg.Log.Level, "debug") {
		return logger.Info
	}
	if cfg.IsProduction() {
		return logger.Error
	}
	return logger.Warn
}
