package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/blogd/blogd/internal/config"
	"github.com/blogd/blogd/internal/models"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sqliteConfig(t *testing.T) *config.AppConfig {
	cfg := config.Default()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.DSN = filepath.Join(t.TempDir(), "blogd.db")
	return &cfg
}

func TestConnectIsCached(t *testing.T) {
	t.Cleanup(func() { _ = Close() })
	cfg := sqliteConfig(t)

	first, err := Connect(cfg)
	require.NoError(t, err)
	second, err := Connect(cfg)
	require.NoError(t, err)
	assert.Same(t, first, second)

	assert.True(t, first.Migrator().HasTable(&models.Post{}))
	assert.True(t, first.Migrator().HasTable(&models.Like{}))
	require.NoError(t, Ping(context.Background(), first))
}

func TestCloseAllowsReconnect(t *testing.T) {
	t.Cleanup(func() { _ = Close() })
	cfg := sqliteConfig(t)

	first, err := Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, Close())

	second, err := Connect(cfg)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestPingUsesDriver(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger:               logger.Discard,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	mock.ExpectPing()
	require.NoError(t, Ping(context.Background(), db))

	mock.ExpectPing().WillReturnError(errors.New("gone away"))
	assert.Error(t, Ping(context.Background(), db))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(fmt.Errorf("create: %w", &mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry"})))
	assert.False(t, IsDuplicateKey(&mysqldrv.MySQLError{Number: 1146}))
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, IsDuplicateKey(errors.New("connection refused")))
}
