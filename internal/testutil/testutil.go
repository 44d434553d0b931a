// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/blogd/blogd/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every model migrated.
// A single connection keeps ":memory:" from splitting into separate databases.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Discard,
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// CreateUser inserts a user whose password is "password".
func CreateUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{Email: email, Password: string(hash), Name: email, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Slug: slug, IsActive: true}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreatePost(t *testing.T, db *gorm.DB, author *models.User, category *models.Category, title, slug string) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:      title,
		Slug:       slug,
		Content:    "# " + title,
		Published:  true,
		AuthorID:   author.ID,
		CategoryID: category.ID,
	}
	require.NoError(t, db.Omit("Tags").Create(p).Error)
	return p
}
