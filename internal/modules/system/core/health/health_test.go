package health

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/blogd/blogd/internal/middleware"
	"github.com/blogd/blogd/internal/models"
	"github.com/blogd/blogd/internal/pkg/cron"
	"github.com/blogd/blogd/internal/testutil"
	"github.com/blogd/blogd/internal/testutil/apitest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *gin.Engine, string, string) {
	t.Helper()
	db := testutil.NewDB(t)
	r, api := apitest.NewRouter(db)

	sched := cron.New(nil)
	sched.Register(cron.Job{Name: "ok", Interval: 1 << 40, Fn: func(context.Context) error { return nil }})
	sched.Register(cron.Job{Name: "bad", Interval: 1 << 40, Fn: func(context.Context) error { return errors.New("boom") }})

	logDir := t.TempDir()
	RegisterRoutes(api, api.Group("/admin", middleware.RequireAdmin()), db, sched, logDir)

	admin := testutil.CreateUser(t, db, "admin@example.com", models.RoleAdmin)
	return db, r, apitest.Token(t, db, admin), logDir
}

func TestTestDB(t *testing.T) {
	db, r, _, _ := setup(t)

	w := apitest.Do(r, http.MethodGet, "/api/test-db", nil, "")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = apitest.Do(r, http.MethodGet, "/api/test-db", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Database connection failed"}`, w.Body.String())
}

func TestCronEndpoints(t *testing.T) {
	_, r, token, _ := setup(t)

	w := apitest.Do(r, http.MethodGet, "/api/admin/cron", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = apitest.Do(r, http.MethodGet, "/api/admin/cron", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	jobs := apitest.JSONArray(t, w)
	require.Len(t, jobs, 2)
	assert.Equal(t, "bad", jobs[0]["name"])

	w = apitest.Do(r, http.MethodPost, "/api/admin/cron/ok/run", nil, token)
	assert.JSONEq(t, `{"message":"Job completed"}`, w.Body.String())

	w = apitest.Do(r, http.MethodPost, "/api/admin/cron/bad/run", nil, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = apitest.Do(r, http.MethodPost, "/api/admin/cron/nope/run", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogEndpoints(t *testing.T) {
	_, r, token, dir := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blogd_2020-01-01.log"), []byte("old line\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	w := apitest.Do(r, http.MethodGet, "/api/admin/logs", nil, token)
	items := apitest.JSONArray(t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "blogd_2020-01-01.log", items[0]["filename"])
	assert.Equal(t, "9 B", items[0]["size"])

	w = apitest.Do(r, http.MethodGet, "/api/admin/logs/blogd_2020-01-01.log", nil, token)
	assert.Equal(t, "old line\n", w.Body.String())

	w = apitest.Do(r, http.MethodGet, "/api/admin/logs/notes.txt", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = apitest.Do(r, http.MethodDelete, "/api/admin/logs/blogd_2020-01-01.log", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err := os.Stat(filepath.Join(dir, "blogd_2020-01-01.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestFormatByteSize(t *testing.T) {
	assert.Equal(t, "512 B", formatByteSize(512))
	assert.Equal(t, "2.00 KB", formatByteSize(2048))
	assert.Equal(t, "1.50 MB", formatByteSize(3<<19))
}
