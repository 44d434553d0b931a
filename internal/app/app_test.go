package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blogd/blogd/internal/config"
	"github.com/blogd/blogd/internal/modules/storage/backup"
	pkgcron "github.com/blogd/blogd/internal/pkg/cron"
	"github.com/blogd/blogd/internal/testutil"
	"github.com/blogd/blogd/internal/testutil/apitest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMatchOriginPattern(t *testing.T) {
	assert.True(t, matchOriginPattern("blog.example.com", "blog.example.com"))
	assert.True(t, matchOriginPattern("*.example.com", "admin.example.com"))
	assert.False(t, matchOriginPattern("*.example.com", "example.org"))
	assert.True(t, matchOriginPattern("localhost:*", "localhost:5173"))
	assert.False(t, matchOriginPattern("localhost:*", "127.0.0.1:5173"))
	assert.Equal(t, "blog.example.com:8443", extractOriginHost("https://blog.example.com:8443"))
}

func newTestRouter(t *testing.T, mutate func(*config.AppConfig)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Paths.Logs = t.TempDir()
	if mutate != nil {
		mutate(&cfg)
	}
	db := testutil.NewDB(t)
	backupSvc, err := backup.NewService(db, t.TempDir(), cfg.Backup)
	require.NoError(t, err)
	return newRouter(&cfg, zap.NewNop(), db, nil, pkgcron.New(nil), backupSvc)
}

func TestRouterWiring(t *testing.T) {
	r := newTestRouter(t, nil)

	w := apitest.Do(r, http.MethodGet, "/api/test-db", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = apitest.Do(r, http.MethodGet, "/api/categories", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = apitest.Do(r, http.MethodGet, "/api/admin/stats", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = apitest.Do(r, http.MethodPost, "/api/comments", map[string]string{"content": "x", "postId": "p"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"User not authenticated"}`, w.Body.String())

	w = apitest.Do(r, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = apitest.Do(r, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "blogd_http_requests_total")
}

func TestMetricsDisabled(t *testing.T) {
	r := newTestRouter(t, func(cfg *config.AppConfig) { cfg.Metrics.Enable = false })
	w := apitest.Do(r, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSRestrictsOriginsInProduction(t *testing.T) {
	r := newTestRouter(t, func(cfg *config.AppConfig) {
		cfg.Env = "production"
		cfg.AllowedOrigins = []string{"*.example.com"}
	})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://admin.example.com")
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("https://evil.test")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRegisterCronJobs(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := config.Default()
	backupSvc, err := backup.NewService(db, t.TempDir(), cfg.Backup)
	require.NoError(t, err)

	names := func(s *pkgcron.Scheduler) []string {
		out := []string{}
		for _, item := range s.List() {
			out = append(out, item.Name)
		}
		return out
	}

	sched := pkgcron.New(nil)
	registerCronJobs(sched, db, &cfg, backupSvc, zap.NewNop())
	assert.ElementsMatch(t, []string{"reconcileLikeCounts", "reconcileCategoryCounts", "purgeSessions"}, names(sched))

	cfg.Backup.Enable = true
	cfg.Backup.Interval = time.Hour
	sched = pkgcron.New(nil)
	registerCronJobs(sched, db, &cfg, backupSvc, zap.NewNop())
	assert.Contains(t, names(sched), "backupDatabase")

	require.NoError(t, sched.RunNow(context.Background(), "purgeSessions"))
	require.NoError(t, sched.RunNow(context.Background(), "reconcileLikeCounts"))
}
