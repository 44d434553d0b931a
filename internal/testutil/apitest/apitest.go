// Package apitest drives gin handlers end to end in tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blogd/blogd/internal/middleware"
	"github.com/blogd/blogd/internal/models"
	sessionpkg "github.com/blogd/blogd/internal/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewRouter returns an engine whose /api group resolves identities like production.
func NewRouter(db *gorm.DB) (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", middleware.OptionalAuth(db))
	return r, api
}

// Token signs a live session for u.
func Token(t *testing.T, db *gorm.DB, u *models.User) string {
	t.Helper()
	issued, err := sessionpkg.Issue(db, u, "127.0.0.1", "apitest", time.Hour)
	require.NoError(t, err)
	return issued.Token
}

// Do sends body as JSON (nil for none) with an optional bearer token.
func Do(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, _ := json.Marshal(b)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// JSON decodes the recorder body into a map.
func JSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// JSONArray decodes a top-level array body.
func JSONArray(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
