package comment

import (
	"net/http"
	"strings"
	"testing"

	"github.com/blogd/blogd/internal/middleware"
	"github.com/blogd/blogd/internal/models"
	"github.com/blogd/blogd/internal/testutil"
	"github.com/blogd/blogd/internal/testutil/apitest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.NewDB(t)
	r, api := apitest.NewRouter(db)
	h := NewHandler(NewService(db))
	h.RegisterRoutes(api, middleware.Auth())
	h.RegisterAdminRoutes(api.Group("/admin", middleware.RequireAdmin()))
	return db, r
}

func createComment(t *testing.T, r *gin.Engine, token, postID, content string) map[string]any {
	t.Helper()
	w := apitest.Do(r, http.MethodPost, "/api/comments", gin.H{"content": content, "postId": postID}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return apitest.JSON(t, w)["comment"].(map[string]any)
}

func TestCreateComment(t *testing.T) {
	db, r := setup(t)
	u := testutil.CreateUser(t, db, "a@example.com", models.RoleReader)
	token := apitest.Token(t, db, u)

	w := apitest.Do(r, http.MethodPost, "/api/comments", gin.H{"content": "hi", "postId": "p1"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"User not authenticated"}`, w.Body.String())

	w = apitest.Do(r, http.MethodPost, "/api/comments", gin.H{"content": "   ", "postId": "p1"}, token)
	assert.JSONEq(t, `{"error":"Content and postId are required"}`, w.Body.String())

	w = apitest.Do(r, http.MethodPost, "/api/comments", gin.H{"content": "hi"}, token)
	assert.JSONEq(t, `{"error":"Content and postId are required"}`, w.Body.String())

	w = apitest.Do(r, http.MethodPost, "/api/comments", gin.H{"content": strings.Repeat("x", 1001), "postId": "p1"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	comment := createComment(t, r, token, "p1", "  first!  ")
	assert.Equal(t, "first!", comment["content"])
	assert.Equal(t, "p1", comment["postId"])
	assert.Equal(t, false, comment["isEdited"])
	author := comment["author"].(map[string]any)
	assert.Equal(t, u.ID, author["id"])
	assert.Equal(t, "a@example.com", author["email"])
}

func TestAuthorIsASnapshot(t *testing.T) {
	db, r := setup(t)
	u := testutil.CreateUser(t, db, "snap@example.com", models.RoleReader)
	comment := createComment(t, r, apitest.Token(t, db, u), "p1", "hello")

	require.NoError(t, db.Model(u).Update("name", "Renamed").Error)

	w := apitest.Do(r, http.MethodGet, "/api/comments/"+comment["id"].(string), nil, "")
	got := apitest.JSON(t, w)["comment"].(map[string]any)
	assert.Equal(t, "snap@example.com", got["author"].(map[string]any)["name"])
}

func TestListByPost(t *testing.T) {
	db, r := setup(t)
	u := testutil.CreateUser(t, db, "a@example.com", models.RoleReader)
	token := apitest.Token(t, db, u)
	createComment(t, r, token, "p1", "one")
	createComment(t, r, token, "p1", "two")
	createComment(t, r, token, "p2", "elsewhere")

	w := apitest.Do(r, http.MethodGet, "/api/comments", nil, "")
	assert.JSONEq(t, `{"error":"postId is required"}`, w.Body.String())

	w = apitest.Do(r, http.MethodGet, "/api/comments?postId=p1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, apitest.JSON(t, w)["comments"], 2)

	w = apitest.Do(r, http.MethodGet, "/api/comments?postId=none", nil, "")
	assert.JSONEq(t, `{"comments":[]}`, w.Body.String())
}

func TestOwnership(t *testing.T) {
	db, r := setup(t)
	a := testutil.CreateUser(t, db, "a@example.com", models.RoleReader)
	b := testutil.CreateUser(t, db, "b@example.com", models.RoleReader)
	admin := testutil.CreateUser(t, db, "admin@example.com", models.RoleAdmin)
	tokenA := apitest.Token(t, db, a)
	id := createComment(t, r, tokenA, "p1", "mine")["id"].(string)

	for _, token := range []string{apitest.Token(t, db, b), apitest.Token(t, db, admin)} {
		w := apitest.Do(r, http.MethodPut, "/api/comments/"+id, gin.H{"content": "yours"}, token)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"Not authorized to edit this comment"}`, w.Body.String())

		w = apitest.Do(r, http.MethodDelete, "/api/comments/"+id, nil, token)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"Not authorized to delete this comment"}`, w.Body.String())
	}

	w := apitest.Do(r, http.MethodPut, "/api/comments/"+id, gin.H{"content": ""}, tokenA)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = apitest.Do(r, http.MethodPut, "/api/comments/missing", gin.H{"content": "x"}, tokenA)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = apitest.Do(r, http.MethodPut, "/api/comments/"+id, gin.H{"content": "edited"}, tokenA)
	require.Equal(t, http.StatusOK, w.Code)
	got := apitest.JSON(t, w)["comment"].(map[string]any)
	assert.Equal(t, "edited", got["content"])
	assert.Equal(t, true, got["isEdited"])

	w = apitest.Do(r, http.MethodDelete, "/api/comments/"+id, nil, tokenA)
	assert.JSONEq(t, `{"message":"Comment deleted successfully"}`, w.Body.String())

	w = apitest.Do(r, http.MethodGet, "/api/comments/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminComments(t *testing.T) {
	db, r := setup(t)
	writer := testutil.CreateUser(t, db, "w@example.com", models.RoleWriter)
	admin := testutil.CreateUser(t, db, "admin@example.com", models.RoleAdmin)
	cat := testutil.CreateCategory(t, db, "Go", "go")
	post := testutil.CreatePost(t, db, writer, cat, "Live", "live")

	writerToken := apitest.Token(t, db, writer)
	live := createComment(t, r, writerToken, post.ID, "on a live post")["id"].(string)
	createComment(t, r, writerToken, "gone", "orphan")
	token := apitest.Token(t, db, admin)

	w := apitest.Do(r, http.MethodGet, "/api/admin/comments", nil, writerToken)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	w = apitest.Do(r, http.MethodGet, "/api/admin/comments", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	comments := apitest.JSON(t, w)["comments"].([]any)
	require.Len(t, comments, 2)
	titles := map[string]string{}
	for _, raw := range comments {
		c := raw.(map[string]any)
		titles[c["content"].(string)] = c["post"].(map[string]any)["title"].(string)
	}
	assert.Equal(t, "Live", titles["on a live post"])
	assert.Equal(t, "[DELETED POST]", titles["orphan"])

	w = apitest.Do(r, http.MethodDelete, "/api/admin/comments", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = apitest.Do(r, http.MethodDelete, "/api/admin/comments?id=missing", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = apitest.Do(r, http.MethodDelete, "/api/admin/comments?id="+live, nil, token)
	assert.JSONEq(t, `{"message":"Comment deleted successfully"}`, w.Body.String())
}

func TestContentLengthCountsCharacters(t *testing.T) {
	db, r := setup(t)
	u := testutil.CreateUser(t, db, "a@example.com", models.RoleReader)
	token := apitest.Token(t, db, u)

	id := createComment(t, r, token, "p1", strings.Repeat("é", 1000))["id"].(string)

	w := apitest.Do(r, http.MethodPost, "/api/comments", gin.H{"content": strings.Repeat("é", 1001), "postId": "p1"}, token)
	assert.JSONEq(t, `{"error":"Comment must be at most 1000 characters"}`, w.Body.String())

	w = apitest.Do(r, http.MethodPut, "/api/comments/"+id, gin.H{"content": strings.Repeat("x", 1001)}, token)
	assert.JSONEq(t, `{"error":"Comment must be at most 1000 characters"}`, w.Body.String())

	w = apitest.Do(r, http.MethodPut, "/api/comments/"+id, gin.H{}, token)
	assert.JSONEq(t, `{"error":"Content is required"}`, w.Body.String())
}
