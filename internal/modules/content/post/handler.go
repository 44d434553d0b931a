package post

import (
	"errors"
	"net/http"

	"github.com/blogd/blogd/internal/middleware"
	"github.com/blogd/blogd/internal/pkg/pagination"
	"github.com/blogd/blogd/internal/pkg/response"
	"github.com/blogd/blogd/internal/pkg/validate"
	"github.com/gin-gonic/gin"
)

// Handler handles post HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts post, like and tag routes. writeMW runs after
// authMW on post creation only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, writeMW ...gin.HandlerFunc) {
	posts := rg.Group("/posts")

	posts.GET("", h.list)
	posts.GET("/slug/:slug", h.getBySlug)
	posts.GET("/:id", h.get)
	posts.GET("/:id/html", h.html)
	posts.GET("/:id/like", h.likeStatus)
	posts.POST("/:id/like", authMW, h.toggleLike)

	create := append([]gin.HandlerFunc{authMW}, writeMW...)
	posts.POST("", append(create, h.create)...)
	posts.PUT("/:id", authMW, h.update)
	posts.DELETE("/:id", authMW, h.delete)

	rg.GET("/tags", h.tags)
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	posts := admin.Group("/posts")
	posts.GET("", h.adminList)
	posts.PATCH("/:id", h.adminPatch)
	posts.DELETE("/:id", h.adminDelete)
}

func actorFrom(c *gin.Context) Actor {
	id := middleware.CurrentIdentity(c)
	if id == nil {
		return Actor{}
	}
	return Actor{UserID: id.UserID, IsAdmin: id.IsAdmin()}
}

// list GET /posts
func (h *Handler) list(c *gin.Context) {
	var lq ListQuery
	if err := c.ShouldBindQuery(&lq); err != nil {
		response.BadRequest(c, "Invalid query")
		return
	}

	var page *pagination.Query
	if pagination.Requested(c) {
		q := pagination.FromContext(c)
		page = &q
	}

	posts, pag, err := h.svc.List(c.Request.Context(), middleware.CurrentUserID(c), lq, page)
	if err != nil {
		response.InternalError(c, "Failed to fetch posts", err)
		return
	}
	if pag == nil {
		response.OK(c, toResponses(posts))
		return
	}
	response.Paged(c, toResponses(posts), *pag)
}

// get GET /posts/:id
func (h *Handler) get(c *gin.Context) {
	post, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to fetch post", err)
		return
	}
	if post == nil || !Visible(post, actorFrom(c)) {
		response.NotFound(c, "Post not found")
		return
	}
	response.OK(c, toResponse(post))
}

// getBySlug GET /posts/slug/:slug
func (h *Handler) getBySlug(c *gin.Context) {
	post, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.InternalError(c, "Failed to fetch post", err)
		return
	}
	if post == nil || !Visible(post, actorFrom(c)) {
		response.NotFound(c, "Post not found")
		return
	}
	response.OK(c, toResponse(post))
}

// html GET /posts/:id/html
func (h *Handler) html(c *gin.Context) {
	post, html, err := h.svc.RenderHTML(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to render post", err)
		return
	}
	if post == nil || !Visible(post, actorFrom(c)) {
		response.NotFound(c, "Post not found")
		return
	}
	response.OK(c, gin.H{"html": html})
}

// create POST /posts  [auth]
func (h *Handler) create(c *gin.Context) {
	var dto CreatePostDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		h.writeError(c, bindFailure(err), "Invalid request body")
		return
	}
	post, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), &dto)
	if err != nil {
		h.writeError(c, err, "Failed to create post")
		return
	}
	response.Created(c, toResponse(post))
}

// update PUT /posts/:id  [auth]
func (h *Handler) update(c *gin.Context) {
	var dto UpdatePostDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	post, err := h.svc.Update(c.Request.Context(), c.Param("id"), actorFrom(c), &dto)
	if err != nil {
		h.writeError(c, err, "Failed to update post")
		return
	}
	if post == nil {
		response.NotFound(c, "Post not found")
		return
	}
	response.OK(c, toResponse(post))
}

// delete DELETE /posts/:id  [auth]
func (h *Handler) delete(c *gin.Context) {
	found, err := h.svc.Delete(c.Request.Context(), c.Param("id"), actorFrom(c))
	if errors.Is(err, errForbidden) {
		response.Forbidden(c, "Not authorized to delete this post")
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to delete post", err)
		return
	}
	if !found {
		response.NotFound(c, "Post not found")
		return
	}
	response.OK(c, gin.H{"message": "Post deleted successfully"})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, errCategoryRequired):
		response.BadRequest(c, "Category is required")
	case errors.Is(err, errCategoryNotFound):
		response.BadRequest(c, "Category not found")
	case errors.Is(err, errTitleRequired):
		response.BadRequest(c, "Title is required")
	case errors.Is(err, errContentRequired):
		response.BadRequest(c, "Content is required")
	case errors.Is(err, errTagTooLong):
		response.BadRequest(c, "Tag is too long")
	case errors.Is(err, errForbidden):
		response.Forbidden(c, "Not authorized to edit this post")
	case errors.Is(err, errSlugConflict):
		response.Conflict(c, "Slug already exists")
	case errors.Is(err, errInvalidBody):
		response.BadRequest(c, "Invalid request body")
	default:
		response.InternalError(c, fallback, err)
	}
}

// bindFailure maps a binding error onto the service's validation errors.
func bindFailure(err error) error {
	field, _, ok := validate.FirstError(err)
	if !ok {
		return errInvalidBody
	}
	switch field {
	case "Category":
		return errCategoryRequired
	case "Title":
		return errTitleRequired
	case "Content":
		return errContentRequired
	}
	return errInvalidBody
}

// toggleLike POST /posts/:id/like  [auth]
func (h *Handler) toggleLike(c *gin.Context) {
	liked, count, err := h.svc.ToggleLike(c.Request.Context(), c.Param("id"), actorFrom(c))
	if errors.Is(err, errPostNotFound) {
		response.NotFound(c, "Post not found")
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to toggle like", err)
		return
	}
	response.OK(c, likeResponse{Liked: liked, LikesCount: count})
}

// likeStatus GET /posts/:id/like
func (h *Handler) likeStatus(c *gin.Context) {
	liked, count, err := h.svc.LikeStatus(c.Request.Context(), c.Param("id"), actorFrom(c))
	if errors.Is(err, errPostNotFound) {
		response.NotFound(c, "Post not found")
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to fetch like status", err)
		return
	}
	response.OK(c, likeResponse{Liked: liked, LikesCount: count})
}

// tags GET /tags
func (h *Handler) tags(c *gin.Context) {
	rows, err := h.svc.ListTags(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to fetch tags", err)
		return
	}
	response.OK(c, rows)
}

// adminList GET /admin/posts
func (h *Handler) adminList(c *gin.Context) {
	posts, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to fetch posts", err)
		return
	}
	response.OK(c, toResponses(posts))
}

// adminPatch PATCH /admin/posts/:id
func (h *Handler) adminPatch(c *gin.Context) {
	var dto AdminPatchDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	post, err := h.svc.AdminPatch(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		h.writeError(c, err, "Failed to update post")
		return
	}
	if post == nil {
		response.NotFound(c, "Post not found")
		return
	}
	response.Message(c, http.StatusOK, "Post updated successfully", gin.H{"post": toResponse(post)})
}

// adminDelete DELETE /admin/posts/:id
func (h *Handler) adminDelete(c *gin.Context) {
	found, err := h.svc.Delete(c.Request.Context(), c.Param("id"), Actor{IsAdmin: true})
	if err != nil {
		response.InternalError(c, "Failed to delete post", err)
		return
	}
	if !found {
		response.NotFound(c, "Post not found")
		return
	}
	response.OK(c, gin.H{"message": "Post deleted successfully"})
}
