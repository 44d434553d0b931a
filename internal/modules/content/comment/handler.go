package comment

import (
	"errors"
	"strings"

	"github.com/blogd/blogd/internal/middleware"
	"github.com/blogd/blogd/internal/models"
	"github.com/blogd/blogd/internal/pkg/response"
	"github.com/blogd/blogd/internal/pkg/validate"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public comment API. writeMW runs after authMW
// on comment creation only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, writeMW ...gin.HandlerFunc) {
	g := rg.Group("/comments")

	g.GET("", h.list)
	g.GET("/:id", h.get)

	create := append([]gin.HandlerFunc{authMW}, writeMW...)
	g.POST("", append(create, h.create)...)
	g.PUT("/:id", authMW, h.update)
	g.DELETE("/:id", authMW, h.delete)
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/comments", h.adminList)
	admin.DELETE("/comments", h.adminDelete)
}

func (h *Handler) list(c *gin.Context) {
	postID := strings.TrimSpace(c.Query("postId"))
	if postID == "" {
		response.BadRequest(c, "postId is required")
		return
	}
	comments, err := h.svc.ListByPost(c.Request.Context(), postID)
	if err != nil {
		response.InternalError(c, "Failed to fetch comments", err)
		return
	}
	response.OK(c, gin.H{"comments": comments})
}

func (h *Handler) get(c *gin.Context) {
	comment, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to fetch comment", err)
		return
	}
	if comment == nil {
		response.NotFound(c, "Comment not found")
		return
	}
	response.OK(c, gin.H{"comment": comment})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCommentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		if errors.Is(bindFailure(err), errContentTooLong) {
			response.BadRequest(c, "Comment must be at most 1000 characters")
			return
		}
		response.BadRequest(c, "Content and postId are required")
		return
	}
	id := middleware.CurrentIdentity(c)
	author := models.CommentAuthor{ID: id.UserID, Name: id.Name, Email: id.Email, Avatar: id.Avatar}

	comment, err := h.svc.Create(c.Request.Context(), author, &dto)
	switch {
	case errors.Is(err, errContentRequired):
		response.BadRequest(c, "Content and postId are required")
	case errors.Is(err, errContentTooLong):
		response.BadRequest(c, "Comment must be at most 1000 characters")
	case err != nil:
		response.InternalError(c, "Failed to create comment", err)
	default:
		response.Created(c, gin.H{"comment": comment})
	}
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCommentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		if errors.Is(bindFailure(err), errContentTooLong) {
			response.BadRequest(c, "Comment must be at most 1000 characters")
			return
		}
		response.BadRequest(c, "Content is required")
		return
	}
	comment, err := h.svc.Update(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), &dto)
	switch {
	case errors.Is(err, errContentRequired):
		response.BadRequest(c, "Content is required")
	case errors.Is(err, errContentTooLong):
		response.BadRequest(c, "Comment must be at most 1000 characters")
	case errors.Is(err, errForbidden):
		response.Forbidden(c, "Not authorized to edit this comment")
	case err != nil:
		response.InternalError(c, "Failed to update comment", err)
	case comment == nil:
		response.NotFound(c, "Comment not found")
	default:
		response.OK(c, gin.H{"comment": comment})
	}
}

func (h *Handler) delete(c *gin.Context) {
	found, err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	switch {
	case errors.Is(err, errForbidden):
		response.Forbidden(c, "Not authorized to delete this comment")
	case err != nil:
		response.InternalError(c, "Failed to delete comment", err)
	case !found:
		response.NotFound(c, "Comment not found")
	default:
		response.OK(c, gin.H{"message": "Comment deleted successfully"})
	}
}

func (h *Handler) adminList(c *gin.Context) {
	comments, err := h.svc.AdminList(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to fetch comments", err)
		return
	}
	response.OK(c, gin.H{"comments": comments})
}

func (h *Handler) adminDelete(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		response.BadRequest(c, "Comment id is required")
		return
	}
	found, err := h.svc.AdminDelete(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c, "Failed to delete comment", err)
		return
	}
	if !found {
		response.NotFound(c, "Comment not found")
		return
	}
	response.OK(c, gin.H{"message": "Comment deleted successfully"})
}

// bindFailure maps a binding error onto the service's validation errors.
func bindFailure(err error) error {
	if _, tag, ok := validate.FirstError(err); ok && tag == "max" {
		return errContentTooLong
	}
	return errContentRequired
}
