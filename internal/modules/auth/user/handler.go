package user

import (
	"errors"

	"github.com/blogd/blogd/internal/middleware"
	"github.com/blogd/blogd/internal/pkg/response"
	"github.com/blogd/blogd/internal/pkg/validate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/user", authMW)
	g.GET("/profile", h.getProfile)
	g.PUT("/profile", h.updateProfile)
	g.PATCH("/password", h.changePassword)
}

// RegisterAdminRoutes mounts user moderation on an admin-guarded group.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	g := admin.Group("/users")
	g.GET("", h.list)
	g.PATCH("", h.updateRole)
	g.DELETE("", h.delete)
	g.PATCH("/:id/block", h.block)
}

func (h *Handler) getProfile(c *gin.Context) {
	u, err := h.svc.GetByID(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, "Failed to fetch profile", err)
		return
	}
	if u == nil {
		response.NotFound(c, "User not found")
		return
	}
	response.OK(c, gin.H{"user": toProfile(u)})
}

func (h *Handler) updateProfile(c *gin.Context) {
	var dto UpdateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), &dto)
	if err != nil {
		if errors.Is(err, errEmptyName) {
			response.BadRequest(c, "Name cannot be empty")
			return
		}
		response.InternalError(c, "Failed to update profile", err)
		return
	}
	if u == nil {
		response.NotFound(c, "User not found")
		return
	}
	response.OK(c, gin.H{"message": "Profile updated", "user": toProfile(u)})
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		if _, tag, ok := validate.FirstError(err); ok && tag == "min" {
			response.BadRequest(c, "Password must be at least 6 characters")
			return
		}
		response.BadRequest(c, "Invalid request body")
		return
	}
	id := middleware.CurrentIdentity(c)
	err := h.svc.ChangePassword(c.Request.Context(), id.UserID, id.SessionID, &dto)
	switch {
	case err == nil:
		response.OK(c, gin.H{"message": "Password changed"})
	case errors.Is(err, errWeakPassword):
		response.BadRequest(c, "Password must be at least 6 characters")
	case errors.Is(err, errWrongPassword):
		response.Forbidden(c, "Current password is incorrect")
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(c, "User not found")
	default:
		response.InternalError(c, "Failed to change password", err)
	}
}

func (h *Handler) list(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to fetch users", err)
		return
	}
	response.OK(c, rows)
}

func (h *Handler) updateRole(c *gin.Context) {
	var dto UpdateRoleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		if _, _, ok := validate.FirstError(err); ok {
			response.BadRequest(c, "Missing userId or newRole")
			return
		}
		response.BadRequest(c, "Invalid request body")
		return
	}
	u, err := h.svc.UpdateRole(c.Request.Context(), dto.UserID, dto.NewRole)
	if err != nil {
		if errors.Is(err, errInvalidRole) {
			response.BadRequest(c, "Invalid role")
			return
		}
		response.InternalError(c, "Failed to update role", err)
		return
	}
	if u == nil {
		response.NotFound(c, "User not found")
		return
	}
	response.OK(c, gin.H{"message": "Role updated successfully", "user": u})
}

func (h *Handler) delete(c *gin.Context) {
	var dto DeleteUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Missing userId")
		return
	}
	found, err := h.svc.Delete(c.Request.Context(), dto.UserID)
	if err != nil {
		response.InternalError(c, "Failed to delete user", err)
		return
	}
	if !found {
		response.NotFound(c, "User not found")
		return
	}
	response.OK(c, gin.H{"message": "User deleted successfully"})
}

func (h *Handler) block(c *gin.Context) {
	var dto BlockDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "blocked must be a boolean")
		return
	}
	found, err := h.svc.SetBlocked(c.Request.Context(), c.Param("id"), *dto.Blocked)
	if err != nil {
		response.InternalError(c, "Failed to update user", err)
		return
	}
	if !found {
		response.NotFound(c, "User not found")
		return
	}
	msg := "User unblocked successfully"
	if *dto.Blocked {
		msg = "User blocked successfully"
	}
	response.OK(c, gin.H{"message": msg})
}
