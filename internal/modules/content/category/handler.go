package category

import (
	"errors"
	"net/http"

	"github.com/blogd/blogd/internal/models"
	"github.com/blogd/blogd/internal/pkg/response"
	"github.com/blogd/blogd/internal/pkg/validate"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc        *Service
	openCreate bool
}

// NewHandler builds the category handler. With openCreate false the public
// POST needs a session like every other mutation.
func NewHandler(svc *Service, openCreate bool) *Handler {
	return &Handler{svc: svc, openCreate: openCreate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	cats := rg.Group("/categories")
	cats.GET("", h.list)
	if h.openCreate {
		cats.POST("", h.create)
	} else {
		cats.POST("", authMW, h.create)
	}
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	cats := admin.Group("/categories")
	cats.GET("", h.adminList)
	cats.POST("", h.adminCreate)
	cats.PUT("/:id", h.update)
	cats.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	cats, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to fetch categories", err)
		return
	}
	response.OK(c, cats)
}

func (h *Handler) adminList(c *gin.Context) {
	cats, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to fetch categories", err)
		return
	}
	response.OK(c, gin.H{"categories": cats})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		h.createError(c, bindFailure(err))
		return
	}
	cat, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		h.createError(c, err)
		return
	}
	response.Created(c, cat)
}

func (h *Handler) adminCreate(c *gin.Context) {
	var dto CreateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		h.createError(c, bindFailure(err))
		return
	}
	cat, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		h.createError(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "Category created successfully", gin.H{"category": cat})
}

func (h *Handler) createError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errNameRequired):
		response.BadRequest(c, "Category name is required")
	case errors.Is(err, errDescriptionTooLong):
		response.BadRequest(c, "Description must be at most 200 characters")
	case errors.Is(err, errCategoryExists):
		response.BadRequest(c, "Category already exists")
	case errors.Is(err, errInvalidBody):
		response.BadRequest(c, "Invalid request body")
	default:
		response.InternalError(c, "Failed to create category", err)
	}
}

// bindFailure maps a binding error onto the service's validation errors.
func bindFailure(err error) error {
	field, tag, ok := validate.FirstError(err)
	switch {
	case !ok:
		return errInvalidBody
	case field == "Description" && tag == "max":
		return errDescriptionTooLong
	case field == "Name":
		return errNameRequired
	}
	return errInvalidBody
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCategoryDTO
	var cat *models.Category
	err := c.ShouldBindJSON(&dto)
	if err != nil {
		err = bindFailure(err)
	} else {
		cat, err = h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	}
	switch {
	case errors.Is(err, errNameRequired):
		response.BadRequest(c, "Category name is required")
		return
	case errors.Is(err, errDescriptionTooLong):
		response.BadRequest(c, "Description must be at most 200 characters")
		return
	case errors.Is(err, errCategoryExists):
		response.BadRequest(c, "Category name already exists")
		return
	case errors.Is(err, errInvalidBody):
		response.BadRequest(c, "Invalid request body")
		return
	case err != nil:
		response.InternalError(c, "Failed to update category", err)
		return
	}
	if cat == nil {
		response.NotFound(c, "Category not found")
		return
	}
	response.Message(c, http.StatusOK, "Category updated successfully", gin.H{"category": cat})
}

func (h *Handler) delete(c *gin.Context) {
	found, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to delete category", err)
		return
	}
	if !found {
		response.NotFound(c, "Category not found")
		return
	}
	response.OK(c, gin.H{"message": "Category deleted successfully"})
}
