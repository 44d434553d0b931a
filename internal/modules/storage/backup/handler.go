package backup

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/blogd/blogd/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const maxUploadSize = 64 << 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterAdminRoutes mounts the backup endpoints on an admin-guarded group.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	g := admin.Group("/backups")
	g.GET("", h.list)
	g.GET("/new", h.createAndDownload)
	g.GET("/:filename", h.download)
	g.POST("", h.uploadAndRestore)
	g.PATCH("/:filename", h.rollback)
	g.DELETE("/:filename", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List()
	if err != nil {
		response.InternalError(c, "Failed to list backups", err)
		return
	}
	response.OK(c, gin.H{"backups": items})
}

func (h *Handler) createAndDownload(c *gin.Context) {
	artifact, err := h.svc.Create(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Backup failed", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
	c.Data(http.StatusOK, "application/zip", artifact.Data)
}

func (h *Handler) download(c *gin.Context) {
	path, err := h.svc.Path(c.Param("filename"))
	if err != nil {
		h.writeFileError(c, err)
		return
	}
	c.FileAttachment(path, c.Param("filename"))
}

func (h *Handler) rollback(c *gin.Context) {
	if err := h.svc.RestoreFile(c.Request.Context(), c.Param("filename")); err != nil {
		h.writeFileError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Backup restored successfully", nil)
}

func (h *Handler) uploadAndRestore(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if header.Size > maxUploadSize {
		response.BadRequest(c, "Backup file is too large")
		return
	}
	file, err := header.Open()
	if err != nil {
		response.InternalError(c, "Failed to read upload", err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		response.InternalError(c, "Failed to read upload", err)
		return
	}

	if err := Restore(c.Request.Context(), h.svc.db, bytes.NewReader(data), int64(len(data))); err != nil {
		h.writeFileError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Backup restored successfully", nil)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Remove(c.Param("filename")); err != nil {
		h.writeFileError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Backup deleted successfully", nil)
}

func (h *Handler) writeFileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errBadFilename):
		response.BadRequest(c, "Invalid backup filename")
	case errors.Is(err, os.ErrNotExist):
		response.NotFound(c, "Backup not found")
	case errors.Is(err, ErrInvalidArchive):
		response.BadRequest(c, "Invalid backup archive")
	default:
		response.InternalError(c, "Backup operation failed", err)
	}
}
