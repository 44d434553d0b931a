package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/blogd/blogd/internal/database"
	"github.com/blogd/blogd/internal/pkg/cron"
	"github.com/blogd/blogd/internal/pkg/nativelog"
	"github.com/blogd/blogd/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const pingTimeout = 3 * time.Second

type logItem struct {
	Size     string `json:"size"`
	Filename string `json:"filename"`
	Created  int64  `json:"created"`
}

// RegisterRoutes mounts the public database probe on api and the job and
// log views on admin.
func RegisterRoutes(api, admin *gin.RouterGroup, db *gorm.DB, sched *cron.Scheduler, logDir string) {
	api.GET("/test-db", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := database.Ping(ctx, db); err != nil {
			response.InternalError(c, "Database connection failed", err)
			return
		}
		response.OK(c, gin.H{"status": "ok"})
	})

	cronGroup := admin.Group("/cron")
	{
		cronGroup.GET("", func(c *gin.Context) {
			response.OK(c, sched.List())
		})

		cronGroup.POST("/:name/run", func(c *gin.Context) {
			err := sched.RunNow(c.Request.Context(), c.Param("name"))
			switch {
			case errors.Is(err, cron.ErrJobNotFound):
				response.NotFound(c, "Job not found")
			case err != nil:
				response.InternalError(c, "Job failed", err)
			default:
				response.OK(c, gin.H{"message": "Job completed"})
			}
		})
	}

	logGroup := admin.Group("/logs")
	{
		logGroup.GET("", func(c *gin.Context) {
			entries, err := os.ReadDir(logDir)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					response.OK(c, []logItem{})
					return
				}
				response.InternalError(c, "Failed to read logs", err)
				return
			}

			items := make([]logItem, 0, len(entries))
			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
					continue
				}
				info, err := entry.Info()
				if err != nil {
					continue
				}
				items = append(items, logItem{
					Size:     formatByteSize(info.Size()),
					Filename: entry.Name(),
					Created:  info.ModTime().UnixMilli(),
				})
			}
			sort.Slice(items, func(i, j int) bool {
				return items[i].Created > items[j].Created
			})
			response.OK(c, items)
		})

		logGroup.GET("/:filename", func(c *gin.Context) {
			name, ok := logFilename(c.Param("filename"))
			if !ok {
				response.BadRequest(c, "Invalid filename")
				return
			}
			data, err := os.ReadFile(filepath.Join(logDir, name))
			if err != nil {
				response.NotFound(c, "Log file not found")
				return
			}
			c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
		})

		// Today's file is truncated instead of removed; the writer reopens it on every line anyway.
		logGroup.DELETE("/:filename", func(c *gin.Context) {
			name, ok := logFilename(c.Param("filename"))
			if !ok {
				response.BadRequest(c, "Invalid filename")
				return
			}
			target := filepath.Join(logDir, name)
			if name == nativelog.Filename(time.Now()) {
				if err := os.WriteFile(target, nil, 0o644); err != nil && !errors.Is(err, os.ErrNotExist) {
					response.InternalError(c, "Failed to clear log", err)
					return
				}
			} else if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
				response.InternalError(c, "Failed to delete log", err)
				return
			}
			response.NoContent(c)
		})
	}
}

// logFilename rejects anything that is not a bare *.log name.
func logFilename(raw string) (string, bool) {
	name := filepath.Base(strings.TrimSpace(raw))
	if name == "." || name == string(filepath.Separator) || name != strings.TrimSpace(raw) {
		return "", false
	}
	return name, strings.HasSuffix(name, ".log")
}

func formatByteSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
