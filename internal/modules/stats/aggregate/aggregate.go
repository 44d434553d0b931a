package aggregate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/blogd/blogd/internal/models"
	pkgredis "github.com/blogd/blogd/internal/pkg/redis"
	"github.com/blogd/blogd/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const statsCacheTTL = 30 * time.Second

var redisKeyStats = pkgredis.Key("stats", "dashboard")

// Stats is the admin dashboard summary.
type Stats struct {
	Users          int64 `json:"users"`
	Posts          int64 `json:"posts"`
	PublishedPosts int64 `json:"publishedPosts"`
	Categories     int64 `json:"categories"`
	Comments       int64 `json:"comments"`
	Likes          int64 `json:"likes"`
}

// RegisterRoutes mounts GET /stats on an admin-guarded group. rc may be nil.
func RegisterRoutes(admin *gin.RouterGroup, db *gorm.DB, rc *pkgredis.Client) {
	admin.GET("/stats", func(c *gin.Context) {
		ctx := c.Request.Context()
		if cached, ok := readCache(ctx, rc); ok {
			response.OK(c, cached)
			return
		}

		stats, err := Collect(ctx, db)
		if err != nil {
			response.InternalError(c, "Failed to fetch stats", err)
			return
		}
		writeCache(ctx, rc, stats)
		response.OK(c, stats)
	})
}

// Collect counts every table the dashboard shows.
func Collect(ctx context.Context, db *gorm.DB) (*Stats, error) {
	var s Stats
	counts := []struct {
		dest  *int64
		model any
		where []any
	}{
		{&s.Users, &models.User{}, nil},
		{&s.Posts, &models.Post{}, nil},
		{&s.PublishedPosts, &models.Post{}, []any{"published = ?", true}},
		{&s.Categories, &models.Category{}, nil},
		{&s.Comments, &models.Comment{}, nil},
		{&s.Likes, &models.Like{}, nil},
	}
	for _, item := range counts {
		tx := db.WithContext(ctx).Model(item.model)
		if len(item.where) > 0 {
			tx = tx.Where(item.where[0], item.where[1:]...)
		}
		if err := tx.Count(item.dest).Error; err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func readCache(ctx context.Context, rc *pkgredis.Client) (*Stats, bool) {
	if rc == nil {
		return nil, false
	}
	raw, err := rc.Get(ctx, redisKeyStats)
	if err != nil || raw == "" {
		return nil, false
	}
	var s Stats
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, false
	}
	return &s, true
}

func writeCache(ctx context.Context, rc *pkgredis.Client, s *Stats) {
	if rc == nil {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := rc.Set(ctx, redisKeyStats, string(raw), statsCacheTTL); err != nil {
		zap.L().Warn("cache stats", zap.Error(err))
	}
}
