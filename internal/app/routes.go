package app

import (
	"net/http"

	"github.com/blogd/blogd/internal/config"
	"github.com/blogd/blogd/internal/middleware"
	"github.com/blogd/blogd/internal/modules/auth/auth"
	"github.com/blogd/blogd/internal/modules/auth/user"
	"github.com/blogd/blogd/internal/modules/content/category"
	"github.com/blogd/blogd/internal/modules/content/comment"
	"github.com/blogd/blogd/internal/modules/content/post"
	"github.com/blogd/blogd/internal/modules/stats/aggregate"
	"github.com/blogd/blogd/internal/modules/storage/backup"
	"github.com/blogd/blogd/internal/modules/system/core/health"
	pkgcron "github.com/blogd/blogd/internal/pkg/cron"
	pkgredis "github.com/blogd/blogd/internal/pkg/redis"
	"github.com/blogd/blogd/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newRouter(
	cfg *config.AppConfig,
	logger *zap.Logger,
	db *gorm.DB,
	rc *pkgredis.Client,
	sched *pkgcron.Scheduler,
	backupSvc *backup.Service,
) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	if cfg.Metrics.Enable {
		router.Use(middleware.Metrics())
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	router.Use(newCORS(cfg))

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Not found")
	})
	router.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	api := router.Group("/api", middleware.OptionalAuth(db))
	if cfg.RateLimit.Enable {
		api.Use(middleware.RateLimit(rc, cfg.RateLimit.RPS))
	}
	admin := api.Group("/admin", middleware.RequireAdmin())
	authMW := middleware.Auth()
	writeMW := middleware.Idempotence(rc)

	authHandler := auth.NewHandler(auth.NewService(db, cfg.SessionTTL), cfg.IsProduction())
	authHandler.RegisterRoutes(api, authMW)

	userHandler := user.NewHandler(user.NewService(db))
	userHandler.RegisterRoutes(api, authMW)
	userHandler.RegisterAdminRoutes(admin)

	categoryHandler := category.NewHandler(category.NewService(db), cfg.Categories.OpenCreate)
	categoryHandler.RegisterRoutes(api, authMW)
	categoryHandler.RegisterAdminRoutes(admin)

	postHandler := post.NewHandler(post.NewService(db))
	postHandler.RegisterRoutes(api, authMW, writeMW)
	postHandler.RegisterAdminRoutes(admin)

	commentHandler := comment.NewHandler(comment.NewService(db))
	commentHandler.RegisterRoutes(api, authMW, writeMW)
	commentHandler.RegisterAdminRoutes(admin)

	aggregate.RegisterRoutes(admin, db, rc)
	health.RegisterRoutes(api, admin, db, sched, cfg.Paths.Logs)
	backup.NewHandler(backupSvc).RegisterAdminRoutes(admin)

	return router
}
