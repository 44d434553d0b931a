package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/blogd/blogd/internal/config"
	"github.com/blogd/blogd/internal/database"
	"github.com/blogd/blogd/internal/modules/storage/backup"
	pkgcron "github.com/blogd/blogd/internal/pkg/cron"
	jwtpkg "github.com/blogd/blogd/internal/pkg/jwt"
	pkgredis "github.com/blogd/blogd/internal/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	rc     *pkgredis.Client
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler
}

// New initializes the application: config → DB → Redis → routes → cron.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	applyRuntimeSettings(cfg, logger)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var rc *pkgredis.Client
	if cfg.Redis.Enable {
		rc, err = pkgredis.Connect(cfg.Redis.URLValue())
		if err != nil {
			// Rate limiting, idempotence and the stats cache degrade to no-ops.
			logger.Warn("redis unavailable, continuing without it", zap.Error(err))
			rc = nil
		}
	}

	backupSvc, err := backup.NewService(db, cfg.Paths.Backups, cfg.Backup)
	if err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}

	sched := pkgcron.New(logger.Named("cron"))
	registerCronJobs(sched, db, cfg, backupSvc, logger)

	ctx, cancel := context.WithCancel(context.Background())
	sched.Start(ctx)

	app := &App{
		cfg:    cfg,
		db:     db,
		rc:     rc,
		logger: logger,
		cancel: cancel,
		sched:  sched,
	}
	app.router = newRouter(cfg, logger, db, rc, sched, backupSvc)
	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops the scheduler and releases the Redis and database handles.
func (a *App) Shutdown() {
	a.cancel()
	if a.rc != nil {
		if err := a.rc.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if err := database.Close(); err != nil {
		a.logger.Warn("close database", zap.Error(err))
	}
}

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) {
	if cfg.JWTSecret != "" {
		jwtpkg.SetSecret(cfg.JWTSecret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
}
