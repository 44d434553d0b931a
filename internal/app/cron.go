package app

import (
	"context"
	"time"

	"github.com/blogd/blogd/internal/config"
	"github.com/blogd/blogd/internal/modules/content/category"
	"github.com/blogd/blogd/internal/modules/content/post"
	"github.com/blogd/blogd/internal/modules/storage/backup"
	pkgcron "github.com/blogd/blogd/internal/pkg/cron"
	"github.com/blogd/blogd/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionRetention = 24 * time.Hour

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, db *gorm.DB, cfg *config.AppConfig, backupSvc *backup.Service, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")
	postSvc := post.NewService(db)
	categorySvc := category.NewService(db)

	sched.Register(pkgcron.Job{
		Name:        "reconcileLikeCounts",
		Description: "Recount posts.likes_count from the likes table",
		Interval:    30 * time.Minute,
		Fn: func(ctx context.Context) error {
			n, err := postSvc.ReconcileLikeCounts(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				cronLogger.Info("like counters corrected", zap.Int64("posts", n))
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "reconcileCategoryCounts",
		Description: "Recount categories.post_count from the posts table",
		Interval:    30 * time.Minute,
		Fn: func(ctx context.Context) error {
			n, err := categorySvc.ReconcileCounts(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				cronLogger.Info("category counters corrected", zap.Int64("categories", n))
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "purgeSessions",
		Description: "Delete sessions expired or revoked more than a day ago",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := session.Purge(db.WithContext(ctx), time.Now().Add(-sessionRetention))
			if err != nil {
				return err
			}
			cronLogger.Debug("sessions purged", zap.Int64("rows", n))
			return nil
		},
	})

	if cfg.Backup.Enable {
		sched.Register(pkgcron.Job{
			Name:        "backupDatabase",
			Description: "Write a BSON zip backup and upload it when S3 is configured",
			Interval:    cfg.Backup.Interval,
			Fn:          backupSvc.Run,
		})
	}
}
