// Command import copies a legacy document-store deployment into the SQL store.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/blogd/blogd/internal/config"
	"github.com/blogd/blogd/internal/database"
	"github.com/blogd/blogd/internal/modules/content/category"
	"github.com/blogd/blogd/internal/modules/content/post"
	"github.com/blogd/blogd/internal/modules/storage/legacy"
	"github.com/blogd/blogd/internal/pkg/nativelog"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	mongoURI := flag.String("mongo-uri", "mongodb://localhost:27017", "Source MongoDB connection string")
	mongoDB := flag.String("mongo-db", "blogapp", "Source MongoDB database name")
	flag.Parse()

	logger, err := nativelog.New(nativelog.Options{Level: "info", Dev: true})
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if strings.TrimSpace(*mongoURI) == "" || strings.TrimSpace(*mongoDB) == "" {
		logger.Fatal("--mongo-uri and --mongo-db are required")
	}

	// The import always needs the schema, whatever auto_migrate says.
	cfg.Database.AutoMigrate = true
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := legacy.Import(ctx, *mongoURI, *mongoDB, db)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	likes, err := post.NewService(db).ReconcileLikeCounts(ctx)
	if err != nil {
		logger.Fatal("reconcile like counts", zap.Error(err))
	}
	cats, err := category.NewService(db).ReconcileCounts(ctx)
	if err != nil {
		logger.Fatal("reconcile category counts", zap.Error(err))
	}

	logger.Info("import complete",
		zap.Any("report", report),
		zap.Int64("likeCountersFixed", likes),
		zap.Int64("categoryCountersFixed", cats),
	)
}
