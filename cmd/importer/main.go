package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"storefront-cart/internal/config"
	"storefront-cart/internal/db"
	"storefront-cart/internal/domain"
	"storefront-cart/internal/importer"
	"storefront-cart/internal/logging"
	"storefront-cart/internal/repository/product"
	"storefront-cart/internal/repository/project"
)

func main() {
	var (
		filePath   string
		projectKey string
	)
	flag.StringVar(&filePath, "file", "", "Path to catalog CSV file")
	flag.StringVar(&projectKey, "project", "", "Project key to import into")
	flag.Parse()

	if filePath == "" || projectKey == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, "importer")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	projRepo := project.NewPostgres(pool)
	proj, err := projRepo.GetByKey(ctx, projectKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			proj, err = projRepo.Create(ctx, domain.Project{Key: projectKey, Name: projectKey})
		}
		if err != nil {
			logger.Fatal("ensure project", zap.String("project", projectKey), zap.Error(err))
		}
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, logger), proj.ID, logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Int("imported", count), zap.Error(err))
	}
	logger.Info("import finished",
		zap.Int("products", count),
		zap.String("project", projectKey),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
	)
}
