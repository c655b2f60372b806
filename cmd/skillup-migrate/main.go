package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"skillup-tracker/internal/config"
	"skillup-tracker/internal/logger"
	"skillup-tracker/internal/repository"
	"skillup-tracker/internal/service"
)

// skillup-migrate creates the schema and the default categories, then exits.
func main() {
	if err := run(); err != nil {
		log.Fatalf("skillup-migrate: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := logger.Init(cfg.Env); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	db, err := repository.NewDB(cfg.DatabaseDriver, cfg.DatabaseURL, logger.L())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("schema up to date", zap.String("db", cfg.DatabaseDriver))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	created, err := service.NewCategoryService(repository.NewCategoryRepository(db)).Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	logger.Info("default categories seeded",
		zap.Int("created", created),
		zap.Int("total", len(repository.DefaultCategories)),
	)
	return nil
}
