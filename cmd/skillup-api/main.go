package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"skillup-tracker/internal/api"
	"skillup-tracker/internal/auth"
	"skillup-tracker/internal/bot"
	"skillup-tracker/internal/config"
	"skillup-tracker/internal/logger"
	"skillup-tracker/internal/repository"
	"skillup-tracker/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("skillup-api: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := logger.Init(cfg.Env); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := repository.NewDB(cfg.DatabaseDriver, cfg.DatabaseURL, logger.L())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	// Categories are seeded by skillup-migrate only.
	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	activitySvc := service.NewActivityService(activityRepo, categoryRepo, cfg.Location)
	categorySvc := service.NewCategoryService(categoryRepo)
	dashboardSvc := service.NewDashboardService(activityRepo, cfg.Location)
	reminderSvc := service.NewReminderService(dashboardSvc)

	router := api.NewRouter(api.Dependencies{
		DB:         sqlDB,
		Users:      userRepo,
		Activities: activitySvc,
		Categories: categorySvc,
		Dashboard:  dashboardSvc,
		Auth:       auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer},
		Logger:     logger.L(),
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.BotEnabled() {
		if err := startBot(ctx, cfg, userRepo, activitySvc, categorySvc, reminderSvc); err != nil {
			return fmt.Errorf("telegram bot: %w", err)
		}
	} else {
		logger.Info("TELEGRAM_TOKEN not set, chat front-end disabled")
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
	}()

	logger.Info("skillup api listening",
		zap.String("address", cfg.HTTPAddress),
		zap.String("env", cfg.Env),
		zap.String("db", cfg.DatabaseDriver),
		zap.String("timezone", cfg.Location.String()),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

// startBot runs the Telegram front-end and its reminder jobs until ctx is cancelled.
func startBot(ctx context.Context, cfg config.Config, userRepo *repository.UserRepository, activitySvc *service.ActivityService, categorySvc *service.CategoryService, reminderSvc *service.ReminderService) error {
	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, activitySvc, categorySvc, reminderSvc, logger.L())
	if err != nil {
		return err
	}

	scheduler := service.NewSchedulerService(cfg.Location, logger.L())
	id, err := scheduler.ScheduleDaily("daily-reminder", cfg.ReminderTime, telegramBot.SendReminders)
	if err != nil {
		return err
	}
	if cfg.ReportInterval > 0 {
		if _, err := scheduler.ScheduleInterval("periodic-report", cfg.ReportInterval, telegramBot.SendDailyReports); err != nil {
			return err
		}
	}
	scheduler.Start()
	logger.Info("reminders scheduled", zap.Time("next", scheduler.Next(id)))

	go func() {
		defer scheduler.Stop()
		if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("bot stopped with error", zap.Error(err))
		}
	}()
	return nil
}
