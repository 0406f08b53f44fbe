package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"photoshare/internal/config"
	"photoshare/internal/database"
	"photoshare/internal/logging"
	"photoshare/internal/repositories"
	"photoshare/internal/router"
	"photoshare/internal/services"
	"photoshare/internal/storage"
	"photoshare/pkg/rabbitmq"
)

// App bundles the HTTP server with the resources it owns.
type App struct {
	Fiber *fiber.App
	DB    *gorm.DB
	MQ    *rabbitmq.Client
	log   *logrus.Logger
}

// NewApp connects the database, blob store and (optionally) the broker and
// mounts every route.
func NewApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		return nil, err
	}

	// --- Attachment store ---
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// --- RabbitMQ (optional) ---
	var (
		mqClient *rabbitmq.Client
		events   services.EventPublisher
	)
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			return nil, err
		}
		events = mqClient
	} else {
		log.Warn("RABBITMQ_URL is empty, activity events are disabled")
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	relRepo := repositories.NewGORMRelationshipRepository(db)
	imageRepo := repositories.NewGORMImageRepository(db)
	albumRepo := repositories.NewGORMAlbumRepository(db)

	// --- Services ---
	svc := router.Services{
		Auth:          services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, events, log),
		Users:         services.NewUserService(userRepo, imageRepo, store, log),
		Relationships: services.NewRelationshipService(relRepo, userRepo, events, log),
		Feed:          services.NewFeedService(imageRepo, userRepo),
		Images:        services.NewImageService(imageRepo, albumRepo, store, events, log),
		Albums:        services.NewAlbumService(albumRepo),
	}

	// --- Fiber ---
	app := fiber.New(fiber.Config{
		AppName:      "photoshare",
		BodyLimit:    cfg.MaxUploadBytes,
		ErrorHandler: router.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: log.Writer(),
	}))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		health, dbStatus := "healthy", "connected"
		status := fiber.StatusOK
		if err := database.Ping(c.UserContext(), db); err != nil {
			health, dbStatus = "unhealthy", err.Error()
			status = fiber.StatusServiceUnavailable
		}
		mqStatus := "disabled"
		if mqClient != nil {
			mqStatus = "connected"
		}
		return c.Status(status).JSON(fiber.Map{
			"status":   health,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
			"rabbitmq": mqStatus,
		})
	})

	router.Setup(app, svc, log)

	return &App{Fiber: app, DB: db, MQ: mqClient, log: log}, nil
}

// Close shuts the server down and releases the database and broker.
func (a *App) Close() error {
	var errs []error
	if err := a.Fiber.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
	}
	if err := a.MQ.Close(); err != nil {
		errs = append(errs, err)
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// --- Start RabbitMQ Consumer ---
	if app.MQ != nil {
		if err := app.MQ.ConsumeActivityEvents(rabbitmq.LogActivityEvent(log)); err != nil {
			log.WithError(err).Error("Failed to start RabbitMQ consumer")
		}
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("Starting server on port %s", cfg.AppPort)
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Info("Shutting down server...")

	if err := app.Close(); err != nil {
		log.WithError(err).Error("Error during shutdown")
	}
	log.Info("Server gracefully stopped")
}
