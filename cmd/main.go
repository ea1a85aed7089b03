package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tournament-engine/config"
	"github.com/Dosada05/tournament-engine/db"
	_ "github.com/Dosada05/tournament-engine/docs"
	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/repositories"
	api "github.com/Dosada05/tournament-engine/routes"
	"github.com/Dosada05/tournament-engine/scheduler"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/Dosada05/tournament-engine/storage"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 15 * time.Second

// @title           Tournament Engine API
// @version         1.0
// @description     Tournament lifecycle, brackets, match results, standings and prizes.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage", cfg.StorageDriver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Хранилище снимков турниров
	snapshots, closeStore, err := openSnapshotStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open snapshot store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("failed to close snapshot store", slog.Any("error", err))
		}
	}()

	// Шина событий и WebSocket Hub
	bus := events.NewBus(logger, cfg.EventBuffer)
	wsHub := events.NewHub(logger)
	go wsHub.Run(ctx)
	bus.Subscribe("websocket", wsHub)
	logger.Info("WebSocket Hub started")

	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewS3Uploader(ctx, storage.S3UploaderConfig{
			Endpoint:        cfg.ArchiveEndpoint,
			Region:          cfg.ArchiveRegion,
			AccessKeyID:     cfg.ArchiveAccessKeyID,
			SecretAccessKey: cfg.ArchiveSecretAccessKey,
			BucketName:      cfg.ArchiveBucket,
			PublicBaseURL:   cfg.ArchivePublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize results archive uploader", slog.Any("error", err))
			os.Exit(1)
		}
		bus.Subscribe("results_archive", storage.NewResultsArchiver(uploader, logger), events.TournamentCompleted)
		logger.Info("results archive enabled", slog.String("bucket", cfg.ArchiveBucket))
	}

	// Реестр турниров
	registry := services.NewRegistry(bus, logger, services.WithSnapshotRepository(snapshots))
	restored, err := registry.Restore(ctx)
	if err != nil {
		logger.Error("failed to restore tournaments", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("tournaments restored", slog.Int("count", restored))

	// Планировщик окон регистрации и автостарта
	sched := scheduler.NewScheduler(registry, cfg.SchedulerSpec, logger)
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	sched.RunNow(ctx)

	// Инициализация обработчиков HTTP
	tournamentHandler := handlers.NewTournamentHandler(registry)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, registry, cfg.CORSAllowedOrigins, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, []byte(cfg.JWTSecretKey), cfg.CORSAllowedOrigins, tournamentHandler, webSocketHandler)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", slog.Any("error", closeErr))
		}
		exitCode = 1
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler did not stop in time", slog.Any("error", err))
	}
	if err := registry.Close(shutdownCtx); err != nil {
		logger.Error("snapshot saver did not drain", slog.Any("error", err))
		exitCode = 1
	}
	if err := bus.Close(shutdownCtx); err != nil {
		logger.Error("event bus did not drain", slog.Any("error", err))
	}
	stop()

	logger.Info("application exited")
	if exitCode != 0 {
		closeStore()
		os.Exit(exitCode)
	}
}

// openSnapshotStore returns the configured snapshot repository and its closer.
func openSnapshotStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.SnapshotRepository, func() error, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		dbConn, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultPool, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.MigrateSnapshots(ctx, dbConn); err != nil {
			dbConn.Close()
			return nil, nil, err
		}
		logger.Info("database connection established")
		return repositories.NewPostgresSnapshotRepository(dbConn), dbConn.Close, nil
	case config.StorageBolt:
		return repositories.NewBoltSnapshotRepository(cfg.BoltPath)
	default:
		return repositories.NewMemorySnapshotRepository(), func() error { return nil }, nil
	}
}
