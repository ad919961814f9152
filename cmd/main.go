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

	"github.com/Dosada05/footmatch/config"
	"github.com/Dosada05/footmatch/db"
	"github.com/Dosada05/footmatch/gamification"
	"github.com/Dosada05/footmatch/handlers"
	"github.com/Dosada05/footmatch/locks"
	"github.com/Dosada05/footmatch/realtime"
	"github.com/Dosada05/footmatch/repositories"
	api "github.com/Dosada05/footmatch/routes"
	"github.com/Dosada05/footmatch/scheduler"
	"github.com/Dosada05/footmatch/services"
	"github.com/Dosada05/footmatch/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.RunMigrations {
		if err := db.Migrate(dbConn); err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// Блокировка отправки результатов: Redis, если настроен
	var locker locks.Locker
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", slog.Any("error", err))
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		locker = locks.NewRedisLocker(redisClient, "footmatch:")
		logger.Info("redis submission locks enabled")
	} else {
		locker = locks.NewMemoryLocker()
		logger.Warn("REDIS_URL not set, using in-process submission locks")
	}

	// Инициализация загрузчика файлов (Cloudflare R2)
	var uploader storage.FileUploader
	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		BucketName:      cfg.R2.BucketName,
		PublicBaseURL:   cfg.R2.PublicBaseURL,
	}
	if r2Config.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, r2Config)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, report export disabled")
	}

	rules, err := gamification.Default()
	if err != nil {
		logger.Error("failed to load gamification rules", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	txRunner := repositories.NewTxRunner(dbConn, logger)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	statsRepo := repositories.NewPostgresPlayerStatsRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	gamificationRepo := repositories.NewPostgresGamificationRepository(dbConn)
	postRepo := repositories.NewPostgresPostRepository(dbConn)
	resultsRepos := services.ResultsRepositories{
		Matches:       matchRepo,
		Operators:     repositories.NewPostgresOperatorRepository(dbConn),
		Registrations: repositories.NewPostgresRegistrationRepository(dbConn),
		Results:       resultRepo,
		PlayerStats:   statsRepo,
		Notifications: notificationRepo,
	}
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	hooks := []services.CompletionHook{
		services.NewGamificationService(txRunner, gamificationRepo, statsRepo, notificationRepo, rules, logger),
		services.NewRecapService(txRunner, postRepo),
		services.NewMatchEventsHook(wsHub),
	}
	if uploader != nil {
		hooks = append(hooks, services.NewReportService(resultRepo, uploader, logger))
	}
	resultsService := services.NewResultsService(txRunner, resultsRepos, locker, cfg.SubmissionLockTTL, uploader, logger, hooks...)
	matchStatusService := services.NewMatchStatusService(matchRepo, logger)
	logger.Info("Services initialized")

	// Планировщик статусов матчей
	sched, err := scheduler.New(logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	if err := scheduler.RegisterMatchStatusJob(sched, matchStatusService, cfg.MatchStatusInterval); err != nil {
		logger.Error("failed to register match status job", slog.Any("error", err))
		os.Exit(1)
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Error("failed to stop scheduler", slog.Any("error", err))
		}
	}()

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, api.Handlers{
		Results:   handlers.NewResultsHandler(resultsService),
		WebSocket: handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins),
		Health:    handlers.NewHealthHandler(dbConn),
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
