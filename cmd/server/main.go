package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/b2bid/bidding-backend/internal/config"
	"github.com/b2bid/bidding-backend/internal/db"
	"github.com/b2bid/bidding-backend/internal/goroutine"
	httpHandlers "github.com/b2bid/bidding-backend/internal/http/handlers"
	httpRouter "github.com/b2bid/bidding-backend/internal/http/router"
	"github.com/b2bid/bidding-backend/internal/logger"
	"github.com/b2bid/bidding-backend/internal/repository"
	"github.com/b2bid/bidding-backend/internal/service"
	"github.com/b2bid/bidding-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	bidRepo := repository.NewBidRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты и фоновые горутины.
	recovery := goroutine.NewRecoveryHandler(logger.Log)
	hub := ws.NewHub()
	recovery.SafeGo(hub.Run)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	notificationService := service.NewNotificationService(notificationRepo, hub)
	cacheService := service.NewCacheService()
	projectService := service.NewProjectService(projectRepo, bidRepo, notificationService, cacheService)
	bidService := service.NewBidService(bidRepo, projectRepo, notificationService)
	seedService := service.NewSeedService(dbConn, userRepo, projectRepo)

	// Фоновое закрытие проектов с истёкшим дедлайном.
	recovery.SafeGoWithContext(ctx, func(ctx context.Context) {
		runDeadlineSweep(ctx, projectService, cfg.SweepInterval)
	})

	// Периодическая чистка просроченных сессий.
	recovery.SafeGoWithContext(ctx, func(ctx context.Context) {
		runSessionCleanup(ctx, userRepo, time.Hour)
	})

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	projectHandler := httpHandlers.NewProjectHandler(projectService)
	bidHandler := httpHandlers.NewBidHandler(bidService)
	comparisonHandler := httpHandlers.NewComparisonHandler(bidService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)
	seedHandler := httpHandlers.NewSeedHandler(seedService)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, projectHandler, bidHandler, comparisonHandler, notificationHandler, wsHandler, healthHandler, seedHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// runDeadlineSweep периодически закрывает проекты с истёкшим сроком подачи.
func runDeadlineSweep(ctx context.Context, projects *service.ProjectService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			closed, err := projects.SweepExpired(ctx)
			if err != nil {
				logger.Log.Errorf("main: ошибка закрытия просроченных проектов: %v", err)
				continue
			}
			if closed > 0 {
				logger.Log.Infof("main: закрыто просроченных проектов: %d", closed)
			}
		}
	}
}

// runSessionCleanup периодически удаляет просроченные сессии: отозванные
// refresh токены и так не проходят проверку, чистка лишь сдерживает рост таблицы.
func runSessionCleanup(ctx context.Context, users *repository.UserRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := users.DeleteExpiredSessions(ctx)
			if err != nil {
				logger.Log.Errorf("main: ошибка чистки сессий: %v", err)
				continue
			}
			if deleted > 0 {
				logger.Log.Infof("main: удалено просроченных сессий: %d", deleted)
			}
		}
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
