package router

import (
	"github.com/gin-gonic/gin"

	"github.com/b2bid/bidding-backend/internal/config"
	"github.com/b2bid/bidding-backend/internal/http/handlers"
	"github.com/b2bid/bidding-backend/internal/http/middleware"
	"github.com/b2bid/bidding-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	projectHandler *handlers.ProjectHandler,
	bidHandler *handlers.BidHandler,
	comparisonHandler *handlers.ComparisonHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	seedHandler *handlers.SeedHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	if seedHandler != nil && cfg.Env == "development" {
		api.POST("/seed", seedHandler.Seed)
		api.GET("/seed", seedHandler.Seed)
	}

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/logout", authHandler.Logout)
		protectedAuth.GET("/me", authHandler.Me)
	}

	// Публичные маршруты: каталог проектов открыт без авторизации.
	api.GET("/projects", projectHandler.ListProjects)
	api.GET("/projects/:id", middleware.UUIDValidator("id"), projectHandler.GetProject)
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/projects", projectHandler.CreateProject)
		protected.PUT("/projects/:id", middleware.UUIDValidator("id"), projectHandler.UpdateProject)
		protected.POST("/projects/:id/close", middleware.UUIDValidator("id"), projectHandler.CloseProject)
		protected.POST("/projects/:id/award", middleware.UUIDValidator("id"), projectHandler.AwardProject)

		bidRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
		protected.POST("/projects/:id/bids", bidRateLimit, middleware.UUIDValidator("id"), bidHandler.SubmitBid)
		protected.GET("/projects/:id/bids", middleware.UUIDValidator("id"), bidHandler.ListProjectBids)
		protected.GET("/projects/:id/comparison", middleware.UUIDValidator("id"), comparisonHandler.CompareBids)
		protected.GET("/bids/my", bidHandler.ListMyBids)
		protected.GET("/bids/:id", middleware.UUIDValidator("id"), bidHandler.GetBid)

		protected.POST("/weights/redistribute", comparisonHandler.RedistributeWeights)

		protected.GET("/notifications", notificationHandler.ListNotifications)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.DELETE("/notifications/:id", middleware.UUIDValidator("id"), notificationHandler.DeleteNotification)
	}

	return r
}
