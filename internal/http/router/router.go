package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arthub/arthub-backend/internal/config"
	"github.com/arthub/arthub-backend/internal/http/handlers"
	"github.com/arthub/arthub-backend/internal/http/middleware"
	"github.com/arthub/arthub-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	requestHandler *handlers.RequestHandler,
	statsHandler *handlers.StatsHandler,
	notificationHandler *handlers.NotificationHandler,
	catalogHandler *handlers.CatalogHandler,
	mediaHandler *handlers.MediaHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media/files", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/catalog/categories", catalogHandler.ListCategories)
	api.GET("/catalog/categories/:slug", catalogHandler.GetCategory)
	api.GET("/catalog/artists", catalogHandler.ListArtists)
	api.GET("/catalog/artists/:id", middleware.UUIDValidator("id"), catalogHandler.GetArtist)
	api.GET("/artists/:id/stats", middleware.UUIDValidator("id"), statsHandler.GetArtistStats)
	api.GET("/stats/trending-types", statsHandler.GetTrendingTypes)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.POST("/requests", requestHandler.CreateRequest)
		protected.GET("/requests", requestHandler.ListRequests)
		protected.GET("/requests/:id", middleware.UUIDValidator("id"), requestHandler.GetRequest)
		protected.PATCH("/requests/:id/status", middleware.UUIDValidator("id"), requestHandler.UpdateStatus)
		protected.POST("/requests/:id/progress", middleware.UUIDValidator("id"), requestHandler.RecordProgress)
		protected.POST("/requests/:id/revisions", middleware.UUIDValidator("id"), requestHandler.RequestRevision)
		protected.POST("/requests/:id/milestones", middleware.UUIDValidator("id"), requestHandler.AddMilestone)
		protected.POST("/requests/:id/milestones/:milestoneID/complete",
			middleware.UUIDValidator("id"), middleware.UUIDValidator("milestoneID"), requestHandler.CompleteMilestone)
		protected.GET("/requests/:id/estimate", middleware.UUIDValidator("id"), requestHandler.EstimateCompletion)
		protected.POST("/requests/:id/feedback", middleware.UUIDValidator("id"), requestHandler.SubmitFeedback)

		protected.GET("/stats/requests", statsHandler.GetStats)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.CountUnread)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.DELETE("/notifications/:id", middleware.UUIDValidator("id"), notificationHandler.Delete)

		protected.POST("/media/attachments", mediaHandler.UploadAttachment)
		protected.DELETE("/media/:id", middleware.UUIDValidator("id"), mediaHandler.DeleteMedia)
	}

	return r
}
