package routes

import (
	"github.com/gin-gonic/gin"

	"placement_backend/internal/handlers"
	"placement_backend/internal/logger"
	"placement_backend/ws"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
) {
	appHandlers.HealthHandler.RegisterRoutes(ginRouter)
	appHandlers.FileHandler.RegisterRoutes(ginRouter)

	api := ginRouter.Group("/api")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.ProfileHandler.RegisterRoutes(api)
		appHandlers.CompanyHandler.RegisterRoutes(api)
		appHandlers.JobHandler.RegisterRoutes(api)
		appHandlers.ApplicationHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api)
		appHandlers.MessageHandler.RegisterRoutes(api)
		appHandlers.ForumHandler.RegisterRoutes(api)
		appHandlers.ReviewHandler.RegisterRoutes(api)
		appHandlers.CalendarHandler.RegisterRoutes(api)
		appHandlers.TalentHandler.RegisterRoutes(api)
		appHandlers.ModerationHandler.RegisterRoutes(api)
		appHandlers.AdminHandler.RegisterRoutes(api)
	}

	// токен проверяет сам ServeWS: браузер передает его в query
	ginRouter.GET("/ws", wsHandler.ServeWS)
	logger.Info("Routes registered", "routes", len(ginRouter.Routes()))
}
