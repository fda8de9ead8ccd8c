package routes

import (
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"

	"paintquote_backend/internal/handlers"
	"paintquote_backend/internal/logger"
	"paintquote_backend/internal/metrics"
)

// RegisterRoutes регистрирует все HTTP маршруты.
// authMW передается снаружи, т.к. привязан к TokenManager.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	authMW gin.HandlerFunc,
) {
	// Регистрация HTTP API v1
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, authMW)
		appHandlers.SubscriptionHandler.RegisterRoutes(api, authMW)
		appHandlers.ProjectHandler.RegisterRoutes(api, authMW)
		appHandlers.UploadHandler.RegisterRoutes(api, authMW)
		appHandlers.AnalysisHandler.RegisterRoutes(api, authMW)
		appHandlers.QuoteHandler.RegisterRoutes(api, authMW)
	}

	// Служебные эндпоинты вне версии API
	ginRouter.GET("/health", appHandlers.HealthHandler.Liveness)
	ginRouter.GET("/ready", appHandlers.HealthHandler.Readiness)
	ginRouter.GET("/metrics", metrics.Handler())
	ginRouter.GET("/swagger/*any", ginswagger.WrapHandler(swaggerfiles.Handler))

	logger.Info("HTTP routes registered")
}
