package api

import (
	"speech_to_act/backend/go/pkg/httpmiddleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all the routes for the orchestrator.
func RegisterRoutes(router *gin.Engine, api *API) {
	router.Use(httpmiddleware.TraceID(), httpmiddleware.RequestLogger(api.logger))

	process := router.Group("/api/process")
	{
		process.POST("", api.ProcessHandler)
		process.POST("/confirm", api.ConfirmHandler)
		process.POST("/reject", api.RejectHandler)
		process.GET("/pending", api.PendingHandler)
	}

	router.GET("/health", api.HealthHandler)
	router.GET("/", api.InfoHandler)
}

// NewRouter 创建已注册全部路由的 gin 引擎。
func NewRouter(api *API) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	RegisterRoutes(router, api)
	return router
}
