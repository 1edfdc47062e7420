package api

import (
	"speech_to_act/backend/go/pkg/httpmiddleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all the routes for the intent gateway.
func RegisterRoutes(router *gin.Engine, api *API) {
	router.Use(httpmiddleware.TraceID(), httpmiddleware.RequestLogger(api.logger))

	intents := router.Group("/api/intents")
	{
		intents.POST("/preview", api.PreviewHandler)
		intents.GET("/pending", api.ListPendingHandler)
		intents.POST("/confirm", api.ConfirmHandler)
		intents.POST("/reject", api.RejectHandler)
		intents.POST("/commit", api.CommitHandler)
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
