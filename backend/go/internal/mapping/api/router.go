package api

import (
	"speech_to_act/backend/go/pkg/httpmiddleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all the routes for the mapping service.
func RegisterRoutes(router *gin.Engine, api *API) {
	router.Use(httpmiddleware.TraceID(), httpmiddleware.RequestLogger(api.logger))

	schema := router.Group("/schema")
	{
		schema.GET("", api.SchemaHandler)
		schema.GET("/dimensions", api.DimensionsHandler)
		schema.GET("/domains", api.DomainsHandler)
		schema.GET("/prompt", api.PromptHandler)
	}

	router.POST("/map", api.MapHandler)
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
