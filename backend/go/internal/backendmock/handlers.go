package backendmock

import (
	"net/http"
	"time"

	"speech_to_act/backend/go/internal/contract"
	"speech_to_act/backend/go/internal/models"
	"speech_to_act/backend/go/pkg/httpmiddleware"
	"speech_to_act/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// API provides handlers for the mock backend.
type API struct {
	service *Service
	logger  *logger.Logger
}

// NewAPI creates a new API handler.
func NewAPI(service *Service, logger *logger.Logger) *API {
	return &API{service: service, logger: logger}
}

// decode 校验并解析请求体中的契约。
func (a *API) decode(c *gin.Context) (*models.IntentionContract, []models.ValidationError) {
	var body interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		body = nil
	}
	res := contract.Validate(body)
	if !res.IsValid {
		return nil, res.Errors
	}
	ic, err := contract.Decode(body)
	if err != nil {
		return nil, []models.ValidationError{{Field: "contract", Message: err.Error(), Code: models.CodeInvalidType}}
	}
	return ic, nil
}

// PreviewHandler 返回契约的 dry-run 预览。
func (a *API) PreviewHandler(c *gin.Context) {
	ic, errs := a.decode(c)
	if errs != nil {
		c.JSON(http.StatusBadRequest, models.PreviewResponse{
			Success: false,
			Preview: &models.PreviewPayload{AffectedEntities: []models.AffectedEntity{}, Description: "Validation failed"},
			Errors:  errs,
		})
		return
	}
	c.JSON(http.StatusOK, models.PreviewResponse{Success: true, Preview: a.service.Preview(ic)})
}

// CommitHandler 模拟提交，不持久化。
func (a *API) CommitHandler(c *gin.Context) {
	ic, errs := a.decode(c)
	if errs != nil {
		c.JSON(http.StatusBadRequest, models.CommitResponse{Success: false, Message: "Validation failed", Errors: errs})
		return
	}
	receipt := a.service.Commit(ic)
	a.logger.WithPayload(map[string]interface{}{"mock_id": receipt.MockID, "domain": string(ic.Domain)}).Info("mock commit")
	c.JSON(http.StatusOK, models.CommitResponse{
		Success:   true,
		Message:   receipt.Message,
		MockID:    receipt.MockID,
		Timestamp: receipt.Timestamp,
	})
}

// HealthHandler 健康检查。
func (a *API) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "backend-mock", "timestamp": models.FormatTime(time.Now())})
}

// InfoHandler 返回服务信息。
func (a *API) InfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "Speech-to-Act Mock Backend API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"preview": "POST /api/intents/preview",
			"commit":  "POST /api/intents/commit",
			"health":  "GET /health",
		},
	})
}

// NewRouter 创建模拟后端的 gin 引擎。
func NewRouter(api *API) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), httpmiddleware.TraceID(), httpmiddleware.RequestLogger(api.logger))

	intents := router.Group("/api/intents")
	{
		intents.POST("/preview", api.PreviewHandler)
		intents.POST("/commit", api.CommitHandler)
	}
	router.GET("/health", api.HealthHandler)
	router.GET("/", api.InfoHandler)
	return router
}
