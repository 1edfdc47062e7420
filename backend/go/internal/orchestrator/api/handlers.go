package api

import (
	"net/http"
	"time"

	"speech_to_act/backend/go/internal/models"
	"speech_to_act/backend/go/internal/orchestrator/service"
	"speech_to_act/backend/go/pkg/httpmiddleware"
	"speech_to_act/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// API provides handlers for the pipeline orchestrator.
type API struct {
	pipeline *service.Pipeline
	logger   *logger.Logger
}

// NewAPI creates a new API handler.
func NewAPI(pipeline *service.Pipeline, logger *logger.Logger) *API {
	return &API{pipeline: pipeline, logger: logger}
}

// ProcessHandler 让事实走完整条流水线。
func (a *API) ProcessHandler(c *gin.Context) {
	var req models.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Invalid request payload")
		httpmiddleware.WriteError(c, models.InputError(models.StageInputValidation, "Invalid request payload"), models.StageInputValidation)
		return
	}

	out, err := a.pipeline.Process(c.Request.Context(), req)
	if err != nil {
		httpmiddleware.WriteError(c, err, models.StageGatewayConnection)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ConfirmHandler 确认一个待确认意图。
func (a *API) ConfirmHandler(c *gin.Context) {
	var req models.PendingIDRequest
	_ = c.ShouldBindJSON(&req)

	out, err := a.pipeline.Confirm(c.Request.Context(), req.PendingID)
	if err != nil {
		httpmiddleware.WriteError(c, err, models.StageGatewayConfirm)
		return
	}
	c.JSON(http.StatusOK, out)
}

// RejectHandler 拒绝一个待确认意图。
func (a *API) RejectHandler(c *gin.Context) {
	var req models.PendingIDRequest
	_ = c.ShouldBindJSON(&req)

	out, err := a.pipeline.Reject(c.Request.Context(), req.PendingID)
	if err != nil {
		httpmiddleware.WriteError(c, err, models.StageGatewayReject)
		return
	}
	c.JSON(http.StatusOK, out)
}

// PendingHandler 列出网关中的待确认意图。
func (a *API) PendingHandler(c *gin.Context) {
	out, err := a.pipeline.ListPending(c.Request.Context())
	if err != nil {
		httpmiddleware.WriteError(c, err, models.StageGatewayConnection)
		return
	}
	c.JSON(http.StatusOK, out)
}

// HealthHandler 报告编排服务与网关的健康状态。
func (a *API) HealthHandler(c *gin.Context) {
	h := a.pipeline.Health(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"service":           "orchestrator",
		"gateway_available": h.GatewayAvailable,
		"gateway_url":       h.GatewayURL,
		"timestamp":         models.FormatTime(time.Now()),
	})
}

// InfoHandler 返回服务信息。
func (a *API) InfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "Speech-to-Act Pipeline Orchestrator",
		"version":     "1.0.0",
		"description": "Chains: CanonicalFacts -> Mapping -> Gateway -> Backend",
		"endpoints": gin.H{
			"process": "POST /api/process",
			"confirm": "POST /api/process/confirm",
			"reject":  "POST /api/process/reject",
			"pending": "GET /api/process/pending",
			"health":  "GET /health",
		},
	})
}
