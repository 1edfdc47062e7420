package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"speech_to_act/backend/go/internal/gateway/service"
	"speech_to_act/backend/go/internal/models"
	"speech_to_act/backend/go/pkg/httpmiddleware"
	"speech_to_act/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// API provides handlers for the intent gateway.
type API struct {
	coordinator *service.Coordinator
	logger      *logger.Logger
}

// NewAPI creates a new API handler.
func NewAPI(coordinator *service.Coordinator, logger *logger.Logger) *API {
	return &API{coordinator: coordinator, logger: logger}
}

// readContract 读取原始请求体；空请求体视为缺少契约。
func readContract(c *gin.Context) (interface{}, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// readPendingID 解析 {pending_id}；无法解析的请求体按缺少 id 处理。
func readPendingID(c *gin.Context) string {
	var req models.PendingIDRequest
	_ = c.ShouldBindJSON(&req)
	return req.PendingID
}

// PreviewHandler 校验契约并存为待确认意图。
func (a *API) PreviewHandler(c *gin.Context) {
	candidate, err := readContract(c)
	if err != nil {
		httpmiddleware.WriteError(c, models.InputError(models.StageInputValidation, "Invalid request payload"), models.StageInputValidation)
		return
	}

	res, err := a.coordinator.Preview(c.Request.Context(), candidate)
	if err != nil {
		httpmiddleware.WriteError(c, err, models.StageBackendPreview)
		return
	}

	c.JSON(http.StatusOK, models.GatewayPreviewResponse{
		Success:   true,
		Stage:     models.StagePendingConfirmation,
		PendingID: res.PendingID,
		ExpiresAt: models.FormatTime(res.ExpiresAt),
		Preview:   res.Preview,
	})
}

// ListPendingHandler 列出全部待确认意图。
func (a *API) ListPendingHandler(c *gin.Context) {
	list, err := a.coordinator.ListPending(c.Request.Context())
	if err != nil {
		httpmiddleware.WriteError(c, err, models.StagePendingLookup)
		return
	}

	out := models.PendingListResponse{Count: len(list), Pending: make([]models.PendingSummary, 0, len(list))}
	for _, p := range list {
		out.Pending = append(out.Pending, models.NewPendingSummary(p))
	}
	c.JSON(http.StatusOK, out)
}

// ConfirmHandler 提交一个待确认意图。
func (a *API) ConfirmHandler(c *gin.Context) {
	res, err := a.coordinator.Confirm(c.Request.Context(), readPendingID(c))
	if err != nil {
		httpmiddleware.WriteError(c, err, models.StageGatewayConfirm)
		return
	}
	c.JSON(http.StatusOK, commitResponse(res))
}

// RejectHandler 丢弃一个待确认意图。
func (a *API) RejectHandler(c *gin.Context) {
	summary, err := a.coordinator.Reject(c.Request.Context(), readPendingID(c))
	if err != nil {
		httpmiddleware.WriteError(c, err, models.StageGatewayReject)
		return
	}
	c.JSON(http.StatusOK, models.GatewayRejectResponse{
		Success:  true,
		Stage:    models.StageRejected,
		Message:  "Intent rejected and removed",
		Rejected: summary,
	})
}

// CommitHandler 跳过确认直接提交契约。
func (a *API) CommitHandler(c *gin.Context) {
	candidate, err := readContract(c)
	if err != nil {
		httpmiddleware.WriteError(c, models.InputError(models.StageInputValidation, "Invalid request payload"), models.StageInputValidation)
		return
	}

	res, err := a.coordinator.Commit(c.Request.Context(), candidate)
	if err != nil {
		httpmiddleware.WriteError(c, err, models.StageBackendCommit)
		return
	}
	c.JSON(http.StatusOK, commitResponse(res))
}

// HealthHandler 报告网关与后端的健康状态。
func (a *API) HealthHandler(c *gin.Context) {
	h := a.coordinator.Health(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"service":           "intent-gateway",
		"backend_available": h.BackendAvailable,
		"backend_url":       h.BackendURL,
		"timestamp":         models.FormatTime(time.Now()),
	})
}

// InfoHandler 返回服务信息。
func (a *API) InfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "Speech-to-Act Intent Gateway",
		"version": "1.0.0",
		"endpoints": gin.H{
			"preview": "POST /api/intents/preview",
			"pending": "GET /api/intents/pending",
			"confirm": "POST /api/intents/confirm",
			"reject":  "POST /api/intents/reject",
			"commit":  "POST /api/intents/commit",
			"health":  "GET /health",
		},
	})
}

func commitResponse(res *service.CommitResult) models.GatewayCommitResponse {
	return models.GatewayCommitResponse{
		Success:   true,
		Stage:     models.StageCommitted,
		Message:   res.Receipt.Message,
		MockID:    res.Receipt.MockID,
		Timestamp: res.Receipt.Timestamp,
		Contract:  res.Contract,
	}
}
