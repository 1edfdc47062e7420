package api

import (
	"net/http"
	"time"

	"speech_to_act/backend/go/internal/mapping"
	"speech_to_act/backend/go/internal/models"
	"speech_to_act/backend/go/pkg/httpmiddleware"
	"speech_to_act/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// API provides handlers for the deterministic mapping service.
type API struct {
	mapper *mapping.Mapper
	logger *logger.Logger
}

// NewAPI creates a new API handler.
func NewAPI(mapper *mapping.Mapper, logger *logger.Logger) *API {
	return &API{mapper: mapper, logger: logger}
}

type mapRequest struct {
	Facts   []models.CanonicalFact `json:"facts"`
	Targets []string               `json:"targets"`
}

// SchemaHandler 返回完整的映射 schema。
func (a *API) SchemaHandler(c *gin.Context) {
	c.JSON(http.StatusOK, mapping.GetSchema())
}

// DimensionsHandler 返回全部维度及其合法取值。
func (a *API) DimensionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dimensions": mapping.Dimensions()})
}

// DomainsHandler 返回全部业务域。
func (a *API) DomainsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"domains": models.AllDomains})
}

// PromptHandler 返回分类器提示词以及 schema。
func (a *API) PromptHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"prompt": mapping.ClassifierPrompt(), "schema": mapping.GetSchema()})
}

// MapHandler 把事实映射为意图契约。
func (a *API) MapHandler(c *gin.Context) {
	var req mapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpmiddleware.WriteError(c, models.InputError(models.StageInputValidation, "Invalid request payload"), models.StageInputValidation)
		return
	}

	contract, err := a.mapper.MapValidated(req.Facts, req.Targets)
	if err != nil {
		a.logger.WithError(models.ErrorInfoFrom(err)).Warn("mapping failed")
		httpmiddleware.WriteError(c, err, models.StageMapping)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "intentionContract": contract})
}

// HealthHandler 健康检查。
func (a *API) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "deterministic-mapping", "timestamp": models.FormatTime(time.Now())})
}

// InfoHandler 返回服务信息。
func (a *API) InfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "Speech-to-Act Deterministic Mapping",
		"version":     "1.0.0",
		"description": "Exposes schema for semantic-normalization and maps facts to contracts",
		"endpoints": gin.H{
			"schema":     "GET /schema",
			"dimensions": "GET /schema/dimensions",
			"domains":    "GET /schema/domains",
			"prompt":     "GET /schema/prompt",
			"map":        "POST /map",
			"health":     "GET /health",
		},
	})
}
