package httpmiddleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"speech_to_act/backend/go/internal/models"
	"speech_to_act/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTraceID_GeneratesAndPropagates(t *testing.T) {
	r := gin.New()
	r.Use(TraceID(), RequestLogger(logger.Discard()))
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = GetTraceID(c)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(TraceHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "trace-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-123", seen)
	assert.Equal(t, "trace-123", w.Header().Get(TraceHeader))
}

func TestWriteError(t *testing.T) {
	r := gin.New()
	r.GET("/stage", func(c *gin.Context) {
		WriteError(c, models.NotFoundError("pending-x"), models.StageGatewayConfirm)
	})
	r.GET("/plain", func(c *gin.Context) {
		WriteError(c, errors.New("boom"), models.StageGatewayConfirm)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stage", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"stage":"pending_lookup"`)
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"stage":"gateway_confirm"`)
}
