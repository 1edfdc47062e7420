package httpmiddleware

import (
	"net/http"
	"time"

	"speech_to_act/backend/go/internal/models"
	"speech_to_act/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceHeader carries the request trace id between services.
const TraceHeader = "X-Trace-ID"

const traceKey = "traceID"

// TraceID 为每个请求分配 trace id（沿用上游传入的值），并回写到响应头。
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(TraceHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(traceKey, id)
		c.Header(TraceHeader, id)
		c.Next()
	}
}

// GetTraceID 返回 TraceID 中间件写入的 trace id。
func GetTraceID(c *gin.Context) string {
	return c.GetString(traceKey)
}

// RequestLogger 记录每个请求的方法、路径、状态码和耗时。
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithRequest(models.RequestInfo{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			RemoteAddr: c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			Status:     c.Writer.Status(),
			LatencyMS:  time.Since(start).Milliseconds(),
		})
		if id := GetTraceID(c); id != "" {
			entry = entry.WithTrace(id)
		}
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request failed")
		case c.Writer.Status() >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

// WriteError 把错误写成统一的失败信封；未带阶段标签的错误按 500 处理。
func WriteError(c *gin.Context, err error, fallback models.Stage) {
	if se, ok := models.AsStageError(err); ok {
		c.JSON(se.Status, se.Envelope())
		return
	}
	c.JSON(http.StatusInternalServerError, models.ErrorEnvelope{Success: false, Stage: fallback, Error: err.Error()})
}
