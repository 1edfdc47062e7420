package models

// RequestInfo 存储了关于 HTTP 请求的上下文信息。
type RequestInfo struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent"`
	Status     int    `json:"status,omitempty"`
	LatencyMS  int64  `json:"latency_ms,omitempty"`
}

// ErrorInfo 存储了关于错误的结构化信息。
type ErrorInfo struct {
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`        // 错误类型，通常是阶段名，例如 "backend_connection"
	StatusCode int    `json:"status_code,omitempty"` // 相关的HTTP状态码
}

// ErrorInfoFrom 把任意错误转换为 ErrorInfo；带阶段标签的错误会保留阶段和状态码。
func ErrorInfoFrom(err error) ErrorInfo {
	if se, ok := AsStageError(err); ok {
		return ErrorInfo{Message: se.Error(), Type: string(se.Stage), StatusCode: se.Status}
	}
	return ErrorInfo{Message: err.Error()}
}
