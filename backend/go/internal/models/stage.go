package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Stage 是产生某个成功或失败结果的流水线阶段名称。
// 上游调用方依赖它区分校验失败、后端拒绝与网络故障，因此取值属于对外契约。
type Stage string

const (
	StageInputValidation     Stage = "input_validation"
	StageMappingValidation   Stage = "mapping_validation"
	StageMapping             Stage = "mapping"
	StageLocalValidation     Stage = "local_validation"
	StageBackendPreview      Stage = "backend_preview"
	StageBackendCommit       Stage = "backend_commit"
	StageBackendConnection   Stage = "backend_connection"
	StagePendingLookup       Stage = "pending_lookup"
	StageGatewayPreview      Stage = "gateway_preview"
	StageGatewayCommit       Stage = "gateway_commit"
	StageGatewayConfirm      Stage = "gateway_confirm"
	StageGatewayReject       Stage = "gateway_reject"
	StageGatewayConnection   Stage = "gateway_connection"
	StagePendingConfirmation Stage = "pending_confirmation"
	StageCommitted           Stage = "committed"
	StageRejected            Stage = "rejected"
)

// StageError 是带阶段标签的失败结果。服务内部以 error 传递，
// 只有在 HTTP 边界才被转换为状态码和响应信封。
type StageError struct {
	Stage   Stage
	Status  int
	Message string
	Errors  []ValidationError
	Err     error
}

func (e *StageError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%s: %d validation error(s), first: %s", e.Stage, len(e.Errors), e.Errors[0].Message)
	}
	return string(e.Stage)
}

func (e *StageError) Unwrap() error { return e.Err }

// Envelope 返回该错误对外的 JSON 信封。
func (e *StageError) Envelope() ErrorEnvelope {
	return ErrorEnvelope{
		Success: false,
		Stage:   e.Stage,
		Error:   e.Message,
		Errors:  e.Errors,
	}
}

// ErrorEnvelope 是所有服务失败响应的统一结构。
type ErrorEnvelope struct {
	Success bool              `json:"success"`
	Stage   Stage             `json:"stage,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// AsStageError 从错误链中取出 StageError。
func AsStageError(err error) (*StageError, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// InputError 构造调用方输入错误 (400)。
func InputError(stage Stage, message string, errs ...ValidationError) *StageError {
	return &StageError{Stage: stage, Status: http.StatusBadRequest, Message: message, Errors: errs}
}

// RejectionError 构造下游业务拒绝 (400)，原样携带下游返回的错误。
func RejectionError(stage Stage, errs []ValidationError) *StageError {
	return &StageError{Stage: stage, Status: http.StatusBadRequest, Errors: errs}
}

// ConnectionError 构造下游连接失败 (503)，调用方可以安全重试。
func ConnectionError(stage Stage, target string, cause error) *StageError {
	msg := fmt.Sprintf("Failed to connect to %s", target)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &StageError{Stage: stage, Status: http.StatusServiceUnavailable, Message: msg, Err: cause}
}

// NotFoundError 构造待确认意图不存在或已过期的错误 (404)。
func NotFoundError(id string) *StageError {
	return &StageError{
		Stage:   StagePendingLookup,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Pending intent %q not found or expired", id),
	}
}

// ConflictError 构造同一 id 已有确认/拒绝在进行中的错误 (409)。
func ConflictError(stage Stage, id string) *StageError {
	return &StageError{
		Stage:   stage,
		Status:  http.StatusConflict,
		Message: fmt.Sprintf("Pending intent %q is already being processed", id),
	}
}
