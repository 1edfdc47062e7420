package models

// 校验错误码属于对外契约的一部分，不得重命名。
const (
	CodeMissingContract         = "MISSING_CONTRACT"
	CodeMissingDomain           = "MISSING_DOMAIN"
	CodeInvalidDomain           = "INVALID_DOMAIN"
	CodeMissingType             = "MISSING_TYPE"
	CodeMissingTargets          = "MISSING_TARGETS"
	CodeInvalidTargetsFormat    = "INVALID_TARGETS_FORMAT"
	CodeEmptyTargets            = "EMPTY_TARGETS"
	CodeMissingAttributes       = "MISSING_ATTRIBUTES"
	CodeInvalidAttributesFormat = "INVALID_ATTRIBUTES_FORMAT"
	CodeInvalidConfidence       = "INVALID_CONFIDENCE"
	CodeRequiredField           = "REQUIRED_FIELD"
	CodeInvalidValue            = "INVALID_VALUE"
	CodeInvalidType             = "INVALID_TYPE"
	CodeEmptyArray              = "EMPTY_ARRAY"
)

// ValidationError 描述一条字段级校验错误。
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
