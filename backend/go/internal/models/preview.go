package models

// EntityOperation 是后端对实体执行的操作类型。
type EntityOperation string

const (
	OperationCreate EntityOperation = "CREATE"
	OperationUpdate EntityOperation = "UPDATE"
	OperationDelete EntityOperation = "DELETE"
)

// AffectedEntity 描述一次提交将影响的后端实体。
type AffectedEntity struct {
	EntityType string                 `json:"entityType"`
	EntityID   string                 `json:"entityId,omitempty"`
	Targets    []string               `json:"targets"`
	Operation  EntityOperation        `json:"operation"`
	Changes    map[string]interface{} `json:"changes,omitempty"`
}

// PreviewPayload 是后端 dry-run 的结果。
type PreviewPayload struct {
	AffectedEntities []AffectedEntity `json:"affectedEntities"`
	Description      string           `json:"description"`
	Warnings         []string         `json:"warnings,omitempty"`
}

// PreviewResponse 是后端 preview 接口的响应体。
type PreviewResponse struct {
	Success bool              `json:"success"`
	Preview *PreviewPayload   `json:"preview,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// CommitResponse 是后端 commit 接口的响应体。
type CommitResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	MockID    string            `json:"mockId,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// CommitReceipt 是一次成功提交的回执。
type CommitReceipt struct {
	Message   string `json:"message"`
	MockID    string `json:"mock_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
