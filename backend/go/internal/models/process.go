package models

// Workflow 决定契约是先预览等待确认，还是直接提交。
type Workflow string

const (
	WorkflowSafe Workflow = "safe"
	WorkflowFast Workflow = "fast"
)

// ProcessRequest 是 POST /api/process 的请求体。
type ProcessRequest struct {
	Facts    []CanonicalFact `json:"facts"`
	Targets  []string        `json:"targets"`
	Workflow Workflow        `json:"workflow,omitempty"`
}

// ContractView 是响应中回显的契约内容。
type ContractView struct {
	Domain     Domain                 `json:"domain"`
	Type       string                 `json:"type"`
	Targets    []string               `json:"targets"`
	Attributes map[string]interface{} `json:"attributes"`
}

// NewContractView 从契约构造回显视图。
func NewContractView(c *IntentionContract) ContractView {
	return ContractView{Domain: c.Domain, Type: c.Type, Targets: c.Targets, Attributes: c.Attributes}
}

// ProcessResponse 是流水线处理成功后的响应。
// safe 流程填充 PendingID/ExpiresAt/Preview，fast 流程填充 Committed。
type ProcessResponse struct {
	Success           bool            `json:"success"`
	Stage             Stage           `json:"stage"`
	Workflow          Workflow        `json:"workflow"`
	IntentionContract ContractView    `json:"intention_contract"`
	PendingID         string          `json:"pending_id,omitempty"`
	ExpiresAt         string          `json:"expires_at,omitempty"`
	Preview           *PreviewPayload `json:"preview,omitempty"`
	Committed         *CommitReceipt  `json:"committed,omitempty"`
}
