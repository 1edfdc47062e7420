package models

// 以下类型是意图网关 HTTP 接口的成功响应体，编排服务按同样的结构解码。

// GatewayPreviewResponse 是 POST /api/intents/preview 的成功响应。
type GatewayPreviewResponse struct {
	Success   bool            `json:"success"`
	Stage     Stage           `json:"stage"`
	PendingID string          `json:"pending_id"`
	ExpiresAt string          `json:"expires_at"`
	Preview   *PreviewPayload `json:"preview"`
}

// GatewayCommitResponse 是确认或直接提交成功后的响应。
type GatewayCommitResponse struct {
	Success   bool            `json:"success"`
	Stage     Stage           `json:"stage"`
	Message   string          `json:"message"`
	MockID    string          `json:"mock_id"`
	Timestamp string          `json:"timestamp"`
	Contract  ContractSummary `json:"contract"`
}

// Receipt 返回响应中的提交回执部分。
func (r *GatewayCommitResponse) Receipt() CommitReceipt {
	return CommitReceipt{Message: r.Message, MockID: r.MockID, Timestamp: r.Timestamp}
}

// GatewayRejectResponse 是拒绝成功后的响应。
type GatewayRejectResponse struct {
	Success  bool            `json:"success"`
	Stage    Stage           `json:"stage"`
	Message  string          `json:"message"`
	Rejected ContractSummary `json:"rejected"`
}

// PendingSummary 是待确认列表中的一项。
type PendingSummary struct {
	PendingID   string   `json:"pending_id"`
	Domain      Domain   `json:"domain"`
	Type        string   `json:"type"`
	Targets     []string `json:"targets"`
	Description string   `json:"description"`
	Warnings    []string `json:"warnings,omitempty"`
	CreatedAt   string   `json:"created_at"`
	ExpiresAt   string   `json:"expires_at"`
}

// PendingListResponse 是 GET /api/intents/pending 的响应。
type PendingListResponse struct {
	Count   int              `json:"count"`
	Pending []PendingSummary `json:"pending"`
}

// PendingIDRequest 是确认和拒绝接口的请求体。
type PendingIDRequest struct {
	PendingID string `json:"pending_id"`
}

// NewPendingSummary 把待确认意图转换为列表项。
func NewPendingSummary(p *PendingIntent) PendingSummary {
	s := PendingSummary{
		PendingID: p.ID,
		Domain:    p.Contract.Domain,
		Type:      p.Contract.Type,
		Targets:   p.Contract.Targets,
		CreatedAt: FormatTime(p.CreatedAt),
		ExpiresAt: FormatTime(p.ExpiresAt),
	}
	if p.Preview != nil {
		s.Description = p.Preview.Description
		s.Warnings = p.Preview.Warnings
	}
	return s
}
