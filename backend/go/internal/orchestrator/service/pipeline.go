// Package service 实现流水线编排：事实映射为契约后，按工作流交给意图网关预览或提交。
// 编排服务本身不保存任何状态。
package service

import (
	"context"

	"speech_to_act/backend/go/internal/mapping"
	"speech_to_act/backend/go/internal/models"
	"speech_to_act/backend/go/pkg/logger"
)

// Gateway 定义了编排服务对意图网关的依赖。
type Gateway interface {
	Preview(ctx context.Context, contract *models.IntentionContract) (*models.GatewayPreviewResponse, error)
	Commit(ctx context.Context, contract *models.IntentionContract) (*models.GatewayCommitResponse, error)
	Confirm(ctx context.Context, pendingID string) (*models.GatewayCommitResponse, error)
	Reject(ctx context.Context, pendingID string) (*models.GatewayRejectResponse, error)
	ListPending(ctx context.Context) (*models.PendingListResponse, error)
	HealthCheck(ctx context.Context) bool
}

// HealthStatus 描述编排服务看到的网关状态。
type HealthStatus struct {
	GatewayAvailable bool
	GatewayURL       string
}

// Pipeline 串联映射器与意图网关。
type Pipeline struct {
	mapper     *mapping.Mapper
	gateway    Gateway
	logger     *logger.Logger
	gatewayURL string
}

// NewPipeline 创建一个新的 Pipeline。
func NewPipeline(mapper *mapping.Mapper, gateway Gateway, logger *logger.Logger, gatewayURL string) *Pipeline {
	return &Pipeline{mapper: mapper, gateway: gateway, logger: logger, gatewayURL: gatewayURL}
}

// ParseWorkflow 解析工作流名称，空字符串为 safe。
func ParseWorkflow(w models.Workflow) (models.Workflow, error) {
	switch w {
	case "", models.WorkflowSafe:
		return models.WorkflowSafe, nil
	case models.WorkflowFast:
		return models.WorkflowFast, nil
	default:
		return "", models.InputError(models.StageInputValidation, "workflow must be 'safe' or 'fast'",
			models.ValidationError{Field: "workflow", Message: "Unknown workflow: " + string(w), Code: models.CodeInvalidValue})
	}
}

// Process 把事实映射为契约，再按工作流预览或直接提交。
// 空事实或空目标先于工作流名称被检查。
func (p *Pipeline) Process(ctx context.Context, req models.ProcessRequest) (*models.ProcessResponse, error) {
	if err := mapping.CheckInput(req.Facts, req.Targets); err != nil {
		return nil, err
	}
	workflow, err := ParseWorkflow(req.Workflow)
	if err != nil {
		return nil, err
	}

	contract, err := p.mapper.MapValidated(req.Facts, req.Targets)
	if err != nil {
		p.logFailure(err, "mapping failed")
		return nil, err
	}

	out := &models.ProcessResponse{
		Success:           true,
		Workflow:          workflow,
		IntentionContract: models.NewContractView(contract),
	}

	if workflow == models.WorkflowFast {
		resp, err := p.gateway.Commit(ctx, contract)
		if err != nil {
			p.logFailure(err, "gateway commit failed")
			return nil, err
		}
		receipt := resp.Receipt()
		out.Stage = models.StageCommitted
		out.Committed = &receipt
		return out, nil
	}

	resp, err := p.gateway.Preview(ctx, contract)
	if err != nil {
		p.logFailure(err, "gateway preview failed")
		return nil, err
	}
	out.Stage = models.StagePendingConfirmation
	out.PendingID = resp.PendingID
	out.ExpiresAt = resp.ExpiresAt
	out.Preview = resp.Preview
	return out, nil
}

// Confirm 让网关提交一个待确认意图。
func (p *Pipeline) Confirm(ctx context.Context, pendingID string) (*models.GatewayCommitResponse, error) {
	if err := requirePendingID(pendingID); err != nil {
		return nil, err
	}
	resp, err := p.gateway.Confirm(ctx, pendingID)
	if err != nil {
		p.logFailure(err, "gateway confirm failed")
		return nil, err
	}
	return resp, nil
}

// Reject 让网关丢弃一个待确认意图。
func (p *Pipeline) Reject(ctx context.Context, pendingID string) (*models.GatewayRejectResponse, error) {
	if err := requirePendingID(pendingID); err != nil {
		return nil, err
	}
	resp, err := p.gateway.Reject(ctx, pendingID)
	if err != nil {
		p.logFailure(err, "gateway reject failed")
		return nil, err
	}
	return resp, nil
}

// ListPending 返回网关中仍在等待确认的意图。
func (p *Pipeline) ListPending(ctx context.Context) (*models.PendingListResponse, error) {
	resp, err := p.gateway.ListPending(ctx)
	if err != nil {
		p.logFailure(err, "gateway list pending failed")
		return nil, err
	}
	return resp, nil
}

// Health 报告网关是否可达。
func (p *Pipeline) Health(ctx context.Context) HealthStatus {
	return HealthStatus{GatewayAvailable: p.gateway.HealthCheck(ctx), GatewayURL: p.gatewayURL}
}

func requirePendingID(id string) error {
	if id == "" {
		return models.InputError(models.StageInputValidation, "pending_id is required",
			models.ValidationError{Field: "pending_id", Message: "pending_id is required", Code: models.CodeRequiredField})
	}
	return nil
}

func (p *Pipeline) logFailure(err error, msg string) {
	info := models.ErrorInfoFrom(err)
	p.logger.WithStage(models.Stage(info.Type)).WithError(info).Warn(msg)
}
