// Package service 实现意图网关的协调逻辑：本地校验、后端预览、待确认存储以及确认/拒绝状态机。
package service

import (
	"context"
	"sync"
	"time"

	"speech_to_act/backend/go/internal/contract"
	"speech_to_act/backend/go/internal/gateway/store"
	"speech_to_act/backend/go/internal/models"
	"speech_to_act/backend/go/pkg/logger"
)

// Backend 定义了协调器对记录后端的依赖。
type Backend interface {
	Preview(ctx context.Context, contract *models.IntentionContract) (*models.PreviewPayload, error)
	Commit(ctx context.Context, contract *models.IntentionContract) (*models.CommitReceipt, error)
	HealthCheck(ctx context.Context) bool
}

// EventPublisher 定义了发布意图生命周期事件的接口。
type EventPublisher interface {
	Publish(ctx context.Context, event *models.IntentEvent) error
}

// PreviewResult 是预览成功后返回给调用方的内容。
type PreviewResult struct {
	PendingID string
	ExpiresAt time.Time
	Preview   *models.PreviewPayload
}

// CommitResult 是提交成功后的回执及契约摘要。
type CommitResult struct {
	Receipt  *models.CommitReceipt
	Contract models.ContractSummary
}

// HealthStatus 描述网关及其后端的健康状态。
type HealthStatus struct {
	BackendAvailable bool
	BackendURL       string
}

// Coordinator 串联校验、后端调用和待确认存储。
// 同一 pending id 同时只允许一个确认或拒绝在执行。
type Coordinator struct {
	store      store.PendingStore
	backend    Backend
	publisher  EventPublisher
	logger     *logger.Logger
	backendURL string
	now        func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Option 配置 Coordinator。
type Option func(*Coordinator)

// WithPublisher 设置事件发布器，默认不发布。
func WithPublisher(p EventPublisher) Option {
	return func(c *Coordinator) { c.publisher = p }
}

// WithBackendURL 设置健康检查中报告的后端地址。
func WithBackendURL(url string) Option {
	return func(c *Coordinator) { c.backendURL = url }
}

// WithClock 替换事件时间戳使用的时钟。
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator 创建一个新的 Coordinator。
func NewCoordinator(store store.PendingStore, backend Backend, logger *logger.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		backend:  backend,
		logger:   logger,
		now:      time.Now,
		inFlight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Preview 校验契约、请求后端预览，并把结果存为待确认意图。
// 校验失败时不会调用后端，也不会写入存储。
func (c *Coordinator) Preview(ctx context.Context, candidate interface{}) (*PreviewResult, error) {
	ic, err := c.validate(candidate)
	if err != nil {
		return nil, err
	}

	preview, err := c.backend.Preview(ctx, ic)
	if err != nil {
		c.logFailure(err, "backend preview failed")
		return nil, err
	}

	pending, err := c.store.Add(ctx, ic, preview)
	if err != nil {
		c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Failed to store pending intent")
		return nil, models.ConnectionError(models.StagePendingLookup, "pending store", err)
	}

	c.publish(ctx, &models.IntentEvent{Type: models.EventPreviewed, PendingID: pending.ID, Contract: pending.Contract})
	return &PreviewResult{PendingID: pending.ID, ExpiresAt: pending.ExpiresAt, Preview: pending.Preview}, nil
}

// ListPending 返回全部存活的待确认意图。
func (c *Coordinator) ListPending(ctx context.Context) ([]*models.PendingIntent, error) {
	list, err := c.store.List(ctx)
	if err != nil {
		return nil, models.ConnectionError(models.StagePendingLookup, "pending store", err)
	}
	return list, nil
}

// Confirm 用存储中的契约提交待确认意图。后端失败时条目保持不变，可以重试。
func (c *Coordinator) Confirm(ctx context.Context, id string) (*CommitResult, error) {
	if err := c.claim(id, models.StageGatewayConfirm); err != nil {
		return nil, err
	}
	defer c.release(id)

	pending, err := c.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	receipt, err := c.backend.Commit(ctx, pending.Contract)
	if err != nil {
		c.logFailure(err, "backend commit failed, pending intent kept")
		return nil, err
	}

	removed, err := c.store.Remove(ctx, id)
	if err != nil || !removed {
		// 后端已经提交，回执仍然有效。
		entry := c.logger.WithPayload(map[string]interface{}{"pending_id": id, "mock_id": receipt.MockID})
		if err != nil {
			entry = entry.WithError(models.ErrorInfo{Message: err.Error()})
		}
		entry.Warn("pending intent could not be removed after commit")
	}

	c.publish(ctx, &models.IntentEvent{Type: models.EventCommitted, PendingID: id, Contract: pending.Contract, MockID: receipt.MockID})
	return &CommitResult{Receipt: receipt, Contract: pending.Contract.Summary()}, nil
}

// Reject 丢弃待确认意图，不调用后端。
func (c *Coordinator) Reject(ctx context.Context, id string) (models.ContractSummary, error) {
	if err := c.claim(id, models.StageGatewayReject); err != nil {
		return models.ContractSummary{}, err
	}
	defer c.release(id)

	pending, err := c.lookup(ctx, id)
	if err != nil {
		return models.ContractSummary{}, err
	}

	removed, err := c.store.Remove(ctx, id)
	if err != nil {
		return models.ContractSummary{}, models.ConnectionError(models.StagePendingLookup, "pending store", err)
	}
	if !removed {
		return models.ContractSummary{}, models.NotFoundError(id)
	}

	c.publish(ctx, &models.IntentEvent{Type: models.EventRejected, PendingID: id, Contract: pending.Contract})
	return pending.Contract.Summary(), nil
}

// Commit 跳过确认直接提交契约。
func (c *Coordinator) Commit(ctx context.Context, candidate interface{}) (*CommitResult, error) {
	ic, err := c.validate(candidate)
	if err != nil {
		return nil, err
	}

	receipt, err := c.backend.Commit(ctx, ic)
	if err != nil {
		c.logFailure(err, "backend direct commit failed")
		return nil, err
	}

	c.publish(ctx, &models.IntentEvent{Type: models.EventDirectCommitted, Contract: ic, MockID: receipt.MockID})
	return &CommitResult{Receipt: receipt, Contract: ic.Summary()}, nil
}

// Health 报告后端是否可达。
func (c *Coordinator) Health(ctx context.Context) HealthStatus {
	return HealthStatus{BackendAvailable: c.backend.HealthCheck(ctx), BackendURL: c.backendURL}
}

func (c *Coordinator) validate(candidate interface{}) (*models.IntentionContract, error) {
	res := contract.Validate(candidate)
	if !res.IsValid {
		c.logger.WithStage(models.StageLocalValidation).
			WithPayload(map[string]interface{}{"errors": res.Errors}).
			Warn("contract rejected by local validation")
		return nil, models.RejectionError(models.StageLocalValidation, res.Errors)
	}
	ic, err := contract.Decode(candidate)
	if err != nil {
		return nil, models.InputError(models.StageLocalValidation, err.Error())
	}
	return ic, nil
}

// claim 为 id 登记一个进行中的确认或拒绝。
func (c *Coordinator) claim(id string, stage models.Stage) error {
	if id == "" {
		return models.InputError(models.StageInputValidation, "pending_id is required",
			models.ValidationError{Field: "pending_id", Message: "pending_id is required", Code: models.CodeRequiredField})
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[id]; busy {
		return models.ConflictError(stage, id)
	}
	c.inFlight[id] = struct{}{}
	return nil
}

func (c *Coordinator) release(id string) {
	c.mu.Lock()
	delete(c.inFlight, id)
	c.mu.Unlock()
}

func (c *Coordinator) lookup(ctx context.Context, id string) (*models.PendingIntent, error) {
	pending, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, models.ConnectionError(models.StagePendingLookup, "pending store", err)
	}
	if pending == nil {
		return nil, models.NotFoundError(id)
	}
	return pending, nil
}

func (c *Coordinator) publish(ctx context.Context, event *models.IntentEvent) {
	if c.publisher == nil {
		return
	}
	event.OccurredAt = c.now().UTC()
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.WithError(models.ErrorInfo{Message: err.Error()}).
			WithPayload(map[string]interface{}{"event_type": string(event.Type)}).
			Warn("Failed to publish intent event")
	}
}

func (c *Coordinator) logFailure(err error, msg string) {
	info := models.ErrorInfoFrom(err)
	c.logger.WithStage(models.Stage(info.Type)).WithError(info).Warn(msg)
}
