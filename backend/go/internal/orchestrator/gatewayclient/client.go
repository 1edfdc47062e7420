// Package gatewayclient 是编排服务访问意图网关的 HTTP 客户端。
package gatewayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"speech_to_act/backend/go/internal/models"
	httpclient "speech_to_act/backend/go/pkg/http"
)

const target = "intent gateway"

// Doer 是发送 HTTP 请求的最小接口。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client 调用意图网关的各个接口。
//
// 网关返回的失败信封会被还原为 *models.StageError，保留网关给出的阶段和状态码；
// 无法连接或响应无法解析时返回 gateway_connection (503)。
type Client struct {
	baseURL string
	doer    Doer
}

// New 创建网关客户端。
func New(baseURL string, doer Doer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: httpclient.DefaultRequestTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), doer: doer}
}

// BaseURL 返回网关的基础地址。
func (c *Client) BaseURL() string { return c.baseURL }

// Preview 请求网关预览契约并存为待确认意图。
func (c *Client) Preview(ctx context.Context, contract *models.IntentionContract) (*models.GatewayPreviewResponse, error) {
	var out models.GatewayPreviewResponse
	if err := c.do(ctx, http.MethodPost, "/api/intents/preview", contract, &out, models.StageGatewayPreview); err != nil {
		return nil, err
	}
	return &out, nil
}

// Commit 请求网关直接提交契约。
func (c *Client) Commit(ctx context.Context, contract *models.IntentionContract) (*models.GatewayCommitResponse, error) {
	var out models.GatewayCommitResponse
	if err := c.do(ctx, http.MethodPost, "/api/intents/commit", contract, &out, models.StageGatewayCommit); err != nil {
		return nil, err
	}
	return &out, nil
}

// Confirm 确认一个待确认意图。
func (c *Client) Confirm(ctx context.Context, pendingID string) (*models.GatewayCommitResponse, error) {
	var out models.GatewayCommitResponse
	body := models.PendingIDRequest{PendingID: pendingID}
	if err := c.do(ctx, http.MethodPost, "/api/intents/confirm", body, &out, models.StageGatewayConfirm); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reject 拒绝一个待确认意图。
func (c *Client) Reject(ctx context.Context, pendingID string) (*models.GatewayRejectResponse, error) {
	var out models.GatewayRejectResponse
	body := models.PendingIDRequest{PendingID: pendingID}
	if err := c.do(ctx, http.MethodPost, "/api/intents/reject", body, &out, models.StageGatewayReject); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPending 列出网关中的待确认意图。
func (c *Client) ListPending(ctx context.Context) (*models.PendingListResponse, error) {
	var out models.PendingListResponse
	if err := c.do(ctx, http.MethodGet, "/api/intents/pending", nil, &out, models.StagePendingLookup); err != nil {
		return nil, err
	}
	return &out, nil
}

// HealthCheck 报告网关是否可达并返回 2xx。
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.doer.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, fallback models.Stage) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return models.ConnectionError(models.StageGatewayConnection, target, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return models.ConnectionError(models.StageGatewayConnection, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ConnectionError(models.StageGatewayConnection, target, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.Unmarshal(data, out); err != nil {
			return models.ConnectionError(models.StageGatewayConnection, target,
				fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err))
		}
		return nil
	}
	return decodeFailure(resp.StatusCode, data, fallback)
}

// decodeFailure 把网关的失败信封还原为带阶段标签的错误。
func decodeFailure(status int, data []byte, fallback models.Stage) error {
	var env models.ErrorEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return models.ConnectionError(models.StageGatewayConnection, target,
			fmt.Errorf("unexpected response (status %d): %w", status, err))
	}
	stage := env.Stage
	if stage == "" {
		stage = fallback
	}
	return &models.StageError{Stage: stage, Status: status, Message: env.Error, Errors: env.Errors}
}
