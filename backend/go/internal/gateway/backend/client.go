// Package backend 是意图网关访问记录后端的客户端。
package backend

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

// Doer 是发送 HTTP 请求的最小接口，*pkg/http.Client 和 *http.Client 都满足它。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client 调用后端的 preview / commit / health 接口。
//
// 后端返回可解析的 {success:false, errors} 时视为业务拒绝；
// 网络错误、熔断打开或无法解析的响应都视为连接失败。
type Client struct {
	baseURL string
	doer    Doer
}

// NewClient 创建后端客户端，baseURL 末尾的斜杠会被去掉。
func NewClient(baseURL string, doer Doer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: httpclient.DefaultRequestTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), doer: doer}
}

// BaseURL 返回后端的基础地址。
func (c *Client) BaseURL() string { return c.baseURL }

// Preview 请求后端对契约做 dry-run。
func (c *Client) Preview(ctx context.Context, contract *models.IntentionContract) (*models.PreviewPayload, error) {
	var resp models.PreviewResponse
	if err := c.post(ctx, "/api/intents/preview", contract, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, models.RejectionError(models.StageBackendPreview, resp.Errors)
	}
	if resp.Preview == nil {
		return nil, models.ConnectionError(models.StageBackendConnection, "backend", fmt.Errorf("preview response has no preview"))
	}
	return resp.Preview, nil
}

// Commit 请求后端提交契约并返回回执。
func (c *Client) Commit(ctx context.Context, contract *models.IntentionContract) (*models.CommitReceipt, error) {
	var resp models.CommitResponse
	if err := c.post(ctx, "/api/intents/commit", contract, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, models.RejectionError(models.StageBackendCommit, resp.Errors)
	}
	return &models.CommitReceipt{
		Message:   resp.Message,
		MockID:    resp.MockID,
		Timestamp: resp.Timestamp,
	}, nil
}

// HealthCheck 报告后端是否可达并返回 2xx。
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

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("序列化请求体失败: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return models.ConnectionError(models.StageBackendConnection, "backend", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return models.ConnectionError(models.StageBackendConnection, "backend", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ConnectionError(models.StageBackendConnection, "backend", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return models.ConnectionError(models.StageBackendConnection, "backend",
			fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err))
	}
	return nil
}
