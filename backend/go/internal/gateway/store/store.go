// Package store 持有等待人工确认的意图，并按过期时间被动淘汰。
package store

import (
	"context"
	"time"

	"speech_to_act/backend/go/internal/models"

	"github.com/google/uuid"
)

// DefaultTTL 是待确认意图的默认存活时间。
const DefaultTTL = 5 * time.Minute

// PendingStore 定义了待确认意图存储的接口。
//
// 状态机：Add 创建条目 → 存活直到过期或被移除 → Remove（确认或拒绝时调用）或
// 被动过期（Get/List 观察到 now > ExpiresAt）。Get/List 返回的条目永远不会已过期。
type PendingStore interface {
	// Add 先清理过期条目，再以新生成的 id 存入契约与预览。
	Add(ctx context.Context, contract *models.IntentionContract, preview *models.PreviewPayload) (*models.PendingIntent, error)
	// Get 返回仍然存活的条目；不存在或已过期时返回 nil, nil，过期条目会被一并淘汰。
	Get(ctx context.Context, id string) (*models.PendingIntent, error)
	// Remove 无条件删除条目并报告其是否存在。第二次删除返回 false。
	Remove(ctx context.Context, id string) (bool, error)
	// List 清理后返回全部存活条目的快照，按插入顺序排列。
	List(ctx context.Context) ([]*models.PendingIntent, error)
}

// NewID 生成待确认意图的 id。
func NewID() string {
	return "pending-" + uuid.NewString()
}

// newRecord 按 now 和 ttl 构造条目，契约被深拷贝以隔离调用方。
func newRecord(id string, contract *models.IntentionContract, preview *models.PreviewPayload, now time.Time, ttl time.Duration) *models.PendingIntent {
	return &models.PendingIntent{
		ID:        id,
		Contract:  contract.Clone(),
		Preview:   preview,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
