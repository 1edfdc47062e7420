package models

import "time"

// PendingIntent 是等待人工确认的契约，连同其预览一起由待确认存储独占持有。
type PendingIntent struct {
	ID        string             `json:"id"`
	Contract  *IntentionContract `json:"contract"`
	Preview   *PreviewPayload    `json:"preview"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// ExpiredAt 判断在 now 时刻该条目是否已过期。
func (p *PendingIntent) ExpiredAt(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Clone 返回条目的拷贝。预览在存入后只读，因此共享同一指针。
func (p *PendingIntent) Clone() *PendingIntent {
	if p == nil {
		return nil
	}
	out := *p
	out.Contract = p.Contract.Clone()
	return &out
}
