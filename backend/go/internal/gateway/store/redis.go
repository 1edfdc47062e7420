package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"speech_to_act/backend/go/internal/models"

	"github.com/go-redis/redis/v8"
)

// RedisStore 把待确认意图保存在 Redis 中，语义与 MemoryStore 相同：
// 每个条目以 JSON 存在 <prefix><id> 下并带有 PX 过期时间，
// 另有一个按过期时间打分的有序集合索引用于 List 保持插入顺序。
// Remove 依赖 DEL 的返回值，只有真正删除了键的调用方才算删除成功。
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore 创建一个 RedisStore；ttl <= 0 时使用 DefaultTTL。
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "pending:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl, now: time.Now}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) indexKey() string { return s.prefix + "index" }

func (s *RedisStore) Add(ctx context.Context, contract *models.IntentionContract, preview *models.PreviewPayload) (*models.PendingIntent, error) {
	now := s.now()
	if err := s.cleanup(ctx, now); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 3; attempt++ {
		rec := newRecord(NewID(), contract, preview, now, s.ttl)
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("序列化待确认意图失败: %w", err)
		}
		ok, err := s.client.SetNX(ctx, s.key(rec.ID), data, s.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("写入待确认意图失败: %w", err)
		}
		if !ok {
			continue
		}
		member := &redis.Z{Score: float64(rec.ExpiresAt.UnixMilli()), Member: rec.ID}
		if err := s.client.ZAdd(ctx, s.indexKey(), member).Err(); err != nil {
			return nil, fmt.Errorf("写入待确认索引失败: %w", err)
		}
		return rec, nil
	}
	return nil, errors.New("无法生成唯一的待确认 id")
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.PendingIntent, error) {
	now := s.now()
	if err := s.cleanup(ctx, now); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		s.client.ZRem(ctx, s.indexKey(), id)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取待确认意图失败: %w", err)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}
	if rec.ExpiredAt(now) {
		if _, err := s.Remove(ctx, id); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return rec, nil
}

func (s *RedisStore) Remove(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("删除待确认意图失败: %w", err)
	}
	if err := s.client.ZRem(ctx, s.indexKey(), id).Err(); err != nil {
		return false, fmt.Errorf("删除待确认索引失败: %w", err)
	}
	return n == 1, nil
}

func (s *RedisStore) List(ctx context.Context) ([]*models.PendingIntent, error) {
	now := s.now()
	if err := s.cleanup(ctx, now); err != nil {
		return nil, err
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("读取待确认索引失败: %w", err)
	}
	if len(ids) == 0 {
		return []*models.PendingIntent{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("批量读取待确认意图失败: %w", err)
	}

	out := make([]*models.PendingIntent, 0, len(values))
	var stale []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		rec, err := decodeRecord([]byte(raw))
		if err != nil {
			return nil, err
		}
		if rec.ExpiredAt(now) {
			continue
		}
		out = append(out, rec)
	}
	if len(stale) > 0 {
		s.client.ZRem(ctx, s.indexKey(), stale...)
	}
	return out, nil
}

// cleanup 删除索引中已过期的成员；键本身由 Redis 的 PX 过期负责。
func (s *RedisStore) cleanup(ctx context.Context, now time.Time) error {
	max := strconv.FormatInt(now.UnixMilli()-1, 10)
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", max).Err(); err != nil {
		return fmt.Errorf("清理待确认索引失败: %w", err)
	}
	return nil
}

func decodeRecord(data []byte) (*models.PendingIntent, error) {
	var rec models.PendingIntent
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("解析待确认意图失败: %w", err)
	}
	return &rec, nil
}
