package store

import (
	"container/list"
	"context"
	"sync"
	"time"

	"speech_to_act/backend/go/internal/models"
)

// MemoryStore 是进程内的过期映射：条目按 id 索引，同时挂在插入顺序链表上，
// 过期在每次访问时检查，没有后台清理协程。
type MemoryStore struct {
	ttl   time.Duration
	now   func() time.Time
	newID func() string

	mu    sync.Mutex
	order *list.List
	index map[string]*list.Element
}

// MemoryOption 配置 MemoryStore。
type MemoryOption func(*MemoryStore)

// WithClock 替换存储使用的时钟。
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// WithIDGenerator 替换 id 生成函数。
func WithIDGenerator(gen func() string) MemoryOption {
	return func(s *MemoryStore) { s.newID = gen }
}

// NewMemoryStore 创建一个 MemoryStore；ttl <= 0 时使用 DefaultTTL。
func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		ttl:   ttl,
		now:   time.Now,
		newID: NewID,
		order: list.New(),
		index: make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL 返回条目的存活时间。
func (s *MemoryStore) TTL() time.Duration { return s.ttl }

func (s *MemoryStore) Add(_ context.Context, contract *models.IntentionContract, preview *models.PreviewPayload) (*models.PendingIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.cleanup(now)

	id := s.newID()
	// id 只是尽力唯一；撞上仍存活的条目时重新生成。
	for s.index[id] != nil {
		id = s.newID()
	}

	rec := newRecord(id, contract, preview, now, s.ttl)
	s.index[id] = s.order.PushBack(rec)
	return rec.Clone(), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.PendingIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.cleanup(now)

	el, ok := s.index[id]
	if !ok {
		return nil, nil
	}
	rec := el.Value.(*models.PendingIntent)
	if rec.ExpiredAt(now) {
		s.removeElement(el)
		return nil, nil
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Remove(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.index[id]
	if !ok {
		return false, nil
	}
	s.removeElement(el)
	return true, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.PendingIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleanup(s.now())
	out := make([]*models.PendingIntent, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*models.PendingIntent).Clone())
	}
	return out, nil
}

// Len 返回当前持有的条目数，包括尚未被观察到的过期条目。
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Clear 删除全部条目。
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.Init()
	s.index = make(map[string]*list.Element)
}

// cleanup 淘汰所有已过期的条目。调用方必须持有锁。
func (s *MemoryStore) cleanup(now time.Time) {
	for el := s.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*models.PendingIntent).ExpiredAt(now) {
			s.removeElement(el)
		}
		el = next
	}
}

// removeElement 从链表和索引中移除元素。调用方必须持有锁。
func (s *MemoryStore) removeElement(el *list.Element) {
	s.order.Remove(el)
	delete(s.index, el.Value.(*models.PendingIntent).ID)
}
