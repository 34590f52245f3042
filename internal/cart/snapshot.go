package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/storefront-next/internal/cache"
)

// Snapshotter 购物车持久槽位
// 一个槽位保存一份完整序列化的行集合（全量覆盖，不做增量）
type Snapshotter interface {
	Load(ctx context.Context, slot string) (data []byte, found bool, err error)
	Save(ctx context.Context, slot string, data []byte) error
}

// RedisSnapshotter 基于共享 Redis 缓存的槽位实现
// Redis 未启用时读写都静默跳过，购物车退化为仅内存
type RedisSnapshotter struct{}

// NewRedisSnapshotter 创建 Redis 槽位
func NewRedisSnapshotter() *RedisSnapshotter {
	return &RedisSnapshotter{}
}

func cartSlotKey(slot string) string {
	return fmt.Sprintf("cart:%s", slot)
}

// Load 读取槽位内容
func (r *RedisSnapshotter) Load(ctx context.Context, slot string) ([]byte, bool, error) {
	val, found, err := cache.GetString(ctx, cartSlotKey(slot))
	if err != nil || !found {
		return nil, found, err
	}
	return []byte(val), true, nil
}

// Save 覆盖槽位内容（持久保存，不设过期）
func (r *RedisSnapshotter) Save(ctx context.Context, slot string, data []byte) error {
	return cache.SetString(ctx, cartSlotKey(slot), string(data), 0)
}

// MemorySnapshotter 进程内槽位实现（测试与未配置 Redis 的部署）
type MemorySnapshotter struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemorySnapshotter 创建内存槽位
func NewMemorySnapshotter() *MemorySnapshotter {
	return &MemorySnapshotter{slots: make(map[string][]byte)}
}

// Load 读取槽位内容
func (m *MemorySnapshotter) Load(ctx context.Context, slot string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.slots[slot]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

// Save 覆盖槽位内容
func (m *MemorySnapshotter) Save(ctx context.Context, slot string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.slots[slot] = stored
	return nil
}

// Put 直接写入槽位原始内容（测试用）
func (m *MemorySnapshotter) Put(slot string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = data
}
