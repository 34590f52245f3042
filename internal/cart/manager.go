package cart

import (
	"container/list"
	"sync"
)

// 驻留内存的购物车数量上限，超出后淘汰最久未访问的会话。
// 淘汰只释放内存，持久槽位中的快照不受影响，下次访问回灌。
const defaultStoreCapacity = 4096

type managerEntry struct {
	profileID string
	store     *Store
}

// Manager 按购物车会话（浏览器匿名标识）管理 Store 实例
// 首次访问某会话时从持久槽位回灌；同一会话的并发持有者遵循
// 最后写入胜出，不做版本合并。
type Manager struct {
	mu       sync.Mutex
	snap     Snapshotter
	capacity int
	stores   map[string]*list.Element
	order    *list.List
}

// NewManager 创建购物车管理器
func NewManager(snap Snapshotter) *Manager {
	return NewManagerWithCapacity(snap, defaultStoreCapacity)
}

// NewManagerWithCapacity 创建指定驻留上限的购物车管理器
func NewManagerWithCapacity(snap Snapshotter, capacity int) *Manager {
	if capacity < 1 {
		capacity = defaultStoreCapacity
	}
	return &Manager{
		snap:     snap,
		capacity: capacity,
		stores:   make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get 获取指定会话的购物车，不存在时创建并回灌
func (m *Manager) Get(profileID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	if elem, ok := m.stores[profileID]; ok {
		m.order.MoveToFront(elem)
		return elem.Value.(*managerEntry).store
	}
	store := NewStore(profileID, m.snap)
	m.stores[profileID] = m.order.PushFront(&managerEntry{profileID: profileID, store: store})
	if len(m.stores) > m.capacity {
		m.evictOldestLocked()
	}
	return store
}

func (m *Manager) evictOldestLocked() {
	elem := m.order.Back()
	if elem == nil {
		return
	}
	m.order.Remove(elem)
	delete(m.stores, elem.Value.(*managerEntry).profileID)
}

// Evict 从内存释放指定会话的购物车（持久槽位不受影响）
func (m *Manager) Evict(profileID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	elem, ok := m.stores[profileID]
	if !ok {
		return
	}
	m.order.Remove(elem)
	delete(m.stores, profileID)
}

// Resident 当前驻留内存的购物车数量
func (m *Manager) Resident() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}
