package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

// Line 购物车行项目
// ID 是唯一合并键；Size/Color 仅作展示，不参与合并
type Line struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Price    models.Money `json:"price"`
	Image    string       `json:"image"`
	Quantity int          `json:"quantity"`
	Size     string       `json:"size,omitempty"`
	Color    string       `json:"color,omitempty"`
}

// AddInput 加购输入（不含数量）
type AddInput struct {
	ID    string
	Name  string
	Price models.Money
	Image string
	Size  string
	Color string
}

// Store 购物车状态容器
// 内存中的行集合是权威数据；每次变更后全量快照写入持久槽位。
// 持久化失败只记录日志，绝不向调用方抛出。
type Store struct {
	mu    sync.Mutex
	slot  string
	snap  Snapshotter
	lines []Line
}

// NewStore 创建并回灌购物车
// 槽位数据损坏或读取失败时从空购物车开始
func NewStore(slot string, snap Snapshotter) *Store {
	s := &Store{
		slot:  slot,
		snap:  snap,
		lines: make([]Line, 0),
	}
	s.rehydrate()
	return s
}

func (s *Store) rehydrate() {
	if s.snap == nil {
		return
	}
	data, found, err := s.snap.Load(context.Background(), s.slot)
	if err != nil {
		logger.Warnw("cart_snapshot_load_failed", "slot", s.slot, "error", err)
		return
	}
	if !found {
		return
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		logger.Warnw("cart_snapshot_corrupt", "slot", s.slot, "error", err)
		return
	}
	restored := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line.ID == "" || line.Quantity < 1 {
			continue
		}
		restored = append(restored, line)
	}
	s.lines = restored
}

// AddLine 加入商品
// 已存在同 ID 行时只累加数量，展示属性保持首次写入的值；数量小于 1 时按 1 处理
func (s *Store) AddLine(input AddInput, quantity int) {
	if input.ID == "" {
		return
	}
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ID == input.ID {
			s.lines[i].Quantity += quantity
			s.persist()
			return
		}
	}
	s.lines = append(s.lines, Line{
		ID:       input.ID,
		Name:     input.Name,
		Price:    input.Price,
		Image:    input.Image,
		Quantity: quantity,
		Size:     input.Size,
		Color:    input.Color,
	})
	s.persist()
}

// RemoveLine 移除行项目，ID 不存在时为 no-op
func (s *Store) RemoveLine(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

// SetQuantity 设置行项目数量
// 数量小于 1 等价于移除；ID 不存在时为 no-op
func (s *Store) SetQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		s.removeLocked(id)
		return
	}
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines[i].Quantity = quantity
			s.persist()
			return
		}
	}
}

// Clear 清空购物车
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make([]Line, 0)
	s.persist()
}

// Lines 返回行集合副本，保持插入顺序
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	return lines
}

// Subtotal 小计，始终按当前行集合重新计算
func (s *Store) Subtotal() models.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, line := range s.lines {
		sum = sum.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return models.NewMoneyFromDecimal(sum)
}

func (s *Store) removeLocked(id string) {
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.persist()
			return
		}
	}
}

// persist 全量快照写入，调用方需持有锁
func (s *Store) persist() {
	if s.snap == nil {
		return
	}
	data, err := json.Marshal(s.lines)
	if err != nil {
		logger.Warnw("cart_snapshot_encode_failed", "slot", s.slot, "error", err)
		return
	}
	if err := s.snap.Save(context.Background(), s.slot, data); err != nil {
		logger.Warnw("cart_snapshot_save_failed", "slot", s.slot, "error", err)
	}
}
