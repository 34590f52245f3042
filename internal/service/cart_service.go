package service

import (
	"strings"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/models"
)

// CartLineInput 添加购物车条目的输入
type CartLineInput struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Price    models.Money `json:"price"`
	Image    string       `json:"image"`
	Quantity int          `json:"quantity"`
	Size     string       `json:"size"`
	Color    string       `json:"color"`
}

// CartView 购物车视图
type CartView struct {
	Lines    []cart.Line  `json:"lines"`
	Subtotal models.Money `json:"subtotal"`
}

// CartService 购物车服务,按访客档案维护各自的购物车
type CartService struct {
	manager  *cart.Manager
	checkout *CheckoutService
}

// NewCartService 创建购物车服务
func NewCartService(manager *cart.Manager, checkout *CheckoutService) *CartService {
	return &CartService{manager: manager, checkout: checkout}
}

// GetCart 获取购物车
func (s *CartService) GetCart(profileID string) CartView {
	return s.view(s.manager.Get(profileID))
}

// AddLine 添加条目,同 ID 条目合并数量
func (s *CartService) AddLine(profileID string, input CartLineInput) (CartView, error) {
	id := strings.TrimSpace(input.ID)
	name := strings.TrimSpace(input.Name)
	if id == "" || name == "" {
		return CartView{}, ErrCartItemInvalid
	}
	if input.Price.IsNegative() {
		return CartView{}, ErrCartItemInvalid
	}

	store := s.manager.Get(profileID)
	store.AddLine(cart.AddInput{
		ID:    id,
		Name:  name,
		Price: input.Price,
		Image: strings.TrimSpace(input.Image),
		Size:  strings.TrimSpace(input.Size),
		Color: strings.TrimSpace(input.Color),
	}, input.Quantity)
	return s.view(store), nil
}

// SetQuantity 设置条目数量,数量低于 1 时移除该条目
func (s *CartService) SetQuantity(profileID, lineID string, quantity int) (CartView, error) {
	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return CartView{}, ErrCartItemInvalid
	}
	store := s.manager.Get(profileID)
	store.SetQuantity(lineID, quantity)
	return s.view(store), nil
}

// RemoveLine 移除条目,不存在时为空操作
func (s *CartService) RemoveLine(profileID, lineID string) (CartView, error) {
	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return CartView{}, ErrCartItemInvalid
	}
	store := s.manager.Get(profileID)
	store.RemoveLine(lineID)
	return s.view(store), nil
}

// Clear 清空购物车
func (s *CartService) Clear(profileID string) CartView {
	store := s.manager.Get(profileID)
	store.Clear()
	return s.view(store)
}

// Checkout 基于当前购物车小计生成结算金额
func (s *CartService) Checkout(profileID string) CheckoutQuote {
	store := s.manager.Get(profileID)
	return s.checkout.Quote(store.Subtotal())
}

func (s *CartService) view(store *cart.Store) CartView {
	return CartView{
		Lines:    store.Lines(),
		Subtotal: store.Subtotal(),
	}
}
