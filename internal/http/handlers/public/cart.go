package public

import (
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CartLineRequest 购物车条目请求
type CartLineRequest struct {
	ID       string       `json:"id" binding:"required"`
	Name     string       `json:"name" binding:"required"`
	Price    models.Money `json:"price"`
	Image    string       `json:"image"`
	Quantity int          `json:"quantity"`
	Size     string       `json:"size"`
	Color    string       `json:"color"`
}

// CartQuantityRequest 调整数量请求
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	profile, ok := getCartProfile(c)
	if !ok {
		return
	}

	response.Success(c, h.CartService.GetCart(profile))
}

// AddCartLine 添加购物车条目，同 id 条目数量累加
func (h *Handler) AddCartLine(c *gin.Context) {
	profile, ok := getCartProfile(c)
	if !ok {
		return
	}

	var req CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	view, err := h.CartService.AddLine(profile, service.CartLineInput{
		ID:       req.ID,
		Name:     req.Name,
		Price:    req.Price,
		Image:    req.Image,
		Quantity: req.Quantity,
		Size:     req.Size,
		Color:    req.Color,
	})
	if err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, view)
}

// UpdateCartLine 设定条目数量，数量小于 1 时移除
func (h *Handler) UpdateCartLine(c *gin.Context) {
	profile, ok := getCartProfile(c)
	if !ok {
		return
	}

	lineID := strings.TrimSpace(c.Param("id"))
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	view, err := h.CartService.SetQuantity(profile, lineID, req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, view)
}

// DeleteCartLine 移除条目，不存在的条目静默返回
func (h *Handler) DeleteCartLine(c *gin.Context) {
	profile, ok := getCartProfile(c)
	if !ok {
		return
	}

	view, err := h.CartService.RemoveLine(profile, strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, view)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	profile, ok := getCartProfile(c)
	if !ok {
		return
	}

	response.Success(c, h.CartService.Clear(profile))
}

// GetCheckoutQuote 获取当前购物车的结算报价
func (h *Handler) GetCheckoutQuote(c *gin.Context) {
	profile, ok := getCartProfile(c)
	if !ok {
		return
	}

	response.Success(c, gin.H{"quote": h.CartService.Checkout(profile)})
}
