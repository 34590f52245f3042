package public

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/i18n"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// GetConfig 获取全局配置
func (h *Handler) GetConfig(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	checkout := h.Config.Checkout
	data := map[string]interface{}{
		"languages": []string{i18n.LocaleCN, i18n.LocaleTW, i18n.LocaleEN},
		"currency":  checkout.Currency,
		"checkout": map[string]interface{}{
			"tax_rate":                checkout.TaxRate,
			"free_shipping_threshold": checkout.FreeShippingThreshold,
			"flat_shipping_fee":       checkout.FlatShippingFee,
		},
		"federated_login_enabled": h.FederatedAuthService != nil && h.FederatedAuthService.Enabled(),
		"captcha_enabled":         h.CaptchaService != nil && h.CaptchaService.Enabled(),
	}

	if err := cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL); err != nil {
		requestLog(c).Warnw("缓存公共配置失败", "error", err)
	}

	response.Success(c, data)
}

// GetProducts 获取商品列表，支持 category 查询参数过滤
func (h *Handler) GetProducts(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))

	var err error
	var products interface{}
	if category != "" {
		products, err = h.ProductService.ListProductsByCategory(c.Request.Context(), category)
	} else {
		products, err = h.ProductService.ListProducts(c.Request.Context())
	}
	if err != nil {
		respondCatalogError(c, err)
		return
	}

	response.Success(c, gin.H{"products": products})
}

// GetProductBySlug 获取商品详情（含同类推荐）
func (h *Handler) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	product, err := h.ProductService.GetProductBySlug(c.Request.Context(), slug)
	if err != nil {
		respondCatalogError(c, err)
		return
	}

	response.Success(c, gin.H{"product": product})
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListCategories(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err)
		return
	}

	response.Success(c, gin.H{"categories": categories})
}

// GetCategoryBySlug 获取单个分类
func (h *Handler) GetCategoryBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	category, err := h.CategoryService.GetCategoryBySlug(c.Request.Context(), slug)
	if err != nil {
		respondCatalogError(c, err)
		return
	}

	response.Success(c, gin.H{"category": category})
}
