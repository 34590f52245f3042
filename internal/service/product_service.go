package service

import (
	"context"
	"fmt"

	"github.com/storefront-next/internal/content"
	"github.com/storefront-next/internal/models"
)

// ProductCard 产品列表卡片
type ProductCard struct {
	Slug     string       `json:"slug"`
	Name     string       `json:"name"`
	Price    models.Money `json:"price"`
	Image    string       `json:"image"`
	Category string       `json:"category"`
}

// ProductDetail 产品详情
type ProductDetail struct {
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Price       models.Money `json:"price"`
	Image       string       `json:"image"`
	Description string       `json:"description"`
	Sizes       []string     `json:"sizes"`
	Colors      []string     `json:"colors"`
	Thumbnails  []string     `json:"thumbnails"`
	Category    string       `json:"category"`

	Similar []ProductCard `json:"similar"`
}

// ProductService 产品目录服务,数据来自内容源
type ProductService struct {
	content *content.Client
}

// NewProductService 创建产品服务
func NewProductService(contentClient *content.Client) *ProductService {
	return &ProductService{content: contentClient}
}

// ListProducts 获取全部产品卡片
func (s *ProductService) ListProducts(ctx context.Context) ([]ProductCard, error) {
	products, err := s.content.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, buildProductCard(p))
	}
	return cards, nil
}

// ListProductsByCategory 按分类筛选产品卡片
func (s *ProductService) ListProductsByCategory(ctx context.Context, categorySlug string) ([]ProductCard, error) {
	products, err := s.content.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}
	cards := make([]ProductCard, 0)
	for _, p := range products {
		if p.Content.CategorySlug() != categorySlug {
			continue
		}
		cards = append(cards, buildProductCard(p))
	}
	return cards, nil
}

// GetProductBySlug 获取产品详情,附带同分类的相似产品
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	products, err := s.content.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}

	var found *content.Product
	for i := range products {
		if products[i].Slug == slug {
			found = &products[i]
			break
		}
	}
	if found == nil {
		return nil, ErrProductNotFound
	}

	detail := &ProductDetail{
		Slug:        found.Slug,
		Name:        found.Content.Name,
		Price:       found.Content.Price,
		Image:       found.Content.Image.URL(),
		Description: found.Content.Description,
		Sizes:       found.Content.Sizes,
		Colors:      found.Content.Colors,
		Category:    found.Content.CategorySlug(),
		Similar:     []ProductCard{},
	}
	for _, thumb := range found.Content.Thumbnails {
		if !thumb.IsZero() {
			detail.Thumbnails = append(detail.Thumbnails, thumb.URL())
		}
	}

	if detail.Category != "" {
		for _, p := range products {
			if p.Slug == slug || p.Content.CategorySlug() != detail.Category {
				continue
			}
			detail.Similar = append(detail.Similar, buildProductCard(p))
		}
	}
	return detail, nil
}

func buildProductCard(p content.Product) ProductCard {
	return ProductCard{
		Slug:     p.Slug,
		Name:     p.Content.Name,
		Price:    p.Content.Price,
		Image:    p.Content.Image.URL(),
		Category: p.Content.CategorySlug(),
	}
}
