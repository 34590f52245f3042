package service

import (
	"context"
	"fmt"

	"github.com/storefront-next/internal/content"
)

// CategoryView 分类条目
type CategoryView struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// CategoryService 分类目录服务,数据来自内容源
type CategoryService struct {
	content *content.Client
}

// NewCategoryService 创建分类服务
func NewCategoryService(contentClient *content.Client) *CategoryService {
	return &CategoryService{content: contentClient}
}

// ListCategories 获取全部分类
func (s *CategoryService) ListCategories(ctx context.Context) ([]CategoryView, error) {
	categories, err := s.content.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}
	views := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, CategoryView{Slug: c.Slug, Name: c.Name})
	}
	return views, nil
}

// GetCategoryBySlug 获取单个分类
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*CategoryView, error) {
	categories, err := s.content.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}
	for _, c := range categories {
		if c.Slug == slug {
			return &CategoryView{Slug: c.Slug, Name: c.Name}, nil
		}
	}
	return nil, ErrCategoryNotFound
}
