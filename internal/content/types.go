package content

import (
	"encoding/json"
	"strings"

	"github.com/storefront-next/internal/models"
)

// ImageRef 图片引用,上游同一字段可能是字符串也可能是 {filename} 对象
type ImageRef struct {
	Filename string
}

// UnmarshalJSON 兼容两种表示,无法识别时置空而不报错
func (r *ImageRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Filename = s
		return nil
	}
	var obj struct {
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		r.Filename = obj.Filename
		return nil
	}
	r.Filename = ""
	return nil
}

// MarshalJSON 对外统一输出字符串形式
func (r ImageRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.URL())
}

// URL 返回可直接使用的图片地址,协议相对地址补全为 https
func (r ImageRef) URL() string {
	if strings.HasPrefix(r.Filename, "//") {
		return "https:" + r.Filename
	}
	return r.Filename
}

// IsZero 判断图片引用是否为空
func (r ImageRef) IsZero() bool {
	return r.Filename == ""
}

// CategoryLink 产品指向分类的链接字段
type CategoryLink struct {
	CachedURL string `json:"cached_url"`
}

// Slug 从 cached_url 中提取分类 slug,如 "category/tws" -> "tws"
func (l CategoryLink) Slug() string {
	return strings.TrimPrefix(l.CachedURL, "category/")
}

// Story 内容条目公共信封
type Story struct {
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	FullSlug string          `json:"full_slug"`
	Content  json.RawMessage `json:"content"`
}

// ProductContent 产品文档的结构化内容
type ProductContent struct {
	Name        string        `json:"name"`
	Price       models.Money  `json:"price"`
	Image       ImageRef      `json:"image"`
	Sizes       []string      `json:"sizes"`
	Colors      []string      `json:"colors"`
	Description string        `json:"description"`
	Thumbnails  []ImageRef    `json:"thumbnails"`
	Category    *CategoryLink `json:"category"`
}

// CategorySlug 产品所属分类 slug,未设置时为空串
func (c ProductContent) CategorySlug() string {
	if c.Category == nil {
		return ""
	}
	return c.Category.Slug()
}

// CategoryContent 分类文档的结构化内容,上游字段首字母大写
type CategoryContent struct {
	Name string `json:"Name"`
	Slug string `json:"Slug"`
}

// Product 解析后的产品条目
type Product struct {
	Slug    string
	Content ProductContent
}

// Category 解析后的分类条目
type Category struct {
	Name string
	Slug string
}

type storiesResponse struct {
	Stories []Story `json:"stories"`
}

// ParseProduct 在边界处把原始条目解析为产品,内容损坏时返回错误
func ParseProduct(story Story) (Product, error) {
	var doc ProductContent
	if err := json.Unmarshal(story.Content, &doc); err != nil {
		return Product{}, err
	}
	return Product{Slug: story.Slug, Content: doc}, nil
}

// ParseCategory 解析分类条目,内容里的名称优先于信封名称
func ParseCategory(story Story) (Category, error) {
	cat := Category{Name: story.Name, Slug: story.Slug}
	if len(story.Content) == 0 {
		return cat, nil
	}
	var doc CategoryContent
	if err := json.Unmarshal(story.Content, &doc); err != nil {
		return Category{}, err
	}
	if doc.Name != "" {
		cat.Name = doc.Name
	}
	if doc.Slug != "" {
		cat.Slug = doc.Slug
	}
	return cat, nil
}
