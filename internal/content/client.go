package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
)

// Client 内容源 API 客户端,按路径前缀拉取已发布或草稿内容
type Client struct {
	baseURL    string
	token      string
	version    string
	cacheTTL   time.Duration
	httpClient *http.Client
}

// NewClient 根据配置构建内容客户端
func NewClient(cfg config.ContentConfig) *Client {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	version := cfg.Version
	if version != constants.ContentVersionDraft {
		version = constants.ContentVersionPublished
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		version:    version,
		cacheTTL:   time.Duration(cfg.CacheTTLSeconds) * time.Second,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Stories 拉取指定路径前缀下的全部条目,命中缓存时不访问上游
func (c *Client) Stories(ctx context.Context, startsWith string) ([]Story, error) {
	cacheKey := fmt.Sprintf("content:stories:%s:%s", c.version, startsWith)
	if c.cacheTTL > 0 {
		var cached []Story
		if ok, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	stories, err := c.fetchStories(ctx, startsWith)
	if err != nil {
		return nil, err
	}

	if c.cacheTTL > 0 {
		if err := cache.SetJSON(ctx, cacheKey, stories, c.cacheTTL); err != nil {
			logger.Warnw("content_cache_set_failed", "key", cacheKey, "error", err)
		}
	}
	return stories, nil
}

func (c *Client) fetchStories(ctx context.Context, startsWith string) ([]Story, error) {
	endpoint := fmt.Sprintf("%s/cdn/stories", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("构建内容请求失败: %w", err)
	}

	q := url.Values{}
	q.Set("starts_with", startsWith)
	q.Set("version", c.version)
	q.Set("token", c.token)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("拉取内容失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Warnw("content_fetch_unexpected_status",
			"status", resp.StatusCode,
			"starts_with", startsWith,
			"body", string(body))
		return nil, fmt.Errorf("内容源返回非预期状态: %d", resp.StatusCode)
	}

	var payload storiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("解析内容响应失败: %w", err)
	}
	return payload.Stories, nil
}

// Products 拉取产品前缀下的条目并逐条解析,坏条目跳过并记录
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	stories, err := c.Stories(ctx, constants.ContentPrefixProducts)
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(stories))
	for _, story := range stories {
		product, err := ParseProduct(story)
		if err != nil {
			logger.Warnw("content_product_parse_failed", "slug", story.Slug, "error", err)
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

// Categories 拉取分类前缀下的条目并逐条解析
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	stories, err := c.Stories(ctx, constants.ContentPrefixCategories)
	if err != nil {
		return nil, err
	}
	categories := make([]Category, 0, len(stories))
	for _, story := range stories {
		category, err := ParseCategory(story)
		if err != nil {
			logger.Warnw("content_category_parse_failed", "slug", story.Slug, "error", err)
			continue
		}
		categories = append(categories, category)
	}
	return categories, nil
}
