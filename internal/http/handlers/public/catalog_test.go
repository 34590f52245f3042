package public

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/content"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

func newCatalogTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("starts_with") == "category/" {
			w.Write([]byte(`{"stories": [
				{"name": "tws", "slug": "tws", "content": {"Name": "True Wireless"}},
				{"name": "watch", "slug": "watch", "content": {}}
			]}`))
			return
		}
		w.Write([]byte(`{"stories": [
			{"name": "Widget", "slug": "widget", "content": {"name": "Widget", "price": "19.99", "image": "/w.png", "category": {"cached_url": "category/tws"}}},
			{"name": "Gadget", "slug": "gadget", "content": {"name": "Gadget", "price": 42.5, "image": {"filename": "//cdn/g.png"}, "category": {"cached_url": "category/tws"}}},
			{"name": "Strap", "slug": "strap", "content": {"name": "Strap", "price": "5", "image": "/s.png", "category": {"cached_url": "category/watch"}}}
		]}`))
	}))
	t.Cleanup(srv.Close)

	client := content.NewClient(config.ContentConfig{BaseURL: srv.URL, Token: "t", Version: "published", TimeoutMS: 2000})
	container := &provider.Container{
		ProductService:  service.NewProductService(client),
		CategoryService: service.NewCategoryService(client),
	}
	handler := New(container)

	r := gin.New()
	r.GET("/products", handler.GetProducts)
	r.GET("/products/:slug", handler.GetProductBySlug)
	r.GET("/categories", handler.GetCategories)
	r.GET("/categories/:slug", handler.GetCategoryBySlug)
	return r
}

func doCatalogRequest(t *testing.T, r *gin.Engine, path string) authTestEnvelope {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)

	var envelope authTestEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope failed: %v body=%s", err, w.Body.String())
	}
	return envelope
}

func TestGetProductsEndpoint(t *testing.T) {
	r := newCatalogTestRouter(t)

	envelope := doCatalogRequest(t, r, "/products")
	if envelope.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", envelope.StatusCode)
	}
	var payload struct {
		Products []struct {
			Slug     string `json:"slug"`
			Price    string `json:"price"`
			Category string `json:"category"`
		} `json:"products"`
	}
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		t.Fatalf("unmarshal products failed: %v", err)
	}
	if len(payload.Products) != 3 {
		t.Fatalf("products want 3 got %d", len(payload.Products))
	}
	if payload.Products[1].Price != "42.50" {
		t.Fatalf("price want 42.50 got %s", payload.Products[1].Price)
	}

	envelope = doCatalogRequest(t, r, "/products?category=tws")
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		t.Fatalf("unmarshal filtered products failed: %v", err)
	}
	if len(payload.Products) != 2 {
		t.Fatalf("tws products want 2 got %d", len(payload.Products))
	}
}

func TestGetProductBySlugEndpoint(t *testing.T) {
	r := newCatalogTestRouter(t)

	envelope := doCatalogRequest(t, r, "/products/widget")
	if envelope.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", envelope.StatusCode)
	}
	var payload struct {
		Product struct {
			Slug    string `json:"slug"`
			Similar []struct {
				Slug string `json:"slug"`
			} `json:"similar"`
		} `json:"product"`
	}
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		t.Fatalf("unmarshal product failed: %v", err)
	}
	if payload.Product.Slug != "widget" {
		t.Fatalf("slug want widget got %s", payload.Product.Slug)
	}
	if len(payload.Product.Similar) != 1 || payload.Product.Similar[0].Slug != "gadget" {
		t.Fatalf("similar want [gadget] got %+v", payload.Product.Similar)
	}

	envelope = doCatalogRequest(t, r, "/products/missing")
	if envelope.StatusCode != 404 {
		t.Fatalf("missing product status_code want 404 got %d", envelope.StatusCode)
	}
}

func TestGetCategoriesEndpoint(t *testing.T) {
	r := newCatalogTestRouter(t)

	envelope := doCatalogRequest(t, r, "/categories")
	if envelope.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", envelope.StatusCode)
	}
	var payload struct {
		Categories []struct {
			Slug string `json:"slug"`
			Name string `json:"name"`
		} `json:"categories"`
	}
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		t.Fatalf("unmarshal categories failed: %v", err)
	}
	if len(payload.Categories) != 2 {
		t.Fatalf("categories want 2 got %d", len(payload.Categories))
	}

	envelope = doCatalogRequest(t, r, "/categories/missing")
	if envelope.StatusCode != 404 {
		t.Fatalf("missing category status_code want 404 got %d", envelope.StatusCode)
	}
}

func TestGetProductsContentUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := content.NewClient(config.ContentConfig{BaseURL: srv.URL, Token: "t", TimeoutMS: 2000})
	handler := New(&provider.Container{ProductService: service.NewProductService(client)})

	r := gin.New()
	r.GET("/products", handler.GetProducts)

	envelope := doCatalogRequest(t, r, "/products")
	if envelope.StatusCode != 500 {
		t.Fatalf("content failure status_code want 500 got %d", envelope.StatusCode)
	}
}
