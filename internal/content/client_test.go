package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storefront-next/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(config.ContentConfig{
		BaseURL:   srv.URL,
		Token:     "test-token",
		Version:   "published",
		TimeoutMS: 2000,
	})
	return client, srv
}

func TestStoriesSendsQueryParams(t *testing.T) {
	var gotPath, gotStartsWith, gotVersion, gotToken string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotStartsWith = r.URL.Query().Get("starts_with")
		gotVersion = r.URL.Query().Get("version")
		gotToken = r.URL.Query().Get("token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"stories": [{"name": "Widget", "slug": "widget", "content": {"name": "Widget", "price": "19.99"}}]}`))
	})

	stories, err := client.Stories(context.Background(), "products/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/cdn/stories" {
		t.Fatalf("expected path /cdn/stories, got %s", gotPath)
	}
	if gotStartsWith != "products/" || gotVersion != "published" || gotToken != "test-token" {
		t.Fatalf("unexpected query: starts_with=%s version=%s token=%s", gotStartsWith, gotVersion, gotToken)
	}
	if len(stories) != 1 || stories[0].Slug != "widget" {
		t.Fatalf("unexpected stories: %+v", stories)
	}
}

func TestStoriesNonOKStatusFails(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
	})

	if _, err := client.Stories(context.Background(), "products/"); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

func TestProductsSkipsMalformedEntries(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"stories": [
			{"name": "Widget", "slug": "widget", "content": {"name": "Widget", "price": "19.99", "image": "/w.png"}},
			{"name": "Broken", "slug": "broken", "content": {"name": 7, "price": []}},
			{"name": "Gadget", "slug": "gadget", "content": {"name": "Gadget", "price": 5, "image": {"filename": "//c/g.png"}}}
		]}`))
	})

	products, err := client.Products(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected malformed entry skipped, got %d products", len(products))
	}
	if products[0].Slug != "widget" || products[1].Slug != "gadget" {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestCategoriesParsesEntries(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"stories": [
			{"name": "tws", "slug": "tws", "content": {"Name": "True Wireless"}},
			{"name": "watches", "slug": "watches", "content": {}}
		]}`))
	})

	categories, err := client.Categories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Name != "True Wireless" || categories[1].Name != "watches" {
		t.Fatalf("unexpected categories: %+v", categories)
	}
}

func TestDraftVersionPassedThrough(t *testing.T) {
	var gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.URL.Query().Get("version")
		w.Write([]byte(`{"stories": []}`))
	}))
	defer srv.Close()

	client := NewClient(config.ContentConfig{BaseURL: srv.URL, Token: "t", Version: "draft", TimeoutMS: 2000})
	if _, err := client.Stories(context.Background(), "products/"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotVersion != "draft" {
		t.Fatalf("expected draft version, got %q", gotVersion)
	}
}
