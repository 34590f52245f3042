package content

import (
	"encoding/json"
	"testing"
)

func TestImageRefAcceptsStringAndObject(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"/images/a.png"`, "/images/a.png"},
		{"object", `{"filename": "//cdn.example.com/a.png"}`, "//cdn.example.com/a.png"},
		{"null", `null`, ""},
		{"empty object", `{}`, ""},
	}
	for _, tc := range cases {
		var ref ImageRef
		if err := json.Unmarshal([]byte(tc.raw), &ref); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if ref.Filename != tc.want {
			t.Fatalf("%s: expected filename %q, got %q", tc.name, tc.want, ref.Filename)
		}
	}
}

func TestImageRefURLAddsScheme(t *testing.T) {
	ref := ImageRef{Filename: "//cdn.example.com/a.png"}
	if got := ref.URL(); got != "https://cdn.example.com/a.png" {
		t.Fatalf("expected https url, got %q", got)
	}
	plain := ImageRef{Filename: "/local/a.png"}
	if got := plain.URL(); got != "/local/a.png" {
		t.Fatalf("expected path unchanged, got %q", got)
	}
}

func TestParseProductStringPrice(t *testing.T) {
	story := Story{
		Slug: "widget",
		Content: json.RawMessage(`{
			"name": "Widget",
			"price": "19.99",
			"image": "/w.png",
			"sizes": ["M", "L"],
			"category": {"cached_url": "category/tws"}
		}`),
	}
	product, err := ParseProduct(story)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.Slug != "widget" || product.Content.Name != "Widget" {
		t.Fatalf("unexpected product: %+v", product)
	}
	if got := product.Content.Price.String(); got != "19.99" {
		t.Fatalf("expected price 19.99, got %s", got)
	}
	if got := product.Content.CategorySlug(); got != "tws" {
		t.Fatalf("expected category slug tws, got %q", got)
	}
}

func TestParseProductNumberPriceAndObjectImage(t *testing.T) {
	story := Story{
		Slug: "gadget",
		Content: json.RawMessage(`{
			"name": "Gadget",
			"price": 42.5,
			"image": {"filename": "//cdn.example.com/g.png"},
			"thumbnails": [{"filename": "//cdn.example.com/t1.png"}, {"filename": "//cdn.example.com/t2.png"}]
		}`),
	}
	product, err := ParseProduct(story)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := product.Content.Price.String(); got != "42.50" {
		t.Fatalf("expected price 42.50, got %s", got)
	}
	if got := product.Content.Image.URL(); got != "https://cdn.example.com/g.png" {
		t.Fatalf("unexpected image url %q", got)
	}
	if len(product.Content.Thumbnails) != 2 {
		t.Fatalf("expected 2 thumbnails, got %d", len(product.Content.Thumbnails))
	}
	if product.Content.CategorySlug() != "" {
		t.Fatalf("expected empty category slug when category missing")
	}
}

func TestParseProductRejectsMalformedContent(t *testing.T) {
	story := Story{Slug: "bad", Content: json.RawMessage(`{"name": 5, "price": []}`)}
	if _, err := ParseProduct(story); err == nil {
		t.Fatalf("expected parse error for malformed content")
	}
}

func TestParseCategoryContentOverridesEnvelope(t *testing.T) {
	story := Story{
		Name:    "tws",
		Slug:    "tws",
		Content: json.RawMessage(`{"Name": "True Wireless", "Slug": "tws"}`),
	}
	cat, err := ParseCategory(story)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Name != "True Wireless" || cat.Slug != "tws" {
		t.Fatalf("unexpected category: %+v", cat)
	}

	bare := Story{Name: "watches", Slug: "watches"}
	cat, err = ParseCategory(bare)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Name != "watches" || cat.Slug != "watches" {
		t.Fatalf("expected envelope fallback, got %+v", cat)
	}
}
