package public

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

type cartTestEnvelope struct {
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
}

type cartViewPayload struct {
	Lines []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Price    string `json:"price"`
		Quantity int    `json:"quantity"`
	} `json:"lines"`
	Subtotal string `json:"subtotal"`
}

func newCartTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	checkout := service.NewCheckoutService(config.CheckoutConfig{
		TaxRate:               "0.10",
		FreeShippingThreshold: "100",
		FlatShippingFee:       "9.99",
		Currency:              "USD",
	})
	container := &provider.Container{
		CartService: service.NewCartService(cart.NewManager(cart.NewMemorySnapshotter()), checkout),
	}
	handler := New(container)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("cart_profile", c.GetHeader("X-Cart-Profile"))
		c.Next()
	})
	r.GET("/cart", handler.GetCart)
	r.POST("/cart/lines", handler.AddCartLine)
	r.PUT("/cart/lines/:id", handler.UpdateCartLine)
	r.DELETE("/cart/lines/:id", handler.DeleteCartLine)
	r.DELETE("/cart", handler.ClearCart)
	r.GET("/cart/quote", handler.GetCheckoutQuote)
	return r
}

func doCartRequest(t *testing.T, r *gin.Engine, method, path, profile, body string) cartTestEnvelope {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Cart-Profile", profile)
	r.ServeHTTP(w, req)

	var envelope cartTestEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope failed: %v body=%s", err, w.Body.String())
	}
	return envelope
}

func decodeCartView(t *testing.T, raw json.RawMessage) cartViewPayload {
	t.Helper()
	var view cartViewPayload
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatalf("unmarshal cart view failed: %v", err)
	}
	return view
}

func TestCartEndpointsAddMergeAndQuote(t *testing.T) {
	r := newCartTestRouter(t)

	envelope := doCartRequest(t, r, http.MethodPost, "/cart/lines", "p1",
		`{"id":"sku-1","name":"Widget","price":"19.99","quantity":1,"size":"M"}`)
	if envelope.StatusCode != 0 {
		t.Fatalf("add line status_code want 0 got %d", envelope.StatusCode)
	}

	envelope = doCartRequest(t, r, http.MethodPost, "/cart/lines", "p1",
		`{"id":"sku-1","name":"Widget","price":"19.99","quantity":2}`)
	view := decodeCartView(t, envelope.Data)
	if len(view.Lines) != 1 {
		t.Fatalf("merged cart lines want 1 got %d", len(view.Lines))
	}
	if view.Lines[0].Quantity != 3 {
		t.Fatalf("merged quantity want 3 got %d", view.Lines[0].Quantity)
	}
	if view.Subtotal != "59.97" {
		t.Fatalf("subtotal want 59.97 got %s", view.Subtotal)
	}

	quote := doCartRequest(t, r, http.MethodGet, "/cart/quote", "p1", "")
	var quotePayload struct {
		Quote struct {
			Subtotal     string `json:"subtotal"`
			Tax          string `json:"tax"`
			Shipping     string `json:"shipping"`
			Total        string `json:"total"`
			FreeShipping bool   `json:"free_shipping"`
		} `json:"quote"`
	}
	if err := json.Unmarshal(quote.Data, &quotePayload); err != nil {
		t.Fatalf("unmarshal quote failed: %v", err)
	}
	if quotePayload.Quote.Tax != "6.00" {
		t.Fatalf("tax want 6.00 got %s", quotePayload.Quote.Tax)
	}
	if quotePayload.Quote.Shipping != "9.99" {
		t.Fatalf("shipping want 9.99 got %s", quotePayload.Quote.Shipping)
	}
	if quotePayload.Quote.Total != "75.96" {
		t.Fatalf("total want 75.96 got %s", quotePayload.Quote.Total)
	}
	if quotePayload.Quote.FreeShipping {
		t.Fatalf("free shipping should be false below threshold")
	}
}

func TestCartEndpointsQuantityAndRemove(t *testing.T) {
	r := newCartTestRouter(t)

	doCartRequest(t, r, http.MethodPost, "/cart/lines", "p2",
		`{"id":"sku-1","name":"Widget","price":"10.00","quantity":2}`)

	envelope := doCartRequest(t, r, http.MethodPut, "/cart/lines/sku-1", "p2", `{"quantity":0}`)
	view := decodeCartView(t, envelope.Data)
	if len(view.Lines) != 0 {
		t.Fatalf("quantity 0 should remove line, got %d lines", len(view.Lines))
	}

	// 不存在的条目删除应为无操作
	envelope = doCartRequest(t, r, http.MethodDelete, "/cart/lines/missing", "p2", "")
	if envelope.StatusCode != 0 {
		t.Fatalf("removing missing line should succeed, status_code %d", envelope.StatusCode)
	}
}

func TestCartEndpointsProfileIsolation(t *testing.T) {
	r := newCartTestRouter(t)

	doCartRequest(t, r, http.MethodPost, "/cart/lines", "alice",
		`{"id":"sku-1","name":"Widget","price":"10.00","quantity":1}`)

	envelope := doCartRequest(t, r, http.MethodGet, "/cart", "bob", "")
	view := decodeCartView(t, envelope.Data)
	if len(view.Lines) != 0 {
		t.Fatalf("profiles must not share carts, got %d lines", len(view.Lines))
	}
}

func TestCartEndpointsRejectInvalidLine(t *testing.T) {
	r := newCartTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/lines", strings.NewReader(`{"name":"NoID","price":"1.00"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Cart-Profile", "p3")
	r.ServeHTTP(w, req)

	var envelope cartTestEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope failed: %v", err)
	}
	if envelope.StatusCode != 400 {
		t.Fatalf("missing id should be rejected, status_code want 400 got %d", envelope.StatusCode)
	}
}

func TestCartEndpointsMissingProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	container := &provider.Container{
		CartService: service.NewCartService(cart.NewManager(cart.NewMemorySnapshotter()), service.NewCheckoutService(config.CheckoutConfig{})),
	}
	handler := New(container)

	r := gin.New()
	r.GET("/cart", handler.GetCart)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.ServeHTTP(w, req)

	var envelope cartTestEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope failed: %v", err)
	}
	if envelope.StatusCode != 400 {
		t.Fatalf("missing profile should be rejected, status_code want 400 got %d", envelope.StatusCode)
	}
}
