package service

import (
	"testing"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/config"
)

func newTestCartService(t *testing.T) *CartService {
	t.Helper()
	manager := cart.NewManager(cart.NewMemorySnapshotter())
	checkout := NewCheckoutService(config.CheckoutConfig{
		TaxRate:               "0.10",
		FreeShippingThreshold: "100",
		FlatShippingFee:       "9.99",
		Currency:              "USD",
	})
	return NewCartService(manager, checkout)
}

func TestCartServiceAddAndMerge(t *testing.T) {
	svc := newTestCartService(t)

	view, err := svc.AddLine("p1", CartLineInput{ID: "sku-1", Name: "Widget", Price: testMoney(t, "19.99"), Quantity: 1})
	if err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	view, err = svc.AddLine("p1", CartLineInput{ID: "sku-1", Name: "Widget", Price: testMoney(t, "19.99"), Quantity: 2})
	if err != nil {
		t.Fatalf("add line failed: %v", err)
	}

	if len(view.Lines) != 1 || view.Lines[0].Quantity != 3 {
		t.Fatalf("expected merged line with quantity 3, got %+v", view.Lines)
	}
	if got := view.Subtotal.String(); got != "59.97" {
		t.Fatalf("expected subtotal 59.97, got %s", got)
	}
}

func TestCartServiceRejectsInvalidInput(t *testing.T) {
	svc := newTestCartService(t)

	if _, err := svc.AddLine("p1", CartLineInput{ID: "", Name: "Widget"}); err != ErrCartItemInvalid {
		t.Fatalf("expected ErrCartItemInvalid for empty id, got %v", err)
	}
	if _, err := svc.AddLine("p1", CartLineInput{ID: "sku-1", Name: ""}); err != ErrCartItemInvalid {
		t.Fatalf("expected ErrCartItemInvalid for empty name, got %v", err)
	}
	if _, err := svc.AddLine("p1", CartLineInput{ID: "sku-1", Name: "Widget", Price: testMoney(t, "-1")}); err != ErrCartItemInvalid {
		t.Fatalf("expected ErrCartItemInvalid for negative price, got %v", err)
	}
	if _, err := svc.SetQuantity("p1", " ", 2); err != ErrCartItemInvalid {
		t.Fatalf("expected ErrCartItemInvalid for blank line id, got %v", err)
	}
}

func TestCartServiceProfilesAreIsolated(t *testing.T) {
	svc := newTestCartService(t)

	if _, err := svc.AddLine("p1", CartLineInput{ID: "a", Name: "A", Price: testMoney(t, "10")}); err != nil {
		t.Fatalf("add line failed: %v", err)
	}

	other := svc.GetCart("p2")
	if len(other.Lines) != 0 {
		t.Fatalf("expected empty cart for another profile, got %+v", other.Lines)
	}
}

func TestCartServiceSetQuantityAndRemove(t *testing.T) {
	svc := newTestCartService(t)

	if _, err := svc.AddLine("p1", CartLineInput{ID: "a", Name: "A", Price: testMoney(t, "10"), Quantity: 2}); err != nil {
		t.Fatalf("add line failed: %v", err)
	}

	view, err := svc.SetQuantity("p1", "a", 0)
	if err != nil {
		t.Fatalf("set quantity failed: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Fatalf("quantity 0 must remove the line, got %+v", view.Lines)
	}

	view, err = svc.RemoveLine("p1", "missing")
	if err != nil {
		t.Fatalf("remove missing line must be a no-op, got %v", err)
	}
	if len(view.Lines) != 0 {
		t.Fatalf("unexpected lines: %+v", view.Lines)
	}
}

func TestCartServiceCheckout(t *testing.T) {
	svc := newTestCartService(t)

	if _, err := svc.AddLine("p1", CartLineInput{ID: "a", Name: "A", Price: testMoney(t, "60"), Quantity: 2}); err != nil {
		t.Fatalf("add line failed: %v", err)
	}

	quote := svc.Checkout("p1")
	if got := quote.Subtotal.String(); got != "120.00" {
		t.Fatalf("expected subtotal 120.00, got %s", got)
	}
	if got := quote.Tax.String(); got != "12.00" {
		t.Fatalf("expected tax 12.00, got %s", got)
	}
	if !quote.FreeShipping {
		t.Fatalf("expected free shipping above threshold")
	}
	if got := quote.Total.String(); got != "132.00" {
		t.Fatalf("expected total 132.00, got %s", got)
	}
}

func TestCartServiceClear(t *testing.T) {
	svc := newTestCartService(t)

	if _, err := svc.AddLine("p1", CartLineInput{ID: "a", Name: "A", Price: testMoney(t, "10")}); err != nil {
		t.Fatalf("add line failed: %v", err)
	}

	view := svc.Clear("p1")
	if len(view.Lines) != 0 {
		t.Fatalf("expected empty cart after clear")
	}
	if got := view.Subtotal.String(); got != "0.00" {
		t.Fatalf("expected subtotal 0.00, got %s", got)
	}
}
