package service

import (
	"strings"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

// CheckoutQuote 结算金额明细
type CheckoutQuote struct {
	Subtotal     models.Money `json:"subtotal"`
	Tax          models.Money `json:"tax"`
	Shipping     models.Money `json:"shipping"`
	Total        models.Money `json:"total"`
	FreeShipping bool         `json:"free_shipping"`
	Currency     string       `json:"currency"`
}

// CheckoutService 结算金额计算服务
type CheckoutService struct {
	taxRate           decimal.Decimal
	freeShippingAbove decimal.Decimal
	flatShippingFee   decimal.Decimal
	currency          string
}

// NewCheckoutService 创建结算服务,配置非法时回落默认值
func NewCheckoutService(cfg config.CheckoutConfig) *CheckoutService {
	currency := strings.TrimSpace(cfg.Currency)
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}
	return &CheckoutService{
		taxRate:           parseDecimalOr(cfg.TaxRate, "0.10"),
		freeShippingAbove: parseDecimalOr(cfg.FreeShippingThreshold, "100"),
		flatShippingFee:   parseDecimalOr(cfg.FlatShippingFee, "9.99"),
		currency:          currency,
	}
}

// Quote 根据小计计算税费、运费与总额
// 小计严格大于免邮门槛时运费为零
func (s *CheckoutService) Quote(subtotal models.Money) CheckoutQuote {
	sub := subtotal.Decimal
	if sub.IsNegative() {
		sub = decimal.Zero
	}

	tax := sub.Mul(s.taxRate)
	freeShipping := sub.GreaterThan(s.freeShippingAbove)
	shipping := s.flatShippingFee
	if freeShipping {
		shipping = decimal.Zero
	}
	total := sub.Add(tax).Add(shipping)

	return CheckoutQuote{
		Subtotal:     models.NewMoneyFromDecimal(sub),
		Tax:          models.NewMoneyFromDecimal(tax),
		Shipping:     models.NewMoneyFromDecimal(shipping),
		Total:        models.NewMoneyFromDecimal(total),
		FreeShipping: freeShipping,
		Currency:     s.currency,
	}
}

func parseDecimalOr(raw, fallback string) decimal.Decimal {
	if d, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil && !d.IsNegative() {
		return d
	}
	d, _ := decimal.NewFromString(fallback)
	return d
}
