// Package pricing computes order totals from line items and store settings.
package pricing

import (
	"bagvo/internal/model"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Rules are the store-wide inputs to price computation.
type Rules struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

// RulesFromSettings extracts pricing rules from the store settings.
func RulesFromSettings(s model.StoreSettings) Rules {
	return Rules{
		FreeShippingThreshold: s.FreeShippingThreshold,
		ShippingFee:           s.ShippingFee,
		TaxRate:               s.TaxRate,
	}
}

// Breakdown is the full set of monetary fields stored on an order.
type Breakdown struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	Discount      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// ItemsPrice sums unitPrice × quantity over all items.
func ItemsPrice(items []model.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Shipping is free at or above the threshold.
func Shipping(itemsPrice decimal.Decimal, rules Rules) decimal.Decimal {
	if itemsPrice.GreaterThanOrEqual(rules.FreeShippingThreshold) {
		return decimal.Zero
	}
	return rules.ShippingFee
}

// Tax applies the tax rate to the items price, rounded to two decimal places.
func Tax(itemsPrice decimal.Decimal, rules Rules) decimal.Decimal {
	return itemsPrice.Mul(rules.TaxRate).Round(moneyPlaces)
}

// CouponDiscount returns what the coupon takes off an order worth itemsPrice.
// It is zero below the coupon's minimum order value and never exceeds itemsPrice.
func CouponDiscount(c *model.Coupon, itemsPrice decimal.Decimal) decimal.Decimal {
	if c == nil || itemsPrice.LessThan(c.MinOrderValue) {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case model.DiscountPercentage:
		discount = itemsPrice.Mul(c.Value).Div(hundred).Round(moneyPlaces)
		if c.MaxDiscount != nil && discount.GreaterThan(*c.MaxDiscount) {
			discount = *c.MaxDiscount
		}
	case model.DiscountFlat:
		discount = c.Value
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(discount, itemsPrice)
}

// Compute prices items under rules. The discount is clamped so the total stays non-negative.
func Compute(items []model.OrderItem, rules Rules, discount decimal.Decimal) Breakdown {
	itemsPrice := ItemsPrice(items)
	shipping := Shipping(itemsPrice, rules)
	tax := Tax(itemsPrice, rules)
	gross := itemsPrice.Add(shipping).Add(tax)

	if discount.IsNegative() {
		discount = decimal.Zero
	}
	discount = decimal.Min(discount, gross)

	return Breakdown{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		Discount:      discount,
		TotalPrice:    gross.Sub(discount),
	}
}
