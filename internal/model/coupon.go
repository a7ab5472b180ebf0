package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType is how a coupon's value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

// Coupon is a promotional code held in the coupon store.
type Coupon struct {
	Code          string           `json:"code" db:"code"`
	DiscountType  DiscountType     `json:"discountType" db:"discount_type"`
	Value         decimal.Decimal  `json:"value" db:"value"`
	MaxDiscount   *decimal.Decimal `json:"maxDiscount,omitempty" db:"max_discount"`
	MinOrderValue decimal.Decimal  `json:"minOrderValue" db:"min_order_value"`
	IsActive      bool             `json:"isActive" db:"is_active"`
	ValidFrom     time.Time        `json:"validFrom" db:"valid_from"`
	ValidTill     time.Time        `json:"validTill" db:"valid_till"`
	UsageLimit    int              `json:"usageLimit" db:"usage_limit"` // 0 means unlimited
	UsageCount    int              `json:"usageCount" db:"usage_count"`
}

// IsValid reports whether the coupon can be redeemed at now.
func (c *Coupon) IsValid(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidTill) {
		return false
	}
	return c.UsageLimit == 0 || c.UsageCount < c.UsageLimit
}
