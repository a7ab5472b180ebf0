package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreSettings is the store-wide configuration document.
type StoreSettings struct {
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold" db:"free_shipping_threshold"`
	ShippingFee           decimal.Decimal `json:"shippingFee" db:"shipping_fee"`
	TaxRate               decimal.Decimal `json:"taxRate" db:"tax_rate"`
	Currency              string          `json:"currency" db:"currency"`
	UpdatedAt             time.Time       `json:"updatedAt" db:"updated_at"`
}

// DefaultStoreSettings returns the settings a new store starts with.
func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		FreeShippingThreshold: decimal.NewFromInt(500),
		ShippingFee:           decimal.NewFromInt(50),
		TaxRate:               decimal.RequireFromString("0.18"),
		Currency:              "INR",
	}
}

// SettingsUpdate is a partial update of the store settings.
type SettingsUpdate struct {
	FreeShippingThreshold *decimal.Decimal `json:"freeShippingThreshold,omitempty"`
	ShippingFee           *decimal.Decimal `json:"shippingFee,omitempty"`
	TaxRate               *decimal.Decimal `json:"taxRate,omitempty"`
	Currency              *string          `json:"currency,omitempty"`
}

// DashboardStats summarises order activity for the back office.
type DashboardStats struct {
	TotalOrders    int             `json:"totalOrders"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	OrdersByStatus map[string]int  `json:"ordersByStatus"`
	TopProducts    []ProductSales  `json:"topProducts"`
}

// ProductSales is the number of units sold for one product.
type ProductSales struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Sold      int    `json:"sold"`
}
