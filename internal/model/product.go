package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalogue product.
type Product struct {
	ID         string            `json:"id" db:"id"`
	Name       string            `json:"name" db:"name"`
	ImageURL   string            `json:"imageUrl" db:"image_url"`
	Category   string            `json:"category" db:"category"`
	Price      ProductPrice      `json:"price"`
	Stock      int               `json:"stock" db:"stock"`
	Sold       int               `json:"sold" db:"sold"`
	Attributes ProductAttributes `json:"attributes" db:"attributes"`
	CreatedAt  time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time         `json:"updatedAt" db:"updated_at"`
}

// ProductPrice holds the selling price and the list price (MRP).
type ProductPrice struct {
	Selling decimal.Decimal `json:"selling" db:"price_selling"`
	MRP     decimal.Decimal `json:"mrp" db:"price_mrp"`
}

// ProductAttributes holds the variant values a product is offered in.
// Entries are stored as received and may be JSON-encoded arrays themselves.
type ProductAttributes struct {
	Colors []string `json:"colors"`
	Sizes  []string `json:"sizes"`
}
