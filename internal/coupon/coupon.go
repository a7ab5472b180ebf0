// Package coupon validates coupon codes against the coupon store and imports coupon catalogs.
package coupon

import (
	"context"
	"time"

	"bagvo/internal/model"

	"github.com/jackc/pgx/v5"
)

// Validator checks coupon codes against the coupon store.
type Validator interface {
	// Validate returns the coupon when it exists, is active, is inside its validity
	// window and has usage left. Otherwise it returns model.ErrInvalidCoupon.
	// The coupon row stays locked until tx ends.
	Validate(ctx context.Context, tx pgx.Tx, code string, now time.Time) (*model.Coupon, error)

	// Redeem counts one use of the coupon. It fails with model.ErrInvalidCoupon
	// when the usage limit was reached in the meantime.
	Redeem(ctx context.Context, tx pgx.Tx, code string) error
}

// Catalog is a set of coupon definitions keyed by normalised code.
type Catalog interface {
	// Get returns the coupon with the given code.
	Get(code string) (model.Coupon, bool)

	// Coupons returns every coupon in the order it was read.
	Coupons() []model.Coupon

	// Size returns the number of coupons in the catalog.
	Size() int
}

// Loader defines the interface for loading coupon catalogs.
type Loader interface {
	// Load reads a gzipped JSON-lines catalog and returns its coupons.
	Load(ctx context.Context, path string) (Catalog, error)
}

// Importer writes coupon catalogs into the coupon store.
type Importer interface {
	// Import loads every path and upserts its coupons. Paths that fail to load are
	// skipped; their errors are joined into the returned error.
	Import(ctx context.Context, paths []string) (int, error)
}
