package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bagvo/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// NormalizeCode returns the canonical stored form of a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetByCode locks the coupon row so concurrent redemptions see each other's usage.
// It returns nil when the code is unknown.
func (r *couponRepository) GetByCode(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error) {
	query := `
		SELECT code, discount_type, value, max_discount, min_order_value, is_active,
			valid_from, valid_till, usage_limit, usage_count
		FROM coupons
		WHERE code = $1
		FOR UPDATE
	`

	var (
		c            model.Coupon
		discountType string
		maxDiscount  decimal.NullDecimal
	)
	err := tx.QueryRow(ctx, query, NormalizeCode(code)).Scan(
		&c.Code,
		&discountType,
		&c.Value,
		&maxDiscount,
		&c.MinOrderValue,
		&c.IsActive,
		&c.ValidFrom,
		&c.ValidTill,
		&c.UsageLimit,
		&c.UsageCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	c.DiscountType = model.DiscountType(discountType)
	if maxDiscount.Valid {
		c.MaxDiscount = &maxDiscount.Decimal
	}

	return &c, nil
}

// IncrementUsage bumps usage_count unless the usage limit has been reached.
func (r *couponRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, code string) (bool, error) {
	query := `
		UPDATE coupons
		SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE code = $1 AND (usage_limit = 0 OR usage_count < usage_limit)
	`

	tag, err := tx.Exec(ctx, query, NormalizeCode(code))
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to increment coupon usage")
		return false, fmt.Errorf("failed to increment coupon usage: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// Upsert writes a coupon definition. An existing usage_count is preserved.
func (r *couponRepository) Upsert(ctx context.Context, c *model.Coupon) error {
	query := `
		INSERT INTO coupons (code, discount_type, value, max_discount, min_order_value,
			is_active, valid_from, valid_till, usage_limit, usage_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (code) DO UPDATE SET
			discount_type = EXCLUDED.discount_type,
			value = EXCLUDED.value,
			max_discount = EXCLUDED.max_discount,
			min_order_value = EXCLUDED.min_order_value,
			is_active = EXCLUDED.is_active,
			valid_from = EXCLUDED.valid_from,
			valid_till = EXCLUDED.valid_till,
			usage_limit = EXCLUDED.usage_limit,
			updated_at = NOW()
	`

	maxDiscount := decimal.NullDecimal{}
	if c.MaxDiscount != nil {
		maxDiscount = decimal.NullDecimal{Decimal: *c.MaxDiscount, Valid: true}
	}

	_, err := r.pool.Exec(ctx, query,
		NormalizeCode(c.Code),
		string(c.DiscountType),
		c.Value,
		maxDiscount,
		c.MinOrderValue,
		c.IsActive,
		c.ValidFrom,
		c.ValidTill,
		c.UsageLimit,
		c.UsageCount,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("code", c.Code).Msg("failed to upsert coupon")
		return fmt.Errorf("failed to upsert coupon: %w", err)
	}

	return nil
}
