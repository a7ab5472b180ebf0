package coupon

import (
	"context"
	"fmt"
	"time"

	"bagvo/internal/model"
	"bagvo/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// validator implements Validator on top of the coupon store.
type validator struct {
	coupons repository.CouponRepository
	logger  zerolog.Logger
}

// NewValidator creates a store-backed coupon validator.
func NewValidator(coupons repository.CouponRepository, logger zerolog.Logger) Validator {
	return &validator{
		coupons: coupons,
		logger:  logger.With().Str("component", "coupon-validator").Logger(),
	}
}

// Validate looks the code up under a row lock and checks it can be redeemed at now.
func (v *validator) Validate(ctx context.Context, tx pgx.Tx, code string, now time.Time) (*model.Coupon, error) {
	code = repository.NormalizeCode(code)
	if code == "" {
		return nil, model.ErrInvalidCoupon
	}

	c, err := v.coupons.GetByCode(ctx, tx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	if c == nil {
		v.logger.Debug().Str("code", code).Msg("unknown coupon")
		return nil, model.ErrInvalidCoupon
	}
	if !c.IsValid(now) {
		v.logger.Debug().
			Str("code", code).
			Bool("active", c.IsActive).
			Time("valid_from", c.ValidFrom).
			Time("valid_till", c.ValidTill).
			Int("usage_count", c.UsageCount).
			Int("usage_limit", c.UsageLimit).
			Msg("coupon not redeemable")
		return nil, model.ErrInvalidCoupon
	}

	return c, nil
}

// Redeem increments the usage counter.
func (v *validator) Redeem(ctx context.Context, tx pgx.Tx, code string) error {
	ok, err := v.coupons.IncrementUsage(ctx, tx, code)
	if err != nil {
		return fmt.Errorf("failed to redeem coupon: %w", err)
	}
	if !ok {
		v.logger.Info().Str("code", code).Msg("coupon usage limit reached")
		return model.ErrInvalidCoupon
	}
	return nil
}
