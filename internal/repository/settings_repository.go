package repository

import (
	"context"
	"fmt"

	"bagvo/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const settingsRowID = 1

type settingsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSettingsRepository creates a new PostgreSQL-backed settings repository.
func NewSettingsRepository(pool *pgxpool.Pool, logger zerolog.Logger) SettingsRepository {
	return &settingsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "settings").Logger(),
	}
}

// Init creates the settings row from defaults if it is missing, then reads it back.
func (r *settingsRepository) Init(ctx context.Context, defaults model.StoreSettings) (*model.StoreSettings, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO store_settings (id, free_shipping_threshold, shipping_fee, tax_rate, currency)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		settingsRowID, defaults.FreeShippingThreshold, defaults.ShippingFee, defaults.TaxRate, defaults.Currency,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to initialise store settings")
		return nil, fmt.Errorf("failed to initialise store settings: %w", err)
	}

	var s model.StoreSettings
	err = r.pool.QueryRow(ctx, `
		SELECT free_shipping_threshold, shipping_fee, tax_rate, currency, updated_at
		FROM store_settings
		WHERE id = $1`, settingsRowID,
	).Scan(&s.FreeShippingThreshold, &s.ShippingFee, &s.TaxRate, &s.Currency, &s.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read store settings")
		return nil, fmt.Errorf("failed to read store settings: %w", err)
	}

	return &s, nil
}

// Save overwrites the settings row.
func (r *settingsRepository) Save(ctx context.Context, s *model.StoreSettings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO store_settings (id, free_shipping_threshold, shipping_fee, tax_rate, currency, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			free_shipping_threshold = EXCLUDED.free_shipping_threshold,
			shipping_fee = EXCLUDED.shipping_fee,
			tax_rate = EXCLUDED.tax_rate,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at`,
		settingsRowID, s.FreeShippingThreshold, s.ShippingFee, s.TaxRate, s.Currency, s.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to save store settings")
		return fmt.Errorf("failed to save store settings: %w", err)
	}

	r.logger.Info().
		Str("tax_rate", s.TaxRate.String()).
		Str("shipping_fee", s.ShippingFee.String()).
		Str("free_shipping_threshold", s.FreeShippingThreshold.String()).
		Msg("store settings saved")

	return nil
}
