package repository

import (
	"context"
	"errors"
	"fmt"

	"bagvo/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

// GetByID returns nil when the address does not exist or belongs to another user.
func (r *addressRepository) GetByID(ctx context.Context, userID string, addressID uuid.UUID) (*model.SavedAddress, error) {
	query := `
		SELECT id, user_id, data
		FROM user_addresses
		WHERE id = $1 AND user_id = $2
	`

	var addr model.SavedAddress
	err := r.pool.QueryRow(ctx, query, addressID, userID).Scan(&addr.ID, &addr.UserID, &addr.Data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().
				Str("user_id", userID).
				Str("address_id", addressID.String()).
				Msg("address not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("address_id", addressID.String()).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}

	return &addr, nil
}
