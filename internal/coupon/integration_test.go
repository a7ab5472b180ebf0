package coupon

import (
	"context"
	"testing"
	"time"

	"bagvo/internal/database"
	"bagvo/internal/model"
	"bagvo/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})

	return pool
}

func TestIntegration_ImportValidateRedeem(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	limited := `{"code":"ONCE","discountType":"flat","value":25,"validFrom":"2026-01-01T00:00:00Z","validTill":"2026-12-31T23:59:59Z","usageLimit":1}`
	path := writeCatalog(t, "coupons.jsonl.gz", []string{save10Line, flat50Line, limited})

	coupons := repository.NewCouponRepository(pool, logger)
	runner := repository.NewTxRunner(pool, nil, logger)

	imported, err := NewImporter(NewFileLoader(logger), coupons, logger).Import(ctx, []string{path})
	require.NoError(t, err)
	assert.Equal(t, 3, imported)

	validator := NewValidator(coupons, logger)
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	redeemOnce := func() error {
		return runner.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := validator.Validate(ctx, tx, "once", now); err != nil {
				return err
			}
			return validator.Redeem(ctx, tx, "ONCE")
		})
	}

	require.NoError(t, redeemOnce())
	assert.ErrorIs(t, redeemOnce(), model.ErrInvalidCoupon, "usage limit of one")

	err = runner.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := validator.Validate(ctx, tx, "SAVE10", now.AddDate(1, 0, 0))
		return err
	})
	assert.ErrorIs(t, err, model.ErrInvalidCoupon, "expired next year")
}
