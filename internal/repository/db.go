package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bagvo/internal/model"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Postgres error codes that indicate the transaction lost a race and can be replayed.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"

	orderNumberConstraint = "orders_order_number_key"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxConfig holds transaction retry configuration.
type TxConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultTxConfig returns sensible default transaction retry configuration.
func DefaultTxConfig() *TxConfig {
	return &TxConfig{
		MaxAttempts:     5,
		InitialInterval: 20 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
		MaxElapsedTime:  5 * time.Second,
	}
}

// txRunner implements TxRunner on a pgx pool.
type txRunner struct {
	pool   *pgxpool.Pool
	config *TxConfig
	logger zerolog.Logger
}

// NewTxRunner creates a transaction runner. A nil config uses DefaultTxConfig.
func NewTxRunner(pool *pgxpool.Pool, config *TxConfig, logger zerolog.Logger) TxRunner {
	if config == nil {
		config = DefaultTxConfig()
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	return &txRunner{
		pool:   pool,
		config: config,
		logger: logger.With().Str("component", "tx-runner").Logger(),
	}
}

// WithTx runs fn in a READ COMMITTED transaction and replays it on transient conflicts.
func (r *txRunner) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
		if err == nil {
			return nil
		}
		if IsRetryable(err) {
			r.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_attempts", r.config.MaxAttempts).
				Msg("transaction conflict, retrying")
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(operation, r.newBackOff(ctx))
	if err == nil {
		return nil
	}

	if IsRetryable(err) {
		r.logger.Error().Err(err).Int("attempts", attempt).Msg("transaction retries exhausted")
		return fmt.Errorf("%w: %v", model.ErrConcurrentUpdate, err)
	}

	return err
}

func (r *txRunner) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.config.InitialInterval
	exp.MaxInterval = r.config.MaxInterval
	exp.MaxElapsedTime = r.config.MaxElapsedTime

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.config.MaxAttempts-1)), ctx)
}

// IsRetryable reports whether err is a Postgres conflict that a replay of the transaction can resolve.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	case pgUniqueViolation:
		return pgErr.ConstraintName == orderNumberConstraint
	}
	return false
}
