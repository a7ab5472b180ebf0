package repository

import (
	"context"
	"fmt"

	"bagvo/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type statsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStatsRepository creates a new PostgreSQL-backed stats repository.
func NewStatsRepository(pool *pgxpool.Pool, logger zerolog.Logger) StatsRepository {
	return &statsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stats").Logger(),
	}
}

// Dashboard runs the three aggregations in one round trip.
// Revenue excludes cancelled orders and subtracts refunds.
func (r *statsRepository) Dashboard(ctx context.Context, topN int) (*model.DashboardStats, error) {
	batch := &pgx.Batch{}
	batch.Queue(`
		SELECT COUNT(*),
			COALESCE(SUM(total_price - refunded_amount) FILTER (WHERE order_status <> 'cancelled'), 0)
		FROM orders`)
	batch.Queue(`SELECT order_status, COUNT(*) FROM orders GROUP BY order_status`)
	batch.Queue(`
		SELECT id, name, sold
		FROM products
		WHERE sold > 0
		ORDER BY sold DESC, name
		LIMIT $1`, topN)

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	stats := &model.DashboardStats{
		OrdersByStatus: map[string]int{},
		TopProducts:    []model.ProductSales{},
	}

	if err := results.QueryRow().Scan(&stats.TotalOrders, &stats.TotalRevenue); err != nil {
		r.logger.Error().Err(err).Msg("failed to query order totals")
		return nil, fmt.Errorf("failed to query order totals: %w", err)
	}

	rows, err := results.Query()
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders by status")
		return nil, fmt.Errorf("failed to query orders by status: %w", err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.OrdersByStatus[status] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	rows, err = results.Query()
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query top products")
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p model.ProductSales
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Sold); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		stats.TopProducts = append(stats.TopProducts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top products: %w", err)
	}

	return stats, nil
}
