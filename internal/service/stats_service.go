package service

import (
	"context"
	"fmt"

	"bagvo/internal/model"
	"bagvo/internal/repository"

	"github.com/rs/zerolog"
)

const topProductsLimit = 5

type statsService struct {
	repo   repository.StatsRepository
	logger zerolog.Logger
}

// NewStatsService creates the back-office dashboard service.
func NewStatsService(repo repository.StatsRepository, logger zerolog.Logger) StatsService {
	return &statsService{
		repo:   repo,
		logger: logger.With().Str("service", "stats").Logger(),
	}
}

// Dashboard returns order totals and the best-selling products.
func (s *statsService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	stats, err := s.repo.Dashboard(ctx, topProductsLimit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build dashboard")
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}
	return stats, nil
}
