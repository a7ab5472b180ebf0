package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"bagvo/internal/model"
	"bagvo/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// settingsService caches the settings document in memory. The first Get loads or
// creates it; Update is serialised by the write lock.
type settingsService struct {
	repo   repository.SettingsRepository
	now    func() time.Time
	logger zerolog.Logger

	mu     sync.RWMutex
	cached *model.StoreSettings
}

// NewSettingsService creates a settings service backed by repo.
func NewSettingsService(repo repository.SettingsRepository, logger zerolog.Logger) SettingsService {
	return &settingsService{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("service", "settings").Logger(),
	}
}

// Get returns a copy of the cached settings.
func (s *settingsService) Get(ctx context.Context) (*model.StoreSettings, error) {
	s.mu.RLock()
	if s.cached != nil {
		settings := *s.cached
		s.mu.RUnlock()
		return &settings, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return nil, err
	}
	settings := *s.cached
	return &settings, nil
}

// loadLocked initialises the cache. Callers hold the write lock.
func (s *settingsService) loadLocked(ctx context.Context) error {
	if s.cached != nil {
		return nil
	}

	settings, err := s.repo.Init(ctx, model.DefaultStoreSettings())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to initialise store settings")
		return fmt.Errorf("failed to load store settings: %w", err)
	}

	s.logger.Info().
		Str("tax_rate", settings.TaxRate.String()).
		Str("free_shipping_threshold", settings.FreeShippingThreshold.String()).
		Str("shipping_fee", settings.ShippingFee.String()).
		Msg("store settings loaded")

	s.cached = settings
	return nil
}

// Update validates and persists patch, then refreshes the cache.
func (s *settingsService) Update(ctx context.Context, patch model.SettingsUpdate) (*model.StoreSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return nil, err
	}

	next := *s.cached
	if patch.FreeShippingThreshold != nil {
		next.FreeShippingThreshold = *patch.FreeShippingThreshold
	}
	if patch.ShippingFee != nil {
		next.ShippingFee = *patch.ShippingFee
	}
	if patch.TaxRate != nil {
		next.TaxRate = *patch.TaxRate
	}
	if patch.Currency != nil {
		next.Currency = strings.ToUpper(strings.TrimSpace(*patch.Currency))
	}

	if err := validateSettings(next); err != nil {
		return nil, err
	}

	next.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to update store settings: %w", err)
	}

	s.cached = &next
	updated := next
	return &updated, nil
}

func validateSettings(s model.StoreSettings) error {
	if s.TaxRate.IsNegative() || s.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return model.NewValidationError(model.ErrCodeInvalidSettings, "Tax rate must be between 0 and 1")
	}
	if s.FreeShippingThreshold.IsNegative() {
		return model.NewValidationError(model.ErrCodeInvalidSettings, "Free shipping threshold cannot be negative")
	}
	if s.ShippingFee.IsNegative() {
		return model.NewValidationError(model.ErrCodeInvalidSettings, "Shipping fee cannot be negative")
	}
	if len(s.Currency) != 3 {
		return model.NewValidationError(model.ErrCodeInvalidSettings, "Currency must be a three-letter code")
	}
	return nil
}
