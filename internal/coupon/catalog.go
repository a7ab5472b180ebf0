package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"bagvo/internal/model"
	"bagvo/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// mapCatalog implements Catalog using a map for O(1) lookups.
type mapCatalog struct {
	coupons map[string]int
	ordered []model.Coupon
}

// newMapCatalog creates an empty map-based catalog.
func newMapCatalog(capacity int) *mapCatalog {
	return &mapCatalog{
		coupons: make(map[string]int, capacity),
		ordered: make([]model.Coupon, 0, capacity),
	}
}

// Get returns the coupon with the given code.
func (c *mapCatalog) Get(code string) (model.Coupon, bool) {
	i, ok := c.coupons[repository.NormalizeCode(code)]
	if !ok {
		return model.Coupon{}, false
	}
	return c.ordered[i], true
}

// Coupons returns every coupon in the order it was added.
func (c *mapCatalog) Coupons() []model.Coupon {
	return c.ordered
}

// Size returns the number of coupons in the catalog.
func (c *mapCatalog) Size() int {
	return len(c.ordered)
}

// Add stores a coupon; a later entry for the same code replaces the earlier one.
func (c *mapCatalog) Add(coupon model.Coupon) {
	coupon.Code = repository.NormalizeCode(coupon.Code)
	if i, ok := c.coupons[coupon.Code]; ok {
		c.ordered[i] = coupon
		return
	}
	c.coupons[coupon.Code] = len(c.ordered)
	c.ordered = append(c.ordered, coupon)
}

// catalogEntry is one line of a catalog file.
type catalogEntry struct {
	Code          string           `json:"code"`
	DiscountType  string           `json:"discountType"`
	Value         decimal.Decimal  `json:"value"`
	MaxDiscount   *decimal.Decimal `json:"maxDiscount"`
	MinOrderValue decimal.Decimal  `json:"minOrderValue"`
	IsActive      *bool            `json:"isActive"`
	ValidFrom     time.Time        `json:"validFrom"`
	ValidTill     time.Time        `json:"validTill"`
	UsageLimit    int              `json:"usageLimit"`
}

func (e catalogEntry) toCoupon() (model.Coupon, error) {
	if strings.TrimSpace(e.Code) == "" {
		return model.Coupon{}, errors.New("missing code")
	}

	discountType := model.DiscountType(strings.ToLower(strings.TrimSpace(e.DiscountType)))
	if discountType != model.DiscountPercentage && discountType != model.DiscountFlat {
		return model.Coupon{}, fmt.Errorf("unknown discount type %q", e.DiscountType)
	}
	if e.Value.IsNegative() {
		return model.Coupon{}, errors.New("negative value")
	}
	if discountType == model.DiscountPercentage && e.Value.GreaterThan(decimal.NewFromInt(100)) {
		return model.Coupon{}, errors.New("percentage above 100")
	}
	if e.ValidFrom.IsZero() || e.ValidTill.IsZero() || e.ValidTill.Before(e.ValidFrom) {
		return model.Coupon{}, errors.New("invalid validity window")
	}
	if e.UsageLimit < 0 {
		return model.Coupon{}, errors.New("negative usage limit")
	}

	active := true
	if e.IsActive != nil {
		active = *e.IsActive
	}

	return model.Coupon{
		Code:          repository.NormalizeCode(e.Code),
		DiscountType:  discountType,
		Value:         e.Value,
		MaxDiscount:   e.MaxDiscount,
		MinOrderValue: e.MinOrderValue,
		IsActive:      active,
		ValidFrom:     e.ValidFrom,
		ValidTill:     e.ValidTill,
		UsageLimit:    e.UsageLimit,
	}, nil
}

// readCatalog decompresses r and parses one coupon per line.
// Blank lines and lines starting with '#' are ignored; malformed lines are logged and skipped.
func readCatalog(ctx context.Context, r io.Reader, source string, logger zerolog.Logger) (Catalog, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		logger.Error().Err(err).Str("source", source).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	catalog := newMapCatalog(1024)

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	skipped := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				logger.Warn().Str("source", source).Msg("coupon loading cancelled")
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var entry catalogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			skipped++
			logger.Warn().Err(err).Str("source", source).Int("line", lineNo).Msg("skipping malformed coupon line")
			continue
		}
		coupon, err := entry.toCoupon()
		if err != nil {
			skipped++
			logger.Warn().Err(err).Str("source", source).Int("line", lineNo).Msg("skipping invalid coupon")
			continue
		}
		catalog.Add(coupon)
	}

	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Str("source", source).Msg("error reading coupon catalog")
		return nil, fmt.Errorf("error reading coupon catalog %s: %w", source, err)
	}

	logger.Info().
		Str("source", source).
		Int("coupons_loaded", catalog.Size()).
		Int("skipped", skipped).
		Msg("coupon catalog loaded")

	return catalog, nil
}
