package coupon

import (
	"context"
	"errors"
	"fmt"

	"bagvo/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type importer struct {
	loader  Loader
	coupons repository.CouponRepository
	logger  zerolog.Logger
}

// NewImporter creates an importer that reads catalogs with loader and writes them to coupons.
func NewImporter(loader Loader, coupons repository.CouponRepository, logger zerolog.Logger) Importer {
	return &importer{
		loader:  loader,
		coupons: coupons,
		logger:  logger.With().Str("component", "coupon-importer").Logger(),
	}
}

// Import loads all catalogs concurrently, then upserts their coupons in path order.
func (i *importer) Import(ctx context.Context, paths []string) (int, error) {
	catalogs := make([]Catalog, len(paths))
	loadErrs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for idx, path := range paths {
		g.Go(func() error {
			catalog, err := i.loader.Load(gctx, path)
			if err != nil {
				loadErrs[idx] = fmt.Errorf("failed to load %s: %w", path, err)
				return nil
			}
			catalogs[idx] = catalog
			return nil
		})
	}
	_ = g.Wait()

	imported := 0
	var errs []error
	for idx, catalog := range catalogs {
		if loadErrs[idx] != nil {
			i.logger.Error().Err(loadErrs[idx]).Str("path", paths[idx]).Msg("skipping coupon catalog")
			errs = append(errs, loadErrs[idx])
			continue
		}

		for _, c := range catalog.Coupons() {
			if err := ctx.Err(); err != nil {
				return imported, err
			}
			if err := i.coupons.Upsert(ctx, &c); err != nil {
				errs = append(errs, fmt.Errorf("failed to import coupon %s: %w", c.Code, err))
				continue
			}
			imported++
		}
	}

	i.logger.Info().
		Int("catalogs", len(paths)).
		Int("coupons_imported", imported).
		Int("errors", len(errs)).
		Msg("coupon import finished")

	return imported, errors.Join(errs...)
}
