package coupon

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"bagvo/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// writeCatalog creates a gzipped JSON-lines catalog in a temp dir.
func writeCatalog(t *testing.T, filename string, lines []string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), filename)

	file, err := os.Create(filePath)
	require.NoError(t, err)
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, line := range lines {
		_, err := gzipWriter.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}

	return filePath
}

const (
	save10Line = `{"code":"save10","discountType":"percentage","value":10,"maxDiscount":200,"minOrderValue":500,"validFrom":"2026-01-01T00:00:00Z","validTill":"2026-12-31T23:59:59Z","usageLimit":100}`
	flat50Line = `{"code":"FLAT50","discountType":"flat","value":50,"validFrom":"2026-01-01T00:00:00Z","validTill":"2026-12-31T23:59:59Z"}`
)

// mockLoader is a mock implementation of the Loader interface for testing.
type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) Load(ctx context.Context, path string) (Catalog, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Catalog), args.Error(1)
}

// mockCouponRepository is a mock implementation of repository.CouponRepository.
type mockCouponRepository struct {
	mock.Mock
}

func (m *mockCouponRepository) GetByCode(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error) {
	args := m.Called(ctx, tx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *mockCouponRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, code string) (bool, error) {
	args := m.Called(ctx, tx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockCouponRepository) Upsert(ctx context.Context, c *model.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
