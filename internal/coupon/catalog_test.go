package coupon

import (
	"bytes"
	"compress/gzip"
	"context"
	"strings"
	"testing"

	"bagvo/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipLines(t *testing.T, lines ...string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(strings.Join(lines, "\n")))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf
}

func TestMapCatalog(t *testing.T) {
	catalog := newMapCatalog(4)
	assert.Equal(t, 0, catalog.Size())

	catalog.Add(model.Coupon{Code: "save10", Value: decimal.NewFromInt(10)})
	catalog.Add(model.Coupon{Code: "FLAT50", Value: decimal.NewFromInt(50)})
	catalog.Add(model.Coupon{Code: " Save10 ", Value: decimal.NewFromInt(15)})

	assert.Equal(t, 2, catalog.Size())

	got, ok := catalog.Get("SAVE10")
	require.True(t, ok)
	assert.True(t, got.Value.Equal(decimal.NewFromInt(15)), "later entries replace earlier ones")

	_, ok = catalog.Get("missing")
	assert.False(t, ok)

	codes := []string{}
	for _, c := range catalog.Coupons() {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"SAVE10", "FLAT50"}, codes)
}

func TestReadCatalog(t *testing.T) {
	input := gzipLines(t,
		"# seasonal coupons",
		save10Line,
		"",
		flat50Line,
		`{not json`,
		`{"code":"","discountType":"flat","value":5,"validFrom":"2026-01-01T00:00:00Z","validTill":"2026-02-01T00:00:00Z"}`,
		`{"code":"BOGO","discountType":"bogo","value":1,"validFrom":"2026-01-01T00:00:00Z","validTill":"2026-02-01T00:00:00Z"}`,
		`{"code":"BACKWARDS","discountType":"flat","value":1,"validFrom":"2026-02-01T00:00:00Z","validTill":"2026-01-01T00:00:00Z"}`,
		`{"code":"TOOMUCH","discountType":"percentage","value":150,"validFrom":"2026-01-01T00:00:00Z","validTill":"2026-02-01T00:00:00Z"}`,
		`{"code":"PAUSED","discountType":"flat","value":20,"isActive":false,"validFrom":"2026-01-01T00:00:00Z","validTill":"2026-02-01T00:00:00Z"}`,
	)

	catalog, err := readCatalog(context.Background(), input, "test", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 3, catalog.Size())

	save10, ok := catalog.Get("SAVE10")
	require.True(t, ok)
	assert.Equal(t, model.DiscountPercentage, save10.DiscountType)
	assert.True(t, save10.IsActive, "isActive defaults to true")
	require.NotNil(t, save10.MaxDiscount)
	assert.True(t, save10.MaxDiscount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 100, save10.UsageLimit)

	flat, ok := catalog.Get("flat50")
	require.True(t, ok)
	assert.Nil(t, flat.MaxDiscount)
	assert.Equal(t, 0, flat.UsageLimit)

	paused, ok := catalog.Get("PAUSED")
	require.True(t, ok)
	assert.False(t, paused.IsActive)
}

func TestReadCatalog_NotGzip(t *testing.T) {
	_, err := readCatalog(context.Background(), strings.NewReader("plain text"), "plain", zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create gzip reader")
}
