package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/data/source"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache", "inkback.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func testSeries(t *testing.T, symbol string, n int) *data.Series {
	t.Helper()
	candles := make([]data.Candle, n)
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		price := decimal.NewFromInt(int64(100 + i))
		candles[i] = data.Candle{
			Time:   start.Add(time.Duration(i) * time.Hour * 24),
			Open:   price,
			High:   price.Add(decimal.NewFromInt(2)),
			Low:    price.Sub(decimal.NewFromInt(2)),
			Close:  price.Add(decimal.NewFromFloat(0.25)),
			Volume: decimal.NewFromInt(1000),
			Fields: map[string]decimal.Decimal{
				"strike": decimal.NewFromInt(4500),
			},
			Annotations: map[string]string{
				"option_type": "C",
			},
		}
	}
	s, err := data.NewSeries(symbol, "ohlcv-1d", time.Hour*24, candles)
	require.NoError(t, err)
	return s
}

func testCacheRequest(symbol string) source.Request {
	return source.Request{
		Symbol:   symbol,
		Schema:   "ohlcv-1d",
		Interval: time.Hour * 24,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()
	store := testStore(t)
	ctx := context.Background()
	r := testCacheRequest("ES")

	_, err := store.Get(ctx, r)
	assert.ErrorIs(t, err, ErrCacheMiss)

	in := testSeries(t, "ES", 3)
	require.NoError(t, store.Put(ctx, r, in, "csvdir"))

	out, err := store.Get(ctx, r)
	require.NoError(t, err)
	require.Equal(t, in.Len(), out.Len())

	first := out.First()
	assert.Equal(t, in.First().Time, first.Time)
	assert.True(t, first.Close.Equal(decimal.NewFromFloat(100.25)))
	strike, ok := first.Field("strike")
	require.True(t, ok)
	assert.True(t, strike.Equal(decimal.NewFromInt(4500)))
	optionType, ok := first.Annotation("option_type")
	require.True(t, ok)
	assert.Equal(t, "C", optionType)
}

func TestPutReplacesExisting(t *testing.T) {
	t.Parallel()
	store := testStore(t)
	ctx := context.Background()
	r := testCacheRequest("ES")

	require.NoError(t, store.Put(ctx, r, testSeries(t, "ES", 3), "csvdir"))
	require.NoError(t, store.Put(ctx, r, testSeries(t, "ES", 5), "csvdir"))

	out, err := store.Get(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Len())

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].Candles)
}

func TestEnsure(t *testing.T) {
	t.Parallel()
	store := testStore(t)
	ctx := context.Background()
	r := testCacheRequest("ES")

	var fetches int
	src := source.Func(func(_ context.Context, req source.Request) (*data.Series, error) {
		fetches++
		return testSeries(t, req.Symbol, 3), nil
	})

	_, err := store.Ensure(ctx, nil, r)
	assert.ErrorIs(t, err, source.ErrNilSource)

	out, err := store.Ensure(ctx, src, r)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
	assert.Equal(t, 1, fetches)

	out, err = store.Ensure(ctx, src, r)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
	assert.Equal(t, 1, fetches, "second Ensure should be served from cache")
}

func TestListAndPurge(t *testing.T) {
	t.Parallel()
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testCacheRequest("ES"), testSeries(t, "ES", 3), "csvdir"))
	require.NoError(t, store.Put(ctx, testCacheRequest("NQ"), testSeries(t, "NQ", 4), "csvdir"))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ES", entries[0].Symbol)
	assert.Equal(t, 3, entries[0].Candles)
	assert.Equal(t, "csvdir", entries[0].Source)
	assert.Equal(t, time.Hour*24, entries[0].Interval)
	assert.False(t, entries[0].CreatedAt.IsZero())

	removed, err := store.Purge(ctx, "ES")
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = store.Get(ctx, testCacheRequest("ES"))
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = store.Get(ctx, testCacheRequest("NQ"))
	assert.NoError(t, err)

	removed, err = store.Purge(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	entries, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNilStore(t *testing.T) {
	t.Parallel()
	var s *Store
	ctx := context.Background()
	_, err := s.Get(ctx, testCacheRequest("ES"))
	assert.ErrorIs(t, err, ErrNilStore)
	assert.ErrorIs(t, s.Put(ctx, testCacheRequest("ES"), nil, ""), ErrNilStore)
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, ErrNilStore)
	_, err = s.Purge(ctx, "")
	assert.ErrorIs(t, err, ErrNilStore)
	assert.ErrorIs(t, s.Close(), ErrNilStore)
}
