package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrasher-corp/inkback/common"
	"github.com/thrasher-corp/inkback/data"
)

const testSeriesCSV = `ts,open,high,low,close,volume
2023-01-02T00:00:00Z,100,102,98,101,5000
2023-01-03T00:00:00Z,101,103,99,102,6000
2023-01-04T00:00:00Z,102,104,100,103,7000
`

func testRequest() Request {
	return Request{
		Symbol:   "ES",
		Schema:   "ohlcv-1d",
		Interval: time.Hour * 24,
	}
}

func TestRequestValidate(t *testing.T) {
	t.Parallel()
	r := testRequest()
	require.NoError(t, r.Validate())

	r = testRequest()
	r.Symbol = ""
	assert.ErrorIs(t, r.Validate(), errSymbolUnset)

	r = testRequest()
	r.Schema = ""
	assert.ErrorIs(t, r.Validate(), errSchemaUnset)

	r = testRequest()
	r.Interval = 0
	assert.ErrorIs(t, r.Validate(), data.ErrInvalidInterval)

	r = testRequest()
	r.Start = time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	r.End = r.Start
	assert.ErrorIs(t, r.Validate(), common.ErrStartAfterEnd)
}

func TestCSVDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "ES_ohlcv-1d.csv"), []byte(testSeriesCSV), 0o644))

	_, err := NewCSVDir(filepath.Join(dir, "nope"))
	assert.ErrorIs(t, err, ErrUnavailable)

	src, err := NewCSVDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "csvdir", src.Name())

	s, err := src.Fetch(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	missing := testRequest()
	missing.Symbol = "NQ"
	_, err = src.Fetch(context.Background(), missing)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCSVDirWindow(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "ES_ohlcv-1d.csv"), []byte(testSeriesCSV), 0o644))
	src, err := NewCSVDir(dir)
	require.NoError(t, err)

	r := testRequest()
	r.Start = time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	r.End = time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC)
	s, err := src.Fetch(context.Background(), r)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, r.Start, s.First().Time)

	r.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.End = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err = src.Fetch(context.Background(), r)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRateLimited(t *testing.T) {
	t.Parallel()
	var calls int
	inner := Func(func(_ context.Context, _ Request) (*data.Series, error) {
		calls++
		return nil, ErrUnavailable
	})

	_, err := NewRateLimited(nil, time.Second, 1)
	assert.ErrorIs(t, err, ErrNilSource)

	src, err := NewRateLimited(inner, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "func", src.Name())

	_, err = src.Fetch(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src, err = NewRateLimited(inner, time.Hour, 1)
	require.NoError(t, err)
	_, err = src.Fetch(ctx, testRequest())
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
