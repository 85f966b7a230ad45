package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCandles(t *testing.T) {
	t.Parallel()
	in := `ts,open,high,low,close,volume
2023-01-02T00:00:00Z,100,102,98,101,5000
2023-01-03T00:00:00Z,101,103,99,102,6000
`
	candles, err := ReadCandles(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), candles[0].Time)
	assert.True(t, candles[0].Open.Equal(decimal.NewFromInt(100)))
	assert.True(t, candles[1].Close.Equal(decimal.NewFromInt(102)))
	assert.True(t, candles[1].Volume.Equal(decimal.NewFromInt(6000)))
}

func TestReadCandlesEpoch(t *testing.T) {
	t.Parallel()
	in := "ts,open,high,low,close,volume\n1672617600,100,102,98,101,5000\n"
	candles, err := ReadCandles(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), candles[0].Time)

	in = "ts,open,high,low,close,volume\n1672617600000,100,102,98,101,5000\n"
	candles, err = ReadCandles(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), candles[0].Time)
}

func TestReadCandlesExtraColumns(t *testing.T) {
	t.Parallel()
	in := `ts,open,high,low,close,volume,strike,option_type
2023-01-02T00:00:00Z,100,102,98,101,5000,4500,C
`
	candles, err := ReadCandles(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, candles, 1)

	strike, ok := candles[0].Field("strike")
	require.True(t, ok)
	assert.True(t, strike.Equal(decimal.NewFromInt(4500)))

	optionType, ok := candles[0].Annotation("option_type")
	require.True(t, ok)
	assert.Equal(t, "C", optionType)
}

func TestReadCandlesBadInput(t *testing.T) {
	t.Parallel()
	_, err := ReadCandles(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = ReadCandles(strings.NewReader("ts,open\nnot-a-time,100\n"))
	assert.ErrorIs(t, err, ErrBadTimestamp)

	_, err = ReadCandles(strings.NewReader("ts,open\n2023-01-02T00:00:00Z,not-a-number\n"))
	assert.Error(t, err)
}

func TestLoadSeries(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "ES_ohlcv-1d.csv")
	contents := `ts,open,high,low,close,volume
2023-01-02T00:00:00Z,100,102,98,101,5000
2023-01-03T00:00:00Z,101,103,99,102,6000
`
	require.NoError(t, os.WriteFile(file, []byte(contents), 0o644))

	s, err := LoadSeries(file, "ES", "ohlcv-1d", time.Hour*24)
	require.NoError(t, err)
	assert.Equal(t, "ES", s.Symbol())
	assert.Equal(t, 2, s.Len())

	_, err = LoadSeries(filepath.Join(t.TempDir(), "missing.csv"), "ES", "ohlcv-1d", time.Hour*24)
	assert.Error(t, err)
}
