package rsi

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/order"
	"github.com/thrasher-corp/inkback/strategy"
	"github.com/thrasher-corp/inkback/strategy/base"
)

var testStart = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

func candleAt(i int, closePrice float64) *data.Candle {
	p := decimal.NewFromFloat(closePrice)
	return &data.Candle{
		Time:   testStart.Add(time.Duration(i) * time.Hour),
		Open:   p,
		High:   p.Add(decimal.NewFromInt(1)),
		Low:    p.Sub(decimal.NewFromInt(1)),
		Close:  p,
		Volume: decimal.NewFromInt(1000),
	}
}

func TestRegistered(t *testing.T) {
	t.Parallel()
	h, err := strategy.New(Name)
	require.NoError(t, err)
	assert.Equal(t, Name, h.Name())
	assert.NotEmpty(t, h.Description())
}

func TestOnCandle(t *testing.T) {
	t.Parallel()
	s := &Strategy{}
	s.SetDefaults()
	require.NoError(t, s.SetParams(strategy.Params{"period": 3}))

	_, err := s.OnCandle(nil, nil)
	assert.ErrorIs(t, err, base.ErrNilCandle)

	// a steady slide keeps the index pinned to the floor, the recovery
	// drives it back through the ceiling
	closes := []float64{100, 99, 98, 97, 98, 99, 100, 101, 102, 103}
	var emitted []*order.Order
	for i := range closes {
		o, err := s.OnCandle(candleAt(i, closes[i]), nil)
		require.NoError(t, err)
		if o != nil {
			emitted = append(emitted, o)
		}
	}
	require.Len(t, emitted, 2)
	assert.Equal(t, order.Buy, emitted[0].Side)
	assert.Equal(t, order.Market, emitted[0].Type)
	assert.Contains(t, emitted[0].Reason, "RSI at")
	assert.Equal(t, order.Sell, emitted[1].Side)
	assert.False(t, s.InPosition())
}

func TestOnCandleWarmup(t *testing.T) {
	t.Parallel()
	s := &Strategy{}
	s.SetDefaults()
	require.NoError(t, s.SetParams(strategy.Params{"period": 5}))

	for i, c := range []float64{100, 99, 98, 97, 96} {
		o, err := s.OnCandle(candleAt(i, c), nil)
		require.NoError(t, err)
		assert.Nil(t, o, "no signal before the period elapses")
	}
}

func TestOnCandleNoShortEntries(t *testing.T) {
	t.Parallel()
	s := &Strategy{}
	s.SetDefaults()
	require.NoError(t, s.SetParams(strategy.Params{"period": 3}))

	// overbought while flat must not open a short
	for i, c := range []float64{100, 101, 102, 103, 104, 105} {
		o, err := s.OnCandle(candleAt(i, c), nil)
		require.NoError(t, err)
		assert.Nil(t, o)
	}
}

func TestSetParams(t *testing.T) {
	t.Parallel()
	s := &Strategy{}
	s.SetDefaults()

	err := s.SetParams(strategy.Params{"period": 0})
	assert.ErrorIs(t, err, base.ErrInvalidParams)

	err = s.SetParams(strategy.Params{"rsi_low": -1})
	assert.ErrorIs(t, err, base.ErrInvalidParams)

	err = s.SetParams(strategy.Params{"rsi_high": 101})
	assert.ErrorIs(t, err, base.ErrInvalidParams)

	err = s.SetParams(strategy.Params{"rsi_low": 80, "rsi_high": 20})
	assert.ErrorIs(t, err, base.ErrInvalidParams)

	err = s.SetParams(strategy.Params{"threshold": 1})
	assert.ErrorIs(t, err, base.ErrInvalidParams)

	require.NoError(t, s.SetParams(strategy.Params{
		"period": 7, "rsi_low": 25, "rsi_high": 75, "size": 2,
	}))
	assert.Equal(t, 7, s.period)
	assert.True(t, s.Size().Equal(decimal.NewFromInt(2)))
}
