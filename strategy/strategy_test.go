package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/order"
)

type fakeStrategy struct {
	defaultsSet bool
	params      Params
}

func (f *fakeStrategy) Name() string        { return "fake" }
func (f *fakeStrategy) Description() string { return "does nothing" }
func (f *fakeStrategy) OnCandle(_, _ *data.Candle) (*order.Order, error) {
	return nil, nil
}
func (f *fakeStrategy) SetParams(p Params) error { f.params = p; return nil }
func (f *fakeStrategy) SetDefaults()             { f.defaultsSet = true }

func TestRegister(t *testing.T) {
	t.Parallel()
	err := Register("dupe", nil)
	assert.ErrorIs(t, err, ErrNilConstructor)

	require.NoError(t, Register("dupe", func() Handler { return &fakeStrategy{} }))
	err = Register("DUPE", func() Handler { return &fakeStrategy{} })
	assert.ErrorIs(t, err, ErrAlreadyRegistered, "registration must be case insensitive")
}

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New("no such strategy")
	assert.ErrorIs(t, err, ErrStrategyNotFound)

	require.NoError(t, Register("fresh", func() Handler { return &fakeStrategy{} }))
	h, err := New("FRESH")
	require.NoError(t, err)
	assert.True(t, h.(*fakeStrategy).defaultsSet, "New must apply defaults")

	h2, err := New("fresh")
	require.NoError(t, err)
	assert.NotSame(t, h, h2, "every call must construct a fresh instance")
}

func TestList(t *testing.T) {
	t.Parallel()
	require.NoError(t, Register("zzz-last", func() Handler { return &fakeStrategy{} }))
	require.NoError(t, Register("aaa-first", func() Handler { return &fakeStrategy{} }))
	names := List()
	require.NotEmpty(t, names)
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "aaa-first")
	assert.Contains(t, names, "zzz-last")
}

func TestParamsValues(t *testing.T) {
	t.Parallel()
	p := Params{"window": 14, "threshold": 0.25}

	v, ok := p.Value("window")
	assert.True(t, ok)
	assert.Equal(t, 14.0, v)
	_, ok = p.Value("missing")
	assert.False(t, ok)
	assert.Equal(t, 3.5, p.ValueOr("missing", 3.5))

	i, ok := p.IntValue("window")
	assert.True(t, ok)
	assert.Equal(t, 14, i)
	assert.Equal(t, 7, p.IntValueOr("missing", 7))

	d, ok := p.DecimalValue("threshold")
	assert.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromFloat(0.25)))
	fallback := decimal.NewFromInt(9)
	assert.True(t, p.DecimalValueOr("missing", fallback).Equal(fallback))
}

func TestParamsClone(t *testing.T) {
	t.Parallel()
	p := Params{"a": 1}
	clone := p.Clone()
	clone["a"] = 2
	assert.Equal(t, 1.0, p["a"], "clone must not share storage")
}

func TestParamsLabel(t *testing.T) {
	t.Parallel()
	p := Params{"short_window": 50, "long_window": 150, "tp": 0.05}
	assert.Equal(t, "long_window=150 short_window=50 tp=0.05", p.Label())
	assert.Equal(t, p.Label(), p.Label())
	assert.Empty(t, Params{}.Label())
}

func TestGridCombinations(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Grid{}.Combinations())
	assert.Nil(t, Grid{"a": nil}.Combinations(), "an empty range cannot be swept")

	combos := Grid{"a": {1, 2}, "b": {3}}.Combinations()
	require.Len(t, combos, 2)
	assert.Equal(t, Params{"a": 1, "b": 3}, combos[0])
	assert.Equal(t, Params{"a": 2, "b": 3}, combos[1])

	grid := Grid{
		"short_window": {50, 60},
		"long_window":  {70, 150},
		"tp":           {0.05, 0.10},
		"sl":           {0.075, 0.15},
	}
	first := grid.Combinations()
	require.Len(t, first, 16)
	second := grid.Combinations()
	assert.Equal(t, first, second, "enumeration order must be reproducible")
}
