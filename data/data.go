// Package data holds the candle data model and the iteration handler that
// feeds a backtest run one bar at a time
package data

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/inkback/common"
	"github.com/thrasher-corp/inkback/common/timeperiods"
)

// Field returns a schema-specific numeric field by name
func (c *Candle) Field(name string) (decimal.Decimal, bool) {
	v, ok := c.Fields[name]
	return v, ok
}

// Annotation returns a schema-specific string field by name
func (c *Candle) Annotation(name string) (string, bool) {
	v, ok := c.Annotations[name]
	return v, ok
}

func (c *Candle) validate() error {
	if c.Time.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidCandle, common.ErrDateUnset)
	}
	if c.High.LessThan(c.Low) {
		return fmt.Errorf("%w: high %v below low %v", ErrInvalidCandle, c.High, c.Low)
	}
	if c.Volume.IsNegative() {
		return fmt.Errorf("%w: negative volume %v", ErrInvalidCandle, c.Volume)
	}
	return nil
}

// NewSeries validates candle data and wraps it as an immutable series.
// Candles must already be in strictly increasing time order, the engine
// never reorders vendor data
func NewSeries(symbol, schema string, interval time.Duration, candles []Candle) (*Series, error) {
	if symbol == "" {
		return nil, errSymbolUnset
	}
	if schema == "" {
		return nil, errSchemaUnset
	}
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w for %v %v", ErrNoCandles, symbol, schema)
	}
	for i := range candles {
		if err := candles[i].validate(); err != nil {
			return nil, fmt.Errorf("%v %v candle %v: %w", symbol, schema, i, err)
		}
		if i > 0 && !candles[i].Time.After(candles[i-1].Time) {
			return nil, fmt.Errorf("%w: %v %v candle %v %v not after %v",
				ErrUnorderedCandles,
				symbol,
				schema,
				i,
				candles[i].Time,
				candles[i-1].Time)
		}
	}
	return &Series{
		symbol:   symbol,
		schema:   schema,
		interval: interval,
		candles:  candles,
	}, nil
}

// Symbol returns the instrument identifier the series was loaded for
func (s *Series) Symbol() string {
	return s.symbol
}

// Schema returns the vendor schema the series was loaded for
func (s *Series) Schema() string {
	return s.schema
}

// Interval returns the bar duration
func (s *Series) Interval() time.Duration {
	return s.interval
}

// Len returns the number of candles held
func (s *Series) Len() int {
	return len(s.candles)
}

// Candles returns the underlying candles. The slice is shared, callers must
// treat it as read-only
func (s *Series) Candles() []Candle {
	return s.candles
}

// First returns the earliest candle
func (s *Series) First() *Candle {
	return &s.candles[0]
}

// Last returns the latest candle
func (s *Series) Last() *Candle {
	return &s.candles[len(s.candles)-1]
}

// Gaps returns the stretches of the series' own span where no candle
// closed, measured on the series interval. Candles only need to be
// ordered, a hole between them is legal but worth surfacing
func (s *Series) Gaps() []timeperiods.TimeRange {
	if s == nil || len(s.candles) < 2 {
		return nil
	}
	times := make([]time.Time, len(s.candles))
	for i := range s.candles {
		times[i] = s.candles[i].Time
	}
	ranges, err := timeperiods.FindTimeRangesContainingData(
		times[0], times[len(times)-1].Add(s.interval), s.interval, times)
	if err != nil {
		return nil
	}
	var gaps []timeperiods.TimeRange
	for i := range ranges {
		if !ranges[i].HasData {
			gaps = append(gaps, ranges[i])
		}
	}
	return gaps
}

// NewHandler returns an iteration cursor over a series for a single run
func NewHandler(s *Series) (*Handler, error) {
	if s == nil {
		return nil, ErrNilSeries
	}
	if len(s.candles) == 0 {
		return nil, ErrNoCandles
	}
	return &Handler{series: s}, nil
}

// Next returns the next candle and shifts the offset by one
func (h *Handler) Next() (*Candle, bool) {
	if h.offset >= len(h.series.candles) {
		return nil, false
	}
	h.latest = &h.series.candles[h.offset]
	h.offset++
	return h.latest, true
}

// Latest returns the candle most recently returned by Next
func (h *Handler) Latest() *Candle {
	return h.latest
}

// Previous returns the candle before the latest one, or nil on the first
// bar. The absence of a previous candle is explicit, never a zero value
func (h *Handler) Previous() *Candle {
	if h.offset < 2 {
		return nil
	}
	return &h.series.candles[h.offset-2]
}

// Offset returns how many candles have been consumed
func (h *Handler) Offset() int {
	return h.offset
}

// History returns all candles consumed so far
func (h *Handler) History() []Candle {
	return h.series.candles[:h.offset]
}

// List returns all candles not yet consumed. Ill-advised inside strategies
// because you don't know the future in real life
func (h *Handler) List() []Candle {
	return h.series.candles[h.offset:]
}

// Series returns the underlying shared series
func (h *Handler) Series() *Series {
	return h.series
}

// Reset rewinds the cursor to the start of the series
func (h *Handler) Reset() {
	h.offset = 0
	h.latest = nil
}
