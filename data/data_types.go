package data

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoCandles is returned when a request yields no candle data,
	// no meaningful run is possible without it
	ErrNoCandles = errors.New("no candle data")
	// ErrUnorderedCandles is returned when candle timestamps are not
	// strictly increasing
	ErrUnorderedCandles = errors.New("candle timestamps must be strictly increasing")
	// ErrInvalidCandle is returned when a candle fails range validation
	ErrInvalidCandle = errors.New("invalid candle")
	// ErrNilSeries is returned when an operation receives a nil series
	ErrNilSeries = errors.New("nil series")

	// ErrInvalidInterval is returned when a series or request carries a
	// non-positive candle interval
	ErrInvalidInterval = errors.New("interval must be positive")

	errSymbolUnset = errors.New("symbol unset")
	errSchemaUnset = errors.New("schema unset")
)

// Candle is one market bar: the OHLCV core plus any schema-specific numeric
// fields and string annotations supplied by the data source
type Candle struct {
	Time        time.Time
	Open        decimal.Decimal
	High        decimal.Decimal
	Low         decimal.Decimal
	Close       decimal.Decimal
	Volume      decimal.Decimal
	Fields      map[string]decimal.Decimal
	Annotations map[string]string
}

// Series is an ordered, immutable sequence of candles for one symbol and
// schema. It is shared read-only across concurrent runs and must not be
// mutated after construction
type Series struct {
	symbol   string
	schema   string
	interval time.Duration
	candles  []Candle
}

// Handler iterates a shared series for a single run. Each run owns its own
// handler, the underlying series is never copied
type Handler struct {
	series *Series
	offset int
	latest *Candle
}
