package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/thrasher-corp/inkback/common"
	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/data/csv"
	"github.com/thrasher-corp/inkback/log"
)

var (
	// ErrNilSource is returned when a wrapper receives no source to wrap
	ErrNilSource = errors.New("received nil source")
	// ErrUnavailable is returned when a source cannot produce the requested
	// series. Callers treat this as fatal for the whole run rather than
	// something to work around per candle
	ErrUnavailable = errors.New("data unavailable")

	errSymbolUnset = errors.New("request symbol unset")
	errSchemaUnset = errors.New("request schema unset")
)

// Request describes a single series a caller wants resolved
type Request struct {
	Symbol   string
	Schema   string
	Interval time.Duration
	Start    time.Time
	End      time.Time
}

// Validate checks request fields before a source is asked to do any work
func (r *Request) Validate() error {
	if r.Symbol == "" {
		return errSymbolUnset
	}
	if r.Schema == "" {
		return errSchemaUnset
	}
	if r.Interval <= 0 {
		return fmt.Errorf("%w for %v", data.ErrInvalidInterval, r.Symbol)
	}
	if !r.Start.IsZero() && !r.End.IsZero() && !r.Start.Before(r.End) {
		return common.ErrStartAfterEnd
	}
	return nil
}

// Source resolves candle requests. Implementations are expected to be safe
// for concurrent use as sweeps share a source across workers
type Source interface {
	Name() string
	Fetch(ctx context.Context, r Request) (*data.Series, error)
}

// Func adapts an ordinary function into a Source
type Func func(ctx context.Context, r Request) (*data.Series, error)

// Name implements Source
func (f Func) Name() string { return "func" }

// Fetch implements Source
func (f Func) Fetch(ctx context.Context, r Request) (*data.Series, error) {
	return f(ctx, r)
}

// CSVDir serves requests from candle files on disk named
// <symbol>_<schema>.csv under a single directory
type CSVDir struct {
	dir string
}

// NewCSVDir returns a directory backed source
func NewCSVDir(dir string) (*CSVDir, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w, cannot stat %v: %v", ErrUnavailable, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w, %v is not a directory", ErrUnavailable, dir)
	}
	return &CSVDir{dir: dir}, nil
}

// Name implements Source
func (c *CSVDir) Name() string { return "csvdir" }

// Fetch implements Source
func (c *CSVDir) Fetch(ctx context.Context, r Request) (*data.Series, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file := filepath.Join(c.dir, fmt.Sprintf("%v_%v.csv", r.Symbol, r.Schema))
	if !common.FileExists(file) {
		return nil, fmt.Errorf("%w, no file %v", ErrUnavailable, file)
	}
	s, err := csv.LoadSeries(file, r.Symbol, r.Schema, r.Interval)
	if err != nil {
		return nil, fmt.Errorf("%w, %v", ErrUnavailable, err)
	}
	return clipSeries(s, r)
}

// clipSeries trims a loaded series to the requested window. Zero start or
// end leaves that side unbounded
func clipSeries(s *data.Series, r Request) (*data.Series, error) {
	candles := s.Candles()
	clipped := make([]data.Candle, 0, len(candles))
	for i := range candles {
		if !r.Start.IsZero() && candles[i].Time.Before(r.Start) {
			continue
		}
		if !r.End.IsZero() && !candles[i].Time.Before(r.End) {
			continue
		}
		clipped = append(clipped, candles[i])
	}
	if len(clipped) == 0 {
		return nil, fmt.Errorf("%w, no candles for %v between %v and %v",
			ErrUnavailable, r.Symbol, r.Start, r.End)
	}
	if len(clipped) == len(candles) {
		return s, nil
	}
	return data.NewSeries(s.Symbol(), s.Schema(), s.Interval(), clipped)
}

// RateLimited wraps a source so fetches respect an actions-per-interval
// limit. Useful when the underlying source is a remote vendor API
type RateLimited struct {
	source  Source
	limiter *rate.Limiter
}

// NewRateLimited returns a source throttled to the given number of actions
// per interval. A non-positive interval or action count leaves the wrapped
// source unrestricted
func NewRateLimited(s Source, interval time.Duration, actions int) (*RateLimited, error) {
	if s == nil {
		return nil, ErrNilSource
	}
	if actions <= 0 || interval <= 0 {
		return &RateLimited{source: s, limiter: rate.NewLimiter(rate.Inf, 1)}, nil
	}
	rps := float64(actions) / interval.Seconds()
	return &RateLimited{source: s, limiter: rate.NewLimiter(rate.Limit(rps), 1)}, nil
}

// Name implements Source
func (r *RateLimited) Name() string { return r.source.Name() }

// Fetch implements Source, waiting out the limiter before delegating
func (r *RateLimited) Fetch(ctx context.Context, req Request) (*data.Series, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	log.Debugf(log.Data, "fetching %v %v from %v", req.Symbol, req.Schema, r.source.Name())
	return r.source.Fetch(ctx, req)
}
