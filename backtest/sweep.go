package backtest

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/log"
	"github.com/thrasher-corp/inkback/strategy"
)

// Sweep evaluates many parameter cells over a shared series in parallel.
// The series is shared read only, everything else is per cell
type Sweep struct {
	Series   *data.Series
	Settings Settings
	Cells    []Cell
	// Workers caps the pool size, the machine's CPU count when zero
	Workers int
}

// NewSweep expands a parameter grid into one cell per combination for a
// single strategy. Combinations enumerate in sorted key order with the
// last key cycling fastest, so a sweep's cell order is reproducible. An
// empty grid yields one cell running the strategy's defaults
func NewSweep(strategyName string, grid strategy.Grid, series *data.Series, settings Settings) *Sweep {
	combos := grid.Combinations()
	if len(combos) == 0 {
		combos = []strategy.Params{{}}
	}
	cells := make([]Cell, 0, len(combos))
	for i := range combos {
		cells = append(cells, Cell{Strategy: strategyName, Params: combos[i]})
	}
	return &Sweep{Series: series, Settings: settings, Cells: cells}
}

// Run drains every cell through a fixed worker pool and then runs the
// benchmark. Results are indexed by cell so the returned order is the
// generation order regardless of which worker finished first. A failed
// cell never stops its siblings
func (s *Sweep) Run() (*SweepResult, error) {
	if s.Series == nil {
		return nil, data.ErrNilSeries
	}
	if s.Series.Len() == 0 {
		return nil, data.ErrNoCandles
	}
	if len(s.Cells) == 0 {
		return nil, ErrNoCells
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(s.Cells) {
		workers = len(s.Cells)
	}
	log.Infof(log.Sweep, "running %v cells over %v candles across %v workers",
		len(s.Cells), s.Series.Len(), workers)

	results := make([]*Result, len(s.Cells))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.runCell(i)
			}
		}()
	}
	for i := range s.Cells {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var failed int
	for i := range results {
		if results[i].Failed() {
			failed++
		}
	}
	if failed > 0 {
		log.Warnf(log.Sweep, "%v of %v cells failed", failed, len(results))
	}

	benchmark, err := Benchmark(s.Series, s.Settings)
	if err != nil {
		return nil, err
	}
	return &SweepResult{Runs: results, Benchmark: benchmark}, nil
}

// runCell executes one cell in isolation: its own strategy instance, its
// own cursor, account and execution model. Anything that goes wrong
// becomes that cell's Failure, one result always comes back
func (s *Sweep) runCell(i int) (result *Result) {
	cell := s.Cells[i]
	label := strings.TrimSpace(cell.Strategy + " " + cell.Params.Label())

	defer func() {
		if r := recover(); r != nil {
			result = &Result{
				Strategy: cell.Strategy,
				Label:    label,
				Params:   cell.Params,
				Failure:  fmt.Errorf("%w: recovered panic: %v", ErrStrategyFault, r),
			}
		}
	}()

	h, err := strategy.New(cell.Strategy)
	if err == nil {
		err = h.SetParams(cell.Params)
	}
	if err != nil {
		return &Result{Strategy: cell.Strategy, Label: label, Params: cell.Params, Failure: err}
	}

	result, err = Run(h, s.Series, s.Settings)
	if err != nil {
		return &Result{Strategy: cell.Strategy, Label: label, Params: cell.Params, Failure: err}
	}
	result.Label = label
	result.Params = cell.Params
	return result
}
