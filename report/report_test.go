package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrasher-corp/inkback/backtest"
	"github.com/thrasher-corp/inkback/holdings"
	"github.com/thrasher-corp/inkback/statistics"
)

var errContrived = errors.New("contrived failure")

func curve(start time.Time, equities ...float64) []holdings.Snapshot {
	snapshots := make([]holdings.Snapshot, len(equities))
	for i := range equities {
		snapshots[i] = holdings.Snapshot{
			Time:   start.Add(time.Duration(i) * time.Hour * 24),
			Equity: decimal.NewFromFloat(equities[i]),
		}
	}
	return snapshots
}

func run(label string, totalReturn float64, equities ...float64) *backtest.Result {
	return &backtest.Result{
		Strategy: "test",
		Label:    label,
		Report: &statistics.Report{
			TotalReturn:  decimal.NewFromFloat(totalReturn),
			WinRate:      decimal.NewFromFloat(0.5),
			ProfitFactor: decimal.NewFromFloat(1.2),
			TotalTrades:  3,
			TotalFees:    decimal.NewFromFloat(1.5),
		},
		EquityCurve: curve(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), equities...),
	}
}

func TestRank(t *testing.T) {
	t.Parallel()
	runs := []*backtest.Result{
		run("middling", 0.05, 100, 105),
		{Strategy: "test", Label: "broken", Failure: errContrived},
		run("best", 0.25, 100, 125),
		run("worst", -0.10, 100, 90),
	}
	ranked := Rank(runs)
	require.Len(t, ranked, 3)
	assert.Equal(t, "best", ranked[0].Label)
	assert.Equal(t, "middling", ranked[1].Label)
	assert.Equal(t, "worst", ranked[2].Label)
	// input order is left alone
	assert.Equal(t, "middling", runs[0].Label)
}

func TestPrintResults(t *testing.T) {
	t.Parallel()
	// exercised for robustness, the interesting assertions live against
	// Rank which drives the ordering
	PrintResults(nil)
	PrintResults(&backtest.SweepResult{})
	PrintResults(&backtest.SweepResult{
		Runs: []*backtest.Result{
			{Strategy: "test", Label: "broken", Failure: errContrived},
		},
	})
	PrintResults(&backtest.SweepResult{
		Runs: []*backtest.Result{
			run("winner", 0.2, 100, 120),
			run("loser", -0.1, 100, 90),
			{Strategy: "test", Label: "broken", Failure: errContrived},
		},
		Benchmark: run("buy and hold", 0.05, 100, 105),
	})
}

func TestWriteChart(t *testing.T) {
	t.Parallel()
	target := filepath.Join(t.TempDir(), "charts", "sweep.html")
	sr := &backtest.SweepResult{
		Runs: []*backtest.Result{
			run("winner", 0.2, 100, 110, 120),
			run("loser", -0.1, 100, 95, 90),
			{Strategy: "test", Label: "broken", Failure: errContrived},
		},
		Benchmark: run("buy and hold", 0.05, 100, 102, 105),
	}
	require.NoError(t, WriteChart(target, sr))

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	html := string(contents)
	assert.Contains(t, html, "winner")
	assert.Contains(t, html, "loser")
	assert.Contains(t, html, "buy and hold")
	assert.NotContains(t, html, "broken")
}

func TestWriteChartNoResults(t *testing.T) {
	t.Parallel()
	target := filepath.Join(t.TempDir(), "sweep.html")
	assert.ErrorIs(t, WriteChart(target, nil), ErrNoResults)
	assert.ErrorIs(t, WriteChart(target, &backtest.SweepResult{}), ErrNoResults)
	assert.ErrorIs(t, WriteChart(target, &backtest.SweepResult{
		Runs: []*backtest.Result{{Label: "broken", Failure: errContrived}},
	}), ErrNoResults)
}

func TestWriteChartWithoutBenchmark(t *testing.T) {
	t.Parallel()
	target := filepath.Join(t.TempDir(), "sweep.html")
	sr := &backtest.SweepResult{
		Runs: []*backtest.Result{run("only", 0.1, 100, 105, 110)},
	}
	require.NoError(t, WriteChart(target, sr))
	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "only")
}

func TestWriteChartCapsSeries(t *testing.T) {
	t.Parallel()
	sr := &backtest.SweepResult{
		Benchmark: run("buy and hold", 0.0, 100, 100, 100),
	}
	for i := 0; i < maxChartSeries+5; i++ {
		sr.Runs = append(sr.Runs,
			run(fmt.Sprintf("cell %02d", i), float64(i)*0.01, 100, 100+float64(i)))
	}
	target := filepath.Join(t.TempDir(), "sweep.html")
	require.NoError(t, WriteChart(target, sr))

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	html := string(contents)
	// the best ranked cell has the highest return, "cell 24"
	assert.Contains(t, html, "cell 24")
	assert.Contains(t, html, fmt.Sprintf("cell %02d", 5))
	for i := 0; i < 5; i++ {
		assert.NotContains(t, html, fmt.Sprintf("cell %02d", i),
			"curves ranked past the cap should not be plotted")
	}
	assert.Equal(t, maxChartSeries+1, strings.Count(html, `"type":"line"`))
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()
	target := filepath.Join(t.TempDir(), "summaries", "sweep.csv")
	sr := &backtest.SweepResult{
		Runs: []*backtest.Result{
			run("loser", -0.1, 100, 95, 90),
			run("winner", 0.2, 100, 110, 120),
			{Strategy: "test", Label: "broken", Failure: errContrived},
		},
		Benchmark: run("buy and hold", 0.05, 100, 102, 105),
	}
	require.NoError(t, WriteSummary(target, sr))

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "total_return_pct")
	assert.True(t, strings.HasPrefix(lines[1], "buy and hold,5,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "winner,20,"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "loser,-10,"), lines[3])
	assert.NotContains(t, string(contents), "broken")

	assert.ErrorIs(t, WriteSummary(target, nil), ErrNoResults)
	assert.ErrorIs(t, WriteSummary(target, &backtest.SweepResult{}), ErrNoResults)
}

func TestPercent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "12.35", percent(decimal.NewFromFloat(0.123456)).String())
	assert.Equal(t, "-5", percent(decimal.NewFromFloat(-0.05)).String())
	assert.Equal(t, "0", share(3, decimal.Zero).String())
	assert.Equal(t, "75", share(3, decimal.NewFromInt(4)).String())
}
