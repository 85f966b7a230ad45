// Package report renders a sweep's outcome: a ranked summary through the
// logger, a CSV of per run metrics and a self contained HTML page of
// equity curves
package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/shopspring/decimal"

	"github.com/thrasher-corp/inkback/backtest"
	"github.com/thrasher-corp/inkback/common"
	"github.com/thrasher-corp/inkback/common/file"
	gctmath "github.com/thrasher-corp/inkback/common/math"
	"github.com/thrasher-corp/inkback/holdings"
	"github.com/thrasher-corp/inkback/log"
)

// ErrNoResults is returned when a chart is requested for a sweep that
// produced nothing plottable
var ErrNoResults = errors.New("no results to report")

// maxChartSeries caps how many equity curves are drawn, everything past
// the cap ranked worse than what made it on
const maxChartSeries = 20

var oneHundred = decimal.NewFromInt(100)

// Rank returns the successful runs ordered by total return, best first.
// Ranking is presentation only, the sweep's result order is untouched
func Rank(runs []*backtest.Result) []*backtest.Result {
	ranked := make([]*backtest.Result, 0, len(runs))
	for i := range runs {
		if !runs[i].Failed() {
			ranked = append(ranked, runs[i])
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Report.TotalReturn.GreaterThan(ranked[j].Report.TotalReturn)
	})
	return ranked
}

// PrintResults logs the sweep outcome: the benchmark, every successful
// cell ranked by return, each failure with its cause, then the aggregate
// summary block
func PrintResults(sr *backtest.SweepResult) {
	if sr == nil || len(sr.Runs) == 0 {
		log.Warnln(log.Report, "nothing to report")
		return
	}

	hasBenchmark := sr.Benchmark != nil && !sr.Benchmark.Failed()
	if hasBenchmark {
		log.Infof(log.Report, "benchmark: return %v%%, max drawdown %v%%",
			percent(sr.Benchmark.Report.TotalReturn),
			percent(sr.Benchmark.Report.MaxDrawdown.Drawdown))
	}

	ranked := Rank(sr.Runs)
	for i := range ranked {
		r := ranked[i].Report
		log.Infof(log.Report,
			"%v. %v: return %v%%, max drawdown %v%%, win rate %v%%, profit factor %v, trades %v, fees %v",
			i+1, ranked[i].Label, percent(r.TotalReturn), percent(r.MaxDrawdown.Drawdown),
			percent(r.WinRate), r.ProfitFactor.Round(2), r.TotalTrades, r.TotalFees.Round(2))
	}
	for i := range sr.Runs {
		if sr.Runs[i].Failed() {
			log.Warnf(log.Report, "failed %v: %v", sr.Runs[i].Label, sr.Runs[i].Failure)
		}
	}
	if len(ranked) == 0 {
		return
	}

	var profitable, beating int
	sum := decimal.Zero
	for i := range ranked {
		tr := ranked[i].Report.TotalReturn
		sum = sum.Add(tr)
		if tr.IsPositive() {
			profitable++
		}
		if hasBenchmark && tr.GreaterThan(sr.Benchmark.Report.TotalReturn) {
			beating++
		}
	}
	count := decimal.NewFromInt(int64(len(ranked)))
	log.Infof(log.Report, "cells tested: %v, profitable: %v (%v%%)",
		len(ranked), profitable, share(profitable, count))
	log.Infof(log.Report, "average return %v%%, best %v%% (%v), worst %v%% (%v)",
		percent(sum.Div(count)),
		percent(ranked[0].Report.TotalReturn), ranked[0].Label,
		percent(ranked[len(ranked)-1].Report.TotalReturn), ranked[len(ranked)-1].Label)
	if hasBenchmark {
		log.Infof(log.Report, "cells beating the benchmark: %v (%v%%)", beating, share(beating, count))
	}
}

// WriteChart renders the equity curves of the best runs and the benchmark
// to a self contained HTML file, creating the parent directory as needed
func WriteChart(path string, sr *backtest.SweepResult) error {
	if sr == nil {
		return ErrNoResults
	}
	ranked := Rank(sr.Runs)
	hasBenchmark := sr.Benchmark != nil && !sr.Benchmark.Failed()
	if len(ranked) == 0 && !hasBenchmark {
		return ErrNoResults
	}
	if len(ranked) > maxChartSeries {
		log.Infof(log.Report, "too many equity curves (%v), plotting only the top %v",
			len(ranked), maxChartSeries)
		ranked = ranked[:maxChartSeries]
	}

	var axisSource []holdings.Snapshot
	if hasBenchmark {
		axisSource = sr.Benchmark.EquityCurve
	} else {
		axisSource = ranked[0].EquityCurve
	}
	axis := make([]string, len(axisSource))
	for i := range axisSource {
		axis[i] = axisSource[i].Time.Format(common.SimpleTimeFormat)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "inkback sweep",
			Width:     "1400px",
			Height:    "720px",
		}),
		charts.WithTitleOpts(opts.Title{Title: "equity curves"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
	)
	line.SetXAxis(axis)
	if hasBenchmark {
		line.AddSeries(sr.Benchmark.Label, toLineData(sr.Benchmark.EquityCurve),
			charts.WithLineStyleOpts(opts.LineStyle{Width: 3}))
	}
	for i := range ranked {
		line.AddSeries(ranked[i].Label, toLineData(ranked[i].EquityCurve))
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	f, err := file.Writer(path)
	if err != nil {
		return err
	}
	defer func() {
		if errClose := f.Close(); errClose != nil {
			log.Errorln(log.Report, errClose)
		}
	}()
	if err := line.Render(f); err != nil {
		return fmt.Errorf("could not render chart: %w", err)
	}
	log.Infof(log.Report, "wrote equity chart to %v", path)
	return nil
}

// WriteSummary writes every successful run as a CSV row in the same order
// the log output ranks them, benchmark first when one survived
func WriteSummary(path string, sr *backtest.SweepResult) error {
	if sr == nil {
		return ErrNoResults
	}
	ranked := Rank(sr.Runs)
	hasBenchmark := sr.Benchmark != nil && !sr.Benchmark.Failed()
	if len(ranked) == 0 && !hasBenchmark {
		return ErrNoResults
	}

	records := make([][]string, 0, len(ranked)+2)
	records = append(records, []string{
		"label", "total_return_pct", "annualized_return_pct", "sharpe_ratio",
		"max_drawdown_pct", "win_rate_pct", "profit_factor", "trades", "fees",
	})
	if hasBenchmark {
		records = append(records, summaryRow(sr.Benchmark))
	}
	for i := range ranked {
		records = append(records, summaryRow(ranked[i]))
	}
	if err := file.WriteAsCSV(path, records); err != nil {
		return err
	}
	log.Infof(log.Report, "wrote summary to %v", path)
	return nil
}

func summaryRow(r *backtest.Result) []string {
	rep := r.Report
	return []string{
		r.Label,
		percent(rep.TotalReturn).String(),
		percent(rep.AnnualizedReturn).String(),
		rep.SharpeRatio.Round(4).String(),
		percent(rep.MaxDrawdown.Drawdown).String(),
		percent(rep.WinRate).String(),
		rep.ProfitFactor.Round(4).String(),
		strconv.Itoa(rep.TotalTrades),
		rep.TotalFees.Round(2).String(),
	}
}

func toLineData(curve []holdings.Snapshot) []opts.LineData {
	data := make([]opts.LineData, len(curve))
	for i := range curve {
		data[i] = opts.LineData{Value: gctmath.RoundFloat(curve[i].Equity.InexactFloat64(), 2)}
	}
	return data
}

// percent renders a fraction as a percentage rounded for display
func percent(fraction decimal.Decimal) decimal.Decimal {
	return fraction.Mul(oneHundred).Round(2)
}

func share(n int, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return percent(decimal.NewFromInt(int64(n)).Div(total))
}
