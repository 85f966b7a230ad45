package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/thrasher-corp/inkback/backtest"
	"github.com/thrasher-corp/inkback/common"
	"github.com/thrasher-corp/inkback/config"
	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/data/cache"
	"github.com/thrasher-corp/inkback/data/source"
	"github.com/thrasher-corp/inkback/log"
	"github.com/thrasher-corp/inkback/report"
	"github.com/thrasher-corp/inkback/signaler"
	"github.com/thrasher-corp/inkback/strategy"
	_ "github.com/thrasher-corp/inkback/strategy/footprint"
	_ "github.com/thrasher-corp/inkback/strategy/mac"
	_ "github.com/thrasher-corp/inkback/strategy/rsi"
	"github.com/thrasher-corp/inkback/strategy/script"
)

var configPath string

func main() {
	app := cli.NewApp()
	app.Name = "inkback"
	app.Usage = "offline strategy simulation over cached candle data"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Value:       "config.json",
			Usage:       "path to the session config file",
			Destination: &configPath,
		},
	}
	app.Commands = []*cli.Command{
		runCommand,
		sweepCommand,
		cacheCommand,
		strategiesCommand,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Capture cancel for interrupt
		<-signaler.WaitForInterrupt()
		cancel()
		fmt.Println("session interrupted")
		os.Exit(1)
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Errorln(log.Global, err)
		os.Exit(1)
	}
}

var runCommand = &cli.Command{
	Name:   "run",
	Usage:  "replay the configured series through a single strategy and benchmark it",
	Action: runAction,
}

var sweepCommand = &cli.Command{
	Name:   "sweep",
	Usage:  "run every parameter combination of the configured grid in parallel",
	Action: sweepAction,
}

var cacheCommand = &cli.Command{
	Name:  "cache",
	Usage: "manage the candle cache",
	Subcommands: []*cli.Command{
		{
			Name:   "list",
			Usage:  "list cached datasets",
			Action: cacheListAction,
		},
		{
			Name:      "purge",
			Usage:     "delete cached datasets, defaults to the configured symbol",
			ArgsUsage: "<symbol>",
			Action:    cachePurgeAction,
		},
	},
}

var strategiesCommand = &cli.Command{
	Name:   "strategies",
	Usage:  "list registered strategies",
	Action: strategiesAction,
}

func runAction(c *cli.Context) error {
	cfg, err := loadSession()
	if err != nil {
		return err
	}
	series, store, err := loadSeries(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	settings, err := buildSettings(cfg)
	if err != nil {
		return err
	}
	h, err := strategy.New(cfg.Strategy.Name)
	if err != nil {
		return err
	}
	params := strategy.Params(cfg.Strategy.Params)
	if len(params) > 0 {
		if err := h.SetParams(params.Clone()); err != nil {
			return err
		}
	}

	result, err := backtest.Run(h, series, settings)
	if err != nil {
		return err
	}
	if label := params.Label(); label != "" {
		result.Label = strings.TrimSpace(result.Strategy + " " + label)
		result.Params = params
	}
	benchmark, err := backtest.Benchmark(series, settings)
	if err != nil {
		return err
	}

	sr := &backtest.SweepResult{
		Runs:      []*backtest.Result{result},
		Benchmark: benchmark,
	}
	return publish(cfg, sr, "run")
}

func sweepAction(c *cli.Context) error {
	cfg, err := loadSession()
	if err != nil {
		return err
	}
	series, store, err := loadSeries(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	settings, err := buildSettings(cfg)
	if err != nil {
		return err
	}
	sweep := backtest.NewSweep(cfg.Strategy.Name, buildGrid(cfg), series, settings)
	sweep.Workers = cfg.Workers
	sr, err := sweep.Run()
	if err != nil {
		return err
	}
	return publish(cfg, sr, "sweep")
}

func cacheListAction(c *cli.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	store, err := cache.Open(cfg.Data.CachePath)
	if err != nil {
		return err
	}
	defer closeStore(store)

	entries, err := store.List(c.Context)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("cache is empty")
		return nil
	}
	for i := range entries {
		fmt.Printf("%v %v %v %v -> %v, %v candles, source %v, cached %v\n",
			entries[i].Symbol,
			entries[i].Schema,
			entries[i].Interval,
			entries[i].Start.Format(common.SimpleTimeFormat),
			entries[i].End.Format(common.SimpleTimeFormat),
			entries[i].Candles,
			entries[i].Source,
			entries[i].CreatedAt.Format(common.SimpleTimeFormat))
	}
	return nil
}

func cachePurgeAction(c *cli.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	symbol := c.Args().First()
	if symbol == "" {
		symbol = cfg.Data.Symbol
	}
	if symbol == "" {
		return errors.New("no symbol to purge, pass one or set data.symbol")
	}
	store, err := cache.Open(cfg.Data.CachePath)
	if err != nil {
		return err
	}
	defer closeStore(store)

	purged, err := store.Purge(c.Context, symbol)
	if err != nil {
		return err
	}
	fmt.Printf("purged %v datasets for %v\n", purged, symbol)
	return nil
}

func strategiesAction(*cli.Context) error {
	for _, name := range strategy.List() {
		fmt.Println(name)
	}
	return nil
}

// loadSession reads the config, applies log levels, registers a script
// strategy when one is configured and validates the lot
func loadSession() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Log.Level != "" {
		log.SetGlobalLevels(cfg.Log.Level)
	}
	if cfg.Strategy.Script != "" {
		if err := script.RegisterFile(cfg.Strategy.Script); err != nil {
			return nil, err
		}
		if cfg.Strategy.Name == "" {
			base := filepath.Base(cfg.Strategy.Script)
			cfg.Strategy.Name = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.PrintSetting()
	return cfg, nil
}

func loadSeries(ctx context.Context, cfg *config.Config) (*data.Series, *cache.Store, error) {
	store, err := cache.Open(cfg.Data.CachePath)
	if err != nil {
		return nil, nil, err
	}
	src, err := buildSource(cfg)
	if err != nil {
		closeStore(store)
		return nil, nil, err
	}
	series, err := store.Ensure(ctx, src, cfg.Data.Request())
	if err != nil {
		closeStore(store)
		return nil, nil, err
	}
	return series, store, nil
}

// buildSource serves cache misses from the configured csv directory. With
// no directory configured the cache is all there is
func buildSource(cfg *config.Config) (source.Source, error) {
	if cfg.Data.CSVDir != "" {
		return source.NewCSVDir(cfg.Data.CSVDir)
	}
	return source.Func(func(context.Context, source.Request) (*data.Series, error) {
		return nil, fmt.Errorf("%w: no csv_dir configured", source.ErrUnavailable)
	}), nil
}

func buildSettings(cfg *config.Config) (backtest.Settings, error) {
	built, err := cfg.Costs.Build()
	if err != nil {
		return backtest.Settings{}, err
	}
	return backtest.Settings{
		InitialCash:  cfg.Funds.InitialCash,
		Costs:        built,
		RiskFreeRate: cfg.Funds.RiskFreeRate,
	}, nil
}

// buildGrid folds fixed strategy params into the sweep grid as single
// value axes so every cell carries them
func buildGrid(cfg *config.Config) strategy.Grid {
	grid := make(strategy.Grid, len(cfg.Grid)+len(cfg.Strategy.Params))
	for k, values := range cfg.Grid {
		grid[k] = values
	}
	for k, v := range cfg.Strategy.Params {
		if _, ok := grid[k]; !ok {
			grid[k] = []float64{v}
		}
	}
	return grid
}

func publish(cfg *config.Config, sr *backtest.SweepResult, name string) error {
	report.PrintResults(sr)
	if cfg.Report.Summary {
		if err := report.WriteSummary(filepath.Join(cfg.Report.OutputDir, name+".csv"), sr); err != nil {
			return err
		}
	}
	if cfg.Report.Chart {
		return report.WriteChart(filepath.Join(cfg.Report.OutputDir, name+".html"), sr)
	}
	return nil
}

func closeStore(store *cache.Store) {
	if err := store.Close(); err != nil {
		log.Errorln(log.Data, err)
	}
}
