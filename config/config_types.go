package config

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thrasher-corp/inkback/execution/costs"
)

var (
	// ErrUnknownPreset is returned when the costs section names a preset
	// that does not exist
	ErrUnknownPreset = errors.New("unknown costs preset")

	errStrategyUnset   = errors.New("strategy name and script both unset")
	errBadInitialFunds = errors.New("initial cash must be positive")
	errEmptyGridAxis   = errors.New("grid axis has no values")
	errBadWorkers      = errors.New("workers cannot be negative")
	errTickSizeUnset   = errors.New("futures preset needs a positive tick_size")
)

// Config is the whole runtime configuration for a session. Engine
// packages never see it, main translates sections into their settings
type Config struct {
	Data     Data                 `mapstructure:"data"`
	Strategy Strategy             `mapstructure:"strategy"`
	Grid     map[string][]float64 `mapstructure:"grid"`
	Funds    Funds                `mapstructure:"funds"`
	Costs    Costs                `mapstructure:"costs"`
	Workers  int                  `mapstructure:"workers"`
	Report   Report               `mapstructure:"report"`
	Log      Log                  `mapstructure:"log"`
}

// Data describes which series to replay and where it is kept
type Data struct {
	Symbol    string        `mapstructure:"symbol"`
	Schema    string        `mapstructure:"schema"`
	Interval  time.Duration `mapstructure:"interval"`
	Start     time.Time     `mapstructure:"start"`
	End       time.Time     `mapstructure:"end"`
	CachePath string        `mapstructure:"cache_path"`
	CSVDir    string        `mapstructure:"csv_dir"`
}

// Strategy selects the handler under test. Script points at a tengo
// file registered on startup, its name doubles as the strategy name
// when Name is unset
type Strategy struct {
	Name   string             `mapstructure:"name"`
	Params map[string]float64 `mapstructure:"params"`
	Script string             `mapstructure:"script"`
}

// Funds seeds the simulated account. RiskFreeRate is annualised and only
// feeds the risk adjusted statistics
type Funds struct {
	InitialCash  decimal.Decimal `mapstructure:"initial_cash"`
	RiskFreeRate decimal.Decimal `mapstructure:"risk_free_rate"`
}

// Costs either names a preset or spells the friction models out. An
// explicit model replaces its preset counterpart
type Costs struct {
	Preset     string            `mapstructure:"preset"`
	TickSize   decimal.Decimal   `mapstructure:"tick_size"`
	Commission *costs.Commission `mapstructure:"commission"`
	Slippage   *costs.Slippage   `mapstructure:"slippage"`
	Spread     *costs.Spread     `mapstructure:"spread"`
}

// Report controls what a finished session writes where
type Report struct {
	OutputDir string `mapstructure:"output_dir"`
	Chart     bool   `mapstructure:"chart"`
	Summary   bool   `mapstructure:"summary"`
}

// Log holds the pipe delimited level string applied to every sublogger
type Log struct {
	Level string `mapstructure:"level"`
}
