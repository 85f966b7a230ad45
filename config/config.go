// Package config loads and checks the session configuration. It is only
// ever consumed by main, engine packages take their settings explicitly
package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/thrasher-corp/inkback/common"
	"github.com/thrasher-corp/inkback/common/file"
	"github.com/thrasher-corp/inkback/data/source"
	"github.com/thrasher-corp/inkback/execution/costs"
	"github.com/thrasher-corp/inkback/log"
)

// Load reads a JSON config file and overlays INKBACK_ environment
// variables. An empty path loads defaults and environment only. Callers
// decide when to Validate, cache maintenance does not need a full session
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v)
	v.SetEnvPrefix("INKBACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		if !file.Exists(path) {
			return nil, fmt.Errorf("config file not found: %v", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
	}

	cfg := &Config{}
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		decimalDecodeHook(),
	)
	if err := v.Unmarshal(cfg, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.symbol", "")
	v.SetDefault("data.schema", "ohlcv-1d")
	v.SetDefault("data.interval", "24h")
	v.SetDefault("data.cache_path", "inkback.db")
	v.SetDefault("data.csv_dir", "")
	v.SetDefault("strategy.name", "")
	v.SetDefault("strategy.script", "")
	v.SetDefault("funds.initial_cash", 100000)
	v.SetDefault("funds.risk_free_rate", 0)
	v.SetDefault("costs.preset", "")
	v.SetDefault("workers", 0)
	v.SetDefault("report.output_dir", common.DataDir)
	v.SetDefault("report.chart", true)
	v.SetDefault("report.summary", true)
	v.SetDefault("log.level", "INFO|WARN|ERROR")
}

// decimalDecodeHook converts config numbers and strings into decimals so
// money never takes the float round trip
func decimalDecodeHook() mapstructure.DecodeHookFuncType {
	decimalType := reflect.TypeOf(decimal.Decimal{})
	return func(_, to reflect.Type, value interface{}) (interface{}, error) {
		if to != decimalType {
			return value, nil
		}
		switch v := value.(type) {
		case float64:
			return decimal.NewFromFloat(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case string:
			return decimal.NewFromString(v)
		default:
			return value, nil
		}
	}
}

// Validate checks all config settings
func (c *Config) Validate() error {
	if err := c.Data.validate(); err != nil {
		return err
	}
	if err := c.Strategy.validate(); err != nil {
		return err
	}
	if err := c.Funds.validate(); err != nil {
		return err
	}
	if err := c.validateGrid(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errBadWorkers
	}
	_, err := c.Costs.Build()
	return err
}

func (d *Data) validate() error {
	r := d.Request()
	return r.Validate()
}

func (s *Strategy) validate() error {
	if s.Name == "" && s.Script == "" {
		return errStrategyUnset
	}
	return nil
}

func (f *Funds) validate() error {
	if !f.InitialCash.IsPositive() {
		return errBadInitialFunds
	}
	return nil
}

func (c *Config) validateGrid() error {
	for k, values := range c.Grid {
		if len(values) == 0 {
			return fmt.Errorf("%w: %v", errEmptyGridAxis, k)
		}
	}
	return nil
}

// Request converts the data section into a source request
func (d *Data) Request() source.Request {
	return source.Request{
		Symbol:   d.Symbol,
		Schema:   d.Schema,
		Interval: d.Interval,
		Start:    d.Start,
		End:      d.End,
	}
}

// Build assembles the execution cost models, starting from the preset
// when one is named and overlaying any explicit model
func (c *Costs) Build() (costs.Costs, error) {
	built := costs.Frictionless()
	switch strings.ToLower(c.Preset) {
	case "", "frictionless":
	case "retail", "retail-equities", "retail_equities":
		built = costs.RetailEquities()
	case "futures", "futures-contract", "futures_contract":
		if !c.TickSize.IsPositive() {
			return costs.Costs{}, errTickSizeUnset
		}
		built = costs.FuturesContract(c.TickSize)
	default:
		return costs.Costs{}, fmt.Errorf("%w %v", ErrUnknownPreset, c.Preset)
	}
	if c.Commission != nil {
		built.Commission = *c.Commission
	}
	if c.Slippage != nil {
		built.Slippage = *c.Slippage
	}
	if c.Spread != nil {
		built.Spread = *c.Spread
	}
	if err := built.Validate(); err != nil {
		return costs.Costs{}, err
	}
	return built, nil
}

// PrintSetting prints relevant settings to the console for easy reading
func (c *Config) PrintSetting() {
	log.Infoln(log.ConfigMgr, "------------------Session Settings---------------------------")
	log.Infof(log.ConfigMgr, "Symbol: %v", c.Data.Symbol)
	log.Infof(log.ConfigMgr, "Schema: %v", c.Data.Schema)
	log.Infof(log.ConfigMgr, "Interval: %v", c.Data.Interval)
	if !c.Data.Start.IsZero() {
		log.Infof(log.ConfigMgr, "Start date: %v", c.Data.Start.Format(common.SimpleTimeFormat))
	}
	if !c.Data.End.IsZero() {
		log.Infof(log.ConfigMgr, "End date: %v", c.Data.End.Format(common.SimpleTimeFormat))
	}
	log.Infof(log.ConfigMgr, "Cache: %v", c.Data.CachePath)
	if c.Data.CSVDir != "" {
		log.Infof(log.ConfigMgr, "CSV directory: %v", c.Data.CSVDir)
	}

	log.Infoln(log.ConfigMgr, "------------------Strategy Settings--------------------------")
	log.Infof(log.ConfigMgr, "Strategy: %v", c.Strategy.Name)
	if c.Strategy.Script != "" {
		log.Infof(log.ConfigMgr, "Script: %v", c.Strategy.Script)
	}
	if len(c.Strategy.Params) > 0 {
		log.Infoln(log.ConfigMgr, "Custom strategy variables:")
		for _, k := range sortedKeys(c.Strategy.Params) {
			log.Infof(log.ConfigMgr, "%s: %v", k, c.Strategy.Params[k])
		}
	} else {
		log.Infoln(log.ConfigMgr, "Custom strategy variables: unset")
	}
	if len(c.Grid) > 0 {
		log.Infoln(log.ConfigMgr, "Sweep grid:")
		keys := make([]string, 0, len(c.Grid))
		for k := range c.Grid {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			log.Infof(log.ConfigMgr, "%s: %v", k, c.Grid[k])
		}
	}

	log.Infoln(log.ConfigMgr, "------------------Funding Settings---------------------------")
	log.Infof(log.ConfigMgr, "Initial cash: %v", c.Funds.InitialCash.Round(8))
	if !c.Funds.RiskFreeRate.IsZero() {
		log.Infof(log.ConfigMgr, "Risk free rate: %v", c.Funds.RiskFreeRate)
	}
	if c.Costs.Preset != "" {
		log.Infof(log.ConfigMgr, "Costs preset: %v", c.Costs.Preset)
	}
	if built, err := c.Costs.Build(); err == nil {
		log.Infof(log.ConfigMgr, "Commission: %+v", built.Commission)
		log.Infof(log.ConfigMgr, "Slippage: %+v", built.Slippage)
		log.Infof(log.ConfigMgr, "Spread: %+v", built.Spread)
	}
	log.Infof(log.ConfigMgr, "Workers: %v", c.Workers)
	log.Infof(log.ConfigMgr, "Report directory: %v", c.Report.OutputDir)
	log.Infof(log.ConfigMgr, "Chart: %v. Summary: %v",
		common.IsEnabled(c.Report.Chart), common.IsEnabled(c.Report.Summary))
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
