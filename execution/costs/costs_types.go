package costs

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownSlippageModel is returned when a slippage model name is
	// not recognised
	ErrUnknownSlippageModel = errors.New("unknown slippage model")
	// ErrUnknownSpreadModel is returned when a spread model name is not
	// recognised
	ErrUnknownSpreadModel = errors.New("unknown spread model")
	// ErrNegativeCost is returned when a commission, slippage or spread
	// input is negative
	ErrNegativeCost = errors.New("cost inputs cannot be negative")
)

// SlippageModel selects how price impact scales with order size
type SlippageModel string

// Slippage models. Participation is order amount divided by the candle's
// volume
const (
	// SlippageFixed charges a flat basis-point impact
	SlippageFixed SlippageModel = "fixed"
	// SlippageLinear scales the impact with participation, capped at full
	// participation
	SlippageLinear SlippageModel = "linear"
	// SlippageSquareRoot scales the impact with the square root of
	// participation
	SlippageSquareRoot SlippageModel = "sqrt"
	// SlippageMarketImpact combines permanent and temporary impact with a
	// liquidity adjustment for thin markets
	SlippageMarketImpact SlippageModel = "impact"
)

// SpreadModel selects how the bid/ask spread is approximated
type SpreadModel string

// Spread models
const (
	// SpreadNone assumes trading at mid
	SpreadNone SpreadModel = "none"
	// SpreadFixed uses a full spread in price units, tick size for futures
	SpreadFixed SpreadModel = "fixed"
	// SpreadProportional uses a full spread as a percentage of price
	SpreadProportional SpreadModel = "proportional"
)

// Commission is the fee charged on each fill,
// Fixed + PerUnit*amount + rate*price*amount. The rate comes from the
// notional tier table when Tiers is set, otherwise from Rate
type Commission struct {
	Fixed   decimal.Decimal
	PerUnit decimal.Decimal
	Rate    decimal.Decimal
	Tiers   []Tier
}

// Tier maps a notional trade value threshold to the commission rate
// charged at or below it. Trades above every threshold use the last rate
type Tier struct {
	Threshold decimal.Decimal
	Rate      decimal.Decimal
}

// Slippage models adverse price movement between decision and execution
// in basis points of the fill price
type Slippage struct {
	Model SlippageModel
	// Bps is the flat impact for the fixed model
	Bps decimal.Decimal
	// Factor scales participation for the linear and sqrt models
	Factor decimal.Decimal
	// Permanent, Temporary and Liquidity parameterise the market impact
	// model
	Permanent decimal.Decimal
	Temporary decimal.Decimal
	Liquidity decimal.Decimal
}

// Spread approximates the bid/ask spread. Executions pay half of the full
// spread on top of slippage
type Spread struct {
	Model SpreadModel
	// Width is the full spread in price units for the fixed model
	Width decimal.Decimal
	// Rate is the full spread as a percentage of price for the
	// proportional model
	Rate decimal.Decimal
}

// Costs bundles the three friction models applied to every execution
type Costs struct {
	Commission Commission
	Slippage   Slippage
	Spread     Spread
}
