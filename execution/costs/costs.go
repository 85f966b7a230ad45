package costs

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	one         = decimal.NewFromInt(1)
	two         = decimal.NewFromInt(2)
	oneHundred  = decimal.NewFromInt(100)
	tenThousand = decimal.NewFromInt(10000)
	// deepMarketVolume is the candle volume above which the market impact
	// model stops charging a thin-market liquidity premium
	deepMarketVolume = decimal.NewFromInt(1000000)
)

// Validate checks the commission schedule for negative inputs
func (c *Commission) Validate() error {
	if c.Fixed.IsNegative() || c.PerUnit.IsNegative() || c.Rate.IsNegative() {
		return fmt.Errorf("%w: commission", ErrNegativeCost)
	}
	for i := range c.Tiers {
		if c.Tiers[i].Threshold.IsNegative() || c.Tiers[i].Rate.IsNegative() {
			return fmt.Errorf("%w: commission tier %v", ErrNegativeCost, i)
		}
	}
	return nil
}

// Calculate returns the fee charged on a fill of amount units executed at
// price. Rate is a fraction of notional, so 0.001 charges ten basis points
func (c *Commission) Calculate(price, amount decimal.Decimal) decimal.Decimal {
	notional := price.Mul(amount)
	rate := c.Rate
	if len(c.Tiers) > 0 {
		rate = c.Tiers[len(c.Tiers)-1].Rate
		for i := range c.Tiers {
			if notional.LessThanOrEqual(c.Tiers[i].Threshold) {
				rate = c.Tiers[i].Rate
				break
			}
		}
	}
	return c.Fixed.
		Add(c.PerUnit.Mul(amount)).
		Add(rate.Mul(notional))
}

// Validate checks the slippage parameters and model name
func (s *Slippage) Validate() error {
	if s.Bps.IsNegative() ||
		s.Factor.IsNegative() ||
		s.Permanent.IsNegative() ||
		s.Temporary.IsNegative() ||
		s.Liquidity.IsNegative() {
		return fmt.Errorf("%w: slippage", ErrNegativeCost)
	}
	switch s.Model {
	case "", SlippageFixed, SlippageLinear, SlippageSquareRoot, SlippageMarketImpact:
		return nil
	}
	return fmt.Errorf("%w %q", ErrUnknownSlippageModel, s.Model)
}

// ImpactBps returns the adverse price impact in basis points for an order
// of amount units against a reference volume. An unset model behaves as
// fixed so the zero value stays frictionless
func (s *Slippage) ImpactBps(amount, refVolume decimal.Decimal) decimal.Decimal {
	switch s.Model {
	case SlippageLinear:
		return s.Factor.Mul(decimal.Min(participation(amount, refVolume), one))
	case SlippageSquareRoot:
		return s.Factor.Mul(decimalSqrt(participation(amount, refVolume)))
	case SlippageMarketImpact:
		impact := s.Permanent.Add(s.Temporary).
			Mul(decimalSqrt(participation(amount, refVolume)))
		depth := decimal.Min(refVolume.Div(deepMarketVolume), one)
		if refVolume.IsNegative() {
			depth = decimal.Zero
		}
		return impact.Mul(one.Add(s.Liquidity.Mul(one.Sub(depth))))
	}
	return s.Bps
}

// Validate checks the spread parameters and model name
func (s *Spread) Validate() error {
	if s.Width.IsNegative() || s.Rate.IsNegative() {
		return fmt.Errorf("%w: spread", ErrNegativeCost)
	}
	switch s.Model {
	case "", SpreadNone, SpreadFixed, SpreadProportional:
		return nil
	}
	return fmt.Errorf("%w %q", ErrUnknownSpreadModel, s.Model)
}

// HalfSpread returns the half spread paid on top of slippage, in price
// units
func (s *Spread) HalfSpread(price decimal.Decimal) decimal.Decimal {
	switch s.Model {
	case SpreadFixed:
		return s.Width.Div(two)
	case SpreadProportional:
		return s.Rate.Div(oneHundred).Mul(price).Div(two)
	}
	return decimal.Zero
}

// Validate checks every cost model, rejecting unknown model names up front
// so execution paths never have to
func (c *Costs) Validate() error {
	if err := c.Commission.Validate(); err != nil {
		return err
	}
	if err := c.Slippage.Validate(); err != nil {
		return err
	}
	return c.Spread.Validate()
}

// AdjustPrice applies slippage and half the spread to a raw fill price.
// Buys execute above the raw price and sells below it
func (c *Costs) AdjustPrice(price, amount, refVolume decimal.Decimal, isBuy bool) decimal.Decimal {
	impact := c.Slippage.ImpactBps(amount, refVolume).
		Div(tenThousand).
		Mul(price).
		Add(c.Spread.HalfSpread(price))
	if isBuy {
		return price.Add(impact)
	}
	return price.Sub(impact)
}

// CommissionFor returns the fee charged on a fill of amount units at price
func (c *Costs) CommissionFor(price, amount decimal.Decimal) decimal.Decimal {
	return c.Commission.Calculate(price, amount)
}

// participation is order amount relative to the candle's volume. Candles
// without volume are treated as fully consumed by the order
func participation(amount, refVolume decimal.Decimal) decimal.Decimal {
	if !refVolume.IsPositive() {
		return one
	}
	return amount.Div(refVolume)
}

// decimalSqrt goes through float64, exact roots are not needed for basis
// point impact estimates
func decimalSqrt(d decimal.Decimal) decimal.Decimal {
	f := d.InexactFloat64()
	if f <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(math.Sqrt(f))
}

// RetailEquities models a commission free retail equities broker paying
// two basis points of slippage across a one basis point spread
func RetailEquities() Costs {
	return Costs{
		Slippage: Slippage{
			Model: SlippageFixed,
			Bps:   decimal.NewFromInt(2),
		},
		Spread: Spread{
			Model: SpreadProportional,
			Rate:  decimal.NewFromFloat(0.01),
		},
	}
}

// FuturesContract models a futures commission merchant charging a flat fee
// per contract with participation scaled slippage across a one tick spread
func FuturesContract(tickSize decimal.Decimal) Costs {
	return Costs{
		Commission: Commission{
			Fixed: decimal.NewFromFloat(2.50),
		},
		Slippage: Slippage{
			Model:  SlippageLinear,
			Factor: decimal.NewFromInt(5),
		},
		Spread: Spread{
			Model: SpreadFixed,
			Width: tickSize,
		},
	}
}

// Frictionless removes every cost, isolating raw strategy behaviour
func Frictionless() Costs {
	return Costs{}
}
