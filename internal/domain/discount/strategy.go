package discount

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// Context carries the pricing inputs for one priceable unit. Strategies use
// the subset they need: simple strategies only OriginalPrice, tiered adds
// Quantity, spend-threshold adds CartTotal, BOGO uses price and quantity.
type Context struct {
	OriginalPrice decimal.Decimal
	Quantity      int
	CartTotal     decimal.Decimal
}

// Result is the outcome of applying a strategy to one priceable unit. It is
// never persisted; it is recomputed per pricing event.
type Result struct {
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.Decimal
	StrategyID      string
	Applied         bool
	// Metadata names the rule that fired (tier, threshold, BOGO grouping)
	// for audit and display.
	Metadata map[string]string
}

// Strategy is a pure price calculation. Calculate never errors for a
// validated configuration: out-of-range inputs clamp to the nearest valid
// result because this runs on the hot price-rendering path.
type Strategy interface {
	ID() string
	Calculate(ctx Context) Result
}

// ForConfig dispatches the configuration union to its strategy. The
// configuration is expected to be validated and normalized; an unknown type
// is the one error the dispatcher can produce.
func ForConfig(cfg Config) (Strategy, error) {
	switch cfg.Type {
	case TypePercentage:
		return Percentage{Value: cfg.Value}, nil
	case TypeFixed:
		return Fixed{Value: cfg.Value}, nil
	case TypeTiered:
		return Tiered{Tiers: cfg.Tiers}, nil
	case TypeSpendThreshold:
		return SpendThreshold{Thresholds: cfg.Thresholds}, nil
	case TypeBogo:
		return Bogo{
			BuyQuantity:        cfg.BuyQuantity,
			GetQuantity:        cfg.GetQuantity,
			GetDiscountPercent: cfg.GetDiscountPercent,
		}, nil
	default:
		return nil, errors.Errorf("unsupported discount type: %q", cfg.Type)
	}
}

// notApplied builds the pass-through result for a strategy that does not
// fire: full price, applied=false.
func notApplied(id string, price decimal.Decimal) Result {
	price = floorAtZero(price).Round(2)
	return Result{
		OriginalPrice:   price,
		DiscountedPrice: price,
		StrategyID:      id,
	}
}

// applyRate applies a percentage or fixed rate to a unit price, clamped at
// zero and rounded to cents.
func applyRate(price, value decimal.Decimal, typ Type) decimal.Decimal {
	var out decimal.Decimal
	switch typ {
	case TypeFixed:
		out = price.Sub(value)
	default:
		out = price.Mul(hundred.Sub(value)).Div(hundred)
	}
	return floorAtZero(out).Round(2)
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return zero
	}
	return d
}
