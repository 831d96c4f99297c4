package discount

import "github.com/shopspring/decimal"

// Percentage takes Value percent off the unit price.
type Percentage struct {
	Value decimal.Decimal
}

func (s Percentage) ID() string { return string(TypePercentage) }

func (s Percentage) Calculate(ctx Context) Result {
	price := floorAtZero(ctx.OriginalPrice).Round(2)
	discounted := applyRate(price, s.Value, TypePercentage)

	return Result{
		OriginalPrice:   price,
		DiscountedPrice: discounted,
		StrategyID:      s.ID(),
		Applied:         discounted.LessThan(price),
		Metadata: map[string]string{
			"discount_value": s.Value.String(),
		},
	}
}

// Fixed takes a flat Value off the unit price.
type Fixed struct {
	Value decimal.Decimal
}

func (s Fixed) ID() string { return string(TypeFixed) }

func (s Fixed) Calculate(ctx Context) Result {
	price := floorAtZero(ctx.OriginalPrice).Round(2)
	discounted := applyRate(price, s.Value, TypeFixed)

	return Result{
		OriginalPrice:   price,
		DiscountedPrice: discounted,
		StrategyID:      s.ID(),
		Applied:         discounted.LessThan(price),
		Metadata: map[string]string{
			"discount_value": s.Value.String(),
		},
	}
}
