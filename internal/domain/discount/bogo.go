package discount

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Bogo implements buy-X-get-Y: out of every complete group of
// BuyQuantity+GetQuantity units, GetQuantity units receive
// GetDiscountPercent off (100 = free). Units beyond complete groups are
// full price. The floor division over the group size is the contract;
// off-by-one here directly under- or over-discounts.
type Bogo struct {
	BuyQuantity        int
	GetQuantity        int
	GetDiscountPercent decimal.Decimal
}

func (s Bogo) ID() string { return string(TypeBogo) }

func (s Bogo) Calculate(ctx Context) Result {
	price := floorAtZero(ctx.OriginalPrice).Round(2)

	if ctx.Quantity <= 0 || s.BuyQuantity <= 0 || s.GetQuantity <= 0 {
		return notApplied(s.ID(), price)
	}

	groupSize := s.BuyQuantity + s.GetQuantity
	groups := ctx.Quantity / groupSize
	discountedUnits := groups * s.GetQuantity
	if discountedUnits == 0 {
		return notApplied(s.ID(), price)
	}

	qty := decimal.NewFromInt(int64(ctx.Quantity))
	perUnitOff := price.Mul(s.GetDiscountPercent).Div(hundred)

	lineOriginal := price.Mul(qty)
	lineDiscount := perUnitOff.Mul(decimal.NewFromInt(int64(discountedUnits)))
	lineAfter := floorAtZero(lineOriginal.Sub(lineDiscount))

	// Effective unit price spreads the line discount evenly.
	effective := lineAfter.Div(qty).Round(2)

	return Result{
		OriginalPrice:   price,
		DiscountedPrice: effective,
		StrategyID:      s.ID(),
		Applied:         true,
		Metadata: map[string]string{
			"complete_groups":         strconv.Itoa(groups),
			"discounted_units":        strconv.Itoa(discountedUnits),
			"full_price_units":        strconv.Itoa(ctx.Quantity - discountedUnits),
			"get_discount_percentage": s.GetDiscountPercent.String(),
		},
	}
}
