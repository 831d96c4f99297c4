package discount

import "strconv"

// Tiered applies a volume discount: the tier with the largest MinQuantity
// not exceeding the observed quantity wins. Tiers must be sorted ascending
// by MinQuantity (Config.Normalize); when two tiers share a breakpoint the
// later one wins, by sort stability.
type Tiered struct {
	Tiers []Tier
}

func (s Tiered) ID() string { return string(TypeTiered) }

func (s Tiered) Calculate(ctx Context) Result {
	price := floorAtZero(ctx.OriginalPrice).Round(2)

	var selected *Tier
	for i := range s.Tiers {
		if s.Tiers[i].MinQuantity <= ctx.Quantity {
			selected = &s.Tiers[i]
		}
	}
	if selected == nil {
		// Quantity below the smallest tier: no discount.
		return notApplied(s.ID(), price)
	}

	discounted := applyRate(price, selected.Value, selected.Type)

	return Result{
		OriginalPrice:   price,
		DiscountedPrice: discounted,
		StrategyID:      s.ID(),
		Applied:         true,
		Metadata: map[string]string{
			"tier_min_quantity":   strconv.Itoa(selected.MinQuantity),
			"tier_discount_type":  string(selected.Type),
			"tier_discount_value": selected.Value.String(),
		},
	}
}
