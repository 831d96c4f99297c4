package discount

// SpendThreshold mirrors the tiered selection rule, keyed on cart total
// instead of per-item quantity: the threshold with the largest SpendAmount
// not exceeding the cart total wins. Thresholds must be sorted ascending by
// SpendAmount; ties resolve last-wins.
type SpendThreshold struct {
	Thresholds []Threshold
}

func (s SpendThreshold) ID() string { return string(TypeSpendThreshold) }

func (s SpendThreshold) Calculate(ctx Context) Result {
	price := floorAtZero(ctx.OriginalPrice).Round(2)

	var selected *Threshold
	for i := range s.Thresholds {
		if s.Thresholds[i].SpendAmount.LessThanOrEqual(ctx.CartTotal) {
			selected = &s.Thresholds[i]
		}
	}
	if selected == nil {
		return notApplied(s.ID(), price)
	}

	discounted := applyRate(price, selected.Value, selected.Type)

	return Result{
		OriginalPrice:   price,
		DiscountedPrice: discounted,
		StrategyID:      s.ID(),
		Applied:         true,
		Metadata: map[string]string{
			"threshold_spend_amount":   selected.SpendAmount.String(),
			"threshold_discount_type":  string(selected.Type),
			"threshold_discount_value": selected.Value.String(),
		},
	}
}
