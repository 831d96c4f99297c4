// Package discount implements the campaign discount strategies: percentage,
// fixed, tiered (volume), spend-threshold, and BOGO. Strategies are pure
// calculations over a pricing context; configuration validation happens at
// save time, never on the pricing path.
package discount

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/smartcycle/discounts/internal/domain/validation"
)

// Type discriminates the discount configuration union.
type Type string

const (
	TypePercentage     Type = "percentage"
	TypeFixed          Type = "fixed"
	TypeTiered         Type = "tiered"
	TypeSpendThreshold Type = "spend_threshold"
	TypeBogo           Type = "bogo"
)

// Tier is one volume breakpoint: at MinQuantity and above, Value applies
// with tier-local percentage/fixed semantics.
type Tier struct {
	MinQuantity int
	Value       decimal.Decimal
	Type        Type
}

// Threshold is one spend breakpoint keyed on cart total.
type Threshold struct {
	SpendAmount decimal.Decimal
	Value       decimal.Decimal
	Type        Type
}

// Config is the discriminated discount configuration. Only the fields of the
// active variant are meaningful.
type Config struct {
	Type Type

	// percentage / fixed
	Value decimal.Decimal

	// tiered
	Tiers []Tier

	// spend_threshold
	Thresholds []Threshold

	// bogo
	BuyQuantity        int
	GetQuantity        int
	GetDiscountPercent decimal.Decimal
}

// Normalize sorts tiers and thresholds ascending by their breakpoint.
// Strategies assume pre-sorted input; the sort is stable so duplicate
// breakpoints keep their authored order (evaluation then resolves ties
// last-wins).
func (c *Config) Normalize() {
	sort.SliceStable(c.Tiers, func(i, j int) bool {
		return c.Tiers[i].MinQuantity < c.Tiers[j].MinQuantity
	})
	sort.SliceStable(c.Thresholds, func(i, j int) bool {
		return c.Thresholds[i].SpendAmount.LessThan(c.Thresholds[j].SpendAmount)
	})
}

// Validate structurally checks the configuration for its variant. A failure
// must block the save upstream; Calculate never re-validates.
func (c Config) Validate() error {
	var verr validation.Error

	switch c.Type {
	case TypePercentage:
		if c.Value.IsNegative() {
			verr.Add("discount_value", "discount value must not be negative")
		}
	case TypeFixed:
		if c.Value.IsNegative() {
			verr.Add("discount_value", "discount value must not be negative")
		}
	case TypeTiered:
		if len(c.Tiers) == 0 {
			verr.Add("tiers", "at least one tier is required")
		}
		for i, t := range c.Tiers {
			validateRate(&verr, field("tiers", i), t.Value, t.Type)
			if t.MinQuantity < 1 {
				verr.Add(field("tiers", i)+".min_quantity", "min quantity must be at least 1")
			}
		}
	case TypeSpendThreshold:
		if len(c.Thresholds) == 0 {
			verr.Add("thresholds", "at least one threshold is required")
		}
		for i, t := range c.Thresholds {
			validateRate(&verr, field("thresholds", i), t.Value, t.Type)
			if t.SpendAmount.IsNegative() {
				verr.Add(field("thresholds", i)+".spend_amount", "spend amount must not be negative")
			}
		}
	case TypeBogo:
		if c.BuyQuantity < 1 {
			verr.Add("buy_quantity", "buy quantity must be at least 1")
		}
		if c.GetQuantity < 1 {
			verr.Add("get_quantity", "get quantity must be at least 1")
		}
		if c.GetDiscountPercent.IsNegative() || c.GetDiscountPercent.GreaterThan(hundred) {
			verr.Add("get_discount_percentage", "get discount percentage must be between 0 and 100")
		}
	default:
		verr.Add("discount_type", "unknown discount type "+`"`+string(c.Type)+`"`)
	}

	return verr.Err()
}

// validateRate checks a tier/threshold's embedded rate.
func validateRate(verr *validation.Error, prefix string, value decimal.Decimal, typ Type) {
	if typ != TypePercentage && typ != TypeFixed {
		verr.Add(prefix+".discount_type", `tier discount type must be "percentage" or "fixed"`)
	}
	if value.IsNegative() {
		verr.Add(prefix+".discount_value", "discount value must not be negative")
	}
}

func field(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}
