package condition

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smartcycle/discounts/internal/domain/validation"
)

var (
	ratingMin = decimal.Zero
	ratingMax = decimal.NewFromInt(5)
)

// Validate structurally checks a single condition: the property and operator
// exist and are compatible, required values are present and parse under the
// property's category, ratings stay within [0,5], and BETWEEN bounds are
// ordered. It returns a *validation.Error listing every problem, or nil.
//
// Validation runs at save time; Apply assumes its input already passed.
func Validate(c Condition) error {
	var verr validation.Error

	cat, knownProp := c.Property.Category()
	if !knownProp {
		verr.Add("type", "unknown product property "+quoted(c.Property))
	}
	if !c.Operator.Known() {
		verr.Add("operator", "unknown operator "+quoted(c.Operator))
	}
	if c.Mode != ModeInclude && c.Mode != ModeExclude {
		verr.Add("mode", `mode must be "include" or "exclude"`)
	}
	if !knownProp || !c.Operator.Known() {
		return verr.Err()
	}

	if !operatorAllowed(c.Operator, cat) {
		verr.Add("operator", "operator "+string(c.Operator)+" not valid for "+string(cat)+" property "+string(c.Property))
		return verr.Err()
	}

	if strings.TrimSpace(c.Value) == "" {
		verr.Add("value", "value is required")
		return verr.Err()
	}

	switch cat {
	case CategoryNumeric:
		validateNumeric(c, &verr)
	case CategoryDate:
		validateDate(c, &verr)
	}

	// Value2 is only meaningful for BETWEEN / NOT BETWEEN; anything set on
	// other operators is ignored by evaluation, not rejected.

	return verr.Err()
}

func validateNumeric(c Condition, verr *validation.Error) {
	v, err := decimal.NewFromString(strings.TrimSpace(c.Value))
	if err != nil {
		verr.Add("value", "value must be numeric")
		return
	}

	if c.Property == PropAverageRating && (v.LessThan(ratingMin) || v.GreaterThan(ratingMax)) {
		verr.Add("value", "rating must be between 0 and 5")
	}

	if c.Operator != OpBetween && c.Operator != OpNotBetween {
		return
	}
	if strings.TrimSpace(c.Value2) == "" {
		verr.Add("value2", "value2 is required for BETWEEN")
		return
	}
	v2, err := decimal.NewFromString(strings.TrimSpace(c.Value2))
	if err != nil {
		verr.Add("value2", "value2 must be numeric")
		return
	}
	if v2.LessThan(v) {
		verr.Add("value2", "value2 must be greater than or equal to value")
	}
	if c.Property == PropAverageRating && v2.GreaterThan(ratingMax) {
		verr.Add("value2", "rating must be between 0 and 5")
	}
}

func validateDate(c Condition, verr *validation.Error) {
	v, err := parseDate(c.Value)
	if err != nil {
		verr.Add("value", "value must be a date (RFC 3339 or YYYY-MM-DD)")
		return
	}

	if c.Operator != OpBetween && c.Operator != OpNotBetween {
		return
	}
	if strings.TrimSpace(c.Value2) == "" {
		verr.Add("value2", "value2 is required for BETWEEN")
		return
	}
	v2, err := parseDate(c.Value2)
	if err != nil {
		verr.Add("value2", "value2 must be a date (RFC 3339 or YYYY-MM-DD)")
		return
	}
	if v2.Before(v) {
		verr.Add("value2", "value2 must not be before value")
	}
}

// quoted renders an identifier-like value for error messages.
func quoted[T ~string](v T) string {
	return `"` + string(v) + `"`
}
