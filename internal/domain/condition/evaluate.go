package condition

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// numericTolerance absorbs currency rounding when comparing floating
// numeric properties for equality.
var numericTolerance = decimal.New(1, -2) // 0.01

// Engine filters product id sets through condition sets. It is pure and
// stateless apart from the injected resolver and logger; concurrent use is
// safe.
type Engine struct {
	resolver Resolver
	lg       *zap.Logger
}

// NewEngine creates an Engine over the given property resolver. A nil logger
// is replaced with a no-op logger.
func NewEngine(resolver Resolver, lg *zap.Logger) *Engine {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Engine{resolver: resolver, lg: lg}
}

// Apply filters productIDs through the condition set under the given logic.
//
// With LogicAny each condition is evaluated against the original set and the
// matches are unioned (deduplicated). With LogicAll the working set is
// progressively intersected, returning early once it empties. Result order is
// not guaranteed.
//
// Conditions are assumed to have passed Validate; a condition that still
// fails to compile at runtime is skipped with a warning rather than aborting
// the batch.
func (e *Engine) Apply(productIDs []string, conditions []Condition, logic Logic) []string {
	if len(productIDs) == 0 || len(conditions) == 0 {
		return productIDs
	}

	if logic == LogicAny {
		seen := make(map[string]struct{}, len(productIDs))
		var out []string
		for _, c := range conditions {
			for _, id := range e.ApplyOne(productIDs, c) {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
		return out
	}

	working := productIDs
	for _, c := range conditions {
		working = e.ApplyOne(working, c)
		if len(working) == 0 {
			return working
		}
	}
	return working
}

// ApplyOne evaluates a single condition against every product in the set.
// With ModeExclude the returned set is the complement of the matches within
// productIDs. A malformed condition is skipped: the input set is returned
// unchanged.
func (e *Engine) ApplyOne(productIDs []string, c Condition) []string {
	match, err := compile(c)
	if err != nil {
		e.lg.Warn("skipping malformed condition",
			zap.String("property", string(c.Property)),
			zap.String("operator", string(c.Operator)),
			zap.Error(err))
		return productIDs
	}

	keep := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		v, present := e.resolver.Resolve(id, c.Property)

		// A missing property satisfies negative operators only.
		hit := c.Operator.Negative()
		if present {
			hit = match(v)
		}

		if c.Mode == ModeExclude {
			hit = !hit
		}
		if hit {
			keep = append(keep, id)
		}
	}
	return keep
}

// compile parses the condition's value(s) once and returns a predicate over
// resolved property values.
func compile(c Condition) (func(Value) bool, error) {
	cat, ok := c.Property.Category()
	if !ok {
		return nil, errors.Errorf("unknown property %q", c.Property)
	}
	if !operatorAllowed(c.Operator, cat) {
		return nil, errors.Errorf("operator %q not valid for %s property", c.Operator, cat)
	}

	switch cat {
	case CategoryNumeric:
		return compileNumeric(c)
	case CategoryDate:
		return compileDate(c)
	case CategoryBool:
		return compileBool(c)
	default: // text, select
		return compileText(c)
	}
}

// operatorAllowed reports whether the operator is applicable to the
// property's value category.
func operatorAllowed(op Operator, cat Category) bool {
	switch op {
	case OpEq, OpNotEq:
		return true
	case OpGt, OpGte, OpLt, OpLte, OpBetween, OpNotBetween:
		return cat == CategoryNumeric || cat == CategoryDate
	case OpContains, OpNotContains, OpStartsWith, OpEndsWith:
		return cat == CategoryText
	case OpIn, OpNotIn:
		return cat == CategoryText || cat == CategorySelect
	}
	return false
}

func compileNumeric(c Condition) (func(Value) bool, error) {
	want, err := decimal.NewFromString(strings.TrimSpace(c.Value))
	if err != nil {
		return nil, errors.Wrapf(err, "parse numeric value %q", c.Value)
	}

	var upper decimal.Decimal
	if c.Operator == OpBetween || c.Operator == OpNotBetween {
		upper, err = decimal.NewFromString(strings.TrimSpace(c.Value2))
		if err != nil {
			return nil, errors.Wrapf(err, "parse numeric value2 %q", c.Value2)
		}
	}

	op := c.Operator
	return func(v Value) bool {
		if v.Kind != KindNumber {
			return false
		}
		switch op {
		case OpEq:
			return v.Num.Sub(want).Abs().LessThan(numericTolerance)
		case OpNotEq:
			return v.Num.Sub(want).Abs().GreaterThanOrEqual(numericTolerance)
		case OpGt:
			return v.Num.GreaterThan(want)
		case OpGte:
			return v.Num.GreaterThanOrEqual(want)
		case OpLt:
			return v.Num.LessThan(want)
		case OpLte:
			return v.Num.LessThanOrEqual(want)
		case OpBetween:
			return v.Num.GreaterThanOrEqual(want) && v.Num.LessThanOrEqual(upper)
		case OpNotBetween:
			return v.Num.LessThan(want) || v.Num.GreaterThan(upper)
		}
		return false
	}, nil
}

func compileDate(c Condition) (func(Value) bool, error) {
	want, err := parseDate(c.Value)
	if err != nil {
		return nil, errors.Wrapf(err, "parse date value %q", c.Value)
	}

	var upper time.Time
	if c.Operator == OpBetween || c.Operator == OpNotBetween {
		upper, err = parseDate(c.Value2)
		if err != nil {
			return nil, errors.Wrapf(err, "parse date value2 %q", c.Value2)
		}
	}

	op := c.Operator
	return func(v Value) bool {
		if v.Kind != KindTime {
			return false
		}
		switch op {
		case OpEq:
			return v.Time.Equal(want)
		case OpNotEq:
			return !v.Time.Equal(want)
		case OpGt:
			return v.Time.After(want)
		case OpGte:
			return !v.Time.Before(want)
		case OpLt:
			return v.Time.Before(want)
		case OpLte:
			return !v.Time.After(want)
		case OpBetween:
			return !v.Time.Before(want) && !v.Time.After(upper)
		case OpNotBetween:
			return v.Time.Before(want) || v.Time.After(upper)
		}
		return false
	}, nil
}

func compileBool(c Condition) (func(Value) bool, error) {
	want := NormalizeBool(c.Value)
	negate := c.Operator == OpNotEq

	return func(v Value) bool {
		if v.Kind != KindBool {
			return false
		}
		return (v.Bool == want) != negate
	}, nil
}

func compileText(c Condition) (func(Value) bool, error) {
	want := strings.ToLower(strings.TrimSpace(c.Value))

	var allowed map[string]struct{}
	if c.Operator == OpIn || c.Operator == OpNotIn {
		allowed = make(map[string]struct{})
		for _, item := range splitList(c.Value) {
			allowed[strings.ToLower(item)] = struct{}{}
		}
	}

	op := c.Operator
	return func(v Value) bool {
		if v.Kind != KindText {
			return false
		}
		got := strings.ToLower(v.Text)
		switch op {
		case OpEq:
			return got == want
		case OpNotEq:
			return got != want
		case OpContains:
			return strings.Contains(got, want)
		case OpNotContains:
			return !strings.Contains(got, want)
		case OpStartsWith:
			return strings.HasPrefix(got, want)
		case OpEndsWith:
			return strings.HasSuffix(got, want)
		case OpIn:
			_, ok := allowed[got]
			return ok
		case OpNotIn:
			_, ok := allowed[got]
			return !ok
		}
		return false
	}, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unrecognized date %q", s)
}
