// Package condition implements the campaign product-scope filter: declarative
// property/operator/value rules combined with AND/OR logic and evaluated
// against resolved product properties.
package condition

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups properties by the kind of value they hold. The category
// decides which operators are valid and how raw condition values are parsed.
type Category string

const (
	CategoryNumeric Category = "numeric"
	CategoryText    Category = "text"
	CategoryBool    Category = "boolean"
	CategorySelect  Category = "select"
	CategoryDate    Category = "date"
)

// Property identifies a filterable product attribute.
type Property string

const (
	PropPrice             Property = "price"
	PropSalePrice         Property = "sale_price"
	PropRegularPrice      Property = "regular_price"
	PropStockQuantity     Property = "stock_quantity"
	PropWeight            Property = "weight"
	PropLength            Property = "length"
	PropWidth             Property = "width"
	PropHeight            Property = "height"
	PropAverageRating     Property = "average_rating"
	PropReviewCount       Property = "review_count"
	PropTotalSales        Property = "total_sales"
	PropSKU               Property = "sku"
	PropName              Property = "name"
	PropDescription       Property = "description"
	PropShortDescription  Property = "short_description"
	PropFeatured          Property = "featured"
	PropOnSale            Property = "on_sale"
	PropVirtual           Property = "virtual"
	PropDownloadable      Property = "downloadable"
	PropSoldIndividually  Property = "sold_individually"
	PropBackordersAllowed Property = "backorders_allowed"
	PropProductType       Property = "product_type"
	PropStockStatus       Property = "stock_status"
	PropTaxStatus         Property = "tax_status"
	PropCatalogVisibility Property = "catalog_visibility"
	PropDateCreated       Property = "date_created"
	PropDateModified      Property = "date_modified"
)

var propertyCategories = map[Property]Category{
	PropPrice:             CategoryNumeric,
	PropSalePrice:         CategoryNumeric,
	PropRegularPrice:      CategoryNumeric,
	PropStockQuantity:     CategoryNumeric,
	PropWeight:            CategoryNumeric,
	PropLength:            CategoryNumeric,
	PropWidth:             CategoryNumeric,
	PropHeight:            CategoryNumeric,
	PropAverageRating:     CategoryNumeric,
	PropReviewCount:       CategoryNumeric,
	PropTotalSales:        CategoryNumeric,
	PropSKU:               CategoryText,
	PropName:              CategoryText,
	PropDescription:       CategoryText,
	PropShortDescription:  CategoryText,
	PropFeatured:          CategoryBool,
	PropOnSale:            CategoryBool,
	PropVirtual:           CategoryBool,
	PropDownloadable:      CategoryBool,
	PropSoldIndividually:  CategoryBool,
	PropBackordersAllowed: CategoryBool,
	PropProductType:       CategorySelect,
	PropStockStatus:       CategorySelect,
	PropTaxStatus:         CategorySelect,
	PropCatalogVisibility: CategorySelect,
	PropDateCreated:       CategoryDate,
	PropDateModified:      CategoryDate,
}

// Category returns the property's value category. The second return is false
// for unknown properties.
func (p Property) Category() (Category, bool) {
	c, ok := propertyCategories[p]
	return c, ok
}

// Operator is a comparison applied between a product property and the
// condition's value(s).
type Operator string

const (
	OpEq          Operator = "="
	OpNotEq       Operator = "!="
	OpGt          Operator = ">"
	OpGte         Operator = ">="
	OpLt          Operator = "<"
	OpLte         Operator = "<="
	OpBetween     Operator = "BETWEEN"
	OpNotBetween  Operator = "NOT BETWEEN"
	OpContains    Operator = "CONTAINS"
	OpNotContains Operator = "NOT CONTAINS"
	OpStartsWith  Operator = "STARTS WITH"
	OpEndsWith    Operator = "ENDS WITH"
	OpIn          Operator = "IN"
	OpNotIn       Operator = "NOT IN"
)

// Negative reports whether the operator expresses a negative match. A product
// that lacks the queried property satisfies negative operators and fails all
// others; this polarity is relied on by Engine.ApplyOne.
func (o Operator) Negative() bool {
	switch o {
	case OpNotEq, OpNotBetween, OpNotContains, OpNotIn:
		return true
	}
	return false
}

// Known reports whether o is one of the supported operators.
func (o Operator) Known() bool {
	switch o {
	case OpEq, OpNotEq, OpGt, OpGte, OpLt, OpLte,
		OpBetween, OpNotBetween,
		OpContains, OpNotContains, OpStartsWith, OpEndsWith,
		OpIn, OpNotIn:
		return true
	}
	return false
}

// Mode controls whether a condition's matches are kept or removed from the
// candidate set.
type Mode string

const (
	ModeInclude Mode = "include"
	ModeExclude Mode = "exclude"
)

// Logic is the combinator over a condition set.
type Logic string

const (
	// LogicAll keeps products satisfying every condition (AND).
	LogicAll Logic = "all"
	// LogicAny keeps products satisfying at least one condition (OR).
	LogicAny Logic = "any"
)

// Condition is a single declarative filter rule. Value2 is only meaningful
// for BETWEEN / NOT BETWEEN, where it holds the upper bound.
type Condition struct {
	Property Property
	Operator Operator
	Value    string
	Value2   string
	Mode     Mode
}

// ValueKind tags the variant held by a resolved property Value.
type ValueKind uint8

const (
	KindNumber ValueKind = iota
	KindText
	KindBool
	KindTime
)

// Value is a resolved product property value handed to the engine by a
// Resolver.
type Value struct {
	Kind ValueKind
	Num  decimal.Decimal
	Text string
	Bool bool
	Time time.Time
}

// Number wraps a numeric property value.
func Number(d decimal.Decimal) Value { return Value{Kind: KindNumber, Num: d} }

// Text wraps a text or select property value.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Flag wraps a boolean property value.
func Flag(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Timestamp wraps a date property value.
func Timestamp(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// Resolver supplies resolved property values for products. The engine never
// queries a store itself; callers hand it an accessor over already-loaded
// records. The second return is false when the product lacks the property
// (or the product id is unknown).
type Resolver interface {
	Resolve(productID string, prop Property) (Value, bool)
}

// NormalizeBool maps the legacy "yes"/"no" string encodings (and common
// truthy spellings) to a boolean.
func NormalizeBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true
	}
	return false
}

// splitList parses a comma-separated IN/NOT IN value list, trimming
// whitespace and dropping empty entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
