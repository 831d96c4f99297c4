package product

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcycle/discounts/internal/domain/condition"
)

func TestProperty(t *testing.T) {
	stock := 42
	weight := decimal.RequireFromString("1.25")
	created := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)

	p := Product{
		ID:            "p1",
		SKU:           "SKU-1",
		Name:          "Standing Desk",
		Type:          "simple",
		StockStatus:   "instock",
		Price:         decimal.RequireFromString("349.00"),
		StockQuantity: &stock,
		Weight:        &weight,
		Featured:      true,
		DateCreated:   created,
	}

	tests := []struct {
		prop condition.Property
		want condition.Value
	}{
		{condition.PropPrice, condition.Number(decimal.RequireFromString("349.00"))},
		{condition.PropStockQuantity, condition.Number(decimal.NewFromInt(42))},
		{condition.PropWeight, condition.Number(weight)},
		{condition.PropSKU, condition.Text("SKU-1")},
		{condition.PropName, condition.Text("Standing Desk")},
		{condition.PropProductType, condition.Text("simple")},
		{condition.PropStockStatus, condition.Text("instock")},
		{condition.PropFeatured, condition.Flag(true)},
		{condition.PropOnSale, condition.Flag(false)},
		{condition.PropDateCreated, condition.Timestamp(created)},
	}

	for _, tt := range tests {
		t.Run(string(tt.prop), func(t *testing.T) {
			got, ok := p.Property(tt.prop)
			require.True(t, ok)
			assert.Equal(t, tt.want.Kind, got.Kind)
			switch tt.want.Kind {
			case condition.KindNumber:
				assert.True(t, tt.want.Num.Equal(got.Num))
			case condition.KindText:
				assert.Equal(t, tt.want.Text, got.Text)
			case condition.KindBool:
				assert.Equal(t, tt.want.Bool, got.Bool)
			case condition.KindTime:
				assert.True(t, tt.want.Time.Equal(got.Time))
			}
		})
	}
}

func TestProperty_Missing(t *testing.T) {
	p := Product{ID: "p1", Price: decimal.RequireFromString("10")}

	for _, prop := range []condition.Property{
		condition.PropSalePrice,
		condition.PropStockQuantity,
		condition.PropWeight,
		condition.PropLength,
		condition.PropWidth,
		condition.PropHeight,
	} {
		_, ok := p.Property(prop)
		assert.False(t, ok, "property %s should be missing", prop)
	}

	_, ok := p.Property(condition.Property("color"))
	assert.False(t, ok, "unknown property")
}

func TestResolverFor(t *testing.T) {
	products := []Product{
		{ID: "a", Price: decimal.RequireFromString("5")},
		{ID: "b", Price: decimal.RequireFromString("7")},
	}
	r := ResolverFor(products)

	v, ok := r.Resolve("b", condition.PropPrice)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("7").Equal(v.Num))

	_, ok = r.Resolve("missing", condition.PropPrice)
	assert.False(t, ok)
}
