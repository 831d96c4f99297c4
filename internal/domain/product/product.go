package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/smartcycle/discounts/internal/domain/condition"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog record carrying every property the condition engine
// can filter on. Pointer fields model properties a product may simply not
// have (unmanaged stock, no sale price, no physical dimensions); the engine's
// missing-property polarity applies to those.
type Product struct {
	ID   string
	SKU  string
	Name string

	Description      string
	ShortDescription string

	Type              string
	StockStatus       string
	TaxStatus         string
	CatalogVisibility string

	Price        decimal.Decimal
	RegularPrice decimal.Decimal
	SalePrice    *decimal.Decimal

	StockQuantity *int
	Weight        *decimal.Decimal
	Length        *decimal.Decimal
	Width         *decimal.Decimal
	Height        *decimal.Decimal

	AverageRating decimal.Decimal
	ReviewCount   int
	TotalSales    int

	Featured          bool
	OnSale            bool
	Virtual           bool
	Downloadable      bool
	SoldIndividually  bool
	BackordersAllowed bool

	DateCreated  time.Time
	DateModified time.Time
}

// Property resolves one condition property against the record. The second
// return is false when the record does not carry the property.
func (p *Product) Property(prop condition.Property) (condition.Value, bool) {
	switch prop {
	case condition.PropPrice:
		return condition.Number(p.Price), true
	case condition.PropRegularPrice:
		return condition.Number(p.RegularPrice), true
	case condition.PropSalePrice:
		return optNumber(p.SalePrice)
	case condition.PropStockQuantity:
		if p.StockQuantity == nil {
			return condition.Value{}, false
		}
		return condition.Number(decimal.NewFromInt(int64(*p.StockQuantity))), true
	case condition.PropWeight:
		return optNumber(p.Weight)
	case condition.PropLength:
		return optNumber(p.Length)
	case condition.PropWidth:
		return optNumber(p.Width)
	case condition.PropHeight:
		return optNumber(p.Height)
	case condition.PropAverageRating:
		return condition.Number(p.AverageRating), true
	case condition.PropReviewCount:
		return condition.Number(decimal.NewFromInt(int64(p.ReviewCount))), true
	case condition.PropTotalSales:
		return condition.Number(decimal.NewFromInt(int64(p.TotalSales))), true
	case condition.PropSKU:
		return condition.Text(p.SKU), true
	case condition.PropName:
		return condition.Text(p.Name), true
	case condition.PropDescription:
		return condition.Text(p.Description), true
	case condition.PropShortDescription:
		return condition.Text(p.ShortDescription), true
	case condition.PropProductType:
		return condition.Text(p.Type), true
	case condition.PropStockStatus:
		return condition.Text(p.StockStatus), true
	case condition.PropTaxStatus:
		return condition.Text(p.TaxStatus), true
	case condition.PropCatalogVisibility:
		return condition.Text(p.CatalogVisibility), true
	case condition.PropFeatured:
		return condition.Flag(p.Featured), true
	case condition.PropOnSale:
		return condition.Flag(p.OnSale), true
	case condition.PropVirtual:
		return condition.Flag(p.Virtual), true
	case condition.PropDownloadable:
		return condition.Flag(p.Downloadable), true
	case condition.PropSoldIndividually:
		return condition.Flag(p.SoldIndividually), true
	case condition.PropBackordersAllowed:
		return condition.Flag(p.BackordersAllowed), true
	case condition.PropDateCreated:
		return condition.Timestamp(p.DateCreated), true
	case condition.PropDateModified:
		return condition.Timestamp(p.DateModified), true
	}
	return condition.Value{}, false
}

func optNumber(d *decimal.Decimal) (condition.Value, bool) {
	if d == nil {
		return condition.Value{}, false
	}
	return condition.Number(*d), true
}

// Resolver adapts a batch of loaded products into a condition.Resolver.
type Resolver map[string]*Product

// ResolverFor indexes products by id for property resolution.
func ResolverFor(products []Product) Resolver {
	m := make(Resolver, len(products))
	for i := range products {
		m[products[i].ID] = &products[i]
	}
	return m
}

// Resolve implements condition.Resolver.
func (r Resolver) Resolve(productID string, prop condition.Property) (condition.Value, bool) {
	p, ok := r[productID]
	if !ok {
		return condition.Value{}, false
	}
	return p.Property(prop)
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	ListIDs(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	// SearchIDs executes declarative filter criteria against the store.
	SearchIDs(ctx context.Context, crit condition.Criteria) ([]string, error)
}
