package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smartcycle/discounts/internal/domain/discount"
	"github.com/smartcycle/discounts/internal/domain/product"
)

// Sentinel errors for quote validation.
var ErrEmptyItems = fmt.Errorf("items required")

// ProductNotFoundError indicates a quoted product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a quote item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// QuoteItem is one line of a quote request.
type QuoteItem struct {
	ProductID string
	Quantity  int
}

// QuoteRequest holds the input for pricing a cart.
type QuoteRequest struct {
	Items []QuoteItem
}

// ItemQuote is the priced outcome for one line. CampaignID is empty when no
// campaign fired.
type ItemQuote struct {
	ProductID    string
	Quantity     int
	CampaignID   string
	CampaignName string
	Result       discount.Result
}

// QuoteResult aggregates the per-item results and cart totals.
type QuoteResult struct {
	Items     []ItemQuote
	Subtotal  decimal.Decimal
	Discounts decimal.Decimal
	Total     decimal.Decimal
}

// Pricer runs the discount-application pipeline: fetch products, resolve the
// highest-priority active campaign in scope per item, and compute the price
// adjustment. A campaign that cannot be evaluated degrades to full price for
// the affected items; it never fails the quote.
type Pricer struct {
	campaigns Repository
	products  product.Repository
	selector  *Selector
	now       func() time.Time
	lg        *zap.Logger
}

// NewPricer creates a Pricer with the required dependencies.
func NewPricer(
	campaigns Repository,
	products product.Repository,
	selector *Selector,
	lg *zap.Logger,
) *Pricer {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Pricer{
		campaigns: campaigns,
		products:  products,
		selector:  selector,
		now:       time.Now,
		lg:        lg,
	}
}

// Quote prices the requested items against the active campaigns.
func (p *Pricer) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	fetched, err := p.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	resolver := product.ResolverFor(fetched)

	byID := make(map[string]*product.Product, len(fetched))
	for i := range fetched {
		byID[fetched[i].ID] = &fetched[i]
	}

	// Cart total over original prices; spend-threshold strategies key on it.
	cartTotal := decimal.Zero
	for _, item := range req.Items {
		prod, ok := byID[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		cartTotal = cartTotal.Add(prod.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	active, err := p.campaigns.ListActive(ctx, p.now())
	if err != nil {
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}

	// Scope per campaign over the quoted ids, highest priority first.
	scopes := make([]map[string]struct{}, len(active))
	for i := range active {
		scope, err := p.selector.Select(ctx, resolver, ids, active[i].Conditions, active[i].Logic)
		if err != nil {
			return nil, fmt.Errorf("select campaign scope: %w", err)
		}
		set := make(map[string]struct{}, len(scope))
		for _, id := range scope {
			set[id] = struct{}{}
		}
		scopes[i] = set
	}

	result := &QuoteResult{
		Subtotal:  decimal.Zero,
		Discounts: decimal.Zero,
		Total:     decimal.Zero,
	}

	for _, item := range req.Items {
		prod := byID[item.ProductID]
		quote := p.priceItem(item, prod, cartTotal, active, scopes)
		result.Items = append(result.Items, quote)

		qty := decimal.NewFromInt(int64(item.Quantity))
		lineOriginal := quote.Result.OriginalPrice.Mul(qty)
		lineFinal := quote.Result.DiscountedPrice.Mul(qty)
		result.Subtotal = result.Subtotal.Add(lineOriginal)
		result.Total = result.Total.Add(lineFinal)
	}

	result.Subtotal = result.Subtotal.Round(2)
	result.Total = result.Total.Round(2)
	result.Discounts = result.Subtotal.Sub(result.Total).Round(2)

	return result, nil
}

// priceItem finds the first campaign (by descending priority) that covers
// the product and actually produces a discount. Campaigns whose strategy
// does not fire (quantity below every tier, cart below every threshold)
// fall through to the next candidate.
func (p *Pricer) priceItem(
	item QuoteItem,
	prod *product.Product,
	cartTotal decimal.Decimal,
	active []Campaign,
	scopes []map[string]struct{},
) ItemQuote {
	calcCtx := discount.Context{
		OriginalPrice: prod.Price,
		Quantity:      item.Quantity,
		CartTotal:     cartTotal,
	}

	for i := range active {
		if _, inScope := scopes[i][item.ProductID]; !inScope {
			continue
		}

		strategy, err := discount.ForConfig(active[i].Discount)
		if err != nil {
			// A malformed stored configuration must not break pricing.
			p.lg.Warn("skipping campaign with unusable discount config",
				zap.String("campaign_id", active[i].ID),
				zap.Error(err))
			continue
		}

		res := strategy.Calculate(calcCtx)
		if !res.Applied {
			continue
		}
		return ItemQuote{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			CampaignID:   active[i].ID,
			CampaignName: active[i].Name,
			Result:       res,
		}
	}

	// No campaign fired: full price.
	price := prod.Price.Round(2)
	return ItemQuote{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Result: discount.Result{
			OriginalPrice:   price,
			DiscountedPrice: price,
		},
	}
}
