// Command seed-db loads a demo catalog and a few sample campaigns, for local
// development and integration tests.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/smartcycle/discounts/internal/domain/campaign"
	"github.com/smartcycle/discounts/internal/domain/condition"
	"github.com/smartcycle/discounts/internal/domain/discount"
	"github.com/smartcycle/discounts/internal/domain/product"
	"github.com/smartcycle/discounts/internal/repository"
)

type productJSON struct {
	ID               string           `json:"id"`
	SKU              string           `json:"sku"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description"`
	Type             string           `json:"product_type"`
	StockStatus      string           `json:"stock_status"`
	Price            decimal.Decimal  `json:"price"`
	RegularPrice     decimal.Decimal  `json:"regular_price"`
	SalePrice        *decimal.Decimal `json:"sale_price"`
	StockQuantity    *int             `json:"stock_quantity"`
	Weight           *decimal.Decimal `json:"weight"`
	AverageRating    decimal.Decimal  `json:"average_rating"`
	ReviewCount      int              `json:"review_count"`
	TotalSales       int              `json:"total_sales"`
	Featured         bool             `json:"featured"`
	OnSale           bool             `json:"on_sale"`
	Virtual          bool             `json:"virtual"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, repository.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedCampaigns(ctx, repository.NewCampaignRepository(pool)); err != nil {
		return errors.Wrap(err, "seed campaigns")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var records []productJSON
	if err := json.Unmarshal(data, &records); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(records)))

	for _, rec := range records {
		stockStatus := rec.StockStatus
		if stockStatus == "" {
			stockStatus = "instock"
		}
		productType := rec.Type
		if productType == "" {
			productType = "simple"
		}

		p := product.Product{
			ID:                rec.ID,
			SKU:               rec.SKU,
			Name:              rec.Name,
			Description:       rec.Description,
			ShortDescription:  rec.ShortDescription,
			Type:              productType,
			StockStatus:       stockStatus,
			TaxStatus:         "taxable",
			CatalogVisibility: "visible",
			Price:             rec.Price,
			RegularPrice:      rec.RegularPrice,
			SalePrice:         rec.SalePrice,
			StockQuantity:     rec.StockQuantity,
			Weight:            rec.Weight,
			AverageRating:     rec.AverageRating,
			ReviewCount:       rec.ReviewCount,
			TotalSales:        rec.TotalSales,
			Featured:          rec.Featured,
			OnSale:            rec.OnSale,
			Virtual:           rec.Virtual,
		}
		if err := repo.Upsert(ctx, &p); err != nil {
			return errors.Wrapf(err, "upsert product %s", rec.ID)
		}

		slog.Info("upserted product", slog.String("id", rec.ID), slog.String("name", rec.Name))
	}

	return nil
}

func seedCampaigns(ctx context.Context, repo *repository.CampaignRepository) error {
	slog.Info("seeding sample campaigns")

	now := time.Now().UTC()
	in30d := now.AddDate(0, 0, 30)

	campaigns := []campaign.Campaign{
		{
			ID:       "featured-percent-10",
			Name:     "Featured products 10% off",
			Status:   campaign.StatusActive,
			Priority: 10,
			StartsAt: &now,
			EndsAt:   &in30d,
			Logic:    condition.LogicAll,
			Conditions: []condition.Condition{
				{Property: condition.PropFeatured, Operator: condition.OpEq, Value: "yes", Mode: condition.ModeInclude},
			},
			Discount: discount.Config{
				Type:  discount.TypePercentage,
				Value: decimal.NewFromInt(10),
			},
		},
		{
			ID:       "bulk-tiers",
			Name:     "Bulk pricing on affordable items",
			Status:   campaign.StatusActive,
			Priority: 20,
			Logic:    condition.LogicAll,
			Conditions: []condition.Condition{
				{Property: condition.PropPrice, Operator: condition.OpLt, Value: "100", Mode: condition.ModeInclude},
			},
			Discount: discount.Config{
				Type: discount.TypeTiered,
				Tiers: []discount.Tier{
					{MinQuantity: 5, Value: decimal.NewFromInt(5), Type: discount.TypePercentage},
					{MinQuantity: 10, Value: decimal.NewFromInt(10), Type: discount.TypePercentage},
					{MinQuantity: 25, Value: decimal.NewFromInt(15), Type: discount.TypePercentage},
				},
			},
		},
		{
			ID:       "spend-thresholds",
			Name:     "Spend more, save more",
			Status:   campaign.StatusActive,
			Priority: 5,
			Logic:    condition.LogicAny,
			Conditions: []condition.Condition{
				{Property: condition.PropOnSale, Operator: condition.OpNotEq, Value: "yes", Mode: condition.ModeInclude},
			},
			Discount: discount.Config{
				Type: discount.TypeSpendThreshold,
				Thresholds: []discount.Threshold{
					{SpendAmount: decimal.NewFromInt(200), Value: decimal.NewFromInt(5), Type: discount.TypePercentage},
					{SpendAmount: decimal.NewFromInt(500), Value: decimal.NewFromInt(10), Type: discount.TypePercentage},
				},
			},
		},
	}

	for i := range campaigns {
		c := &campaigns[i]
		c.CreatedAt = now
		c.UpdatedAt = now

		if err := c.Validate(); err != nil {
			return errors.Wrapf(err, "validate campaign %s", c.ID)
		}
		if err := repo.Create(ctx, c); err != nil {
			return errors.Wrapf(err, "create campaign %s", c.ID)
		}

		slog.Info("created campaign", slog.String("id", c.ID), slog.String("name", c.Name))
	}

	return nil
}
