// Command catalog-ingest imports product catalog exports into the database.
//
// Exports are gzip-compressed JSONL files, one product per line. Several
// export files may overlap (full dumps plus incremental ones); a bloom filter
// skips most repeated ids cheaply, and the database upsert makes the few
// false-negative duplicates harmless.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/smartcycle/discounts/internal/domain/product"
	"github.com/smartcycle/discounts/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	batchSize     = 500
	progressEvery = 100_000
)

// productLine is the JSONL export record for one product.
type productLine struct {
	ID               string `json:"id"`
	SKU              string `json:"sku"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`

	Type              string `json:"product_type"`
	StockStatus       string `json:"stock_status"`
	TaxStatus         string `json:"tax_status"`
	CatalogVisibility string `json:"catalog_visibility"`

	Price        decimal.Decimal  `json:"price"`
	RegularPrice decimal.Decimal  `json:"regular_price"`
	SalePrice    *decimal.Decimal `json:"sale_price"`

	StockQuantity *int             `json:"stock_quantity"`
	Weight        *decimal.Decimal `json:"weight"`
	Length        *decimal.Decimal `json:"length"`
	Width         *decimal.Decimal `json:"width"`
	Height        *decimal.Decimal `json:"height"`

	AverageRating decimal.Decimal `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
	TotalSales    int             `json:"total_sales"`

	Featured          bool `json:"featured"`
	OnSale            bool `json:"on_sale"`
	Virtual           bool `json:"virtual"`
	Downloadable      bool `json:"downloadable"`
	SoldIndividually  bool `json:"sold_individually"`
	BackordersAllowed bool `json:"backorders_allowed"`
}

func (l *productLine) toProduct() product.Product {
	return product.Product{
		ID:                l.ID,
		SKU:               l.SKU,
		Name:              l.Name,
		Description:       l.Description,
		ShortDescription:  l.ShortDescription,
		Type:              l.Type,
		StockStatus:       l.StockStatus,
		TaxStatus:         l.TaxStatus,
		CatalogVisibility: l.CatalogVisibility,
		Price:             l.Price,
		RegularPrice:      l.RegularPrice,
		SalePrice:         l.SalePrice,
		StockQuantity:     l.StockQuantity,
		Weight:            l.Weight,
		Length:            l.Length,
		Width:             l.Width,
		Height:            l.Height,
		AverageRating:     l.AverageRating,
		ReviewCount:       l.ReviewCount,
		TotalSales:        l.TotalSales,
		Featured:          l.Featured,
		OnSale:            l.OnSale,
		Virtual:           l.Virtual,
		Downloadable:      l.Downloadable,
		SoldIndividually:  l.SoldIndividually,
		BackordersAllowed: l.BackordersAllowed,
	}
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing catalog*.jsonl.gz export files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "catalog*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob export files")
	}
	if len(files) == 0 {
		return errors.Errorf("no catalog*.jsonl.gz files in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := repository.NewProductRepository(pool)

	// Readers stream and parse each export concurrently; a single writer
	// dedupes and upserts in batches.
	lines := make(chan product.Product, batchSize)

	g, ctx := errgroup.WithContext(ctx)
	readers, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		readers.Go(streamExportFile(ctx, f, lines))
	}
	g.Go(func() error {
		defer close(lines)
		return readers.Wait()
	})
	g.Go(writeProducts(ctx, repo, lines))

	return g.Wait()
}

// streamExportFile parses one gzipped JSONL export and sends its products.
func streamExportFile(ctx context.Context, path string, out chan<- product.Product) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var count uint64
		scanner := bufio.NewScanner(gz)
		scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
		for scanner.Scan() {
			var line productLine
			if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
				return errors.Wrapf(err, "parse line %d of %s", count+1, path)
			}
			if line.ID == "" {
				return errors.Errorf("missing product id at line %d of %s", count+1, path)
			}

			select {
			case out <- line.toProduct():
			case <-ctx.Done():
				return ctx.Err()
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("ingest progress",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("products", count),
				)
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("file complete",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("products", count),
		)
		return nil
	}
}

// writeProducts drains the channel, skipping ids already seen, and upserts
// in batches.
func writeProducts(ctx context.Context, repo *repository.ProductRepository, in <-chan product.Product) func() error {
	return func() error {
		seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		batch := make([]product.Product, 0, batchSize)
		var written, skipped uint64

		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := repo.UpsertBatch(ctx, batch); err != nil {
				return errors.Wrap(err, "upsert batch")
			}
			written += uint64(len(batch))
			batch = batch[:0]
			return nil
		}

		for p := range in {
			if seen.TestOrAddString(p.ID) {
				skipped++
				continue
			}
			batch = append(batch, p)
			if len(batch) == batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := flush(); err != nil {
			return err
		}

		slog.Info("write complete",
			slog.Uint64("written", written),
			slog.Uint64("duplicates_skipped", skipped),
		)
		return nil
	}
}
