package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartcycle/discounts/internal/domain/condition"
	"github.com/smartcycle/discounts/internal/domain/product"
)

const productColumns = `id, sku, name, description, short_description,
	product_type, stock_status, tax_status, catalog_visibility,
	price, regular_price, sale_price,
	stock_quantity, weight, length, width, height,
	average_rating, review_count, total_sales,
	featured, on_sale, virtual, downloadable, sold_individually, backorders_allowed,
	date_created, date_modified`

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListIDs returns every product id in the catalog.
func (r *ProductRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing product ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given ids.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

const upsertProductSQL = `INSERT INTO products
	(id, sku, name, description, short_description,
	 product_type, stock_status, tax_status, catalog_visibility,
	 price, regular_price, sale_price,
	 stock_quantity, weight, length, width, height,
	 average_rating, review_count, total_sales,
	 featured, on_sale, virtual, downloadable, sold_individually, backorders_allowed)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
	        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	ON CONFLICT (id) DO UPDATE SET
		sku = EXCLUDED.sku,
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		short_description = EXCLUDED.short_description,
		product_type = EXCLUDED.product_type,
		stock_status = EXCLUDED.stock_status,
		tax_status = EXCLUDED.tax_status,
		catalog_visibility = EXCLUDED.catalog_visibility,
		price = EXCLUDED.price,
		regular_price = EXCLUDED.regular_price,
		sale_price = EXCLUDED.sale_price,
		stock_quantity = EXCLUDED.stock_quantity,
		weight = EXCLUDED.weight,
		length = EXCLUDED.length,
		width = EXCLUDED.width,
		height = EXCLUDED.height,
		average_rating = EXCLUDED.average_rating,
		review_count = EXCLUDED.review_count,
		total_sales = EXCLUDED.total_sales,
		featured = EXCLUDED.featured,
		on_sale = EXCLUDED.on_sale,
		virtual = EXCLUDED.virtual,
		downloadable = EXCLUDED.downloadable,
		sold_individually = EXCLUDED.sold_individually,
		backorders_allowed = EXCLUDED.backorders_allowed,
		date_modified = NOW()`

func upsertArgs(p *product.Product) []any {
	return []any{
		p.ID, p.SKU, p.Name, p.Description, p.ShortDescription,
		p.Type, p.StockStatus, p.TaxStatus, p.CatalogVisibility,
		p.Price, p.RegularPrice, p.SalePrice,
		p.StockQuantity, p.Weight, p.Length, p.Width, p.Height,
		p.AverageRating, p.ReviewCount, p.TotalSales,
		p.Featured, p.OnSale, p.Virtual, p.Downloadable,
		p.SoldIndividually, p.BackordersAllowed,
	}
}

// Upsert inserts or replaces a single catalog record.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	if _, err := r.pool.Exec(ctx, upsertProductSQL, upsertArgs(p)...); err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

// UpsertBatch pipelines upserts for a chunk of catalog records.
func (r *ProductRepository) UpsertBatch(ctx context.Context, products []product.Product) error {
	batch := &pgx.Batch{}
	for i := range products {
		batch.Queue(upsertProductSQL, upsertArgs(&products[i])...)
	}

	res := r.pool.SendBatch(ctx, batch)
	defer res.Close()

	for i := range products {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("upserting product %q: %w", products[i].ID, err)
		}
	}
	return res.Close()
}

// SearchIDs translates declarative filter criteria into SQL and returns the
// matching product ids. The translation mirrors the in-memory engine: NULL
// columns satisfy negative operators only, numeric equality uses the 0.01
// tolerance, and text matching is case-insensitive.
func (r *ProductRepository) SearchIDs(ctx context.Context, crit condition.Criteria) ([]string, error) {
	where, args, err := buildWhere(crit)
	if err != nil {
		return nil, fmt.Errorf("building search query: %w", err)
	}

	sql := `SELECT id FROM products`
	if where != "" {
		sql += ` WHERE ` + where
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// clauseColumns whitelists the filterable columns; clause fields come from
// stored conditions, never raw user input, but the indirection keeps
// identifiers out of the SQL text entirely.
var clauseColumns = map[string]string{
	"price":              "price",
	"sale_price":         "sale_price",
	"regular_price":      "regular_price",
	"stock_quantity":     "stock_quantity",
	"weight":             "weight",
	"length":             "length",
	"width":              "width",
	"height":             "height",
	"average_rating":     "average_rating",
	"review_count":       "review_count",
	"total_sales":        "total_sales",
	"sku":                "sku",
	"name":               "name",
	"description":        "description",
	"short_description":  "short_description",
	"featured":           "featured",
	"on_sale":            "on_sale",
	"virtual":            "virtual",
	"downloadable":       "downloadable",
	"sold_individually":  "sold_individually",
	"backorders_allowed": "backorders_allowed",
	"product_type":       "product_type",
	"stock_status":       "stock_status",
	"tax_status":         "tax_status",
	"catalog_visibility": "catalog_visibility",
	"date_created":       "date_created",
	"date_modified":      "date_modified",
}

func buildWhere(crit condition.Criteria) (string, []any, error) {
	var (
		frags []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, cl := range crit.Clauses {
		col, ok := clauseColumns[cl.Field]
		if !ok {
			return "", nil, errors.Errorf("unknown filter field %q", cl.Field)
		}

		frag, err := clauseSQL(col, cl, arg)
		if err != nil {
			return "", nil, err
		}

		// COALESCE pins NULL comparisons to false so include/exclude
		// inversion matches the in-memory engine's missing-property rules.
		frag = "COALESCE((" + frag + "), FALSE)"
		if cl.Exclude {
			frag = "NOT " + frag
		}
		frags = append(frags, frag)
	}

	if len(frags) == 0 {
		return "", nil, nil
	}

	joiner := " AND "
	if crit.Relation == condition.LogicAny {
		joiner = " OR "
	}
	return strings.Join(frags, joiner), args, nil
}

func clauseSQL(col string, cl condition.Clause, arg func(any) string) (string, error) {
	switch cl.Category {
	case condition.CategoryNumeric:
		return numericClauseSQL(col, cl, arg)
	case condition.CategoryDate:
		return dateClauseSQL(col, cl, arg)
	case condition.CategoryBool:
		boolArg := arg(condition.NormalizeBool(cl.Value))
		if cl.Operator == condition.OpNotEq {
			return col + " <> " + boolArg, nil
		}
		return col + " = " + boolArg, nil
	default:
		return textClauseSQL(col, cl, arg)
	}
}

func numericClauseSQL(col string, cl condition.Clause, arg func(any) string) (string, error) {
	switch cl.Operator {
	case condition.OpEq:
		return "ABS(" + col + " - " + arg(cl.Value) + "::numeric) < 0.01", nil
	case condition.OpNotEq:
		return "ABS(" + col + " - " + arg(cl.Value) + "::numeric) >= 0.01 OR " + col + " IS NULL", nil
	case condition.OpGt, condition.OpGte, condition.OpLt, condition.OpLte:
		return col + " " + string(cl.Operator) + " " + arg(cl.Value) + "::numeric", nil
	case condition.OpBetween:
		return col + " BETWEEN " + arg(cl.Value) + "::numeric AND " + arg(cl.Value2) + "::numeric", nil
	case condition.OpNotBetween:
		return col + " NOT BETWEEN " + arg(cl.Value) + "::numeric AND " + arg(cl.Value2) + "::numeric OR " + col + " IS NULL", nil
	}
	return "", errors.Errorf("operator %q not supported for numeric field %s", cl.Operator, col)
}

func dateClauseSQL(col string, cl condition.Clause, arg func(any) string) (string, error) {
	switch cl.Operator {
	case condition.OpEq:
		return col + " = " + arg(cl.Value) + "::timestamptz", nil
	case condition.OpNotEq:
		return col + " <> " + arg(cl.Value) + "::timestamptz OR " + col + " IS NULL", nil
	case condition.OpGt, condition.OpGte, condition.OpLt, condition.OpLte:
		return col + " " + string(cl.Operator) + " " + arg(cl.Value) + "::timestamptz", nil
	case condition.OpBetween:
		return col + " BETWEEN " + arg(cl.Value) + "::timestamptz AND " + arg(cl.Value2) + "::timestamptz", nil
	case condition.OpNotBetween:
		return col + " NOT BETWEEN " + arg(cl.Value) + "::timestamptz AND " + arg(cl.Value2) + "::timestamptz OR " + col + " IS NULL", nil
	}
	return "", errors.Errorf("operator %q not supported for date field %s", cl.Operator, col)
}

func textClauseSQL(col string, cl condition.Clause, arg func(any) string) (string, error) {
	switch cl.Operator {
	case condition.OpEq:
		return "LOWER(" + col + ") = LOWER(" + arg(cl.Value) + ")", nil
	case condition.OpNotEq:
		return "LOWER(" + col + ") <> LOWER(" + arg(cl.Value) + ") OR " + col + " IS NULL", nil
	case condition.OpContains:
		return col + " ILIKE " + arg("%"+cl.Value+"%"), nil
	case condition.OpNotContains:
		return col + " NOT ILIKE " + arg("%"+cl.Value+"%") + " OR " + col + " IS NULL", nil
	case condition.OpStartsWith:
		return col + " ILIKE " + arg(cl.Value+"%"), nil
	case condition.OpEndsWith:
		return col + " ILIKE " + arg("%"+cl.Value), nil
	case condition.OpIn:
		return "LOWER(" + col + ") = ANY(" + arg(lowerAll(cl.Values)) + ")", nil
	case condition.OpNotIn:
		return "NOT (LOWER(" + col + ") = ANY(" + arg(lowerAll(cl.Values)) + ")) OR " + col + " IS NULL", nil
	}
	return "", errors.Errorf("operator %q not supported for text field %s", cl.Operator, col)
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.ShortDescription,
		&p.Type, &p.StockStatus, &p.TaxStatus, &p.CatalogVisibility,
		&p.Price, &p.RegularPrice, &p.SalePrice,
		&p.StockQuantity, &p.Weight, &p.Length, &p.Width, &p.Height,
		&p.AverageRating, &p.ReviewCount, &p.TotalSales,
		&p.Featured, &p.OnSale, &p.Virtual, &p.Downloadable,
		&p.SoldIndividually, &p.BackordersAllowed,
		&p.DateCreated, &p.DateModified,
	)
	return p, err
}
