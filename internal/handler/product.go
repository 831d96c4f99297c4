package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/smartcycle/discounts/internal/domain/product"
)

type productResponse struct {
	ID               string `json:"id"`
	SKU              string `json:"sku,omitempty"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	ShortDescription string `json:"short_description,omitempty"`

	Type              string `json:"product_type"`
	StockStatus       string `json:"stock_status"`
	TaxStatus         string `json:"tax_status"`
	CatalogVisibility string `json:"catalog_visibility"`

	Price        decimal.Decimal  `json:"price"`
	RegularPrice decimal.Decimal  `json:"regular_price"`
	SalePrice    *decimal.Decimal `json:"sale_price,omitempty"`

	StockQuantity *int             `json:"stock_quantity,omitempty"`
	Weight        *decimal.Decimal `json:"weight,omitempty"`
	Length        *decimal.Decimal `json:"length,omitempty"`
	Width         *decimal.Decimal `json:"width,omitempty"`
	Height        *decimal.Decimal `json:"height,omitempty"`

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

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Description:       p.Description,
		ShortDescription:  p.ShortDescription,
		Type:              p.Type,
		StockStatus:       p.StockStatus,
		TaxStatus:         p.TaxStatus,
		CatalogVisibility: p.CatalogVisibility,
		Price:             p.Price,
		RegularPrice:      p.RegularPrice,
		SalePrice:         p.SalePrice,
		StockQuantity:     p.StockQuantity,
		Weight:            p.Weight,
		Length:            p.Length,
		Width:             p.Width,
		Height:            p.Height,
		AverageRating:     p.AverageRating,
		ReviewCount:       p.ReviewCount,
		TotalSales:        p.TotalSales,
		Featured:          p.Featured,
		OnSale:            p.OnSale,
		Virtual:           p.Virtual,
		Downloadable:      p.Downloadable,
		SoldIndividually:  p.SoldIndividually,
		BackordersAllowed: p.BackordersAllowed,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.respondInternal(w, err)
		return
	}

	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i])
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "product not found")
			return
		}
		h.respondInternal(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toProductResponse(p))
}
