package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/smartcycle/discounts/internal/domain/campaign"
)

type quoteRequest struct {
	Items []quoteRequestItem `json:"items"`
}

type quoteRequestItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type quoteItemResponse struct {
	ProductID       string            `json:"product_id"`
	Quantity        int               `json:"quantity"`
	OriginalPrice   decimal.Decimal   `json:"original_price"`
	DiscountedPrice decimal.Decimal   `json:"discounted_price"`
	CampaignID      string            `json:"campaign_id,omitempty"`
	CampaignName    string            `json:"campaign_name,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

type quoteResponse struct {
	Items     []quoteItemResponse `json:"items"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
	Discounts decimal.Decimal     `json:"discounts"`
	Total     decimal.Decimal     `json:"total"`
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	items := make([]campaign.QuoteItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = campaign.QuoteItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	result, err := h.pricer.Quote(r.Context(), campaign.QuoteRequest{Items: items})
	if err != nil {
		h.respondQuoteError(w, err)
		return
	}

	if h.quoteCounter != nil {
		h.quoteCounter.Add(r.Context(), 1)
	}

	out := quoteResponse{
		Items:     make([]quoteItemResponse, len(result.Items)),
		Subtotal:  result.Subtotal,
		Discounts: result.Discounts,
		Total:     result.Total,
	}
	for i, item := range result.Items {
		out.Items[i] = quoteItemResponse{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			OriginalPrice:   item.Result.OriginalPrice,
			DiscountedPrice: item.Result.DiscountedPrice,
			CampaignID:      item.CampaignID,
			CampaignName:    item.CampaignName,
			Metadata:        item.Result.Metadata,
		}
	}
	h.respondJSON(w, http.StatusOK, out)
}

// respondQuoteError maps pricing errors onto HTTP statuses: empty carts are
// bad requests, unknown products and bad quantities are unprocessable.
func (h *Handler) respondQuoteError(w http.ResponseWriter, err error) {
	if errors.Is(err, campaign.ErrEmptyItems) {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var iqErr *campaign.InvalidQuantityError
	if errors.As(err, &iqErr) {
		h.respondError(w, http.StatusUnprocessableEntity, iqErr.Error())
		return
	}

	var pnfErr *campaign.ProductNotFoundError
	if errors.As(err, &pnfErr) {
		h.respondError(w, http.StatusUnprocessableEntity, pnfErr.Error())
		return
	}

	h.respondInternal(w, err)
}
