//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestQuote_EmptyItems(t *testing.T) {
	resp := doPost(t, "/api/quote", quoteRequest{Items: []quoteRequestItem{}})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestQuote_UnknownProduct(t *testing.T) {
	resp := doPost(t, "/api/quote", quoteRequest{
		Items: []quoteRequestItem{{ProductID: "ghost-999", Quantity: 1}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestQuote_ZeroQuantity(t *testing.T) {
	resp := doPost(t, "/api/quote", quoteRequest{
		Items: []quoteRequestItem{{ProductID: "wm-001", Quantity: 0}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestQuote_NoCampaignFires(t *testing.T) {
	// Docking station: not featured, not on a bulk-eligible price, and one
	// unit keeps the cart below every spend threshold.
	resp := doPost(t, "/api/quote", quoteRequest{
		Items: []quoteRequestItem{{ProductID: "dock-009", Quantity: 1}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	quote := decodeJSON[quoteResponse](t, resp)
	if quote.Total != 149 {
		t.Errorf("total: got %v, want 149", quote.Total)
	}
	if quote.Discounts != 0 {
		t.Errorf("discounts: got %v, want 0", quote.Discounts)
	}
	if len(quote.Items) != 1 || quote.Items[0].CampaignID != "" {
		t.Errorf("expected no campaign on the line, got %+v", quote.Items)
	}
}

func TestQuote_FeaturedDiscount(t *testing.T) {
	// The featured mouse at quantity 2 stays below the bulk tiers, so the
	// 10% featured campaign applies instead.
	resp := doPost(t, "/api/quote", quoteRequest{
		Items: []quoteRequestItem{{ProductID: "wm-001", Quantity: 2}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	quote := decodeJSON[quoteResponse](t, resp)
	if quote.Items[0].CampaignID != "featured-percent-10" {
		t.Errorf("campaign: got %q, want featured-percent-10", quote.Items[0].CampaignID)
	}
	// 19.99 -> 17.99 per unit.
	if quote.Items[0].DiscountedPrice != 17.99 {
		t.Errorf("discounted price: got %v, want 17.99", quote.Items[0].DiscountedPrice)
	}
	if quote.Subtotal != 39.98 {
		t.Errorf("subtotal: got %v, want 39.98", quote.Subtotal)
	}
	if quote.Total != 35.98 {
		t.Errorf("total: got %v, want 35.98", quote.Total)
	}
	if quote.Discounts != 4 {
		t.Errorf("discounts: got %v, want 4", quote.Discounts)
	}
}

func TestQuote_BulkTier(t *testing.T) {
	// Ten cables hit the 10% bulk tier; the tier campaign outranks the spend
	// campaign.
	resp := doPost(t, "/api/quote", quoteRequest{
		Items: []quoteRequestItem{{ProductID: "usb-004", Quantity: 10}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	quote := decodeJSON[quoteResponse](t, resp)
	if quote.Items[0].CampaignID != "bulk-tiers" {
		t.Errorf("campaign: got %q, want bulk-tiers", quote.Items[0].CampaignID)
	}
	// 9.99 -> 8.99 per unit.
	if quote.Items[0].DiscountedPrice != 8.99 {
		t.Errorf("discounted price: got %v, want 8.99", quote.Items[0].DiscountedPrice)
	}
	if quote.Total != 89.9 {
		t.Errorf("total: got %v, want 89.9", quote.Total)
	}
	if quote.Discounts != 10 {
		t.Errorf("discounts: got %v, want 10", quote.Discounts)
	}
}

func TestQuote_SpendThreshold(t *testing.T) {
	// Two chairs total 378, past the 200 threshold: 5% off each unit.
	resp := doPost(t, "/api/quote", quoteRequest{
		Items: []quoteRequestItem{{ProductID: "chair-006", Quantity: 2}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	quote := decodeJSON[quoteResponse](t, resp)
	if quote.Items[0].CampaignID != "spend-thresholds" {
		t.Errorf("campaign: got %q, want spend-thresholds", quote.Items[0].CampaignID)
	}
	// 189.00 -> 179.55 per unit.
	if quote.Items[0].DiscountedPrice != 179.55 {
		t.Errorf("discounted price: got %v, want 179.55", quote.Items[0].DiscountedPrice)
	}
	if quote.Subtotal != 378 {
		t.Errorf("subtotal: got %v, want 378", quote.Subtotal)
	}
	if quote.Total != 359.1 {
		t.Errorf("total: got %v, want 359.1", quote.Total)
	}
	if quote.Discounts != 18.9 {
		t.Errorf("discounts: got %v, want 18.9", quote.Discounts)
	}
}

func TestQuote_MixedCart(t *testing.T) {
	// Lamp and hub are plain catalog items; the cart stays below 200, so
	// every line is full price.
	resp := doPost(t, "/api/quote", quoteRequest{
		Items: []quoteRequestItem{
			{ProductID: "lamp-007", Quantity: 1},
			{ProductID: "hub-005", Quantity: 2},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	quote := decodeJSON[quoteResponse](t, resp)
	if len(quote.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(quote.Items))
	}
	// 34.90 + 2*24.00 = 82.90
	if quote.Subtotal != 82.9 {
		t.Errorf("subtotal: got %v, want 82.9", quote.Subtotal)
	}
	if quote.Total != 82.9 {
		t.Errorf("total: got %v, want 82.9", quote.Total)
	}
	if quote.Discounts != 0 {
		t.Errorf("discounts: got %v, want 0", quote.Discounts)
	}
}
