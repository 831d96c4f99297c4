//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 9 {
		t.Fatalf("expected 9 products, got %d", len(products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var mouse *productResponse
	for i := range products {
		if products[i].ID == "wm-001" {
			mouse = &products[i]
			break
		}
	}

	if mouse == nil {
		t.Fatal("product wm-001 not found")
	}
	if mouse.Name != "Wireless Mouse" {
		t.Errorf("name: got %q, want %q", mouse.Name, "Wireless Mouse")
	}
	if mouse.Price != 19.99 {
		t.Errorf("price: got %v, want 19.99", mouse.Price)
	}
	if mouse.SKU != "WM-001" {
		t.Errorf("sku: got %q, want %q", mouse.SKU, "WM-001")
	}
	if !mouse.Featured {
		t.Error("expected wm-001 to be featured")
	}
	if mouse.StockStatus != "instock" {
		t.Errorf("stock_status: got %q, want instock", mouse.StockStatus)
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/kb-002")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	product := decodeJSON[productResponse](t, resp)
	if product.ID != "kb-002" {
		t.Errorf("id: got %q, want kb-002", product.ID)
	}
	if product.Name != "Mechanical Keyboard" {
		t.Errorf("name: got %q, want %q", product.Name, "Mechanical Keyboard")
	}
	if !product.OnSale {
		t.Error("expected kb-002 to be on sale")
	}
	if product.RegularPrice != 49.5 {
		t.Errorf("regular_price: got %v, want 49.5", product.RegularPrice)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/ghost-999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}
