package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kadapaimran/grocery-storefront/internal/admin"
	"github.com/kadapaimran/grocery-storefront/pkg/types"
)

type stubProductGateway struct {
	products  []types.Product
	nextID    int64
	deleteErr error
	deleted   []int64
}

func (s *stubProductGateway) ListProducts(ctx context.Context) ([]types.Product, error) {
	return append([]types.Product(nil), s.products...), nil
}

func (s *stubProductGateway) CreateProduct(ctx context.Context, input types.ProductInput) (*types.Product, error) {
	s.nextID++
	created := types.Product{
		ID:       s.nextID,
		Name:     input.Name,
		Category: input.Category,
		Price:    input.Price,
	}
	s.products = append(s.products, created)
	return &created, nil
}

func (s *stubProductGateway) UpdateProduct(ctx context.Context, id int64, input types.ProductInput) (*types.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			if input.Name != "" {
				s.products[i].Name = input.Name
			}
			return &s.products[i], nil
		}
	}
	return nil, fmt.Errorf("no product %d", id)
}

func (s *stubProductGateway) DeleteProduct(ctx context.Context, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func newTestPanel(t *testing.T, gw *stubProductGateway) *admin.Panel {
	t.Helper()
	panel, err := admin.NewPanel(gw, nil)
	if err != nil {
		t.Fatalf("admin panel: %v", err)
	}
	if err := panel.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	return panel
}

func TestAdminCreateProductReturnsAssignedID(t *testing.T) {
	gw := &stubProductGateway{nextID: 2}
	panel := newTestPanel(t, gw)
	handler := AdminCreateProduct(panel, nil)

	body := `{"name":"Oat Milk","category":"dairy","price":"3.49"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	var envelope struct {
		Data types.Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != 3 {
		t.Fatalf("expected id 3 got %d", envelope.Data.ID)
	}
	if got := len(panel.Products()); got != 1 {
		t.Fatalf("expected 1 product in working list got %d", got)
	}
}

func TestAdminCreateProductRejectsMissingFields(t *testing.T) {
	panel := newTestPanel(t, &stubProductGateway{})
	handler := AdminCreateProduct(panel, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", strings.NewReader(`{"name":"Oat Milk"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminDeleteWithoutConfirmIsNoOp(t *testing.T) {
	gw := &stubProductGateway{products: []types.Product{
		{ID: 1, Name: "Milk", Price: decimal.NewFromFloat(2.50)},
	}}
	panel := newTestPanel(t, gw)
	handler := AdminDeleteProduct(panel, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/products/1", nil)
	req = withIDParam(req, "1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(gw.deleted) != 0 {
		t.Fatalf("gateway delete should not be called, got %v", gw.deleted)
	}
	if got := len(panel.Products()); got != 1 {
		t.Fatalf("expected product kept got %d", got)
	}
}

func TestAdminDeleteWithConfirmRemovesProduct(t *testing.T) {
	gw := &stubProductGateway{products: []types.Product{
		{ID: 1, Name: "Milk", Price: decimal.NewFromFloat(2.50)},
	}}
	panel := newTestPanel(t, gw)
	handler := AdminDeleteProduct(panel, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/products/1?confirm=true", nil)
	req = withIDParam(req, "1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(gw.deleted) != 1 || gw.deleted[0] != 1 {
		t.Fatalf("expected gateway delete for id 1 got %v", gw.deleted)
	}
	if got := len(panel.Products()); got != 0 {
		t.Fatalf("expected empty working list got %d", got)
	}
}

func TestAdminUpdateProductAppliesPartialEdit(t *testing.T) {
	gw := &stubProductGateway{products: []types.Product{
		{ID: 1, Name: "Milk", Category: "dairy", Price: decimal.NewFromFloat(2.50)},
	}}
	panel := newTestPanel(t, gw)
	handler := AdminUpdateProduct(panel, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/products/1", strings.NewReader(`{"name":"Whole Milk"}`))
	req = withIDParam(req, "1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	products := panel.Products()
	if len(products) != 1 || products[0].Name != "Whole Milk" {
		t.Fatalf("expected renamed product got %+v", products)
	}
	if products[0].Category != "dairy" {
		t.Fatalf("expected category untouched got %q", products[0].Category)
	}
}

func TestAdminUpdateProductUnknownIDIs404(t *testing.T) {
	panel := newTestPanel(t, &stubProductGateway{})
	handler := AdminUpdateProduct(panel, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/products/99", strings.NewReader(`{"name":"Ghost"}`))
	req = withIDParam(req, "99")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
