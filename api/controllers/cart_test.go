package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kadapaimran/grocery-storefront/internal/cart"
	"github.com/kadapaimran/grocery-storefront/pkg/localstore"
)

func newCartStore(t *testing.T) *cart.Store {
	t.Helper()
	store, err := cart.NewStore(localstore.NewMemory(), nil, nil)
	if err != nil {
		t.Fatalf("cart store: %v", err)
	}
	return store
}

func withIDParam(req *http.Request, id string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeCartView(t *testing.T, body *httptest.ResponseRecorder) cartView {
	t.Helper()
	var envelope struct {
		Data cartView `json:"data"`
	}
	if err := json.NewDecoder(body.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func TestAddCartItemKeepsDuplicateLines(t *testing.T) {
	store := newCartStore(t)
	handler := AddCartItem(store, nil)

	body := `{"id":7,"name":"Bananas","price":"1.25","quantity":2}`
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", resp.Code)
		}
	}

	if got := len(store.Items()); got != 2 {
		t.Fatalf("expected 2 lines got %d", got)
	}
}

func TestAddCartItemRejectsMissingFields(t *testing.T) {
	store := newCartStore(t)
	handler := AddCartItem(store, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"name":"Bananas"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if got := len(store.Items()); got != 0 {
		t.Fatalf("expected empty cart got %d lines", got)
	}
}

func TestUpdateQuantityBelowOneRemovesLine(t *testing.T) {
	store := newCartStore(t)
	store.Add(context.Background(), cart.Item{ID: 7, Name: "Bananas", Quantity: 1})

	handler := UpdateCartItemQuantity(store, nil)
	req := httptest.NewRequest(http.MethodPut, "/api/cart/items/7/quantity", strings.NewReader(`{"quantity":0}`))
	req = withIDParam(req, "7")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	view := decodeCartView(t, resp)
	if len(view.Items) != 0 {
		t.Fatalf("expected line removed, got %d lines", len(view.Items))
	}
}

func TestUpdateQuantitySetsValue(t *testing.T) {
	store := newCartStore(t)
	store.Add(context.Background(), cart.Item{ID: 7, Name: "Bananas", Quantity: 1})

	handler := UpdateCartItemQuantity(store, nil)
	req := httptest.NewRequest(http.MethodPut, "/api/cart/items/7/quantity", strings.NewReader(`{"quantity":5}`))
	req = withIDParam(req, "7")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	items := store.Items()
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5 got %+v", items)
	}
}

func TestRemoveCartItemRejectsBadID(t *testing.T) {
	store := newCartStore(t)
	handler := RemoveCartItem(store, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/cart/items/banana", nil)
	req = withIDParam(req, "banana")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestClearCartEmptiesEveryLine(t *testing.T) {
	store := newCartStore(t)
	store.Add(context.Background(), cart.Item{ID: 1, Name: "Milk", Quantity: 1})
	store.Add(context.Background(), cart.Item{ID: 2, Name: "Eggs", Quantity: 1})

	handler := ClearCart(store, nil)
	req := httptest.NewRequest(http.MethodDelete, "/api/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	view := decodeCartView(t, resp)
	if len(view.Items) != 0 || view.Count != 0 {
		t.Fatalf("expected empty cart got %+v", view)
	}
}
