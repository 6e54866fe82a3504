package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kadapaimran/grocery-storefront/pkg/config"
	pkgerrors "github.com/kadapaimran/grocery-storefront/pkg/errors"
	"github.com/kadapaimran/grocery-storefront/pkg/types"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.GatewayConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, server
}

func TestListProducts(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Apple","category":"fruit","price":2.5}]`))
	}))

	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if products[0].Name != "Apple" {
		t.Fatalf("unexpected product %+v", products[0])
	}
	if !products[0].Price.Equal(decimal.NewFromFloat(2.5)) {
		t.Fatalf("unexpected price %s", products[0].Price)
	}
}

func TestListProductsByCategory(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products/category/dairy" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))

	if _, err := client.ListProductsByCategory(context.Background(), "dairy"); err != nil {
		t.Fatalf("list by category: %v", err)
	}
}

func TestListProductsByCategoryRequiresCategory(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	_, err := client.ListProductsByCategory(context.Background(), "  ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateProductReturnsAssignedID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		var input types.ProductInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.Product{
			ID:       42,
			Name:     input.Name,
			Category: input.Category,
			Price:    input.Price,
		})
	}))

	created, err := client.CreateProduct(context.Background(), types.ProductInput{
		Name:     "Milk",
		Category: "dairy",
		Price:    decimal.NewFromFloat(3.99),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.ID != 42 {
		t.Fatalf("expected assigned id 42, got %d", created.ID)
	}
}

func TestDeleteProductNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"product not found"}`, http.StatusNotFound)
	}))

	err := client.DeleteProduct(context.Background(), 99)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoginSurfacesGatewayMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid credentials!"}`, http.StatusUnauthorized)
	}))

	_, err := client.Login(context.Background(), Credentials{Username: "user", Password: "bad"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if typed.Message() != "Invalid credentials!" {
		t.Fatalf("expected gateway message passthrough, got %q", typed.Message())
	}
}

func TestLoginReturnsToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"abc123"}`))
	}))

	result, err := client.Login(context.Background(), Credentials{Username: "user", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token != "abc123" {
		t.Fatalf("expected token, got %+v", result)
	}
}
