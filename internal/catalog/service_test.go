package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kadapaimran/grocery-storefront/pkg/types"
)

type stubGateway struct {
	products []types.Product
	err      error
}

func (s *stubGateway) ListProducts(context.Context) ([]types.Product, error) {
	return s.products, s.err
}

func (s *stubGateway) ListProductsByCategory(_ context.Context, category string) ([]types.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []types.Product
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubCache struct {
	all        []types.Product
	replaceAll int
	replaceCat int
	loadErr    error
}

func (s *stubCache) ReplaceAll(_ context.Context, products []types.Product) error {
	s.replaceAll++
	s.all = products
	return nil
}

func (s *stubCache) ReplaceCategory(_ context.Context, _ string, products []types.Product) error {
	s.replaceCat++
	s.all = products
	return nil
}

func (s *stubCache) List(context.Context) ([]types.Product, error) {
	return s.all, s.loadErr
}

func (s *stubCache) ListByCategory(_ context.Context, category string) ([]types.Product, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	var out []types.Product
	for _, p := range s.all {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func catalogFixture() []types.Product {
	return []types.Product{
		{ID: 1, Name: "Apples", Category: "fruit", Price: decimal.RequireFromString("3.50")},
		{ID: 2, Name: "Milk", Category: "dairy", Price: decimal.RequireFromString("2.25")},
	}
}

func TestListRefreshesCacheOnSuccess(t *testing.T) {
	gw := &stubGateway{products: catalogFixture()}
	cache := &stubCache{}
	svc, err := NewService(gw, cache, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	products, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	if cache.replaceAll != 1 {
		t.Fatalf("cache not refreshed, replaceAll = %d", cache.replaceAll)
	}
}

func TestListFallsBackToCacheWhenGatewayFails(t *testing.T) {
	gw := &stubGateway{err: errors.New("gateway down")}
	cache := &stubCache{all: catalogFixture()}
	svc, err := NewService(gw, cache, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	products, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("expected cached fallback, got %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d cached products, want 2", len(products))
	}
}

func TestListReturnsGatewayErrorWhenCacheEmpty(t *testing.T) {
	gatewayErr := errors.New("gateway down")
	gw := &stubGateway{err: gatewayErr}
	cache := &stubCache{}
	svc, err := NewService(gw, cache, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.List(context.Background())
	if !errors.Is(err, gatewayErr) {
		t.Fatalf("expected the gateway error, got %v", err)
	}
}

func TestListByCategoryFallsBackToCache(t *testing.T) {
	gw := &stubGateway{err: errors.New("gateway down")}
	cache := &stubCache{all: catalogFixture()}
	svc, err := NewService(gw, cache, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	products, err := svc.ListByCategory(context.Background(), "dairy")
	if err != nil {
		t.Fatalf("expected cached fallback, got %v", err)
	}
	if len(products) != 1 || products[0].Name != "Milk" {
		t.Fatalf("got %+v, want the cached dairy product", products)
	}
}
