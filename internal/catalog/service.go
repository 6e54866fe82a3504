package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/kadapaimran/grocery-storefront/pkg/logger"
	"github.com/kadapaimran/grocery-storefront/pkg/metrics"
	"github.com/kadapaimran/grocery-storefront/pkg/types"
)

type listGateway interface {
	ListProducts(ctx context.Context) ([]types.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]types.Product, error)
}

type productCache interface {
	ReplaceAll(ctx context.Context, products []types.Product) error
	ReplaceCategory(ctx context.Context, category string, products []types.Product) error
	List(ctx context.Context) ([]types.Product, error)
	ListByCategory(ctx context.Context, category string) ([]types.Product, error)
}

// Service serves catalog listings from the remote gateway, falling back to
// the local cache when the gateway is unreachable.
type Service interface {
	List(ctx context.Context) ([]types.Product, error)
	ListByCategory(ctx context.Context, category string) ([]types.Product, error)
}

type service struct {
	gateway listGateway
	cache   productCache
	logger  *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewService builds the catalog service.
func NewService(gateway listGateway, cache productCache, logg *logger.Logger, m *metrics.StorefrontMetrics) (Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if cache == nil {
		return nil, fmt.Errorf("product cache required")
	}
	return &service{gateway: gateway, cache: cache, logger: logg, metrics: m}, nil
}

func (s *service) List(ctx context.Context) ([]types.Product, error) {
	start := time.Now()
	products, err := s.gateway.ListProducts(ctx)
	s.metrics.ObserveGateway("list_products", time.Since(start))
	if err != nil {
		return s.fallback(ctx, err, func() ([]types.Product, error) {
			return s.cache.List(ctx)
		})
	}

	if cacheErr := s.cache.ReplaceAll(ctx, products); cacheErr != nil && s.logger != nil {
		s.logger.Warn(ctx, fmt.Sprintf("refreshing catalog cache: %v", cacheErr))
	}
	return products, nil
}

func (s *service) ListByCategory(ctx context.Context, category string) ([]types.Product, error) {
	start := time.Now()
	products, err := s.gateway.ListProductsByCategory(ctx, category)
	s.metrics.ObserveGateway("list_by_category", time.Since(start))
	if err != nil {
		return s.fallback(ctx, err, func() ([]types.Product, error) {
			return s.cache.ListByCategory(ctx, category)
		})
	}

	if cacheErr := s.cache.ReplaceCategory(ctx, category, products); cacheErr != nil && s.logger != nil {
		s.logger.Warn(ctx, fmt.Sprintf("refreshing catalog cache: %v", cacheErr))
	}
	return products, nil
}

// fallback serves cached rows after a gateway failure. The original gateway
// error wins when the cache has nothing to offer.
func (s *service) fallback(ctx context.Context, gatewayErr error, load func() ([]types.Product, error)) ([]types.Product, error) {
	cached, cacheErr := load()
	if cacheErr != nil || len(cached) == 0 {
		return nil, gatewayErr
	}
	if s.logger != nil {
		s.logger.Warn(ctx, fmt.Sprintf("serving catalog from cache: %v", gatewayErr))
	}
	return cached, nil
}
