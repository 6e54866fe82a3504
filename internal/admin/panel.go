package admin

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "github.com/kadapaimran/grocery-storefront/pkg/errors"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
	"github.com/kadapaimran/grocery-storefront/pkg/types"
)

type productGateway interface {
	ListProducts(ctx context.Context) ([]types.Product, error)
	CreateProduct(ctx context.Context, input types.ProductInput) (*types.Product, error)
	UpdateProduct(ctx context.Context, id int64, input types.ProductInput) (*types.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ConfirmFunc asks for interactive confirmation before a delete. Returning
// false aborts the delete without touching the list or the gateway.
type ConfirmFunc func(product types.Product) bool

// Panel drives product CRUD against the remote gateway while maintaining a
// local working copy of the catalog. Each mutation has its own
// reconciliation strategy:
//
//	Create: no optimism. The list changes only after the gateway confirms.
//	Update: optimistic merge, then a full re-fetch if the gateway fails.
//	Delete: optimistic remove with an exact snapshot rollback on failure.
//
// The asymmetry is deliberate and covered by tests; do not unify the three
// into one generic strategy.
type Panel struct {
	mu       sync.Mutex
	products []types.Product

	gateway productGateway
	logger  *logger.Logger
}

// NewPanel builds an admin panel with an empty working list. Call Refresh to
// populate it.
func NewPanel(gateway productGateway, logg *logger.Logger) (*Panel, error) {
	if gateway == nil {
		return nil, fmt.Errorf("product gateway required")
	}
	return &Panel{gateway: gateway, logger: logg}, nil
}

// Products returns a copy of the current working list.
func (p *Panel) Products() []types.Product {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyProducts(p.products)
}

// Refresh replaces the working list with server truth. On failure the
// previously loaded list is kept.
func (p *Panel) Refresh(ctx context.Context) error {
	fetched, err := p.gateway.ListProducts(ctx)
	if err != nil {
		if p.logger != nil {
			p.logger.Error(ctx, "refreshing product list", err)
		}
		return err
	}

	p.mu.Lock()
	p.products = fetched
	p.mu.Unlock()
	return nil
}

// Create submits the product to the gateway and appends the returned record,
// with its assigned id, to the working list. Nothing is inserted before the
// gateway confirms.
func (p *Panel) Create(ctx context.Context, input types.ProductInput) (*types.Product, error) {
	created, err := p.gateway.CreateProduct(ctx, input)
	if err != nil {
		if p.logger != nil {
			p.logger.Error(ctx, "creating product", err)
		}
		return nil, err
	}

	p.mu.Lock()
	p.products = append(p.products, *created)
	p.mu.Unlock()
	return created, nil
}

// Update merges the edited fields into the working list before calling the
// gateway. If the gateway fails, the list is re-fetched wholesale instead of
// attempting a targeted rollback; the optimistic edit stays visible until
// the re-fetch lands.
func (p *Panel) Update(ctx context.Context, id int64, input types.ProductInput) error {
	p.mu.Lock()
	found := false
	for i := range p.products {
		if p.products[i].ID == id {
			mergeInput(&p.products[i], input)
			found = true
		}
	}
	p.mu.Unlock()

	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if _, err := p.gateway.UpdateProduct(ctx, id, input); err != nil {
		if p.logger != nil {
			p.logger.Error(ctx, "updating product", err)
		}
		if refreshErr := p.Refresh(ctx); refreshErr != nil && p.logger != nil {
			p.logger.Error(ctx, "re-fetch after failed update", refreshErr)
		}
		return err
	}
	return nil
}

// Delete asks for confirmation, optimistically removes the product, and
// calls the gateway. On gateway failure the exact prior snapshot is
// restored, order and content preserved.
func (p *Panel) Delete(ctx context.Context, id int64, confirm ConfirmFunc) error {
	p.mu.Lock()
	var target *types.Product
	for i := range p.products {
		if p.products[i].ID == id {
			target = &p.products[i]
			break
		}
	}
	if target == nil {
		p.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if confirm != nil && !confirm(*target) {
		p.mu.Unlock()
		return nil
	}

	snapshot := copyProducts(p.products)
	kept := make([]types.Product, 0, len(p.products))
	for _, product := range p.products {
		if product.ID != id {
			kept = append(kept, product)
		}
	}
	p.products = kept
	p.mu.Unlock()

	if err := p.gateway.DeleteProduct(ctx, id); err != nil {
		if p.logger != nil {
			p.logger.Error(ctx, "deleting product", err)
		}
		p.mu.Lock()
		p.products = snapshot
		p.mu.Unlock()
		return err
	}
	return nil
}

func mergeInput(product *types.Product, input types.ProductInput) {
	if input.Name != "" {
		product.Name = input.Name
	}
	if input.Category != "" {
		product.Category = input.Category
	}
	if !input.Price.IsZero() {
		product.Price = input.Price
	}
	if input.ImagePath != "" {
		product.ImagePath = input.ImagePath
	}
}

func copyProducts(products []types.Product) []types.Product {
	out := make([]types.Product, len(products))
	copy(out, products)
	return out
}
