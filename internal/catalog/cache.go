package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kadapaimran/grocery-storefront/pkg/db"
	"github.com/kadapaimran/grocery-storefront/pkg/types"
)

type cachedProduct struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Category  string `gorm:"index"`
	Price     string `gorm:"not null"`
	ImagePath string
}

func (cachedProduct) TableName() string { return "cached_products" }

// Cache keeps the last successfully fetched catalog in a local SQLite table
// so browsing keeps working while the gateway is down.
type Cache struct {
	client *db.Client
}

// NewCache migrates the cache table and returns the cache.
func NewCache(client *db.Client) (*Cache, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if err := client.DB().AutoMigrate(&cachedProduct{}); err != nil {
		return nil, fmt.Errorf("migrating catalog cache: %w", err)
	}
	return &Cache{client: client}, nil
}

// ReplaceAll swaps the whole cached catalog for the given products.
func (c *Cache) ReplaceAll(ctx context.Context, products []types.Product) error {
	return c.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&cachedProduct{}).Error; err != nil {
			return err
		}
		return insertProducts(tx, products)
	})
}

// ReplaceCategory swaps the cached rows for one category.
func (c *Cache) ReplaceCategory(ctx context.Context, category string, products []types.Product) error {
	return c.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("category = ?", category).Delete(&cachedProduct{}).Error; err != nil {
			return err
		}
		return insertProducts(tx, products)
	})
}

// List returns every cached product.
func (c *Cache) List(ctx context.Context) ([]types.Product, error) {
	var rows []cachedProduct
	if err := c.client.DB().WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows)
}

// ListByCategory returns the cached products in one category.
func (c *Cache) ListByCategory(ctx context.Context, category string) ([]types.Product, error) {
	var rows []cachedProduct
	if err := c.client.DB().WithContext(ctx).Where("category = ?", category).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows)
}

func insertProducts(tx *gorm.DB, products []types.Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]cachedProduct, 0, len(products))
	for _, p := range products {
		rows = append(rows, cachedProduct{
			ID:        p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Price:     p.Price.String(),
			ImagePath: p.ImagePath,
		})
	}
	return tx.Create(&rows).Error
}

func toProducts(rows []cachedProduct) ([]types.Product, error) {
	out := make([]types.Product, 0, len(rows))
	for _, row := range rows {
		price, err := decimal.NewFromString(row.Price)
		if err != nil {
			return nil, fmt.Errorf("corrupt cached price for product %d: %w", row.ID, err)
		}
		out = append(out, types.Product{
			ID:        row.ID,
			Name:      row.Name,
			Category:  row.Category,
			Price:     price,
			ImagePath: row.ImagePath,
		})
	}
	return out, nil
}
