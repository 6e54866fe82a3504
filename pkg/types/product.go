package types

import "github.com/shopspring/decimal"

func init() {
	// The product gateway speaks bare JSON numbers for prices.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is the catalog record served by the remote product gateway.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	ImagePath string          `json:"imagePath,omitempty"`
}

// ProductInput is the payload for create/update calls against the gateway.
type ProductInput struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	ImagePath string          `json:"imagePath,omitempty"`
}
