package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/printforge/erp/pkg/domain/entities"
)

// ItemRepository provides access to item master data and stock balances
type ItemRepository interface {
	// GetItem returns the item for a SKU
	GetItem(ctx context.Context, sku entities.ItemSKU) (*entities.Item, error)

	// GetRecipe returns the item's ingredient lines ordered by line number.
	// An empty slice means the item is atomic and self-consuming.
	GetRecipe(ctx context.Context, sku entities.ItemSKU) ([]entities.RecipeLine, error)

	// DecrementStock atomically decrements an item's on-hand balance.
	// The decrement is guarded by a non-negative floor: implementations
	// must fail with InsufficientStockError when on-hand < amount, so a
	// racing caller cannot drive stock below zero.
	DecrementStock(ctx context.Context, sku entities.ItemSKU, amount decimal.Decimal) error
}
