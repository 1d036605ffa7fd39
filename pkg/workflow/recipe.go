package workflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/printforge/erp/pkg/domain/entities"
	"github.com/printforge/erp/pkg/domain/repositories"
)

// Resolver resolves an item's recipe: the ordered list of ingredient lines
// required to produce one unit. An empty result means the item is atomic and
// consumes its own stock.
type Resolver struct{}

// NewResolver creates a new recipe resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the recipe lines for a SKU ordered by line number
func (r *Resolver) Resolve(ctx context.Context, items repositories.ItemRepository, sku entities.ItemSKU) ([]entities.RecipeLine, error) {
	lines, err := items.GetRecipe(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipe for %s: %w", sku, err)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].LineNumber < lines[j].LineNumber
	})

	return lines, nil
}
