package workflow

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/printforge/erp/pkg/domain/entities"
	"github.com/printforge/erp/pkg/domain/repositories"
)

// Shortfall records one ingredient whose available balance cannot cover the
// required amount
type Shortfall struct {
	SKU       entities.ItemSKU
	Name      string
	Required  decimal.Decimal
	Available decimal.Decimal
	Unit      string
}

// StockCheck is the result of validating a production quantity against
// current stock
type StockCheck struct {
	Feasible   bool
	Shortfalls []Shortfall
}

// requirement is one per-ingredient demand derived from a recipe
type requirement struct {
	sku    entities.ItemSKU
	amount decimal.Decimal
}

// Engine validates and consumes ingredient stock for a requested production
// quantity of an item. Consume re-derives the same requirements as Validate
// and re-checks every balance at the moment of decrement; the two calls are
// intentionally independent.
type Engine struct {
	resolver *Resolver
}

// NewEngine creates a consumption engine backed by the given resolver
func NewEngine(resolver *Resolver) *Engine {
	return &Engine{resolver: resolver}
}

// requirements derives the per-ingredient amounts needed to produce quantity
// units of sku. A recipeless stock-tracked item requires quantity of itself;
// a recipeless service item requires nothing.
func (e *Engine) requirements(ctx context.Context, items repositories.ItemRepository, sku entities.ItemSKU, quantity decimal.Decimal) ([]requirement, error) {
	lines, err := e.resolver.Resolve(ctx, items, sku)
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		item, err := items.GetItem(ctx, sku)
		if err != nil {
			return nil, fmt.Errorf("failed to load item %s: %w", sku, err)
		}
		if !item.StockTracked {
			return nil, nil
		}
		return []requirement{{sku: sku, amount: quantity}}, nil
	}

	reqs := make([]requirement, 0, len(lines))
	for _, line := range lines {
		reqs = append(reqs, requirement{
			sku:    line.IngredientSKU,
			amount: line.QtyPerUnit.Mul(quantity),
		})
	}
	return reqs, nil
}

// Validate checks whether quantity units of sku can be produced from current
// stock. It never mutates anything and may be called for pre-flight UI
// checks; a later Consume re-checks independently.
func (e *Engine) Validate(ctx context.Context, items repositories.ItemRepository, sku entities.ItemSKU, quantity decimal.Decimal) (*StockCheck, error) {
	reqs, err := e.requirements(ctx, items, sku, quantity)
	if err != nil {
		return nil, err
	}

	check := &StockCheck{Feasible: true}
	for _, req := range reqs {
		item, err := items.GetItem(ctx, req.sku)
		if err != nil {
			return nil, fmt.Errorf("failed to load ingredient %s: %w", req.sku, err)
		}
		if item.OnHand.LessThan(req.amount) {
			check.Feasible = false
			check.Shortfalls = append(check.Shortfalls, Shortfall{
				SKU:       item.SKU,
				Name:      item.Name,
				Required:  req.amount,
				Available: item.OnHand,
				Unit:      item.Unit,
			})
		}
	}
	return check, nil
}

// Consume decrements stock for quantity units of sku: each recipe ingredient
// by qtyPerUnit x quantity, or the item itself by quantity when recipeless.
// Every decrement is floor-guarded by the repository, so the whole call
// fails with an InsufficientStockError if any balance is short at the moment
// of decrement.
func (e *Engine) Consume(ctx context.Context, items repositories.ItemRepository, sku entities.ItemSKU, quantity decimal.Decimal) error {
	reqs, err := e.requirements(ctx, items, sku, quantity)
	if err != nil {
		return err
	}

	for _, req := range reqs {
		if err := items.DecrementStock(ctx, req.sku, req.amount); err != nil {
			return err
		}
	}
	return nil
}
