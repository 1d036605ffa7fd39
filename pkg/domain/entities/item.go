package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ItemSKU represents a unique item identifier
type ItemSKU string

// Item represents a stocked or service item with its current on-hand balance
type Item struct {
	SKU          ItemSKU
	Name         string
	Unit         string
	StockTracked bool
	OnHand       decimal.Decimal
	UnitCost     decimal.Decimal
}

// NewItem creates a validated Item
func NewItem(sku ItemSKU, name, unit string, stockTracked bool, onHand, unitCost decimal.Decimal) (*Item, error) {
	if string(sku) == "" {
		return nil, fmt.Errorf("item SKU cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("item name cannot be empty")
	}
	if onHand.IsNegative() {
		return nil, fmt.Errorf("on-hand quantity cannot be negative, got %s", onHand)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("unit cost cannot be negative, got %s", unitCost)
	}

	return &Item{
		SKU:          sku,
		Name:         name,
		Unit:         unit,
		StockTracked: stockTracked,
		OnHand:       onHand,
		UnitCost:     unitCost,
	}, nil
}

// RecipeLine represents a single ingredient relationship in an item's recipe
type RecipeLine struct {
	ParentSKU     ItemSKU
	IngredientSKU ItemSKU
	QtyPerUnit    decimal.Decimal
	Unit          string
	LineNumber    int
}

// NewRecipeLine creates a validated RecipeLine
func NewRecipeLine(parent, ingredient ItemSKU, qtyPerUnit decimal.Decimal, unit string, lineNumber int) (*RecipeLine, error) {
	if string(parent) == "" {
		return nil, fmt.Errorf("parent SKU cannot be empty")
	}
	if string(ingredient) == "" {
		return nil, fmt.Errorf("ingredient SKU cannot be empty")
	}
	if parent == ingredient {
		return nil, fmt.Errorf("item %s cannot be its own ingredient", parent)
	}
	if !qtyPerUnit.IsPositive() {
		return nil, fmt.Errorf("quantity per unit must be positive, got %s", qtyPerUnit)
	}

	return &RecipeLine{
		ParentSKU:     parent,
		IngredientSKU: ingredient,
		QtyPerUnit:    qtyPerUnit,
		Unit:          unit,
		LineNumber:    lineNumber,
	}, nil
}
