package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderID represents a unique sales order identifier
type OrderID string

// TaskID represents a unique production task identifier
type TaskID string

// OrderLine represents a single line of a sales order
type OrderLine struct {
	SKU      ItemSKU
	Quantity decimal.Decimal
}

// SalesOrder represents a customer order tracked through fulfillment states.
// Lines keep their entry order; production consumes them in that order.
type SalesOrder struct {
	ID     OrderID
	Number string
	State  FulfillmentState
	Lines  []OrderLine
}

// NewSalesOrder creates a validated SalesOrder in Draft state
func NewSalesOrder(id OrderID, number string, lines []OrderLine) (*SalesOrder, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("order ID cannot be empty")
	}
	if number == "" {
		return nil, fmt.Errorf("order number cannot be empty")
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("order %s must have at least one line", number)
	}
	for i, line := range lines {
		if string(line.SKU) == "" {
			return nil, fmt.Errorf("order %s line %d: SKU cannot be empty", number, i+1)
		}
		if !line.Quantity.IsPositive() {
			return nil, fmt.Errorf("order %s line %d: quantity must be positive, got %s", number, i+1, line.Quantity)
		}
	}

	return &SalesOrder{
		ID:     id,
		Number: number,
		State:  Draft,
		Lines:  lines,
	}, nil
}

// ProductionTask represents a unit of manufacturing work derived from a
// sales order. A task always belongs to exactly one order.
type ProductionTask struct {
	ID          TaskID
	OrderID     OrderID
	MaterialSKU ItemSKU
	Quantity    decimal.Decimal
	State       FulfillmentState
}

// NewProductionTask creates a validated ProductionTask in Pending state
func NewProductionTask(id TaskID, orderID OrderID, material ItemSKU, quantity decimal.Decimal) (*ProductionTask, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}
	if string(orderID) == "" {
		return nil, fmt.Errorf("task %s must belong to an order", id)
	}
	if string(material) == "" {
		return nil, fmt.Errorf("task %s: material SKU cannot be empty", id)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("task %s: quantity must be positive, got %s", id, quantity)
	}

	return &ProductionTask{
		ID:          id,
		OrderID:     orderID,
		MaterialSKU: material,
		Quantity:    quantity,
		State:       Pending,
	}, nil
}
