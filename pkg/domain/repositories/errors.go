package repositories

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/printforge/erp/pkg/domain/entities"
)

// InsufficientStockError reports a stock decrement that would drive an
// item's on-hand balance below zero. It names the offending item, the
// required amount and the balance that was actually available.
type InsufficientStockError struct {
	SKU       entities.ItemSKU
	Name      string
	Required  decimal.Decimal
	Available decimal.Decimal
	Unit      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock of %s: required %s %s, available %s %s",
		e.Name, e.Required, e.Unit, e.Available, e.Unit)
}

// AsInsufficientStock unwraps err into an InsufficientStockError if one is
// present anywhere in the chain.
func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var target *InsufficientStockError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// NotFoundError reports a missing order, task or item
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IsNotFound reports whether err carries a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
