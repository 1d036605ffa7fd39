package workflow

import (
	"context"
	"fmt"

	"github.com/printforge/erp/pkg/domain/entities"
	"github.com/printforge/erp/pkg/domain/repositories"
	"github.com/printforge/erp/pkg/domain/services"
)

// OrderChange describes the outcome of a sales order state transition.
// Changed is false when the requested state equals the current state; the
// call is then a no-op with no writes.
type OrderChange struct {
	Order         *entities.SalesOrder
	Changed       bool
	PromotedTasks []entities.TaskID
}

// OrderMachine advances sales orders between fulfillment states. Entering
// Production with consumeStock gates on ingredient availability and consumes
// stock for every order line inside the same transaction; children not yet
// in production are promoted with it.
type OrderMachine struct {
	store  repositories.Store
	engine *Engine
	policy *services.TransitionPolicy
}

// NewOrderMachine creates an order state machine
func NewOrderMachine(store repositories.Store, engine *Engine, policy *services.TransitionPolicy) *OrderMachine {
	return &OrderMachine{store: store, engine: engine, policy: policy}
}

// ChangeState moves an order to newState. The validate, consume, persist and
// cascade steps share one transaction: any failure rolls back every staged
// write, including partial stock decrements, and the order is untouched.
func (m *OrderMachine) ChangeState(ctx context.Context, id entities.OrderID, newState entities.FulfillmentState, consumeStock bool) (*OrderChange, error) {
	var change *OrderChange

	err := m.store.WithinTx(ctx, func(tx repositories.Tx) error {
		order, err := tx.Orders().GetOrder(ctx, id)
		if err != nil {
			return err
		}

		if order.State == newState {
			change = &OrderChange{Order: order}
			return nil
		}

		if err := m.policy.Check(order.State, newState); err != nil {
			return fmt.Errorf("order %s: %w", order.Number, err)
		}

		if newState == entities.Production && consumeStock {
			for _, line := range order.Lines {
				check, err := m.engine.Validate(ctx, tx.Items(), line.SKU, line.Quantity)
				if err != nil {
					return err
				}
				if !check.Feasible {
					sf := check.Shortfalls[0]
					return fmt.Errorf("order %s line %s: %w", order.Number, line.SKU, &repositories.InsufficientStockError{
						SKU:       sf.SKU,
						Name:      sf.Name,
						Required:  sf.Required,
						Available: sf.Available,
						Unit:      sf.Unit,
					})
				}
			}
			for _, line := range order.Lines {
				if err := m.engine.Consume(ctx, tx.Items(), line.SKU, line.Quantity); err != nil {
					return fmt.Errorf("order %s line %s: %w", order.Number, line.SKU, err)
				}
			}
		}

		if err := tx.Orders().SaveOrderState(ctx, order.ID, newState); err != nil {
			return err
		}
		order.State = newState

		// The order-level consumption above is authoritative for the whole
		// order, so promoted tasks never validate or consume again.
		var promoted []entities.TaskID
		if newState == entities.Production {
			tasks, err := tx.Tasks().GetTasksForOrder(ctx, order.ID)
			if err != nil {
				return err
			}
			for _, task := range tasks {
				if task.State.InProduction() {
					continue
				}
				if err := tx.Tasks().SaveTaskState(ctx, task.ID, entities.Production); err != nil {
					return err
				}
				promoted = append(promoted, task.ID)
			}
		}

		change = &OrderChange{Order: order, Changed: true, PromotedTasks: promoted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}
