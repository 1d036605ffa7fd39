package workflow

import (
	"context"
	"fmt"

	"github.com/printforge/erp/pkg/domain/entities"
	"github.com/printforge/erp/pkg/domain/repositories"
	"github.com/printforge/erp/pkg/domain/services"
)

// TaskChange describes the outcome of a production task transition
type TaskChange struct {
	Task    *entities.ProductionTask
	Changed bool
}

// TaskMachine advances individual production tasks. A task entering
// Production validates and consumes its own material; it never reaches into
// its parent order — parent promotion is re-evaluated by the caller after
// the task's transaction commits, so the two machines stay decoupled.
type TaskMachine struct {
	store  repositories.Store
	engine *Engine
	policy *services.TransitionPolicy
}

// NewTaskMachine creates a task state machine
func NewTaskMachine(store repositories.Store, engine *Engine, policy *services.TransitionPolicy) *TaskMachine {
	return &TaskMachine{store: store, engine: engine, policy: policy}
}

// Advance moves a task to newState. Failure rolls back only this task's
// transaction; sibling tasks and earlier parent promotions are untouched.
func (m *TaskMachine) Advance(ctx context.Context, id entities.TaskID, newState entities.FulfillmentState) (*TaskChange, error) {
	var change *TaskChange

	err := m.store.WithinTx(ctx, func(tx repositories.Tx) error {
		task, err := tx.Tasks().GetTask(ctx, id)
		if err != nil {
			return err
		}

		if task.State == newState {
			change = &TaskChange{Task: task}
			return nil
		}

		if err := m.policy.Check(task.State, newState); err != nil {
			return fmt.Errorf("task %s: %w", task.ID, err)
		}

		if newState == entities.Production {
			check, err := m.engine.Validate(ctx, tx.Items(), task.MaterialSKU, task.Quantity)
			if err != nil {
				return err
			}
			if !check.Feasible {
				sf := check.Shortfalls[0]
				return fmt.Errorf("task %s: %w", task.ID, &repositories.InsufficientStockError{
					SKU:       sf.SKU,
					Name:      sf.Name,
					Required:  sf.Required,
					Available: sf.Available,
					Unit:      sf.Unit,
				})
			}
			if err := m.engine.Consume(ctx, tx.Items(), task.MaterialSKU, task.Quantity); err != nil {
				return fmt.Errorf("task %s: %w", task.ID, err)
			}
		}

		if err := tx.Tasks().SaveTaskState(ctx, task.ID, newState); err != nil {
			return err
		}
		task.State = newState

		change = &TaskChange{Task: task, Changed: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}
