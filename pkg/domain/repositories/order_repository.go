package repositories

import (
	"context"

	"github.com/printforge/erp/pkg/domain/entities"
)

// OrderRepository provides access to sales orders
type OrderRepository interface {
	GetOrder(ctx context.Context, id entities.OrderID) (*entities.SalesOrder, error)
	SaveOrderState(ctx context.Context, id entities.OrderID, state entities.FulfillmentState) error
}

// TaskRepository provides access to production tasks
type TaskRepository interface {
	GetTask(ctx context.Context, id entities.TaskID) (*entities.ProductionTask, error)
	GetTasksForOrder(ctx context.Context, orderID entities.OrderID) ([]*entities.ProductionTask, error)
	SaveTaskState(ctx context.Context, id entities.TaskID, state entities.FulfillmentState) error
}
