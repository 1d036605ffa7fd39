package events

import (
	"time"

	"github.com/printforge/erp/pkg/domain/entities"
)

const (
	OrderStateChangedEvent = "order.state.changed"
	TaskStateChangedEvent  = "task.state.changed"
)

// OrderStateChanged is the payload published to the orders topic after a
// sales order's state change commits
type OrderStateChanged struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	NewState    string    `json:"new_state"`
	Timestamp   time.Time `json:"timestamp"`
}

// TaskStateChanged records a committed production task transition
type TaskStateChanged struct {
	TaskID    string    `json:"task_id"`
	OrderID   string    `json:"order_id"`
	NewState  string    `json:"new_state"`
	Timestamp time.Time `json:"timestamp"`
}

func NewOrderStateChanged(order *entities.SalesOrder) OrderStateChanged {
	return OrderStateChanged{
		OrderID:     string(order.ID),
		OrderNumber: order.Number,
		NewState:    order.State.String(),
		Timestamp:   time.Now().UTC(),
	}
}

func NewOrderStateChangedEvent(order *entities.SalesOrder) Event {
	return NewEvent(OrderStateChangedEvent, string(order.ID), NewOrderStateChanged(order))
}

func NewTaskStateChangedEvent(task *entities.ProductionTask) Event {
	return NewEvent(TaskStateChangedEvent, string(task.OrderID), TaskStateChanged{
		TaskID:    string(task.ID),
		OrderID:   string(task.OrderID),
		NewState:  task.State.String(),
		Timestamp: time.Now().UTC(),
	})
}
