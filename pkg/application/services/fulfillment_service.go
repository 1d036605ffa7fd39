package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/printforge/erp/pkg/domain/entities"
	"github.com/printforge/erp/pkg/domain/repositories"
	domainservices "github.com/printforge/erp/pkg/domain/services"
	"github.com/printforge/erp/pkg/infrastructure/events"
	"github.com/printforge/erp/pkg/workflow"
)

// ChangeNotifier publishes committed order state changes to interested
// systems. Delivery is at-most-once: a failed publish is logged and never
// rolls back the transition it describes.
type ChangeNotifier interface {
	PublishOrderStateChanged(ctx context.Context, change events.OrderStateChanged) error
}

// JournalPoster records double-entry journal entries for production costing
type JournalPoster interface {
	Post(ctx context.Context, date time.Time, reference, memo string, lines []entities.JournalLine) (*entities.JournalEntry, error)
}

// CostingConfig controls the journal entry posted when an order finishes
// production
type CostingConfig struct {
	Enabled              bool
	WIPAccount           string
	FinishedGoodsAccount string
}

// Config wires a FulfillmentService. Store is required; everything else has
// a working default (permissive policy, no-op logger) or is optional
// (notifier, event store, poster).
type Config struct {
	Store      repositories.Store
	Policy     *domainservices.TransitionPolicy
	Notifier   ChangeNotifier
	EventStore *events.InMemoryEventStore
	Poster     JournalPoster
	Costing    CostingConfig
	Logger     *zap.Logger
}

// FulfillmentService is the entry point for order and task state changes.
// The state machines own the transactional work; this service owns what
// happens after a commit: audit events, change notification, parent order
// re-evaluation after a task transition, and production costing.
type FulfillmentService struct {
	store      repositories.Store
	orders     *workflow.OrderMachine
	tasks      *workflow.TaskMachine
	engine     *workflow.Engine
	notifier   ChangeNotifier
	eventStore *events.InMemoryEventStore
	poster     JournalPoster
	costing    CostingConfig
	logger     *zap.Logger
}

// NewFulfillmentService creates a fulfillment service from cfg
func NewFulfillmentService(cfg Config) *FulfillmentService {
	policy := cfg.Policy
	if policy == nil {
		policy = domainservices.NewPermissivePolicy()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := workflow.NewEngine(workflow.NewResolver())

	return &FulfillmentService{
		store:      cfg.Store,
		orders:     workflow.NewOrderMachine(cfg.Store, engine, policy),
		tasks:      workflow.NewTaskMachine(cfg.Store, engine, policy),
		engine:     engine,
		notifier:   cfg.Notifier,
		eventStore: cfg.EventStore,
		poster:     cfg.Poster,
		costing:    cfg.Costing,
		logger:     logger,
	}
}

// ChangeOrderState moves an order to newState. consumeStock controls whether
// entering Production gates on and consumes ingredient stock. Side effects
// (events, notification, costing) run only after the transition commits.
func (s *FulfillmentService) ChangeOrderState(ctx context.Context, id entities.OrderID, newState entities.FulfillmentState, consumeStock bool) (*workflow.OrderChange, error) {
	change, err := s.orders.ChangeState(ctx, id, newState, consumeStock)
	if err != nil {
		return nil, err
	}
	if !change.Changed {
		return change, nil
	}

	s.afterOrderChange(ctx, change.Order)
	return change, nil
}

// AdvanceTask moves a task to newState, then re-evaluates the parent order:
// once any task of an order is in production, the order itself is promoted to
// Production without consuming stock again. The promotion runs in its own
// transaction after the task's commit.
func (s *FulfillmentService) AdvanceTask(ctx context.Context, id entities.TaskID, newState entities.FulfillmentState) (*workflow.TaskChange, error) {
	change, err := s.tasks.Advance(ctx, id, newState)
	if err != nil {
		return nil, err
	}
	if !change.Changed {
		return change, nil
	}

	if s.eventStore != nil {
		if err := s.eventStore.AppendEvent(string(change.Task.OrderID), events.NewTaskStateChangedEvent(change.Task)); err != nil {
			s.logger.Warn("failed to append task event",
				zap.String("task_id", string(change.Task.ID)),
				zap.Error(err))
		}
	}

	if err := s.reevaluateOrder(ctx, change.Task.OrderID); err != nil {
		// The task's own transition stands; the next task change for this
		// order re-evaluates again.
		s.logger.Warn("parent order re-evaluation failed",
			zap.String("order_id", string(change.Task.OrderID)),
			zap.Error(err))
	}
	return change, nil
}

// ValidateProduction is a read-only pre-flight check of whether quantity
// units of sku can be produced from current stock
func (s *FulfillmentService) ValidateProduction(ctx context.Context, sku entities.ItemSKU, quantity decimal.Decimal) (*workflow.StockCheck, error) {
	var check *workflow.StockCheck
	err := s.store.WithinTx(ctx, func(tx repositories.Tx) error {
		c, err := s.engine.Validate(ctx, tx.Items(), sku, quantity)
		if err != nil {
			return err
		}
		check = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return check, nil
}

// afterOrderChange runs the post-commit side effects for an order transition
func (s *FulfillmentService) afterOrderChange(ctx context.Context, order *entities.SalesOrder) {
	if s.eventStore != nil {
		if err := s.eventStore.AppendEvent(string(order.ID), events.NewOrderStateChangedEvent(order)); err != nil {
			s.logger.Warn("failed to append order event",
				zap.String("order_id", string(order.ID)),
				zap.Error(err))
		}
	}

	if s.notifier != nil {
		if err := s.notifier.PublishOrderStateChanged(ctx, events.NewOrderStateChanged(order)); err != nil {
			s.logger.Warn("order change notification failed",
				zap.String("order_id", string(order.ID)),
				zap.String("new_state", order.State.String()),
				zap.Error(err))
		}
	}

	if s.costing.Enabled && s.poster != nil && order.State == entities.Finished {
		if err := s.postProductionCosting(ctx, order); err != nil {
			s.logger.Warn("production costing entry failed",
				zap.String("order_id", string(order.ID)),
				zap.Error(err))
		}
	}
}

// reevaluateOrder promotes an order to Production once any of its tasks is in
// production. Stock is not consumed again: the tasks' own consumption is
// authoritative for orders driven task by task.
func (s *FulfillmentService) reevaluateOrder(ctx context.Context, id entities.OrderID) error {
	promote := false
	err := s.store.WithinTx(ctx, func(tx repositories.Tx) error {
		order, err := tx.Orders().GetOrder(ctx, id)
		if err != nil {
			return err
		}
		if order.State.InProduction() {
			return nil
		}
		tasks, err := tx.Tasks().GetTasksForOrder(ctx, id)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			if task.State.InProduction() {
				promote = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !promote {
		return nil
	}

	_, err = s.ChangeOrderState(ctx, id, entities.Production, false)
	return err
}

// postProductionCosting moves the order's production cost from work in
// progress to finished goods
func (s *FulfillmentService) postProductionCosting(ctx context.Context, order *entities.SalesOrder) error {
	total := decimal.Zero
	err := s.store.WithinTx(ctx, func(tx repositories.Tx) error {
		for _, line := range order.Lines {
			item, err := tx.Items().GetItem(ctx, line.SKU)
			if err != nil {
				return err
			}
			total = total.Add(item.UnitCost.Mul(line.Quantity))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if total.IsZero() {
		return nil
	}

	lines := []entities.JournalLine{
		{Account: s.costing.FinishedGoodsAccount, Debit: total},
		{Account: s.costing.WIPAccount, Credit: total},
	}
	memo := fmt.Sprintf("production costing for order %s", order.Number)
	_, err = s.poster.Post(ctx, time.Now().UTC(), order.Number, memo, lines)
	return err
}
