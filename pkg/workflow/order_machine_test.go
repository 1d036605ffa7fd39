package workflow

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/printforge/erp/pkg/domain/entities"
	"github.com/printforge/erp/pkg/domain/repositories"
	"github.com/printforge/erp/pkg/domain/services"
	"github.com/printforge/erp/pkg/infrastructure/repositories/memory"
)

func newOrderMachine(store *memory.Store) *OrderMachine {
	return NewOrderMachine(store, NewEngine(NewResolver()), services.NewPermissivePolicy())
}

func addOrder(store *memory.Store, id entities.OrderID, state entities.FulfillmentState, lines ...entities.OrderLine) {
	store.AddOrder(entities.SalesOrder{
		ID:     id,
		Number: string(id),
		State:  state,
		Lines:  lines,
	})
}

func line(sku entities.ItemSKU, qty int64) entities.OrderLine {
	return entities.OrderLine{SKU: sku, Quantity: decimal.NewFromInt(qty)}
}

// Scenario: recipeless stock-tracked item, stock 100, order quantity 10.
func TestOrderMachine_ProductionConsumesRecipelessItem(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	addItem(store, "MUG-A", 100, true)
	addOrder(store, "SO-1", entities.Pending, line("MUG-A", 10))

	machine := newOrderMachine(store)

	change, err := machine.ChangeState(ctx, "SO-1", entities.Production, true)
	if err != nil {
		t.Fatalf("ChangeState failed: %v", err)
	}
	if !change.Changed {
		t.Fatal("expected a state change")
	}

	item, _ := store.Item("MUG-A")
	if !item.OnHand.Equal(decimal.NewFromInt(90)) {
		t.Errorf("expected MUG-A stock 90, got %s", item.OnHand)
	}
	order, _ := store.Order("SO-1")
	if order.State != entities.Production {
		t.Errorf("expected order in Production, got %s", order.State)
	}
}

// Scenario: recipe 2x BLANK-MUG + 1x INK per unit, only 5 blanks for a
// 3-unit order needing 6. Nothing may change.
func TestOrderMachine_InsufficientIngredientAbortsWholeOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	addItem(store, "MUG-A", 0, true)
	addItem(store, "BLANK-MUG", 5, true)
	addItem(store, "INK", 100, true)
	addRecipeLine(store, "MUG-A", "BLANK-MUG", 2, 10)
	addRecipeLine(store, "MUG-A", "INK", 1, 20)
	addOrder(store, "SO-2", entities.Pending, line("MUG-A", 3))

	machine := newOrderMachine(store)

	_, err := machine.ChangeState(ctx, "SO-2", entities.Production, true)
	if err == nil {
		t.Fatal("expected InsufficientStock error")
	}
	stockErr, ok := repositories.AsInsufficientStock(err)
	if !ok {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.SKU != "BLANK-MUG" {
		t.Errorf("expected shortfall on BLANK-MUG, got %s", stockErr.SKU)
	}
	if !stockErr.Required.Equal(decimal.NewFromInt(6)) || !stockErr.Available.Equal(decimal.NewFromInt(5)) {
		t.Errorf("unexpected shortfall amounts: required %s, available %s", stockErr.Required, stockErr.Available)
	}

	blank, _ := store.Item("BLANK-MUG")
	ink, _ := store.Item("INK")
	if !blank.OnHand.Equal(decimal.NewFromInt(5)) || !ink.OnHand.Equal(decimal.NewFromInt(100)) {
		t.Errorf("stocks changed after failed transition: blank %s, ink %s", blank.OnHand, ink.OnHand)
	}
	order, _ := store.Order("SO-2")
	if order.State != entities.Pending {
		t.Errorf("expected order unchanged in Pending, got %s", order.State)
	}
}

func TestOrderMachine_MultiLineAtomicity(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	addItem(store, "MUG-A", 50, true)
	addItem(store, "POSTER-B", 2, true)
	addOrder(store, "SO-3", entities.Pending, line("MUG-A", 10), line("POSTER-B", 5))

	machine := newOrderMachine(store)

	if _, err := machine.ChangeState(ctx, "SO-3", entities.Production, true); err == nil {
		t.Fatal("expected failure on second line")
	}

	// Snapshot comparison: the feasible first line must not have consumed.
	mug, _ := store.Item("MUG-A")
	if !mug.OnHand.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected MUG-A stock unchanged at 50, got %s", mug.OnHand)
	}
	poster, _ := store.Item("POSTER-B")
	if !poster.OnHand.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected POSTER-B stock unchanged at 2, got %s", poster.OnHand)
	}
}

func TestOrderMachine_SameStateIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	addItem(store, "MUG-A", 100, true)
	addOrder(store, "SO-4", entities.Production, line("MUG-A", 10))

	machine := newOrderMachine(store)

	change, err := machine.ChangeState(ctx, "SO-4", entities.Production, true)
	if err != nil {
		t.Fatalf("ChangeState failed: %v", err)
	}
	if change.Changed {
		t.Error("expected no-op for same-state transition")
	}

	item, _ := store.Item("MUG-A")
	if !item.OnHand.Equal(decimal.NewFromInt(100)) {
		t.Errorf("no-op transition consumed stock: %s", item.OnHand)
	}
}

func TestOrderMachine_CascadeDownPromotesTasks(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	addItem(store, "MUG-A", 100, true)
	addOrder(store, "SO-5", entities.Pending, line("MUG-A", 10))
	store.AddTask(entities.ProductionTask{ID: "PT-1", OrderID: "SO-5", MaterialSKU: "MUG-A", Quantity: decimal.NewFromInt(4), State: entities.Pending})
	store.AddTask(entities.ProductionTask{ID: "PT-2", OrderID: "SO-5", MaterialSKU: "MUG-A", Quantity: decimal.NewFromInt(6), State: entities.Finished})
	store.AddTask(entities.ProductionTask{ID: "PT-OTHER", OrderID: "SO-OTHER", MaterialSKU: "MUG-A", Quantity: decimal.NewFromInt(1), State: entities.Pending})

	machine := newOrderMachine(store)

	change, err := machine.ChangeState(ctx, "SO-5", entities.Production, true)
	if err != nil {
		t.Fatalf("ChangeState failed: %v", err)
	}
	if len(change.PromotedTasks) != 1 || change.PromotedTasks[0] != "PT-1" {
		t.Errorf("expected only PT-1 promoted, got %v", change.PromotedTasks)
	}

	pt1, _ := store.Task("PT-1")
	if pt1.State != entities.Production {
		t.Errorf("expected PT-1 forced to Production, got %s", pt1.State)
	}
	pt2, _ := store.Task("PT-2")
	if pt2.State != entities.Finished {
		t.Errorf("expected Finished PT-2 untouched, got %s", pt2.State)
	}
	other, _ := store.Task("PT-OTHER")
	if other.State != entities.Pending {
		t.Errorf("task of another order was touched: %s", other.State)
	}

	// Cascade must not consume per-task: only the order lines consumed.
	item, _ := store.Item("MUG-A")
	if !item.OnHand.Equal(decimal.NewFromInt(90)) {
		t.Errorf("expected stock 90 after order-level consumption only, got %s", item.OnHand)
	}
}

func TestOrderMachine_ConsumeStockFalseSkipsConsumption(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	addItem(store, "MUG-A", 1, true)
	addOrder(store, "SO-6", entities.Pending, line("MUG-A", 10))

	machine := newOrderMachine(store)

	// Quantity exceeds stock, but consumeStock=false skips the gate.
	change, err := machine.ChangeState(ctx, "SO-6", entities.Production, false)
	if err != nil {
		t.Fatalf("ChangeState failed: %v", err)
	}
	if !change.Changed {
		t.Fatal("expected a state change")
	}

	item, _ := store.Item("MUG-A")
	if !item.OnHand.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected stock untouched, got %s", item.OnHand)
	}
}

func TestOrderMachine_NonProductionTransitionLeavesStockAlone(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	addItem(store, "MUG-A", 100, true)
	addOrder(store, "SO-7", entities.Draft, line("MUG-A", 10))

	machine := newOrderMachine(store)

	change, err := machine.ChangeState(ctx, "SO-7", entities.Confirmed, true)
	if err != nil {
		t.Fatalf("ChangeState failed: %v", err)
	}
	if !change.Changed {
		t.Fatal("expected a state change")
	}

	item, _ := store.Item("MUG-A")
	if !item.OnHand.Equal(decimal.NewFromInt(100)) {
		t.Errorf("non-production transition consumed stock: %s", item.OnHand)
	}
	order, _ := store.Order("SO-7")
	if order.State != entities.Confirmed {
		t.Errorf("expected Confirmed, got %s", order.State)
	}
}

func TestOrderMachine_StrictPolicyRejectsBackwardJump(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	addItem(store, "MUG-A", 100, true)
	addOrder(store, "SO-8", entities.Finished, line("MUG-A", 10))

	machine := NewOrderMachine(store, NewEngine(NewResolver()), services.NewStrictPolicy())

	if _, err := machine.ChangeState(ctx, "SO-8", entities.Draft, true); err == nil {
		t.Fatal("expected strict policy to reject Finished -> Draft")
	}
	order, _ := store.Order("SO-8")
	if order.State != entities.Finished {
		t.Errorf("expected order unchanged, got %s", order.State)
	}
}
