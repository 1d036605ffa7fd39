package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/printforge/erp/pkg/domain/entities"
	"github.com/printforge/erp/pkg/domain/repositories"
)

func testItem(sku entities.ItemSKU, onHand int64) entities.Item {
	return entities.Item{
		SKU:          sku,
		Name:         string(sku),
		Unit:         "EA",
		StockTracked: true,
		OnHand:       decimal.NewFromInt(onHand),
	}
}

func TestStore_DecrementStock_Floor(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	store.AddItem(testItem("INK", 5))

	err := store.WithinTx(ctx, func(tx repositories.Tx) error {
		return tx.Items().DecrementStock(ctx, "INK", decimal.NewFromInt(6))
	})
	if err == nil {
		t.Fatal("expected floor violation")
	}

	stockErr, ok := repositories.AsInsufficientStock(err)
	if !ok {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if !stockErr.Required.Equal(decimal.NewFromInt(6)) || !stockErr.Available.Equal(decimal.NewFromInt(5)) {
		t.Errorf("unexpected shortfall amounts: required %s, available %s", stockErr.Required, stockErr.Available)
	}

	item, _ := store.Item("INK")
	if !item.OnHand.Equal(decimal.NewFromInt(5)) {
		t.Errorf("stock changed after failed transaction: %s", item.OnHand)
	}
}

func TestStore_RollbackDiscardsStagedWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	store.AddItem(testItem("INK", 10))
	store.AddOrder(entities.SalesOrder{
		ID:     "SO-1",
		Number: "1",
		State:  entities.Draft,
		Lines:  []entities.OrderLine{{SKU: "INK", Quantity: decimal.NewFromInt(1)}},
	})

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx repositories.Tx) error {
		if err := tx.Items().DecrementStock(ctx, "INK", decimal.NewFromInt(4)); err != nil {
			return err
		}
		if err := tx.Orders().SaveOrderState(ctx, "SO-1", entities.Production); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected propagated error, got %v", err)
	}

	item, _ := store.Item("INK")
	if !item.OnHand.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected stock 10 after rollback, got %s", item.OnHand)
	}
	order, _ := store.Order("SO-1")
	if order.State != entities.Draft {
		t.Errorf("expected order still Draft after rollback, got %s", order.State)
	}
}

func TestStore_TxReadsSeeStagedWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	store.AddItem(testItem("INK", 10))

	err := store.WithinTx(ctx, func(tx repositories.Tx) error {
		if err := tx.Items().DecrementStock(ctx, "INK", decimal.NewFromInt(7)); err != nil {
			return err
		}
		item, err := tx.Items().GetItem(ctx, "INK")
		if err != nil {
			return err
		}
		if !item.OnHand.Equal(decimal.NewFromInt(3)) {
			t.Errorf("expected staged balance 3, got %s", item.OnHand)
		}
		// A second decrement beyond the staged balance must fail.
		if err := tx.Items().DecrementStock(ctx, "INK", decimal.NewFromInt(4)); err == nil {
			t.Error("expected floor violation against staged balance")
		}
		return tx.Items().DecrementStock(ctx, "INK", decimal.NewFromInt(3))
	})
	if err != nil {
		t.Fatalf("WithinTx failed: %v", err)
	}

	item, _ := store.Item("INK")
	if !item.OnHand.Equal(decimal.Zero) {
		t.Errorf("expected committed balance 0, got %s", item.OnHand)
	}
}

func TestStore_ConcurrentDecrements_OneLoses(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	store.AddItem(testItem("BLANK-MUG", 10))

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.WithinTx(ctx, func(tx repositories.Tx) error {
				return tx.Items().DecrementStock(ctx, "BLANK-MUG", decimal.NewFromInt(7))
			})
		}()
	}
	wg.Wait()
	close(results)

	var failures int
	for err := range results {
		if err != nil {
			if _, ok := repositories.AsInsufficientStock(err); !ok {
				t.Fatalf("unexpected error type: %v", err)
			}
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("expected exactly one loser, got %d failures", failures)
	}

	item, _ := store.Item("BLANK-MUG")
	if !item.OnHand.Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected final stock 3, got %s", item.OnHand)
	}
	if item.OnHand.IsNegative() {
		t.Error("stock went negative under concurrency")
	}
}

func TestStore_GetRecipe_OrderedByLineNumber(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	store.AddItem(testItem("MUG-A", 0))
	store.AddRecipeLine(entities.RecipeLine{ParentSKU: "MUG-A", IngredientSKU: "INK", QtyPerUnit: decimal.NewFromInt(1), Unit: "ML", LineNumber: 20})
	store.AddRecipeLine(entities.RecipeLine{ParentSKU: "MUG-A", IngredientSKU: "BLANK-MUG", QtyPerUnit: decimal.NewFromInt(2), Unit: "EA", LineNumber: 10})

	err := store.WithinTx(ctx, func(tx repositories.Tx) error {
		lines, err := tx.Items().GetRecipe(ctx, "MUG-A")
		if err != nil {
			return err
		}
		if len(lines) != 2 {
			t.Fatalf("expected 2 recipe lines, got %d", len(lines))
		}
		if lines[0].IngredientSKU != "BLANK-MUG" || lines[1].IngredientSKU != "INK" {
			t.Errorf("recipe lines out of order: %s, %s", lines[0].IngredientSKU, lines[1].IngredientSKU)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx failed: %v", err)
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.WithinTx(ctx, func(tx repositories.Tx) error {
		_, err := tx.Orders().GetOrder(ctx, "SO-MISSING")
		return err
	})
	if !repositories.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
