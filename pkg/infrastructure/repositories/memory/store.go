package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/printforge/erp/pkg/domain/entities"
	"github.com/printforge/erp/pkg/domain/repositories"
)

// Store provides in-memory transactional storage for items, recipes, orders
// and tasks. A store-wide mutex is held for the duration of each transaction,
// so transactions are serializable: the decrement floor checked inside a
// transaction still holds at commit.
type Store struct {
	mu      sync.Mutex
	items   map[entities.ItemSKU]*entities.Item
	recipes map[entities.ItemSKU][]entities.RecipeLine
	orders  map[entities.OrderID]*entities.SalesOrder
	tasks   map[entities.TaskID]*entities.ProductionTask
	taskSeq []entities.TaskID
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		items:   make(map[entities.ItemSKU]*entities.Item),
		recipes: make(map[entities.ItemSKU][]entities.RecipeLine),
		orders:  make(map[entities.OrderID]*entities.SalesOrder),
		tasks:   make(map[entities.TaskID]*entities.ProductionTask),
	}
}

// Verify interface compliance
var _ repositories.Store = (*Store)(nil)

// AddItem adds an item to the store
func (s *Store) AddItem(item entities.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.SKU] = &item
}

// AddRecipeLine adds a recipe line to the store
func (s *Store) AddRecipeLine(line entities.RecipeLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes[line.ParentSKU] = append(s.recipes[line.ParentSKU], line)
}

// AddOrder adds a sales order to the store
func (s *Store) AddOrder(order entities.SalesOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.Lines = cloneLines(order.Lines)
	s.orders[order.ID] = &order
}

// AddTask adds a production task to the store
func (s *Store) AddTask(task entities.ProductionTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.ID]; !exists {
		s.taskSeq = append(s.taskSeq, task.ID)
	}
	s.tasks[task.ID] = &task
}

// Item returns a copy of the stored item for inspection outside a transaction
func (s *Store) Item(sku entities.ItemSKU) (entities.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.items[sku]
	if !exists {
		return entities.Item{}, false
	}
	return *item, true
}

// Order returns a copy of the stored order for inspection outside a transaction
func (s *Store) Order(id entities.OrderID) (entities.SalesOrder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, exists := s.orders[id]
	if !exists {
		return entities.SalesOrder{}, false
	}
	copied := *order
	copied.Lines = cloneLines(order.Lines)
	return copied, true
}

// Task returns a copy of the stored task for inspection outside a transaction
func (s *Store) Task(id entities.TaskID) (entities.ProductionTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, exists := s.tasks[id]
	if !exists {
		return entities.ProductionTask{}, false
	}
	return *task, true
}

// WithinTx runs fn inside a transaction. Writes are staged on the transaction
// and applied only when fn returns nil; an error discards every staged write.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repositories.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{
		store:       s,
		stockDeltas: make(map[entities.ItemSKU]decimal.Decimal),
		orderStates: make(map[entities.OrderID]entities.FulfillmentState),
		taskStates:  make(map[entities.TaskID]entities.FulfillmentState),
	}

	if err := fn(t); err != nil {
		return err
	}

	t.apply()
	return nil
}

// tx stages writes for one transaction. Reads observe the staged writes so a
// transaction sees its own decrements and state changes.
type tx struct {
	store       *Store
	stockDeltas map[entities.ItemSKU]decimal.Decimal
	orderStates map[entities.OrderID]entities.FulfillmentState
	taskStates  map[entities.TaskID]entities.FulfillmentState
}

func (t *tx) Items() repositories.ItemRepository   { return (*txItems)(t) }
func (t *tx) Orders() repositories.OrderRepository { return (*txOrders)(t) }
func (t *tx) Tasks() repositories.TaskRepository   { return (*txTasks)(t) }

// apply commits the staged writes. The store mutex is already held.
func (t *tx) apply() {
	for sku, delta := range t.stockDeltas {
		item := t.store.items[sku]
		item.OnHand = item.OnHand.Sub(delta)
	}
	for id, state := range t.orderStates {
		t.store.orders[id].State = state
	}
	for id, state := range t.taskStates {
		t.store.tasks[id].State = state
	}
}

type txItems tx

func (t *txItems) GetItem(ctx context.Context, sku entities.ItemSKU) (*entities.Item, error) {
	item, exists := t.store.items[sku]
	if !exists {
		return nil, &repositories.NotFoundError{Kind: "item", ID: string(sku)}
	}
	copied := *item
	if delta, ok := t.stockDeltas[sku]; ok {
		copied.OnHand = copied.OnHand.Sub(delta)
	}
	return &copied, nil
}

func (t *txItems) GetRecipe(ctx context.Context, sku entities.ItemSKU) ([]entities.RecipeLine, error) {
	if _, exists := t.store.items[sku]; !exists {
		return nil, &repositories.NotFoundError{Kind: "item", ID: string(sku)}
	}
	lines := make([]entities.RecipeLine, len(t.store.recipes[sku]))
	copy(lines, t.store.recipes[sku])
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].LineNumber < lines[j].LineNumber
	})
	return lines, nil
}

func (t *txItems) DecrementStock(ctx context.Context, sku entities.ItemSKU, amount decimal.Decimal) error {
	item, exists := t.store.items[sku]
	if !exists {
		return &repositories.NotFoundError{Kind: "item", ID: string(sku)}
	}

	available := item.OnHand.Sub(t.stockDeltas[sku])
	if available.LessThan(amount) {
		return &repositories.InsufficientStockError{
			SKU:       item.SKU,
			Name:      item.Name,
			Required:  amount,
			Available: available,
			Unit:      item.Unit,
		}
	}

	t.stockDeltas[sku] = t.stockDeltas[sku].Add(amount)
	return nil
}

type txOrders tx

func (t *txOrders) GetOrder(ctx context.Context, id entities.OrderID) (*entities.SalesOrder, error) {
	order, exists := t.store.orders[id]
	if !exists {
		return nil, &repositories.NotFoundError{Kind: "order", ID: string(id)}
	}
	copied := *order
	copied.Lines = cloneLines(order.Lines)
	if state, ok := t.orderStates[id]; ok {
		copied.State = state
	}
	return &copied, nil
}

func (t *txOrders) SaveOrderState(ctx context.Context, id entities.OrderID, state entities.FulfillmentState) error {
	if _, exists := t.store.orders[id]; !exists {
		return &repositories.NotFoundError{Kind: "order", ID: string(id)}
	}
	t.orderStates[id] = state
	return nil
}

type txTasks tx

func (t *txTasks) GetTask(ctx context.Context, id entities.TaskID) (*entities.ProductionTask, error) {
	task, exists := t.store.tasks[id]
	if !exists {
		return nil, &repositories.NotFoundError{Kind: "task", ID: string(id)}
	}
	copied := *task
	if state, ok := t.taskStates[id]; ok {
		copied.State = state
	}
	return &copied, nil
}

func (t *txTasks) GetTasksForOrder(ctx context.Context, orderID entities.OrderID) ([]*entities.ProductionTask, error) {
	var tasks []*entities.ProductionTask
	for _, id := range t.store.taskSeq {
		task := t.store.tasks[id]
		if task.OrderID != orderID {
			continue
		}
		copied := *task
		if state, ok := t.taskStates[id]; ok {
			copied.State = state
		}
		tasks = append(tasks, &copied)
	}
	return tasks, nil
}

func (t *txTasks) SaveTaskState(ctx context.Context, id entities.TaskID, state entities.FulfillmentState) error {
	if _, exists := t.store.tasks[id]; !exists {
		return &repositories.NotFoundError{Kind: "task", ID: string(id)}
	}
	t.taskStates[id] = state
	return nil
}

// cloneLines duplicates order lines so callers cannot mutate stored state
func cloneLines(src []entities.OrderLine) []entities.OrderLine {
	out := make([]entities.OrderLine, len(src))
	copy(out, src)
	return out
}
