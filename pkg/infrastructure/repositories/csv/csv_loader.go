package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/printforge/erp/pkg/domain/entities"
)

// Loader handles loading ERP seed data from CSV scenario files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// Scenario holds everything loaded from one scenario directory
type Scenario struct {
	Items   []*entities.Item
	Recipes []*entities.RecipeLine
	Orders  []*entities.SalesOrder
	Tasks   []*entities.ProductionTask
}

// LoadScenario loads items.csv, recipes.csv, orders.csv, order_lines.csv and
// tasks.csv from a scenario directory. recipes.csv and tasks.csv are
// optional.
func (l *Loader) LoadScenario(dir string) (*Scenario, error) {
	items, err := l.LoadItems(filepath.Join(dir, "items.csv"))
	if err != nil {
		return nil, err
	}

	var recipes []*entities.RecipeLine
	recipesPath := filepath.Join(dir, "recipes.csv")
	if _, statErr := os.Stat(recipesPath); statErr == nil {
		recipes, err = l.LoadRecipes(recipesPath)
		if err != nil {
			return nil, err
		}
	}

	orders, err := l.LoadOrders(filepath.Join(dir, "orders.csv"), filepath.Join(dir, "order_lines.csv"))
	if err != nil {
		return nil, err
	}

	var tasks []*entities.ProductionTask
	tasksPath := filepath.Join(dir, "tasks.csv")
	if _, statErr := os.Stat(tasksPath); statErr == nil {
		tasks, err = l.LoadTasks(tasksPath)
		if err != nil {
			return nil, err
		}
	}

	return &Scenario{Items: items, Recipes: recipes, Orders: orders, Tasks: tasks}, nil
}

// LoadItems loads items from a CSV file
func (l *Loader) LoadItems(filename string) ([]*entities.Item, error) {
	records, err := readAll(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read items CSV: %w", err)
	}

	expectedHeader := []string{"sku", "name", "unit", "stock_tracked", "on_hand", "unit_cost"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("items CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var items []*entities.Item
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("items CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		tracked, err := strconv.ParseBool(record[3])
		if err != nil {
			return nil, fmt.Errorf("items CSV row %d: invalid stock_tracked: %w", i+2, err)
		}
		onHand, err := decimal.NewFromString(record[4])
		if err != nil {
			return nil, fmt.Errorf("items CSV row %d: invalid on_hand: %w", i+2, err)
		}
		unitCost, err := decimal.NewFromString(record[5])
		if err != nil {
			return nil, fmt.Errorf("items CSV row %d: invalid unit_cost: %w", i+2, err)
		}

		item, err := entities.NewItem(entities.ItemSKU(record[0]), record[1], record[2], tracked, onHand, unitCost)
		if err != nil {
			return nil, fmt.Errorf("items CSV row %d: %w", i+2, err)
		}
		items = append(items, item)
	}

	return items, nil
}

// LoadRecipes loads recipe lines from a CSV file
func (l *Loader) LoadRecipes(filename string) ([]*entities.RecipeLine, error) {
	records, err := readAll(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes CSV: %w", err)
	}

	expectedHeader := []string{"parent_sku", "ingredient_sku", "qty_per_unit", "unit", "line_number"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("recipes CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var lines []*entities.RecipeLine
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("recipes CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		qtyPer, err := decimal.NewFromString(record[2])
		if err != nil {
			return nil, fmt.Errorf("recipes CSV row %d: invalid qty_per_unit: %w", i+2, err)
		}
		lineNumber, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, fmt.Errorf("recipes CSV row %d: invalid line_number: %w", i+2, err)
		}

		line, err := entities.NewRecipeLine(entities.ItemSKU(record[0]), entities.ItemSKU(record[1]), qtyPer, record[3], lineNumber)
		if err != nil {
			return nil, fmt.Errorf("recipes CSV row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// LoadOrders loads sales orders from an orders CSV and their lines from an
// order lines CSV
func (l *Loader) LoadOrders(ordersFile, linesFile string) ([]*entities.SalesOrder, error) {
	lineRecords, err := readAll(linesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read order lines CSV: %w", err)
	}

	linesHeader := []string{"order_id", "sku", "quantity"}
	if !validateHeader(lineRecords[0], linesHeader) {
		return nil, fmt.Errorf("order lines CSV header mismatch. Expected: %v, Got: %v", linesHeader, lineRecords[0])
	}

	linesByOrder := make(map[entities.OrderID][]entities.OrderLine)
	for i, record := range lineRecords[1:] {
		if len(record) != len(linesHeader) {
			return nil, fmt.Errorf("order lines CSV row %d: expected %d columns, got %d", i+2, len(linesHeader), len(record))
		}
		quantity, err := decimal.NewFromString(record[2])
		if err != nil {
			return nil, fmt.Errorf("order lines CSV row %d: invalid quantity: %w", i+2, err)
		}
		orderID := entities.OrderID(record[0])
		linesByOrder[orderID] = append(linesByOrder[orderID], entities.OrderLine{
			SKU:      entities.ItemSKU(record[1]),
			Quantity: quantity,
		})
	}

	orderRecords, err := readAll(ordersFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read orders CSV: %w", err)
	}

	ordersHeader := []string{"order_id", "order_number", "state"}
	if !validateHeader(orderRecords[0], ordersHeader) {
		return nil, fmt.Errorf("orders CSV header mismatch. Expected: %v, Got: %v", ordersHeader, orderRecords[0])
	}

	var orders []*entities.SalesOrder
	for i, record := range orderRecords[1:] {
		if len(record) != len(ordersHeader) {
			return nil, fmt.Errorf("orders CSV row %d: expected %d columns, got %d", i+2, len(ordersHeader), len(record))
		}
		orderID := entities.OrderID(record[0])
		order, err := entities.NewSalesOrder(orderID, record[1], linesByOrder[orderID])
		if err != nil {
			return nil, fmt.Errorf("orders CSV row %d: %w", i+2, err)
		}
		state, err := entities.ParseFulfillmentState(record[2])
		if err != nil {
			return nil, fmt.Errorf("orders CSV row %d: %w", i+2, err)
		}
		order.State = state
		orders = append(orders, order)
	}

	return orders, nil
}

// LoadTasks loads production tasks from a CSV file
func (l *Loader) LoadTasks(filename string) ([]*entities.ProductionTask, error) {
	records, err := readAll(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks CSV: %w", err)
	}

	expectedHeader := []string{"task_id", "order_id", "material_sku", "quantity", "state"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("tasks CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var tasks []*entities.ProductionTask
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("tasks CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		quantity, err := decimal.NewFromString(record[3])
		if err != nil {
			return nil, fmt.Errorf("tasks CSV row %d: invalid quantity: %w", i+2, err)
		}

		task, err := entities.NewProductionTask(entities.TaskID(record[0]), entities.OrderID(record[1]), entities.ItemSKU(record[2]), quantity)
		if err != nil {
			return nil, fmt.Errorf("tasks CSV row %d: %w", i+2, err)
		}
		state, err := entities.ParseFulfillmentState(record[4])
		if err != nil {
			return nil, fmt.Errorf("tasks CSV row %d: %w", i+2, err)
		}
		task.State = state
		tasks = append(tasks, task)
	}

	return tasks, nil
}

func readAll(filename string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s is empty", filename)
	}
	return records, nil
}

func validateHeader(header, expected []string) bool {
	if len(header) != len(expected) {
		return false
	}
	for i, column := range expected {
		if header[i] != column {
			return false
		}
	}
	return true
}
