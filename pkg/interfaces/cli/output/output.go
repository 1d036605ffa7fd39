package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/printforge/erp/pkg/workflow"
)

// Config holds output generation options
type Config struct {
	Format  string
	Verbose bool
	Elapsed time.Duration
}

// Result is the outcome of one CLI operation
type Result struct {
	Operation string
	Order     *workflow.OrderChange
	Task      *workflow.TaskChange
	Check     *workflow.StockCheck
}

// Generate writes the result to stdout in the configured format
func Generate(result *Result, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func generateTextOutput(result *Result, config Config) error {
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("                    %s\n", result.Operation)
	fmt.Println("═══════════════════════════════════════════════════════════════")

	switch {
	case result.Order != nil:
		order := result.Order.Order
		fmt.Printf("Order:  %s (#%s)\n", order.ID, order.Number)
		fmt.Printf("State:  %s\n", order.State)
		if !result.Order.Changed {
			fmt.Println("Result: no change (already in requested state)")
		}
		if len(result.Order.PromotedTasks) > 0 {
			fmt.Println("Promoted tasks:")
			for _, id := range result.Order.PromotedTasks {
				fmt.Printf("  %s\n", id)
			}
		}
	case result.Task != nil:
		task := result.Task.Task
		fmt.Printf("Task:   %s (order %s)\n", task.ID, task.OrderID)
		fmt.Printf("State:  %s\n", task.State)
		if !result.Task.Changed {
			fmt.Println("Result: no change (already in requested state)")
		}
	case result.Check != nil:
		if result.Check.Feasible {
			fmt.Println("✅ Stock is sufficient")
		} else {
			fmt.Println("🚨 Stock shortfalls:")
			for _, sf := range result.Check.Shortfalls {
				fmt.Printf("  %-20s required %8s %s, available %8s %s\n",
					sf.SKU, sf.Required, sf.Unit, sf.Available, sf.Unit)
			}
		}
	}

	if config.Verbose {
		fmt.Printf("\nCompleted in %v\n", config.Elapsed)
	}
	fmt.Println("═══════════════════════════════════════════════════════════════")
	return nil
}

func generateJSONOutput(result *Result, config Config) error {
	jsonResult := struct {
		Operation string               `json:"operation"`
		ElapsedMS int64                `json:"elapsed_ms"`
		Order     *workflow.OrderChange `json:"order,omitempty"`
		Task      *workflow.TaskChange  `json:"task,omitempty"`
		Check     *workflow.StockCheck  `json:"check,omitempty"`
	}{
		Operation: result.Operation,
		ElapsedMS: config.Elapsed.Milliseconds(),
		Order:     result.Order,
		Task:      result.Task,
		Check:     result.Check,
	}

	jsonBytes, err := json.MarshalIndent(jsonResult, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Printf("%s\n", jsonBytes)
	return nil
}
