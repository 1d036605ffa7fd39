package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/printforge/erp/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		configFile = flag.String("config", "", "Path to YAML configuration file")
		scenario   = flag.String(
			"scenario",
			"",
			"Path to scenario directory containing CSV files",
		)
		orderID     = flag.String("order", "", "Sales order ID to transition")
		taskID      = flag.String("task", "", "Production task ID to advance")
		state       = flag.String("state", "", "Target fulfillment state")
		noConsume   = flag.Bool("no-consume", false, "Skip stock consumption when entering Production")
		validateSKU = flag.String("validate", "", "Item SKU to validate production feasibility for")
		quantity    = flag.String("qty", "", "Quantity for -validate")
		format      = flag.String("format", "text", "Output format: text, json")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
		help        = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	// Create command configuration
	config := commands.Config{
		ConfigFile:  *configFile,
		ScenarioDir: *scenario,
		OrderID:     *orderID,
		TaskID:      *taskID,
		State:       *state,
		NoConsume:   *noConsume,
		ValidateSKU: *validateSKU,
		Quantity:    *quantity,
		Format:      *format,
		Verbose:     *verbose,
		Help:        *help,
	}

	// Create and execute command
	cmd := commands.NewWorkflowCommand(config)
	ctx := context.Background()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
