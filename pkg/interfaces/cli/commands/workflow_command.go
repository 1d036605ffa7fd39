package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appservices "github.com/printforge/erp/pkg/application/services"
	"github.com/printforge/erp/pkg/domain/entities"
	"github.com/printforge/erp/pkg/infrastructure/config"
	"github.com/printforge/erp/pkg/infrastructure/events"
	"github.com/printforge/erp/pkg/infrastructure/ledger"
	"github.com/printforge/erp/pkg/infrastructure/repositories/csv"
	"github.com/printforge/erp/pkg/infrastructure/repositories/memory"
	"github.com/printforge/erp/pkg/interfaces/cli/output"
)

// Config holds configuration for the workflow command
type Config struct {
	ConfigFile  string
	ScenarioDir string
	OrderID     string
	TaskID      string
	State       string
	NoConsume   bool
	ValidateSKU string
	Quantity    string
	Format      string
	Verbose     bool
	Help        bool
}

// WorkflowCommand runs one fulfillment operation against a CSV scenario:
// an order state change, a task advance, or a stock validation.
type WorkflowCommand struct {
	config Config
}

// NewWorkflowCommand creates a new workflow command with the given configuration
func NewWorkflowCommand(config Config) *WorkflowCommand {
	return &WorkflowCommand{config: config}
}

// Execute runs the workflow command
func (c *WorkflowCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return err
	}
	if c.config.ScenarioDir != "" {
		cfg.Scenario.Dir = c.config.ScenarioDir
	}
	if cfg.Scenario.Dir == "" {
		return fmt.Errorf("must specify a scenario directory (-scenario or scenario.dir)")
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if c.config.Verbose {
		fmt.Println("📂 Loading scenario data...")
	}

	scenario, err := csv.NewLoader().LoadScenario(cfg.Scenario.Dir)
	if err != nil {
		return fmt.Errorf("error loading scenario: %w", err)
	}

	store := memory.NewStore()
	for _, item := range scenario.Items {
		store.AddItem(*item)
	}
	for _, line := range scenario.Recipes {
		store.AddRecipeLine(*line)
	}
	for _, order := range scenario.Orders {
		store.AddOrder(*order)
	}
	for _, task := range scenario.Tasks {
		store.AddTask(*task)
	}

	if c.config.Verbose {
		fmt.Printf("✅ Scenario loaded: %d items, %d recipe lines, %d orders, %d tasks\n\n",
			len(scenario.Items), len(scenario.Recipes), len(scenario.Orders), len(scenario.Tasks))
	}

	var notifier appservices.ChangeNotifier
	if cfg.Kafka.Broker != "" {
		kafkaNotifier := events.NewKafkaNotifier(cfg.Kafka.Broker, cfg.Kafka.Topic, logger)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
	} else {
		notifier = events.NewLoggingNotifier(logger)
	}

	svc := appservices.NewFulfillmentService(appservices.Config{
		Store:      store,
		Notifier:   notifier,
		EventStore: events.NewInMemoryEventStore(),
		Poster:     ledger.NewPoster(),
		Costing: appservices.CostingConfig{
			Enabled:              cfg.Costing.Enabled,
			WIPAccount:           cfg.Costing.WIPAccount,
			FinishedGoodsAccount: cfg.Costing.FinishedGoodsAccount,
		},
		Logger: logger,
	})

	startTime := time.Now()
	result, err := c.run(ctx, svc)
	elapsed := time.Since(startTime)
	if err != nil {
		return err
	}

	return output.Generate(result, output.Config{
		Format:  c.config.Format,
		Verbose: c.config.Verbose,
		Elapsed: elapsed,
	})
}

// run dispatches to the requested operation
func (c *WorkflowCommand) run(ctx context.Context, svc *appservices.FulfillmentService) (*output.Result, error) {
	switch {
	case c.config.OrderID != "":
		state, err := entities.ParseFulfillmentState(c.config.State)
		if err != nil {
			return nil, err
		}
		change, err := svc.ChangeOrderState(ctx, entities.OrderID(c.config.OrderID), state, !c.config.NoConsume)
		if err != nil {
			return nil, fmt.Errorf("error changing order state: %w", err)
		}
		return &output.Result{Operation: "ORDER STATE CHANGE", Order: change}, nil

	case c.config.TaskID != "":
		state, err := entities.ParseFulfillmentState(c.config.State)
		if err != nil {
			return nil, err
		}
		change, err := svc.AdvanceTask(ctx, entities.TaskID(c.config.TaskID), state)
		if err != nil {
			return nil, fmt.Errorf("error advancing task: %w", err)
		}
		return &output.Result{Operation: "TASK ADVANCE", Task: change}, nil

	default:
		quantity, err := decimal.NewFromString(c.config.Quantity)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q: %w", c.config.Quantity, err)
		}
		check, err := svc.ValidateProduction(ctx, entities.ItemSKU(c.config.ValidateSKU), quantity)
		if err != nil {
			return nil, fmt.Errorf("error validating stock: %w", err)
		}
		return &output.Result{Operation: "STOCK VALIDATION", Check: check}, nil
	}
}

// validateInputs validates the command configuration
func (c *WorkflowCommand) validateInputs() error {
	operations := 0
	if c.config.OrderID != "" {
		operations++
	}
	if c.config.TaskID != "" {
		operations++
	}
	if c.config.ValidateSKU != "" {
		operations++
	}
	if operations != 1 {
		return fmt.Errorf("must specify exactly one of -order, -task or -validate")
	}
	if (c.config.OrderID != "" || c.config.TaskID != "") && c.config.State == "" {
		return fmt.Errorf("-state is required with -order and -task")
	}
	if c.config.ValidateSKU != "" && c.config.Quantity == "" {
		return fmt.Errorf("-qty is required with -validate")
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	return zapConfig.Build()
}

// showHelp displays the help message
func (c *WorkflowCommand) showHelp() {
	fmt.Printf(`ERP Fulfillment CLI - Production Order Workflow for Print Manufacturing

USAGE:
    erp -scenario <dir> -order <id> -state <state>     # Change an order's state
    erp -scenario <dir> -task <id> -state <state>      # Advance a production task
    erp -scenario <dir> -validate <sku> -qty <n>       # Pre-flight stock check

OPTIONS:
    -config <file>      Path to YAML configuration file
    -scenario <dir>     Path to scenario directory containing CSV files
    -order <id>         Sales order to transition
    -task <id>          Production task to advance
    -state <state>      Target fulfillment state
    -no-consume         Skip stock consumption when entering Production
    -validate <sku>     Item to validate production feasibility for
    -qty <n>            Quantity for -validate
    -format <fmt>       Output format: text, json (default: text)
    -verbose            Enable verbose output
    -help               Show this help message

STATES:
    Draft, Confirmed, Invoiced, Pending, Design, Nesting, Production,
    Finished, Delivered, Cancelled

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── items.csv        # Item master data with on-hand stock
    ├── recipes.csv      # Ingredient recipes (optional)
    ├── orders.csv       # Sales orders
    ├── order_lines.csv  # Sales order lines
    └── tasks.csv        # Production tasks (optional)

CSV FILE FORMATS:

items.csv:
    sku,name,unit,stock_tracked,on_hand,unit_cost
    MUG-A,Printed Mug,EA,true,100,4.50

recipes.csv:
    parent_sku,ingredient_sku,qty_per_unit,unit,line_number
    MUG-A,BLANK-MUG,1,EA,10

orders.csv:
    order_id,order_number,state
    SO-100,100,Pending

order_lines.csv:
    order_id,sku,quantity
    SO-100,MUG-A,10

tasks.csv:
    task_id,order_id,material_sku,quantity,state
    PT-1,SO-100,MUG-A,6,Pending

EXAMPLES:
    # Move an order into production, consuming ingredient stock
    erp -scenario examples/print_shop -order SO-100 -state Production

    # Advance one task; the parent order is promoted automatically
    erp -scenario examples/print_shop -task PT-1 -state Production

    # Check feasibility without consuming anything
    erp -scenario examples/print_shop -validate MUG-A -qty 25

    # Publish state changes to Kafka
    ERP_KAFKA_BROKER=localhost:9092 erp -scenario examples/print_shop \
        -order SO-100 -state Production
`)
}
