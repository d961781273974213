package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vsinha/requisition/pkg/application/dto"
	"github.com/vsinha/requisition/pkg/application/services"
	"github.com/vsinha/requisition/pkg/domain/entities"
	"github.com/vsinha/requisition/pkg/domain/repositories"
	"github.com/vsinha/requisition/pkg/infrastructure/locking"
	"github.com/vsinha/requisition/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/requisition/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/requisition/pkg/interfaces/cli/output"
)

// Scenario file names inside the scenario directory
const (
	PeriodsFile          = "periods.csv"
	ProductsFile         = "products.csv"
	TemplateFile         = "template.csv"
	SupervisoryNodesFile = "supervisory_nodes.csv"
	EntriesFile          = "entries.csv"
)

// Config holds configuration for the lifecycle command
type Config struct {
	ScenarioDir string
	OutputDir   string
	Format      string
	Verbose     bool
	Help        bool
}

// Dependencies are the collaborators chosen at startup. A nil Requisitions
// repository keeps requisitions in memory.
type Dependencies struct {
	Requisitions repositories.RequisitionRepository
	Locker       locking.Locker
	Logger       *logrus.Logger
	Service      services.ServiceConfig
}

// LifecycleCommand runs every period of a scenario through initiation,
// approval and release
type LifecycleCommand struct {
	config Config
	deps   Dependencies
}

// NewLifecycleCommand creates a new lifecycle command
func NewLifecycleCommand(config Config, deps Dependencies) *LifecycleCommand {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	return &LifecycleCommand{config: config, deps: deps}
}

// scenario is the reference data loaded from a scenario directory
type scenario struct {
	facilityID uuid.UUID
	programID  uuid.UUID
	periods    []*entities.ProcessingPeriod
	products   []csv.ProductRecord
	template   *entities.RequisitionTemplate
	entries    map[string]map[string]csv.Entry
	labels     output.Labels
	repos      services.Repositories
}

// Execute runs the lifecycle command
func (c *LifecycleCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if c.config.ScenarioDir == "" {
		return fmt.Errorf("validation error: must specify -scenario directory")
	}

	if c.config.Verbose {
		fmt.Printf("🚀 Requisition CLI\n")
		fmt.Printf("Scenario: %s\n", c.config.ScenarioDir)
		fmt.Printf("Output format: %s\n\n", c.config.Format)
		fmt.Println("📂 Loading data from CSV files...")
	}

	s, err := c.loadScenario()
	if err != nil {
		return err
	}

	if c.config.Verbose {
		fmt.Printf("✅ Data loaded successfully:\n")
		fmt.Printf("  Periods: %d\n", len(s.periods))
		fmt.Printf("  Products: %d\n", len(s.products))
		fmt.Printf("  Template columns: %d\n", len(s.template.Columns))
		fmt.Printf("  Periods with entries: %d\n\n", len(s.entries))
	}

	var opts []services.ServiceOption
	opts = append(opts, services.WithLogger(c.deps.Logger))
	if c.deps.Locker != nil {
		opts = append(opts, services.WithLocker(c.deps.Locker))
	}
	service := services.NewRequisitionService(s.repos, c.deps.Service, opts...)

	startTime := time.Now()
	results, err := c.run(ctx, service, s)
	if err != nil {
		return err
	}

	if c.config.Verbose {
		fmt.Printf("✅ %d requisitions released in %v\n\n", len(results), time.Since(startTime))
	}

	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	}
	if err := output.Generate(results, s.labels, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.Verbose {
		fmt.Println("🏁 Requisition run complete!")
	}
	return nil
}

// run walks the periods in order and releases one requisition for each
// period that has entries
func (c *LifecycleCommand) run(ctx context.Context, service *services.RequisitionService, s *scenario) ([]*dto.RequisitionDto, error) {
	operator := uuid.New()
	results := make([]*dto.RequisitionDto, 0, len(s.entries))

	for _, period := range s.periods {
		entries, ok := s.entries[period.Name]
		if !ok {
			continue
		}
		if c.config.Verbose {
			fmt.Printf("🔄 Processing %s...\n", period.Name)
		}

		periodID := period.ID
		r, err := service.Initiate(ctx, services.InitiateRequest{
			FacilityID:  s.facilityID,
			ProgramID:   s.programID,
			PeriodID:    &periodID,
			InitiatorID: operator,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initiate %s: %w", period.Name, err)
		}

		draft, err := fillDraft(r, entries, s)
		if err != nil {
			return nil, fmt.Errorf("period %s: %w", period.Name, err)
		}
		if _, err := service.Update(ctx, r.ID(), draft); err != nil {
			return nil, fmt.Errorf("failed to update %s: %w", period.Name, err)
		}

		r, err = service.Submit(ctx, r.ID(), operator)
		if err != nil {
			return nil, fmt.Errorf("failed to submit %s: %w", period.Name, err)
		}
		if r.Status() == entities.Submitted {
			if r, err = service.Authorize(ctx, r.ID(), operator); err != nil {
				return nil, fmt.Errorf("failed to authorize %s: %w", period.Name, err)
			}
		}

		// every node of the chain approves once
		for approvals := 0; r.IsApprovable(); approvals++ {
			if approvals > maxApprovals {
				return nil, fmt.Errorf("period %s: approval chain longer than %d nodes", period.Name, maxApprovals)
			}
			if r, err = service.Approve(ctx, r.ID(), operator); err != nil {
				return nil, fmt.Errorf("failed to approve %s: %w", period.Name, err)
			}
		}

		if r, err = service.Release(ctx, r.ID(), operator); err != nil {
			return nil, fmt.Errorf("failed to release %s: %w", period.Name, err)
		}

		if c.config.Verbose {
			fmt.Printf("  %s %s, total cost %s\n", period.Name, r.Status(), r.TotalCost())
		}
		results = append(results, dto.NewRequisitionDto(r))
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no entries match any period of the scenario")
	}
	return results, nil
}

const maxApprovals = 32

// fillDraft copies the period's entries onto the full supply lines. Lines
// without an entry are skipped when the template allows it.
func fillDraft(r *entities.Requisition, entries map[string]csv.Entry, s *scenario) (*dto.RequisitionDto, error) {
	draft := dto.NewRequisitionDto(r)
	used := 0

	for _, line := range draft.RequisitionLineItems {
		if line.NonFullSupply {
			continue
		}
		code := s.labels.Products[line.OrderableID]
		entry, ok := entries[code]
		if !ok {
			if !s.template.IsColumnDisplayed(entities.SkippedColumn) {
				return nil, fmt.Errorf("no entry for product %s", code)
			}
			line.Skipped = true
			continue
		}
		used++

		if line.BeginningBalance == nil {
			line.BeginningBalance = entities.Qty(0)
		}
		line.TotalReceivedQuantity = entities.Qty(entry.Received)
		line.TotalConsumedQuantity = entities.Qty(entry.Consumed)
		line.TotalStockoutDays = entities.Qty(entry.StockoutDays)
		line.RequestedQuantity = entry.Requested
		line.RequestedQuantityExplanation = entry.Explanation
	}

	if used != len(entries) {
		return nil, fmt.Errorf("%d entries name products that are not full supply", len(entries)-used)
	}
	return draft, nil
}

// loadScenario reads the scenario directory into in-memory reference data
func (c *LifecycleCommand) loadScenario() (*scenario, error) {
	files := make(map[string]string, 5)
	for _, name := range []string{PeriodsFile, ProductsFile, TemplateFile, SupervisoryNodesFile, EntriesFile} {
		path := filepath.Join(c.config.ScenarioDir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found in %s", name, c.config.ScenarioDir)
		}
		files[name] = path
	}

	loader := csv.NewLoader()
	s := &scenario{
		facilityID: uuid.New(),
		programID:  uuid.New(),
		labels: output.Labels{
			Periods:  make(map[uuid.UUID]string),
			Products: make(map[uuid.UUID]string),
		},
	}

	schedules := memory.NewScheduleRepository()
	schedule := entities.ProcessingSchedule{ID: uuid.New(), Code: "SCH-CLI", Name: "Scenario schedule"}
	schedules.AddSchedule(schedule)
	schedules.Assign(s.programID, s.facilityID, schedule.ID)

	var err error
	s.periods, err = loader.LoadPeriods(files[PeriodsFile], schedule.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading periods: %w", err)
	}
	periods := memory.NewPeriodRepository(schedules)
	if err := periods.LoadPeriods(s.periods); err != nil {
		return nil, fmt.Errorf("failed to load periods into repository: %w", err)
	}
	for _, period := range s.periods {
		s.labels.Periods[period.ID] = period.Name
	}

	s.products, err = loader.LoadProducts(files[ProductsFile])
	if err != nil {
		return nil, fmt.Errorf("error loading products: %w", err)
	}
	reference := memory.NewReferenceDataRepository()
	for _, record := range s.products {
		orderable := record.Product.Orderable
		reference.ApproveProducts(s.programID, s.facilityID, record.Product)
		s.labels.Products[orderable.ID] = orderable.ProductCode
		if record.IdealStockAmount != nil {
			commodityType, err := uuid.Parse(orderable.CommodityTypeIdentifier)
			if err != nil {
				return nil, fmt.Errorf("product %s: invalid commodity type: %w", orderable.ProductCode, err)
			}
			reference.SetIdealStockAmount(s.programID, s.facilityID, commodityType, *record.IdealStockAmount)
		}
		if record.StockOnHand != nil {
			reference.SetStockOnHand(s.programID, s.facilityID, orderable.ID, *record.StockOnHand)
		}
	}

	s.template, err = loader.LoadTemplate(files[TemplateFile], s.programID)
	if err != nil {
		return nil, fmt.Errorf("error loading template: %w", err)
	}
	templates := memory.NewTemplateRepository()
	if err := templates.SaveTemplate(s.template); err != nil {
		return nil, fmt.Errorf("failed to load template into repository: %w", err)
	}

	nodes, err := loader.LoadSupervisoryNodes(files[SupervisoryNodesFile])
	if err != nil {
		return nil, fmt.Errorf("error loading supervisory nodes: %w", err)
	}
	nodeRepo := memory.NewSupervisoryNodeRepository()
	for _, record := range nodes {
		nodeRepo.AddNode(record.Node)
		if record.SupplyingFacility != "" {
			reference.AddSupplyLine(entities.SupplyLine{
				ID:                  uuid.New(),
				SupervisoryNodeID:   record.Node.ID,
				ProgramID:           s.programID,
				SupplyingFacilityID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(record.SupplyingFacility)),
			})
		}
	}
	// the first node is the one the facility reports to
	nodeRepo.AssignFacility(s.programID, s.facilityID, nodes[0].Node.ID)

	entries, err := loader.LoadEntries(files[EntriesFile])
	if err != nil {
		return nil, fmt.Errorf("error loading entries: %w", err)
	}
	s.entries = make(map[string]map[string]csv.Entry)
	for _, entry := range entries {
		if _, ok := s.entries[entry.Period]; !ok {
			s.entries[entry.Period] = make(map[string]csv.Entry)
		}
		if _, dup := s.entries[entry.Period][entry.ProductCode]; dup {
			return nil, fmt.Errorf("duplicate entry for %s in %s", entry.ProductCode, entry.Period)
		}
		s.entries[entry.Period][entry.ProductCode] = entry
	}

	requisitions := c.deps.Requisitions
	if requisitions == nil {
		requisitions = memory.NewRequisitionRepository()
	}

	s.repos = services.Repositories{
		Requisitions:     requisitions,
		Periods:          periods,
		Schedules:        schedules,
		Templates:        templates,
		Products:         reference,
		SupplyLines:      reference,
		SupervisoryNodes: nodeRepo,
		ProofsOfDelivery: reference,
		Stock:            reference,
	}
	return s, nil
}

// showHelp displays the help message
func (c *LifecycleCommand) showHelp() {
	fmt.Printf(`Requisition CLI - runs a facility's requisitions from initiation to release

USAGE:
    requisition -scenario <directory> [options]

OPTIONS:
    -scenario <dir>     Path to scenario directory containing CSV files
    -config <dir>       Directory holding config.yaml (default: .)
    -output <dir>       Output directory for results (optional)
    -format <fmt>       Output format: text, json, xlsx (default: text)
    -verbose            Enable verbose output
    -help               Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── periods.csv             # Processing periods, oldest first
    ├── products.csv            # Approved products and stock levels
    ├── template.csv            # Requisition template columns
    ├── supervisory_nodes.csv   # Approval chain, facility's node first
    └── entries.csv             # Reported stock data per period

CSV FILE FORMATS:

periods.csv:
    name,start_date,end_date,duration_months
    Jan2025,2025-01-01,2025-01-31,1

products.csv:
    product_code,name,net_content,pack_rounding_threshold,round_to_zero,price_per_pack,max_periods_of_stock,full_supply,ideal_stock_amount,stock_on_hand
    C100,Ibuprofen 200mg,10,5,false,2.50,3,true,500,35

template.csv:
    column,displayed,source
    totalConsumedQuantity,true,USER_INPUT
    stockOnHand,true,CALCULATED

supervisory_nodes.csv:
    code,name,parent_code,supplying_facility
    SN-DISTRICT,District,SN-PROVINCE,
    SN-PROVINCE,Province,,CENTRAL-WAREHOUSE

entries.csv:
    period,product_code,received,consumed,stockout_days,requested,explanation
    Jan2025,C100,100,60,0,,

EXAMPLES:
    # Run a scenario with text output
    requisition -scenario examples/monthly -verbose

    # Save the released requisitions as a workbook
    requisition -scenario examples/monthly -format xlsx -output results/
`)
}
