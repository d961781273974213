package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// Loader reads a requisition scenario from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// ProductRecord is an approved product with the facility's stock data
type ProductRecord struct {
	Product          entities.ApprovedProduct
	IdealStockAmount *int64
	StockOnHand      *int64
}

// NodeRecord is a supervisory node and the facility its supply line points to.
// SupplyingFacility is empty for nodes without a supply line.
type NodeRecord struct {
	Node              entities.SupervisoryNode
	SupplyingFacility string
}

// Entry is the stock data a facility reports for one product in one period
type Entry struct {
	Period       string
	ProductCode  string
	Received     int64
	Consumed     int64
	StockoutDays int64
	Requested    *int64
	Explanation  string
}

// LoadPeriods loads processing periods of one schedule
func (l *Loader) LoadPeriods(filename string, scheduleID uuid.UUID) ([]*entities.ProcessingPeriod, error) {
	header := []string{"name", "start_date", "end_date", "duration_months"}
	records, err := readRecords("periods", filename, header)
	if err != nil {
		return nil, err
	}

	periods := make([]*entities.ProcessingPeriod, 0, len(records))
	for i, record := range records {
		period, err := parsePeriod(record, scheduleID)
		if err != nil {
			return nil, fmt.Errorf("periods CSV row %d: %w", i+2, err)
		}
		periods = append(periods, period)
	}
	return periods, nil
}

// LoadProducts loads the approved products of the facility
func (l *Loader) LoadProducts(filename string) ([]ProductRecord, error) {
	header := []string{
		"product_code", "name", "net_content", "pack_rounding_threshold", "round_to_zero",
		"price_per_pack", "max_periods_of_stock", "full_supply", "ideal_stock_amount", "stock_on_hand",
	}
	records, err := readRecords("products", filename, header)
	if err != nil {
		return nil, err
	}

	products := make([]ProductRecord, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, record := range records {
		product, err := parseProduct(record)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		code := product.Product.Orderable.ProductCode
		if seen[code] {
			return nil, fmt.Errorf("products CSV row %d: duplicate product code %s", i+2, code)
		}
		seen[code] = true
		products = append(products, product)
	}
	return products, nil
}

// LoadTemplate loads the column configuration of a program. Skipping is
// allowed when the skipped column is displayed.
func (l *Loader) LoadTemplate(filename string, programID uuid.UUID) (*entities.RequisitionTemplate, error) {
	header := []string{"column", "displayed", "source"}
	records, err := readRecords("template", filename, header)
	if err != nil {
		return nil, err
	}

	columns := make([]entities.TemplateColumn, 0, len(records))
	for i, record := range records {
		displayed, err := parseBool(record[1])
		if err != nil {
			return nil, fmt.Errorf("template CSV row %d: invalid displayed: %w", i+2, err)
		}
		source, err := parseColumnSource(record[2])
		if err != nil {
			return nil, fmt.Errorf("template CSV row %d: %w", i+2, err)
		}
		columns = append(columns, entities.TemplateColumn{
			Name:      strings.TrimSpace(record[0]),
			Displayed: displayed,
			Source:    source,
		})
	}

	template := entities.NewRequisitionTemplate(programID, columns...)
	template.SkipAllowed = template.IsColumnDisplayed(entities.SkippedColumn)
	return template, nil
}

// LoadSupervisoryNodes loads the approval hierarchy. Parents are referenced
// by code and must be defined in the same file.
func (l *Loader) LoadSupervisoryNodes(filename string) ([]NodeRecord, error) {
	header := []string{"code", "name", "parent_code", "supplying_facility"}
	records, err := readRecords("supervisory nodes", filename, header)
	if err != nil {
		return nil, err
	}

	nodes := make([]NodeRecord, 0, len(records))
	ids := make(map[string]uuid.UUID, len(records))
	for i, record := range records {
		code := strings.TrimSpace(record[0])
		if code == "" {
			return nil, fmt.Errorf("supervisory nodes CSV row %d: code cannot be empty", i+2)
		}
		if _, exists := ids[code]; exists {
			return nil, fmt.Errorf("supervisory nodes CSV row %d: duplicate node code %s", i+2, code)
		}
		ids[code] = uuid.New()
		nodes = append(nodes, NodeRecord{
			Node:              entities.SupervisoryNode{ID: ids[code], Code: code, Name: strings.TrimSpace(record[1])},
			SupplyingFacility: strings.TrimSpace(record[3]),
		})
	}

	// second pass once every code has an id
	for i, record := range records {
		parent := strings.TrimSpace(record[2])
		if parent == "" {
			continue
		}
		parentID, ok := ids[parent]
		if !ok {
			return nil, fmt.Errorf("supervisory nodes CSV row %d: unknown parent node %s", i+2, parent)
		}
		if parent == nodes[i].Node.Code {
			return nil, fmt.Errorf("supervisory nodes CSV row %d: node %s cannot be its own parent", i+2, parent)
		}
		nodes[i].Node.ParentNodeID = &parentID
	}
	return nodes, nil
}

// LoadEntries loads the reported stock data
func (l *Loader) LoadEntries(filename string) ([]Entry, error) {
	header := []string{"period", "product_code", "received", "consumed", "stockout_days", "requested", "explanation"}
	records, err := readRecords("entries", filename, header)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(records))
	for i, record := range records {
		entry, err := parseEntry(record)
		if err != nil {
			return nil, fmt.Errorf("entries CSV row %d: %w", i+2, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// readRecords reads a CSV file, checks its header and returns the data rows
func readRecords(kind, filename string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, records[0])
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parsePeriod(record []string, scheduleID uuid.UUID) (*entities.ProcessingPeriod, error) {
	startDate, err := time.Parse(dateLayout, strings.TrimSpace(record[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %s", record[1])
	}

	endDate, err := time.Parse(dateLayout, strings.TrimSpace(record[2]))
	if err != nil {
		return nil, fmt.Errorf("invalid end_date: %s", record[2])
	}

	months, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil {
		return nil, fmt.Errorf("invalid duration_months: %s", record[3])
	}

	return entities.NewProcessingPeriod(strings.TrimSpace(record[0]), scheduleID, startDate, endDate, months)
}

func parseProduct(record []string) (ProductRecord, error) {
	code := strings.TrimSpace(record[0])
	if code == "" {
		return ProductRecord{}, fmt.Errorf("product_code cannot be empty")
	}

	netContent, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
	if err != nil || netContent <= 0 {
		return ProductRecord{}, fmt.Errorf("invalid net_content: %s", record[2])
	}

	threshold, err := strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
	if err != nil || threshold < 0 {
		return ProductRecord{}, fmt.Errorf("invalid pack_rounding_threshold: %s", record[3])
	}

	roundToZero, err := parseBool(record[4])
	if err != nil {
		return ProductRecord{}, fmt.Errorf("invalid round_to_zero: %w", err)
	}

	var price *decimal.Decimal
	if s := strings.TrimSpace(record[5]); s != "" {
		p, err := decimal.NewFromString(s)
		if err != nil || p.IsNegative() {
			return ProductRecord{}, fmt.Errorf("invalid price_per_pack: %s", record[5])
		}
		price = &p
	}

	maxPeriods, err := decimal.NewFromString(strings.TrimSpace(record[6]))
	if err != nil || maxPeriods.IsNegative() {
		return ProductRecord{}, fmt.Errorf("invalid max_periods_of_stock: %s", record[6])
	}

	fullSupply, err := parseBool(record[7])
	if err != nil {
		return ProductRecord{}, fmt.Errorf("invalid full_supply: %w", err)
	}

	isa, err := parseOptionalQuantity("ideal_stock_amount", record[8])
	if err != nil {
		return ProductRecord{}, err
	}

	soh, err := parseOptionalQuantity("stock_on_hand", record[9])
	if err != nil {
		return ProductRecord{}, err
	}

	orderable := entities.Orderable{
		ID:                    uuid.New(),
		ProductCode:           code,
		FullProductName:       strings.TrimSpace(record[1]),
		NetContent:            netContent,
		PackRoundingThreshold: threshold,
		RoundToZero:           roundToZero,
		PricePerPack:          price,
	}
	// ideal stock amounts are keyed by commodity type
	if isa != nil {
		orderable.CommodityTypeIdentifier = uuid.New().String()
	}

	return ProductRecord{
		Product: entities.ApprovedProduct{
			Orderable:         orderable,
			MaxPeriodsOfStock: maxPeriods,
			FullSupply:        fullSupply,
		},
		IdealStockAmount: isa,
		StockOnHand:      soh,
	}, nil
}

func parseEntry(record []string) (Entry, error) {
	entry := Entry{
		Period:      strings.TrimSpace(record[0]),
		ProductCode: strings.TrimSpace(record[1]),
		Explanation: strings.TrimSpace(record[6]),
	}
	if entry.Period == "" || entry.ProductCode == "" {
		return Entry{}, fmt.Errorf("period and product_code are required")
	}

	var err error
	if entry.Received, err = parseQuantity("received", record[2]); err != nil {
		return Entry{}, err
	}
	if entry.Consumed, err = parseQuantity("consumed", record[3]); err != nil {
		return Entry{}, err
	}
	if entry.StockoutDays, err = parseQuantity("stockout_days", record[4]); err != nil {
		return Entry{}, err
	}
	if entry.Requested, err = parseOptionalQuantity("requested", record[5]); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func parseQuantity(column, value string) (int64, error) {
	q, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || q < 0 {
		return 0, fmt.Errorf("invalid %s: %s", column, value)
	}
	return q, nil
}

func parseOptionalQuantity(column, value string) (*int64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	q, err := parseQuantity(column, value)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean: %s", value)
	}
}

func parseColumnSource(value string) (entities.ColumnSource, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "USER_INPUT":
		return entities.UserInput, nil
	case "CALCULATED":
		return entities.Calculated, nil
	case "REFERENCE_DATA":
		return entities.Reference, nil
	default:
		return entities.UserInput, fmt.Errorf("invalid column source: %s", value)
	}
}
