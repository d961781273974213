package entities

import "github.com/google/uuid"

// Well-known template column names
const (
	BeginningBalanceColumn             = "beginningBalance"
	TotalReceivedQuantityColumn        = "totalReceivedQuantity"
	TotalLossesAndAdjustmentsColumn    = "totalLossesAndAdjustments"
	StockOnHandColumn                  = "stockOnHand"
	TotalConsumedQuantityColumn        = "totalConsumedQuantity"
	TotalColumn                        = "total"
	AdjustedConsumptionColumn          = "adjustedConsumption"
	AverageConsumptionColumn           = "averageConsumption"
	MaximumStockQuantityColumn         = "maximumStockQuantity"
	CalculatedOrderQuantityColumn      = "calculatedOrderQuantity"
	RequestedQuantityColumn            = "requestedQuantity"
	RequestedQuantityExplanationColumn = "requestedQuantityExplanation"
	ApprovedQuantityColumn             = "approvedQuantity"
	TotalStockoutDaysColumn            = "totalStockoutDays"
	PacksToShipColumn                  = "packsToShip"
	PricePerPackColumn                 = "pricePerPack"
	TotalCostColumn                    = "totalCost"
	SkippedColumn                      = "skipped"
)

// ColumnSource tells where a column value comes from
type ColumnSource int

const (
	UserInput ColumnSource = iota
	Calculated
	Reference
)

// String method for ColumnSource enum
func (s ColumnSource) String() string {
	switch s {
	case UserInput:
		return "USER_INPUT"
	case Calculated:
		return "CALCULATED"
	case Reference:
		return "REFERENCE_DATA"
	default:
		return "Unknown"
	}
}

// TemplateColumn configures one requisition column
type TemplateColumn struct {
	Name      string
	Displayed bool
	Source    ColumnSource
}

// RequisitionTemplate is the per-program column configuration
type RequisitionTemplate struct {
	ID                       uuid.UUID
	ProgramID                uuid.UUID
	Columns                  map[string]TemplateColumn
	NumberOfPeriodsToAverage int
	SkipAllowed              bool
}

// NewRequisitionTemplate builds a template from a list of columns
func NewRequisitionTemplate(programID uuid.UUID, columns ...TemplateColumn) *RequisitionTemplate {
	t := &RequisitionTemplate{
		ID:                       uuid.New(),
		ProgramID:                programID,
		Columns:                  make(map[string]TemplateColumn, len(columns)),
		NumberOfPeriodsToAverage: 3,
	}
	for _, column := range columns {
		t.Columns[column.Name] = column
	}
	return t
}

// IsColumnInTemplate reports whether the template knows the column at all
func (t *RequisitionTemplate) IsColumnInTemplate(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.Columns[name]
	return ok
}

// IsColumnDisplayed reports whether the column is shown. Unknown columns are hidden.
func (t *RequisitionTemplate) IsColumnDisplayed(name string) bool {
	if t == nil {
		return false
	}
	return t.Columns[name].Displayed
}

// IsColumnInTemplateAndDisplayed reports whether the column is present and shown
func (t *RequisitionTemplate) IsColumnInTemplateAndDisplayed(name string) bool {
	return t.IsColumnInTemplate(name) && t.IsColumnDisplayed(name)
}

// IsColumnCalculated reports whether a displayed column is derived by the calculator
func (t *RequisitionTemplate) IsColumnCalculated(name string) bool {
	return t.IsColumnInTemplateAndDisplayed(name) && t.Columns[name].Source == Calculated
}

// IsColumnUserInput reports whether a displayed column is filled in by the user
func (t *RequisitionTemplate) IsColumnUserInput(name string) bool {
	return t.IsColumnInTemplateAndDisplayed(name) && t.Columns[name].Source == UserInput
}
