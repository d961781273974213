package entities

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCalculateBeginningBalance(t *testing.T) {
	testCases := []struct {
		name     string
		previous *RequisitionLineItem
		expected int64
	}{
		{"no previous line", nil, 0},
		{"previous stock on hand carried", &RequisitionLineItem{StockOnHand: Qty(40)}, 40},
		{"previous stock on hand unset", &RequisitionLineItem{}, 0},
		{"skipped previous line", &RequisitionLineItem{StockOnHand: Qty(40), Skipped: true}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateBeginningBalance(tc.previous)
			if got != tc.expected {
				t.Errorf("Expected beginning balance %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestCalculateAdjustedConsumption(t *testing.T) {
	testCases := []struct {
		name         string
		consumed     *int64
		stockoutDays *int64
		months       int
		expected     int64
	}{
		{"no stockout", Qty(100), Qty(0), 1, 100},
		{"nil stockout", Qty(100), nil, 1, 100},
		{"stockout whole period", Qty(100), Qty(30), 1, 100},
		{"stockout longer than period", Qty(100), Qty(45), 1, 100},
		{"half month stockout", Qty(100), Qty(15), 1, 200},
		{"rounded up", Qty(10), Qty(7), 1, 14},
		{"two month period", Qty(90), Qty(30), 2, 180},
		{"no consumption", nil, Qty(10), 1, 0},
		{"zero months", Qty(50), Qty(10), 0, 50},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			line := &RequisitionLineItem{TotalConsumedQuantity: tc.consumed, TotalStockoutDays: tc.stockoutDays}
			got := CalculateAdjustedConsumption(line, tc.months)
			if got != tc.expected {
				t.Errorf("Expected adjusted consumption %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestCalculateAverageConsumption(t *testing.T) {
	testCases := []struct {
		name     string
		previous []int64
		current  *int64
		expected int64
	}{
		{"only current", nil, Qty(7), 7},
		{"nothing", nil, nil, 0},
		{"previous only", []int64{4, 6}, nil, 5},
		{"tie rounds up", []int64{1}, Qty(2), 2},
		{"rounds down below half", []int64{1, 1}, Qty(2), 1},
		{"three values", []int64{10, 20}, Qty(40), 23},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			line := &RequisitionLineItem{PreviousAdjustedConsumptions: tc.previous, AdjustedConsumption: tc.current}
			got := CalculateAverageConsumption(line)
			if got != tc.expected {
				t.Errorf("Expected average consumption %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestCalculateStockFormulas(t *testing.T) {
	line := &RequisitionLineItem{
		BeginningBalance:          Qty(10),
		TotalReceivedQuantity:     Qty(50),
		TotalConsumedQuantity:     Qty(30),
		TotalLossesAndAdjustments: Qty(-5),
	}

	if got := CalculateStockOnHand(line); got != 25 {
		t.Errorf("Expected stock on hand 25, got %d", got)
	}
	if got := CalculateTotal(line); got != 60 {
		t.Errorf("Expected total 60, got %d", got)
	}

	line.StockOnHand = Qty(20)
	if got := CalculateTotalConsumedQuantity(line); got != 35 {
		t.Errorf("Expected consumed quantity 35, got %d", got)
	}
}

func TestCalculateTotalLossesAndAdjustments(t *testing.T) {
	credit := StockAdjustmentReason{ID: uuid.New(), Name: "Transfer In", ReasonType: Credit}
	debit := StockAdjustmentReason{ID: uuid.New(), Name: "Expired", ReasonType: Debit}

	line := &RequisitionLineItem{StockAdjustments: []StockAdjustment{
		{ReasonID: credit.ID, Quantity: 10},
		{ReasonID: debit.ID, Quantity: 4},
		{ReasonID: uuid.New(), Quantity: 100},
	}}

	got := CalculateTotalLossesAndAdjustments(line, []StockAdjustmentReason{credit, debit})
	if got != 6 {
		t.Errorf("Expected total losses and adjustments 6, got %d", got)
	}
}

func TestCalculateOrderQuantities(t *testing.T) {
	line := &RequisitionLineItem{
		AverageConsumption: Qty(15),
		MaxPeriodsOfStock:  decimal.NewFromFloat(2.5),
		StockOnHand:        Qty(10),
	}

	maximum := CalculateMaximumStockQuantity(line)
	if maximum != 38 {
		t.Fatalf("Expected maximum stock quantity 38, got %d", maximum)
	}

	line.MaximumStockQuantity = Qty(maximum)
	if got := CalculateCalculatedOrderQuantity(line); got != 28 {
		t.Errorf("Expected calculated order quantity 28, got %d", got)
	}

	line.StockOnHand = Qty(100)
	if got := CalculateCalculatedOrderQuantity(line); got != 0 {
		t.Errorf("Expected calculated order quantity 0 when overstocked, got %d", got)
	}
}

func TestCalculatePacksToShip(t *testing.T) {
	orderable := Orderable{NetContent: 10, PackRoundingThreshold: 4}

	testCases := []struct {
		name        string
		quantity    *int64
		roundToZero bool
		expected    int64
	}{
		{"nil quantity", nil, false, 0},
		{"exact packs", Qty(30), false, 3},
		{"remainder below threshold", Qty(34), false, 3},
		{"remainder above threshold", Qty(35), false, 4},
		{"small quantity rounds to one", Qty(2), false, 1},
		{"small quantity rounds to zero", Qty(2), true, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			o := orderable
			o.RoundToZero = tc.roundToZero
			got := CalculatePacksToShip(tc.quantity, o)
			if got != tc.expected {
				t.Errorf("Expected %d packs, got %d", tc.expected, got)
			}
		})
	}
}

func TestCalculateTotalCost(t *testing.T) {
	price := NewMoney(decimal.RequireFromString("1.255"), DefaultCurrency)

	cost := CalculateTotalCost(&RequisitionLineItem{PricePerPack: &price, PacksToShip: Qty(3)}, DefaultCurrency)
	if !cost.Amount.Equal(decimal.RequireFromString("3.78")) {
		t.Errorf("Expected total cost 3.78, got %s", cost)
	}

	missingPrice := CalculateTotalCost(&RequisitionLineItem{PacksToShip: Qty(3)}, DefaultCurrency)
	if !missingPrice.IsZero() || missingPrice.Currency.Code != "USD" {
		t.Errorf("Expected zero USD cost without price, got %s", missingPrice)
	}

	missingPacks := CalculateTotalCost(&RequisitionLineItem{PricePerPack: &price}, DefaultCurrency)
	if !missingPacks.IsZero() {
		t.Errorf("Expected zero cost without packs, got %s", missingPacks)
	}
}

func TestCalculateAndSetFields_OnlyDisplayedColumns(t *testing.T) {
	template := NewRequisitionTemplate(uuid.New(),
		TemplateColumn{Name: StockOnHandColumn, Displayed: true, Source: Calculated},
		TemplateColumn{Name: TotalConsumedQuantityColumn, Displayed: true, Source: UserInput},
		TemplateColumn{Name: AdjustedConsumptionColumn, Displayed: false, Source: Calculated},
	)

	line := &RequisitionLineItem{
		BeginningBalance:      Qty(20),
		TotalReceivedQuantity: Qty(10),
		TotalConsumedQuantity: Qty(5),
		AdjustedConsumption:   Qty(99),
	}
	line.CalculateAndSetFields(template, nil, 1)

	if line.StockOnHand == nil || *line.StockOnHand != 25 {
		t.Errorf("Expected calculated stock on hand 25, got %v", line.StockOnHand)
	}
	if *line.TotalConsumedQuantity != 5 {
		t.Errorf("Expected user input consumption to stay 5, got %d", *line.TotalConsumedQuantity)
	}
	if *line.AdjustedConsumption != 99 {
		t.Errorf("Expected hidden adjusted consumption to stay 99, got %d", *line.AdjustedConsumption)
	}
	if line.MaximumStockQuantity != nil {
		t.Errorf("Expected column missing from template to stay unset, got %d", *line.MaximumStockQuantity)
	}
}
