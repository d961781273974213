package postgres

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vsinha/requisition/pkg/domain/entities"
	"gorm.io/gorm/schema"
)

func sampleState() entities.RequisitionState {
	id := uuid.New()
	node := uuid.New()
	counted := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	eur := entities.Currency{Code: "EUR", MinorUnits: 2}
	price := entities.NewMoney(decimal.RequireFromString("2.50"), eur)
	cost := entities.NewMoney(decimal.RequireFromString("35.00"), eur)

	return entities.RequisitionState{
		ID:                              id,
		CreatedDate:                     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		ModifiedDate:                    time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
		FacilityID:                      uuid.New(),
		ProgramID:                       uuid.New(),
		ProcessingPeriodID:              uuid.New(),
		Status:                          entities.InApproval,
		NumberOfMonthsInPeriod:          1,
		SupervisoryNodeID:               &node,
		DatePhysicalStockCountCompleted: &counted,
		DraftStatusMessage:              "counted twice",
		Template:                        entities.NewRequisitionTemplate(uuid.New()),
		Currency:                        eur,
		LineItems: []*entities.RequisitionLineItem{
			{
				ID:                           uuid.New(),
				RequisitionID:                id,
				OrderableID:                  uuid.New(),
				BeginningBalance:             entities.Qty(40),
				StockOnHand:                  entities.Qty(35),
				PacksToShip:                  entities.Qty(14),
				PricePerPack:                 &price,
				TotalCost:                    &cost,
				PreviousAdjustedConsumptions: []int64{60, 55},
				MaxPeriodsOfStock:            decimal.NewFromInt(3),
			},
			{ID: uuid.New(), RequisitionID: id, OrderableID: uuid.New(), Skipped: true, NonFullSupply: true},
		},
		StatusChanges: []entities.StatusChange{
			{ID: uuid.New(), RequisitionID: id, Status: entities.Initiated, CreatedDate: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
			{ID: uuid.New(), RequisitionID: id, Status: entities.Authorized, CreatedDate: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)},
		},
		AvailableProducts:      []uuid.UUID{uuid.New()},
		PreviousRequisitionIDs: []uuid.UUID{uuid.New(), uuid.New()},
	}
}

func TestMapping_RoundTrip(t *testing.T) {
	state := sampleState()

	rec := toRecord(state)
	if rec.Status != "IN_APPROVAL" {
		t.Errorf("Expected status stored by name, got %s", rec.Status)
	}
	if rec.TemplateID == nil || *rec.TemplateID != state.Template.ID {
		t.Errorf("Expected template id to be stored")
	}
	if rec.LineItems[1].Position != 1 || rec.PreviousRequisitions[1].Position != 1 {
		t.Errorf("Expected children to keep their positions")
	}
	if !rec.LineItems[0].PricePerPack.Equal(decimal.RequireFromString("2.50")) {
		t.Errorf("Expected price 2.50, got %v", rec.LineItems[0].PricePerPack)
	}
	if rec.LineItems[1].PricePerPack != nil {
		t.Errorf("Expected missing price to stay nil")
	}

	restored, err := toState(rec)
	if err != nil {
		t.Fatalf("toState failed: %v", err)
	}

	if restored.Status != entities.InApproval || restored.Currency.Code != "EUR" {
		t.Errorf("Expected IN_APPROVAL in EUR, got %s in %s", restored.Status, restored.Currency.Code)
	}
	if *restored.SupervisoryNodeID != *state.SupervisoryNodeID || restored.DraftStatusMessage != "counted twice" {
		t.Errorf("Expected supervisory node and draft message to survive")
	}
	if len(restored.LineItems) != 2 || *restored.LineItems[0].PacksToShip != 14 {
		t.Fatalf("Expected line items to survive")
	}
	if restored.LineItems[0].TotalCost.String() != "EUR 35.00" {
		t.Errorf("Expected EUR 35.00, got %s", restored.LineItems[0].TotalCost)
	}
	if len(restored.StatusChanges) != 2 || restored.StatusChanges[1].Status != entities.Authorized {
		t.Errorf("Expected status changes to survive, got %v", restored.StatusChanges)
	}
	if restored.PreviousRequisitionIDs[0] != state.PreviousRequisitionIDs[0] {
		t.Errorf("Expected previous requisitions to keep their order")
	}

	requisition := entities.RestoreRequisition(restored)
	if requisition.ID() != state.ID || requisition.LatestStatusChange().Status != entities.Authorized {
		t.Errorf("Expected a usable requisition after restore")
	}
}

func TestMapping_RejectsCorruptRows(t *testing.T) {
	rec := toRecord(sampleState())
	rec.Status = "DRAFT"
	if _, err := toState(rec); err == nil {
		t.Errorf("Expected error for unknown status")
	}

	rec = toRecord(sampleState())
	rec.CurrencyCode = ""
	if _, err := toState(rec); err == nil {
		t.Errorf("Expected error for missing currency")
	}
}

func TestSchema_Tables(t *testing.T) {
	testCases := []struct {
		model    interface{}
		expected string
	}{
		{&requisitionRecord{}, "requisitions"},
		{&lineItemRecord{}, "requisition_line_items"},
		{&statusChangeRecord{}, "status_changes"},
		{&availableProductRecord{}, "available_products"},
		{&previousRequisitionRecord{}, "requisitions_previous_requisitions"},
	}

	cache := &sync.Map{}
	for _, tc := range testCases {
		s, err := schema.Parse(tc.model, cache, schema.NamingStrategy{})
		if err != nil {
			t.Fatalf("Failed to parse %T: %v", tc.model, err)
		}
		if s.Table != tc.expected {
			t.Errorf("Expected table %s, got %s", tc.expected, s.Table)
		}
	}

	s, _ := schema.Parse(&requisitionRecord{}, cache, schema.NamingStrategy{})
	lines, ok := s.Relationships.Relations["LineItems"]
	if !ok || lines.Type != schema.HasMany {
		t.Fatalf("Expected requisitions to have many line items")
	}
	if s.LookUpField("CurrencyCode").DBName != "currency_code" {
		t.Errorf("Expected snake case column names")
	}
}
