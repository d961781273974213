package dto

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

func sampleRequisition(t *testing.T) *entities.Requisition {
	t.Helper()
	price := decimal.RequireFromString("4.20")
	product := entities.ApprovedProduct{
		Orderable:         entities.Orderable{ID: uuid.New(), ProductCode: "C200", NetContent: 10, PricePerPack: &price},
		MaxPeriodsOfStock: decimal.NewFromInt(2),
		FullSupply:        true,
	}
	template := entities.NewRequisitionTemplate(uuid.New(),
		entities.TemplateColumn{Name: entities.BeginningBalanceColumn, Displayed: true, Source: entities.UserInput},
	)

	r := entities.NewRequisition(uuid.New(), uuid.New(), uuid.New(), entities.Initiated, false)
	if err := r.Initiate(entities.InitiationData{
		Template:               template,
		FullSupplyProducts:     []entities.ApprovedProduct{product},
		InitiatorID:            uuid.New(),
		NumberOfMonthsInPeriod: 1,
	}); err != nil {
		t.Fatalf("Failed to initiate requisition: %v", err)
	}
	return r
}

func TestRequisitionDto_RoundTrip(t *testing.T) {
	original := sampleRequisition(t)
	counted := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	node := uuid.New()

	// bring the requisition into the state the round trip should carry
	d := NewRequisitionDto(original)
	d.SupervisoryNode = &node
	message := "waiting for stock count"
	d.DraftStatusMessage = &message
	d.DatePhysicalStockCountCompleted = &counted
	d.Emergency = true
	d.Status = entities.InApproval

	encoded, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Failed to encode dto: %v", err)
	}
	var decoded RequisitionDto
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Failed to decode dto: %v", err)
	}

	rebuilt := entities.NewRequisitionFromImporter(&decoded)
	exported := NewRequisitionDto(rebuilt)

	if exported.ID != original.ID() {
		t.Errorf("Expected id %s, got %s", original.ID(), exported.ID)
	}
	if exported.Status != entities.InApproval {
		t.Errorf("Expected status IN_APPROVAL, got %s", exported.Status)
	}
	if !exported.Emergency {
		t.Errorf("Expected emergency flag to survive")
	}
	if exported.SupervisoryNode == nil || *exported.SupervisoryNode != node {
		t.Errorf("Expected supervisory node %s, got %v", node, exported.SupervisoryNode)
	}
	if exported.DraftStatusMessage == nil || *exported.DraftStatusMessage != message {
		t.Errorf("Expected draft message %q, got %v", message, exported.DraftStatusMessage)
	}
	if exported.DatePhysicalStockCountCompleted == nil || !exported.DatePhysicalStockCountCompleted.Equal(counted) {
		t.Errorf("Expected stock count date %v, got %v", counted, exported.DatePhysicalStockCountCompleted)
	}
	if len(exported.RequisitionLineItems) != 1 {
		t.Fatalf("Expected 1 line item, got %d", len(exported.RequisitionLineItems))
	}
	if exported.RequisitionLineItems[0].ID != original.LineItems()[0].ID {
		t.Errorf("Expected line id to survive the round trip")
	}
}

func TestRequisitionDto_Export(t *testing.T) {
	r := sampleRequisition(t)

	full := NewRequisitionDto(r)
	if len(full.StatusChanges) != 1 || full.StatusChanges[0].Status != entities.Initiated {
		t.Errorf("Expected one INITIATED status change, got %v", full.StatusChanges)
	}
	if full.TemplateID == nil || *full.TemplateID != r.Template().ID {
		t.Errorf("Expected template id to be exported")
	}
	if full.TotalCost == nil || !full.TotalCost.Amount.IsZero() || full.TotalCost.Currency != "USD" {
		t.Errorf("Expected zero USD total cost, got %v", full.TotalCost)
	}
	line := full.RequisitionLineItems[0]
	if line.PricePerPack == nil || !line.PricePerPack.Amount.Equal(decimal.RequireFromString("4.20")) {
		t.Errorf("Expected price per pack 4.20, got %v", line.PricePerPack)
	}
	if full.DraftStatusMessage != nil {
		t.Errorf("Expected empty draft message to be omitted")
	}

	basic := NewBasicRequisitionDto(r)
	if len(basic.StatusChanges) != 0 {
		t.Errorf("Expected basic dto without status changes, got %d", len(basic.StatusChanges))
	}

	encoded, err := json.Marshal(full)
	if err != nil {
		t.Fatalf("Failed to encode dto: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(encoded, &raw); err != nil {
		t.Fatalf("Failed to decode json: %v", err)
	}
	if raw["status"] != "INITIATED" {
		t.Errorf("Expected status encoded by name, got %v", raw["status"])
	}
}

func TestRequisitionDto_Validate(t *testing.T) {
	d := NewRequisitionDto(sampleRequisition(t))
	if err := d.Validate(); err != nil {
		t.Fatalf("Expected exported dto to be valid, got %v", err)
	}

	d.FacilityID = uuid.Nil
	d.RequisitionLineItems[0].BeginningBalance = entities.Qty(-3)

	err := d.Validate()
	var verr *entities.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["RequisitionDto.FacilityID"]; !ok {
		t.Errorf("Expected facility id error, got %v", verr.Fields)
	}
	if _, ok := verr.Fields["RequisitionDto.RequisitionLineItems[0].BeginningBalance"]; !ok {
		t.Errorf("Expected beginning balance error, got %v", verr.Fields)
	}
}

func TestLineItemDto_StockAdjustmentsGetIDs(t *testing.T) {
	d := &LineItemDto{StockAdjustments: []StockAdjustmentDto{{ReasonID: uuid.New(), Quantity: 4}}}
	adjustments := d.GetStockAdjustments()
	if len(adjustments) != 1 || adjustments[0].ID == uuid.Nil {
		t.Errorf("Expected adjustment with a generated id, got %v", adjustments)
	}
}
