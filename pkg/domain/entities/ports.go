package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Exporter receives a requisition field by field
type Exporter interface {
	SetID(id uuid.UUID)
	SetCreatedDate(createdDate time.Time)
	SetModifiedDate(modifiedDate time.Time)
	SetFacilityID(facilityID uuid.UUID)
	SetProgramID(programID uuid.UUID)
	SetProcessingPeriodID(periodID uuid.UUID)
	SetStatus(status RequisitionStatus)
	SetEmergency(emergency bool)
	SetSupplyingFacility(supplyingFacilityID *uuid.UUID)
	SetSupervisoryNode(supervisoryNodeID *uuid.UUID)
	SetTemplateID(templateID *uuid.UUID)
	SetDraftStatusMessage(message string)
	SetDatePhysicalStockCountCompleted(date *time.Time)
	SetStockAdjustmentReasons(reasons []StockAdjustmentReason)
	// ProvideStatusChangeExporter returns false when status changes should not be exported
	ProvideStatusChangeExporter() (StatusChangeExporter, bool)
	AddStatusChange(exporter StatusChangeExporter)
	// ProvideLineItemExporter returns false when line items should not be exported
	ProvideLineItemExporter() (LineItemExporter, bool)
	AddLineItem(exporter LineItemExporter)
}

// Importer supplies the values a requisition is built or updated from
type Importer interface {
	GetID() uuid.UUID
	GetCreatedDate() time.Time
	GetModifiedDate() time.Time
	GetRequisitionLineItems() []LineItemImporter
	GetFacilityID() uuid.UUID
	GetProgramID() uuid.UUID
	GetProcessingPeriodID() uuid.UUID
	GetStatus() RequisitionStatus
	GetEmergency() bool
	GetSupplyingFacility() *uuid.UUID
	GetSupervisoryNode() *uuid.UUID
	GetDraftStatusMessage() *string
	GetAvailableNonFullSupplyProducts() []uuid.UUID
	GetDatePhysicalStockCountCompleted() *time.Time
	GetNumberOfMonthsInPeriod() int
}

// LineItemExporter receives a line item field by field
type LineItemExporter interface {
	SetID(id uuid.UUID)
	SetOrderableID(orderableID uuid.UUID)
	SetBeginningBalance(v *int64)
	SetTotalReceivedQuantity(v *int64)
	SetTotalLossesAndAdjustments(v *int64)
	SetStockOnHand(v *int64)
	SetRequestedQuantity(v *int64)
	SetRequestedQuantityExplanation(v string)
	SetTotalConsumedQuantity(v *int64)
	SetTotal(v *int64)
	SetApprovedQuantity(v *int64)
	SetTotalStockoutDays(v *int64)
	SetPacksToShip(v *int64)
	SetPricePerPack(v *Money)
	SetTotalCost(v *Money)
	SetSkipped(v bool)
	SetAdjustedConsumption(v *int64)
	SetPreviousAdjustedConsumptions(v []int64)
	SetAverageConsumption(v *int64)
	SetMaxPeriodsOfStock(v decimal.Decimal)
	SetMaximumStockQuantity(v *int64)
	SetCalculatedOrderQuantity(v *int64)
	SetIdealStockAmount(v *int64)
	SetRemarks(v string)
	SetNonFullSupply(v bool)
	SetStockAdjustments(v []StockAdjustment)
}

// LineItemImporter supplies the client-editable values of a line item
type LineItemImporter interface {
	GetID() uuid.UUID
	GetOrderableID() uuid.UUID
	GetBeginningBalance() *int64
	GetTotalReceivedQuantity() *int64
	GetStockOnHand() *int64
	GetRequestedQuantity() *int64
	GetRequestedQuantityExplanation() string
	GetTotalConsumedQuantity() *int64
	GetApprovedQuantity() *int64
	GetTotalStockoutDays() *int64
	GetNumberOfNewPatientsAdded() *int64
	GetRemarks() string
	GetSkipped() bool
	GetNonFullSupply() bool
	GetStockAdjustments() []StockAdjustment
}

// Export writes the line item into the exporter
func (l *RequisitionLineItem) Export(exporter LineItemExporter) {
	exporter.SetID(l.ID)
	exporter.SetOrderableID(l.OrderableID)
	exporter.SetBeginningBalance(copyQty(l.BeginningBalance))
	exporter.SetTotalReceivedQuantity(copyQty(l.TotalReceivedQuantity))
	exporter.SetTotalLossesAndAdjustments(copyQty(l.TotalLossesAndAdjustments))
	exporter.SetStockOnHand(copyQty(l.StockOnHand))
	exporter.SetRequestedQuantity(copyQty(l.RequestedQuantity))
	exporter.SetRequestedQuantityExplanation(l.RequestedQuantityExplanation)
	exporter.SetTotalConsumedQuantity(copyQty(l.TotalConsumedQuantity))
	exporter.SetTotal(copyQty(l.Total))
	exporter.SetApprovedQuantity(copyQty(l.ApprovedQuantity))
	exporter.SetTotalStockoutDays(copyQty(l.TotalStockoutDays))
	exporter.SetPacksToShip(copyQty(l.PacksToShip))
	exporter.SetPricePerPack(copyMoney(l.PricePerPack))
	exporter.SetTotalCost(copyMoney(l.TotalCost))
	exporter.SetSkipped(l.Skipped)
	exporter.SetAdjustedConsumption(copyQty(l.AdjustedConsumption))
	exporter.SetPreviousAdjustedConsumptions(append([]int64(nil), l.PreviousAdjustedConsumptions...))
	exporter.SetAverageConsumption(copyQty(l.AverageConsumption))
	exporter.SetMaxPeriodsOfStock(l.MaxPeriodsOfStock)
	exporter.SetMaximumStockQuantity(copyQty(l.MaximumStockQuantity))
	exporter.SetCalculatedOrderQuantity(copyQty(l.CalculatedOrderQuantity))
	exporter.SetIdealStockAmount(copyQty(l.IdealStockAmount))
	exporter.SetRemarks(l.Remarks)
	exporter.SetNonFullSupply(l.NonFullSupply)
	exporter.SetStockAdjustments(append([]StockAdjustment(nil), l.StockAdjustments...))
}

// NewLineItemFromImporter builds a line item from external input
func NewLineItemFromImporter(importer LineItemImporter) *RequisitionLineItem {
	line := &RequisitionLineItem{
		ID:            importer.GetID(),
		OrderableID:   importer.GetOrderableID(),
		NonFullSupply: importer.GetNonFullSupply(),
	}
	line.updateFrom(&RequisitionLineItem{
		BeginningBalance:             importer.GetBeginningBalance(),
		TotalReceivedQuantity:        importer.GetTotalReceivedQuantity(),
		StockOnHand:                  importer.GetStockOnHand(),
		RequestedQuantity:            importer.GetRequestedQuantity(),
		RequestedQuantityExplanation: importer.GetRequestedQuantityExplanation(),
		TotalConsumedQuantity:        importer.GetTotalConsumedQuantity(),
		ApprovedQuantity:             importer.GetApprovedQuantity(),
		TotalStockoutDays:            importer.GetTotalStockoutDays(),
		NumberOfNewPatientsAdded:     importer.GetNumberOfNewPatientsAdded(),
		Remarks:                      importer.GetRemarks(),
		Skipped:                      importer.GetSkipped(),
		StockAdjustments:             importer.GetStockAdjustments(),
	})
	return line
}
