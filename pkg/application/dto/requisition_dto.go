package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

// RequisitionDto is the external representation of a requisition. It is
// populated through entities.Exporter and read back through entities.Importer.
type RequisitionDto struct {
	ID                              uuid.UUID                  `json:"id"`
	CreatedDate                     time.Time                  `json:"createdDate"`
	ModifiedDate                    time.Time                  `json:"modifiedDate"`
	FacilityID                      uuid.UUID                  `json:"facilityId" validate:"required"`
	ProgramID                       uuid.UUID                  `json:"programId" validate:"required"`
	ProcessingPeriodID              uuid.UUID                  `json:"processingPeriodId" validate:"required"`
	Status                          entities.RequisitionStatus `json:"status"`
	Emergency                       bool                       `json:"emergency"`
	NumberOfMonthsInPeriod          int                        `json:"numberOfMonthsInPeriod,omitempty" validate:"gte=0"`
	SupplyingFacility               *uuid.UUID                 `json:"supplyingFacility,omitempty"`
	SupervisoryNode                 *uuid.UUID                 `json:"supervisoryNode,omitempty"`
	TemplateID                      *uuid.UUID                 `json:"templateId,omitempty"`
	DraftStatusMessage              *string                    `json:"draftStatusMessage,omitempty" validate:"omitempty,max=255"`
	DatePhysicalStockCountCompleted *time.Time                 `json:"datePhysicalStockCountCompleted,omitempty"`
	AvailableNonFullSupplyProducts  []uuid.UUID                `json:"availableNonFullSupplyProducts,omitempty"`
	StockAdjustmentReasons          []StockAdjustmentReasonDto `json:"stockAdjustmentReasons,omitempty"`
	StatusChanges                   []*StatusChangeDto         `json:"statusChanges,omitempty"`
	RequisitionLineItems            []*LineItemDto             `json:"requisitionLineItems" validate:"dive"`
	TotalCost                       *MoneyDto                  `json:"totalCost,omitempty"`
	skipStatusChanges               bool
}

// StockAdjustmentReasonDto is the external representation of an adjustment reason
type StockAdjustmentReasonDto struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ReasonType string    `json:"reasonType"`
}

// NewRequisitionDto exports a requisition into a new dto
func NewRequisitionDto(requisition *entities.Requisition) *RequisitionDto {
	d := &RequisitionDto{}
	requisition.Export(d)
	total := newMoneyDto(requisition.TotalCost())
	d.TotalCost = &total
	return d
}

// NewBasicRequisitionDto exports a requisition without its status history
func NewBasicRequisitionDto(requisition *entities.Requisition) *RequisitionDto {
	d := &RequisitionDto{skipStatusChanges: true}
	requisition.Export(d)
	return d
}

// Verify interface compliance
var (
	_ entities.Exporter = (*RequisitionDto)(nil)
	_ entities.Importer = (*RequisitionDto)(nil)
)

func (d *RequisitionDto) SetID(id uuid.UUID) {
	d.ID = id
}

func (d *RequisitionDto) SetCreatedDate(createdDate time.Time) {
	d.CreatedDate = createdDate
}

func (d *RequisitionDto) SetModifiedDate(modifiedDate time.Time) {
	d.ModifiedDate = modifiedDate
}

func (d *RequisitionDto) SetFacilityID(facilityID uuid.UUID) {
	d.FacilityID = facilityID
}

func (d *RequisitionDto) SetProgramID(programID uuid.UUID) {
	d.ProgramID = programID
}

func (d *RequisitionDto) SetProcessingPeriodID(periodID uuid.UUID) {
	d.ProcessingPeriodID = periodID
}

func (d *RequisitionDto) SetStatus(status entities.RequisitionStatus) {
	d.Status = status
}

func (d *RequisitionDto) SetEmergency(emergency bool) {
	d.Emergency = emergency
}

func (d *RequisitionDto) SetSupplyingFacility(supplyingFacilityID *uuid.UUID) {
	d.SupplyingFacility = supplyingFacilityID
}

func (d *RequisitionDto) SetSupervisoryNode(supervisoryNodeID *uuid.UUID) {
	d.SupervisoryNode = supervisoryNodeID
}

func (d *RequisitionDto) SetTemplateID(templateID *uuid.UUID) {
	d.TemplateID = templateID
}

// SetDraftStatusMessage keeps an empty message as absent
func (d *RequisitionDto) SetDraftStatusMessage(message string) {
	if message == "" {
		d.DraftStatusMessage = nil
		return
	}
	d.DraftStatusMessage = &message
}

func (d *RequisitionDto) SetDatePhysicalStockCountCompleted(date *time.Time) {
	d.DatePhysicalStockCountCompleted = date
}

func (d *RequisitionDto) SetStockAdjustmentReasons(reasons []entities.StockAdjustmentReason) {
	d.StockAdjustmentReasons = make([]StockAdjustmentReasonDto, 0, len(reasons))
	for _, reason := range reasons {
		d.StockAdjustmentReasons = append(d.StockAdjustmentReasons, StockAdjustmentReasonDto{
			ID:         reason.ID,
			Name:       reason.Name,
			ReasonType: reason.ReasonType.String(),
		})
	}
}

func (d *RequisitionDto) ProvideStatusChangeExporter() (entities.StatusChangeExporter, bool) {
	if d.skipStatusChanges {
		return nil, false
	}
	return &StatusChangeDto{}, true
}

func (d *RequisitionDto) AddStatusChange(exporter entities.StatusChangeExporter) {
	if change, ok := exporter.(*StatusChangeDto); ok {
		d.StatusChanges = append(d.StatusChanges, change)
	}
}

func (d *RequisitionDto) ProvideLineItemExporter() (entities.LineItemExporter, bool) {
	return &LineItemDto{}, true
}

func (d *RequisitionDto) AddLineItem(exporter entities.LineItemExporter) {
	if line, ok := exporter.(*LineItemDto); ok {
		d.RequisitionLineItems = append(d.RequisitionLineItems, line)
	}
}

func (d *RequisitionDto) GetID() uuid.UUID {
	return d.ID
}

func (d *RequisitionDto) GetCreatedDate() time.Time {
	return d.CreatedDate
}

func (d *RequisitionDto) GetModifiedDate() time.Time {
	return d.ModifiedDate
}

// GetRequisitionLineItems returns nil when the dto carries no line list, so
// an update leaves the lines alone
func (d *RequisitionDto) GetRequisitionLineItems() []entities.LineItemImporter {
	if d.RequisitionLineItems == nil {
		return nil
	}
	lines := make([]entities.LineItemImporter, 0, len(d.RequisitionLineItems))
	for _, line := range d.RequisitionLineItems {
		lines = append(lines, line)
	}
	return lines
}

func (d *RequisitionDto) GetFacilityID() uuid.UUID {
	return d.FacilityID
}

func (d *RequisitionDto) GetProgramID() uuid.UUID {
	return d.ProgramID
}

func (d *RequisitionDto) GetProcessingPeriodID() uuid.UUID {
	return d.ProcessingPeriodID
}

func (d *RequisitionDto) GetStatus() entities.RequisitionStatus {
	return d.Status
}

func (d *RequisitionDto) GetEmergency() bool {
	return d.Emergency
}

func (d *RequisitionDto) GetSupplyingFacility() *uuid.UUID {
	return d.SupplyingFacility
}

func (d *RequisitionDto) GetSupervisoryNode() *uuid.UUID {
	return d.SupervisoryNode
}

func (d *RequisitionDto) GetDraftStatusMessage() *string {
	return d.DraftStatusMessage
}

func (d *RequisitionDto) GetAvailableNonFullSupplyProducts() []uuid.UUID {
	return d.AvailableNonFullSupplyProducts
}

func (d *RequisitionDto) GetDatePhysicalStockCountCompleted() *time.Time {
	return d.DatePhysicalStockCountCompleted
}

func (d *RequisitionDto) GetNumberOfMonthsInPeriod() int {
	return d.NumberOfMonthsInPeriod
}
