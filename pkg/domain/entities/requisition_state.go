package entities

import (
	"time"

	"github.com/google/uuid"
)

// ID returns the requisition id
func (r *Requisition) ID() uuid.UUID {
	return r.id
}

func (r *Requisition) CreatedDate() time.Time {
	return r.createdDate
}

func (r *Requisition) ModifiedDate() time.Time {
	return r.modifiedDate
}

func (r *Requisition) FacilityID() uuid.UUID {
	return r.facilityID
}

func (r *Requisition) ProgramID() uuid.UUID {
	return r.programID
}

func (r *Requisition) ProcessingPeriodID() uuid.UUID {
	return r.processingPeriodID
}

// Status returns the current workflow status
func (r *Requisition) Status() RequisitionStatus {
	return r.status
}

func (r *Requisition) Emergency() bool {
	return r.emergency
}

func (r *Requisition) NumberOfMonthsInPeriod() int {
	return r.numberOfMonthsInPeriod
}

func (r *Requisition) DraftStatusMessage() string {
	return r.draftStatusMessage
}

// Template returns the column configuration set at initiation
func (r *Requisition) Template() *RequisitionTemplate {
	return r.template
}

func (r *Requisition) Currency() Currency {
	return r.currency
}

// SupervisoryNodeID returns the node the requisition waits on, or nil
func (r *Requisition) SupervisoryNodeID() *uuid.UUID {
	return copyID(r.supervisoryNodeID)
}

// SupplyingFacilityID returns the facility that fulfils the order, or nil
func (r *Requisition) SupplyingFacilityID() *uuid.UUID {
	return copyID(r.supplyingFacilityID)
}

func (r *Requisition) DatePhysicalStockCountCompleted() *time.Time {
	return copyTime(r.datePhysicalStockCountCompleted)
}

// LineItems returns the owned lines in order. The lines themselves are shared.
func (r *Requisition) LineItems() []*RequisitionLineItem {
	lines := make([]*RequisitionLineItem, len(r.lineItems))
	copy(lines, r.lineItems)
	return lines
}

// StatusChanges returns a copy of the audit trail in append order
func (r *Requisition) StatusChanges() []StatusChange {
	return append([]StatusChange(nil), r.statusChanges...)
}

// AvailableProducts returns the products usable for non-full supply lines
func (r *Requisition) AvailableProducts() []uuid.UUID {
	return append([]uuid.UUID(nil), r.availableProducts...)
}

func (r *Requisition) StockAdjustmentReasons() []StockAdjustmentReason {
	return append([]StockAdjustmentReason(nil), r.stockAdjustmentReasons...)
}

// PreviousRequisitionIDs returns the previous requisitions, most recent first
func (r *Requisition) PreviousRequisitionIDs() []uuid.UUID {
	return append([]uuid.UUID(nil), r.previousRequisitionIDs...)
}

func (r *Requisition) PermissionStrings() []PermissionString {
	return append([]PermissionString(nil), r.permissionStrings...)
}

// Export writes the requisition into the exporter
func (r *Requisition) Export(exporter Exporter) {
	exporter.SetID(r.id)
	exporter.SetCreatedDate(r.createdDate)
	exporter.SetModifiedDate(r.modifiedDate)
	exporter.SetFacilityID(r.facilityID)
	exporter.SetProgramID(r.programID)
	exporter.SetProcessingPeriodID(r.processingPeriodID)
	exporter.SetStatus(r.status)
	if _, ok := exporter.ProvideStatusChangeExporter(); ok {
		for _, change := range r.statusChanges {
			changeExporter, _ := exporter.ProvideStatusChangeExporter()
			change.Export(changeExporter)
			exporter.AddStatusChange(changeExporter)
		}
	}
	if _, ok := exporter.ProvideLineItemExporter(); ok {
		for _, line := range r.lineItems {
			lineExporter, _ := exporter.ProvideLineItemExporter()
			line.Export(lineExporter)
			exporter.AddLineItem(lineExporter)
		}
	}
	exporter.SetEmergency(r.emergency)
	exporter.SetSupplyingFacility(copyID(r.supplyingFacilityID))
	exporter.SetSupervisoryNode(copyID(r.supervisoryNodeID))
	if r.template != nil {
		templateID := r.template.ID
		exporter.SetTemplateID(&templateID)
	}
	exporter.SetDraftStatusMessage(r.draftStatusMessage)
	exporter.SetDatePhysicalStockCountCompleted(copyTime(r.datePhysicalStockCountCompleted))
	exporter.SetStockAdjustmentReasons(r.StockAdjustmentReasons())
}

// NewRequisitionFromImporter builds a requisition from external input. It is
// used both to create requisitions and as the source of UpdateFrom.
func NewRequisitionFromImporter(importer Importer, opts ...Option) *Requisition {
	id := importer.GetID()
	if id != uuid.Nil {
		opts = append([]Option{WithID(id)}, opts...)
	}

	r := NewRequisition(
		importer.GetFacilityID(),
		importer.GetProgramID(),
		importer.GetProcessingPeriodID(),
		importer.GetStatus(),
		importer.GetEmergency(),
		opts...,
	)
	if created := importer.GetCreatedDate(); !created.IsZero() {
		r.createdDate = created
	}
	r.modifiedDate = importer.GetModifiedDate()
	r.numberOfMonthsInPeriod = importer.GetNumberOfMonthsInPeriod()
	r.supplyingFacilityID = copyID(importer.GetSupplyingFacility())
	r.supervisoryNodeID = copyID(importer.GetSupervisoryNode())
	if message := importer.GetDraftStatusMessage(); message != nil {
		r.draftStatusMessage = *message
	}
	r.availableProducts = uniqueIDs(importer.GetAvailableNonFullSupplyProducts())
	r.datePhysicalStockCountCompleted = copyTime(importer.GetDatePhysicalStockCountCompleted())

	if lines := importer.GetRequisitionLineItems(); lines != nil {
		r.lineItems = make([]*RequisitionLineItem, 0, len(lines))
		for _, lineImporter := range lines {
			line := NewLineItemFromImporter(lineImporter)
			line.RequisitionID = r.id
			r.lineItems = append(r.lineItems, line)
		}
	}
	return r
}

// RequisitionState is the complete persisted state of a requisition
type RequisitionState struct {
	ID                              uuid.UUID
	CreatedDate                     time.Time
	ModifiedDate                    time.Time
	FacilityID                      uuid.UUID
	ProgramID                       uuid.UUID
	ProcessingPeriodID              uuid.UUID
	Status                          RequisitionStatus
	Emergency                       bool
	NumberOfMonthsInPeriod          int
	SupervisoryNodeID               *uuid.UUID
	SupplyingFacilityID             *uuid.UUID
	DatePhysicalStockCountCompleted *time.Time
	DraftStatusMessage              string
	Template                        *RequisitionTemplate
	LineItems                       []*RequisitionLineItem
	StatusChanges                   []StatusChange
	AvailableProducts               []uuid.UUID
	StockAdjustmentReasons          []StockAdjustmentReason
	PreviousRequisitionIDs          []uuid.UUID
	Currency                        Currency
}

// State returns a deep copy of the requisition's state for storage
func (r *Requisition) State() RequisitionState {
	lines := make([]*RequisitionLineItem, 0, len(r.lineItems))
	for _, line := range r.lineItems {
		lines = append(lines, line.Clone())
	}
	return RequisitionState{
		ID:                              r.id,
		CreatedDate:                     r.createdDate,
		ModifiedDate:                    r.modifiedDate,
		FacilityID:                      r.facilityID,
		ProgramID:                       r.programID,
		ProcessingPeriodID:              r.processingPeriodID,
		Status:                          r.status,
		Emergency:                       r.emergency,
		NumberOfMonthsInPeriod:          r.numberOfMonthsInPeriod,
		SupervisoryNodeID:               copyID(r.supervisoryNodeID),
		SupplyingFacilityID:             copyID(r.supplyingFacilityID),
		DatePhysicalStockCountCompleted: copyTime(r.datePhysicalStockCountCompleted),
		DraftStatusMessage:              r.draftStatusMessage,
		Template:                        r.template,
		LineItems:                       lines,
		StatusChanges:                   r.StatusChanges(),
		AvailableProducts:               r.AvailableProducts(),
		StockAdjustmentReasons:          r.StockAdjustmentReasons(),
		PreviousRequisitionIDs:          r.PreviousRequisitionIDs(),
		Currency:                        r.currency,
	}
}

// RestoreRequisition rebuilds a requisition from stored state
func RestoreRequisition(state RequisitionState, opts ...Option) *Requisition {
	currency := state.Currency
	if currency.Code == "" {
		currency = DefaultCurrency
	}
	opts = append([]Option{WithID(state.ID), WithCurrency(currency)}, opts...)

	r := NewRequisition(state.FacilityID, state.ProgramID, state.ProcessingPeriodID, state.Status, state.Emergency, opts...)
	r.createdDate = state.CreatedDate
	r.modifiedDate = state.ModifiedDate
	r.numberOfMonthsInPeriod = state.NumberOfMonthsInPeriod
	r.supervisoryNodeID = copyID(state.SupervisoryNodeID)
	r.supplyingFacilityID = copyID(state.SupplyingFacilityID)
	r.datePhysicalStockCountCompleted = copyTime(state.DatePhysicalStockCountCompleted)
	r.draftStatusMessage = state.DraftStatusMessage
	r.template = state.Template
	r.lineItems = make([]*RequisitionLineItem, 0, len(state.LineItems))
	for _, line := range state.LineItems {
		r.lineItems = append(r.lineItems, line.Clone())
	}
	r.statusChanges = append([]StatusChange(nil), state.StatusChanges...)
	r.availableProducts = append([]uuid.UUID(nil), state.AvailableProducts...)
	r.stockAdjustmentReasons = append([]StockAdjustmentReason(nil), state.StockAdjustmentReasons...)
	r.previousRequisitionIDs = append([]uuid.UUID(nil), state.PreviousRequisitionIDs...)
	return r
}

// Clone returns an independent copy sharing only the template
func (r *Requisition) Clone() *Requisition {
	return RestoreRequisition(r.State(), WithClock(r.clock))
}
