package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

const (
	RequisitionInitiatedEvent     = "requisition.initiated"
	RequisitionStatusChangedEvent = "requisition.status_changed"
	RequisitionUpdatedEvent       = "requisition.updated"
	RequisitionDeletedEvent       = "requisition.deleted"
)

// RequisitionRef identifies the requisition an event belongs to
type RequisitionRef struct {
	RequisitionID      uuid.UUID `json:"requisition_id"`
	FacilityID         uuid.UUID `json:"facility_id"`
	ProgramID          uuid.UUID `json:"program_id"`
	ProcessingPeriodID uuid.UUID `json:"processing_period_id"`
	Emergency          bool      `json:"emergency"`
}

type RequisitionInitiated struct {
	Requisition RequisitionRef `json:"requisition"`
	LineItems   int            `json:"line_items"`
	InitiatorID uuid.UUID      `json:"initiator_id"`
}

type RequisitionStatusChanged struct {
	Requisition RequisitionRef             `json:"requisition"`
	From        entities.RequisitionStatus `json:"from"`
	To          entities.RequisitionStatus `json:"to"`
	AuthorID    *uuid.UUID                 `json:"author_id,omitempty"`
}

type RequisitionUpdated struct {
	Requisition RequisitionRef `json:"requisition"`
	LineItems   int            `json:"line_items"`
}

type RequisitionDeleted struct {
	Requisition RequisitionRef             `json:"requisition"`
	Status      entities.RequisitionStatus `json:"status"`
}

func newRequisitionRef(r *entities.Requisition) RequisitionRef {
	return RequisitionRef{
		RequisitionID:      r.ID(),
		FacilityID:         r.FacilityID(),
		ProgramID:          r.ProgramID(),
		ProcessingPeriodID: r.ProcessingPeriodID(),
		Emergency:          r.Emergency(),
	}
}

// StreamID is the event stream of a requisition
func StreamID(requisitionID uuid.UUID) string {
	return "requisition-" + requisitionID.String()
}

func NewRequisitionInitiatedEvent(r *entities.Requisition, initiatorID uuid.UUID) Event {
	return NewEvent(RequisitionInitiatedEvent, StreamID(r.ID()), RequisitionInitiated{
		Requisition: newRequisitionRef(r),
		LineItems:   len(r.LineItems()),
		InitiatorID: initiatorID,
	}, r.CreatedDate())
}

// NewRequisitionStatusChangedEvent records the move from one status to the
// requisition's latest status change
func NewRequisitionStatusChangedEvent(r *entities.Requisition, from entities.RequisitionStatus) Event {
	data := RequisitionStatusChanged{
		Requisition: newRequisitionRef(r),
		From:        from,
		To:          r.Status(),
	}
	at := time.Now()
	if latest := r.LatestStatusChange(); latest != nil {
		data.AuthorID = latest.AuthorID
		at = latest.CreatedDate
	}
	return NewEvent(RequisitionStatusChangedEvent, StreamID(r.ID()), data, at)
}

func NewRequisitionUpdatedEvent(r *entities.Requisition) Event {
	return NewEvent(RequisitionUpdatedEvent, StreamID(r.ID()), RequisitionUpdated{
		Requisition: newRequisitionRef(r),
		LineItems:   len(r.LineItems()),
	}, r.ModifiedDate())
}

func NewRequisitionDeletedEvent(r *entities.Requisition, at time.Time) Event {
	return NewEvent(RequisitionDeletedEvent, StreamID(r.ID()), RequisitionDeleted{
		Requisition: newRequisitionRef(r),
		Status:      r.Status(),
	}, at)
}
