package entities

import (
	"time"

	"github.com/google/uuid"
)

// StatusChange is an immutable audit record of a status transition
type StatusChange struct {
	ID            uuid.UUID
	RequisitionID uuid.UUID
	AuthorID      *uuid.UUID
	Status        RequisitionStatus
	CreatedDate   time.Time
}

// StatusChangeExporter receives the fields of one status change
type StatusChangeExporter interface {
	SetID(id uuid.UUID)
	SetAuthorID(authorID *uuid.UUID)
	SetStatus(status RequisitionStatus)
	SetCreatedDate(createdDate time.Time)
}

func newStatusChange(requisitionID uuid.UUID, author uuid.UUID, status RequisitionStatus, now time.Time) StatusChange {
	change := StatusChange{
		ID:            uuid.New(),
		RequisitionID: requisitionID,
		Status:        status,
		CreatedDate:   now,
	}
	if author != uuid.Nil {
		a := author
		change.AuthorID = &a
	}
	return change
}

// Export writes the status change into the exporter
func (c StatusChange) Export(exporter StatusChangeExporter) {
	exporter.SetID(c.ID)
	exporter.SetAuthorID(c.AuthorID)
	exporter.SetStatus(c.Status)
	exporter.SetCreatedDate(c.CreatedDate)
}
