package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

// StatusChangeDto is the external representation of one status change
type StatusChangeDto struct {
	ID          uuid.UUID                  `json:"id"`
	AuthorID    *uuid.UUID                 `json:"authorId,omitempty"`
	Status      entities.RequisitionStatus `json:"status"`
	CreatedDate time.Time                  `json:"createdDate"`
}

// Verify interface compliance
var _ entities.StatusChangeExporter = (*StatusChangeDto)(nil)

func (d *StatusChangeDto) SetID(id uuid.UUID) {
	d.ID = id
}

func (d *StatusChangeDto) SetAuthorID(authorID *uuid.UUID) {
	d.AuthorID = authorID
}

func (d *StatusChangeDto) SetStatus(status entities.RequisitionStatus) {
	d.Status = status
}

func (d *StatusChangeDto) SetCreatedDate(createdDate time.Time) {
	d.CreatedDate = createdDate
}
