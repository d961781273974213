package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

// RequisitionSearchParams filters requisitions. Zero values match everything.
type RequisitionSearchParams struct {
	FacilityID         uuid.UUID
	ProgramID          uuid.UUID
	ProcessingPeriodID uuid.UUID
	Emergency          *bool
	Statuses           []entities.RequisitionStatus
}

// RequisitionRepository stores requisition aggregates
type RequisitionRepository interface {
	Save(ctx context.Context, requisition *entities.Requisition) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Requisition, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// SearchByProcessingPeriodAndType returns the requisitions of a
	// facility/program for a period, oldest first.
	SearchByProcessingPeriodAndType(ctx context.Context, facilityID, programID, periodID uuid.UUID, emergency bool) ([]*entities.Requisition, error)

	// GetLastRegularRequisition returns the most recently created regular
	// requisition of a facility/program, or nil when there is none.
	GetLastRegularRequisition(ctx context.Context, facilityID, programID uuid.UUID) (*entities.Requisition, error)

	Search(ctx context.Context, params RequisitionSearchParams) ([]*entities.Requisition, error)
}
