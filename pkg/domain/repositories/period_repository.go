package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

// PeriodRepository provides access to processing periods
type PeriodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ProcessingPeriod, error)

	// SearchBySchedule returns the schedule's periods starting on or before startDate
	SearchBySchedule(ctx context.Context, scheduleID uuid.UUID, startDate time.Time) ([]*entities.ProcessingPeriod, error)

	// SearchByProgramAndFacility returns the periods of the schedule assigned
	// to the program/facility, ordered by start date.
	SearchByProgramAndFacility(ctx context.Context, programID, facilityID uuid.UUID) ([]*entities.ProcessingPeriod, error)
}

// ScheduleRepository provides access to processing schedules
type ScheduleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ProcessingSchedule, error)
	SearchByProgramAndFacility(ctx context.Context, programID, facilityID uuid.UUID) ([]*entities.ProcessingSchedule, error)
}
