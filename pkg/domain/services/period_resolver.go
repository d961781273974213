package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
	"github.com/vsinha/requisition/pkg/domain/repositories"
)

// PeriodResolver decides which processing period a requisition may be initiated for
type PeriodResolver struct {
	periods      repositories.PeriodRepository
	schedules    repositories.ScheduleRepository
	requisitions repositories.RequisitionRepository
	now          func() time.Time
}

// NewPeriodResolver creates a resolver reading the current date from now.
// A nil now uses time.Now.
func NewPeriodResolver(
	periods repositories.PeriodRepository,
	schedules repositories.ScheduleRepository,
	requisitions repositories.RequisitionRepository,
	now func() time.Time,
) *PeriodResolver {
	if now == nil {
		now = time.Now
	}
	return &PeriodResolver{
		periods:      periods,
		schedules:    schedules,
		requisitions: requisitions,
		now:          now,
	}
}

// FindPreviousPeriod returns the latest period of the same schedule that
// starts before the given one, or nil.
func (pr *PeriodResolver) FindPreviousPeriod(ctx context.Context, periodID uuid.UUID) (*entities.ProcessingPeriod, error) {
	period, err := pr.periods.FindByID(ctx, periodID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load period %s: %w", periodID, err)
	}

	candidates, err := pr.periods.SearchBySchedule(ctx, period.ScheduleID, period.StartDate)
	if err != nil {
		return nil, fmt.Errorf("failed to search periods of schedule %s: %w", period.ScheduleID, err)
	}

	earlier := make([]*entities.ProcessingPeriod, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID != periodID {
			earlier = append(earlier, candidate)
		}
	}
	if len(earlier) == 0 {
		return nil, nil
	}

	sort.SliceStable(earlier, func(i, j int) bool {
		return earlier[i].StartDate.After(earlier[j].StartDate)
	})
	return earlier[0], nil
}

// FindPreviousPeriods walks back from a period and returns up to n earlier
// periods, most recent first.
func (pr *PeriodResolver) FindPreviousPeriods(ctx context.Context, periodID uuid.UUID, n int) ([]*entities.ProcessingPeriod, error) {
	result := make([]*entities.ProcessingPeriod, 0, n)
	current := periodID
	for len(result) < n {
		previous, err := pr.FindPreviousPeriod(ctx, current)
		if err != nil {
			return nil, err
		}
		if previous == nil {
			break
		}
		result = append(result, previous)
		current = previous.ID
	}
	return result, nil
}

// GetCurrentPeriods returns the periods containing today whose regular
// requisitions exist and are all at least submitted.
func (pr *PeriodResolver) GetCurrentPeriods(ctx context.Context, programID, facilityID uuid.UUID) ([]*entities.ProcessingPeriod, error) {
	periods, err := pr.periods.SearchByProgramAndFacility(ctx, programID, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to search periods: %w", err)
	}

	today := pr.now()
	current := make([]*entities.ProcessingPeriod, 0)
	for _, period := range periods {
		if !period.Contains(today) {
			continue
		}

		requisitions, err := pr.requisitions.SearchByProcessingPeriodAndType(ctx, facilityID, programID, period.ID, false)
		if err != nil {
			return nil, fmt.Errorf("failed to search requisitions of period %s: %w", period.ID, err)
		}
		if len(requisitions) == 0 {
			continue
		}

		allSubmitted := true
		for _, requisition := range requisitions {
			if !requisition.IsPostSubmitted() {
				allSubmitted = false
				break
			}
		}
		if allSubmitted {
			current = append(current, period)
		}
	}
	return current, nil
}

// GetPeriods lists the periods a requisition could be initiated for. Emergency
// requisitions use the current periods; regular ones every period whose
// first regular requisition is missing or not yet authorized.
func (pr *PeriodResolver) GetPeriods(ctx context.Context, programID, facilityID uuid.UUID, emergency bool) ([]*entities.ProcessingPeriod, error) {
	if emergency {
		return pr.GetCurrentPeriods(ctx, programID, facilityID)
	}

	periods, err := pr.periods.SearchByProgramAndFacility(ctx, programID, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to search periods: %w", err)
	}

	result := make([]*entities.ProcessingPeriod, 0, len(periods))
	for _, period := range periods {
		requisitions, err := pr.requisitions.SearchByProcessingPeriodAndType(ctx, facilityID, programID, period.ID, false)
		if err != nil {
			return nil, fmt.Errorf("failed to search requisitions of period %s: %w", period.ID, err)
		}
		if len(requisitions) > 0 {
			status := requisitions[0].Status()
			if status != entities.Initiated && status != entities.Submitted {
				continue
			}
		}
		result = append(result, period)
	}
	return result, nil
}

// FindTheOldestPeriod returns the first period without a regular requisition,
// or nil. It fails while the last regular requisition is not yet authorized.
func (pr *PeriodResolver) FindTheOldestPeriod(ctx context.Context, programID, facilityID uuid.UUID) (*entities.ProcessingPeriod, error) {
	last, err := pr.requisitions.GetLastRegularRequisition(ctx, facilityID, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load last regular requisition: %w", err)
	}
	if last != nil && last.IsPreAuthorize() {
		return nil, fmt.Errorf("%w: requisition %s is %s", entities.ErrUnfinishedPriorRequisition, last.ID(), last.Status())
	}

	periods, err := pr.periods.SearchByProgramAndFacility(ctx, programID, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to search periods: %w", err)
	}

	for _, period := range periods {
		requisitions, err := pr.requisitions.SearchByProcessingPeriodAndType(ctx, facilityID, programID, period.ID, false)
		if err != nil {
			return nil, fmt.Errorf("failed to search requisitions of period %s: %w", period.ID, err)
		}
		if len(requisitions) == 0 {
			return period, nil
		}
	}
	return nil, nil
}

// FindPeriod resolves the period a new requisition must be initiated for. A
// non-nil suggestedPeriodID must match the resolved period.
func (pr *PeriodResolver) FindPeriod(
	ctx context.Context,
	programID, facilityID uuid.UUID,
	suggestedPeriodID *uuid.UUID,
	emergency bool,
) (*entities.ProcessingPeriod, error) {
	var period *entities.ProcessingPeriod
	if emergency {
		current, err := pr.GetCurrentPeriods(ctx, programID, facilityID)
		if err != nil {
			return nil, err
		}
		if len(current) == 0 {
			return nil, fmt.Errorf("%w: cannot find current period", entities.ErrInvalidPeriod)
		}
		period = current[0]
	} else {
		oldest, err := pr.FindTheOldestPeriod(ctx, programID, facilityID)
		if err != nil {
			return nil, err
		}
		period = oldest
	}

	if period == nil || (suggestedPeriodID != nil && *suggestedPeriodID != period.ID) {
		return nil, fmt.Errorf("%w: period should be the oldest and not associated with any requisitions",
			entities.ErrInvalidPeriod)
	}

	schedules, err := pr.schedules.SearchByProgramAndFacility(ctx, programID, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to search schedules: %w", err)
	}
	if len(schedules) == 0 {
		return nil, fmt.Errorf("%w: program %s and facility %s", entities.ErrMissingScheduleConfiguration, programID, facilityID)
	}
	if schedules[0].ID != period.ScheduleID {
		return nil, fmt.Errorf("%w: period %s does not belong to schedule %s",
			entities.ErrInvalidPeriod, period.Name, schedules[0].Code)
	}
	return period, nil
}
