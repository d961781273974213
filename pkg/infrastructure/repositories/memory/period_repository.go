package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
	"github.com/vsinha/requisition/pkg/domain/repositories"
)

type assignmentKey struct {
	programID  uuid.UUID
	facilityID uuid.UUID
}

// ScheduleRepository provides in-memory schedules and their assignment to
// program/facility pairs
type ScheduleRepository struct {
	mu          sync.RWMutex
	schedules   map[uuid.UUID]entities.ProcessingSchedule
	assignments map[assignmentKey][]uuid.UUID
}

// NewScheduleRepository creates a new in-memory schedule repository
func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{
		schedules:   make(map[uuid.UUID]entities.ProcessingSchedule),
		assignments: make(map[assignmentKey][]uuid.UUID),
	}
}

// Verify interface compliance
var _ repositories.ScheduleRepository = (*ScheduleRepository)(nil)

// AddSchedule stores a schedule
func (r *ScheduleRepository) AddSchedule(schedule entities.ProcessingSchedule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[schedule.ID] = schedule
}

// Assign makes the schedule apply to a program at a facility
func (r *ScheduleRepository) Assign(programID, facilityID, scheduleID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := assignmentKey{programID: programID, facilityID: facilityID}
	r.assignments[key] = append(r.assignments[key], scheduleID)
}

// FindByID returns a schedule
func (r *ScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ProcessingSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schedule, ok := r.schedules[id]
	if !ok {
		return nil, fmt.Errorf("schedule %s: %w", id, repositories.ErrNotFound)
	}
	return &schedule, nil
}

// SearchByProgramAndFacility returns the assigned schedules in assignment order
func (r *ScheduleRepository) SearchByProgramAndFacility(ctx context.Context, programID, facilityID uuid.UUID) ([]*entities.ProcessingSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.assignments[assignmentKey{programID: programID, facilityID: facilityID}]
	result := make([]*entities.ProcessingSchedule, 0, len(ids))
	for _, id := range ids {
		if schedule, ok := r.schedules[id]; ok {
			s := schedule
			result = append(result, &s)
		}
	}
	return result, nil
}

// PeriodRepository provides in-memory processing periods
type PeriodRepository struct {
	mu        sync.RWMutex
	periods   map[uuid.UUID]entities.ProcessingPeriod
	schedules *ScheduleRepository
}

// NewPeriodRepository creates a period repository resolving program/facility
// lookups through the schedule assignments
func NewPeriodRepository(schedules *ScheduleRepository) *PeriodRepository {
	return &PeriodRepository{
		periods:   make(map[uuid.UUID]entities.ProcessingPeriod),
		schedules: schedules,
	}
}

// Verify interface compliance
var _ repositories.PeriodRepository = (*PeriodRepository)(nil)

// AddPeriod stores a period
func (r *PeriodRepository) AddPeriod(period entities.ProcessingPeriod) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.periods[period.ID] = period
}

// LoadPeriods stores several periods
func (r *PeriodRepository) LoadPeriods(periods []*entities.ProcessingPeriod) error {
	for _, period := range periods {
		if period == nil {
			return fmt.Errorf("cannot load nil period")
		}
		r.AddPeriod(*period)
	}
	return nil
}

// FindByID returns a period
func (r *PeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ProcessingPeriod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	period, ok := r.periods[id]
	if !ok {
		return nil, fmt.Errorf("period %s: %w", id, repositories.ErrNotFound)
	}
	return &period, nil
}

// SearchBySchedule returns the schedule's periods starting on or before startDate
func (r *PeriodRepository) SearchBySchedule(ctx context.Context, scheduleID uuid.UUID, startDate time.Time) ([]*entities.ProcessingPeriod, error) {
	return r.collect(func(p entities.ProcessingPeriod) bool {
		return p.ScheduleID == scheduleID && !p.StartDate.After(startDate)
	}), nil
}

// SearchByProgramAndFacility returns the periods of every assigned schedule
func (r *PeriodRepository) SearchByProgramAndFacility(ctx context.Context, programID, facilityID uuid.UUID) ([]*entities.ProcessingPeriod, error) {
	schedules, err := r.schedules.SearchByProgramAndFacility(ctx, programID, facilityID)
	if err != nil {
		return nil, err
	}
	assigned := make(map[uuid.UUID]struct{}, len(schedules))
	for _, schedule := range schedules {
		assigned[schedule.ID] = struct{}{}
	}
	return r.collect(func(p entities.ProcessingPeriod) bool {
		_, ok := assigned[p.ScheduleID]
		return ok
	}), nil
}

func (r *PeriodRepository) collect(keep func(entities.ProcessingPeriod) bool) []*entities.ProcessingPeriod {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*entities.ProcessingPeriod, 0)
	for _, period := range r.periods {
		if keep(period) {
			p := period
			result = append(result, &p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result
}
