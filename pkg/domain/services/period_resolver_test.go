package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
	"github.com/vsinha/requisition/pkg/infrastructure/repositories/memory"
)

type resolverFixture struct {
	resolver     *PeriodResolver
	requisitions *memory.RequisitionRepository
	schedules    *memory.ScheduleRepository
	periods      []*entities.ProcessingPeriod
	schedule     entities.ProcessingSchedule
	programID    uuid.UUID
	facilityID   uuid.UUID
}

// newResolverFixture creates monthly periods January to April 2025 with
// today in March
func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()
	f := &resolverFixture{
		requisitions: memory.NewRequisitionRepository(),
		schedules:    memory.NewScheduleRepository(),
		schedule:     entities.ProcessingSchedule{ID: uuid.New(), Code: "SCH001", Name: "Monthly"},
		programID:    uuid.New(),
		facilityID:   uuid.New(),
	}
	f.schedules.AddSchedule(f.schedule)
	f.schedules.Assign(f.programID, f.facilityID, f.schedule.ID)

	periodRepo := memory.NewPeriodRepository(f.schedules)
	for month := time.January; month <= time.April; month++ {
		start := time.Date(2025, month, 1, 0, 0, 0, 0, time.UTC)
		p, err := entities.NewProcessingPeriod(month.String()+"2025", f.schedule.ID, start, start.AddDate(0, 1, -1), 1)
		if err != nil {
			t.Fatalf("Failed to create period: %v", err)
		}
		periodRepo.AddPeriod(*p)
		f.periods = append(f.periods, p)
	}

	today := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	f.resolver = NewPeriodResolver(periodRepo, f.schedules, f.requisitions, func() time.Time { return today })
	return f
}

func (f *resolverFixture) addRequisition(t *testing.T, period *entities.ProcessingPeriod, status entities.RequisitionStatus, emergency bool) {
	t.Helper()
	r := entities.NewRequisition(f.facilityID, f.programID, period.ID, status, emergency)
	if err := f.requisitions.Save(context.Background(), r); err != nil {
		t.Fatalf("Failed to save requisition: %v", err)
	}
}

func TestPeriodResolver_FindPreviousPeriod(t *testing.T) {
	ctx := context.Background()
	f := newResolverFixture(t)

	previous, err := f.resolver.FindPreviousPeriod(ctx, f.periods[2].ID)
	if err != nil {
		t.Fatalf("FindPreviousPeriod failed: %v", err)
	}
	if previous == nil || previous.ID != f.periods[1].ID {
		t.Errorf("Expected February as previous period, got %v", previous)
	}

	first, err := f.resolver.FindPreviousPeriod(ctx, f.periods[0].ID)
	if err != nil || first != nil {
		t.Errorf("Expected no period before January, got %v, %v", first, err)
	}

	unknown, err := f.resolver.FindPreviousPeriod(ctx, uuid.New())
	if err != nil || unknown != nil {
		t.Errorf("Expected nil for unknown period, got %v, %v", unknown, err)
	}

	chain, err := f.resolver.FindPreviousPeriods(ctx, f.periods[3].ID, 5)
	if err != nil {
		t.Fatalf("FindPreviousPeriods failed: %v", err)
	}
	if len(chain) != 3 || chain[0].ID != f.periods[2].ID || chain[2].ID != f.periods[0].ID {
		t.Errorf("Expected March, February, January, got %d periods", len(chain))
	}
}

func TestPeriodResolver_GetCurrentPeriods(t *testing.T) {
	ctx := context.Background()
	march := 2

	testCases := []struct {
		name     string
		statuses []entities.RequisitionStatus
		expected int
	}{
		{"no requisition", nil, 0},
		{"initiated requisition", []entities.RequisitionStatus{entities.Initiated}, 0},
		{"submitted requisition", []entities.RequisitionStatus{entities.Submitted}, 1},
		{"approved requisition", []entities.RequisitionStatus{entities.Approved}, 1},
		{"one of two still initiated", []entities.RequisitionStatus{entities.Authorized, entities.Initiated}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newResolverFixture(t)
			for _, status := range tc.statuses {
				f.addRequisition(t, f.periods[march], status, false)
			}
			// a submitted requisition outside today's window never counts
			f.addRequisition(t, f.periods[0], entities.Submitted, false)

			current, err := f.resolver.GetCurrentPeriods(ctx, f.programID, f.facilityID)
			if err != nil {
				t.Fatalf("GetCurrentPeriods failed: %v", err)
			}
			if len(current) != tc.expected {
				t.Fatalf("Expected %d current periods, got %d", tc.expected, len(current))
			}
			if tc.expected == 1 && current[0].ID != f.periods[march].ID {
				t.Errorf("Expected March as current period, got %s", current[0].Name)
			}
		})
	}
}

func TestPeriodResolver_FindTheOldestPeriod(t *testing.T) {
	ctx := context.Background()
	f := newResolverFixture(t)

	oldest, err := f.resolver.FindTheOldestPeriod(ctx, f.programID, f.facilityID)
	if err != nil {
		t.Fatalf("FindTheOldestPeriod failed: %v", err)
	}
	if oldest == nil || oldest.ID != f.periods[0].ID {
		t.Fatalf("Expected January, got %v", oldest)
	}

	f.addRequisition(t, f.periods[0], entities.Approved, false)
	f.addRequisition(t, f.periods[1], entities.Initiated, true)

	oldest, err = f.resolver.FindTheOldestPeriod(ctx, f.programID, f.facilityID)
	if err != nil {
		t.Fatalf("FindTheOldestPeriod failed: %v", err)
	}
	if oldest == nil || oldest.ID != f.periods[1].ID {
		t.Errorf("Expected February since emergency requisitions do not count, got %v", oldest)
	}
}

func TestPeriodResolver_FindTheOldestPeriodBlockedByOpenRequisition(t *testing.T) {
	ctx := context.Background()
	f := newResolverFixture(t)
	f.addRequisition(t, f.periods[0], entities.Submitted, false)

	_, err := f.resolver.FindTheOldestPeriod(ctx, f.programID, f.facilityID)
	if !errors.Is(err, entities.ErrUnfinishedPriorRequisition) {
		t.Fatalf("Expected ErrUnfinishedPriorRequisition, got %v", err)
	}
}

func TestPeriodResolver_FindPeriod(t *testing.T) {
	ctx := context.Background()

	t.Run("regular resolves the oldest period", func(t *testing.T) {
		f := newResolverFixture(t)
		period, err := f.resolver.FindPeriod(ctx, f.programID, f.facilityID, nil, false)
		if err != nil {
			t.Fatalf("FindPeriod failed: %v", err)
		}
		if period.ID != f.periods[0].ID {
			t.Errorf("Expected January, got %s", period.Name)
		}
	})

	t.Run("suggested period must match", func(t *testing.T) {
		f := newResolverFixture(t)
		suggested := f.periods[1].ID
		_, err := f.resolver.FindPeriod(ctx, f.programID, f.facilityID, &suggested, false)
		if !errors.Is(err, entities.ErrInvalidPeriod) {
			t.Errorf("Expected ErrInvalidPeriod, got %v", err)
		}

		matching := f.periods[0].ID
		if _, err := f.resolver.FindPeriod(ctx, f.programID, f.facilityID, &matching, false); err != nil {
			t.Errorf("Expected matching suggestion to succeed, got %v", err)
		}
	})

	t.Run("emergency needs a current period", func(t *testing.T) {
		f := newResolverFixture(t)
		_, err := f.resolver.FindPeriod(ctx, f.programID, f.facilityID, nil, true)
		if !errors.Is(err, entities.ErrInvalidPeriod) {
			t.Fatalf("Expected ErrInvalidPeriod, got %v", err)
		}

		f.addRequisition(t, f.periods[2], entities.Authorized, false)
		period, err := f.resolver.FindPeriod(ctx, f.programID, f.facilityID, nil, true)
		if err != nil {
			t.Fatalf("FindPeriod failed: %v", err)
		}
		if period.ID != f.periods[2].ID {
			t.Errorf("Expected March, got %s", period.Name)
		}
	})

	t.Run("every period processed", func(t *testing.T) {
		f := newResolverFixture(t)
		for _, p := range f.periods {
			f.addRequisition(t, p, entities.Released, false)
		}
		_, err := f.resolver.FindPeriod(ctx, f.programID, f.facilityID, nil, false)
		if !errors.Is(err, entities.ErrInvalidPeriod) {
			t.Errorf("Expected ErrInvalidPeriod, got %v", err)
		}
	})

	t.Run("schedule must match the assignment", func(t *testing.T) {
		f := newResolverFixture(t)
		other := entities.ProcessingSchedule{ID: uuid.New(), Code: "SCH002"}
		f.schedules.AddSchedule(other)
		otherProgram := uuid.New()
		// the first assigned schedule has no periods
		f.schedules.Assign(otherProgram, f.facilityID, other.ID)
		f.schedules.Assign(otherProgram, f.facilityID, f.schedule.ID)

		_, err := f.resolver.FindPeriod(ctx, otherProgram, f.facilityID, nil, false)
		if !errors.Is(err, entities.ErrInvalidPeriod) {
			t.Errorf("Expected ErrInvalidPeriod, got %v", err)
		}
	})

	t.Run("missing schedule configuration", func(t *testing.T) {
		f := newResolverFixture(t)
		periodRepo := memory.NewPeriodRepository(f.schedules)
		for _, p := range f.periods {
			periodRepo.AddPeriod(*p)
		}
		resolver := NewPeriodResolver(
			staticPeriods{PeriodRepository: periodRepo, all: f.periods},
			memory.NewScheduleRepository(),
			f.requisitions,
			nil,
		)

		_, err := resolver.FindPeriod(ctx, f.programID, f.facilityID, nil, false)
		if !errors.Is(err, entities.ErrMissingScheduleConfiguration) {
			t.Errorf("Expected ErrMissingScheduleConfiguration, got %v", err)
		}
	})
}

// staticPeriods lists the same periods for every program and facility
type staticPeriods struct {
	*memory.PeriodRepository
	all []*entities.ProcessingPeriod
}

func (s staticPeriods) SearchByProgramAndFacility(ctx context.Context, programID, facilityID uuid.UUID) ([]*entities.ProcessingPeriod, error) {
	return s.all, nil
}

func TestPeriodResolver_GetPeriods(t *testing.T) {
	ctx := context.Background()
	f := newResolverFixture(t)
	f.addRequisition(t, f.periods[0], entities.Approved, false)
	f.addRequisition(t, f.periods[1], entities.Submitted, false)

	regular, err := f.resolver.GetPeriods(ctx, f.programID, f.facilityID, false)
	if err != nil {
		t.Fatalf("GetPeriods failed: %v", err)
	}
	if len(regular) != 3 || regular[0].ID != f.periods[1].ID {
		t.Errorf("Expected February to April, got %d periods", len(regular))
	}

	emergency, err := f.resolver.GetPeriods(ctx, f.programID, f.facilityID, true)
	if err != nil {
		t.Fatalf("GetPeriods failed: %v", err)
	}
	if len(emergency) != 0 {
		t.Errorf("Expected no current period without a submitted March requisition, got %d", len(emergency))
	}
}
