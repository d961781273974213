package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProcessingSchedule groups the periods a program/facility reports on
type ProcessingSchedule struct {
	ID   uuid.UUID
	Code string
	Name string
}

// ProcessingPeriod is one reporting window of a schedule
type ProcessingPeriod struct {
	ID               uuid.UUID
	Name             string
	ScheduleID       uuid.UUID
	StartDate        time.Time
	EndDate          time.Time
	DurationInMonths int
}

// NewProcessingPeriod creates a validated ProcessingPeriod
func NewProcessingPeriod(name string, scheduleID uuid.UUID, startDate, endDate time.Time, durationInMonths int) (*ProcessingPeriod, error) {
	if name == "" {
		return nil, fmt.Errorf("period name cannot be empty")
	}
	if scheduleID == uuid.Nil {
		return nil, fmt.Errorf("period %s must belong to a schedule", name)
	}
	if startDate.After(endDate) {
		return nil, fmt.Errorf("start date %s cannot be after end date %s",
			startDate.Format(time.DateOnly), endDate.Format(time.DateOnly))
	}
	if durationInMonths <= 0 {
		return nil, fmt.Errorf("duration in months must be positive, got %d", durationInMonths)
	}

	return &ProcessingPeriod{
		ID:               uuid.New(),
		Name:             name,
		ScheduleID:       scheduleID,
		StartDate:        startDate,
		EndDate:          endDate,
		DurationInMonths: durationInMonths,
	}, nil
}

// Contains reports whether the day falls inside [StartDate, EndDate]
func (p *ProcessingPeriod) Contains(day time.Time) bool {
	d := truncateToDay(day)
	return !d.Before(truncateToDay(p.StartDate)) && !d.After(truncateToDay(p.EndDate))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
