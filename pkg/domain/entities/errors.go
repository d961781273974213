package entities

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed from the current status
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrIncompleteFields is returned when a required template column has no value
	ErrIncompleteFields = errors.New("required fields must have values")
	// ErrInvalidPeriod is returned when no acceptable processing period can be resolved
	ErrInvalidPeriod = errors.New("invalid processing period")
	// ErrUnfinishedPriorRequisition is returned while the previous regular requisition is still open
	ErrUnfinishedPriorRequisition = errors.New("previous requisition must be finished")
	// ErrMissingScheduleConfiguration is returned when the program/facility has no schedule
	ErrMissingScheduleConfiguration = errors.New("program and facility have no processing schedule")
)

// ValidationError carries per-field messages from a validation gate
type ValidationError struct {
	RequisitionID string
	Fields        map[string]string
}

// NewValidationError creates an empty ValidationError for a requisition
func NewValidationError(requisitionID string) *ValidationError {
	return &ValidationError{RequisitionID: requisitionID, Fields: make(map[string]string)}
}

// Add records a message against a field
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = message
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("requisition %s failed validation: %s", e.RequisitionID, strings.Join(parts, "; "))
}
