package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

// Action names the lifecycle step a requisition is validated for
type Action int

const (
	ActionUpdate Action = iota
	ActionSubmit
	ActionAuthorize
	ActionApprove
	ActionReject
	ActionSkip
)

// String method for Action enum
func (a Action) String() string {
	switch a {
	case ActionUpdate:
		return "update"
	case ActionSubmit:
		return "submit"
	case ActionAuthorize:
		return "authorize"
	case ActionApprove:
		return "approve"
	case ActionReject:
		return "reject"
	case ActionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// RequisitionValidator checks business rules before a lifecycle step. A
// failure is returned as *entities.ValidationError.
type RequisitionValidator interface {
	Validate(ctx context.Context, requisition *entities.Requisition, action Action) error
}

// TemplateValidator checks line item values against struct constraints and
// the requisition's template
type TemplateValidator struct {
	validate *validator.Validate
}

// NewTemplateValidator creates a validator
func NewTemplateValidator() *TemplateValidator {
	return &TemplateValidator{validate: validator.New()}
}

// Verify interface compliance
var _ RequisitionValidator = (*TemplateValidator)(nil)

// Validate collects every failing field of the requisition
func (v *TemplateValidator) Validate(ctx context.Context, requisition *entities.Requisition, action Action) error {
	verr := entities.NewValidationError(requisition.ID().String())
	template := requisition.Template()

	if action == ActionSkip {
		if template == nil || !template.SkipAllowed {
			verr.Add("status", "template does not allow skipping a period")
		}
		if requisition.Emergency() {
			verr.Add("emergency", "emergency requisitions cannot be skipped")
		}
		return result(verr)
	}

	maxStockoutDays := int64(requisition.NumberOfMonthsInPeriod() * entities.DaysInMonth)
	explanationRequired := action == ActionSubmit || action == ActionAuthorize

	for i, line := range requisition.LineItems() {
		prefix := fmt.Sprintf("requisitionLineItems[%d]", i)

		if err := v.validate.StructCtx(ctx, line); err != nil {
			var fieldErrors validator.ValidationErrors
			if !errors.As(err, &fieldErrors) {
				return fmt.Errorf("failed to validate line %s: %w", line.ID, err)
			}
			for _, fe := range fieldErrors {
				verr.Add(prefix+"."+lowerFirst(fe.Field()), fe.Tag())
			}
		}

		if line.Skipped && !template.IsColumnDisplayed(entities.SkippedColumn) {
			verr.Add(prefix+".skipped", "template does not allow skipping lines")
		}
		if line.IsLineSkipped() {
			continue
		}

		if line.TotalStockoutDays != nil && maxStockoutDays > 0 && *line.TotalStockoutDays > maxStockoutDays {
			verr.Add(prefix+".totalStockoutDays",
				fmt.Sprintf("must not exceed %d days in the period", maxStockoutDays))
		}

		if explanationRequired && !line.NonFullSupply &&
			template.IsColumnDisplayed(entities.CalculatedOrderQuantityColumn) &&
			line.RequestedQuantity != nil &&
			strings.TrimSpace(line.RequestedQuantityExplanation) == "" {
			verr.Add(prefix+".requestedQuantityExplanation", "required when requested quantity is entered")
		}
	}

	return result(verr)
}

func result(verr *entities.ValidationError) error {
	if verr.HasErrors() {
		return verr
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
