package dto

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

var validate = validator.New()

// Validate checks the dto's field constraints before it is imported
func (d *RequisitionDto) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("failed to validate requisition %s: %w", d.ID, err)
	}

	verr := entities.NewValidationError(d.ID.String())
	for _, fe := range fieldErrors {
		verr.Add(fe.Namespace(), fe.Tag())
	}
	return verr
}
