package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

// TemplateRepository provides the requisition template of a program
type TemplateRepository interface {
	FindByProgram(ctx context.Context, programID uuid.UUID) (*entities.RequisitionTemplate, error)
}
