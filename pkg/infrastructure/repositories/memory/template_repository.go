package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
	"github.com/vsinha/requisition/pkg/domain/repositories"
)

// TemplateRepository provides in-memory requisition templates by program
type TemplateRepository struct {
	mu        sync.RWMutex
	templates map[uuid.UUID]*entities.RequisitionTemplate
}

// NewTemplateRepository creates a new in-memory template repository
func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{templates: make(map[uuid.UUID]*entities.RequisitionTemplate)}
}

// Verify interface compliance
var _ repositories.TemplateRepository = (*TemplateRepository)(nil)

// SaveTemplate stores the template of its program
func (r *TemplateRepository) SaveTemplate(template *entities.RequisitionTemplate) error {
	if template == nil {
		return fmt.Errorf("cannot save nil template")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[template.ProgramID] = template
	return nil
}

// FindByProgram returns the program's template
func (r *TemplateRepository) FindByProgram(ctx context.Context, programID uuid.UUID) (*entities.RequisitionTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	template, ok := r.templates[programID]
	if !ok {
		return nil, fmt.Errorf("template for program %s: %w", programID, repositories.ErrNotFound)
	}
	return template, nil
}
