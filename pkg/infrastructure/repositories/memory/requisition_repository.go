package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
	"github.com/vsinha/requisition/pkg/domain/repositories"
)

// RequisitionRepository provides in-memory requisition storage. It keeps
// snapshots so callers never share state with the store.
type RequisitionRepository struct {
	mu           sync.RWMutex
	requisitions map[uuid.UUID]entities.RequisitionState
	restoreOpts  []entities.Option
}

// NewRequisitionRepository creates a new in-memory requisition repository.
// The options are applied to every requisition it returns.
func NewRequisitionRepository(restoreOpts ...entities.Option) *RequisitionRepository {
	return &RequisitionRepository{
		requisitions: make(map[uuid.UUID]entities.RequisitionState),
		restoreOpts:  restoreOpts,
	}
}

// Verify interface compliance
var _ repositories.RequisitionRepository = (*RequisitionRepository)(nil)

// Save inserts or replaces a requisition
func (r *RequisitionRepository) Save(ctx context.Context, requisition *entities.Requisition) error {
	if requisition == nil {
		return fmt.Errorf("cannot save nil requisition")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requisitions[requisition.ID()] = requisition.State()
	return nil
}

// FindByID returns a copy of the stored requisition
func (r *RequisitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Requisition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.requisitions[id]
	if !ok {
		return nil, fmt.Errorf("requisition %s: %w", id, repositories.ErrNotFound)
	}
	return entities.RestoreRequisition(state, r.restoreOpts...), nil
}

// Delete removes a requisition together with its lines and history
func (r *RequisitionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requisitions[id]; !ok {
		return fmt.Errorf("requisition %s: %w", id, repositories.ErrNotFound)
	}
	delete(r.requisitions, id)
	return nil
}

// SearchByProcessingPeriodAndType returns matching requisitions, oldest first
func (r *RequisitionRepository) SearchByProcessingPeriodAndType(
	ctx context.Context,
	facilityID, programID, periodID uuid.UUID,
	emergency bool,
) ([]*entities.Requisition, error) {
	return r.Search(ctx, repositories.RequisitionSearchParams{
		FacilityID:         facilityID,
		ProgramID:          programID,
		ProcessingPeriodID: periodID,
		Emergency:          &emergency,
	})
}

// GetLastRegularRequisition returns the newest regular requisition or nil
func (r *RequisitionRepository) GetLastRegularRequisition(ctx context.Context, facilityID, programID uuid.UUID) (*entities.Requisition, error) {
	regular := false
	found, err := r.Search(ctx, repositories.RequisitionSearchParams{
		FacilityID: facilityID,
		ProgramID:  programID,
		Emergency:  &regular,
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[len(found)-1], nil
}

// Search returns requisitions matching every set filter, oldest first
func (r *RequisitionRepository) Search(ctx context.Context, params repositories.RequisitionSearchParams) ([]*entities.Requisition, error) {
	r.mu.RLock()
	states := make([]entities.RequisitionState, 0)
	for _, state := range r.requisitions {
		if matches(state, params) {
			states = append(states, state)
		}
	}
	r.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool {
		if states[i].CreatedDate.Equal(states[j].CreatedDate) {
			return states[i].ID.String() < states[j].ID.String()
		}
		return states[i].CreatedDate.Before(states[j].CreatedDate)
	})

	result := make([]*entities.Requisition, 0, len(states))
	for _, state := range states {
		result = append(result, entities.RestoreRequisition(state, r.restoreOpts...))
	}
	return result, nil
}

func matches(state entities.RequisitionState, params repositories.RequisitionSearchParams) bool {
	if params.FacilityID != uuid.Nil && state.FacilityID != params.FacilityID {
		return false
	}
	if params.ProgramID != uuid.Nil && state.ProgramID != params.ProgramID {
		return false
	}
	if params.ProcessingPeriodID != uuid.Nil && state.ProcessingPeriodID != params.ProcessingPeriodID {
		return false
	}
	if params.Emergency != nil && state.Emergency != *params.Emergency {
		return false
	}
	if len(params.Statuses) > 0 {
		for _, status := range params.Statuses {
			if state.Status == status {
				return true
			}
		}
		return false
	}
	return true
}
