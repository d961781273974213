package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
	"github.com/vsinha/requisition/pkg/domain/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequisitionRepository stores requisitions in postgres. Line items,
// available products and previous requisition links are replaced on every
// save; status changes are only ever inserted.
type RequisitionRepository struct {
	db          *gorm.DB
	restoreOpts []entities.Option
}

// NewRequisitionRepository creates a repository; restoreOpts are applied to
// every loaded requisition
func NewRequisitionRepository(db *gorm.DB, restoreOpts ...entities.Option) *RequisitionRepository {
	return &RequisitionRepository{db: db, restoreOpts: restoreOpts}
}

// Verify interface compliance
var _ repositories.RequisitionRepository = (*RequisitionRepository)(nil)

func (r *RequisitionRepository) Save(ctx context.Context, requisition *entities.Requisition) error {
	rec := toRecord(requisition.State())

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to save requisition %s: %w", rec.ID, err)
		}

		if err := tx.Where("requisition_id = ?", rec.ID).Delete(&lineItemRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear line items: %w", err)
		}
		if len(rec.LineItems) > 0 {
			if err := tx.Create(&rec.LineItems).Error; err != nil {
				return fmt.Errorf("failed to save line items: %w", err)
			}
		}

		if len(rec.StatusChanges) > 0 {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec.StatusChanges).Error
			if err != nil {
				return fmt.Errorf("failed to save status changes: %w", err)
			}
		}

		if err := tx.Where("requisition_id = ?", rec.ID).Delete(&availableProductRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear available products: %w", err)
		}
		if len(rec.AvailableProducts) > 0 {
			if err := tx.Create(&rec.AvailableProducts).Error; err != nil {
				return fmt.Errorf("failed to save available products: %w", err)
			}
		}

		if err := tx.Where("requisition_id = ?", rec.ID).Delete(&previousRequisitionRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous requisitions: %w", err)
		}
		if len(rec.PreviousRequisitions) > 0 {
			if err := tx.Create(&rec.PreviousRequisitions).Error; err != nil {
				return fmt.Errorf("failed to save previous requisitions: %w", err)
			}
		}
		return nil
	})
}

func (r *RequisitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Requisition, error) {
	var rec requisitionRecord
	err := r.preloaded(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("requisition %s: %w", id, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load requisition %s: %w", id, err)
	}
	return r.restore(rec)
}

func (r *RequisitionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&requisitionRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete requisition %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("requisition %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}

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

func (r *RequisitionRepository) GetLastRegularRequisition(ctx context.Context, facilityID, programID uuid.UUID) (*entities.Requisition, error) {
	var recs []requisitionRecord
	err := r.preloaded(ctx).
		Where("facility_id = ? AND program_id = ? AND emergency = ?", facilityID, programID, false).
		Order("created_date DESC").Order("id DESC").
		Limit(1).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load last regular requisition: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return r.restore(recs[0])
}

func (r *RequisitionRepository) Search(ctx context.Context, params repositories.RequisitionSearchParams) ([]*entities.Requisition, error) {
	query := r.preloaded(ctx)
	if params.FacilityID != uuid.Nil {
		query = query.Where("facility_id = ?", params.FacilityID)
	}
	if params.ProgramID != uuid.Nil {
		query = query.Where("program_id = ?", params.ProgramID)
	}
	if params.ProcessingPeriodID != uuid.Nil {
		query = query.Where("processing_period_id = ?", params.ProcessingPeriodID)
	}
	if params.Emergency != nil {
		query = query.Where("emergency = ?", *params.Emergency)
	}
	if len(params.Statuses) > 0 {
		query = query.Where("status IN ?", statusNames(params.Statuses))
	}

	var recs []requisitionRecord
	if err := query.Order("created_date ASC").Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to search requisitions: %w", err)
	}

	result := make([]*entities.Requisition, 0, len(recs))
	for _, rec := range recs {
		requisition, err := r.restore(rec)
		if err != nil {
			return nil, err
		}
		result = append(result, requisition)
	}
	return result, nil
}

func (r *RequisitionRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("StatusChanges", func(db *gorm.DB) *gorm.DB { return db.Order("created_date ASC") }).
		Preload("AvailableProducts", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("PreviousRequisitions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func (r *RequisitionRepository) restore(rec requisitionRecord) (*entities.Requisition, error) {
	state, err := toState(rec)
	if err != nil {
		return nil, err
	}
	return entities.RestoreRequisition(state, r.restoreOpts...), nil
}

func statusNames(statuses []entities.RequisitionStatus) []string {
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, status.String())
	}
	return names
}
