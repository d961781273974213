package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

// ProductRepository provides the products a facility may requisition
type ProductRepository interface {
	FindApprovedProducts(ctx context.Context, facilityID, programID uuid.UUID) ([]entities.ApprovedProduct, error)
	FindOrderables(ctx context.Context, ids []uuid.UUID) ([]entities.Orderable, error)
}

// SupplyLineRepository provides supply lines of supervisory nodes
type SupplyLineRepository interface {
	SearchBySupervisoryNode(ctx context.Context, nodeID, programID uuid.UUID) ([]entities.SupplyLine, error)
}

// SupervisoryNodeRepository provides the approval hierarchy
type SupervisoryNodeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.SupervisoryNode, error)
	// FindForFacility returns the first node approving the facility's
	// requisitions for a program, or nil.
	FindForFacility(ctx context.Context, programID, facilityID uuid.UUID) (*entities.SupervisoryNode, error)
}

// ProofOfDeliveryRepository provides proofs of delivery of earlier orders
type ProofOfDeliveryRepository interface {
	// FindByRequisition returns the proof of delivery of the order created
	// from the requisition, or nil.
	FindByRequisition(ctx context.Context, requisitionID uuid.UUID) (*entities.ProofOfDelivery, error)
}

// StockRepository provides stock levels and adjustment reasons
type StockRepository interface {
	IdealStockAmounts(ctx context.Context, facilityID, programID uuid.UUID) (map[uuid.UUID]int64, error)
	StockOnHand(ctx context.Context, facilityID, programID uuid.UUID) (map[uuid.UUID]int64, error)
	AdjustmentReasons(ctx context.Context, programID uuid.UUID) ([]entities.StockAdjustmentReason, error)
}
