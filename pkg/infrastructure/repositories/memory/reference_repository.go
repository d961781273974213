package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vsinha/requisition/pkg/domain/entities"
	"github.com/vsinha/requisition/pkg/domain/repositories"
)

// ReferenceDataRepository holds the reference data a requisition is built
// from: approved products, supply lines, proofs of delivery and stock levels.
type ReferenceDataRepository struct {
	mu sync.RWMutex

	orderables        map[uuid.UUID]entities.Orderable
	approvedProducts  map[assignmentKey][]entities.ApprovedProduct
	supplyLines       []entities.SupplyLine
	proofsOfDelivery  map[uuid.UUID]entities.ProofOfDelivery
	idealStockAmounts map[assignmentKey]map[uuid.UUID]int64
	stockOnHand       map[assignmentKey]map[uuid.UUID]int64
	reasons           map[uuid.UUID][]entities.StockAdjustmentReason
}

// NewReferenceDataRepository creates an empty reference data repository
func NewReferenceDataRepository() *ReferenceDataRepository {
	return &ReferenceDataRepository{
		orderables:        make(map[uuid.UUID]entities.Orderable),
		approvedProducts:  make(map[assignmentKey][]entities.ApprovedProduct),
		proofsOfDelivery:  make(map[uuid.UUID]entities.ProofOfDelivery),
		idealStockAmounts: make(map[assignmentKey]map[uuid.UUID]int64),
		stockOnHand:       make(map[assignmentKey]map[uuid.UUID]int64),
		reasons:           make(map[uuid.UUID][]entities.StockAdjustmentReason),
	}
}

// Verify interface compliance
var (
	_ repositories.ProductRepository         = (*ReferenceDataRepository)(nil)
	_ repositories.SupplyLineRepository      = (*ReferenceDataRepository)(nil)
	_ repositories.ProofOfDeliveryRepository = (*ReferenceDataRepository)(nil)
	_ repositories.StockRepository           = (*ReferenceDataRepository)(nil)
)

// ApproveProducts approves products for a program at a facility
func (r *ReferenceDataRepository) ApproveProducts(programID, facilityID uuid.UUID, products ...entities.ApprovedProduct) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := assignmentKey{programID: programID, facilityID: facilityID}
	for _, product := range products {
		r.orderables[product.Orderable.ID] = product.Orderable
		r.approvedProducts[key] = append(r.approvedProducts[key], product)
	}
}

// AddOrderable stores a product that is not approved as full supply
func (r *ReferenceDataRepository) AddOrderable(orderable entities.Orderable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orderables[orderable.ID] = orderable
}

// AddSupplyLine stores a supply line
func (r *ReferenceDataRepository) AddSupplyLine(line entities.SupplyLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.supplyLines = append(r.supplyLines, line)
}

// AddProofOfDelivery stores the proof of delivery for a requisition's order
func (r *ReferenceDataRepository) AddProofOfDelivery(requisitionID uuid.UUID, pod entities.ProofOfDelivery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proofsOfDelivery[requisitionID] = pod
}

// SetIdealStockAmount records the ideal stock amount of a commodity type
func (r *ReferenceDataRepository) SetIdealStockAmount(programID, facilityID, commodityTypeID uuid.UUID, amount int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := assignmentKey{programID: programID, facilityID: facilityID}
	if r.idealStockAmounts[key] == nil {
		r.idealStockAmounts[key] = make(map[uuid.UUID]int64)
	}
	r.idealStockAmounts[key][commodityTypeID] = amount
}

// SetStockOnHand records the current stock of a product
func (r *ReferenceDataRepository) SetStockOnHand(programID, facilityID, orderableID uuid.UUID, quantity int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := assignmentKey{programID: programID, facilityID: facilityID}
	if r.stockOnHand[key] == nil {
		r.stockOnHand[key] = make(map[uuid.UUID]int64)
	}
	r.stockOnHand[key][orderableID] = quantity
}

// AddAdjustmentReasons stores the adjustment reasons valid for a program
func (r *ReferenceDataRepository) AddAdjustmentReasons(programID uuid.UUID, reasons ...entities.StockAdjustmentReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons[programID] = append(r.reasons[programID], reasons...)
}

// FindApprovedProducts returns the approved products in approval order
func (r *ReferenceDataRepository) FindApprovedProducts(ctx context.Context, facilityID, programID uuid.UUID) ([]entities.ApprovedProduct, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	products := r.approvedProducts[assignmentKey{programID: programID, facilityID: facilityID}]
	return append([]entities.ApprovedProduct(nil), products...), nil
}

// FindOrderables returns the known products among ids
func (r *ReferenceDataRepository) FindOrderables(ctx context.Context, ids []uuid.UUID) ([]entities.Orderable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]entities.Orderable, 0, len(ids))
	for _, id := range ids {
		if orderable, ok := r.orderables[id]; ok {
			result = append(result, orderable)
		}
	}
	return result, nil
}

// SearchBySupervisoryNode returns the supply lines of a node for a program
func (r *ReferenceDataRepository) SearchBySupervisoryNode(ctx context.Context, nodeID, programID uuid.UUID) ([]entities.SupplyLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]entities.SupplyLine, 0)
	for _, line := range r.supplyLines {
		if line.SupervisoryNodeID == nodeID && line.ProgramID == programID {
			result = append(result, line)
		}
	}
	return result, nil
}

// FindByRequisition returns the proof of delivery or nil
func (r *ReferenceDataRepository) FindByRequisition(ctx context.Context, requisitionID uuid.UUID) (*entities.ProofOfDelivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pod, ok := r.proofsOfDelivery[requisitionID]
	if !ok {
		return nil, nil
	}
	return &pod, nil
}

// IdealStockAmounts returns the ideal stock amounts by commodity type
func (r *ReferenceDataRepository) IdealStockAmounts(ctx context.Context, facilityID, programID uuid.UUID) (map[uuid.UUID]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyAmounts(r.idealStockAmounts[assignmentKey{programID: programID, facilityID: facilityID}]), nil
}

// StockOnHand returns the current stock by product
func (r *ReferenceDataRepository) StockOnHand(ctx context.Context, facilityID, programID uuid.UUID) (map[uuid.UUID]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyAmounts(r.stockOnHand[assignmentKey{programID: programID, facilityID: facilityID}]), nil
}

// AdjustmentReasons returns the adjustment reasons of a program
func (r *ReferenceDataRepository) AdjustmentReasons(ctx context.Context, programID uuid.UUID) ([]entities.StockAdjustmentReason, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entities.StockAdjustmentReason(nil), r.reasons[programID]...), nil
}

func copyAmounts(amounts map[uuid.UUID]int64) map[uuid.UUID]int64 {
	result := make(map[uuid.UUID]int64, len(amounts))
	for k, v := range amounts {
		result[k] = v
	}
	return result
}

// SupervisoryNodeRepository provides the in-memory approval hierarchy
type SupervisoryNodeRepository struct {
	mu         sync.RWMutex
	nodes      map[uuid.UUID]entities.SupervisoryNode
	facilities map[assignmentKey]uuid.UUID
}

// NewSupervisoryNodeRepository creates an empty hierarchy
func NewSupervisoryNodeRepository() *SupervisoryNodeRepository {
	return &SupervisoryNodeRepository{
		nodes:      make(map[uuid.UUID]entities.SupervisoryNode),
		facilities: make(map[assignmentKey]uuid.UUID),
	}
}

// Verify interface compliance
var _ repositories.SupervisoryNodeRepository = (*SupervisoryNodeRepository)(nil)

// AddNode stores a node
func (r *SupervisoryNodeRepository) AddNode(node entities.SupervisoryNode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[node.ID] = node
}

// AssignFacility makes the node the first approver of the facility's program requisitions
func (r *SupervisoryNodeRepository) AssignFacility(programID, facilityID, nodeID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.facilities[assignmentKey{programID: programID, facilityID: facilityID}] = nodeID
}

// FindByID returns a node
func (r *SupervisoryNodeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.SupervisoryNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	node, ok := r.nodes[id]
	if !ok {
		return nil, fmt.Errorf("supervisory node %s: %w", id, repositories.ErrNotFound)
	}
	return &node, nil
}

// FindForFacility returns the facility's first approver or nil
func (r *SupervisoryNodeRepository) FindForFacility(ctx context.Context, programID, facilityID uuid.UUID) (*entities.SupervisoryNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.facilities[assignmentKey{programID: programID, facilityID: facilityID}]
	if !ok {
		return nil, nil
	}
	node, ok := r.nodes[id]
	if !ok {
		return nil, fmt.Errorf("supervisory node %s: %w", id, repositories.ErrNotFound)
	}
	return &node, nil
}
