package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Orderable is a product that can be ordered in packs
type Orderable struct {
	ID                      uuid.UUID
	ProductCode             string
	FullProductName         string
	NetContent              int64
	PackRoundingThreshold   int64
	RoundToZero             bool
	CommodityTypeIdentifier string
	PricePerPack            *decimal.Decimal
}

// ApprovedProduct is an orderable approved for a facility type and program
type ApprovedProduct struct {
	Orderable         Orderable
	MaxPeriodsOfStock decimal.Decimal
	FullSupply        bool
}

// ProofOfDeliveryLineItem is the received quantity of one product
type ProofOfDeliveryLineItem struct {
	OrderableID      *uuid.UUID
	QuantityAccepted *int64
}

// ProofOfDelivery confirms what arrived for a previous order
type ProofOfDelivery struct {
	ID        uuid.UUID
	Submitted bool
	LineItems []ProofOfDeliveryLineItem
}

// SupplyLine connects a supervisory node to the facility that fulfils orders
type SupplyLine struct {
	ID                  uuid.UUID
	SupervisoryNodeID   uuid.UUID
	ProgramID           uuid.UUID
	SupplyingFacilityID uuid.UUID
}

// SupervisoryNode is one tier of the approval hierarchy
type SupervisoryNode struct {
	ID           uuid.UUID
	Code         string
	Name         string
	ParentNodeID *uuid.UUID
}

// ReasonType tells whether an adjustment adds or removes stock
type ReasonType int

const (
	Credit ReasonType = iota
	Debit
)

// String method for ReasonType enum
func (r ReasonType) String() string {
	switch r {
	case Credit:
		return "CREDIT"
	case Debit:
		return "DEBIT"
	default:
		return "Unknown"
	}
}

// StockAdjustmentReason explains a loss or adjustment
type StockAdjustmentReason struct {
	ID         uuid.UUID
	Name       string
	ReasonType ReasonType
}

// StockAdjustment is one loss or adjustment recorded on a line item
type StockAdjustment struct {
	ID       uuid.UUID
	ReasonID uuid.UUID
	Quantity int64 `validate:"gte=0"`
}

// findOrderable returns the product with the given id or nil
func findOrderable(products []Orderable, id uuid.UUID) *Orderable {
	for i := range products {
		if products[i].ID == id {
			return &products[i]
		}
	}
	return nil
}
