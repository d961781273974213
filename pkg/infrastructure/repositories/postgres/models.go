package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

// requisitionRecord is a row of the requisitions table
type requisitionRecord struct {
	ID                              uuid.UUID                        `gorm:"type:uuid;primaryKey"`
	CreatedDate                     time.Time                        `gorm:"not null;index"`
	ModifiedDate                    time.Time                        `gorm:"not null"`
	FacilityID                      uuid.UUID                        `gorm:"type:uuid;not null;index:idx_requisitions_facility_program"`
	ProgramID                       uuid.UUID                        `gorm:"type:uuid;not null;index:idx_requisitions_facility_program"`
	ProcessingPeriodID              uuid.UUID                        `gorm:"type:uuid;not null;index"`
	Status                          string                           `gorm:"type:varchar(20);not null;index"`
	Emergency                       bool                             `gorm:"not null;default:false"`
	NumberOfMonthsInPeriod          int                              `gorm:"not null;default:0"`
	SupervisoryNodeID               *uuid.UUID                       `gorm:"type:uuid"`
	SupplyingFacilityID             *uuid.UUID                       `gorm:"type:uuid"`
	DatePhysicalStockCountCompleted *time.Time                       `gorm:"type:date"`
	DraftStatusMessage              string                           `gorm:"type:text"`
	TemplateID                      *uuid.UUID                       `gorm:"type:uuid"`
	Template                        *entities.RequisitionTemplate    `gorm:"type:jsonb;serializer:json"`
	StockAdjustmentReasons          []entities.StockAdjustmentReason `gorm:"type:jsonb;serializer:json"`
	CurrencyCode                    string                           `gorm:"type:varchar(3);not null"`
	CurrencyMinorUnits              int32                            `gorm:"not null"`

	LineItems            []lineItemRecord            `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE"`
	StatusChanges        []statusChangeRecord        `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE"`
	AvailableProducts    []availableProductRecord    `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE"`
	PreviousRequisitions []previousRequisitionRecord `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE"`
}

func (requisitionRecord) TableName() string {
	return "requisitions"
}

type lineItemRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequisitionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Position      int       `gorm:"not null"`
	OrderableID   uuid.UUID `gorm:"type:uuid;not null"`

	BeginningBalance             *int64
	TotalReceivedQuantity        *int64
	TotalLossesAndAdjustments    *int64
	StockOnHand                  *int64
	RequestedQuantity            *int64
	RequestedQuantityExplanation string `gorm:"type:text"`
	TotalConsumedQuantity        *int64
	Total                        *int64
	ApprovedQuantity             *int64
	TotalStockoutDays            *int64
	PacksToShip                  *int64
	PricePerPack                 *decimal.Decimal `gorm:"type:decimal(19,4)"`
	TotalCost                    *decimal.Decimal `gorm:"type:decimal(19,4)"`
	Skipped                      bool             `gorm:"not null;default:false"`
	AdjustedConsumption          *int64
	PreviousAdjustedConsumptions []int64 `gorm:"type:jsonb;serializer:json"`
	AverageConsumption           *int64
	MaxPeriodsOfStock            decimal.Decimal `gorm:"type:decimal(19,2);not null;default:0"`
	MaximumStockQuantity         *int64
	CalculatedOrderQuantity      *int64
	IdealStockAmount             *int64
	NumberOfNewPatientsAdded     *int64
	Remarks                      string                     `gorm:"type:varchar(250)"`
	NonFullSupply                bool                       `gorm:"not null;default:false"`
	StockAdjustments             []entities.StockAdjustment `gorm:"type:jsonb;serializer:json"`
}

func (lineItemRecord) TableName() string {
	return "requisition_line_items"
}

// statusChangeRecord rows are only ever inserted
type statusChangeRecord struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RequisitionID uuid.UUID  `gorm:"type:uuid;not null;index"`
	AuthorID      *uuid.UUID `gorm:"type:uuid"`
	Status        string     `gorm:"type:varchar(20);not null"`
	CreatedDate   time.Time  `gorm:"not null"`
}

func (statusChangeRecord) TableName() string {
	return "status_changes"
}

type availableProductRecord struct {
	RequisitionID uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderableID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position      int       `gorm:"not null"`
}

func (availableProductRecord) TableName() string {
	return "available_products"
}

// previousRequisitionRecord links a requisition to an earlier one, most
// recent at position 0
type previousRequisitionRecord struct {
	RequisitionID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	PreviousRequisitionID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position              int       `gorm:"not null"`
}

func (previousRequisitionRecord) TableName() string {
	return "requisitions_previous_requisitions"
}
