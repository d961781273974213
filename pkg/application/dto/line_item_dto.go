package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

// MoneyDto is an amount with its currency code
type MoneyDto struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func newMoneyDto(m entities.Money) MoneyDto {
	return MoneyDto{Amount: m.Amount, Currency: m.Currency.Code}
}

func newMoneyDtoPtr(m *entities.Money) *MoneyDto {
	if m == nil {
		return nil
	}
	d := newMoneyDto(*m)
	return &d
}

// StockAdjustmentDto is one loss or adjustment on a line
type StockAdjustmentDto struct {
	ID       uuid.UUID `json:"id"`
	ReasonID uuid.UUID `json:"reasonId" validate:"required"`
	Quantity int64     `json:"quantity" validate:"gte=0"`
}

// LineItemDto is the external representation of a requisition line item
type LineItemDto struct {
	ID                           uuid.UUID            `json:"id"`
	OrderableID                  uuid.UUID            `json:"orderableId" validate:"required"`
	BeginningBalance             *int64               `json:"beginningBalance,omitempty" validate:"omitempty,gte=0"`
	TotalReceivedQuantity        *int64               `json:"totalReceivedQuantity,omitempty" validate:"omitempty,gte=0"`
	TotalLossesAndAdjustments    *int64               `json:"totalLossesAndAdjustments,omitempty"`
	StockOnHand                  *int64               `json:"stockOnHand,omitempty"`
	RequestedQuantity            *int64               `json:"requestedQuantity,omitempty" validate:"omitempty,gte=0"`
	RequestedQuantityExplanation string               `json:"requestedQuantityExplanation,omitempty" validate:"max=250"`
	TotalConsumedQuantity        *int64               `json:"totalConsumedQuantity,omitempty"`
	Total                        *int64               `json:"total,omitempty"`
	ApprovedQuantity             *int64               `json:"approvedQuantity,omitempty" validate:"omitempty,gte=0"`
	TotalStockoutDays            *int64               `json:"totalStockoutDays,omitempty" validate:"omitempty,gte=0"`
	PacksToShip                  *int64               `json:"packsToShip,omitempty"`
	PricePerPack                 *MoneyDto            `json:"pricePerPack,omitempty"`
	TotalCost                    *MoneyDto            `json:"totalCost,omitempty"`
	Skipped                      bool                 `json:"skipped"`
	AdjustedConsumption          *int64               `json:"adjustedConsumption,omitempty"`
	PreviousAdjustedConsumptions []int64              `json:"previousAdjustedConsumptions,omitempty"`
	AverageConsumption           *int64               `json:"averageConsumption,omitempty"`
	MaxPeriodsOfStock            decimal.Decimal      `json:"maxPeriodsOfStock"`
	MaximumStockQuantity         *int64               `json:"maximumStockQuantity,omitempty"`
	CalculatedOrderQuantity      *int64               `json:"calculatedOrderQuantity,omitempty"`
	IdealStockAmount             *int64               `json:"idealStockAmount,omitempty"`
	NumberOfNewPatientsAdded     *int64               `json:"numberOfNewPatientsAdded,omitempty" validate:"omitempty,gte=0"`
	Remarks                      string               `json:"remarks,omitempty" validate:"max=250"`
	NonFullSupply                bool                 `json:"nonFullSupply"`
	StockAdjustments             []StockAdjustmentDto `json:"stockAdjustments,omitempty" validate:"dive"`
}

// Verify interface compliance
var (
	_ entities.LineItemExporter = (*LineItemDto)(nil)
	_ entities.LineItemImporter = (*LineItemDto)(nil)
)

func (d *LineItemDto) SetID(id uuid.UUID) {
	d.ID = id
}

func (d *LineItemDto) SetOrderableID(orderableID uuid.UUID) {
	d.OrderableID = orderableID
}

func (d *LineItemDto) SetBeginningBalance(v *int64) {
	d.BeginningBalance = v
}

func (d *LineItemDto) SetTotalReceivedQuantity(v *int64) {
	d.TotalReceivedQuantity = v
}

func (d *LineItemDto) SetTotalLossesAndAdjustments(v *int64) {
	d.TotalLossesAndAdjustments = v
}

func (d *LineItemDto) SetStockOnHand(v *int64) {
	d.StockOnHand = v
}

func (d *LineItemDto) SetRequestedQuantity(v *int64) {
	d.RequestedQuantity = v
}

func (d *LineItemDto) SetRequestedQuantityExplanation(v string) {
	d.RequestedQuantityExplanation = v
}

func (d *LineItemDto) SetTotalConsumedQuantity(v *int64) {
	d.TotalConsumedQuantity = v
}

func (d *LineItemDto) SetTotal(v *int64) {
	d.Total = v
}

func (d *LineItemDto) SetApprovedQuantity(v *int64) {
	d.ApprovedQuantity = v
}

func (d *LineItemDto) SetTotalStockoutDays(v *int64) {
	d.TotalStockoutDays = v
}

func (d *LineItemDto) SetPacksToShip(v *int64) {
	d.PacksToShip = v
}

func (d *LineItemDto) SetPricePerPack(v *entities.Money) {
	d.PricePerPack = newMoneyDtoPtr(v)
}

func (d *LineItemDto) SetTotalCost(v *entities.Money) {
	d.TotalCost = newMoneyDtoPtr(v)
}

func (d *LineItemDto) SetSkipped(v bool) {
	d.Skipped = v
}

func (d *LineItemDto) SetAdjustedConsumption(v *int64) {
	d.AdjustedConsumption = v
}

func (d *LineItemDto) SetPreviousAdjustedConsumptions(v []int64) {
	d.PreviousAdjustedConsumptions = v
}

func (d *LineItemDto) SetAverageConsumption(v *int64) {
	d.AverageConsumption = v
}

func (d *LineItemDto) SetMaxPeriodsOfStock(v decimal.Decimal) {
	d.MaxPeriodsOfStock = v
}

func (d *LineItemDto) SetMaximumStockQuantity(v *int64) {
	d.MaximumStockQuantity = v
}

func (d *LineItemDto) SetCalculatedOrderQuantity(v *int64) {
	d.CalculatedOrderQuantity = v
}

func (d *LineItemDto) SetIdealStockAmount(v *int64) {
	d.IdealStockAmount = v
}

func (d *LineItemDto) SetRemarks(v string) {
	d.Remarks = v
}

func (d *LineItemDto) SetNonFullSupply(v bool) {
	d.NonFullSupply = v
}

func (d *LineItemDto) SetStockAdjustments(v []entities.StockAdjustment) {
	d.StockAdjustments = make([]StockAdjustmentDto, 0, len(v))
	for _, adjustment := range v {
		d.StockAdjustments = append(d.StockAdjustments, StockAdjustmentDto{
			ID:       adjustment.ID,
			ReasonID: adjustment.ReasonID,
			Quantity: adjustment.Quantity,
		})
	}
}

func (d *LineItemDto) GetID() uuid.UUID {
	return d.ID
}

func (d *LineItemDto) GetOrderableID() uuid.UUID {
	return d.OrderableID
}

func (d *LineItemDto) GetBeginningBalance() *int64 {
	return d.BeginningBalance
}

func (d *LineItemDto) GetTotalReceivedQuantity() *int64 {
	return d.TotalReceivedQuantity
}

func (d *LineItemDto) GetStockOnHand() *int64 {
	return d.StockOnHand
}

func (d *LineItemDto) GetRequestedQuantity() *int64 {
	return d.RequestedQuantity
}

func (d *LineItemDto) GetRequestedQuantityExplanation() string {
	return d.RequestedQuantityExplanation
}

func (d *LineItemDto) GetTotalConsumedQuantity() *int64 {
	return d.TotalConsumedQuantity
}

func (d *LineItemDto) GetApprovedQuantity() *int64 {
	return d.ApprovedQuantity
}

func (d *LineItemDto) GetTotalStockoutDays() *int64 {
	return d.TotalStockoutDays
}

func (d *LineItemDto) GetNumberOfNewPatientsAdded() *int64 {
	return d.NumberOfNewPatientsAdded
}

func (d *LineItemDto) GetRemarks() string {
	return d.Remarks
}

func (d *LineItemDto) GetSkipped() bool {
	return d.Skipped
}

func (d *LineItemDto) GetNonFullSupply() bool {
	return d.NonFullSupply
}

// GetStockAdjustments assigns ids to adjustments entered without one
func (d *LineItemDto) GetStockAdjustments() []entities.StockAdjustment {
	result := make([]entities.StockAdjustment, 0, len(d.StockAdjustments))
	for _, adjustment := range d.StockAdjustments {
		id := adjustment.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		result = append(result, entities.StockAdjustment{
			ID:       id,
			ReasonID: adjustment.ReasonID,
			Quantity: adjustment.Quantity,
		})
	}
	return result
}
