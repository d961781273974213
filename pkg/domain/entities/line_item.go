package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Qty returns a pointer to a quantity, for optional line item fields
func Qty(v int64) *int64 {
	return &v
}

// RequisitionLineItem is one product row of a requisition. Nil pointers mean
// the value has not been entered or calculated.
type RequisitionLineItem struct {
	ID            uuid.UUID
	RequisitionID uuid.UUID
	OrderableID   uuid.UUID

	BeginningBalance             *int64 `validate:"omitempty,gte=0"`
	TotalReceivedQuantity        *int64 `validate:"omitempty,gte=0"`
	TotalLossesAndAdjustments    *int64
	StockOnHand                  *int64 `validate:"omitempty,gte=0"`
	RequestedQuantity            *int64 `validate:"omitempty,gte=0"`
	RequestedQuantityExplanation string `validate:"max=250"`
	TotalConsumedQuantity        *int64 `validate:"omitempty,gte=0"`
	Total                        *int64
	ApprovedQuantity             *int64 `validate:"omitempty,gte=0"`
	TotalStockoutDays            *int64 `validate:"omitempty,gte=0"`
	PacksToShip                  *int64
	PricePerPack                 *Money
	TotalCost                    *Money
	Skipped                      bool
	AdjustedConsumption          *int64
	PreviousAdjustedConsumptions []int64
	AverageConsumption           *int64
	MaxPeriodsOfStock            decimal.Decimal
	MaximumStockQuantity         *int64
	CalculatedOrderQuantity      *int64
	IdealStockAmount             *int64
	NumberOfNewPatientsAdded     *int64 `validate:"omitempty,gte=0"`
	Remarks                      string `validate:"max=250"`
	NonFullSupply                bool
	StockAdjustments             []StockAdjustment `validate:"dive"`
}

// NewRequisitionLineItem creates a full supply line seeded from an approved product
func NewRequisitionLineItem(
	requisitionID uuid.UUID,
	product ApprovedProduct,
	idealStockAmount *int64,
	stockOnHand *int64,
	currency Currency,
) *RequisitionLineItem {
	price := ZeroMoney(currency)
	if product.Orderable.PricePerPack != nil {
		price = NewMoney(*product.Orderable.PricePerPack, currency)
	}

	return &RequisitionLineItem{
		ID:                uuid.New(),
		RequisitionID:     requisitionID,
		OrderableID:       product.Orderable.ID,
		BeginningBalance:  Qty(0),
		StockOnHand:       copyQty(stockOnHand),
		IdealStockAmount:  copyQty(idealStockAmount),
		MaxPeriodsOfStock: product.MaxPeriodsOfStock,
		PricePerPack:      &price,
		NonFullSupply:     !product.FullSupply,
	}
}

// IsLineSkipped reports whether the user skipped this product
func (l *RequisitionLineItem) IsLineSkipped() bool {
	return l.Skipped
}

// OrderQuantity is the quantity packs are shipped for: approved, then
// requested, then calculated.
func (l *RequisitionLineItem) OrderQuantity() *int64 {
	switch {
	case l.ApprovedQuantity != nil:
		return l.ApprovedQuantity
	case l.RequestedQuantity != nil:
		return l.RequestedQuantity
	default:
		return l.CalculatedOrderQuantity
	}
}

// CalculateAndSetFields derives every template column the template marks as
// calculated. Columns that are not displayed keep their current values.
func (l *RequisitionLineItem) CalculateAndSetFields(
	template *RequisitionTemplate,
	reasons []StockAdjustmentReason,
	monthsInPeriod int,
) {
	if template.IsColumnDisplayed(TotalLossesAndAdjustmentsColumn) {
		l.TotalLossesAndAdjustments = Qty(CalculateTotalLossesAndAdjustments(l, reasons))
	}
	if template.IsColumnCalculated(StockOnHandColumn) {
		l.StockOnHand = Qty(CalculateStockOnHand(l))
	}
	if template.IsColumnCalculated(TotalConsumedQuantityColumn) {
		l.TotalConsumedQuantity = Qty(CalculateTotalConsumedQuantity(l))
	}
	if template.IsColumnDisplayed(TotalColumn) {
		l.Total = Qty(CalculateTotal(l))
	}
	if template.IsColumnDisplayed(AdjustedConsumptionColumn) {
		l.AdjustedConsumption = Qty(CalculateAdjustedConsumption(l, monthsInPeriod))
	}
	if template.IsColumnDisplayed(AverageConsumptionColumn) {
		l.AverageConsumption = Qty(CalculateAverageConsumption(l))
	}
	if template.IsColumnDisplayed(MaximumStockQuantityColumn) {
		l.MaximumStockQuantity = Qty(CalculateMaximumStockQuantity(l))
	}
	if template.IsColumnDisplayed(CalculatedOrderQuantityColumn) {
		l.CalculatedOrderQuantity = Qty(CalculateCalculatedOrderQuantity(l))
	}
}

// updatePacksToShip refreshes packs to ship and a missing price from the product list
func (l *RequisitionLineItem) updatePacksToShip(products []Orderable, currency Currency) {
	orderable := findOrderable(products, l.OrderableID)
	if orderable == nil {
		return
	}
	l.PacksToShip = Qty(CalculatePacksToShip(l.OrderQuantity(), *orderable))
	if l.PricePerPack == nil && orderable.PricePerPack != nil {
		price := NewMoney(*orderable.PricePerPack, currency)
		l.PricePerPack = &price
	}
}

// resetData clears entered and derived values of a skipped line
func (l *RequisitionLineItem) resetData() {
	l.BeginningBalance = nil
	l.TotalReceivedQuantity = nil
	l.TotalLossesAndAdjustments = nil
	l.StockOnHand = nil
	l.RequestedQuantity = nil
	l.RequestedQuantityExplanation = ""
	l.TotalConsumedQuantity = nil
	l.Total = nil
	l.ApprovedQuantity = nil
	l.TotalStockoutDays = nil
	l.PacksToShip = nil
	l.TotalCost = nil
	l.AdjustedConsumption = nil
	l.AverageConsumption = nil
	l.MaximumStockQuantity = nil
	l.CalculatedOrderQuantity = nil
	l.NumberOfNewPatientsAdded = nil
	l.StockAdjustments = nil
}

// updateFrom copies the client-editable values of other onto the line
func (l *RequisitionLineItem) updateFrom(other *RequisitionLineItem) {
	l.BeginningBalance = copyQty(other.BeginningBalance)
	l.TotalReceivedQuantity = copyQty(other.TotalReceivedQuantity)
	l.StockOnHand = copyQty(other.StockOnHand)
	l.RequestedQuantity = copyQty(other.RequestedQuantity)
	l.RequestedQuantityExplanation = other.RequestedQuantityExplanation
	l.TotalConsumedQuantity = copyQty(other.TotalConsumedQuantity)
	l.ApprovedQuantity = copyQty(other.ApprovedQuantity)
	l.TotalStockoutDays = copyQty(other.TotalStockoutDays)
	l.NumberOfNewPatientsAdded = copyQty(other.NumberOfNewPatientsAdded)
	l.Remarks = other.Remarks
	l.Skipped = other.Skipped
	l.StockAdjustments = append([]StockAdjustment(nil), other.StockAdjustments...)
}

// Clone returns a deep copy of the line
func (l *RequisitionLineItem) Clone() *RequisitionLineItem {
	c := *l
	c.BeginningBalance = copyQty(l.BeginningBalance)
	c.TotalReceivedQuantity = copyQty(l.TotalReceivedQuantity)
	c.TotalLossesAndAdjustments = copyQty(l.TotalLossesAndAdjustments)
	c.StockOnHand = copyQty(l.StockOnHand)
	c.RequestedQuantity = copyQty(l.RequestedQuantity)
	c.TotalConsumedQuantity = copyQty(l.TotalConsumedQuantity)
	c.Total = copyQty(l.Total)
	c.ApprovedQuantity = copyQty(l.ApprovedQuantity)
	c.TotalStockoutDays = copyQty(l.TotalStockoutDays)
	c.PacksToShip = copyQty(l.PacksToShip)
	c.PricePerPack = copyMoney(l.PricePerPack)
	c.TotalCost = copyMoney(l.TotalCost)
	c.AdjustedConsumption = copyQty(l.AdjustedConsumption)
	c.PreviousAdjustedConsumptions = append([]int64(nil), l.PreviousAdjustedConsumptions...)
	c.AverageConsumption = copyQty(l.AverageConsumption)
	c.MaximumStockQuantity = copyQty(l.MaximumStockQuantity)
	c.CalculatedOrderQuantity = copyQty(l.CalculatedOrderQuantity)
	c.IdealStockAmount = copyQty(l.IdealStockAmount)
	c.NumberOfNewPatientsAdded = copyQty(l.NumberOfNewPatientsAdded)
	c.StockAdjustments = append([]StockAdjustment(nil), l.StockAdjustments...)
	return &c
}

func copyQty(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyMoney(m *Money) *Money {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
