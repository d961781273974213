package entities

import "github.com/shopspring/decimal"

// DaysInMonth is the fixed month length used to normalize consumption
const DaysInMonth = 30

// CalculateBeginningBalance carries the previous period's stock on hand
// forward. A missing or skipped previous line contributes nothing.
func CalculateBeginningBalance(previous *RequisitionLineItem) int64 {
	if previous == nil || previous.IsLineSkipped() {
		return 0
	}
	return valueOrZero(previous.StockOnHand)
}

// CalculateTotal returns A + B
func CalculateTotal(line *RequisitionLineItem) int64 {
	return valueOrZero(line.BeginningBalance) + valueOrZero(line.TotalReceivedQuantity)
}

// CalculateStockOnHand returns A + B - C + D
func CalculateStockOnHand(line *RequisitionLineItem) int64 {
	return valueOrZero(line.BeginningBalance) +
		valueOrZero(line.TotalReceivedQuantity) -
		valueOrZero(line.TotalConsumedQuantity) +
		valueOrZero(line.TotalLossesAndAdjustments)
}

// CalculateTotalConsumedQuantity returns A + B + D - E
func CalculateTotalConsumedQuantity(line *RequisitionLineItem) int64 {
	return valueOrZero(line.BeginningBalance) +
		valueOrZero(line.TotalReceivedQuantity) +
		valueOrZero(line.TotalLossesAndAdjustments) -
		valueOrZero(line.StockOnHand)
}

// CalculateTotalLossesAndAdjustments sums the line's adjustments, adding
// credits and subtracting debits. Adjustments with an unknown reason are ignored.
func CalculateTotalLossesAndAdjustments(line *RequisitionLineItem, reasons []StockAdjustmentReason) int64 {
	var total int64
	for _, adjustment := range line.StockAdjustments {
		for _, reason := range reasons {
			if reason.ID != adjustment.ReasonID {
				continue
			}
			if reason.ReasonType == Credit {
				total += adjustment.Quantity
			} else {
				total -= adjustment.Quantity
			}
			break
		}
	}
	return total
}

// CalculateAdjustedConsumption scales consumption up to what it would have
// been without stockouts: C * totalDays / (totalDays - X), rounded up.
func CalculateAdjustedConsumption(line *RequisitionLineItem, monthsInPeriod int) int64 {
	consumed := valueOrZero(line.TotalConsumedQuantity)
	if consumed == 0 {
		return 0
	}

	totalDays := int64(DaysInMonth * monthsInPeriod)
	nonStockoutDays := totalDays - valueOrZero(line.TotalStockoutDays)
	if totalDays <= 0 || nonStockoutDays <= 0 || nonStockoutDays == totalDays {
		return consumed
	}

	adjusted := decimal.NewFromInt(consumed).
		Mul(decimal.NewFromInt(totalDays)).
		Div(decimal.NewFromInt(nonStockoutDays))
	return adjusted.Ceil().IntPart()
}

// CalculateAverageConsumption averages the previous adjusted consumptions
// together with the line's own, rounding half up.
func CalculateAverageConsumption(line *RequisitionLineItem) int64 {
	values := append([]int64(nil), line.PreviousAdjustedConsumptions...)
	if line.AdjustedConsumption != nil {
		values = append(values, *line.AdjustedConsumption)
	}
	if len(values) == 0 {
		return 0
	}

	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromInt(v))
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))).Round(0).IntPart()
}

// CalculateMaximumStockQuantity returns average consumption times the
// maximum periods of stock, rounded half up.
func CalculateMaximumStockQuantity(line *RequisitionLineItem) int64 {
	return decimal.NewFromInt(valueOrZero(line.AverageConsumption)).
		Mul(line.MaxPeriodsOfStock).
		Round(0).
		IntPart()
}

// CalculateCalculatedOrderQuantity returns what is needed to reach the
// maximum stock quantity, never less than zero.
func CalculateCalculatedOrderQuantity(line *RequisitionLineItem) int64 {
	quantity := valueOrZero(line.MaximumStockQuantity) - valueOrZero(line.StockOnHand)
	if quantity < 0 {
		return 0
	}
	return quantity
}

// CalculatePacksToShip converts an order quantity into whole packs of the orderable
func CalculatePacksToShip(quantity *int64, orderable Orderable) int64 {
	q := valueOrZero(quantity)
	if q <= 0 || orderable.NetContent <= 0 {
		return 0
	}

	packs := q / orderable.NetContent
	remainder := q % orderable.NetContent
	if remainder > 0 && remainder > orderable.PackRoundingThreshold {
		packs++
	}
	if packs == 0 && !orderable.RoundToZero {
		packs = 1
	}
	return packs
}

// CalculateTotalCost returns packs to ship times price per pack in the given
// currency. A missing price or pack count costs nothing.
func CalculateTotalCost(line *RequisitionLineItem, currency Currency) Money {
	if line.PricePerPack == nil || line.PacksToShip == nil {
		return ZeroMoney(currency)
	}
	return NewMoney(line.PricePerPack.Amount, currency).Times(*line.PacksToShip)
}
