package postgres

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vsinha/requisition/pkg/domain/entities"
)

func toRecord(state entities.RequisitionState) requisitionRecord {
	rec := requisitionRecord{
		ID:                              state.ID,
		CreatedDate:                     state.CreatedDate,
		ModifiedDate:                    state.ModifiedDate,
		FacilityID:                      state.FacilityID,
		ProgramID:                       state.ProgramID,
		ProcessingPeriodID:              state.ProcessingPeriodID,
		Status:                          state.Status.String(),
		Emergency:                       state.Emergency,
		NumberOfMonthsInPeriod:          state.NumberOfMonthsInPeriod,
		SupervisoryNodeID:               state.SupervisoryNodeID,
		SupplyingFacilityID:             state.SupplyingFacilityID,
		DatePhysicalStockCountCompleted: state.DatePhysicalStockCountCompleted,
		DraftStatusMessage:              state.DraftStatusMessage,
		Template:                        state.Template,
		StockAdjustmentReasons:          state.StockAdjustmentReasons,
		CurrencyCode:                    state.Currency.Code,
		CurrencyMinorUnits:              state.Currency.MinorUnits,
	}
	if state.Template != nil {
		templateID := state.Template.ID
		rec.TemplateID = &templateID
	}

	rec.LineItems = make([]lineItemRecord, 0, len(state.LineItems))
	for i, line := range state.LineItems {
		rec.LineItems = append(rec.LineItems, toLineItemRecord(state.ID, i, line))
	}

	rec.StatusChanges = make([]statusChangeRecord, 0, len(state.StatusChanges))
	for _, change := range state.StatusChanges {
		rec.StatusChanges = append(rec.StatusChanges, statusChangeRecord{
			ID:            change.ID,
			RequisitionID: state.ID,
			AuthorID:      change.AuthorID,
			Status:        change.Status.String(),
			CreatedDate:   change.CreatedDate,
		})
	}

	rec.AvailableProducts = make([]availableProductRecord, 0, len(state.AvailableProducts))
	for i, id := range state.AvailableProducts {
		rec.AvailableProducts = append(rec.AvailableProducts, availableProductRecord{
			RequisitionID: state.ID,
			OrderableID:   id,
			Position:      i,
		})
	}

	rec.PreviousRequisitions = make([]previousRequisitionRecord, 0, len(state.PreviousRequisitionIDs))
	for i, id := range state.PreviousRequisitionIDs {
		rec.PreviousRequisitions = append(rec.PreviousRequisitions, previousRequisitionRecord{
			RequisitionID:         state.ID,
			PreviousRequisitionID: id,
			Position:              i,
		})
	}
	return rec
}

func toLineItemRecord(requisitionID uuid.UUID, position int, line *entities.RequisitionLineItem) lineItemRecord {
	return lineItemRecord{
		ID:                           line.ID,
		RequisitionID:                requisitionID,
		Position:                     position,
		OrderableID:                  line.OrderableID,
		BeginningBalance:             line.BeginningBalance,
		TotalReceivedQuantity:        line.TotalReceivedQuantity,
		TotalLossesAndAdjustments:    line.TotalLossesAndAdjustments,
		StockOnHand:                  line.StockOnHand,
		RequestedQuantity:            line.RequestedQuantity,
		RequestedQuantityExplanation: line.RequestedQuantityExplanation,
		TotalConsumedQuantity:        line.TotalConsumedQuantity,
		Total:                        line.Total,
		ApprovedQuantity:             line.ApprovedQuantity,
		TotalStockoutDays:            line.TotalStockoutDays,
		PacksToShip:                  line.PacksToShip,
		PricePerPack:                 moneyAmount(line.PricePerPack),
		TotalCost:                    moneyAmount(line.TotalCost),
		Skipped:                      line.Skipped,
		AdjustedConsumption:          line.AdjustedConsumption,
		PreviousAdjustedConsumptions: line.PreviousAdjustedConsumptions,
		AverageConsumption:           line.AverageConsumption,
		MaxPeriodsOfStock:            line.MaxPeriodsOfStock,
		MaximumStockQuantity:         line.MaximumStockQuantity,
		CalculatedOrderQuantity:      line.CalculatedOrderQuantity,
		IdealStockAmount:             line.IdealStockAmount,
		NumberOfNewPatientsAdded:     line.NumberOfNewPatientsAdded,
		Remarks:                      line.Remarks,
		NonFullSupply:                line.NonFullSupply,
		StockAdjustments:             line.StockAdjustments,
	}
}

// toState rebuilds a requisition snapshot. Children must already be ordered
// by position and status changes by date.
func toState(rec requisitionRecord) (entities.RequisitionState, error) {
	status, err := entities.ParseRequisitionStatus(rec.Status)
	if err != nil {
		return entities.RequisitionState{}, fmt.Errorf("requisition %s: %w", rec.ID, err)
	}
	currency, err := entities.NewCurrency(rec.CurrencyCode, rec.CurrencyMinorUnits)
	if err != nil {
		return entities.RequisitionState{}, fmt.Errorf("requisition %s: %w", rec.ID, err)
	}

	state := entities.RequisitionState{
		ID:                              rec.ID,
		CreatedDate:                     rec.CreatedDate,
		ModifiedDate:                    rec.ModifiedDate,
		FacilityID:                      rec.FacilityID,
		ProgramID:                       rec.ProgramID,
		ProcessingPeriodID:              rec.ProcessingPeriodID,
		Status:                          status,
		Emergency:                       rec.Emergency,
		NumberOfMonthsInPeriod:          rec.NumberOfMonthsInPeriod,
		SupervisoryNodeID:               rec.SupervisoryNodeID,
		SupplyingFacilityID:             rec.SupplyingFacilityID,
		DatePhysicalStockCountCompleted: rec.DatePhysicalStockCountCompleted,
		DraftStatusMessage:              rec.DraftStatusMessage,
		Template:                        rec.Template,
		StockAdjustmentReasons:          rec.StockAdjustmentReasons,
		Currency:                        currency,
		LineItems:                       make([]*entities.RequisitionLineItem, 0, len(rec.LineItems)),
		StatusChanges:                   make([]entities.StatusChange, 0, len(rec.StatusChanges)),
		AvailableProducts:               make([]uuid.UUID, 0, len(rec.AvailableProducts)),
		PreviousRequisitionIDs:          make([]uuid.UUID, 0, len(rec.PreviousRequisitions)),
	}

	for _, line := range rec.LineItems {
		state.LineItems = append(state.LineItems, toLineItem(line, currency))
	}
	for _, change := range rec.StatusChanges {
		changeStatus, err := entities.ParseRequisitionStatus(change.Status)
		if err != nil {
			return entities.RequisitionState{}, fmt.Errorf("status change %s: %w", change.ID, err)
		}
		state.StatusChanges = append(state.StatusChanges, entities.StatusChange{
			ID:            change.ID,
			RequisitionID: rec.ID,
			AuthorID:      change.AuthorID,
			Status:        changeStatus,
			CreatedDate:   change.CreatedDate,
		})
	}
	for _, product := range rec.AvailableProducts {
		state.AvailableProducts = append(state.AvailableProducts, product.OrderableID)
	}
	for _, previous := range rec.PreviousRequisitions {
		state.PreviousRequisitionIDs = append(state.PreviousRequisitionIDs, previous.PreviousRequisitionID)
	}
	return state, nil
}

func toLineItem(rec lineItemRecord, currency entities.Currency) *entities.RequisitionLineItem {
	return &entities.RequisitionLineItem{
		ID:                           rec.ID,
		RequisitionID:                rec.RequisitionID,
		OrderableID:                  rec.OrderableID,
		BeginningBalance:             rec.BeginningBalance,
		TotalReceivedQuantity:        rec.TotalReceivedQuantity,
		TotalLossesAndAdjustments:    rec.TotalLossesAndAdjustments,
		StockOnHand:                  rec.StockOnHand,
		RequestedQuantity:            rec.RequestedQuantity,
		RequestedQuantityExplanation: rec.RequestedQuantityExplanation,
		TotalConsumedQuantity:        rec.TotalConsumedQuantity,
		Total:                        rec.Total,
		ApprovedQuantity:             rec.ApprovedQuantity,
		TotalStockoutDays:            rec.TotalStockoutDays,
		PacksToShip:                  rec.PacksToShip,
		PricePerPack:                 toMoney(rec.PricePerPack, currency),
		TotalCost:                    toMoney(rec.TotalCost, currency),
		Skipped:                      rec.Skipped,
		AdjustedConsumption:          rec.AdjustedConsumption,
		PreviousAdjustedConsumptions: rec.PreviousAdjustedConsumptions,
		AverageConsumption:           rec.AverageConsumption,
		MaxPeriodsOfStock:            rec.MaxPeriodsOfStock,
		MaximumStockQuantity:         rec.MaximumStockQuantity,
		CalculatedOrderQuantity:      rec.CalculatedOrderQuantity,
		IdealStockAmount:             rec.IdealStockAmount,
		NumberOfNewPatientsAdded:     rec.NumberOfNewPatientsAdded,
		Remarks:                      rec.Remarks,
		NonFullSupply:                rec.NonFullSupply,
		StockAdjustments:             rec.StockAdjustments,
	}
}

func moneyAmount(m *entities.Money) *decimal.Decimal {
	if m == nil {
		return nil
	}
	amount := m.Amount
	return &amount
}

func toMoney(amount *decimal.Decimal, currency entities.Currency) *entities.Money {
	if amount == nil {
		return nil
	}
	m := entities.NewMoney(*amount, currency)
	return &m
}
