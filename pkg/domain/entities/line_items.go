package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NonSkippedLineItems returns the lines the user did not skip
func (r *Requisition) NonSkippedLineItems() []*RequisitionLineItem {
	return r.filterLines(func(l *RequisitionLineItem) bool {
		return !l.IsLineSkipped()
	})
}

// NonSkippedFullSupplyLineItems returns the non-skipped full supply lines
func (r *Requisition) NonSkippedFullSupplyLineItems() []*RequisitionLineItem {
	return r.filterLines(func(l *RequisitionLineItem) bool {
		return !l.IsLineSkipped() && !l.NonFullSupply
	})
}

// NonSkippedNonFullSupplyLineItems returns the non-skipped non-full supply lines
func (r *Requisition) NonSkippedNonFullSupplyLineItems() []*RequisitionLineItem {
	return r.filterLines(func(l *RequisitionLineItem) bool {
		return !l.IsLineSkipped() && l.NonFullSupply
	})
}

// SkippedLineItems returns the lines the user skipped
func (r *Requisition) SkippedLineItems() []*RequisitionLineItem {
	return r.filterLines(func(l *RequisitionLineItem) bool {
		return l.IsLineSkipped()
	})
}

func (r *Requisition) filterLines(keep func(*RequisitionLineItem) bool) []*RequisitionLineItem {
	result := make([]*RequisitionLineItem, 0, len(r.lineItems))
	for _, line := range r.lineItems {
		if keep(line) {
			result = append(result, line)
		}
	}
	return result
}

// FindLineByProductID returns the first line for the product, or nil
func (r *Requisition) FindLineByProductID(productID uuid.UUID) *RequisitionLineItem {
	for _, line := range r.lineItems {
		if line.OrderableID == productID {
			return line
		}
	}
	return nil
}

// updateReqLines merges client lines into the owned lines. Existing lines
// keep their identity and take the client's editable values. Unknown lines
// are accepted only for emergency requisitions or when non-full supply. Full
// supply lines missing from the input are kept on regular requisitions.
func (r *Requisition) updateReqLines(items []*RequisitionLineItem) {
	if items == nil {
		return
	}

	updated := make([]*RequisitionLineItem, 0, len(items))
	updatedIDs := make(map[uuid.UUID]struct{}, len(items))

	for _, item := range items {
		if item == nil {
			continue
		}
		if _, done := updatedIDs[item.ID]; done && item.ID != uuid.Nil {
			continue
		}

		existing := r.findLineByID(item.ID)
		if existing == nil {
			if !r.emergency && !item.NonFullSupply {
				continue
			}
			added := item.Clone()
			if added.ID == uuid.Nil {
				added.ID = uuid.New()
			}
			added.RequisitionID = r.id
			updated = append(updated, added)
			updatedIDs[added.ID] = struct{}{}
			continue
		}

		existing.RequisitionID = r.id
		existing.updateFrom(item)
		updated = append(updated, existing)
		updatedIDs[existing.ID] = struct{}{}
	}

	if !r.emergency {
		for _, line := range r.lineItems {
			if line.NonFullSupply {
				continue
			}
			if _, ok := updatedIDs[line.ID]; !ok {
				updated = append(updated, line)
			}
		}
	}

	r.lineItems = updated
}

func (r *Requisition) findLineByID(id uuid.UUID) *RequisitionLineItem {
	if id == uuid.Nil {
		return nil
	}
	for _, line := range r.lineItems {
		if line.ID == id {
			return line
		}
	}
	return nil
}

// TotalCost sums the cost of every line
func (r *Requisition) TotalCost() Money {
	return r.totalCostForLines(r.lineItems)
}

// FullSupplyTotalCost sums the cost of non-skipped full supply lines
func (r *Requisition) FullSupplyTotalCost() Money {
	return r.totalCostForLines(r.NonSkippedFullSupplyLineItems())
}

// NonFullSupplyTotalCost sums the cost of non-skipped non-full supply lines
func (r *Requisition) NonFullSupplyTotalCost() Money {
	return r.totalCostForLines(r.NonSkippedNonFullSupplyLineItems())
}

func (r *Requisition) totalCostForLines(lines []*RequisitionLineItem) Money {
	sum := decimal.Zero
	for _, line := range lines {
		if line.TotalCost != nil {
			sum = sum.Add(line.TotalCost.Amount)
		}
	}
	return NewMoney(sum, r.currency)
}
