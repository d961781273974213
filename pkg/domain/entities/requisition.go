package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Requisition is a periodic supply request of a facility for a program. It
// owns its line items and its append-only status change history.
type Requisition struct {
	id           uuid.UUID
	createdDate  time.Time
	modifiedDate time.Time

	facilityID         uuid.UUID
	programID          uuid.UUID
	processingPeriodID uuid.UUID
	status             RequisitionStatus
	emergency          bool

	numberOfMonthsInPeriod          int
	supervisoryNodeID               *uuid.UUID
	supplyingFacilityID             *uuid.UUID
	datePhysicalStockCountCompleted *time.Time
	draftStatusMessage              string

	template               *RequisitionTemplate
	lineItems              []*RequisitionLineItem
	statusChanges          []StatusChange
	availableProducts      []uuid.UUID
	stockAdjustmentReasons []StockAdjustmentReason
	previousRequisitionIDs []uuid.UUID
	permissionStrings      []PermissionString

	currency Currency
	clock    func() time.Time
}

// Option configures a Requisition at construction
type Option func(*Requisition)

// WithID fixes the requisition id instead of generating one
func WithID(id uuid.UUID) Option {
	return func(r *Requisition) {
		r.id = id
	}
}

// WithCurrency sets the currency costs are calculated in
func WithCurrency(currency Currency) Option {
	return func(r *Requisition) {
		r.currency = currency
	}
}

// WithClock replaces time.Now for status change and modification stamps
func WithClock(clock func() time.Time) Option {
	return func(r *Requisition) {
		r.clock = clock
	}
}

// NewRequisition creates a requisition for a facility, program and period
func NewRequisition(
	facilityID, programID, processingPeriodID uuid.UUID,
	status RequisitionStatus,
	emergency bool,
	opts ...Option,
) *Requisition {
	r := &Requisition{
		id:                 uuid.New(),
		facilityID:         facilityID,
		programID:          programID,
		processingPeriodID: processingPeriodID,
		status:             status,
		emergency:          emergency,
		currency:           DefaultCurrency,
		clock:              time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.createdDate = r.clock()
	r.permissionStrings = []PermissionString{{
		RightName:  RequisitionView,
		FacilityID: facilityID,
		ProgramID:  programID,
	}}
	return r
}

// InitiationData holds everything needed to build the first version of a requisition
type InitiationData struct {
	Template           *RequisitionTemplate
	FullSupplyProducts []ApprovedProduct
	// PreviousRequisitions is ordered most recent first
	PreviousRequisitions             []*Requisition
	NumberOfPreviousPeriodsToAverage int
	ProofOfDelivery                  *ProofOfDelivery
	// IdealStockAmounts is keyed by commodity type id
	IdealStockAmounts map[uuid.UUID]int64
	InitiatorID       uuid.UUID
	// StockOnHand is keyed by orderable id
	StockOnHand            map[uuid.UUID]int64
	StockAdjustmentReasons []StockAdjustmentReason
	NumberOfMonthsInPeriod int
	AvailableProducts      []uuid.UUID
}

// Initiate creates the line items of a new requisition and records the
// INITIATED status change.
func (r *Requisition) Initiate(data InitiationData) error {
	if len(r.statusChanges) > 0 {
		return fmt.Errorf("%w: requisition %s is already initiated", ErrInvalidTransition, r.id)
	}
	if data.Template == nil {
		verr := NewValidationError(r.id.String())
		verr.Add("template", "requisition template is required")
		return verr
	}

	r.template = data.Template
	r.numberOfMonthsInPeriod = data.NumberOfMonthsInPeriod
	r.stockAdjustmentReasons = append([]StockAdjustmentReason(nil), data.StockAdjustmentReasons...)
	r.availableProducts = uniqueIDs(data.AvailableProducts)
	r.previousRequisitionIDs = make([]uuid.UUID, 0, len(data.PreviousRequisitions))
	for _, previous := range data.PreviousRequisitions {
		if previous != nil {
			r.previousRequisitionIDs = append(r.previousRequisitionIDs, previous.id)
		}
	}

	r.initiateLineItems(data.FullSupplyProducts, data.IdealStockAmounts, data.StockOnHand)

	if len(data.PreviousRequisitions) > 0 && data.PreviousRequisitions[0] != nil &&
		data.Template.IsColumnDisplayed(BeginningBalanceColumn) {
		previousLines := make(map[uuid.UUID]*RequisitionLineItem)
		for _, line := range data.PreviousRequisitions[0].lineItems {
			if _, seen := previousLines[line.OrderableID]; !seen {
				previousLines[line.OrderableID] = line
			}
		}
		for _, line := range r.NonSkippedFullSupplyLineItems() {
			line.BeginningBalance = Qty(CalculateBeginningBalance(previousLines[line.OrderableID]))
		}
	}

	if data.ProofOfDelivery != nil && data.ProofOfDelivery.Submitted {
		podLines := make(map[uuid.UUID]ProofOfDeliveryLineItem)
		for _, podLine := range data.ProofOfDelivery.LineItems {
			if podLine.OrderableID == nil {
				continue
			}
			if _, seen := podLines[*podLine.OrderableID]; !seen {
				podLines[*podLine.OrderableID] = podLine
			}
		}
		for _, line := range r.NonSkippedFullSupplyLineItems() {
			if podLine, ok := podLines[line.OrderableID]; ok {
				line.TotalReceivedQuantity = Qty(valueOrZero(podLine.QuantityAccepted))
			}
		}
	}

	r.setPreviousAdjustedConsumptions(data.PreviousRequisitions, data.NumberOfPreviousPeriodsToAverage)

	r.status = Initiated
	r.appendStatusChange(data.InitiatorID)
	return nil
}

func (r *Requisition) initiateLineItems(
	products []ApprovedProduct,
	idealStockAmounts map[uuid.UUID]int64,
	stockOnHand map[uuid.UUID]int64,
) {
	r.lineItems = make([]*RequisitionLineItem, 0, len(products))
	if r.emergency {
		return
	}

	for _, product := range products {
		var isa *int64
		if commodityType, err := uuid.Parse(product.Orderable.CommodityTypeIdentifier); err == nil {
			if amount, ok := idealStockAmounts[commodityType]; ok {
				isa = Qty(amount)
			}
		}
		var soh *int64
		if amount, ok := stockOnHand[product.Orderable.ID]; ok {
			soh = Qty(amount)
		}
		r.lineItems = append(r.lineItems, NewRequisitionLineItem(r.id, product, isa, soh, r.currency))
	}
}

// setPreviousAdjustedConsumptions copies the adjusted consumptions of the same
// product from the first n previous requisitions onto each line.
func (r *Requisition) setPreviousAdjustedConsumptions(previous []*Requisition, n int) {
	if n > len(previous) {
		n = len(previous)
	}
	if n < 0 {
		n = 0
	}

	var previousLines []*RequisitionLineItem
	for _, requisition := range previous[:n] {
		if requisition != nil {
			previousLines = append(previousLines, requisition.NonSkippedLineItems()...)
		}
	}

	for _, line := range r.lineItems {
		consumptions := make([]int64, 0, n)
		for _, previousLine := range previousLines {
			if previousLine.OrderableID == line.OrderableID && previousLine.AdjustedConsumption != nil {
				consumptions = append(consumptions, *previousLine.AdjustedConsumption)
			}
		}
		line.PreviousAdjustedConsumptions = consumptions
	}
}

// Submit moves an initiated or rejected requisition to SUBMITTED. With
// skipAuthorize it continues straight to AUTHORIZED.
func (r *Requisition) Submit(products []Orderable, submitterID uuid.UUID, skipAuthorize bool) error {
	if !r.status.IsSubmittable() {
		return fmt.Errorf("%w: requisition %s must be initiated to be submitted, status is %s",
			ErrInvalidTransition, r.id, r.status)
	}
	if missing := r.missingRequiredFields(); len(missing) > 0 {
		return fmt.Errorf("%w: requisition %s is missing %v", ErrIncompleteFields, r.id, missing)
	}

	r.updateConsumptions()
	r.updateTotalCostAndPacksToShip(products)

	r.status = Submitted
	r.appendStatusChange(submitterID)

	if skipAuthorize {
		r.populateApprovedQuantity()
		r.status = Authorized
		r.resetSkippedLines()
		r.appendStatusChange(submitterID)
	}
	return nil
}

// Authorize moves a submitted requisition to AUTHORIZED
func (r *Requisition) Authorize(products []Orderable, authorizerID uuid.UUID) error {
	if r.status != Submitted {
		return fmt.Errorf("%w: requisition %s must be submitted to be authorized, status is %s",
			ErrInvalidTransition, r.id, r.status)
	}

	r.updateConsumptions()
	r.updateTotalCostAndPacksToShip(products)
	r.populateApprovedQuantity()

	r.status = Authorized
	r.resetSkippedLines()
	r.appendStatusChange(authorizerID)
	return nil
}

// Approve records one approval. Without a supply line the requisition moves
// up to the given supervisory node; otherwise the approval is final.
func (r *Requisition) Approve(
	nodeID *uuid.UUID,
	products []Orderable,
	supplyLines []SupplyLine,
	approverID uuid.UUID,
) error {
	if !r.IsApprovable() {
		return fmt.Errorf("%w: requisition %s must be authorized or in approval to be approved, status is %s",
			ErrInvalidTransition, r.id, r.status)
	}

	if len(supplyLines) == 0 && nodeID != nil {
		node := *nodeID
		r.status = InApproval
		r.supervisoryNodeID = &node
	} else {
		r.status = Approved
		if len(supplyLines) > 0 {
			facility := supplyLines[0].SupplyingFacilityID
			r.supplyingFacilityID = &facility
		}
	}

	r.updateConsumptions()
	r.updateTotalCostAndPacksToShip(products)
	r.appendStatusChange(approverID)
	return nil
}

// AssignSupervisoryNode routes an authorized requisition to its first approver
func (r *Requisition) AssignSupervisoryNode(nodeID uuid.UUID) error {
	if !r.IsApprovable() {
		return fmt.Errorf("%w: requisition %s must be authorized to be routed, status is %s",
			ErrInvalidTransition, r.id, r.status)
	}
	r.supervisoryNodeID = &nodeID
	return nil
}

// Reject sends a requisition under approval back to the facility
func (r *Requisition) Reject(products []Orderable, rejectorID uuid.UUID) error {
	if !r.IsApprovable() {
		return fmt.Errorf("%w: requisition %s must be authorized or in approval to be rejected, status is %s",
			ErrInvalidTransition, r.id, r.status)
	}

	r.status = Rejected
	r.updateConsumptions()
	r.updateTotalCostAndPacksToShip(products)
	r.appendStatusChange(rejectorID)
	return nil
}

// Release marks an approved requisition as released for ordering
func (r *Requisition) Release(releaserID uuid.UUID) error {
	if r.status != Approved {
		return fmt.Errorf("%w: requisition %s must be approved to be released, status is %s",
			ErrInvalidTransition, r.id, r.status)
	}

	r.status = Released
	r.appendStatusChange(releaserID)
	return nil
}

// Skip marks the period as skipped when the template allows it
func (r *Requisition) Skip(skipperID uuid.UUID) error {
	if !r.status.IsSubmittable() {
		return fmt.Errorf("%w: requisition %s must be initiated to be skipped, status is %s",
			ErrInvalidTransition, r.id, r.status)
	}
	if r.emergency || r.template == nil || !r.template.SkipAllowed {
		verr := NewValidationError(r.id.String())
		verr.Add("status", "requisition cannot be skipped")
		return verr
	}

	r.status = Skipped
	r.appendStatusChange(skipperID)
	return nil
}

// UpdateFrom copies the editable values of a draft into this requisition
// and recalculates template fields. The status does not change.
func (r *Requisition) UpdateFrom(other *Requisition, products []Orderable, datePhysicalStockCountCompletedEnabled bool) error {
	if other == nil {
		verr := NewValidationError(r.id.String())
		verr.Add("requisition", "update source is required")
		return verr
	}

	if other.numberOfMonthsInPeriod > 0 {
		r.numberOfMonthsInPeriod = other.numberOfMonthsInPeriod
	}
	r.draftStatusMessage = other.draftStatusMessage

	r.updateReqLines(other.lineItems)
	r.calculateTemplateFields()
	r.updateTotalCostAndPacksToShip(products)

	if datePhysicalStockCountCompletedEnabled {
		r.datePhysicalStockCountCompleted = copyTime(other.datePhysicalStockCountCompleted)
	}

	// line item changes are not visible to the storage layer otherwise
	r.modifiedDate = r.clock()
	return nil
}

// IsApprovable reports whether the requisition waits on an approver
func (r *Requisition) IsApprovable() bool {
	return r.status.DuringApproval()
}

// IsPreAuthorize reports whether the requisition has not been authorized yet
func (r *Requisition) IsPreAuthorize() bool {
	return r.status.IsPreAuthorize()
}

// IsPostSubmitted reports whether the requisition has been submitted
func (r *Requisition) IsPostSubmitted() bool {
	return r.status.IsPostSubmitted()
}

// IsDeletable reports whether the requisition may still be deleted
func (r *Requisition) IsDeletable() bool {
	return r.IsPreAuthorize() || r.status.IsSkipped()
}

// LatestStatusChange returns the most recent status change, or nil. Changes
// with a zero date sort first; on equal dates the later entry wins.
func (r *Requisition) LatestStatusChange() *StatusChange {
	var latest *StatusChange
	for i := range r.statusChanges {
		change := &r.statusChanges[i]
		if latest == nil || !change.CreatedDate.Before(latest.CreatedDate) {
			latest = change
		}
	}
	if latest == nil {
		return nil
	}
	c := *latest
	return &c
}

// AllOrderableIDs returns the products of all lines plus the available
// non-full supply products.
func (r *Requisition) AllOrderableIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.lineItems)+len(r.availableProducts))
	for _, line := range r.lineItems {
		ids = append(ids, line.OrderableID)
	}
	ids = append(ids, r.availableProducts...)
	return uniqueIDs(ids)
}

func (r *Requisition) appendStatusChange(authorID uuid.UUID) {
	r.statusChanges = append(r.statusChanges, newStatusChange(r.id, authorID, r.status, r.clock()))
}

func (r *Requisition) missingRequiredFields() []string {
	consumptionCalculated := r.template.IsColumnCalculated(TotalConsumedQuantityColumn)
	stockOnHandCalculated := r.template.IsColumnCalculated(StockOnHandColumn)

	var missing []string
	for _, line := range r.NonSkippedFullSupplyLineItems() {
		required := map[string]*int64{
			BeginningBalanceColumn:      line.BeginningBalance,
			TotalReceivedQuantityColumn: line.TotalReceivedQuantity,
			StockOnHandColumn:           line.StockOnHand,
			TotalConsumedQuantityColumn: line.TotalConsumedQuantity,
		}
		for _, column := range []string{
			BeginningBalanceColumn,
			TotalReceivedQuantityColumn,
			StockOnHandColumn,
			TotalConsumedQuantityColumn,
		} {
			needed := r.template.IsColumnUserInput(column) ||
				(column == StockOnHandColumn && consumptionCalculated) ||
				(column == TotalConsumedQuantityColumn && stockOnHandCalculated)
			if needed && required[column] == nil {
				missing = append(missing, fmt.Sprintf("%s.%s", line.OrderableID, column))
			}
		}
	}
	return missing
}

func (r *Requisition) calculateTemplateFields() {
	for _, line := range r.NonSkippedFullSupplyLineItems() {
		line.CalculateAndSetFields(r.template, r.stockAdjustmentReasons, r.numberOfMonthsInPeriod)
	}
}

func (r *Requisition) updateConsumptions() {
	if r.template.IsColumnInTemplateAndDisplayed(AdjustedConsumptionColumn) {
		for _, line := range r.NonSkippedFullSupplyLineItems() {
			line.AdjustedConsumption = Qty(CalculateAdjustedConsumption(line, r.numberOfMonthsInPeriod))
		}
	}
	if r.template.IsColumnInTemplateAndDisplayed(AverageConsumptionColumn) {
		for _, line := range r.NonSkippedFullSupplyLineItems() {
			line.AverageConsumption = Qty(CalculateAverageConsumption(line))
		}
	}
}

func (r *Requisition) updateTotalCostAndPacksToShip(products []Orderable) {
	for _, line := range r.NonSkippedLineItems() {
		line.updatePacksToShip(products, r.currency)
		cost := CalculateTotalCost(line, r.currency)
		line.TotalCost = &cost
	}
}

func (r *Requisition) populateApprovedQuantity() {
	useCalculated := r.template.IsColumnDisplayed(CalculatedOrderQuantityColumn)
	for _, line := range r.NonSkippedLineItems() {
		if useCalculated && line.RequestedQuantity == nil {
			line.ApprovedQuantity = copyQty(line.CalculatedOrderQuantity)
		} else {
			line.ApprovedQuantity = copyQty(line.RequestedQuantity)
		}
	}
}

func (r *Requisition) resetSkippedLines() {
	for _, line := range r.SkippedLineItems() {
		line.resetData()
	}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
