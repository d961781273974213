package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/vsinha/requisition/pkg/domain/entities"
	"github.com/vsinha/requisition/pkg/domain/repositories"
	"github.com/vsinha/requisition/pkg/infrastructure/events"
	"github.com/vsinha/requisition/pkg/infrastructure/locking"
	testinghelpers "github.com/vsinha/requisition/pkg/infrastructure/testing"
)

type serviceFixture struct {
	scenario *testinghelpers.Scenario
	service  *RequisitionService
	events   *events.InMemoryEventStore
	locker   *locking.MemoryLocker
	user     uuid.UUID
}

func newServiceFixture(t *testing.T, config ServiceConfig) *serviceFixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s := testinghelpers.BuildMonthlyScenario()
	store := events.NewInMemoryEventStore(logger)
	locker := locking.NewMemoryLocker()

	config.Clock = s.Clock
	service := NewRequisitionService(Repositories{
		Requisitions:     s.Requisitions,
		Periods:          s.Periods,
		Schedules:        s.Schedules,
		Templates:        s.Templates,
		Products:         s.ReferenceData,
		SupplyLines:      s.ReferenceData,
		SupervisoryNodes: s.SupervisoryNodes,
		ProofsOfDelivery: s.ReferenceData,
		Stock:            s.ReferenceData,
	}, config, WithLogger(logger), WithEventStore(store), WithLocker(locker))

	return &serviceFixture{scenario: s, service: service, events: store, locker: locker, user: uuid.New()}
}

func (f *serviceFixture) initiate(t *testing.T) *entities.Requisition {
	t.Helper()
	r, err := f.service.Initiate(context.Background(), InitiateRequest{
		FacilityID:  f.scenario.FacilityID,
		ProgramID:   f.scenario.ProgramID,
		InitiatorID: f.user,
	})
	if err != nil {
		t.Fatalf("Initiate failed: %v", err)
	}
	return r
}

func (f *serviceFixture) fill(t *testing.T, r *entities.Requisition) *entities.Requisition {
	t.Helper()
	updated, err := f.service.Update(context.Background(), r.ID(), testinghelpers.FilledDraft(r, 100, 60))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	return updated
}

// release runs a requisition through every approval step
func (f *serviceFixture) release(t *testing.T, r *entities.Requisition) *entities.Requisition {
	t.Helper()
	ctx := context.Background()
	steps := []func(context.Context, uuid.UUID, uuid.UUID) (*entities.Requisition, error){
		f.service.Submit,
		f.service.Authorize,
		f.service.Approve,
		f.service.Approve,
		f.service.Release,
	}
	for i, step := range steps {
		var err error
		r, err = step(ctx, r.ID(), f.user)
		if err != nil {
			t.Fatalf("Step %d failed: %v", i, err)
		}
	}
	return r
}

func TestRequisitionService_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, ServiceConfig{})
	s := f.scenario

	r := f.initiate(t)
	if r.ProcessingPeriodID() != s.ProcessingPeriods[0].ID {
		t.Errorf("Expected the oldest period, got %s", r.ProcessingPeriodID())
	}
	if len(r.LineItems()) != 2 {
		t.Fatalf("Expected one line per full supply product, got %d", len(r.LineItems()))
	}
	if len(r.AvailableProducts()) != 1 || r.AvailableProducts()[0] != s.NonFullSupplyProducts[0].Orderable.ID {
		t.Errorf("Expected the non-full supply product to be available, got %v", r.AvailableProducts())
	}

	r = f.fill(t, r)
	line := r.FindLineByProductID(s.FullSupplyProducts[0].Orderable.ID)
	if line.StockOnHand == nil || *line.StockOnHand != 40 {
		t.Errorf("Expected calculated stock on hand 40, got %v", line.StockOnHand)
	}
	if line.CalculatedOrderQuantity == nil || *line.CalculatedOrderQuantity != 140 {
		t.Errorf("Expected calculated order quantity 140, got %v", line.CalculatedOrderQuantity)
	}

	r, err := f.service.Submit(ctx, r.ID(), f.user)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	r, err = f.service.Authorize(ctx, r.ID(), f.user)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if r.SupervisoryNodeID() == nil || *r.SupervisoryNodeID() != s.Nodes[0].ID {
		t.Fatalf("Expected routing to the district node, got %v", r.SupervisoryNodeID())
	}

	r, err = f.service.Approve(ctx, r.ID(), f.user)
	if err != nil {
		t.Fatalf("First approval failed: %v", err)
	}
	if r.Status() != entities.InApproval || *r.SupervisoryNodeID() != s.Nodes[1].ID {
		t.Fatalf("Expected IN_APPROVAL at the province node, got %s", r.Status())
	}

	r, err = f.service.Approve(ctx, r.ID(), f.user)
	if err != nil {
		t.Fatalf("Final approval failed: %v", err)
	}
	if r.Status() != entities.Approved {
		t.Fatalf("Expected APPROVED, got %s", r.Status())
	}
	if r.SupplyingFacilityID() == nil || *r.SupplyingFacilityID() != s.SupplyingFacilityID {
		t.Errorf("Expected supplying facility from the supply line, got %v", r.SupplyingFacilityID())
	}

	r, err = f.service.Release(ctx, r.ID(), f.user)
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	stored, err := f.service.Get(ctx, r.ID())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Status() != entities.Released {
		t.Errorf("Expected stored status RELEASED, got %s", stored.Status())
	}
	if stored.TotalCost().String() != "USD 140.00" {
		t.Errorf("Expected total cost USD 140.00, got %s", stored.TotalCost())
	}
	if len(stored.StatusChanges()) != 6 {
		t.Errorf("Expected 6 status changes, got %d", len(stored.StatusChanges()))
	}

	stream, _ := f.events.ReadEvents(events.StreamID(r.ID()), 1)
	if len(stream) != 7 {
		t.Fatalf("Expected 7 events, got %d", len(stream))
	}
	if stream[0].Type() != events.RequisitionInitiatedEvent || stream[1].Type() != events.RequisitionUpdatedEvent {
		t.Errorf("Expected initiated then updated, got %s then %s", stream[0].Type(), stream[1].Type())
	}
	last := stream[6].Data().(events.RequisitionStatusChanged)
	if last.From != entities.Approved || last.To != entities.Released {
		t.Errorf("Expected APPROVED to RELEASED, got %s to %s", last.From, last.To)
	}
}

func TestRequisitionService_InitiateSeedsFromPreviousPeriod(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, ServiceConfig{})
	s := f.scenario
	product := s.FullSupplyProducts[0].Orderable.ID

	january := f.release(t, f.fill(t, f.initiate(t)))
	f.scenario.ReferenceData.AddProofOfDelivery(january.ID(), entities.ProofOfDelivery{
		ID:        uuid.New(),
		Submitted: true,
		LineItems: []entities.ProofOfDeliveryLineItem{{OrderableID: &product, QuantityAccepted: entities.Qty(90)}},
	})

	february, err := f.service.Initiate(ctx, InitiateRequest{
		FacilityID:  s.FacilityID,
		ProgramID:   s.ProgramID,
		PeriodID:    &s.ProcessingPeriods[1].ID,
		InitiatorID: f.user,
	})
	if err != nil {
		t.Fatalf("Initiate failed: %v", err)
	}

	line := february.FindLineByProductID(product)
	testCases := []struct {
		name     string
		actual   *int64
		expected int64
	}{
		{"beginning balance", line.BeginningBalance, 40},
		{"total received quantity", line.TotalReceivedQuantity, 90},
		{"ideal stock amount", line.IdealStockAmount, 500},
		{"stock on hand", line.StockOnHand, 35},
	}
	for _, tc := range testCases {
		if tc.actual == nil || *tc.actual != tc.expected {
			t.Errorf("Expected %s %d, got %v", tc.name, tc.expected, tc.actual)
		}
	}
	if len(line.PreviousAdjustedConsumptions) != 1 || line.PreviousAdjustedConsumptions[0] != 60 {
		t.Errorf("Expected previous adjusted consumptions [60], got %v", line.PreviousAdjustedConsumptions)
	}
	if ids := february.PreviousRequisitionIDs(); len(ids) != 1 || ids[0] != january.ID() {
		t.Errorf("Expected January as previous requisition, got %v", ids)
	}
}

func TestRequisitionService_InitiateRules(t *testing.T) {
	ctx := context.Background()

	t.Run("open requisition blocks the next period", func(t *testing.T) {
		f := newServiceFixture(t, ServiceConfig{})
		f.initiate(t)
		_, err := f.service.Initiate(ctx, InitiateRequest{FacilityID: f.scenario.FacilityID, ProgramID: f.scenario.ProgramID})
		if !errors.Is(err, entities.ErrUnfinishedPriorRequisition) {
			t.Errorf("Expected ErrUnfinishedPriorRequisition, got %v", err)
		}
	})

	t.Run("suggested period must be the oldest", func(t *testing.T) {
		f := newServiceFixture(t, ServiceConfig{})
		_, err := f.service.Initiate(ctx, InitiateRequest{
			FacilityID: f.scenario.FacilityID,
			ProgramID:  f.scenario.ProgramID,
			PeriodID:   &f.scenario.ProcessingPeriods[2].ID,
		})
		if !errors.Is(err, entities.ErrInvalidPeriod) {
			t.Errorf("Expected ErrInvalidPeriod, got %v", err)
		}
	})

	t.Run("emergency needs a submitted current period", func(t *testing.T) {
		f := newServiceFixture(t, ServiceConfig{})
		_, err := f.service.Initiate(ctx, InitiateRequest{
			FacilityID: f.scenario.FacilityID,
			ProgramID:  f.scenario.ProgramID,
			Emergency:  true,
		})
		if !errors.Is(err, entities.ErrInvalidPeriod) {
			t.Errorf("Expected ErrInvalidPeriod, got %v", err)
		}
	})

	t.Run("unknown program has no schedule", func(t *testing.T) {
		f := newServiceFixture(t, ServiceConfig{})
		_, err := f.service.Initiate(ctx, InitiateRequest{FacilityID: f.scenario.FacilityID, ProgramID: uuid.New()})
		if !errors.Is(err, entities.ErrInvalidPeriod) {
			t.Errorf("Expected ErrInvalidPeriod, got %v", err)
		}
	})
}

func TestRequisitionService_EmergencyAfterCurrentPeriodSubmitted(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, ServiceConfig{})

	// January and February released, March submitted
	f.release(t, f.fill(t, f.initiate(t)))
	f.release(t, f.fill(t, f.initiate(t)))
	march := f.fill(t, f.initiate(t))
	if _, err := f.service.Submit(ctx, march.ID(), f.user); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	emergency, err := f.service.Initiate(ctx, InitiateRequest{
		FacilityID: f.scenario.FacilityID,
		ProgramID:  f.scenario.ProgramID,
		Emergency:  true,
	})
	if err != nil {
		t.Fatalf("Emergency initiate failed: %v", err)
	}
	if emergency.ProcessingPeriodID() != f.scenario.ProcessingPeriods[2].ID {
		t.Errorf("Expected emergency requisition for March, got %s", emergency.ProcessingPeriodID())
	}
	if len(emergency.LineItems()) != 0 {
		t.Errorf("Expected no full supply lines on an emergency requisition, got %d", len(emergency.LineItems()))
	}
}

func TestRequisitionService_ValidationErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, ServiceConfig{})
	r := f.initiate(t)

	draft := testinghelpers.FilledDraft(r, 100, 60)
	draft.RequisitionLineItems[0].RequestedQuantity = entities.Qty(200)
	if _, err := f.service.Update(ctx, r.ID(), draft); err != nil {
		t.Fatalf("Expected draft without explanation to be saved, got %v", err)
	}

	_, err := f.service.Submit(ctx, r.ID(), f.user)
	var verr *entities.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["requisitionLineItems[0].requestedQuantityExplanation"]; !ok {
		t.Errorf("Expected explanation error, got %v", verr.Fields)
	}

	stored, _ := f.service.Get(ctx, r.ID())
	if stored.Status() != entities.Initiated {
		t.Errorf("Expected status to stay INITIATED, got %s", stored.Status())
	}
}

func TestRequisitionService_IncompleteSubmit(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, ServiceConfig{})
	r := f.initiate(t)

	_, err := f.service.Submit(ctx, r.ID(), f.user)
	if !errors.Is(err, entities.ErrIncompleteFields) {
		t.Fatalf("Expected ErrIncompleteFields, got %v", err)
	}
	stream, _ := f.events.ReadEvents(events.StreamID(r.ID()), 1)
	if len(stream) != 1 {
		t.Errorf("Expected only the initiated event, got %d", len(stream))
	}
}

func TestRequisitionService_RejectAndResubmit(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, ServiceConfig{})
	r := f.fill(t, f.initiate(t))

	for _, step := range []func(context.Context, uuid.UUID, uuid.UUID) (*entities.Requisition, error){
		f.service.Submit, f.service.Authorize, f.service.Reject,
	} {
		var err error
		if r, err = step(ctx, r.ID(), f.user); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}
	if r.Status() != entities.Rejected {
		t.Fatalf("Expected REJECTED, got %s", r.Status())
	}

	r, err := f.service.Submit(ctx, r.ID(), f.user)
	if err != nil {
		t.Fatalf("Resubmit failed: %v", err)
	}
	if r.Status() != entities.Submitted {
		t.Errorf("Expected SUBMITTED, got %s", r.Status())
	}

	if _, err := f.service.Release(ctx, r.ID(), f.user); !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition releasing a submitted requisition, got %v", err)
	}
}

func TestRequisitionService_SkipAuthorization(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{SkipAuthorization: true})
	r := f.fill(t, f.initiate(t))

	r, err := f.service.Submit(context.Background(), r.ID(), f.user)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if r.Status() != entities.Authorized {
		t.Errorf("Expected AUTHORIZED, got %s", r.Status())
	}
	if r.SupervisoryNodeID() == nil {
		t.Errorf("Expected requisition to be routed to a supervisory node")
	}
}

func TestRequisitionService_SkipPeriod(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, ServiceConfig{})
	january := f.initiate(t)

	skipped, err := f.service.Skip(ctx, january.ID(), f.user)
	if err != nil {
		t.Fatalf("Skip failed: %v", err)
	}
	if skipped.Status() != entities.Skipped {
		t.Fatalf("Expected SKIPPED, got %s", skipped.Status())
	}

	february := f.initiate(t)
	if february.ProcessingPeriodID() != f.scenario.ProcessingPeriods[1].ID {
		t.Errorf("Expected February after skipping January, got %s", february.ProcessingPeriodID())
	}
}

func TestRequisitionService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, ServiceConfig{})

	r := f.initiate(t)
	if err := f.service.Delete(ctx, r.ID()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := f.service.Get(ctx, r.ID()); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	authorized := f.fill(t, f.initiate(t))
	authorized, _ = f.service.Submit(ctx, authorized.ID(), f.user)
	authorized, _ = f.service.Authorize(ctx, authorized.ID(), f.user)
	if err := f.service.Delete(ctx, authorized.ID()); !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition deleting an authorized requisition, got %v", err)
	}
}

func TestRequisitionService_LockedRequisition(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, ServiceConfig{})
	r := f.fill(t, f.initiate(t))

	lock, err := f.locker.Obtain(ctx, locking.RequisitionKey(r.ID()))
	if err != nil {
		t.Fatalf("Obtain failed: %v", err)
	}
	if _, err := f.service.Submit(ctx, r.ID(), f.user); !errors.Is(err, locking.ErrNotObtained) {
		t.Errorf("Expected ErrNotObtained while locked, got %v", err)
	}

	lock.Release(ctx)
	if _, err := f.service.Submit(ctx, r.ID(), f.user); err != nil {
		t.Errorf("Expected submit after release to succeed, got %v", err)
	}
}

func TestRequisitionService_UpdateRejectsForeignDraft(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, ServiceConfig{})
	r := f.initiate(t)

	draft := testinghelpers.FilledDraft(r, 100, 60)
	draft.ID = uuid.New()
	_, err := f.service.Update(ctx, r.ID(), draft)
	var verr *entities.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for mismatched id, got %v", err)
	}

	if _, err := f.service.Update(ctx, uuid.New(), draft); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown requisition, got %v", err)
	}
}

func TestRequisitionService_AvailablePeriods(t *testing.T) {
	f := newServiceFixture(t, ServiceConfig{})
	f.release(t, f.fill(t, f.initiate(t)))

	periods, err := f.service.AvailablePeriods(context.Background(), f.scenario.ProgramID, f.scenario.FacilityID, false)
	if err != nil {
		t.Fatalf("AvailablePeriods failed: %v", err)
	}
	if len(periods) != 5 || periods[0].ID != f.scenario.ProcessingPeriods[1].ID {
		t.Errorf("Expected February to June, got %d periods", len(periods))
	}
}
