package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vsinha/requisition/pkg/domain/entities"
	"github.com/vsinha/requisition/pkg/domain/repositories"
	domainservices "github.com/vsinha/requisition/pkg/domain/services"
	"github.com/vsinha/requisition/pkg/infrastructure/events"
	"github.com/vsinha/requisition/pkg/infrastructure/locking"
)

// Repositories groups the ports the requisition service reads and writes
type Repositories struct {
	Requisitions     repositories.RequisitionRepository
	Periods          repositories.PeriodRepository
	Schedules        repositories.ScheduleRepository
	Templates        repositories.TemplateRepository
	Products         repositories.ProductRepository
	SupplyLines      repositories.SupplyLineRepository
	SupervisoryNodes repositories.SupervisoryNodeRepository
	ProofsOfDelivery repositories.ProofOfDeliveryRepository
	Stock            repositories.StockRepository
}

// ServiceConfig holds the settings of the requisition service
type ServiceConfig struct {
	Currency entities.Currency
	// NumberOfPeriodsToAverage is used when the template does not set one
	NumberOfPeriodsToAverage int
	// SkipAuthorization moves submitted requisitions straight to AUTHORIZED
	SkipAuthorization                      bool
	DatePhysicalStockCountCompletedEnabled bool
	// Clock defaults to time.Now
	Clock func() time.Time
}

// ServiceOption replaces a default collaborator of the service
type ServiceOption func(*RequisitionService)

// WithValidator replaces the template validator
func WithValidator(validator domainservices.RequisitionValidator) ServiceOption {
	return func(s *RequisitionService) {
		s.validator = validator
	}
}

// WithEventStore publishes lifecycle events to store
func WithEventStore(store events.EventStore) ServiceOption {
	return func(s *RequisitionService) {
		s.events = store
	}
}

// WithLocker replaces the in-process locker, e.g. with a redis locker
func WithLocker(locker locking.Locker) ServiceOption {
	return func(s *RequisitionService) {
		s.locker = locker
	}
}

func WithLogger(logger *logrus.Logger) ServiceOption {
	return func(s *RequisitionService) {
		s.logger = logger
	}
}

// RequisitionService runs the requisition lifecycle against the repositories.
// Operations on one requisition are serialized through the locker.
type RequisitionService struct {
	repos     Repositories
	config    ServiceConfig
	resolver  *domainservices.PeriodResolver
	validator domainservices.RequisitionValidator
	events    events.EventStore
	locker    locking.Locker
	logger    *logrus.Logger
}

// NewRequisitionService creates a service with a template validator, an
// in-memory event store and an in-process locker unless replaced by opts
func NewRequisitionService(repos Repositories, config ServiceConfig, opts ...ServiceOption) *RequisitionService {
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.Currency.Code == "" {
		config.Currency = entities.DefaultCurrency
	}
	if config.NumberOfPeriodsToAverage < 2 {
		config.NumberOfPeriodsToAverage = 3
	}

	s := &RequisitionService{
		repos:     repos,
		config:    config,
		validator: domainservices.NewTemplateValidator(),
		locker:    locking.NewMemoryLocker(),
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = events.NewInMemoryEventStore(s.logger)
	}
	s.resolver = domainservices.NewPeriodResolver(repos.Periods, repos.Schedules, repos.Requisitions, config.Clock)
	return s
}

// InitiateRequest names the facility, program and period of a new requisition
type InitiateRequest struct {
	FacilityID  uuid.UUID
	ProgramID   uuid.UUID
	PeriodID    *uuid.UUID
	Emergency   bool
	InitiatorID uuid.UUID
}

// Initiate resolves the period and creates the requisition with line items
// seeded from the facility's history
func (s *RequisitionService) Initiate(ctx context.Context, req InitiateRequest) (*entities.Requisition, error) {
	log := s.logger.WithFields(logrus.Fields{
		"operation": "initiate",
		"facility":  req.FacilityID,
		"program":   req.ProgramID,
		"emergency": req.Emergency,
	})

	lock, err := s.locker.Obtain(ctx, locking.InitiationKey(req.FacilityID, req.ProgramID))
	if err != nil {
		return nil, s.fail(log, fmt.Errorf("failed to lock initiation: %w", err))
	}
	defer s.release(ctx, log, lock)

	period, err := s.resolver.FindPeriod(ctx, req.ProgramID, req.FacilityID, req.PeriodID, req.Emergency)
	if err != nil {
		return nil, s.fail(log, err)
	}

	template, err := s.repos.Templates.FindByProgram(ctx, req.ProgramID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, s.fail(log, fmt.Errorf("failed to load template: %w", err))
	}

	approved, err := s.repos.Products.FindApprovedProducts(ctx, req.FacilityID, req.ProgramID)
	if err != nil {
		return nil, s.fail(log, fmt.Errorf("failed to load approved products: %w", err))
	}
	fullSupply := make([]entities.ApprovedProduct, 0, len(approved))
	available := make([]uuid.UUID, 0)
	for _, product := range approved {
		if product.FullSupply {
			fullSupply = append(fullSupply, product)
		} else {
			available = append(available, product.Orderable.ID)
		}
	}

	periodsToAverage := s.config.NumberOfPeriodsToAverage
	if template != nil && template.NumberOfPeriodsToAverage >= 2 {
		periodsToAverage = template.NumberOfPeriodsToAverage
	}
	// the current period is one of the averaged periods
	previousToAverage := periodsToAverage - 1

	previous, err := s.previousRequisitions(ctx, req.FacilityID, req.ProgramID, period.ID, previousToAverage)
	if err != nil {
		return nil, s.fail(log, err)
	}

	var pod *entities.ProofOfDelivery
	if len(previous) > 0 {
		pod, err = s.repos.ProofsOfDelivery.FindByRequisition(ctx, previous[0].ID())
		if err != nil {
			return nil, s.fail(log, fmt.Errorf("failed to load proof of delivery: %w", err))
		}
	}

	idealStock, err := s.repos.Stock.IdealStockAmounts(ctx, req.FacilityID, req.ProgramID)
	if err != nil {
		return nil, s.fail(log, fmt.Errorf("failed to load ideal stock amounts: %w", err))
	}
	stockOnHand, err := s.repos.Stock.StockOnHand(ctx, req.FacilityID, req.ProgramID)
	if err != nil {
		return nil, s.fail(log, fmt.Errorf("failed to load stock on hand: %w", err))
	}
	reasons, err := s.repos.Stock.AdjustmentReasons(ctx, req.ProgramID)
	if err != nil {
		return nil, s.fail(log, fmt.Errorf("failed to load adjustment reasons: %w", err))
	}

	requisition := entities.NewRequisition(req.FacilityID, req.ProgramID, period.ID, entities.Initiated, req.Emergency,
		entities.WithCurrency(s.config.Currency), entities.WithClock(s.config.Clock))
	err = requisition.Initiate(entities.InitiationData{
		Template:                         template,
		FullSupplyProducts:               fullSupply,
		PreviousRequisitions:             previous,
		NumberOfPreviousPeriodsToAverage: previousToAverage,
		ProofOfDelivery:                  pod,
		IdealStockAmounts:                idealStock,
		InitiatorID:                      req.InitiatorID,
		StockOnHand:                      stockOnHand,
		StockAdjustmentReasons:           reasons,
		NumberOfMonthsInPeriod:           period.DurationInMonths,
		AvailableProducts:                available,
	})
	if err != nil {
		return nil, s.fail(log, err)
	}

	if err := s.repos.Requisitions.Save(ctx, requisition); err != nil {
		return nil, s.fail(log, fmt.Errorf("failed to save requisition: %w", err))
	}
	s.publish(log, events.NewRequisitionInitiatedEvent(requisition, req.InitiatorID))

	log.WithFields(logrus.Fields{
		"requisition": requisition.ID(),
		"period":      period.Name,
		"lineItems":   len(requisition.LineItems()),
	}).Info("requisition initiated")
	return requisition, nil
}

// previousRequisitions returns the first regular requisition of each of the
// n periods before periodID, most recent first. At least one period is
// looked at so the beginning balance can be carried forward.
func (s *RequisitionService) previousRequisitions(ctx context.Context, facilityID, programID, periodID uuid.UUID, n int) ([]*entities.Requisition, error) {
	if n < 1 {
		n = 1
	}
	periods, err := s.resolver.FindPreviousPeriods(ctx, periodID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to find previous periods: %w", err)
	}

	previous := make([]*entities.Requisition, 0, len(periods))
	for _, period := range periods {
		found, err := s.repos.Requisitions.SearchByProcessingPeriodAndType(ctx, facilityID, programID, period.ID, false)
		if err != nil {
			return nil, fmt.Errorf("failed to search requisitions of period %s: %w", period.Name, err)
		}
		if len(found) > 0 {
			previous = append(previous, found[0])
		}
	}
	return previous, nil
}

// Get loads a requisition
func (s *RequisitionService) Get(ctx context.Context, id uuid.UUID) (*entities.Requisition, error) {
	return s.repos.Requisitions.FindByID(ctx, id)
}

// AvailablePeriods lists the periods a requisition can be initiated for
func (s *RequisitionService) AvailablePeriods(ctx context.Context, programID, facilityID uuid.UUID, emergency bool) ([]*entities.ProcessingPeriod, error) {
	return s.resolver.GetPeriods(ctx, programID, facilityID, emergency)
}

// Update applies the editable values of draft to a stored requisition
func (s *RequisitionService) Update(ctx context.Context, id uuid.UUID, draft entities.Importer) (*entities.Requisition, error) {
	log := s.logger.WithFields(logrus.Fields{"operation": "update", "requisition": id})

	var updated *entities.Requisition
	err := s.withLock(ctx, log, id, func() error {
		stored, err := s.repos.Requisitions.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if draftID := draft.GetID(); draftID != uuid.Nil && draftID != id {
			verr := entities.NewValidationError(id.String())
			verr.Add("id", "does not match the requisition being updated")
			return verr
		}
		if !stored.Status().IsPreAuthorize() && !stored.IsApprovable() {
			return fmt.Errorf("%w: requisition %s cannot be updated, status is %s",
				entities.ErrInvalidTransition, id, stored.Status())
		}

		requisition := stored.Clone()
		products, err := s.orderables(ctx, requisition)
		if err != nil {
			return err
		}
		source := entities.NewRequisitionFromImporter(draft, entities.WithID(id))
		if err := requisition.UpdateFrom(source, products, s.config.DatePhysicalStockCountCompletedEnabled); err != nil {
			return err
		}
		if err := s.validator.Validate(ctx, requisition, domainservices.ActionUpdate); err != nil {
			return err
		}

		if err := s.repos.Requisitions.Save(ctx, requisition); err != nil {
			return fmt.Errorf("failed to save requisition: %w", err)
		}
		s.publish(log, events.NewRequisitionUpdatedEvent(requisition))
		updated = requisition
		return nil
	})
	if err != nil {
		return nil, s.fail(log, err)
	}
	log.Info("requisition updated")
	return updated, nil
}

// Submit submits a requisition, authorizing it too when authorization is skipped
func (s *RequisitionService) Submit(ctx context.Context, id, submitterID uuid.UUID) (*entities.Requisition, error) {
	return s.transition(ctx, id, domainservices.ActionSubmit, func(r *entities.Requisition, products []entities.Orderable) error {
		if err := r.Submit(products, submitterID, s.config.SkipAuthorization); err != nil {
			return err
		}
		if r.Status() == entities.Authorized {
			return s.route(ctx, r)
		}
		return nil
	})
}

// Authorize authorizes a submitted requisition and routes it to its first
// supervisory node
func (s *RequisitionService) Authorize(ctx context.Context, id, authorizerID uuid.UUID) (*entities.Requisition, error) {
	return s.transition(ctx, id, domainservices.ActionAuthorize, func(r *entities.Requisition, products []entities.Orderable) error {
		if err := r.Authorize(products, authorizerID); err != nil {
			return err
		}
		return s.route(ctx, r)
	})
}

// route assigns the facility's first supervisory node, if any
func (s *RequisitionService) route(ctx context.Context, r *entities.Requisition) error {
	node, err := s.repos.SupervisoryNodes.FindForFacility(ctx, r.ProgramID(), r.FacilityID())
	if err != nil {
		return fmt.Errorf("failed to find supervisory node: %w", err)
	}
	if node == nil {
		return nil
	}
	return r.AssignSupervisoryNode(node.ID)
}

// Approve records one approval at the requisition's current supervisory
// node. A node with a supply line gives the final approval; otherwise the
// requisition moves up to the parent node.
func (s *RequisitionService) Approve(ctx context.Context, id, approverID uuid.UUID) (*entities.Requisition, error) {
	return s.transition(ctx, id, domainservices.ActionApprove, func(r *entities.Requisition, products []entities.Orderable) error {
		var parentID *uuid.UUID
		var supplyLines []entities.SupplyLine

		if current := r.SupervisoryNodeID(); current != nil {
			node, err := s.repos.SupervisoryNodes.FindByID(ctx, *current)
			if err != nil {
				return fmt.Errorf("failed to load supervisory node: %w", err)
			}
			parentID = node.ParentNodeID
			supplyLines, err = s.repos.SupplyLines.SearchBySupervisoryNode(ctx, node.ID, r.ProgramID())
			if err != nil {
				return fmt.Errorf("failed to load supply lines: %w", err)
			}
		}
		return r.Approve(parentID, products, supplyLines, approverID)
	})
}

// Reject returns a requisition under approval to the facility
func (s *RequisitionService) Reject(ctx context.Context, id, rejectorID uuid.UUID) (*entities.Requisition, error) {
	return s.transition(ctx, id, domainservices.ActionReject, func(r *entities.Requisition, products []entities.Orderable) error {
		return r.Reject(products, rejectorID)
	})
}

// Release marks an approved requisition as converted to an order
func (s *RequisitionService) Release(ctx context.Context, id, releaserID uuid.UUID) (*entities.Requisition, error) {
	return s.transition(ctx, id, noValidation, func(r *entities.Requisition, products []entities.Orderable) error {
		return r.Release(releaserID)
	})
}

// Skip skips the requisition's period
func (s *RequisitionService) Skip(ctx context.Context, id, skipperID uuid.UUID) (*entities.Requisition, error) {
	return s.transition(ctx, id, domainservices.ActionSkip, func(r *entities.Requisition, products []entities.Orderable) error {
		return r.Skip(skipperID)
	})
}

// Delete removes a requisition that has not been authorized yet
func (s *RequisitionService) Delete(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{"operation": "delete", "requisition": id})

	err := s.withLock(ctx, log, id, func() error {
		requisition, err := s.repos.Requisitions.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !requisition.IsDeletable() {
			return fmt.Errorf("%w: requisition %s cannot be deleted, status is %s",
				entities.ErrInvalidTransition, id, requisition.Status())
		}
		if err := s.repos.Requisitions.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete requisition: %w", err)
		}
		s.publish(log, events.NewRequisitionDeletedEvent(requisition, s.config.Clock()))
		return nil
	})
	if err != nil {
		return s.fail(log, err)
	}
	log.Info("requisition deleted")
	return nil
}

// noValidation marks transitions without a validation gate
const noValidation domainservices.Action = -1

// transition loads a requisition, validates it for action, applies the
// change to a copy and saves it.
func (s *RequisitionService) transition(
	ctx context.Context,
	id uuid.UUID,
	action domainservices.Action,
	apply func(r *entities.Requisition, products []entities.Orderable) error,
) (*entities.Requisition, error) {
	operation := "release"
	if action != noValidation {
		operation = action.String()
	}
	log := s.logger.WithFields(logrus.Fields{"operation": operation, "requisition": id})

	var result *entities.Requisition
	err := s.withLock(ctx, log, id, func() error {
		stored, err := s.repos.Requisitions.FindByID(ctx, id)
		if err != nil {
			return err
		}
		requisition := stored.Clone()

		if action != noValidation {
			if err := s.validator.Validate(ctx, requisition, action); err != nil {
				return err
			}
		}
		products, err := s.orderables(ctx, requisition)
		if err != nil {
			return err
		}

		from := requisition.Status()
		if err := apply(requisition, products); err != nil {
			return err
		}
		if err := s.repos.Requisitions.Save(ctx, requisition); err != nil {
			return fmt.Errorf("failed to save requisition: %w", err)
		}
		s.publish(log, events.NewRequisitionStatusChangedEvent(requisition, from))
		result = requisition
		return nil
	})
	if err != nil {
		return nil, s.fail(log, err)
	}

	log.WithField("status", result.Status().String()).Info("requisition status changed")
	return result, nil
}

func (s *RequisitionService) orderables(ctx context.Context, r *entities.Requisition) ([]entities.Orderable, error) {
	products, err := s.repos.Products.FindOrderables(ctx, r.AllOrderableIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load orderables: %w", err)
	}
	return products, nil
}

func (s *RequisitionService) withLock(ctx context.Context, log *logrus.Entry, id uuid.UUID, fn func() error) error {
	lock, err := s.locker.Obtain(ctx, locking.RequisitionKey(id))
	if err != nil {
		return fmt.Errorf("failed to lock requisition %s: %w", id, err)
	}
	defer s.release(ctx, log, lock)
	return fn()
}

func (s *RequisitionService) release(ctx context.Context, log *logrus.Entry, lock locking.Lock) {
	if err := lock.Release(ctx); err != nil {
		log.WithError(err).Warn("failed to release lock")
	}
}

func (s *RequisitionService) publish(log *logrus.Entry, event events.Event) {
	if err := s.events.AppendEvent(event.StreamID(), event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Warn("failed to publish event")
	}
}

// fail logs err and returns it unchanged
func (s *RequisitionService) fail(log *logrus.Entry, err error) error {
	var verr *entities.ValidationError
	if errors.As(err, &verr) {
		log.WithField("fields", verr.Fields).Warn("requisition validation failed")
	} else {
		log.WithError(err).Error("requisition operation failed")
	}
	return err
}
