package testing

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vsinha/requisition/pkg/application/dto"
	"github.com/vsinha/requisition/pkg/domain/entities"
	"github.com/vsinha/requisition/pkg/infrastructure/repositories/memory"
)

// Scenario is one facility reporting on one program, with every repository
// the requisition service needs held in memory
type Scenario struct {
	FacilityID          uuid.UUID
	ProgramID           uuid.UUID
	SupplyingFacilityID uuid.UUID

	Schedule              entities.ProcessingSchedule
	ProcessingPeriods     []*entities.ProcessingPeriod
	FullSupplyProducts    []entities.ApprovedProduct
	NonFullSupplyProducts []entities.ApprovedProduct
	Template              *entities.RequisitionTemplate
	// Nodes is the approval chain, the facility's own node first
	Nodes []entities.SupervisoryNode
	Clock func() time.Time

	Requisitions     *memory.RequisitionRepository
	Schedules        *memory.ScheduleRepository
	Periods          *memory.PeriodRepository
	Templates        *memory.TemplateRepository
	ReferenceData    *memory.ReferenceDataRepository
	SupervisoryNodes *memory.SupervisoryNodeRepository
}

// NewScenario creates a scenario with empty repositories and a clock that
// starts at now and advances one second per reading
func NewScenario(now time.Time) *Scenario {
	clock := SteppingClock(now, time.Second)
	schedules := memory.NewScheduleRepository()
	return &Scenario{
		FacilityID:       uuid.New(),
		ProgramID:        uuid.New(),
		Clock:            clock,
		Requisitions:     memory.NewRequisitionRepository(entities.WithClock(clock)),
		Schedules:        schedules,
		Periods:          memory.NewPeriodRepository(schedules),
		Templates:        memory.NewTemplateRepository(),
		ReferenceData:    memory.NewReferenceDataRepository(),
		SupervisoryNodes: memory.NewSupervisoryNodeRepository(),
	}
}

// SteppingClock returns a goroutine-safe clock advancing step per reading
func SteppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(step)
		return current
	}
}

// BuildMonthlyScenario builds a facility on a monthly schedule for 2025 with
// two full supply products, one non-full supply product and a district to
// province approval chain. The clock starts on 15 March 2025.
func BuildMonthlyScenario() *Scenario {
	s := NewScenario(time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC))

	s.Schedule = entities.ProcessingSchedule{ID: uuid.New(), Code: "SCH-MONTHLY", Name: "Monthly"}
	s.Schedules.AddSchedule(s.Schedule)
	s.Schedules.Assign(s.ProgramID, s.FacilityID, s.Schedule.ID)

	for month := time.January; month <= time.June; month++ {
		start := time.Date(2025, month, 1, 0, 0, 0, 0, time.UTC)
		period := &entities.ProcessingPeriod{
			ID:               uuid.New(),
			Name:             start.Format("Jan2006"),
			ScheduleID:       s.Schedule.ID,
			StartDate:        start,
			EndDate:          start.AddDate(0, 1, -1),
			DurationInMonths: 1,
		}
		s.Periods.AddPeriod(*period)
		s.ProcessingPeriods = append(s.ProcessingPeriods, period)
	}

	commodityType := uuid.New()
	s.FullSupplyProducts = []entities.ApprovedProduct{
		approvedProduct("C100", "Ibuprofen 200mg", 10, "2.50", commodityType.String(), true),
		approvedProduct("C200", "Oral rehydration salts", 1, "0.75", "", true),
	}
	s.NonFullSupplyProducts = []entities.ApprovedProduct{
		approvedProduct("N300", "Examination gloves", 100, "12.00", "", false),
	}
	s.ReferenceData.ApproveProducts(s.ProgramID, s.FacilityID, s.FullSupplyProducts...)
	s.ReferenceData.ApproveProducts(s.ProgramID, s.FacilityID, s.NonFullSupplyProducts...)
	s.ReferenceData.SetIdealStockAmount(s.ProgramID, s.FacilityID, commodityType, 500)
	s.ReferenceData.SetStockOnHand(s.ProgramID, s.FacilityID, s.FullSupplyProducts[0].Orderable.ID, 35)
	s.ReferenceData.AddAdjustmentReasons(s.ProgramID,
		entities.StockAdjustmentReason{ID: uuid.New(), Name: "Transfer In", ReasonType: entities.Credit},
		entities.StockAdjustmentReason{ID: uuid.New(), Name: "Damaged", ReasonType: entities.Debit},
	)

	s.Template = entities.NewRequisitionTemplate(s.ProgramID,
		entities.TemplateColumn{Name: entities.BeginningBalanceColumn, Displayed: true, Source: entities.UserInput},
		entities.TemplateColumn{Name: entities.TotalReceivedQuantityColumn, Displayed: true, Source: entities.UserInput},
		entities.TemplateColumn{Name: entities.TotalConsumedQuantityColumn, Displayed: true, Source: entities.UserInput},
		entities.TemplateColumn{Name: entities.TotalLossesAndAdjustmentsColumn, Displayed: true, Source: entities.Calculated},
		entities.TemplateColumn{Name: entities.StockOnHandColumn, Displayed: true, Source: entities.Calculated},
		entities.TemplateColumn{Name: entities.TotalStockoutDaysColumn, Displayed: true, Source: entities.UserInput},
		entities.TemplateColumn{Name: entities.AdjustedConsumptionColumn, Displayed: true, Source: entities.Calculated},
		entities.TemplateColumn{Name: entities.AverageConsumptionColumn, Displayed: true, Source: entities.Calculated},
		entities.TemplateColumn{Name: entities.MaximumStockQuantityColumn, Displayed: true, Source: entities.Calculated},
		entities.TemplateColumn{Name: entities.CalculatedOrderQuantityColumn, Displayed: true, Source: entities.Calculated},
		entities.TemplateColumn{Name: entities.RequestedQuantityColumn, Displayed: true, Source: entities.UserInput},
		entities.TemplateColumn{Name: entities.RequestedQuantityExplanationColumn, Displayed: true, Source: entities.UserInput},
		entities.TemplateColumn{Name: entities.SkippedColumn, Displayed: true, Source: entities.UserInput},
	)
	s.Template.SkipAllowed = true
	s.Templates.SaveTemplate(s.Template)

	province := entities.SupervisoryNode{ID: uuid.New(), Code: "SN-PROVINCE", Name: "Province"}
	district := entities.SupervisoryNode{ID: uuid.New(), Code: "SN-DISTRICT", Name: "District", ParentNodeID: &province.ID}
	s.Nodes = []entities.SupervisoryNode{district, province}
	s.SupervisoryNodes.AddNode(district)
	s.SupervisoryNodes.AddNode(province)
	s.SupervisoryNodes.AssignFacility(s.ProgramID, s.FacilityID, district.ID)

	s.SupplyingFacilityID = uuid.New()
	s.ReferenceData.AddSupplyLine(entities.SupplyLine{
		ID:                  uuid.New(),
		SupervisoryNodeID:   province.ID,
		ProgramID:           s.ProgramID,
		SupplyingFacilityID: s.SupplyingFacilityID,
	})
	return s
}

func approvedProduct(code, name string, netContent int64, price, commodityType string, fullSupply bool) entities.ApprovedProduct {
	p := decimal.RequireFromString(price)
	return entities.ApprovedProduct{
		Orderable: entities.Orderable{
			ID:                      uuid.New(),
			ProductCode:             code,
			FullProductName:         name,
			NetContent:              netContent,
			PackRoundingThreshold:   netContent / 2,
			CommodityTypeIdentifier: commodityType,
			PricePerPack:            &p,
		},
		MaxPeriodsOfStock: decimal.NewFromInt(3),
		FullSupply:        fullSupply,
	}
}

// FilledDraft returns a draft of r with received and consumed quantities
// entered on every full supply line, no stockout days and a zero beginning
// balance where none was carried forward
func FilledDraft(r *entities.Requisition, received, consumed int64) *dto.RequisitionDto {
	draft := dto.NewRequisitionDto(r)
	for _, line := range draft.RequisitionLineItems {
		if line.NonFullSupply {
			continue
		}
		if line.BeginningBalance == nil {
			line.BeginningBalance = entities.Qty(0)
		}
		line.TotalReceivedQuantity = entities.Qty(received)
		line.TotalConsumedQuantity = entities.Qty(consumed)
		line.TotalStockoutDays = entities.Qty(0)
	}
	return draft
}
