package entities

import (
	"fmt"

	"github.com/google/uuid"
)

// Right names used in requisition permission strings
const (
	OrdersEdit           = "ORDERS_EDIT"
	RequisitionApprove   = "REQUISITION_APPROVE"
	RequisitionAuthorize = "REQUISITION_AUTHORIZE"
	RequisitionCreate    = "REQUISITION_CREATE"
	RequisitionDelete    = "REQUISITION_DELETE"
	RequisitionView      = "REQUISITION_VIEW"
)

// PermissionString grants a right on a facility/program pair
type PermissionString struct {
	RightName  string
	FacilityID uuid.UUID
	ProgramID  uuid.UUID
}

func (p PermissionString) String() string {
	return fmt.Sprintf("%s|%s|%s", p.RightName, p.FacilityID, p.ProgramID)
}
