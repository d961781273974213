package entities

import "fmt"

// RequisitionStatus represents the workflow position of a requisition
type RequisitionStatus int

const (
	Initiated RequisitionStatus = iota
	Rejected
	Submitted
	Authorized
	InApproval
	Approved
	Released
	Skipped
)

var statusNames = map[RequisitionStatus]string{
	Initiated:  "INITIATED",
	Rejected:   "REJECTED",
	Submitted:  "SUBMITTED",
	Authorized: "AUTHORIZED",
	InApproval: "IN_APPROVAL",
	Approved:   "APPROVED",
	Released:   "RELEASED",
	Skipped:    "SKIPPED",
}

// String method for RequisitionStatus enum
func (s RequisitionStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseRequisitionStatus converts a status name back into the enum
func ParseRequisitionStatus(name string) (RequisitionStatus, error) {
	for status, statusName := range statusNames {
		if statusName == name {
			return status, nil
		}
	}
	return Initiated, fmt.Errorf("unknown requisition status %q", name)
}

// MarshalText encodes the status by name
func (s RequisitionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name
func (s *RequisitionStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseRequisitionStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// stage orders statuses along the main chain; rejected shares the initiated
// stage and skipped sits outside the chain.
func (s RequisitionStatus) stage() int {
	switch s {
	case Initiated, Rejected:
		return 1
	case Submitted:
		return 2
	case Authorized:
		return 3
	case InApproval:
		return 4
	case Approved:
		return 5
	case Released:
		return 6
	default:
		return -1
	}
}

// IsSubmittable reports whether a requisition in this status can be submitted
func (s RequisitionStatus) IsSubmittable() bool {
	return s == Initiated || s == Rejected
}

// IsPreAuthorize reports whether the status is before authorization
func (s RequisitionStatus) IsPreAuthorize() bool {
	return s.stage() == 1 || s.stage() == 2
}

// IsPostSubmitted reports whether the requisition has been submitted at least once
func (s RequisitionStatus) IsPostSubmitted() bool {
	return s.stage() >= 2
}

// DuringApproval reports whether the requisition waits on an approver
func (s RequisitionStatus) DuringApproval() bool {
	return s == Authorized || s == InApproval
}

// IsApproved reports whether the requisition reached final approval
func (s RequisitionStatus) IsApproved() bool {
	return s == Approved || s == Released
}

// IsSkipped reports whether the period was skipped
func (s RequisitionStatus) IsSkipped() bool {
	return s == Skipped
}
