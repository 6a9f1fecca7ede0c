package assignment

import "errors"

var (
	ErrEventNotFound        = errors.New("event not found in snapshot")
	ErrUnknownRole          = errors.New("role not defined on event")
	ErrRoleExists           = errors.New("role already defined on event")
	ErrInvalidCount         = errors.New("invalid slot count")
	ErrStaffNotAssigned     = errors.New("staff member not assigned to event")
	ErrConfirmationRequired = errors.New("operation requires explicit confirmation")
	ErrDecisionNotPending   = errors.New("decision is not awaiting confirmation")
	ErrStaleSnapshot        = errors.New("event has changed since it was read; re-fetch and retry")
)

// Rejection reports a single candidate that could not be assigned. A
// rejected candidate never fails the rest of the batch.
type Rejection struct {
	StaffID int64  `json:"staff_id"`
	Name    string `json:"name"`
	Reason  string `json:"reason"`
}

const (
	ReasonOverCapacity    = "over_capacity"
	ReasonAlreadyAssigned = "already_assigned"
)
