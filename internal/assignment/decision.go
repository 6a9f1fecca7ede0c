package assignment

import (
	"time"

	"github.com/google/uuid"

	"github.com/dbritton/callsheet/internal/model"
)

// DecisionState tracks the lifecycle of a proposed staff move. There is no
// partial-confirm retry: a cancelled decision must be re-initiated through
// Assign.
type DecisionState string

const (
	StateProposed  DecisionState = "proposed"
	StateConfirmed DecisionState = "confirmed"
	StateCancelled DecisionState = "cancelled"
)

// PendingMove names one conflicted candidate and the specific events they
// would have to be pulled out of.
type PendingMove struct {
	Staff             model.StaffMember `json:"staff"`
	ConflictingEvents []*model.Event    `json:"conflicting_events"`
}

// MoveDecision is the deferred half of an assignment: candidates that would
// create a conflict are parked here until an operator confirms or cancels.
// No event is touched while a decision sits in StateProposed.
type MoveDecision struct {
	ID        string        `json:"id"`
	EventID   int64         `json:"event_id"`
	Role      string        `json:"role"`
	State     DecisionState `json:"state"`
	Pending   []PendingMove `json:"pending"`
	CreatedAt time.Time     `json:"created_at"`
}

func newDecision(eventID int64, role string, pending []PendingMove) *MoveDecision {
	return &MoveDecision{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Role:      role,
		State:     StateProposed,
		Pending:   pending,
		CreatedAt: time.Now(),
	}
}

// Cancel moves a proposed decision to the cancelled state. Nothing is
// mutated; declining to confirm is the whole cancellation contract.
func (d *MoveDecision) Cancel() error {
	if d.State != StateProposed {
		return ErrDecisionNotPending
	}
	d.State = StateCancelled
	return nil
}
