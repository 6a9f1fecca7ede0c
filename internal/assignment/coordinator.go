// Package assignment implements the roster mutation protocol: assigning and
// unassigning staff, resizing and deleting roles, and the two-phase "move"
// workflow for candidates whose assignment would create a conflict. All
// operations are pure over the event snapshot they receive: they never touch
// the input events, returning deep copies of whatever changed.
package assignment

import (
	"github.com/dbritton/callsheet/internal/model"
	"github.com/dbritton/callsheet/internal/schedule"
)

// AssignResult reports the outcome of one Assign call. Clean candidates are
// already committed in Updated; conflicted candidates sit in Decision
// awaiting confirmation; per-candidate failures are listed in Rejected.
type AssignResult struct {
	Updated  []*model.Event `json:"updated"`
	Assigned []int64        `json:"assigned_staff_ids"`
	Rejected []Rejection    `json:"rejected"`
	Decision *MoveDecision  `json:"decision,omitempty"`
}

// Assign puts candidates into a role on an event. Candidates with no
// conflicting commitments commit immediately, capacity permitting.
// Candidates already booked on an overlapping same-day event are never
// silently moved: they come back in a proposed MoveDecision instead, and no
// other event is touched until ConfirmMove.
func Assign(events []*model.Event, eventID int64, role string, candidates []model.StaffMember) (*AssignResult, error) {
	event := findEvent(events, eventID)
	if event == nil {
		return nil, ErrEventNotFound
	}
	required, ok := event.RequiredStaff[role]
	if !ok {
		return nil, ErrUnknownRole
	}

	result := &AssignResult{}
	target := event.Clone()
	remaining := required - target.AssignedCount(role)

	profiles := schedule.Availability(event, candidates, events)

	var pending []PendingMove
	committed := false
	for _, p := range profiles {
		if target.HasStaff(p.ID) {
			result.Rejected = append(result.Rejected, Rejection{StaffID: p.ID, Name: p.Name, Reason: ReasonAlreadyAssigned})
			continue
		}
		if !p.Available {
			pending = append(pending, PendingMove{Staff: p.StaffMember, ConflictingEvents: p.ConflictingEvents})
			continue
		}
		if remaining <= 0 {
			result.Rejected = append(result.Rejected, Rejection{StaffID: p.ID, Name: p.Name, Reason: ReasonOverCapacity})
			continue
		}
		target.AssignedStaff = append(target.AssignedStaff, model.StaffAssignment{StaffID: p.ID, Name: p.Name, Role: role})
		result.Assigned = append(result.Assigned, p.ID)
		remaining--
		committed = true
	}

	if committed {
		result.Updated = []*model.Event{target}
	}
	if len(pending) > 0 {
		result.Decision = newDecision(eventID, role, pending)
	}
	return result, nil
}

// MoveResult is the single logical transaction produced by ConfirmMove: the
// target event plus every conflicting event a moved candidate was removed
// from.
type MoveResult struct {
	Updated  []*model.Event `json:"updated"`
	Moved    []int64        `json:"moved_staff_ids"`
	Rejected []Rejection    `json:"rejected"`
}

// ConfirmMove applies the operator-approved subset of a proposed decision:
// each chosen candidate is removed from every conflicting event named for
// them and added to the target event with the decision's role. Capacity and
// membership are re-validated per candidate at commit time; a candidate who
// no longer fits, or who already reached the target some other way, is
// rejected without touching their existing commitments. Candidates not
// chosen are dropped with no mutation.
func ConfirmMove(events []*model.Event, decision *MoveDecision, chosenIDs []int64) (*MoveResult, error) {
	if decision.State != StateProposed {
		return nil, ErrDecisionNotPending
	}
	event := findEvent(events, decision.EventID)
	if event == nil {
		return nil, ErrEventNotFound
	}
	required, ok := event.RequiredStaff[decision.Role]
	if !ok {
		// The role was deleted while the decision was pending.
		return nil, ErrUnknownRole
	}

	if len(chosenIDs) == 0 {
		decision.State = StateCancelled
		return &MoveResult{}, nil
	}

	chosen := make(map[int64]struct{}, len(chosenIDs))
	for _, id := range chosenIDs {
		chosen[id] = struct{}{}
	}

	target := event.Clone()
	remaining := required - target.AssignedCount(decision.Role)
	touched := make(map[int64]*model.Event)
	result := &MoveResult{}

	for _, move := range decision.Pending {
		if _, ok := chosen[move.Staff.ID]; !ok {
			continue
		}
		if target.HasStaff(move.Staff.ID) {
			// The candidate reached the target some other way while the
			// decision was pending; their commitments stay untouched.
			result.Rejected = append(result.Rejected, Rejection{StaffID: move.Staff.ID, Name: move.Staff.Name, Reason: ReasonAlreadyAssigned})
			continue
		}
		if remaining <= 0 {
			result.Rejected = append(result.Rejected, Rejection{StaffID: move.Staff.ID, Name: move.Staff.Name, Reason: ReasonOverCapacity})
			continue
		}

		for _, source := range move.ConflictingEvents {
			clone, ok := touched[source.ID]
			if !ok {
				// Re-resolve against the current snapshot; the decision may
				// outlive the read it was computed from. A source that no
				// longer holds the candidate has nothing to move off and
				// must not show up in Updated.
				current := findEvent(events, source.ID)
				if current == nil || !current.HasStaff(move.Staff.ID) {
					continue
				}
				clone = current.Clone()
				touched[source.ID] = clone
			}
			clone.AssignedStaff = removeStaff(clone.AssignedStaff, move.Staff.ID)
		}

		target.AssignedStaff = append(target.AssignedStaff, model.StaffAssignment{
			StaffID: move.Staff.ID,
			Name:    move.Staff.Name,
			Role:    decision.Role,
		})
		result.Moved = append(result.Moved, move.Staff.ID)
		remaining--
	}

	decision.State = StateConfirmed
	if len(result.Moved) == 0 {
		return result, nil
	}

	result.Updated = append(result.Updated, target)
	for _, e := range events {
		if clone, ok := touched[e.ID]; ok {
			result.Updated = append(result.Updated, clone)
		}
	}
	return result, nil
}

// Unassign removes one staff member from an event. No other event is
// affected.
func Unassign(events []*model.Event, eventID, staffID int64) (*model.Event, error) {
	event := findEvent(events, eventID)
	if event == nil {
		return nil, ErrEventNotFound
	}
	if !event.HasStaff(staffID) {
		return nil, ErrStaffNotAssigned
	}
	clone := event.Clone()
	clone.AssignedStaff = removeStaff(clone.AssignedStaff, staffID)
	return clone, nil
}

// ClearRole removes every assignment holding the role in one step. The role
// itself stays in the required map.
func ClearRole(events []*model.Event, eventID int64, role string) (*model.Event, error) {
	event := findEvent(events, eventID)
	if event == nil {
		return nil, ErrEventNotFound
	}
	if _, ok := event.RequiredStaff[role]; !ok {
		return nil, ErrUnknownRole
	}
	clone := event.Clone()
	kept := clone.AssignedStaff[:0]
	for _, a := range clone.AssignedStaff {
		if a.Role != role {
			kept = append(kept, a)
		}
	}
	clone.AssignedStaff = kept
	return clone, nil
}

// ResizeRole changes the required headcount for a role. Shrinking below the
// currently assigned count is rejected, and resizing to zero routes through
// the DeleteRole confirmation instead of silently zeroing the role.
func ResizeRole(events []*model.Event, eventID int64, role string, count int) (*model.Event, error) {
	event := findEvent(events, eventID)
	if event == nil {
		return nil, ErrEventNotFound
	}
	if _, ok := event.RequiredStaff[role]; !ok {
		return nil, ErrUnknownRole
	}
	if count < 0 || count < event.AssignedCount(role) {
		return nil, ErrInvalidCount
	}
	if count == 0 {
		return nil, ErrConfirmationRequired
	}
	clone := event.Clone()
	clone.RequiredStaff[role] = count
	return clone, nil
}

// DeleteRole removes a role and unassigns everyone holding it. It is
// destructive, so the caller must pass confirmed=true after an explicit
// operator decision.
func DeleteRole(events []*model.Event, eventID int64, role string, confirmed bool) (*model.Event, error) {
	event := findEvent(events, eventID)
	if event == nil {
		return nil, ErrEventNotFound
	}
	if _, ok := event.RequiredStaff[role]; !ok {
		return nil, ErrUnknownRole
	}
	if !confirmed {
		return nil, ErrConfirmationRequired
	}
	clone := event.Clone()
	delete(clone.RequiredStaff, role)
	kept := clone.AssignedStaff[:0]
	for _, a := range clone.AssignedStaff {
		if a.Role != role {
			kept = append(kept, a)
		}
	}
	clone.AssignedStaff = kept
	return clone, nil
}

// AddRole defines a new role with the given slot count. Redefining an
// existing role goes through ResizeRole, never here.
func AddRole(events []*model.Event, eventID int64, role string, count int) (*model.Event, error) {
	event := findEvent(events, eventID)
	if event == nil {
		return nil, ErrEventNotFound
	}
	if _, ok := event.RequiredStaff[role]; ok {
		return nil, ErrRoleExists
	}
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	clone := event.Clone()
	if clone.RequiredStaff == nil {
		clone.RequiredStaff = make(map[string]int)
	}
	clone.RequiredStaff[role] = count
	return clone, nil
}

func findEvent(events []*model.Event, id int64) *model.Event {
	for _, e := range events {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func removeStaff(assignments []model.StaffAssignment, staffID int64) []model.StaffAssignment {
	kept := assignments[:0]
	for _, a := range assignments {
		if a.StaffID != staffID {
			kept = append(kept, a)
		}
	}
	return kept
}
