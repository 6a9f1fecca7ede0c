package schedule

import "github.com/dbritton/callsheet/internal/model"

type Status string

const (
	StatusComplete   Status = "complete"
	StatusIncomplete Status = "incomplete"
	StatusConflict   Status = "conflict"
)

// ComputeStatus derives an event's staffing status against the snapshot.
// A conflict always dominates: an event that is both double-booked and
// understaffed reports conflict, never incomplete. Roles and equipment
// categories with a required count of 0 are excluded from completeness.
func ComputeStatus(event *model.Event, events []*model.Event) Status {
	if len(ConflictsOf(event, events)) > 0 {
		return StatusConflict
	}

	for role, required := range event.RequiredStaff {
		if required <= 0 {
			continue
		}
		if event.AssignedCount(role) < required {
			return StatusIncomplete
		}
	}

	for _, line := range event.Equipment {
		if line.Required <= 0 {
			continue
		}
		if line.Assigned < line.Required {
			return StatusIncomplete
		}
	}

	return StatusComplete
}
