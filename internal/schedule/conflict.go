package schedule

import "github.com/dbritton/callsheet/internal/model"

// Conflict describes why one event clashes with another: the other event
// plus the staff assigned to both.
type Conflict struct {
	Event       *model.Event            `json:"event"`
	SharedStaff []model.StaffAssignment `json:"shared_staff"`
}

// Conflicts reports whether two events clash: same calendar day, strictly
// overlapping time windows, and at least one staff member assigned to both.
// An event never conflicts with itself.
func Conflicts(a, b *model.Event) bool {
	ok, _ := conflictDetails(a, b, false)
	return ok
}

// ConflictDetails is Conflicts plus the shared staff causing the clash,
// drawn from a's assignments so the role shown is the one held on a.
func ConflictDetails(a, b *model.Event) (bool, []model.StaffAssignment) {
	return conflictDetails(a, b, true)
}

func conflictDetails(a, b *model.Event, collect bool) (bool, []model.StaffAssignment) {
	if a.ID == b.ID {
		return false, nil
	}
	if a.Date != b.Date {
		return false, nil
	}
	if !Overlaps(ParseMinutes(a.StartTime), ParseMinutes(a.EndTime), ParseMinutes(b.StartTime), ParseMinutes(b.EndTime)) {
		return false, nil
	}

	inB := make(map[int64]struct{}, len(b.AssignedStaff))
	for _, s := range b.AssignedStaff {
		inB[s.StaffID] = struct{}{}
	}

	var shared []model.StaffAssignment
	for _, s := range a.AssignedStaff {
		if _, ok := inB[s.StaffID]; ok {
			if !collect {
				return true, nil
			}
			shared = append(shared, s)
		}
	}
	return len(shared) > 0, shared
}

// ConflictsOf returns every conflict between the event and the rest of the
// snapshot, in snapshot order.
func ConflictsOf(event *model.Event, events []*model.Event) []Conflict {
	var out []Conflict
	for _, other := range events {
		if ok, shared := ConflictDetails(event, other); ok {
			out = append(out, Conflict{Event: other, SharedStaff: shared})
		}
	}
	return out
}
