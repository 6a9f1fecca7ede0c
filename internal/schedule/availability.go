package schedule

import "github.com/dbritton/callsheet/internal/model"

// StaffProfile is a staff member's availability relative to one target event
// and one snapshot. It is valid only for that pair and must be recomputed
// after any mutation, never cached.
type StaffProfile struct {
	model.StaffMember
	Available         bool           `json:"available"`
	ConflictingEvents []*model.Event `json:"conflicting_events"`
}

// Availability computes, for each candidate, the same-day events (excluding
// the target itself) whose window overlaps the target's and that already
// carry the candidate. A candidate with no such events is available.
func Availability(target *model.Event, pool []model.StaffMember, events []*model.Event) []StaffProfile {
	targetStart := ParseMinutes(target.StartTime)
	targetEnd := ParseMinutes(target.EndTime)

	profiles := make([]StaffProfile, 0, len(pool))
	for _, staff := range pool {
		var busy []*model.Event
		for _, other := range events {
			if other.ID == target.ID || other.Date != target.Date {
				continue
			}
			if !Overlaps(targetStart, targetEnd, ParseMinutes(other.StartTime), ParseMinutes(other.EndTime)) {
				continue
			}
			if other.HasStaff(staff.ID) {
				busy = append(busy, other)
			}
		}
		profiles = append(profiles, StaffProfile{
			StaffMember:       staff,
			Available:         len(busy) == 0,
			ConflictingEvents: busy,
		})
	}
	return profiles
}
