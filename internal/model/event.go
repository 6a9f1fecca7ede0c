package model

import "time"

// Event is a time-boxed booking on a single calendar day. Start and end are
// wall-clock "HH:MM" values on Date; events never span midnight.
type Event struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`       // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM, 24-hour
	EndTime   string `json:"end_time"`   // HH:MM, 24-hour
	Company   string `json:"company"`
	EventType string `json:"event_type"`

	// RequiredStaff maps role name to required headcount. A role may exist
	// with a count of 0; such roles do not block completeness.
	RequiredStaff map[string]int `json:"required_staff"`

	// AssignedStaff is ordered; the role is a property of the assignment,
	// not the person.
	AssignedStaff []StaffAssignment `json:"assigned_staff"`

	Equipment []EquipmentLine `json:"equipment"`

	// Version increments on every committed mutation and is used to detect
	// stale snapshots on write requests.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StaffAssignment records that a staff member holds a role for one event.
type StaffAssignment struct {
	StaffID int64  `json:"staff_id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

// EquipmentLine tracks required vs assigned quantity for one category.
type EquipmentLine struct {
	Category string `json:"category"`
	Required int    `json:"required"`
	Assigned int    `json:"assigned"`
}

// Clone returns a deep copy. Mutation code works on clones so that callers
// holding the original snapshot never observe partial updates.
func (e *Event) Clone() *Event {
	c := *e
	if e.RequiredStaff != nil {
		c.RequiredStaff = make(map[string]int, len(e.RequiredStaff))
		for role, n := range e.RequiredStaff {
			c.RequiredStaff[role] = n
		}
	}
	c.AssignedStaff = append([]StaffAssignment(nil), e.AssignedStaff...)
	c.Equipment = append([]EquipmentLine(nil), e.Equipment...)
	return &c
}

// AssignedCount returns the number of assignments holding the given role.
func (e *Event) AssignedCount(role string) int {
	n := 0
	for _, a := range e.AssignedStaff {
		if a.Role == role {
			n++
		}
	}
	return n
}

// HasStaff reports whether the staff member is assigned to this event in
// any role.
func (e *Event) HasStaff(staffID int64) bool {
	for _, a := range e.AssignedStaff {
		if a.StaffID == staffID {
			return true
		}
	}
	return false
}
