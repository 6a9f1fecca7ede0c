package model

import "time"

// StaffMember is a person who can be assigned to events. The default role is
// only a hint for pickers; the role actually held is per-assignment.
type StaffMember struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DefaultRole string    `json:"default_role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
