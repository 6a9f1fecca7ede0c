package schedule

import (
	"testing"

	"github.com/dbritton/callsheet/internal/model"
)

func TestAvailabilityBusyAndFree(t *testing.T) {
	target := testEvent(1, "2025-11-15", "09:00", "11:00")
	busyElsewhere := testEvent(2, "2025-11-15", "10:00", "12:00", alice)
	backToBack := testEvent(3, "2025-11-15", "11:00", "13:00", bob)
	events := []*model.Event{target, busyElsewhere, backToBack}

	pool := []model.StaffMember{
		{ID: 1, Name: "Alice"},
		{ID: 2, Name: "Bob"},
		{ID: 3, Name: "Carol"},
	}

	profiles := Availability(target, pool, events)
	if len(profiles) != 3 {
		t.Fatalf("profiles = %d, want 3", len(profiles))
	}

	byID := make(map[int64]StaffProfile)
	for _, p := range profiles {
		byID[p.ID] = p
	}

	if byID[1].Available {
		t.Error("Alice overlaps the target elsewhere and should be busy")
	}
	if len(byID[1].ConflictingEvents) != 1 || byID[1].ConflictingEvents[0].ID != 2 {
		t.Errorf("Alice's conflicting events should name event 2")
	}
	if !byID[2].Available {
		t.Error("Bob's other event only touches the boundary; he should be free")
	}
	if !byID[3].Available {
		t.Error("Carol has no assignments and should be free")
	}
}

func TestAvailabilityIgnoresTargetItself(t *testing.T) {
	target := testEvent(1, "2025-11-15", "09:00", "11:00", alice)
	events := []*model.Event{target}

	profiles := Availability(target, []model.StaffMember{{ID: 1, Name: "Alice"}}, events)
	if !profiles[0].Available {
		t.Error("an assignment on the target event itself must not count as busy")
	}
}

func TestAvailabilityIgnoresOtherDays(t *testing.T) {
	target := testEvent(1, "2025-11-15", "09:00", "11:00")
	otherDay := testEvent(2, "2025-11-16", "09:00", "11:00", alice)
	events := []*model.Event{target, otherDay}

	profiles := Availability(target, []model.StaffMember{{ID: 1, Name: "Alice"}}, events)
	if !profiles[0].Available {
		t.Error("an assignment on another day must not count as busy")
	}
}
