package roster

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dbritton/callsheet/internal/assignment"
	"github.com/dbritton/callsheet/internal/database"
	"github.com/dbritton/callsheet/internal/model"
	"github.com/dbritton/callsheet/internal/schedule"
	"github.com/dbritton/callsheet/internal/store"
)

type notifyRecord struct {
	entity, action string
	id             int64
}

func setupService(t *testing.T) (*Service, *store.EventStore, *store.StaffStore, *[]notifyRecord) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	events := store.NewEventStore(db)
	staff := store.NewStaffStore(db)
	var notes []notifyRecord
	svc := NewService(events, staff, func(entity, action string, id int64) {
		notes = append(notes, notifyRecord{entity, action, id})
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, events, staff, &notes
}

func mustCreateStaff(t *testing.T, ss *store.StaffStore, name string) *model.StaffMember {
	t.Helper()
	m, err := ss.Create(name, "")
	if err != nil {
		t.Fatalf("create staff: %v", err)
	}
	return m
}

func mustCreateEvent(t *testing.T, es *store.EventStore, e *model.Event) *model.Event {
	t.Helper()
	created, err := es.Create(e)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return created
}

func TestAssignThenConfirmMoveEndToEnd(t *testing.T) {
	svc, es, ss, notes := setupService(t)
	alice := mustCreateStaff(t, ss, "Alice")

	x := mustCreateEvent(t, es, &model.Event{
		Name: "X", Date: "2025-11-15", StartTime: "09:00", EndTime: "11:00",
		RequiredStaff: map[string]int{"Host": 1},
	})
	y := mustCreateEvent(t, es, &model.Event{
		Name: "Y", Date: "2025-11-15", StartTime: "10:00", EndTime: "12:00",
		RequiredStaff: map[string]int{"Host": 1},
		AssignedStaff: []model.StaffAssignment{{StaffID: alice.ID, Role: "Host"}},
	})

	result, err := svc.Assign(x.ID, x.Version, "Host", []int64{alice.ID})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.Decision == nil {
		t.Fatal("expected a pending decision")
	}
	if len(result.Updated) != 0 {
		t.Error("conflicted candidate must not be committed")
	}

	// Nothing persisted yet.
	gotX, _ := es.GetByID(x.ID)
	if gotX.HasStaff(alice.ID) {
		t.Fatal("Alice must not be on X before confirmation")
	}

	moveResult, err := svc.ConfirmMove(result.Decision.ID, []int64{alice.ID})
	if err != nil {
		t.Fatalf("confirm move: %v", err)
	}
	if len(moveResult.Updated) != 2 {
		t.Fatalf("updated = %d events, want 2", len(moveResult.Updated))
	}

	gotX, _ = es.GetByID(x.ID)
	gotY, _ := es.GetByID(y.ID)
	if !gotX.HasStaff(alice.ID) {
		t.Error("Alice should be on X after the move")
	}
	if gotY.HasStaff(alice.ID) {
		t.Error("Alice should be off Y after the move")
	}

	view, err := svc.DayView("2025-11-15")
	if err != nil {
		t.Fatalf("day view: %v", err)
	}
	for _, v := range view.Events {
		if v.Status == schedule.StatusConflict {
			t.Errorf("event %s still reports a conflict after the move", v.Name)
		}
	}

	if len(*notes) == 0 {
		t.Error("committed mutations should notify")
	}

	// The decision is consumed.
	if _, err := svc.ConfirmMove(result.Decision.ID, []int64{alice.ID}); !errors.Is(err, ErrDecisionNotFound) {
		t.Errorf("re-confirm err = %v, want ErrDecisionNotFound", err)
	}
}

func TestAssignCleanCommitsImmediately(t *testing.T) {
	svc, es, ss, _ := setupService(t)
	alice := mustCreateStaff(t, ss, "Alice")

	x := mustCreateEvent(t, es, &model.Event{
		Name: "X", Date: "2025-11-15", StartTime: "09:00", EndTime: "11:00",
		RequiredStaff: map[string]int{"Host": 1},
	})

	result, err := svc.Assign(x.ID, x.Version, "Host", []int64{alice.ID})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.Decision != nil {
		t.Error("clean candidate should not produce a decision")
	}

	got, _ := es.GetByID(x.ID)
	if !got.HasStaff(alice.ID) {
		t.Error("Alice should be persisted on X")
	}
	if got.Version != x.Version+1 {
		t.Errorf("version = %d, want %d", got.Version, x.Version+1)
	}
}

func TestAssignStaleSnapshotRejected(t *testing.T) {
	svc, es, ss, _ := setupService(t)
	alice := mustCreateStaff(t, ss, "Alice")

	x := mustCreateEvent(t, es, &model.Event{
		Name: "X", Date: "2025-11-15", StartTime: "09:00", EndTime: "11:00",
		RequiredStaff: map[string]int{"Host": 1},
	})

	// Another operator edits the event first.
	if _, err := es.UpdateDetails(x.ID, "X renamed", x.Date, x.StartTime, x.EndTime, "", ""); err != nil {
		t.Fatalf("update: %v", err)
	}

	_, err := svc.Assign(x.ID, x.Version, "Host", []int64{alice.ID})
	if !errors.Is(err, assignment.ErrStaleSnapshot) {
		t.Errorf("err = %v, want ErrStaleSnapshot", err)
	}
}

func TestCancelMoveLeavesEventsAlone(t *testing.T) {
	svc, es, ss, _ := setupService(t)
	alice := mustCreateStaff(t, ss, "Alice")

	x := mustCreateEvent(t, es, &model.Event{
		Name: "X", Date: "2025-11-15", StartTime: "09:00", EndTime: "11:00",
		RequiredStaff: map[string]int{"Host": 1},
	})
	y := mustCreateEvent(t, es, &model.Event{
		Name: "Y", Date: "2025-11-15", StartTime: "10:00", EndTime: "12:00",
		RequiredStaff: map[string]int{"Host": 1},
		AssignedStaff: []model.StaffAssignment{{StaffID: alice.ID, Role: "Host"}},
	})

	result, err := svc.Assign(x.ID, 0, "Host", []int64{alice.ID})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := svc.CancelMove(result.Decision.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	gotY, _ := es.GetByID(y.ID)
	if !gotY.HasStaff(alice.ID) {
		t.Error("cancelled move must leave the source event untouched")
	}
	if _, err := svc.Decision(result.Decision.ID); !errors.Is(err, ErrDecisionNotFound) {
		t.Errorf("decision lookup err = %v, want ErrDecisionNotFound", err)
	}
}

func TestDayViewClustersAndClear(t *testing.T) {
	svc, es, ss, _ := setupService(t)
	alice := mustCreateStaff(t, ss, "Alice")
	bob := mustCreateStaff(t, ss, "Bob")

	mustCreateEvent(t, es, &model.Event{
		Name: "A", Date: "2025-11-15", StartTime: "09:00", EndTime: "11:00",
		AssignedStaff: []model.StaffAssignment{{StaffID: alice.ID, Role: "Host"}},
	})
	mustCreateEvent(t, es, &model.Event{
		Name: "B", Date: "2025-11-15", StartTime: "10:00", EndTime: "12:00",
		AssignedStaff: []model.StaffAssignment{{StaffID: alice.ID, Role: "Host"}},
	})
	mustCreateEvent(t, es, &model.Event{
		Name: "C", Date: "2025-11-15", StartTime: "14:00", EndTime: "15:00",
		AssignedStaff: []model.StaffAssignment{{StaffID: bob.ID, Role: "Host"}},
	})

	view, err := svc.DayView("2025-11-15")
	if err != nil {
		t.Fatalf("day view: %v", err)
	}
	if len(view.Clusters) != 1 {
		t.Fatalf("clusters = %d, want 1", len(view.Clusters))
	}
	if len(view.Clusters[0]) != 2 {
		t.Errorf("cluster size = %d, want 2", len(view.Clusters[0]))
	}
	if len(view.Clear) != 1 || view.Clear[0].Name != "C" {
		t.Errorf("clear should contain only C")
	}
	if len(view.Events) != 3 {
		t.Errorf("events = %d, want 3", len(view.Events))
	}
}

func TestListRangeFilters(t *testing.T) {
	svc, es, ss, _ := setupService(t)
	alice := mustCreateStaff(t, ss, "Alice")

	mustCreateEvent(t, es, &model.Event{
		Name: "Launch", Date: "2025-11-15", StartTime: "09:00", EndTime: "11:00",
		Company: "Tech Corp", EventType: "Product Launch",
		AssignedStaff: []model.StaffAssignment{{StaffID: alice.ID, Role: "Host"}},
	})
	mustCreateEvent(t, es, &model.Event{
		Name: "Workshop", Date: "2025-11-16", StartTime: "09:00", EndTime: "11:00",
		Company: "Media Inc", EventType: "Workshop",
	})

	views, err := svc.ListRange("2025-11-15", "2025-11-16", Filter{Search: "tech"})
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(views) != 1 || views[0].Name != "Launch" {
		t.Errorf("search filter should match only Launch, got %d", len(views))
	}

	views, err = svc.ListRange("2025-11-15", "2025-11-16", Filter{StaffIDs: []int64{alice.ID}})
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(views) != 1 || views[0].Name != "Launch" {
		t.Errorf("staff filter should match only Launch, got %d", len(views))
	}

	views, err = svc.ListRange("2025-11-15", "2025-11-16", Filter{Companies: []string{"Media Inc"}})
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(views) != 1 || views[0].Name != "Workshop" {
		t.Errorf("company filter should match only Workshop, got %d", len(views))
	}

	views, err = svc.ListRange("2025-11-15", "2025-11-16", Filter{Statuses: []schedule.Status{schedule.StatusComplete}})
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(views) != 2 {
		t.Errorf("both events have no unfilled roles and should be complete, got %d", len(views))
	}
}
