package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/dbritton/callsheet/internal/model"
	"github.com/dbritton/callsheet/internal/roster"
	"github.com/dbritton/callsheet/internal/schedule"
)

func TestCreateEventValidation(t *testing.T) {
	env := setupEnv(t)

	tests := []struct {
		name string
		req  eventRequest
		want int
	}{
		{
			name: "valid",
			req:  eventRequest{Name: "X", Date: "2025-11-15", StartTime: "09:00", EndTime: "11:00"},
			want: http.StatusCreated,
		},
		{
			name: "missing name",
			req:  eventRequest{Date: "2025-11-15", StartTime: "09:00", EndTime: "11:00"},
			want: http.StatusBadRequest,
		},
		{
			name: "bad date",
			req:  eventRequest{Name: "X", Date: "15/11/2025", StartTime: "09:00", EndTime: "11:00"},
			want: http.StatusBadRequest,
		},
		{
			name: "bad time",
			req:  eventRequest{Name: "X", Date: "2025-11-15", StartTime: "9am", EndTime: "11:00"},
			want: http.StatusBadRequest,
		},
		{
			name: "inverted window",
			req:  eventRequest{Name: "X", Date: "2025-11-15", StartTime: "11:00", EndTime: "09:00"},
			want: http.StatusBadRequest,
		},
		{
			name: "negative role count",
			req: eventRequest{
				Name: "X", Date: "2025-11-15", StartTime: "09:00", EndTime: "11:00",
				RequiredStaff: map[string]int{"Host": -1},
			},
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "POST", "/api/events", tt.req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestDayViewEndpoint(t *testing.T) {
	env := setupEnv(t)
	alice := env.createStaff(t, "Alice")

	env.createEvent(t, &model.Event{
		Name: "A", Date: "2025-11-15", StartTime: "09:00", EndTime: "11:00",
		AssignedStaff: []model.StaffAssignment{{StaffID: alice.ID, Role: "Host"}},
	})
	env.createEvent(t, &model.Event{
		Name: "B", Date: "2025-11-15", StartTime: "10:00", EndTime: "12:00",
		AssignedStaff: []model.StaffAssignment{{StaffID: alice.ID, Role: "Host"}},
	})

	rec := env.do(t, "GET", "/api/days/2025-11-15", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var view roster.DayView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(view.Events))
	}
	if len(view.Clusters) != 1 {
		t.Errorf("clusters = %d, want 1", len(view.Clusters))
	}
	for _, v := range view.Events {
		if v.Status != schedule.StatusConflict {
			t.Errorf("event %s status = %s, want conflict", v.Name, v.Status)
		}
	}

	rec = env.do(t, "GET", "/api/days/not-a-date", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", rec.Code)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	env := setupEnv(t)
	alice := env.createStaff(t, "Alice")
	bob := env.createStaff(t, "Bob")

	target := env.createEvent(t, &model.Event{
		Name: "X", Date: "2025-11-15", StartTime: "09:00", EndTime: "11:00",
		RequiredStaff: map[string]int{"Host": 1},
	})
	env.createEvent(t, &model.Event{
		Name: "Y", Date: "2025-11-15", StartTime: "10:00", EndTime: "12:00",
		AssignedStaff: []model.StaffAssignment{{StaffID: alice.ID, Role: "Host"}},
	})

	rec := env.do(t, "GET", fmt.Sprintf("/api/events/%d/availability", target.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Staff []schedule.StaffProfile `json:"staff"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Staff) != 2 {
		t.Fatalf("staff = %d, want 2", len(body.Staff))
	}
	for _, p := range body.Staff {
		switch p.ID {
		case alice.ID:
			if p.Available {
				t.Error("Alice is double-booked and should be unavailable")
			}
		case bob.ID:
			if !p.Available {
				t.Error("Bob is free and should be available")
			}
		}
	}
}
