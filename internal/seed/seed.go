// Package seed fills an empty database with a demo staff pool and a month of
// events. It exists for demos and manual testing; generation is driven by a
// caller-supplied seed so runs are reproducible.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/dbritton/callsheet/internal/model"
	"github.com/dbritton/callsheet/internal/store"
)

var companies = []string{
	"Tech Corp",
	"Media Inc",
	"Finance Ltd",
	"Retail Co",
	"Healthcare Plus",
}

var eventTypes = []string{
	"Conference",
	"Workshop",
	"Seminar",
	"Product Launch",
	"Team Building",
}

var staffPool = []struct {
	name string
	role string
}{
	{"John Smith", "Host"},
	{"Sarah Johnson", "Host"},
	{"Mike Chen", "Host"},
	{"Emily Davis", "Cameraman"},
	{"David Wilson", "Cameraman"},
	{"Lisa Brown", "Admin"},
	{"Tom Anderson", "Admin"},
	{"Anna Lee", "Admin"},
	{"Chris Martinez", "Technician"},
	{"Jessica Taylor", "Technician"},
}

// Options controls the generated data set.
type Options struct {
	// Anchor is the center of the generated date range.
	Anchor time.Time

	// Events is the number of events to create.
	Events int

	// Seed drives the random generator; the same seed yields the same data.
	Seed int64
}

// Run creates the staff pool and events. It assumes an empty database;
// duplicate staff names fail on the second run.
func Run(events *store.EventStore, staff *store.StaffStore, opts Options, logger *slog.Logger) error {
	if opts.Events <= 0 {
		opts.Events = 150
	}
	if opts.Anchor.IsZero() {
		opts.Anchor = time.Now()
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	byRole := make(map[string][]model.StaffMember)
	for _, s := range staffPool {
		m, err := staff.Create(s.name, s.role)
		if err != nil {
			return fmt.Errorf("seed staff %s: %w", s.name, err)
		}
		byRole[s.role] = append(byRole[s.role], *m)
	}
	logger.Info("seeded staff pool", "count", len(staffPool))

	// Concentrate events on 20 of the surrounding 30 days so some days carry
	// several overlapping events and some carry none.
	dayOffsets := make(map[int]struct{})
	for len(dayOffsets) < 20 {
		dayOffsets[rng.Intn(30)-15] = struct{}{}
	}
	days := make([]int, 0, len(dayOffsets))
	for d := range dayOffsets {
		days = append(days, d)
	}
	sort.Ints(days)

	for i := 0; i < opts.Events; i++ {
		day := opts.Anchor.AddDate(0, 0, days[rng.Intn(len(days))])
		startHour := 8 + rng.Intn(8)
		duration := 2 + rng.Intn(4)

		roles := []string{"Host", "Cameraman", "Admin", "Technician"}
		required := map[string]int{
			"Host":       1 + rng.Intn(2),
			"Cameraman":  1 + rng.Intn(2),
			"Admin":      1 + rng.Intn(3),
			"Technician": rng.Intn(2),
		}

		// Most events are fully staffed; the rest get a random partial fill
		// so the board shows incomplete and conflicting entries. Roles are
		// walked in a fixed order to keep runs reproducible.
		var assigned []model.StaffAssignment
		fullyStaffed := rng.Float64() > 0.2
		for _, role := range roles {
			pool := byRole[role]
			n := required[role]
			if !fullyStaffed {
				n = rng.Intn(n + 1)
			}
			if n > len(pool) {
				n = len(pool)
			}
			for j := 0; j < n; j++ {
				assigned = append(assigned, model.StaffAssignment{
					StaffID: pool[j].ID,
					Role:    role,
				})
			}
		}

		equipment := []model.EquipmentLine{
			{Category: "Camera", Required: 1 + rng.Intn(3)},
			{Category: "Microphone", Required: 2 + rng.Intn(4)},
			{Category: "Projector", Required: 1 + rng.Intn(2)},
			{Category: "Laptop", Required: 1 + rng.Intn(5)},
		}
		for k := range equipment {
			equipment[k].Assigned = equipment[k].Required
		}

		_, err := events.Create(&model.Event{
			Name:          fmt.Sprintf("%s %d", eventTypes[rng.Intn(len(eventTypes))], i+1),
			Date:          day.Format("2006-01-02"),
			StartTime:     fmt.Sprintf("%02d:00", startHour),
			EndTime:       fmt.Sprintf("%02d:00", startHour+duration),
			Company:       companies[rng.Intn(len(companies))],
			EventType:     eventTypes[rng.Intn(len(eventTypes))],
			RequiredStaff: required,
			AssignedStaff: assigned,
			Equipment:     equipment,
		})
		if err != nil {
			return fmt.Errorf("seed event %d: %w", i+1, err)
		}
	}

	logger.Info("seeded events", "count", opts.Events)
	return nil
}
