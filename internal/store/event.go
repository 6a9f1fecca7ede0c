package store

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/dbritton/callsheet/internal/model"
)

// ErrVersionConflict is returned when a roster commit finds that an event
// changed since the snapshot it was computed from.
var ErrVersionConflict = fmt.Errorf("event version conflict")

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// Create inserts the event with its roles, assignments and equipment lines.
func (s *EventStore) Create(e *model.Event) (*model.Event, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO events (name, date, start_time, end_time, company, event_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Name, e.Date, e.StartTime, e.EndTime, e.Company, e.EventType,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := writeChildren(tx, id, e); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	var e model.Event
	err := s.db.QueryRow(
		`SELECT id, name, date, start_time, end_time, company, event_type, version, created_at, updated_at
		 FROM events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Name, &e.Date, &e.StartTime, &e.EndTime, &e.Company, &e.EventType, &e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}

	if err := s.loadChildren([]*model.Event{&e}); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByDate returns one day's events ordered by start time. This is the
// snapshot the conflict engine works on.
func (s *EventStore) ListByDate(date string) ([]*model.Event, error) {
	return s.list(`SELECT id, name, date, start_time, end_time, company, event_type, version, created_at, updated_at
		 FROM events WHERE date = ? ORDER BY start_time ASC, id ASC`, date)
}

// ListByDateRange returns events with date in [from, to] inclusive, ordered
// by date then start time.
func (s *EventStore) ListByDateRange(from, to string) ([]*model.Event, error) {
	return s.list(`SELECT id, name, date, start_time, end_time, company, event_type, version, created_at, updated_at
		 FROM events WHERE date >= ? AND date <= ? ORDER BY date ASC, start_time ASC, id ASC`, from, to)
}

func (s *EventStore) list(query string, args ...any) ([]*model.Event, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.StartTime, &e.EndTime, &e.Company, &e.EventType, &e.Version, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadChildren(events); err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateDetails changes the event's own fields (not its roster) and bumps
// the version.
func (s *EventStore) UpdateDetails(id int64, name, date, startTime, endTime, company, eventType string) (*model.Event, error) {
	_, err := s.db.Exec(
		`UPDATE events
		 SET name = ?, date = ?, start_time = ?, end_time = ?, company = ?, event_type = ?,
		     version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, date, startTime, endTime, company, eventType, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// CommitRoster persists a batch of mutated events as one transaction. Each
// event must carry the version it was read at; if any row moved on in the
// meantime the whole batch rolls back with ErrVersionConflict. On success
// the stored versions advance by one.
func (s *EventStore) CommitRoster(updated []*model.Event) error {
	if len(updated) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, e := range updated {
		result, err := tx.Exec(
			`UPDATE events SET version = version + 1, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND version = ?`,
			e.ID, e.Version,
		)
		if err != nil {
			return fmt.Errorf("bump version: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("event %d: %w", e.ID, ErrVersionConflict)
		}

		if _, err := tx.Exec("DELETE FROM event_roles WHERE event_id = ?", e.ID); err != nil {
			return fmt.Errorf("clear roles: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM event_staff WHERE event_id = ?", e.ID); err != nil {
			return fmt.Errorf("clear assignments: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM event_equipment WHERE event_id = ?", e.ID); err != nil {
			return fmt.Errorf("clear equipment: %w", err)
		}
		if err := writeChildren(tx, e.ID, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func writeChildren(tx *sql.Tx, id int64, e *model.Event) error {
	// Stable insertion order keeps reads deterministic.
	roles := make([]string, 0, len(e.RequiredStaff))
	for role := range e.RequiredStaff {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		if _, err := tx.Exec(
			"INSERT INTO event_roles (event_id, role, required) VALUES (?, ?, ?)",
			id, role, e.RequiredStaff[role],
		); err != nil {
			return fmt.Errorf("insert role: %w", err)
		}
	}

	for i, a := range e.AssignedStaff {
		if _, err := tx.Exec(
			"INSERT INTO event_staff (event_id, staff_id, role, position) VALUES (?, ?, ?, ?)",
			id, a.StaffID, a.Role, i,
		); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}

	for _, line := range e.Equipment {
		if _, err := tx.Exec(
			"INSERT INTO event_equipment (event_id, category, required, assigned) VALUES (?, ?, ?, ?)",
			id, line.Category, line.Required, line.Assigned,
		); err != nil {
			return fmt.Errorf("insert equipment: %w", err)
		}
	}
	return nil
}

func (s *EventStore) loadChildren(events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}
	byID := make(map[int64]*model.Event, len(events))
	for _, e := range events {
		e.RequiredStaff = make(map[string]int)
		byID[e.ID] = e
	}

	ids := make([]any, 0, len(events))
	placeholders := ""
	for i, e := range events {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		ids = append(ids, e.ID)
	}

	rows, err := s.db.Query(
		"SELECT event_id, role, required FROM event_roles WHERE event_id IN ("+placeholders+")", ids...)
	if err != nil {
		return fmt.Errorf("query roles: %w", err)
	}
	for rows.Next() {
		var eventID int64
		var role string
		var required int
		if err := rows.Scan(&eventID, &role, &required); err != nil {
			rows.Close()
			return fmt.Errorf("scan role: %w", err)
		}
		byID[eventID].RequiredStaff[role] = required
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(
		`SELECT es.event_id, es.staff_id, st.name, es.role
		 FROM event_staff es JOIN staff st ON st.id = es.staff_id
		 WHERE es.event_id IN (`+placeholders+`) ORDER BY es.event_id, es.position`, ids...)
	if err != nil {
		return fmt.Errorf("query assignments: %w", err)
	}
	for rows.Next() {
		var eventID int64
		var a model.StaffAssignment
		if err := rows.Scan(&eventID, &a.StaffID, &a.Name, &a.Role); err != nil {
			rows.Close()
			return fmt.Errorf("scan assignment: %w", err)
		}
		e := byID[eventID]
		e.AssignedStaff = append(e.AssignedStaff, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(
		"SELECT event_id, category, required, assigned FROM event_equipment WHERE event_id IN ("+placeholders+") ORDER BY event_id, category", ids...)
	if err != nil {
		return fmt.Errorf("query equipment: %w", err)
	}
	for rows.Next() {
		var eventID int64
		var line model.EquipmentLine
		if err := rows.Scan(&eventID, &line.Category, &line.Required, &line.Assigned); err != nil {
			rows.Close()
			return fmt.Errorf("scan equipment: %w", err)
		}
		e := byID[eventID]
		e.Equipment = append(e.Equipment, line)
	}
	rows.Close()
	return rows.Err()
}
