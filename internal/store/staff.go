package store

import (
	"database/sql"
	"fmt"

	"github.com/dbritton/callsheet/internal/model"
)

type StaffStore struct {
	db *sql.DB
}

func NewStaffStore(db *sql.DB) *StaffStore {
	return &StaffStore{db: db}
}

func (s *StaffStore) Create(name, defaultRole string) (*model.StaffMember, error) {
	result, err := s.db.Exec(
		"INSERT INTO staff (name, default_role) VALUES (?, ?)",
		name, defaultRole,
	)
	if err != nil {
		return nil, fmt.Errorf("insert staff: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *StaffStore) GetByID(id int64) (*model.StaffMember, error) {
	var m model.StaffMember
	err := s.db.QueryRow(
		"SELECT id, name, default_role, created_at, updated_at FROM staff WHERE id = ?",
		id,
	).Scan(&m.ID, &m.Name, &m.DefaultRole, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query staff: %w", err)
	}
	return &m, nil
}

func (s *StaffStore) List() ([]model.StaffMember, error) {
	rows, err := s.db.Query("SELECT id, name, default_role, created_at, updated_at FROM staff ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("query staff: %w", err)
	}
	defer rows.Close()

	var members []model.StaffMember
	for rows.Next() {
		var m model.StaffMember
		if err := rows.Scan(&m.ID, &m.Name, &m.DefaultRole, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetByIDs resolves a candidate id list, preserving the requested order and
// skipping unknown ids.
func (s *StaffStore) GetByIDs(ids []int64) ([]model.StaffMember, error) {
	members := make([]model.StaffMember, 0, len(ids))
	for _, id := range ids {
		m, err := s.GetByID(id)
		if err != nil {
			return nil, err
		}
		if m != nil {
			members = append(members, *m)
		}
	}
	return members, nil
}

func (s *StaffStore) Update(id int64, name, defaultRole string) (*model.StaffMember, error) {
	_, err := s.db.Exec(
		"UPDATE staff SET name = ?, default_role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		name, defaultRole, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update staff: %w", err)
	}
	return s.GetByID(id)
}

func (s *StaffStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM staff WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	return nil
}

func (s *StaffStore) NameExists(name string, excludeID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM staff WHERE name = ? AND id != ?",
		name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check staff name: %w", err)
	}
	return count > 0, nil
}
