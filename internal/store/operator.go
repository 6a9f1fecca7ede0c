package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dbritton/callsheet/internal/model"
)

type OperatorStore struct {
	db *sql.DB
}

func NewOperatorStore(db *sql.DB) *OperatorStore {
	return &OperatorStore{db: db}
}

func (s *OperatorStore) Create(username, passwordHash string) (*model.Operator, error) {
	result, err := s.db.Exec(
		"INSERT INTO operators (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert operator: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *OperatorStore) GetByID(id int64) (*model.Operator, error) {
	var op model.Operator
	err := s.db.QueryRow(
		"SELECT id, username, password_hash, created_at FROM operators WHERE id = ?",
		id,
	).Scan(&op.ID, &op.Username, &op.PasswordHash, &op.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query operator: %w", err)
	}
	return &op, nil
}

func (s *OperatorStore) GetByUsername(username string) (*model.Operator, error) {
	var op model.Operator
	err := s.db.QueryRow(
		"SELECT id, username, password_hash, created_at FROM operators WHERE username = ?",
		username,
	).Scan(&op.ID, &op.Username, &op.PasswordHash, &op.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query operator: %w", err)
	}
	return &op, nil
}

// SetPassword replaces the stored hash, used by the config bootstrap when
// the admin password changes.
func (s *OperatorStore) SetPassword(id int64, passwordHash string) error {
	_, err := s.db.Exec("UPDATE operators SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return fmt.Errorf("update operator password: %w", err)
	}
	return nil
}

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(token string, operatorID int64, expiresAt time.Time) (*model.Session, error) {
	result, err := s.db.Exec(
		"INSERT INTO sessions (token, operator_id, expires_at) VALUES (?, ?, ?)",
		token, operatorID, expiresAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	var sess model.Session
	err = s.db.QueryRow(
		"SELECT id, token, operator_id, expires_at, created_at FROM sessions WHERE id = ?",
		id,
	).Scan(&sess.ID, &sess.Token, &sess.OperatorID, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &sess, nil
}

// GetByToken returns the session if it exists and has not expired.
func (s *SessionStore) GetByToken(token string) (*model.Session, error) {
	var sess model.Session
	err := s.db.QueryRow(
		"SELECT id, token, operator_id, expires_at, created_at FROM sessions WHERE token = ?",
		token,
	).Scan(&sess.ID, &sess.Token, &sess.OperatorID, &sess.ExpiresAt, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if time.Now().After(sess.ExpiresAt) {
		return nil, nil
	}
	return &sess, nil
}

func (s *SessionStore) Delete(token string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes stale sessions; run periodically.
func (s *SessionStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
