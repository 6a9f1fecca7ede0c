package model

import "time"

// Operator is a human scheduler who can log in and mutate the roster.
type Operator struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a logged-in operator session identified by an opaque token.
type Session struct {
	ID         int64     `json:"id"`
	Token      string    `json:"-"`
	OperatorID int64     `json:"operator_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}
