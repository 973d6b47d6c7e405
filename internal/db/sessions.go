package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a token does not belong to the user
var ErrInvalidToken = errors.New("invalid session token")

// CreateSession issues a fresh token for the user
func (d *DB) CreateSession(userID, role string) (Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Session{}, fmt.Errorf("creating session: empty user id")
	}
	s := Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UnixMilli(),
	}
	_, err := d.conn.Exec("INSERT INTO sessions (token, user_id, role, created_at) VALUES (?, ?, ?, ?)",
		s.Token, s.UserID, s.Role, s.CreatedAt)
	if err != nil {
		return Session{}, fmt.Errorf("creating session for %s: %w", userID, err)
	}
	return s, nil
}

// ValidateToken looks up the session for token and checks it was issued to userID
func (d *DB) ValidateToken(userID, token string) (Session, error) {
	var s Session
	err := d.conn.QueryRow(
		"SELECT token, user_id, role, created_at FROM sessions WHERE token = ? AND user_id = ?",
		strings.TrimSpace(token), strings.TrimSpace(userID),
	).Scan(&s.Token, &s.UserID, &s.Role, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrInvalidToken
	}
	if err != nil {
		return Session{}, fmt.Errorf("validating token: %w", err)
	}
	return s, nil
}

// DeleteSession revokes a token
func (d *DB) DeleteSession(token string) error {
	if _, err := d.conn.Exec("DELETE FROM sessions WHERE token = ?", token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
