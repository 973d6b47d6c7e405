package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// GetNote returns the note body for a case, or "" when none is stored
func (d *DB) GetNote(cnr string) (string, error) {
	var body string
	err := d.conn.QueryRow("SELECT body FROM notes WHERE cnr = ?", strings.TrimSpace(cnr)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting note %s: %w", cnr, err)
	}
	return body, nil
}

// SetNote stores the note for a case, replacing any previous body
func (d *DB) SetNote(cnr, body string) error {
	cnr = strings.TrimSpace(cnr)
	if cnr == "" {
		return fmt.Errorf("setting note: empty case number")
	}
	_, err := d.conn.Exec(`
		INSERT INTO notes (cnr, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(cnr) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		cnr, body, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("setting note %s: %w", cnr, err)
	}
	return nil
}

// ListNotes returns every stored note ordered by case number
func (d *DB) ListNotes() ([]Note, error) {
	rows, err := d.conn.Query("SELECT cnr, body, updated_at FROM notes ORDER BY cnr")
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.CNR, &n.Body, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
