package db

import (
	"fmt"
	"strings"
	"time"
)

// SetReminder stores the follow-up date for a case, one per case
func (d *DB) SetReminder(cnr string, on time.Time) error {
	return d.SetReminders(map[string]time.Time{cnr: on})
}

// SetReminders upserts a batch of reminders in a single transaction
func (d *DB) SetReminders(batch map[string]time.Time) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO reminders (cnr, remind_on, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(cnr) DO UPDATE SET remind_on = excluded.remind_on, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing reminder upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for cnr, on := range batch {
		cnr = strings.TrimSpace(cnr)
		if cnr == "" {
			return fmt.Errorf("setting reminder: empty case number")
		}
		if _, err := stmt.Exec(cnr, on.Format(time.DateOnly), now); err != nil {
			return fmt.Errorf("setting reminder %s: %w", cnr, err)
		}
	}
	return tx.Commit()
}

// ListReminders returns stored reminders ordered by date, then case number
func (d *DB) ListReminders() ([]Reminder, error) {
	rows, err := d.conn.Query("SELECT cnr, remind_on, updated_at FROM reminders ORDER BY remind_on, cnr")
	if err != nil {
		return nil, fmt.Errorf("listing reminders: %w", err)
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.CNR, &r.RemindOn, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning reminder: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteReminder removes a case's reminder. Deleting a missing one is not an error.
func (d *DB) DeleteReminder(cnr string) error {
	if _, err := d.conn.Exec("DELETE FROM reminders WHERE cnr = ?", strings.TrimSpace(cnr)); err != nil {
		return fmt.Errorf("deleting reminder %s: %w", cnr, err)
	}
	return nil
}
