package db

// Note is a free-text annotation on a case
type Note struct {
	CNR       string `json:"cnr_number"`
	Body      string `json:"body"`
	UpdatedAt int64  `json:"updated_at"` // Unix millis
}

// Reminder is a follow-up date for a case
type Reminder struct {
	CNR       string `json:"cnr_number"`
	RemindOn  string `json:"remind_on"` // YYYY-MM-DD
	UpdatedAt int64  `json:"updated_at"` // Unix millis
}

// Session is a row in the sessions table
type Session struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"` // "judge", "lawyer", "analyst"
	CreatedAt int64  `json:"created_at"` // Unix millis
}
