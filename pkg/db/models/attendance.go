package models

import (
	"database/sql"
	"time"
)

// Attendance is the edge between a user and an event they RSVP'd to.
type Attendance struct {
	UserID              int64          `db:"user_id"`
	EventID             int64          `db:"event_id"`
	ExternalCalendarRef sql.NullString `db:"external_calendar_ref"`
	CreatedAt           time.Time      `db:"created_at"`
}
