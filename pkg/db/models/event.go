package models

import (
	"database/sql"
	"time"
)

const (
	// DateLayout is the storage layout of event dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the storage layout of event times.
	TimeLayout = "15:04:05"
)

// Event represents a catalog event.
type Event struct {
	ID             int64          `db:"id"`
	Name           string         `db:"name"`
	StartDate      string         `db:"start_date"`
	StartTime      string         `db:"start_time"`
	EndDate        sql.NullString `db:"end_date"`
	EndTime        sql.NullString `db:"end_time"`
	Location       string         `db:"location"`
	Description    string         `db:"description"`
	EventURL       string         `db:"event_url"`
	OrganizationID int64          `db:"organization_id"`
	ExternalKey    sql.NullString `db:"external_key"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// Start returns the start of the event as naive wall time.
func (e Event) Start() (time.Time, error) {
	return time.Parse(DateLayout+" "+TimeLayout, e.StartDate+" "+e.StartTime)
}

// End returns the end of the event. ok is false when the event has no end.
func (e Event) End() (t time.Time, ok bool, err error) {
	if !e.EndDate.Valid || !e.EndTime.Valid {
		return time.Time{}, false, nil
	}
	t, err = time.Parse(DateLayout+" "+TimeLayout, e.EndDate.String+" "+e.EndTime.String)
	return t, err == nil, err
}

// EventFields are the mutable fields of an event.
type EventFields struct {
	Name        string
	Start       time.Time
	End         *time.Time
	Location    string
	Description string
	EventURL    string
}
