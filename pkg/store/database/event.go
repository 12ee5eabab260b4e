package database

import (
	"context"
	"database/sql"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
	"github.com/beartracks/beartracks/pkg/store"
)

type eventStore struct{}

var _ store.EventStore = (*eventStore)(nil)

// eventRow is the storage form of models.EventFields.
type eventRow struct {
	startDate, startTime string
	endDate, endTime     sql.NullString
}

func toEventRow(f models.EventFields) eventRow {
	r := eventRow{
		startDate: f.Start.Format(models.DateLayout),
		startTime: f.Start.Format(models.TimeLayout),
	}
	if f.End != nil {
		r.endDate = nullString(f.End.Format(models.DateLayout))
		r.endTime = nullString(f.End.Format(models.TimeLayout))
	}
	return r
}

// UpsertEventByExternalKey implements store.EventStore.
func (s *eventStore) UpsertEventByExternalKey(ctx context.Context, h db.Handler, key string, fields models.EventFields, orgID int64) (models.Event, error) {
	r := toEventRow(fields)

	var id int64
	query := h.Rebind(`INSERT INTO events (name, start_date, start_time, end_date, end_time,
				location, description, event_url, organization_id, external_key, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (external_key) DO UPDATE SET
				name = excluded.name,
				start_date = excluded.start_date,
				start_time = excluded.start_time,
				end_date = excluded.end_date,
				end_time = excluded.end_time,
				location = excluded.location,
				description = excluded.description,
				event_url = excluded.event_url,
				organization_id = excluded.organization_id,
				updated_at = CURRENT_TIMESTAMP
			RETURNING id;`)
	if err := h.GetContext(ctx, &id, query,
		fields.Name, r.startDate, r.startTime, r.endDate, r.endTime,
		fields.Location, fields.Description, fields.EventURL, orgID, key); err != nil {
		return models.Event{}, err //nolint:wrapcheck
	}
	return s.GetEventByID(ctx, h, id)
}

// CreateEvent implements store.EventStore.
func (s *eventStore) CreateEvent(ctx context.Context, h db.Handler, fields models.EventFields, orgID int64) (models.Event, error) {
	r := toEventRow(fields)

	var id int64
	query := h.Rebind(`INSERT INTO events (name, start_date, start_time, end_date, end_time,
				location, description, event_url, organization_id, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			RETURNING id;`)
	if err := h.GetContext(ctx, &id, query,
		fields.Name, r.startDate, r.startTime, r.endDate, r.endTime,
		fields.Location, fields.Description, fields.EventURL, orgID); err != nil {
		return models.Event{}, err //nolint:wrapcheck
	}
	return s.GetEventByID(ctx, h, id)
}

// ListEvents implements store.EventStore.
func (*eventStore) ListEvents(ctx context.Context, h db.Handler) ([]models.Event, error) {
	var ms []models.Event
	query := h.Rebind(`SELECT * FROM events ORDER BY start_date ASC, start_time ASC, id ASC;`)
	err := h.SelectContext(ctx, &ms, query)
	return ms, err //nolint:wrapcheck
}

// ListEventsOnDate implements store.EventStore.
func (*eventStore) ListEventsOnDate(ctx context.Context, h db.Handler, date string) ([]models.Event, error) {
	var ms []models.Event
	query := h.Rebind(`SELECT * FROM events WHERE start_date = ?
			ORDER BY start_time ASC, id ASC;`)
	err := h.SelectContext(ctx, &ms, query, date)
	return ms, err //nolint:wrapcheck
}

// ListEventsByOrganization implements store.EventStore.
func (*eventStore) ListEventsByOrganization(ctx context.Context, h db.Handler, orgID int64) ([]models.Event, error) {
	var ms []models.Event
	query := h.Rebind(`SELECT * FROM events WHERE organization_id = ?
			ORDER BY start_date ASC, start_time ASC, id ASC;`)
	err := h.SelectContext(ctx, &ms, query, orgID)
	return ms, err //nolint:wrapcheck
}

// GetEventByID implements store.EventStore.
func (*eventStore) GetEventByID(ctx context.Context, h db.Handler, id int64) (models.Event, error) {
	var m models.Event
	query := h.Rebind(`SELECT * FROM events WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// DeleteEventByID implements store.EventStore.
func (s *eventStore) DeleteEventByID(ctx context.Context, h db.Handler, id int64) (models.Event, []models.Attendance, error) {
	m, err := s.GetEventByID(ctx, h, id)
	if err != nil {
		return models.Event{}, nil, err
	}

	var as []models.Attendance
	query := h.Rebind(`SELECT * FROM attendances WHERE event_id = ? ORDER BY user_id ASC;`)
	if err := h.SelectContext(ctx, &as, query, id); err != nil {
		return models.Event{}, nil, err //nolint:wrapcheck
	}

	// SQLite only cascades with the foreign_keys pragma on.
	query = h.Rebind(`DELETE FROM attendances WHERE event_id = ?;`)
	if _, err := h.ExecContext(ctx, query, id); err != nil {
		return models.Event{}, nil, err //nolint:wrapcheck
	}

	query = h.Rebind(`DELETE FROM events WHERE id = ?;`)
	if _, err := h.ExecContext(ctx, query, id); err != nil {
		return models.Event{}, nil, err //nolint:wrapcheck
	}

	return m, as, nil
}
