package store

import (
	"context"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
)

// EventStore is a store for events.
type EventStore interface {
	// UpsertEventByExternalKey inserts the event identified by key or updates
	// its mutable fields when it already exists.
	UpsertEventByExternalKey(ctx context.Context, h db.Handler, key string, fields models.EventFields, orgID int64) (models.Event, error)
	CreateEvent(ctx context.Context, h db.Handler, fields models.EventFields, orgID int64) (models.Event, error)
	ListEvents(ctx context.Context, h db.Handler) ([]models.Event, error)
	ListEventsOnDate(ctx context.Context, h db.Handler, date string) ([]models.Event, error)
	ListEventsByOrganization(ctx context.Context, h db.Handler, orgID int64) ([]models.Event, error)
	GetEventByID(ctx context.Context, h db.Handler, id int64) (models.Event, error)
	// DeleteEventByID deletes the event and its attendances. It returns the
	// deleted event and the attendances that were removed with it.
	DeleteEventByID(ctx context.Context, h db.Handler, id int64) (models.Event, []models.Attendance, error)
}
