package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
	"github.com/beartracks/beartracks/pkg/proto"
)

// Events returns all the events in the catalog.
func (d *Backend) Events(ctx context.Context) ([]proto.Event, error) {
	events, err := d.store.ListEvents(ctx, d.db)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", db.WrapError(err))
	}
	return d.eventViews(ctx, events)
}

// EventsOnDate returns the events starting on date, formatted as
// YYYY-MM-DD.
func (d *Backend) EventsOnDate(ctx context.Context, date string) ([]proto.Event, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, proto.NewValidationError("date", "Invalid date format. Use YYYY-MM-DD")
	}

	events, err := d.store.ListEventsOnDate(ctx, d.db, date)
	if err != nil {
		return nil, fmt.Errorf("list events on date: %w", db.WrapError(err))
	}
	if len(events) == 0 {
		return nil, proto.ErrNoEventsOnDate
	}

	return d.eventViews(ctx, events)
}

// Event returns the event with the given id.
func (d *Backend) Event(ctx context.Context, id int64) (proto.Event, error) {
	e, err := d.store.GetEventByID(ctx, d.db, id)
	if err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrRecordNotFound) {
			return proto.Event{}, proto.ErrEventNotFound
		}
		return proto.Event{}, fmt.Errorf("get event: %w", err)
	}

	views, err := d.eventViews(ctx, []models.Event{e})
	if err != nil {
		return proto.Event{}, err
	}
	return views[0], nil
}

// CreateEvent adds an event to the catalog. The organization is referenced
// by name and must exist.
func (d *Backend) CreateEvent(ctx context.Context, in proto.EventInput) (proto.Event, error) {
	fields, err := eventFields(in)
	if err != nil {
		return proto.Event{}, err
	}

	org, err := d.store.FindOrganizationByName(ctx, d.db, in.Organization)
	if err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrRecordNotFound) {
			return proto.Event{}, proto.ErrOrganizationNotFound
		}
		return proto.Event{}, fmt.Errorf("find organization: %w", err)
	}

	e, err := d.store.CreateEvent(ctx, d.db, fields, org.ID)
	if err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrForeignKey) {
			return proto.Event{}, proto.ErrOrganizationNotFound
		}
		return proto.Event{}, fmt.Errorf("create event: %w", err)
	}

	d.logger.Debug("event created", "id", e.ID, "organization", org.Name)
	summary := organizationSummary(org)
	return eventView(e, &summary, nil), nil
}

// DeleteEvent removes the event and its attendances. It returns the event
// as it was before the deletion.
func (d *Backend) DeleteEvent(ctx context.Context, id int64) (proto.Event, error) {
	view, err := d.Event(ctx, id)
	if err != nil {
		return proto.Event{}, err
	}

	if _, err := d.rsvp.DeleteEvent(ctx, id); err != nil {
		return proto.Event{}, err
	}

	return view, nil
}

func eventFields(in proto.EventInput) (models.EventFields, error) {
	for _, f := range []struct{ name, value string }{
		{"name", in.Name},
		{"start_date", in.StartDate},
		{"start_time", in.StartTime},
		{"organization", in.Organization},
	} {
		if strings.TrimSpace(f.value) == "" {
			return models.EventFields{}, proto.NewValidationError(f.name, "Missing required field: %s", f.name)
		}
	}

	start, err := parseDateTime("start", in.StartDate, in.StartTime)
	if err != nil {
		return models.EventFields{}, err
	}

	fields := models.EventFields{
		Name:        in.Name,
		Start:       start,
		Location:    in.Location,
		Description: in.Description,
		EventURL:    in.EventURL,
	}

	hasDate, hasTime := in.EndDate != nil && *in.EndDate != "", in.EndTime != nil && *in.EndTime != ""
	switch {
	case hasDate != hasTime:
		return models.EventFields{}, proto.NewValidationError("end_date", "end_date and end_time must be given together")
	case hasDate:
		end, err := parseDateTime("end", *in.EndDate, *in.EndTime)
		if err != nil {
			return models.EventFields{}, err
		}
		if start.After(end) {
			return models.EventFields{}, proto.NewValidationError("end_date", "start must not be after end")
		}
		fields.End = &end
	}

	return fields, nil
}

func parseDateTime(prefix, date, clock string) (time.Time, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return time.Time{}, proto.NewValidationError(prefix+"_date", "Invalid date format. Use YYYY-MM-DD")
	}
	if _, err := time.Parse(models.TimeLayout, clock); err != nil {
		return time.Time{}, proto.NewValidationError(prefix+"_time", "Invalid time format. Use HH:MM:SS")
	}
	t, err := time.Parse(models.DateLayout+" "+models.TimeLayout, date+" "+clock)
	if err != nil {
		return time.Time{}, proto.NewValidationError(prefix+"_date", "Invalid date or time")
	}
	return t, nil
}
