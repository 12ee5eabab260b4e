// Package rsvp binds users to events and mirrors the binding into their
// calendars.
//
// An attendance moves between two states:
//
//	NOT_ATTENDING --attend--> ATTENDING --leave--> NOT_ATTENDING
//
// A failed calendar write on attend removes the new attendance again. A
// failed calendar delete on leave is logged and the attendance stays
// removed.
package rsvp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/beartracks/beartracks/pkg/calendar"
	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
	"github.com/beartracks/beartracks/pkg/proto"
	"github.com/beartracks/beartracks/pkg/store"
	"github.com/beartracks/beartracks/pkg/task"
	"github.com/charmbracelet/log"
)

// Mirror writes attendances to an external calendar.
type Mirror interface {
	// Create returns the external reference of the new entry, or
	// calendar.ErrNoAccessToken when the user has no calendar access.
	Create(ctx context.Context, user models.User, event models.Event) (string, error)
	Delete(ctx context.Context, user models.User, ref string) error
}

// Coordinator runs the attend and leave transitions.
type Coordinator struct {
	db      *db.DB
	store   store.Store
	mirror  Mirror
	manager *task.Manager
	logger  *log.Logger
	wg      sync.WaitGroup
}

// NewCoordinator returns a new Coordinator. Background calendar deletions
// are bound to ctx.
func NewCoordinator(ctx context.Context, dbx *db.DB, st store.Store, mirror Mirror) *Coordinator {
	return &Coordinator{
		db:      dbx,
		store:   st,
		mirror:  mirror,
		manager: task.NewManager(ctx),
		logger:  log.FromContext(ctx).WithPrefix("rsvp"),
	}
}

// Attend makes the user attend the event and adds it to their calendar.
func (c *Coordinator) Attend(ctx context.Context, userID, eventID int64) (a models.Attendance, err error) {
	defer func() { observe("attend", err) }()

	user, event, err := c.load(ctx, userID, eventID)
	if err != nil {
		return models.Attendance{}, err
	}

	a, err = c.store.AddAttendance(ctx, c.db, userID, eventID)
	if err != nil {
		err = db.WrapError(err)
		switch {
		case errors.Is(err, db.ErrDuplicateKey):
			return models.Attendance{}, proto.ErrAlreadyAttending
		case errors.Is(err, db.ErrForeignKey):
			// The event was deleted after it was loaded.
			return models.Attendance{}, proto.ErrEventNotFound
		}
		return models.Attendance{}, fmt.Errorf("add attendance: %w", err)
	}

	// The calendar write and the bookkeeping that follows must not be
	// abandoned halfway when the caller goes away.
	ctx = context.WithoutCancel(ctx)

	ref, err := c.mirror.Create(ctx, user, event)
	switch {
	case errors.Is(err, calendar.ErrNoAccessToken):
		c.logger.Debug("user has no calendar access, skipping mirror", "user", userID, "event", eventID)
		return a, nil
	case err != nil:
		if _, rerr := c.store.RemoveAttendance(ctx, c.db, userID, eventID); rerr != nil {
			c.logger.Error("failed to roll back attendance", "user", userID, "event", eventID, "err", db.WrapError(rerr))
		}
		c.logger.Warn("calendar create failed, attendance rolled back", "user", userID, "event", eventID, "err", err)
		return models.Attendance{}, err
	}

	if err := c.store.SetAttendanceExternalRef(ctx, c.db, userID, eventID, ref); err != nil {
		c.logger.Error("failed to store calendar reference", "user", userID, "event", eventID, "ref", ref, "err", db.WrapError(err))
		return a, nil
	}

	a.ExternalCalendarRef.String, a.ExternalCalendarRef.Valid = ref, true
	return a, nil
}

// Leave removes the user from the event and deletes the calendar entry
// created on attend, if any.
func (c *Coordinator) Leave(ctx context.Context, userID, eventID int64) (err error) {
	defer func() { observe("leave", err) }()

	user, _, err := c.load(ctx, userID, eventID)
	if err != nil {
		return err
	}

	ref, err := c.store.RemoveAttendance(ctx, c.db, userID, eventID)
	if err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrRecordNotFound) {
			return proto.ErrNotAttending
		}
		return fmt.Errorf("remove attendance: %w", err)
	}

	if !ref.Valid || ref.String == "" {
		return nil
	}

	if err := c.mirror.Delete(context.WithoutCancel(ctx), user, ref.String); err != nil {
		c.logger.Warn("calendar delete failed, entry left behind", "user", userID, "event", eventID, "ref", ref.String, "err", err)
	}

	return nil
}

// DeleteEvent deletes the event with its attendances and schedules the
// deletion of every calendar entry mirrored for it.
func (c *Coordinator) DeleteEvent(ctx context.Context, eventID int64) (event models.Event, err error) {
	defer func() { observe("delete", err) }()

	var removed []models.Attendance
	if err := c.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		event, removed, err = c.store.DeleteEventByID(ctx, tx, eventID)
		return err
	}); err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrRecordNotFound) {
			return models.Event{}, proto.ErrEventNotFound
		}
		return models.Event{}, fmt.Errorf("delete event: %w", err)
	}

	for _, a := range removed {
		if !a.ExternalCalendarRef.Valid || a.ExternalCalendarRef.String == "" {
			continue
		}
		user, err := c.store.GetUserByID(ctx, c.db, a.UserID)
		if err != nil {
			c.logger.Error("failed to load attendee", "user", a.UserID, "event", eventID, "err", db.WrapError(err))
			continue
		}
		c.scheduleDelete(user, eventID, a.ExternalCalendarRef.String)
	}

	return event, nil
}

func (c *Coordinator) scheduleDelete(user models.User, eventID int64, ref string) {
	id := fmt.Sprintf("calendar-delete-%d-%d", user.ID, eventID)
	c.manager.Add(id, func(ctx context.Context) error {
		return c.mirror.Delete(ctx, user, ref)
	})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		done := make(chan error, 1)
		c.manager.Run(id, done)
		if err := <-done; err != nil {
			c.logger.Warn("calendar delete failed, entry left behind", "user", user.ID, "event", eventID, "ref", ref, "err", err)
		}
	}()
}

// Wait blocks until the scheduled calendar deletions are done.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) load(ctx context.Context, userID, eventID int64) (models.User, models.Event, error) {
	user, err := c.store.GetUserByID(ctx, c.db, userID)
	if err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrRecordNotFound) {
			return models.User{}, models.Event{}, proto.ErrUserNotFound
		}
		return models.User{}, models.Event{}, fmt.Errorf("load user: %w", err)
	}

	event, err := c.store.GetEventByID(ctx, c.db, eventID)
	if err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrRecordNotFound) {
			return models.User{}, models.Event{}, proto.ErrEventNotFound
		}
		return models.User{}, models.Event{}, fmt.Errorf("load event: %w", err)
	}

	return user, event, nil
}
