package database

import (
	"context"
	"database/sql"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
	"github.com/beartracks/beartracks/pkg/store"
)

type attendanceStore struct{}

var _ store.AttendanceStore = (*attendanceStore)(nil)

// AddAttendance implements store.AttendanceStore.
func (s *attendanceStore) AddAttendance(ctx context.Context, h db.Handler, userID, eventID int64) (models.Attendance, error) {
	query := h.Rebind(`INSERT INTO attendances (user_id, event_id) VALUES (?, ?);`)
	if _, err := h.ExecContext(ctx, query, userID, eventID); err != nil {
		return models.Attendance{}, err //nolint:wrapcheck
	}
	return s.GetAttendance(ctx, h, userID, eventID)
}

// SetAttendanceExternalRef implements store.AttendanceStore.
func (*attendanceStore) SetAttendanceExternalRef(ctx context.Context, h db.Handler, userID, eventID int64, ref string) error {
	query := h.Rebind(`UPDATE attendances SET external_calendar_ref = ?
			WHERE user_id = ? AND event_id = ?;`)
	res, err := h.ExecContext(ctx, query, nullString(ref), userID, eventID)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return db.ErrRecordNotFound
	}
	return nil
}

// RemoveAttendance implements store.AttendanceStore.
func (*attendanceStore) RemoveAttendance(ctx context.Context, h db.Handler, userID, eventID int64) (sql.NullString, error) {
	var ref sql.NullString
	query := h.Rebind(`DELETE FROM attendances WHERE user_id = ? AND event_id = ?
			RETURNING external_calendar_ref;`)
	err := h.GetContext(ctx, &ref, query, userID, eventID)
	return ref, err //nolint:wrapcheck
}

// GetAttendance implements store.AttendanceStore.
func (*attendanceStore) GetAttendance(ctx context.Context, h db.Handler, userID, eventID int64) (models.Attendance, error) {
	var m models.Attendance
	query := h.Rebind(`SELECT * FROM attendances WHERE user_id = ? AND event_id = ?;`)
	err := h.GetContext(ctx, &m, query, userID, eventID)
	return m, err //nolint:wrapcheck
}

// ListAttendancesByEvent implements store.AttendanceStore.
func (*attendanceStore) ListAttendancesByEvent(ctx context.Context, h db.Handler, eventID int64) ([]models.Attendance, error) {
	var ms []models.Attendance
	query := h.Rebind(`SELECT * FROM attendances WHERE event_id = ? ORDER BY user_id ASC;`)
	err := h.SelectContext(ctx, &ms, query, eventID)
	return ms, err //nolint:wrapcheck
}

// ListAttendeesByEvent implements store.AttendanceStore.
func (*attendanceStore) ListAttendeesByEvent(ctx context.Context, h db.Handler, eventID int64) ([]models.User, error) {
	var ms []models.User
	query := h.Rebind(`SELECT users.*
			FROM users
			INNER JOIN attendances ON users.id = attendances.user_id
			WHERE attendances.event_id = ?
			ORDER BY users.id ASC;`)
	err := h.SelectContext(ctx, &ms, query, eventID)
	return ms, err //nolint:wrapcheck
}
