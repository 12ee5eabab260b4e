package store

import (
	"context"
	"database/sql"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
)

// AttendanceStore is a store for the user to event attendance relation.
type AttendanceStore interface {
	// AddAttendance creates the edge. It fails with a duplicate key error
	// when the edge already exists.
	AddAttendance(ctx context.Context, h db.Handler, userID, eventID int64) (models.Attendance, error)
	SetAttendanceExternalRef(ctx context.Context, h db.Handler, userID, eventID int64, ref string) error
	// RemoveAttendance deletes the edge and returns its external calendar
	// reference. It fails with a not found error when the edge is absent.
	RemoveAttendance(ctx context.Context, h db.Handler, userID, eventID int64) (sql.NullString, error)
	GetAttendance(ctx context.Context, h db.Handler, userID, eventID int64) (models.Attendance, error)
	ListAttendancesByEvent(ctx context.Context, h db.Handler, eventID int64) ([]models.Attendance, error)
	ListAttendeesByEvent(ctx context.Context, h db.Handler, eventID int64) ([]models.User, error)
}
