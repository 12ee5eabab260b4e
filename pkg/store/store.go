// Package store defines the catalog persistence interfaces.
package store

// Store is an interface for managing organizations, events, users and
// attendances.
type Store interface {
	OrganizationStore
	EventStore
	UserStore
	AttendanceStore
}
