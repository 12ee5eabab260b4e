package models

import "time"

// DefaultOrgType is the type given to organizations created by ingestion.
const DefaultOrgType = "Unknown"

// Organization represents a campus organization that hosts events.
type Organization struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	OrgType   string    `db:"org_type"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
