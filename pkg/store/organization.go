package store

import (
	"context"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
)

// OrganizationStore is a store for organizations.
type OrganizationStore interface {
	// UpsertOrganization returns the organization with the given name,
	// creating it with orgType when it does not exist yet.
	UpsertOrganization(ctx context.Context, h db.Handler, name, orgType string) (models.Organization, error)
	CreateOrganization(ctx context.Context, h db.Handler, name, orgType string) (models.Organization, error)
	ListOrganizations(ctx context.Context, h db.Handler) ([]models.Organization, error)
	GetOrganizationByID(ctx context.Context, h db.Handler, id int64) (models.Organization, error)
	FindOrganizationByName(ctx context.Context, h db.Handler, name string) (models.Organization, error)
}
