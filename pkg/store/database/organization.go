package database

import (
	"context"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
	"github.com/beartracks/beartracks/pkg/store"
)

type organizationStore struct{}

var _ store.OrganizationStore = (*organizationStore)(nil)

// UpsertOrganization implements store.OrganizationStore.
func (s *organizationStore) UpsertOrganization(ctx context.Context, h db.Handler, name, orgType string) (models.Organization, error) {
	if orgType == "" {
		orgType = models.DefaultOrgType
	}

	query := h.Rebind(`INSERT INTO organizations (name, org_type, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (name) DO NOTHING;`)
	if _, err := h.ExecContext(ctx, query, name, orgType); err != nil {
		return models.Organization{}, err //nolint:wrapcheck
	}

	return s.FindOrganizationByName(ctx, h, name)
}

// CreateOrganization implements store.OrganizationStore.
func (s *organizationStore) CreateOrganization(ctx context.Context, h db.Handler, name, orgType string) (models.Organization, error) {
	var id int64
	query := h.Rebind(`INSERT INTO organizations (name, org_type, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP) RETURNING id;`)
	if err := h.GetContext(ctx, &id, query, name, orgType); err != nil {
		return models.Organization{}, err //nolint:wrapcheck
	}
	return s.GetOrganizationByID(ctx, h, id)
}

// ListOrganizations implements store.OrganizationStore.
func (*organizationStore) ListOrganizations(ctx context.Context, h db.Handler) ([]models.Organization, error) {
	var ms []models.Organization
	query := h.Rebind(`SELECT * FROM organizations ORDER BY id ASC;`)
	err := h.SelectContext(ctx, &ms, query)
	return ms, err //nolint:wrapcheck
}

// GetOrganizationByID implements store.OrganizationStore.
func (*organizationStore) GetOrganizationByID(ctx context.Context, h db.Handler, id int64) (models.Organization, error) {
	var m models.Organization
	query := h.Rebind(`SELECT * FROM organizations WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// FindOrganizationByName implements store.OrganizationStore.
func (*organizationStore) FindOrganizationByName(ctx context.Context, h db.Handler, name string) (models.Organization, error) {
	var m models.Organization
	query := h.Rebind(`SELECT * FROM organizations WHERE name = ?;`)
	err := h.GetContext(ctx, &m, query, name)
	return m, err //nolint:wrapcheck
}
