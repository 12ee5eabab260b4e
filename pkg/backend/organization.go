package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/proto"
)

// Organizations returns all organizations with their events.
func (d *Backend) Organizations(ctx context.Context) ([]proto.Organization, error) {
	orgs, err := d.store.ListOrganizations(ctx, d.db)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", db.WrapError(err))
	}

	views := make([]proto.Organization, 0, len(orgs))
	for _, o := range orgs {
		events, err := d.store.ListEventsByOrganization(ctx, d.db, o.ID)
		if err != nil {
			return nil, fmt.Errorf("list organization events: %w", db.WrapError(err))
		}
		ev, err := d.eventViews(ctx, events)
		if err != nil {
			return nil, err
		}
		views = append(views, proto.Organization{
			OrganizationSummary: organizationSummary(o),
			Events:              ev,
		})
	}

	return views, nil
}

// CreateOrganization adds an organization. Names are unique.
func (d *Backend) CreateOrganization(ctx context.Context, in proto.OrganizationInput) (proto.Organization, error) {
	if strings.TrimSpace(in.Name) == "" {
		return proto.Organization{}, proto.NewValidationError("name", "Missing required field: name")
	}
	if strings.TrimSpace(in.OrgType) == "" {
		return proto.Organization{}, proto.NewValidationError("org_type", "Missing required field: org_type")
	}

	o, err := d.store.CreateOrganization(ctx, d.db, in.Name, in.OrgType)
	if err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrDuplicateKey) {
			return proto.Organization{}, proto.ErrOrganizationExists
		}
		return proto.Organization{}, fmt.Errorf("create organization: %w", err)
	}

	return proto.Organization{
		OrganizationSummary: organizationSummary(o),
		Events:              []proto.Event{},
	}, nil
}
