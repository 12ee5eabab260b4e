package backend

import (
	"context"
	"fmt"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
	"github.com/beartracks/beartracks/pkg/proto"
)

func userView(u models.User) proto.User {
	return proto.User{ID: u.ID, GoogleUserID: u.GoogleUserID, Name: u.Name}
}

func organizationSummary(o models.Organization) proto.OrganizationSummary {
	return proto.OrganizationSummary{ID: o.ID, Name: o.Name, OrgType: o.OrgType}
}

func nullable(s string, ok bool) *string {
	if !ok || s == "" {
		return nil
	}
	return &s
}

// eventViews renders events with their organization and attendees.
// Organizations are looked up once per call.
func (d *Backend) eventViews(ctx context.Context, events []models.Event) ([]proto.Event, error) {
	orgs := make(map[int64]*proto.OrganizationSummary)
	views := make([]proto.Event, 0, len(events))
	for _, e := range events {
		org, ok := orgs[e.OrganizationID]
		if !ok {
			o, err := d.store.GetOrganizationByID(ctx, d.db, e.OrganizationID)
			if err != nil {
				return nil, fmt.Errorf("load organization: %w", db.WrapError(err))
			}
			s := organizationSummary(o)
			org = &s
			orgs[e.OrganizationID] = org
		}

		attendees, err := d.store.ListAttendeesByEvent(ctx, d.db, e.ID)
		if err != nil {
			return nil, fmt.Errorf("load attendees: %w", db.WrapError(err))
		}

		views = append(views, eventView(e, org, attendees))
	}
	return views, nil
}

func eventView(e models.Event, org *proto.OrganizationSummary, attendees []models.User) proto.Event {
	v := proto.Event{
		ID:           e.ID,
		Name:         e.Name,
		StartDate:    e.StartDate,
		StartTime:    e.StartTime,
		EndDate:      nullable(e.EndDate.String, e.EndDate.Valid),
		EndTime:      nullable(e.EndTime.String, e.EndTime.Valid),
		Location:     e.Location,
		Description:  e.Description,
		EventURL:     nullable(e.EventURL, true),
		Organization: org,
		Attendees:    make([]proto.User, 0, len(attendees)),
	}
	for _, u := range attendees {
		v.Attendees = append(v.Attendees, userView(u))
	}
	return v
}
