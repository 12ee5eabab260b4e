package backend

import (
	"context"

	"github.com/beartracks/beartracks/pkg/proto"
)

// Attend makes the user attend the event. It returns the user.
func (d *Backend) Attend(ctx context.Context, userID, eventID int64) (proto.User, error) {
	if _, err := d.rsvp.Attend(ctx, userID, eventID); err != nil {
		return proto.User{}, err
	}
	return d.User(ctx, userID)
}

// Leave removes the user from the event. It returns the user.
func (d *Backend) Leave(ctx context.Context, userID, eventID int64) (proto.User, error) {
	if err := d.rsvp.Leave(ctx, userID, eventID); err != nil {
		return proto.User{}, err
	}
	return d.User(ctx, userID)
}
