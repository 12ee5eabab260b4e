package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
	"github.com/beartracks/beartracks/pkg/proto"
)

// Users returns all users.
func (d *Backend) Users(ctx context.Context) ([]proto.User, error) {
	users, err := d.store.ListUsers(ctx, d.db)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", db.WrapError(err))
	}

	views := make([]proto.User, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u))
	}
	return views, nil
}

// User returns the user with the given id.
func (d *Backend) User(ctx context.Context, id int64) (proto.User, error) {
	u, err := d.user(ctx, id)
	if err != nil {
		return proto.User{}, err
	}
	return userView(u), nil
}

func (d *Backend) user(ctx context.Context, id int64) (models.User, error) {
	u, err := d.store.GetUserByID(ctx, d.db, id)
	if err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrRecordNotFound) {
			return models.User{}, proto.ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Login resolves the Google account behind accessToken and records the
// user with the token. A refresh token, when given, enables calendar
// token refresh with the configured OAuth client.
func (d *Backend) Login(ctx context.Context, accessToken, refreshToken string) (proto.Login, error) {
	if strings.TrimSpace(accessToken) == "" {
		return proto.Login{}, proto.NewValidationError("access_token", "Access token is required")
	}

	id, err := d.identity.Resolve(ctx, accessToken)
	if err != nil {
		return proto.Login{}, err
	}

	material := models.AuthMaterial{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenURI:     d.cfg.Calendar.TokenURI,
		ClientID:     d.cfg.Calendar.ClientID,
		ClientSecret: d.cfg.Calendar.ClientSecret,
		Scopes:       d.cfg.Calendar.Scopes,
	}

	u, err := d.store.UpsertUser(ctx, d.db, id.GoogleUserID, material, id.Name)
	if err != nil {
		return proto.Login{}, fmt.Errorf("upsert user: %w", db.WrapError(err))
	}

	d.logger.Info("user logged in", "user", u.ID, "refreshable", u.AuthMaterial().CanRefresh())
	return proto.Login{Message: "User logged in", UserID: u.ID, GoogleUserID: u.GoogleUserID}, nil
}
