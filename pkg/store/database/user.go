package database

import (
	"context"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
	"github.com/beartracks/beartracks/pkg/store"
)

type userStore struct{}

var _ store.UserStore = (*userStore)(nil)

// UpsertUser implements store.UserStore.
func (s *userStore) UpsertUser(ctx context.Context, h db.Handler, googleUserID string, material models.AuthMaterial, name string) (models.User, error) {
	var id int64
	query := h.Rebind(`INSERT INTO users (google_user_id, name, access_token, refresh_token,
				token_uri, client_id, client_secret, scopes, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (google_user_id) DO UPDATE SET
				name = excluded.name,
				access_token = excluded.access_token,
				refresh_token = COALESCE(excluded.refresh_token, users.refresh_token),
				token_uri = excluded.token_uri,
				client_id = excluded.client_id,
				client_secret = excluded.client_secret,
				scopes = excluded.scopes,
				updated_at = CURRENT_TIMESTAMP
			RETURNING id;`)
	if err := h.GetContext(ctx, &id, query,
		googleUserID, name, nullString(material.AccessToken), nullString(material.RefreshToken),
		material.TokenURI, material.ClientID, material.ClientSecret, material.JoinedScopes()); err != nil {
		return models.User{}, err //nolint:wrapcheck
	}
	return s.GetUserByID(ctx, h, id)
}

// UpdateUserTokens implements store.UserStore.
func (*userStore) UpdateUserTokens(ctx context.Context, h db.Handler, id int64, material models.AuthMaterial) error {
	query := h.Rebind(`UPDATE users SET
				access_token = ?,
				refresh_token = COALESCE(?, refresh_token),
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?;`)
	res, err := h.ExecContext(ctx, query, nullString(material.AccessToken), nullString(material.RefreshToken), id)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return db.ErrRecordNotFound
	}
	return nil
}

// GetUserByID implements store.UserStore.
func (*userStore) GetUserByID(ctx context.Context, h db.Handler, id int64) (models.User, error) {
	var m models.User
	query := h.Rebind(`SELECT * FROM users WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// FindUserByGoogleID implements store.UserStore.
func (*userStore) FindUserByGoogleID(ctx context.Context, h db.Handler, googleUserID string) (models.User, error) {
	var m models.User
	query := h.Rebind(`SELECT * FROM users WHERE google_user_id = ?;`)
	err := h.GetContext(ctx, &m, query, googleUserID)
	return m, err //nolint:wrapcheck
}

// ListUsers implements store.UserStore.
func (*userStore) ListUsers(ctx context.Context, h db.Handler) ([]models.User, error) {
	var ms []models.User
	query := h.Rebind(`SELECT * FROM users ORDER BY id ASC;`)
	err := h.SelectContext(ctx, &ms, query)
	return ms, err //nolint:wrapcheck
}
