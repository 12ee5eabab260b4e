package store

import (
	"context"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
)

// UserStore is an interface for managing users.
type UserStore interface {
	// UpsertUser creates or updates the user with the given Google user id.
	// An empty refresh token keeps the stored one.
	UpsertUser(ctx context.Context, h db.Handler, googleUserID string, material models.AuthMaterial, name string) (models.User, error)
	UpdateUserTokens(ctx context.Context, h db.Handler, id int64, material models.AuthMaterial) error
	GetUserByID(ctx context.Context, h db.Handler, id int64) (models.User, error)
	FindUserByGoogleID(ctx context.Context, h db.Handler, googleUserID string) (models.User, error)
	ListUsers(ctx context.Context, h db.Handler) ([]models.User, error)
}
