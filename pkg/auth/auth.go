// Package auth resolves Google access tokens to user identities.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/beartracks/beartracks/pkg/config"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	// ErrInvalidToken is returned when Google rejects the access token.
	ErrInvalidToken = errors.New("access token rejected by identity provider")
	// ErrUnavailable is returned when the identity provider cannot be
	// reached or fails.
	ErrUnavailable = errors.New("identity provider unavailable")
)

// Identity is a Google account.
type Identity struct {
	GoogleUserID string
	Name         string
	Email        string
}

// Resolver looks up the Google account behind an access token.
type Resolver struct {
	cfg config.CalendarConfig
}

// NewResolver returns a new Resolver.
func NewResolver(cfg config.CalendarConfig) *Resolver {
	if cfg.UserinfoEndpoint != "" && !strings.HasSuffix(cfg.UserinfoEndpoint, "/") {
		cfg.UserinfoEndpoint += "/"
	}
	return &Resolver{cfg: cfg}
}

// Resolve returns the identity that owns accessToken.
func (r *Resolver) Resolve(ctx context.Context, accessToken string) (Identity, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: accessToken,
			TokenType:   "Bearer",
		}))),
	}
	if r.cfg.UserinfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(r.cfg.UserinfoEndpoint))
	}

	svc, err := goauth2.NewService(ctx, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code < http.StatusInternalServerError && gerr.Code != http.StatusTooManyRequests {
			return Identity{}, fmt.Errorf("%w: status %d", ErrInvalidToken, gerr.Code)
		}
		return Identity{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if info.Id == "" {
		return Identity{}, fmt.Errorf("%w: userinfo without an id", ErrInvalidToken)
	}

	name := info.Name
	if name == "" {
		name = "Unknown"
	}

	return Identity{GoogleUserID: info.Id, Name: name, Email: info.Email}, nil
}
