package models

import (
	"database/sql"
	"strings"
	"time"
)

// User represents a user authenticated through Google.
type User struct {
	ID           int64          `db:"id"`
	GoogleUserID string         `db:"google_user_id"`
	Name         string         `db:"name"`
	AccessToken  sql.NullString `db:"access_token"`
	RefreshToken sql.NullString `db:"refresh_token"`
	TokenURI     string         `db:"token_uri"`
	ClientID     string         `db:"client_id"`
	ClientSecret string         `db:"client_secret"`
	Scopes       string         `db:"scopes"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// AuthMaterial returns the credentials stored for the user.
func (u User) AuthMaterial() AuthMaterial {
	var scopes []string
	if u.Scopes != "" {
		scopes = strings.Split(u.Scopes, ",")
	}
	return AuthMaterial{
		AccessToken:  u.AccessToken.String,
		RefreshToken: u.RefreshToken.String,
		TokenURI:     u.TokenURI,
		ClientID:     u.ClientID,
		ClientSecret: u.ClientSecret,
		Scopes:       scopes,
	}
}

// AuthMaterial is the set of OAuth credentials used to act on a user's
// calendar.
type AuthMaterial struct {
	AccessToken  string
	RefreshToken string
	TokenURI     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// CanRefresh reports whether the material carries everything needed to
// obtain a new access token.
func (m AuthMaterial) CanRefresh() bool {
	return m.RefreshToken != "" && m.TokenURI != "" && m.ClientID != "" && m.ClientSecret != ""
}

// JoinedScopes returns the scopes in their stored form.
func (m AuthMaterial) JoinedScopes() string {
	return strings.Join(m.Scopes, ",")
}
