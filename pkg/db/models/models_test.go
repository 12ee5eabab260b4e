package models

import (
	"database/sql"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestEventStartEnd(t *testing.T) {
	is := is.New(t)
	e := Event{StartDate: "2024-04-12", StartTime: "18:00:00"}

	start, err := e.Start()
	is.NoErr(err)
	is.Equal(start, time.Date(2024, 4, 12, 18, 0, 0, 0, time.UTC))

	_, ok, err := e.End()
	is.NoErr(err)
	is.True(!ok) // no end stored

	e.EndDate = sql.NullString{String: "2024-04-12", Valid: true}
	e.EndTime = sql.NullString{String: "20:30:00", Valid: true}
	end, ok, err := e.End()
	is.NoErr(err)
	is.True(ok)
	is.Equal(end, time.Date(2024, 4, 12, 20, 30, 0, 0, time.UTC))
}

func TestAuthMaterial(t *testing.T) {
	is := is.New(t)
	u := User{
		AccessToken:  sql.NullString{String: "at", Valid: true},
		TokenURI:     "https://oauth2.googleapis.com/token",
		ClientID:     "cid",
		ClientSecret: "secret",
		Scopes:       "a,b",
	}
	m := u.AuthMaterial()
	is.Equal(m.AccessToken, "at")
	is.Equal(m.Scopes, []string{"a", "b"})
	is.Equal(m.JoinedScopes(), "a,b")
	is.True(!m.CanRefresh()) // no refresh token

	u.RefreshToken = sql.NullString{String: "rt", Valid: true}
	is.True(u.AuthMaterial().CanRefresh())

	is.Equal(User{}.AuthMaterial().Scopes, []string(nil))
}
