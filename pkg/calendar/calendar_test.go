package calendar

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/beartracks/beartracks/pkg/config"
	"github.com/beartracks/beartracks/pkg/db/models"
	"github.com/beartracks/beartracks/pkg/test"
	"github.com/matryer/is"
)

// fakeGoogle stands in for the Calendar API and the OAuth token endpoint.
type fakeGoogle struct {
	validToken   string
	insertStatus int
	deleteStatus int
	tokenStatus  int
	delay        time.Duration

	calls   atomic.Int32
	refresh atomic.Int32
	last    atomic.Pointer[map[string]any]
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/token" {
		f.refresh.Add(1)
		if f.tokenStatus != 0 {
			http.Error(w, `{"error":"invalid_grant"}`, f.tokenStatus)
			return
		}
		r.ParseForm() //nolint:errcheck
		if r.PostForm.Get("refresh_token") != "rt" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`)) //nolint:errcheck
		return
	}

	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if r.Header.Get("Authorization") != "Bearer "+f.validToken {
		writeError(w, http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/calendars/primary/events":
		if f.insertStatus != 0 {
			writeError(w, f.insertStatus)
			return
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		f.last.Store(&body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"gcal-1"}`)) //nolint:errcheck
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/calendars/primary/events/"):
		if f.deleteStatus != 0 {
			writeError(w, f.deleteStatus)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusNotFound)
	}
}

func writeError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"error":{"code":` + strconv.Itoa(code) + `,"message":"` + http.StatusText(code) + `"}}`)) //nolint:errcheck
}

type fixture struct {
	ctx    context.Context
	mirror *Mirror
	fake   *fakeGoogle
	url    string
	user   func(tb testing.TB, m models.AuthMaterial) models.User
	reload func(tb testing.TB, id int64) models.User
}

func setup(t *testing.T, fake *fakeGoogle, timeout time.Duration) fixture {
	t.Helper()
	ctx := context.TODO()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	dbx, st := test.Catalog(ctx, t)
	m := NewMirror(ctx, config.CalendarConfig{
		CalendarID: "primary",
		Endpoint:   srv.URL,
		Timeout:    timeout,
	}, dbx, st)

	return fixture{
		ctx:    ctx,
		mirror: m,
		fake:   fake,
		url:    srv.URL,
		user: func(tb testing.TB, am models.AuthMaterial) models.User {
			u, err := st.UpsertUser(ctx, dbx, "g-1", am, "Touchdown")
			if err != nil {
				tb.Fatal(err)
			}
			return u
		},
		reload: func(tb testing.TB, id int64) models.User {
			u, err := st.GetUserByID(ctx, dbx, id)
			if err != nil {
				tb.Fatal(err)
			}
			return u
		},
	}
}

func (f fixture) refreshable(access string) models.AuthMaterial {
	return models.AuthMaterial{
		AccessToken:  access,
		RefreshToken: "rt",
		TokenURI:     f.url + "/token",
		ClientID:     "cid",
		ClientSecret: "secret",
		Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
	}
}

var event = models.Event{
	ID:          7,
	Name:        "Bear Meet",
	StartDate:   "2025-01-06",
	StartTime:   "17:00:00",
	Location:    "Statler",
	Description: "Come!",
}

func TestCreate(t *testing.T) {
	is := is.New(t)
	f := setup(t, &fakeGoogle{validToken: "good"}, 5*time.Second)
	u := f.user(t, models.AuthMaterial{AccessToken: "good"})

	ref, err := f.mirror.Create(f.ctx, u, event)
	is.NoErr(err)
	is.Equal(ref, "gcal-1")

	body := *f.fake.last.Load()
	is.Equal(body["summary"], "Bear Meet")
	is.Equal(body["location"], "Statler")
	start := body["start"].(map[string]any)
	end := body["end"].(map[string]any)
	is.Equal(start["dateTime"], "2025-01-06T17:00:00")
	is.Equal(start["timeZone"], "UTC")
	is.Equal(end["dateTime"], "2025-01-06T18:00:00") // default one hour
}

func TestCreateWithEnd(t *testing.T) {
	is := is.New(t)
	f := setup(t, &fakeGoogle{validToken: "good"}, 5*time.Second)
	u := f.user(t, models.AuthMaterial{AccessToken: "good"})

	e := event
	e.EndDate = sql.NullString{String: "2025-01-06", Valid: true}
	e.EndTime = sql.NullString{String: "19:30:00", Valid: true}
	_, err := f.mirror.Create(f.ctx, u, e)
	is.NoErr(err)
	end := (*f.fake.last.Load())["end"].(map[string]any)
	is.Equal(end["dateTime"], "2025-01-06T19:30:00")
}

func TestCreateNoAccessToken(t *testing.T) {
	is := is.New(t)
	f := setup(t, &fakeGoogle{validToken: "good"}, 5*time.Second)
	u := f.user(t, models.AuthMaterial{})

	_, err := f.mirror.Create(f.ctx, u, event)
	is.True(errors.Is(err, ErrNoAccessToken))
	is.Equal(f.fake.calls.Load(), int32(0)) // no provider call
}

func TestCreateUnauthorizedWithoutRefresh(t *testing.T) {
	is := is.New(t)
	f := setup(t, &fakeGoogle{validToken: "good"}, 5*time.Second)
	u := f.user(t, models.AuthMaterial{AccessToken: "expired", RefreshToken: "rt"})

	_, err := f.mirror.Create(f.ctx, u, event)
	is.True(errors.Is(err, ErrPermanent))
	var perr *ProviderError
	is.True(errors.As(err, &perr))
	is.Equal(perr.Code, http.StatusUnauthorized)
	is.Equal(f.fake.refresh.Load(), int32(0))
}

func TestCreateRefreshesToken(t *testing.T) {
	is := is.New(t)
	f := setup(t, &fakeGoogle{validToken: "fresh"}, 5*time.Second)
	u := f.user(t, f.refreshable("expired"))

	ref, err := f.mirror.Create(f.ctx, u, event)
	is.NoErr(err)
	is.Equal(ref, "gcal-1")
	is.Equal(f.fake.refresh.Load(), int32(1))
	is.Equal(f.fake.calls.Load(), int32(2)) // original call and one retry

	saved := f.reload(t, u.ID)
	is.Equal(saved.AccessToken.String, "fresh")
	is.Equal(saved.RefreshToken.String, "rt") // not rotated, kept
}

func TestCreateUnauthorizedAfterRefresh(t *testing.T) {
	is := is.New(t)
	f := setup(t, &fakeGoogle{validToken: "something-else"}, 5*time.Second)
	u := f.user(t, f.refreshable("expired"))

	_, err := f.mirror.Create(f.ctx, u, event)
	is.True(errors.Is(err, ErrPermanent))
	is.Equal(f.fake.calls.Load(), int32(2)) // retried once only
}

func TestCreateRefreshFailures(t *testing.T) {
	for name, tc := range map[string]struct {
		status int
		want   error
	}{
		"rejected":    {http.StatusBadRequest, ErrPermanent},
		"unavailable": {http.StatusServiceUnavailable, ErrTransient},
	} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			f := setup(t, &fakeGoogle{validToken: "fresh", tokenStatus: tc.status}, 5*time.Second)
			u := f.user(t, f.refreshable("expired"))

			_, err := f.mirror.Create(f.ctx, u, event)
			is.True(errors.Is(err, tc.want))
			is.Equal(f.reload(t, u.ID).AccessToken.String, "expired") // nothing saved
		})
	}
}

func TestCreateProviderStatus(t *testing.T) {
	for name, tc := range map[string]struct {
		status int
		want   error
	}{
		"forbidden":   {http.StatusForbidden, ErrPermanent},
		"bad request": {http.StatusBadRequest, ErrPermanent},
		"rate limit":  {http.StatusTooManyRequests, ErrTransient},
		"server":      {http.StatusInternalServerError, ErrTransient},
		"unavailable": {http.StatusServiceUnavailable, ErrTransient},
	} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			f := setup(t, &fakeGoogle{validToken: "good", insertStatus: tc.status}, 5*time.Second)
			u := f.user(t, models.AuthMaterial{AccessToken: "good"})

			_, err := f.mirror.Create(f.ctx, u, event)
			is.True(errors.Is(err, tc.want))
			var perr *ProviderError
			is.True(errors.As(err, &perr))
			is.Equal(perr.Code, tc.status)
		})
	}
}

func TestCreateTimeout(t *testing.T) {
	is := is.New(t)
	f := setup(t, &fakeGoogle{validToken: "good", delay: 200 * time.Millisecond}, 20*time.Millisecond)
	u := f.user(t, models.AuthMaterial{AccessToken: "good"})

	_, err := f.mirror.Create(f.ctx, u, event)
	is.True(errors.Is(err, ErrTransient))
}

func TestDelete(t *testing.T) {
	is := is.New(t)
	f := setup(t, &fakeGoogle{validToken: "good"}, 5*time.Second)
	u := f.user(t, models.AuthMaterial{AccessToken: "good"})
	is.NoErr(f.mirror.Delete(f.ctx, u, "gcal-1"))
}

func TestDeleteAlreadyGone(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusGone} {
		is := is.New(t)
		f := setup(t, &fakeGoogle{validToken: "good", deleteStatus: status}, 5*time.Second)
		u := f.user(t, models.AuthMaterial{AccessToken: "good"})
		is.NoErr(f.mirror.Delete(f.ctx, u, "gcal-1"))
	}
}

func TestDeleteFailure(t *testing.T) {
	is := is.New(t)
	f := setup(t, &fakeGoogle{validToken: "good", deleteStatus: http.StatusBadGateway}, 5*time.Second)
	u := f.user(t, models.AuthMaterial{AccessToken: "good"})
	is.True(errors.Is(f.mirror.Delete(f.ctx, u, "gcal-1"), ErrTransient))
}

func TestProviderErrorIs(t *testing.T) {
	is := is.New(t)
	err := transient("create", 503, errors.New("boom"))
	is.True(errors.Is(err, ErrTransient))
	is.True(!errors.Is(err, ErrPermanent))
	is.Equal(err.Error(), "calendar create: transient failure (status 503): boom")

	perr := permanent("delete", 0, errors.New("nope"))
	is.True(errors.Is(perr, ErrPermanent))
	is.Equal(perr.Error(), "calendar delete: permanent failure: nope")
}
