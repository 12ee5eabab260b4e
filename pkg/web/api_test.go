package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beartracks/beartracks/pkg/auth"
	"github.com/beartracks/beartracks/pkg/backend"
	"github.com/beartracks/beartracks/pkg/calendar"
	"github.com/beartracks/beartracks/pkg/config"
	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/feed"
	"github.com/beartracks/beartracks/pkg/proto"
	"github.com/beartracks/beartracks/pkg/store"
	"github.com/beartracks/beartracks/pkg/test"
	"github.com/charmbracelet/log"
	"github.com/matryer/is"
)

const feedBody = `[{"p0": 7, "p3": "Bear Meet", "p4": "Mon, Jan 6, 2025 5:00 PM &ndash; Mon, Jan 6, 2025 7:00 PM", "p9": "BearClub", "p6": "Statler"}]`

func setup(t *testing.T) http.Handler {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed":
			w.Write([]byte(feedBody)) //nolint:errcheck
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/oauth2/v2/userinfo":
			w.Write([]byte(`{"id":"g-1","name":"Touchdown"}`)) //nolint:errcheck
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(upstream.Close)

	cfg := config.DefaultConfig()
	cfg.Feed.URL = upstream.URL + "/feed"
	if strings.Contains(t.Name(), "FeedFailure") {
		cfg.Feed.URL = upstream.URL + "/broken"
	}
	cfg.Calendar.Endpoint = upstream.URL
	cfg.Calendar.UserinfoEndpoint = upstream.URL

	ctx := log.WithContext(context.TODO(), log.New(&strings.Builder{}))
	dbx, st := test.Catalog(ctx, t)
	ctx = config.WithContext(ctx, cfg)
	ctx = db.WithContext(ctx, dbx)
	ctx = store.WithContext(ctx, st)
	ctx = backend.WithContext(ctx, backend.New(ctx, cfg, dbx, st))
	return NewRouter(ctx)
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var v map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("%s %s: invalid json %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, v
}

func TestHealth(t *testing.T) {
	is := is.New(t)
	h := setup(t)
	code, _ := do(t, h, http.MethodGet, "/livez", "")
	is.Equal(code, http.StatusOK)
	code, _ = do(t, h, http.MethodGet, "/readyz", "")
	is.Equal(code, http.StatusOK)
}

func TestEventsFlow(t *testing.T) {
	is := is.New(t)
	h := setup(t)

	code, body := do(t, h, http.MethodPost, "/events/fetch/", "")
	is.Equal(code, http.StatusOK)
	is.Equal(body["events_ingested"], float64(1))

	// Both spellings of a path are served.
	for _, path := range []string{"/events", "/events/"} {
		code, body = do(t, h, http.MethodGet, path, "")
		is.Equal(code, http.StatusOK)
		is.Equal(len(body["events"].([]any)), 1)
	}

	event := body["events"].([]any)[0].(map[string]any)
	is.Equal(event["name"], "Bear Meet")
	is.Equal(event["event_url"], nil)
	is.Equal(event["organization"].(map[string]any)["name"], "BearClub")
	id := int64(event["id"].(float64))

	code, body = do(t, h, http.MethodGet, "/events/date/2025-01-06", "")
	is.Equal(code, http.StatusOK)
	is.Equal(len(body["events"].([]any)), 1)

	code, _ = do(t, h, http.MethodGet, "/events/date/2025-01-07/", "")
	is.Equal(code, http.StatusNotFound)

	code, body = do(t, h, http.MethodGet, "/events/date/06-01-2025", "")
	is.Equal(code, http.StatusBadRequest)
	is.Equal(body["error"], "Invalid date format. Use YYYY-MM-DD")

	code, _ = do(t, h, http.MethodGet, fmt.Sprintf("/events/%d", id), "")
	is.Equal(code, http.StatusOK)

	code, body = do(t, h, http.MethodPost, "/login/mobile", `{"access_token": "at"}`)
	is.Equal(code, http.StatusOK)
	userID := int64(body["user_id"].(float64))

	code, body = do(t, h, http.MethodGet, fmt.Sprintf("/users/%d/", userID), "")
	is.Equal(code, http.StatusOK)
	is.Equal(body["name"], "Touchdown")

	code, _ = do(t, h, http.MethodGet, "/users", "")
	is.Equal(code, http.StatusOK)

	code, _ = do(t, h, http.MethodGet, "/users/999", "")
	is.Equal(code, http.StatusNotFound)

	code, _ = do(t, h, http.MethodPost, fmt.Sprintf("/events/%d/add", id), `{}`)
	is.Equal(code, http.StatusBadRequest)

	code, _ = do(t, h, http.MethodPost, fmt.Sprintf("/events/%d/add", id), `{"user_id": 999}`)
	is.Equal(code, http.StatusNotFound)

	code, _ = do(t, h, http.MethodPost, fmt.Sprintf("/events/%d/remove/", id), fmt.Sprintf(`{"user_id": %d}`, userID))
	is.Equal(code, http.StatusBadRequest)

	code, _ = do(t, h, http.MethodDelete, fmt.Sprintf("/events/%d/", id), "")
	is.Equal(code, http.StatusOK)

	code, _ = do(t, h, http.MethodGet, fmt.Sprintf("/events/%d", id), "")
	is.Equal(code, http.StatusNotFound)
}

func TestOrganizationsAndEvents(t *testing.T) {
	is := is.New(t)
	h := setup(t)

	code, _ := do(t, h, http.MethodPost, "/organizations", `{"name": "Glee"}`)
	is.Equal(code, http.StatusBadRequest)

	code, body := do(t, h, http.MethodPost, "/organizations/", `{"name": "Glee", "org_type": "Music"}`)
	is.Equal(code, http.StatusCreated)
	is.Equal(body["org_type"], "Music")

	code, _ = do(t, h, http.MethodPost, "/organizations", `{"name": "Glee", "org_type": "Music"}`)
	is.Equal(code, http.StatusConflict)

	event := `{"name": "Concert", "start_date": "2025-03-01", "start_time": "18:00:00",
		"end_date": "2025-03-01", "end_time": "20:00:00", "location": "Bailey",
		"description": "", "organization": "%s"}`
	code, body = do(t, h, http.MethodPost, "/events", fmt.Sprintf(event, "Glee"))
	is.Equal(code, http.StatusCreated)
	is.Equal(body["end_time"], "20:00:00")

	code, _ = do(t, h, http.MethodPost, "/events", fmt.Sprintf(event, "Nobody"))
	is.Equal(code, http.StatusNotFound)

	code, _ = do(t, h, http.MethodPost, "/events", `not json`)
	is.Equal(code, http.StatusBadRequest)

	code, body = do(t, h, http.MethodGet, "/organizations", "")
	is.Equal(code, http.StatusOK)
	orgs := body["organizations"].([]any)
	is.Equal(len(orgs), 1)
	is.Equal(len(orgs[0].(map[string]any)["events"].([]any)), 1)
}

func TestFeedFailure(t *testing.T) {
	is := is.New(t)
	h := setup(t)
	code, body := do(t, h, http.MethodPost, "/events/fetch", "")
	is.Equal(code, http.StatusBadGateway)
	is.Equal(body["error"], "Failed to fetch events")
}

func TestLoginMissingToken(t *testing.T) {
	is := is.New(t)
	h := setup(t)
	code, body := do(t, h, http.MethodPost, "/login/mobile/", `{}`)
	is.Equal(code, http.StatusBadRequest)
	is.Equal(body["error"], "Access token is required")
}

func TestNotFoundAndMethod(t *testing.T) {
	is := is.New(t)
	h := setup(t)
	code, _ := do(t, h, http.MethodGet, "/nope", "")
	is.Equal(code, http.StatusNotFound)
	code, _ = do(t, h, http.MethodPut, "/events", "")
	is.Equal(code, http.StatusMethodNotAllowed)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{proto.NewValidationError("name", "missing"), http.StatusBadRequest},
		{proto.ErrUserNotFound, http.StatusNotFound},
		{proto.ErrEventNotFound, http.StatusNotFound},
		{proto.ErrNoEventsOnDate, http.StatusNotFound},
		{proto.ErrAlreadyAttending, http.StatusConflict},
		{proto.ErrOrganizationExists, http.StatusConflict},
		{proto.ErrNotAttending, http.StatusBadRequest},
		{&calendar.ProviderError{Op: "create", Code: 503, Temporary: true, Err: errors.New("x")}, http.StatusBadGateway},
		{&calendar.ProviderError{Op: "create", Code: 403, Err: errors.New("x")}, http.StatusBadGateway},
		{fmt.Errorf("%w: boom", feed.ErrTransport), http.StatusBadGateway},
		{fmt.Errorf("%w: boom", feed.ErrDecode), http.StatusBadGateway},
		{fmt.Errorf("%w: 401", auth.ErrInvalidToken), http.StatusBadGateway},
		{auth.ErrUnavailable, http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.err.Error(), func(t *testing.T) {
			is := is.New(t)
			code, msg := statusFor(c.err)
			is.Equal(code, c.code)
			is.True(!strings.Contains(msg, "disk on fire"))
		})
	}
}
