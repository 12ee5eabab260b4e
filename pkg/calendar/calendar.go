// Package calendar mirrors RSVPs into the users' Google Calendars.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/beartracks/beartracks/pkg/config"
	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
	"github.com/beartracks/beartracks/pkg/store"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DateTimeLayout is the layout of the naive timestamps sent to the provider.
const DateTimeLayout = "2006-01-02T15:04:05"

// DefaultDuration is the length given to events without an end.
const DefaultDuration = time.Hour

// Mirror creates and deletes calendar entries on behalf of users.
type Mirror struct {
	cfg    config.CalendarConfig
	db     *db.DB
	users  store.UserStore
	logger *log.Logger
}

// NewMirror returns a new Mirror. Refreshed tokens are saved through users.
func NewMirror(ctx context.Context, cfg config.CalendarConfig, dbx *db.DB, users store.UserStore) *Mirror {
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	if cfg.Endpoint != "" && !strings.HasSuffix(cfg.Endpoint, "/") {
		cfg.Endpoint += "/"
	}
	return &Mirror{
		cfg:    cfg,
		db:     dbx,
		users:  users,
		logger: log.FromContext(ctx).WithPrefix("calendar"),
	}
}

// Create adds event to the user's calendar and returns the provider id of
// the new entry. It returns ErrNoAccessToken when the user has no access
// token.
func (m *Mirror) Create(ctx context.Context, user models.User, event models.Event) (ref string, err error) {
	defer func() { observe("create", err) }()

	entry, err := payload(event)
	if err != nil {
		return "", permanent("create", 0, err)
	}

	err = m.do(ctx, "create", user, func(ctx context.Context, svc *gcal.Service) error {
		created, err := svc.Events.Insert(m.cfg.CalendarID, entry).Context(ctx).Do()
		if err != nil {
			return err
		}
		ref = created.Id
		return nil
	})
	if err != nil {
		return "", err
	}

	m.logger.Debug("created calendar entry", "user", user.ID, "event", event.ID, "ref", ref)
	return ref, nil
}

// Delete removes the entry ref from the user's calendar. Entries that are
// already gone count as deleted.
func (m *Mirror) Delete(ctx context.Context, user models.User, ref string) (err error) {
	defer func() { observe("delete", err) }()

	err = m.do(ctx, "delete", user, func(ctx context.Context, svc *gcal.Service) error {
		err := svc.Events.Delete(m.cfg.CalendarID, ref).Context(ctx).Do()
		switch statusCode(err) {
		case http.StatusNotFound, http.StatusGone:
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}

	m.logger.Debug("deleted calendar entry", "user", user.ID, "ref", ref)
	return nil
}

// do runs call with the user's access token. On a 401 it refreshes the
// token, when the user has refresh material, and tries once more.
func (m *Mirror) do(ctx context.Context, op string, user models.User, call func(context.Context, *gcal.Service) error) error {
	material := user.AuthMaterial()
	if material.AccessToken == "" {
		return ErrNoAccessToken
	}

	err := m.call(ctx, material.AccessToken, call)
	if statusCode(err) != http.StatusUnauthorized {
		return classify(op, err)
	}

	if !material.CanRefresh() {
		return permanent(op, http.StatusUnauthorized, err)
	}

	tok, err := m.refresh(ctx, user.ID, material)
	if err != nil {
		return err
	}

	return classify(op, m.call(ctx, tok.AccessToken, call))
}

func (m *Mirror) call(ctx context.Context, accessToken string, call func(context.Context, *gcal.Service) error) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: accessToken,
			TokenType:   "Bearer",
		}))),
	}
	if m.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(m.cfg.Endpoint))
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("create calendar service: %w", err)
	}

	return call(ctx, svc)
}

// refresh exchanges the refresh token for a new access token and saves it.
func (m *Mirror) refresh(ctx context.Context, userID int64, material models.AuthMaterial) (*oauth2.Token, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	conf := &oauth2.Config{
		ClientID:     material.ClientID,
		ClientSecret: material.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: material.TokenURI},
		Scopes:       material.Scopes,
	}
	tok, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: material.RefreshToken}).Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			code := rerr.Response.StatusCode
			if code >= http.StatusInternalServerError {
				return nil, transient("refresh", code, err)
			}
			return nil, permanent("refresh", code, err)
		}
		return nil, transient("refresh", 0, err)
	}

	rotated := models.AuthMaterial{AccessToken: tok.AccessToken}
	if tok.RefreshToken != material.RefreshToken {
		rotated.RefreshToken = tok.RefreshToken
	}
	if err := m.users.UpdateUserTokens(ctx, m.db, userID, rotated); err != nil {
		m.logger.Error("failed to save refreshed token", "user", userID, "err", db.WrapError(err))
	}

	m.logger.Debug("refreshed access token", "user", userID)
	return tok, nil
}

func (m *Mirror) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.cfg.Timeout)
}

// payload builds the calendar entry for event.
func payload(event models.Event) (*gcal.Event, error) {
	start, err := event.Start()
	if err != nil {
		return nil, fmt.Errorf("event %d start: %w", event.ID, err)
	}
	end, ok, err := event.End()
	if err != nil {
		return nil, fmt.Errorf("event %d end: %w", event.ID, err)
	}
	if !ok {
		end = start.Add(DefaultDuration)
	}

	return &gcal.Event{
		Summary:     event.Name,
		Location:    event.Location,
		Description: event.Description,
		Start: &gcal.EventDateTime{
			DateTime: start.Format(DateTimeLayout),
			TimeZone: "UTC",
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(DateTimeLayout),
			TimeZone: "UTC",
		},
	}, nil
}

func statusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

// classify turns an error from the Calendar API into a *ProviderError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	code := statusCode(err)
	switch {
	case code == 0:
		// No response: transport failure or deadline.
		return transient(op, 0, err)
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return transient(op, code, err)
	default:
		return permanent(op, code, err)
	}
}
