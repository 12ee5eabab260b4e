package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/beartracks/beartracks/pkg/backend"
	"github.com/beartracks/beartracks/pkg/proto"
	"github.com/gorilla/mux"
)

// LoginController registers the mobile login route.
func LoginController(_ context.Context, r *mux.Router) {
	handle(r, "/login/mobile", postLogin, http.MethodPost)
}

// EventController registers the event routes.
func EventController(_ context.Context, r *mux.Router) {
	handle(r, "/events", getEvents, http.MethodGet)
	handle(r, "/events", postEvent, http.MethodPost)
	handle(r, "/events/fetch", postFetch, http.MethodPost)
	handle(r, "/events/date/{date}", getEventsOnDate, http.MethodGet)
	handle(r, "/events/{id:[0-9]+}", getEvent, http.MethodGet)
	handle(r, "/events/{id:[0-9]+}", deleteEvent, http.MethodDelete)
	handle(r, "/events/{id:[0-9]+}/add", postAttend, http.MethodPost)
	handle(r, "/events/{id:[0-9]+}/remove", postLeave, http.MethodPost)
}

// OrganizationController registers the organization routes.
func OrganizationController(_ context.Context, r *mux.Router) {
	handle(r, "/organizations", getOrganizations, http.MethodGet)
	handle(r, "/organizations", postOrganization, http.MethodPost)
}

// UserController registers the user routes.
func UserController(_ context.Context, r *mux.Router) {
	handle(r, "/users", getUsers, http.MethodGet)
	handle(r, "/users/{id:[0-9]+}", getUser, http.MethodGet)
}

type loginRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func postLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	be := backend.FromContext(r.Context())
	login, err := be.Login(r.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, login)
}

func postFetch(w http.ResponseWriter, r *http.Request) {
	be := backend.FromContext(r.Context())
	res, err := be.Ingest(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]int{"events_ingested": res.Ingested})
}

func getEvents(w http.ResponseWriter, r *http.Request) {
	be := backend.FromContext(r.Context())
	events, err := be.Events(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string][]proto.Event{"events": events})
}

func postEvent(w http.ResponseWriter, r *http.Request) {
	var in proto.EventInput
	if err := decode(r, &in); err != nil {
		renderError(w, r, err)
		return
	}

	be := backend.FromContext(r.Context())
	e, err := be.CreateEvent(r.Context(), in)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, e)
}

func getEventsOnDate(w http.ResponseWriter, r *http.Request) {
	be := backend.FromContext(r.Context())
	events, err := be.EventsOnDate(r.Context(), mux.Vars(r)["date"])
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string][]proto.Event{"events": events})
}

func getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	be := backend.FromContext(r.Context())
	e, err := be.Event(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, e)
}

func deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	be := backend.FromContext(r.Context())
	e, err := be.DeleteEvent(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, e)
}

type attendanceRequest struct {
	UserID *int64 `json:"user_id"`
}

func postAttend(w http.ResponseWriter, r *http.Request) {
	rsvp(w, r, (*backend.Backend).Attend)
}

func postLeave(w http.ResponseWriter, r *http.Request) {
	rsvp(w, r, (*backend.Backend).Leave)
}

func rsvp(w http.ResponseWriter, r *http.Request, op func(*backend.Backend, context.Context, int64, int64) (proto.User, error)) {
	eventID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req attendanceRequest
	if err := decode(r, &req); err != nil {
		renderError(w, r, err)
		return
	}
	if req.UserID == nil {
		renderError(w, r, proto.NewValidationError("user_id", "Missing required field: user_id"))
		return
	}

	be := backend.FromContext(r.Context())
	u, err := op(be, r.Context(), *req.UserID, eventID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, u)
}

func getOrganizations(w http.ResponseWriter, r *http.Request) {
	be := backend.FromContext(r.Context())
	orgs, err := be.Organizations(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string][]proto.Organization{"organizations": orgs})
}

func postOrganization(w http.ResponseWriter, r *http.Request) {
	var in proto.OrganizationInput
	if err := decode(r, &in); err != nil {
		renderError(w, r, err)
		return
	}

	be := backend.FromContext(r.Context())
	org, err := be.CreateOrganization(r.Context(), in)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, org)
}

func getUsers(w http.ResponseWriter, r *http.Request) {
	be := backend.FromContext(r.Context())
	users, err := be.Users(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string][]proto.User{"users": users})
}

func getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	be := backend.FromContext(r.Context())
	u, err := be.User(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, u)
}

// pathID parses the {id} route variable. It renders a 404 when the id does
// not fit an int64.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		renderNotFound(w, r)
		return 0, false
	}
	return id, true
}
