package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/beartracks/beartracks/pkg/auth"
	"github.com/beartracks/beartracks/pkg/calendar"
	"github.com/beartracks/beartracks/pkg/feed"
	"github.com/beartracks/beartracks/pkg/proto"
	"github.com/charmbracelet/log"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func renderJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding json", "err", err)
	}
}

func renderMessage(w http.ResponseWriter, statusCode int, msg string) {
	renderJSON(w, statusCode, errorResponse{Error: msg})
}

func renderNotFound(w http.ResponseWriter, _ *http.Request) {
	renderMessage(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

func renderMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	renderMessage(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
}

// renderError writes the status and message err maps to. Internal errors
// are logged and answered with a generic message.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	logger := log.FromContext(r.Context())
	switch {
	case code >= http.StatusInternalServerError:
		logger.Error("request failed", "status", code, "err", err)
	default:
		logger.Debug("request rejected", "status", code, "err", err)
	}
	renderMessage(w, code, msg)
}

func statusFor(err error) (int, string) {
	var verr *proto.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, proto.ErrNotAttending):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, proto.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, proto.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, calendar.ErrTransient), errors.Is(err, calendar.ErrPermanent):
		return http.StatusBadGateway, "Failed to update Google Calendar"
	case errors.Is(err, feed.ErrTransport), errors.Is(err, feed.ErrDecode):
		return http.StatusBadGateway, "Failed to fetch events"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUnavailable):
		return http.StatusBadGateway, "Failed to log in"
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return proto.NewValidationError("", "Request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return proto.NewValidationError("", "Invalid JSON body")
	}
	return nil
}
