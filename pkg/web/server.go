package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter returns a new HTTP router.
func NewRouter(ctx context.Context) http.Handler {
	logger := log.FromContext(ctx).WithPrefix("http")
	router := mux.NewRouter()

	// Health routes
	HealthController(ctx, router)

	// API routes
	LoginController(ctx, router)
	EventController(ctx, router)
	OrganizationController(ctx, router)
	UserController(ctx, router)

	router.NotFoundHandler = http.HandlerFunc(renderNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(renderMethodNotAllowed)

	// Context handler
	// Adds context to the request
	h := NewLoggingMiddleware(router, logger)
	h = NewContextHandler(ctx)(h)
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger}),
	)(h)

	return h
}

// handle registers h on path with and without a trailing slash.
func handle(r *mux.Router, path string, h http.HandlerFunc, methods ...string) {
	r.HandleFunc(path, h).Methods(methods...)
	r.HandleFunc(path+"/", h).Methods(methods...)
}

type recoveryLogger struct {
	logger *log.Logger
}

// Println implements handlers.RecoveryHandlerLogger.
func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("panic serving request", "panic", v)
}
