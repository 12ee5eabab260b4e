package web

import (
	"context"
	"net/http"

	"github.com/beartracks/beartracks/pkg/backend"
	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// HealthController registers the health check routes for the web server.
func HealthController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/livez", getLiveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", getReadiness).Methods(http.MethodGet)
}

func getLiveness(w http.ResponseWriter, _ *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func getReadiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	if be == nil {
		renderJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	if err := be.Ping(ctx); err != nil {
		log.FromContext(ctx).Error("readiness check failed", "err", err)
		renderJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
