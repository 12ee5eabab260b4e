// Package stats serves the Prometheus metrics of the process.
package stats

import (
	"context"
	"net/http"
	"time"

	"github.com/beartracks/beartracks/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsServer serves /metrics on its own listener.
type StatsServer struct { //nolint:revive
	server *http.Server
}

// NewStatsServer returns a new StatsServer.
func NewStatsServer(cfg config.StatsConfig) *StatsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &StatsServer{
		server: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           mux,
			ReadHeaderTimeout: time.Second * 10,
			ReadTimeout:       time.Second * 10,
			WriteTimeout:      time.Second * 10,
			MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
		},
	}
}

// Handler returns the metrics handler.
func (s *StatsServer) Handler() http.Handler {
	return s.server.Handler
}

// ListenAndServe starts the StatsServer.
func (s *StatsServer) ListenAndServe() error {
	return s.server.ListenAndServe() //nolint:wrapcheck
}

// Shutdown gracefully shuts down the StatsServer.
func (s *StatsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx) //nolint:wrapcheck
}

// Close closes the StatsServer.
func (s *StatsServer) Close() error {
	return s.server.Close() //nolint:wrapcheck
}
