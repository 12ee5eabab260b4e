package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/beartracks/beartracks/pkg/backend"
	"github.com/beartracks/beartracks/pkg/config"
	"github.com/beartracks/beartracks/pkg/cron"
	"github.com/beartracks/beartracks/pkg/ingest"
	"github.com/beartracks/beartracks/pkg/jobs"
	"github.com/beartracks/beartracks/pkg/stats"
	"github.com/beartracks/beartracks/pkg/web"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Server is the BearTracks server.
type Server struct {
	HTTPServer  *web.HTTPServer
	StatsServer *stats.StatsServer
	Cron        *cron.Scheduler
	Config      *config.Config
	Backend     *backend.Backend

	logger *log.Logger
	ctx    context.Context
}

// NewServer returns a new *Server.
// It expects a context with *backend.Backend, *db.DB, *log.Logger, and
// *config.Config attached.
func NewServer(ctx context.Context) (*Server, error) {
	var err error
	cfg := config.FromContext(ctx)
	be := backend.FromContext(ctx)
	if cfg == nil || be == nil {
		return nil, errors.New("server context is missing config or backend")
	}

	srv := &Server{
		Config:  cfg,
		Backend: be,
		logger:  log.FromContext(ctx).WithPrefix("server"),
		ctx:     ctx,
	}

	// Add cron jobs.
	if cfg.Jobs.Ingest != "" {
		jobs.Register("ingest", ingest.NewJob(be.Pipeline()))
	}
	srv.Cron = cron.NewScheduler(ctx)
	if err := jobs.Schedule(ctx, srv.Cron); err != nil {
		return nil, err
	}

	srv.HTTPServer, err = web.NewHTTPServer(ctx)
	if err != nil {
		return nil, fmt.Errorf("create http server: %w", err)
	}

	srv.StatsServer = stats.NewStatsServer(cfg.Stats)

	return srv, nil
}

// Start starts the enabled servers and the scheduler. It returns when a
// server fails or all of them are shut down.
func (s *Server) Start() error {
	errg, _ := errgroup.WithContext(s.ctx)

	// optionally start the HTTP server
	if s.Config.HTTP.Enabled {
		errg.Go(func() error {
			s.logger.Print("Starting HTTP server", "addr", s.Config.HTTP.ListenAddr)
			if err := s.HTTPServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	// optionally start the Stats server
	if s.Config.Stats.Enabled {
		errg.Go(func() error {
			s.logger.Print("Starting Stats server", "addr", s.Config.Stats.ListenAddr)
			if err := s.StatsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	errg.Go(func() error {
		s.Cron.Start()
		return nil
	})
	return errg.Wait()
}

// Shutdown lets the server gracefully shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return s.HTTPServer.Shutdown(ctx)
	})
	errg.Go(func() error {
		return s.StatsServer.Shutdown(ctx)
	})
	errg.Go(func() error {
		for _, j := range jobs.List() {
			s.Cron.Remove(j.ID)
		}
		s.Cron.Shutdown()
		return nil
	})
	return errg.Wait()
}

// Close closes the servers immediately.
func (s *Server) Close() error {
	var errg errgroup.Group
	errg.Go(s.HTTPServer.Close)
	errg.Go(s.StatsServer.Close)
	errg.Go(func() error {
		s.Cron.Stop()
		return nil
	})
	return errg.Wait()
}
