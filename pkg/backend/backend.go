// Package backend ties the catalog, ingestion, identity and RSVP
// components together behind the operations the HTTP surface offers.
package backend

import (
	"context"

	"github.com/beartracks/beartracks/pkg/auth"
	"github.com/beartracks/beartracks/pkg/calendar"
	"github.com/beartracks/beartracks/pkg/config"
	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/feed"
	"github.com/beartracks/beartracks/pkg/ingest"
	"github.com/beartracks/beartracks/pkg/rsvp"
	"github.com/beartracks/beartracks/pkg/store"
	"github.com/charmbracelet/log"
)

// Backend is the BearTracks backend that manages the event catalog, users
// and their attendances.
type Backend struct {
	ctx      context.Context
	cfg      *config.Config
	db       *db.DB
	store    store.Store
	logger   *log.Logger
	pipeline *ingest.Pipeline
	rsvp     *rsvp.Coordinator
	identity *auth.Resolver
}

// New returns a new BearTracks backend.
func New(ctx context.Context, cfg *config.Config, dbx *db.DB, st store.Store) *Backend {
	mirror := calendar.NewMirror(ctx, cfg.Calendar, dbx, st)
	return &Backend{
		ctx:      ctx,
		cfg:      cfg,
		db:       dbx,
		store:    st,
		logger:   log.FromContext(ctx).WithPrefix("backend"),
		pipeline: ingest.NewPipeline(ctx, dbx, st, feed.NewClient(cfg.Feed)),
		rsvp:     rsvp.NewCoordinator(ctx, dbx, st, mirror),
		identity: auth.NewResolver(cfg.Calendar),
	}
}

// Pipeline returns the ingestion pipeline.
func (d *Backend) Pipeline() *ingest.Pipeline {
	return d.pipeline
}

// Ping checks the database connection.
func (d *Backend) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Wait blocks until background calendar work is done.
func (d *Backend) Wait() {
	d.rsvp.Wait()
}
