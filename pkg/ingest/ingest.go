// Package ingest loads the campus events feed into the catalog.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beartracks/beartracks/pkg/daterange"
	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/db/models"
	"github.com/beartracks/beartracks/pkg/feed"
	"github.com/beartracks/beartracks/pkg/markup"
	"github.com/beartracks/beartracks/pkg/store"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultOrganization is used for records without an organization name.
const DefaultOrganization = "Unknown"

// keyNamespace derives external keys for records the feed publishes without
// an id.
var keyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://beartracks/events"))

// errSkipped marks records that are dropped without being an error.
var errSkipped = errors.New("record skipped")

// Source is an events feed.
type Source interface {
	Fetch(ctx context.Context) (*feed.Records, error)
	IDField() string
}

// Result summarizes one ingestion run.
type Result struct {
	Fetched  int `json:"fetched"`
	Ingested int `json:"ingested"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Pipeline ingests feed records into the catalog.
type Pipeline struct {
	db     *db.DB
	store  store.Store
	source Source
	logger *log.Logger
	orgs   *orgCache
	group  singleflight.Group
}

// NewPipeline returns a new ingestion pipeline.
func NewPipeline(ctx context.Context, dbx *db.DB, st store.Store, src Source) *Pipeline {
	return &Pipeline{
		db:     dbx,
		store:  st,
		source: src,
		logger: log.FromContext(ctx).WithPrefix("ingest"),
		orgs:   newOrgCache(1000),
	}
}

// Run fetches the feed once and upserts its records. Concurrent calls share
// one run and its result. A transport or decode error aborts the run; the
// records upserted before it are kept and counted in the returned Result.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	v, err, shared := p.group.Do("ingest", func() (interface{}, error) {
		return p.run(context.WithoutCancel(ctx))
	})
	if shared {
		p.logger.Debug("joined running ingestion")
	}
	return v.(Result), err
}

func (p *Pipeline) run(ctx context.Context) (Result, error) {
	var res Result
	started := time.Now()

	records, err := p.source.Fetch(ctx)
	if err != nil {
		return res, fmt.Errorf("fetch feed: %w", err)
	}
	defer records.Close() //nolint:errcheck

	for records.Next() {
		res.Fetched++
		l := records.Record().Project(p.source.IDField())
		err := p.ingest(ctx, l)
		switch {
		case err == nil:
			res.Ingested++
			recordsCounter.WithLabelValues("ingested").Inc()
		case errors.Is(err, errSkipped):
			res.Skipped++
			recordsCounter.WithLabelValues("skipped").Inc()
			p.logger.Debug("skipping record", "id", l.ExternalKey, "name", l.Name, "err", err)
		default:
			res.Failed++
			recordsCounter.WithLabelValues("failed").Inc()
			p.logger.Error("failed to ingest record", "id", l.ExternalKey, "name", l.Name, "err", err)
		}
	}

	if err := records.Err(); err != nil {
		return res, fmt.Errorf("read feed: %w", err)
	}

	p.logger.Info("ingestion done",
		"fetched", res.Fetched,
		"ingested", res.Ingested,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"elapsed", time.Since(started))

	return res, nil
}

func (p *Pipeline) ingest(ctx context.Context, l feed.Listing) error {
	name := markup.Text(l.Name)
	if name == "" || strings.TrimSpace(l.DateRange) == "" {
		return fmt.Errorf("%w: missing name or date range", errSkipped)
	}

	fields, err := eventFields(name, l)
	if err != nil {
		return fmt.Errorf("%w: %w", errSkipped, err)
	}

	orgName := markup.Text(l.OrganizationName)
	if orgName == "" {
		orgName = DefaultOrganization
	}

	key := strings.TrimSpace(l.ExternalKey)
	if key == "" {
		key = derivedKey(name, fields.Start, orgName)
	}

	orgID, err := p.organizationID(ctx, orgName)
	if err != nil {
		return fmt.Errorf("upsert organization %q: %w", orgName, err)
	}

	if _, err := p.store.UpsertEventByExternalKey(ctx, p.db, key, fields, orgID); err != nil {
		return fmt.Errorf("upsert event: %w", db.WrapError(err))
	}

	return nil
}

func eventFields(name string, l feed.Listing) (models.EventFields, error) {
	fields := models.EventFields{
		Name:        name,
		Location:    markup.Text(l.Location),
		Description: markup.Text(l.Description),
		EventURL:    strings.TrimSpace(l.EventURL),
	}

	if daterange.HasSeparator(l.DateRange) {
		r, err := daterange.Parse(l.DateRange)
		if err != nil {
			return fields, err
		}
		if r.End.Before(r.Start) {
			return fields, fmt.Errorf("%w: end %s is before start %s", daterange.ErrInvalidRange, r.End, r.Start)
		}
		fields.Start, fields.End = r.Start, &r.End
		return fields, nil
	}

	// Listings without a separator only carry a start.
	start, err := daterange.ParseOne(l.DateRange)
	if err != nil {
		return fields, err
	}
	fields.Start = start
	return fields, nil
}

func derivedKey(name string, start time.Time, orgName string) string {
	data := strings.Join([]string{name, start.Format(time.RFC3339), orgName}, "\x00")
	return uuid.NewSHA1(keyNamespace, []byte(data)).String()
}

// organizationID resolves orgName to an id, creating the organization in its
// own transaction when needed.
func (p *Pipeline) organizationID(ctx context.Context, orgName string) (int64, error) {
	if id, ok := p.orgs.Get(orgName); ok {
		return id, nil
	}

	var org models.Organization
	if err := p.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		org, err = p.store.UpsertOrganization(ctx, tx, orgName, models.DefaultOrgType)
		return err
	}); err != nil {
		return 0, db.WrapError(err)
	}

	p.orgs.Set(orgName, org.ID)
	return org.ID, nil
}
