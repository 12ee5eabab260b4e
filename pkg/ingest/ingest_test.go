package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/beartracks/beartracks/pkg/db"
	"github.com/beartracks/beartracks/pkg/feed"
	"github.com/beartracks/beartracks/pkg/store"
	"github.com/beartracks/beartracks/pkg/test"
	"github.com/matryer/is"
)

// staticSource serves the same feed body on every fetch.
type staticSource struct {
	body    string
	err     error
	fetches atomic.Int32
	gate    chan struct{}
}

func (s *staticSource) Fetch(context.Context) (*feed.Records, error) {
	s.fetches.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	if s.err != nil {
		return nil, s.err
	}
	return feed.NewRecords(io.NopCloser(strings.NewReader(s.body)))
}

func (s *staticSource) IDField() string { return "p0" }

func setup(t *testing.T, src Source) (context.Context, *db.DB, store.Store, *Pipeline) {
	t.Helper()
	ctx := context.TODO()
	dbx, st := test.Catalog(ctx, t)
	return ctx, dbx, st, NewPipeline(ctx, dbx, st, src)
}

const bearMeet = `[{"p3": "Bear Meet", "p4": "Mon, Jan 6, 2025 5:00 PM &ndash; Mon, Jan 6, 2025 7:00 PM", "p9": "BearClub", "p6": "Statler", "p30": "<p>Come!</p>"}]`

func TestRunSingleRecord(t *testing.T) {
	is := is.New(t)
	ctx, dbx, st, p := setup(t, &staticSource{body: bearMeet})

	res, err := p.Run(ctx)
	is.NoErr(err)
	is.Equal(res, Result{Fetched: 1, Ingested: 1})

	orgs, err := st.ListOrganizations(ctx, dbx)
	is.NoErr(err)
	is.Equal(len(orgs), 1)
	is.Equal(orgs[0].Name, "BearClub")
	is.Equal(orgs[0].OrgType, "Unknown")

	events, err := st.ListEvents(ctx, dbx)
	is.NoErr(err)
	is.Equal(len(events), 1)
	e := events[0]
	is.Equal(e.Name, "Bear Meet")
	is.Equal(e.StartDate, "2025-01-06")
	is.Equal(e.StartTime, "17:00:00")
	is.Equal(e.EndDate.String, "2025-01-06")
	is.Equal(e.EndTime.String, "19:00:00")
	is.Equal(e.Location, "Statler")
	is.Equal(e.Description, "Come!")
	is.Equal(e.OrganizationID, orgs[0].ID)
	is.True(e.ExternalKey.Valid) // derived key
}

func TestRunIdempotent(t *testing.T) {
	is := is.New(t)
	ctx, dbx, st, p := setup(t, &staticSource{body: bearMeet})

	_, err := p.Run(ctx)
	is.NoErr(err)
	first, err := st.ListEvents(ctx, dbx)
	is.NoErr(err)

	// A fresh pipeline has a cold organization cache.
	p2 := NewPipeline(ctx, dbx, st, &staticSource{body: bearMeet})
	for i := 0; i < 3; i++ {
		_, err := p2.Run(ctx)
		is.NoErr(err)
	}

	events, err := st.ListEvents(ctx, dbx)
	is.NoErr(err)
	is.Equal(len(events), 1)
	is.Equal(events[0].ID, first[0].ID)
	is.Equal(events[0].OrganizationID, first[0].OrganizationID)

	orgs, err := st.ListOrganizations(ctx, dbx)
	is.NoErr(err)
	is.Equal(len(orgs), 1)
}

func TestRunUpdatesByUpstreamID(t *testing.T) {
	is := is.New(t)
	src := &staticSource{body: `[{"p0": 99, "p3": "Old", "p4": "Mon, Jan 6, 2025 5 PM – Mon, Jan 6, 2025 6 PM", "p9": "A"}]`}
	ctx, dbx, st, p := setup(t, src)

	_, err := p.Run(ctx)
	is.NoErr(err)

	src.body = `[{"p0": 99, "p3": "New", "p4": "Tue, Jan 7, 2025 5 PM – Tue, Jan 7, 2025 6 PM", "p9": "B"}]`
	_, err = p.Run(ctx)
	is.NoErr(err)

	events, err := st.ListEvents(ctx, dbx)
	is.NoErr(err)
	is.Equal(len(events), 1)
	is.Equal(events[0].Name, "New")
	is.Equal(events[0].StartDate, "2025-01-07")
	is.Equal(events[0].ExternalKey.String, "99")

	org, err := st.GetOrganizationByID(ctx, dbx, events[0].OrganizationID)
	is.NoErr(err)
	is.Equal(org.Name, "B")
}

func TestRunDateOnly(t *testing.T) {
	is := is.New(t)
	ctx, dbx, st, p := setup(t, &staticSource{body: `[{"p3": "All Day", "p4": "Mon, Jan 6, 2025", "p9": "BearClub"}]`})

	res, err := p.Run(ctx)
	is.NoErr(err)
	is.Equal(res.Ingested, 1)

	events, err := st.ListEvents(ctx, dbx)
	is.NoErr(err)
	is.Equal(len(events), 1)
	is.Equal(events[0].StartDate, "2025-01-06")
	is.Equal(events[0].StartTime, "00:00:00")
	is.True(!events[0].EndDate.Valid)
	is.True(!events[0].EndTime.Valid)
}

func TestRunSkipsBadRecords(t *testing.T) {
	is := is.New(t)
	body := `[
		{"p3": "No date"},
		{"p4": "Mon, Jan 6, 2025"},
		{"p3": "Bad date", "p4": "someday – later"},
		{"p3": "Backwards", "p4": "Tue, Jan 7, 2025 – Mon, Jan 6, 2025"},
		{"p3": "Good", "p4": "Mon, Jan 6, 2025 5:00 PM – Mon, Jan 6, 2025 7:00 PM"}
	]`
	ctx, dbx, st, p := setup(t, &staticSource{body: body})

	res, err := p.Run(ctx)
	is.NoErr(err)
	is.Equal(res, Result{Fetched: 5, Ingested: 1, Skipped: 4})

	events, err := st.ListEvents(ctx, dbx)
	is.NoErr(err)
	is.Equal(len(events), 1)

	org, err := st.GetOrganizationByID(ctx, dbx, events[0].OrganizationID)
	is.NoErr(err)
	is.Equal(org.Name, DefaultOrganization)
}

func TestRunFeedErrors(t *testing.T) {
	is := is.New(t)
	ctx, dbx, st, p := setup(t, &staticSource{err: feed.ErrTransport})
	_, err := p.Run(ctx)
	is.True(errors.Is(err, feed.ErrTransport))

	// Records decoded before a decode error stay ingested.
	p = NewPipeline(ctx, dbx, st, &staticSource{body: `[{"p3": "Good", "p4": "Mon, Jan 6, 2025"}, {"p3": `})
	res, err := p.Run(ctx)
	is.True(errors.Is(err, feed.ErrDecode))
	is.Equal(res.Ingested, 1)
}

func TestRunCoalesces(t *testing.T) {
	is := is.New(t)
	src := &staticSource{body: bearMeet, gate: make(chan struct{})}
	ctx, _, _, p := setup(t, src)

	var wg sync.WaitGroup
	results := make([]Result, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := p.Run(ctx)
			if err != nil {
				t.Error(err)
			}
			results[i] = res
		}(i)
	}

	// Wait for the first fetch, give the other callers a chance to join.
	for src.fetches.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	is.Equal(src.fetches.Load(), int32(1)) // one shared fetch
	for _, res := range results {
		is.Equal(res.Ingested, 1)
	}
}
