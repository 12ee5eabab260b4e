package backend

import (
	"context"

	"github.com/beartracks/beartracks/pkg/ingest"
)

// Ingest runs the ingestion pipeline once. Concurrent calls share a run.
func (d *Backend) Ingest(ctx context.Context) (ingest.Result, error) {
	return d.pipeline.Run(ctx)
}
