package ingest

import (
	"context"

	"github.com/beartracks/beartracks/pkg/config"
	"github.com/beartracks/beartracks/pkg/jobs"
	"github.com/charmbracelet/log"
)

// Job runs the pipeline on the schedule configured in jobs.ingest.
type Job struct {
	pipeline *Pipeline
}

var _ jobs.Runner = (*Job)(nil)

// NewJob returns a job that runs p.
func NewJob(p *Pipeline) *Job {
	return &Job{pipeline: p}
}

// Spec implements jobs.Runner.
func (j *Job) Spec(ctx context.Context) string {
	cfg := config.FromContext(ctx)
	if cfg == nil || cfg.Jobs.Ingest == "" {
		return config.DefaultConfig().Jobs.Ingest
	}
	return cfg.Jobs.Ingest
}

// Func implements jobs.Runner.
func (j *Job) Func(ctx context.Context) func() {
	logger := log.FromContext(ctx).WithPrefix("jobs.ingest")
	return func() {
		res, err := j.pipeline.Run(ctx)
		if err != nil {
			logger.Error("scheduled ingestion failed", "err", err, "ingested", res.Ingested)
			return
		}
		logger.Debug("scheduled ingestion done", "ingested", res.Ingested)
	}
}
