package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var recordsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "beartracks",
	Subsystem: "ingest",
	Name:      "records_total",
	Help:      "The total number of feed records processed, by result",
}, []string{"result"})
