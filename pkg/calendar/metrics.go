package calendar

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "beartracks",
	Subsystem: "calendar",
	Name:      "requests_total",
	Help:      "The total number of calendar mirror operations, by result",
}, []string{"op", "result"})

func observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNoAccessToken):
		result = "noop"
	case errors.Is(err, ErrTransient):
		result = "transient"
	default:
		result = "permanent"
	}
	requestsCounter.WithLabelValues(op, result).Inc()
}
