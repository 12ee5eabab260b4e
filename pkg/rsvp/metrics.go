package rsvp

import (
	"errors"

	"github.com/beartracks/beartracks/pkg/calendar"
	"github.com/beartracks/beartracks/pkg/proto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rsvpCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "beartracks",
	Subsystem: "rsvp",
	Name:      "total",
	Help:      "The total number of RSVP transitions, by operation and result",
}, []string{"op", "result"})

func observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, proto.ErrNotFound):
		result = "not_found"
	case errors.Is(err, proto.ErrConflict):
		result = "conflict"
	case errors.Is(err, calendar.ErrTransient), errors.Is(err, calendar.ErrPermanent):
		result = "mirror_error"
	default:
		result = "error"
	}
	rsvpCounter.WithLabelValues(op, result).Inc()
}
