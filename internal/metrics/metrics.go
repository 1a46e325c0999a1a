// Package metrics registers the prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SongMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setlist_song_mutations_total",
			Help: "Successful song mutations",
		},
		[]string{"op"},
	)
	ValidationRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "setlist_validation_rejections_total",
			Help: "Song payloads rejected by validation",
		},
	)
	AuthFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "setlist_auth_failures_total",
			Help: "Requests rejected for missing or wrong credentials",
		},
	)
)

func init() {
	prometheus.MustRegister(SongMutations, ValidationRejections, AuthFailures)
}
