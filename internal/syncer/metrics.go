package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// conflictsTotal counts failed pushes, failed pulls, and changes that
	// could not be applied.
	conflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chartstore_sync_conflicts_total",
			Help: "Sync failures and unresolved conflicts",
		},
	)

	// passesTotal counts completed sync passes by direction outcome.
	passesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartstore_sync_passes_total",
			Help: "Completed sync passes",
		},
		[]string{"outcome"},
	)
)
