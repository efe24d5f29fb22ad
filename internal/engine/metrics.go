package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// operationsTotal counts engine mutations and reads by outcome.
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartstore_engine_operations_total",
			Help: "Engine operations by collection and action",
		},
		[]string{"collection", "action"},
	)

	// cacheHitsTotal counts document cache hits.
	cacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chartstore_engine_cache_hits_total",
			Help: "Document cache hits",
		},
	)

	// cacheMissesTotal counts document cache misses.
	cacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chartstore_engine_cache_misses_total",
			Help: "Document cache misses",
		},
	)

	// syncPendingGauge tracks sync log entries awaiting push.
	syncPendingGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chartstore_engine_sync_pending",
			Help: "Sync log entries in pending state",
		},
	)

	// subscriberPanicsTotal counts recovered subscriber panics.
	subscriberPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chartstore_engine_subscriber_panics_total",
			Help: "Subscriber callbacks recovered from panic",
		},
	)
)
