package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Collectors are created eagerly so code paths that run before (or without)
// InitCustomMetrics, such as unit tests, can still record.
var (
	HandshakesInitiatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fitlink_handshakes_initiated_total",
		Help: "Total number of OAuth handshakes started, by provider.",
	}, []string{"provider"})

	HandshakesCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fitlink_handshakes_completed_total",
		Help: "Total number of OAuth callbacks processed, by provider and outcome.",
	}, []string{"provider", "outcome"})

	ConnectionsDeletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fitlink_connections_deleted_total",
		Help: "Total number of provider connections removed, by provider.",
	}, []string{"provider"})

	SyncRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fitlink_sync_runs_total",
		Help: "Total number of completed sync runs, by provider and terminal status.",
	}, []string{"provider", "status"})

	SyncRecordsFetchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fitlink_sync_records_fetched_total",
		Help: "Total number of records fetched from providers during syncs.",
	}, []string{"provider"})
)

// InitCustomMetrics registers the custom Prometheus metrics.
// It should be called once at application startup.
func InitCustomMetrics(reg prometheus.Registerer) {
	if reg == nil {
		log.Error().Msg("Prometheus registry is nil, cannot register custom metrics.")
		return
	}

	collectors := map[string]prometheus.Collector{
		"HandshakesInitiatedTotal": HandshakesInitiatedTotal,
		"HandshakesCompletedTotal": HandshakesCompletedTotal,
		"ConnectionsDeletedTotal":  ConnectionsDeletedTotal,
		"SyncRunsTotal":            SyncRunsTotal,
		"SyncRecordsFetchedTotal":  SyncRecordsFetchedTotal,
	}
	for name, c := range collectors {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msgf("Failed to register %s metric", name)
		}
	}
	log.Info().Msg("Custom Prometheus metrics registered.")
}
