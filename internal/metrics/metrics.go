package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlansTotal counts executed plans by mode (single, multi) and whether they were persisted
	PlansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "samruddhi_plans_total",
		Help: "Cutting plans computed, by mode and persistence",
	}, []string{"mode", "persisted"})

	// PiecesProduced counts pieces planned across all plans
	PiecesProduced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "samruddhi_pieces_planned_total",
		Help: "Pieces planned, by mode",
	}, []string{"mode"})

	// InventoryChanges counts leftover rows added or removed
	InventoryChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "samruddhi_inventory_changes_total",
		Help: "Leftover inventory rows inserted or deleted",
	}, []string{"op"})

	// BackendUp is 1 when the last health check succeeded
	BackendUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "samruddhi_backend_up",
		Help: "Whether the selected database backend answered the last check",
	}, []string{"backend"})

	// CheckLatency records health check round trips
	CheckLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "samruddhi_backend_check_seconds",
		Help:    "Latency of database health checks",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend"})
)

// RecordInventory records an applied inventory change
func RecordInventory(deleted, inserted int) {
	if deleted > 0 {
		InventoryChanges.WithLabelValues("delete").Add(float64(deleted))
	}
	if inserted > 0 {
		InventoryChanges.WithLabelValues("insert").Add(float64(inserted))
	}
}
