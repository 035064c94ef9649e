package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ScanCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arbiter_scan_cycles_total",
		Help: "Number of scan cycles started",
	})

	ScanErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arbiter_scan_errors_total",
		Help: "Number of scan cycles that failed",
	})

	SnapshotPools = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arbiter_snapshot_pools",
		Help: "Pools in the last normalized snapshot",
	})

	SnapshotTokens = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arbiter_snapshot_tokens",
		Help: "Tokens in the last snapshot",
	})

	OpportunitiesFound = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arbiter_opportunities_total",
		Help: "Profitable routes retained across all cycles",
	})

	BestProfit = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arbiter_best_profit_raw",
		Help: "Raw profit of the best route in the last cycle",
	}, []string{"token"})

	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbiter_scan_duration_seconds",
		Help:    "Time to complete one scan cycle",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		ScanCycles,
		ScanErrors,
		SnapshotPools,
		SnapshotTokens,
		OpportunitiesFound,
		BestProfit,
		ScanDuration,
	)
}
