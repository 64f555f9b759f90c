// Package metrics holds the Prometheus collectors for RPC traffic and
// settlement computation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the set of collectors the server records to.
type Metrics struct {
	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	Settlements         prometheus.Counter
	SettlementTransfers prometheus.Histogram
	SettlementDuration  prometheus.Histogram

	UserCacheLookups *prometheus.CounterVec
}

var (
	defaultOnce sync.Once
	defaultSet  *Metrics
)

// Default returns the process-wide collectors, registered once with the
// default Prometheus registerer.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultSet = New(prometheus.DefaultRegisterer)
	})
	return defaultSet
}

// New registers a fresh set of collectors with reg. Tests pass a
// prometheus.NewRegistry() to stay isolated.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "splitledger_rpc_requests_total",
			Help: "Total RPCs handled, by procedure and result code",
		}, []string{"procedure", "code"}),
		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "splitledger_rpc_duration_seconds",
			Help:    "RPC handling latency",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"procedure"}),
		Settlements: f.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_settlements_computed_total",
			Help: "Total group settlements computed",
		}),
		SettlementTransfers: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitledger_settlement_transfers",
			Help:    "Transfers produced per settlement",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		}),
		SettlementDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitledger_settlement_duration_seconds",
			Help:    "Time spent simplifying group debts",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		UserCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "splitledger_user_cache_lookups_total",
			Help: "User cache lookups, by result (hit, miss, error)",
		}, []string{"result"}),
	}
}
