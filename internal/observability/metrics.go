// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	// Scheduler metrics
	ScanCycles       prometheus.Counter
	StrategiesActive prometheus.Gauge
	StrategyScans    *prometheus.CounterVec
	StrategyFires    *prometheus.CounterVec
	ScanErrors       *prometheus.CounterVec

	// Execution metrics
	TradesTotal      *prometheus.CounterVec
	ExecutionLatency prometheus.Histogram
	SwapRetries      prometheus.Counter

	// Upstream metrics
	QuoteLatency        prometheus.Histogram
	MarketFetchLatency  prometheus.Histogram
	UpstreamErrors      *prometheus.CounterVec
	RPCCallLatency      *prometheus.HistogramVec

	// Discovery metrics
	CandidatesDiscovered *prometheus.CounterVec

	// Wallet metrics
	WalletBalanceLamports prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "strategy_engine"
	}

	return &Metrics{
		// Scheduler metrics
		ScanCycles: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "scan_cycles_total",
			Help:      "Total number of scheduler scan cycles",
		}),
		StrategiesActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "strategies_active",
			Help:      "Number of active strategies in the last cycle",
		}),
		StrategyScans: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "strategy_scans_total",
			Help:      "Total number of strategy evaluations by type",
		}, []string{"type"}),
		StrategyFires: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "strategy_fires_total",
			Help:      "Total number of satisfied entry rules by type",
		}, []string{"type"}),
		ScanErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "scan_errors_total",
			Help:      "Total number of per-cycle evaluation errors by kind",
		}, []string{"kind"}),

		// Execution metrics
		TradesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "trades_total",
			Help:      "Total number of trades by final status",
		}, []string{"status"}),
		ExecutionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "execution_latency_seconds",
			Help:      "Swap execution latency from build to confirmation",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		SwapRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "swap_retries_total",
			Help:      "Total number of quote-refresh retries",
		}),

		// Upstream metrics
		QuoteLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "quote_latency_seconds",
			Help:      "Aggregator quote latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		MarketFetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "market_fetch_latency_seconds",
			Help:      "Market index fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "errors_total",
			Help:      "Total number of upstream errors by service",
		}, []string{"service"}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Discovery metrics
		CandidatesDiscovered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "candidates_total",
			Help:      "Total number of candidate mints discovered by program",
		}, []string{"program"}),

		// Wallet metrics
		WalletBalanceLamports: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "balance_lamports",
			Help:      "Last observed wallet balance in lamports",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
