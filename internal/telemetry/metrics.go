// Package telemetry registers the engine's Prometheus metrics (spec §6
// "Diagnostics transport", GET /metrics). It holds no engine state of
// its own; internal/engine calls its recording methods inline with the
// same events it already logs through zap, and internal/diagnostics
// exposes the registry over HTTP.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// Metrics is the engine's complete Prometheus surface, grounded on the
// gauge/counter shape the teacher registers for its backtester run
// (internal/backtester/metrics.go) but scoped to this engine's own
// events rather than trade P&L statistics, which internal/recorder
// already computes for the final results contract.
type Metrics struct {
	BarsProcessed      prometheus.Counter
	Entries            *prometheus.CounterVec
	Exits              *prometheus.CounterVec
	GrossLeverage      prometheus.Gauge
	RegimeTier         *prometheus.GaugeVec
	CointegrationRefresh prometheus.Counter
}

// New creates and registers a fresh Metrics set against reg. Passing a
// dedicated *prometheus.Registry (rather than the global
// prometheus.DefaultRegisterer) lets cmd/engine run more than one
// engine instance in a single process without a registration collision.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BarsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pairs_engine",
			Name:      "bars_processed_total",
			Help:      "Total number of ticks accepted by the validator and processed by OnBar.",
		}),
		Entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pairs_engine",
			Name:      "entries_total",
			Help:      "Total number of pair entries routed to the host, by pair and side.",
		}, []string{"pair", "side"}),
		Exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pairs_engine",
			Name:      "exits_total",
			Help:      "Total number of exits routed to the host, by pair and reason.",
		}, []string{"pair", "reason"}),
		GrossLeverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pairs_engine",
			Name:      "gross_leverage_ratio",
			Help:      "Sum of absolute per-leg notional across open positions, divided by portfolio equity, as of the last bar.",
		}),
		RegimeTier: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pairs_engine",
			Name:      "regime_tier",
			Help:      "1 if this is the current VIX regime tier, 0 otherwise.",
		}, []string{"tier"}),
		CointegrationRefresh: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pairs_engine",
			Name:      "cointegration_refresh_total",
			Help:      "Total number of pairs whose cointegration diagnostics were refreshed, scheduled or pre-entry.",
		}),
	}

	reg.MustRegister(
		m.BarsProcessed,
		m.Entries,
		m.Exits,
		m.GrossLeverage,
		m.RegimeTier,
		m.CointegrationRefresh,
	)
	return m
}

// ObserveEntry records one routed pair entry (both legs placed).
func (m *Metrics) ObserveEntry(pair string, side types.PositionSide) {
	if m == nil {
		return
	}
	m.Entries.WithLabelValues(pair, string(side)).Inc()
}

// ObserveExit records one routed exit.
func (m *Metrics) ObserveExit(pair string, reason types.ExitReason) {
	if m == nil {
		return
	}
	m.Exits.WithLabelValues(pair, string(reason)).Inc()
}

// ObserveRegime sets the regime_tier gauge so exactly one tier label
// reads 1 and the rest read 0, and records a cointegration refresh
// separately via ObserveCointegrationRefresh.
func (m *Metrics) ObserveRegime(current types.RegimeTier) {
	if m == nil {
		return
	}
	for _, tier := range []types.RegimeTier{types.TierNormal, types.TierWarning, types.TierHigh, types.TierCrisis} {
		v := 0.0
		if tier == current {
			v = 1.0
		}
		m.RegimeTier.WithLabelValues(string(tier)).Set(v)
	}
}

// ObserveCointegrationRefresh records one pair's diagnostics having
// been refreshed this bar, scheduled or pre-entry.
func (m *Metrics) ObserveCointegrationRefresh() {
	if m == nil {
		return
	}
	m.CointegrationRefresh.Inc()
}

// SetGrossLeverage sets the current gross-leverage ratio gauge.
func (m *Metrics) SetGrossLeverage(ratio float64) {
	if m == nil {
		return
	}
	m.GrossLeverage.Set(ratio)
}

// IncBarsProcessed records one accepted tick.
func (m *Metrics) IncBarsProcessed() {
	if m == nil {
		return
	}
	m.BarsProcessed.Inc()
}
