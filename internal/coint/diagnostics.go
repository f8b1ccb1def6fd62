package coint

import (
	"math"
	"time"

	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// Manager owns the cached CointegrationMetrics for every pair and
// enforces the weekly refresh cadence with a one-pair-per-bar CPU
// budget (spec §4.3, §5, §9).
type Manager struct {
	pMax  float64
	hlMax float64

	metrics     map[string]types.CointegrationMetrics
	lastWeekKey map[string]int

	order      []string
	cursor     int
}

// NewManager creates a diagnostics manager for the given pair universe.
// pairNames fixes the round-robin refresh order (spec §5: a
// deterministic, configured iteration order).
func NewManager(pMax, hlMax float64, pairNames []string) *Manager {
	order := make([]string, len(pairNames))
	copy(order, pairNames)
	return &Manager{
		pMax:        pMax,
		hlMax:       hlMax,
		metrics:     make(map[string]types.CointegrationMetrics, len(order)),
		lastWeekKey: make(map[string]int, len(order)),
		order:       order,
	}
}

func weekKey(t time.Time) int {
	year, week := t.ISOWeek()
	return year*100 + week
}

// Get returns the cached metrics for pair, if any have been computed.
func (m *Manager) Get(pair string) (types.CointegrationMetrics, bool) {
	metrics, ok := m.metrics[pair]
	return metrics, ok
}

// due reports whether pair has not yet been refreshed this calendar
// week.
func (m *Manager) due(pair string, now time.Time) bool {
	last, ok := m.lastWeekKey[pair]
	return !ok || last != weekKey(now)
}

// Tick advances the round-robin budget by exactly one slot: if the
// pair currently up for consideration is due for its weekly refresh,
// it is refreshed using the supplied log-spread history and the cursor
// advances past it; otherwise the cursor still advances but nothing is
// refreshed this bar. At most one pair is ever refreshed per call,
// bounding per-bar CPU (spec §5, §9).
//
// history must contain the pair's log-price-spread series up to and
// including the current bar.
func (m *Manager) Tick(now time.Time, historyFor func(pair string) ([]float64, bool)) (refreshed string, didRefresh bool) {
	if len(m.order) == 0 {
		return "", false
	}

	pair := m.order[m.cursor]
	m.cursor = (m.cursor + 1) % len(m.order)

	if !m.due(pair, now) {
		return "", false
	}

	history, ok := historyFor(pair)
	if !ok {
		return "", false
	}

	m.refresh(pair, history, now)
	return pair, true
}

// ForceRefresh runs an out-of-schedule refresh for pair, independent of
// the weekly round-robin budget. It also resets the weekly cadence
// clock for that pair.
func (m *Manager) ForceRefresh(pair string, history []float64, now time.Time) types.CointegrationMetrics {
	return m.refresh(pair, history, now)
}

func (m *Manager) refresh(pair string, history []float64, now time.Time) types.CointegrationMetrics {
	m.lastWeekKey[pair] = weekKey(now)

	metrics := m.compute(history, now)
	m.metrics[pair] = metrics
	return metrics
}

// compute runs the AR(1) regression described in spec §4.3 and derives
// the ADF statistic/p-value and OU half-life from it. Insufficient
// history or a singular regression both produce IsValid=false with
// blank metrics (spec "Failure modes").
func (m *Manager) compute(history []float64, now time.Time) types.CointegrationMetrics {
	for _, v := range history {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.CointegrationMetrics{LastRefreshed: now.Unix(), IsValid: false}
		}
	}

	fit := fitAR1(history)
	if fit.singular {
		return types.CointegrationMetrics{LastRefreshed: now.Unix(), IsValid: false}
	}

	tau := fit.tStatistic()
	pValue := pValueFromTau(tau)
	halfLife, hlOK := fit.halfLifeDays()

	valid := hlOK && pValue <= m.pMax && halfLife > 0 && halfLife <= m.hlMax

	return types.CointegrationMetrics{
		ADFStatistic:  tau,
		ADFPValue:     pValue,
		HalfLifeDays:  halfLife,
		LastRefreshed: now.Unix(),
		IsValid:       valid,
	}
}
