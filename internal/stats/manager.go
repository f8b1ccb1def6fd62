package stats

import "github.com/atlas-desktop/pairs-engine/pkg/types"

// Manager owns one Window per pair, keyed by pair name (spec §9: flat
// map, no cycles).
type Manager struct {
	capacity int
	windows  map[string]*Window
}

// NewManager creates a statistics manager with a fixed per-pair window
// capacity L.
func NewManager(capacity int) *Manager {
	return &Manager{
		capacity: capacity,
		windows:  make(map[string]*Window),
	}
}

func (m *Manager) windowFor(pair string) *Window {
	w, ok := m.windows[pair]
	if !ok {
		w = New(m.capacity)
		m.windows[pair] = w
	}
	return w
}

// Update appends the latest log-spread for pair and returns the
// resulting Result (C2 `update`).
func (m *Manager) Update(pair string, spread float64) Result {
	return m.windowFor(pair).Update(spread)
}

// Stats returns a read-only snapshot for pair without mutating state
// (C2 `stats`).
func (m *Manager) Stats(pair string) (types.SpreadStats, bool) {
	w, ok := m.windows[pair]
	if !ok {
		return types.SpreadStats{}, false
	}
	r := w.Stats()
	if !r.Ready {
		return types.SpreadStats{}, false
	}
	return types.SpreadStats{Mean: r.Mean, StdDev: r.StdDev, Z: r.Z, Unstable: r.Unstable}, true
}

// Ready reports whether pair's window has reached full capacity.
func (m *Manager) Ready(pair string) bool {
	w, ok := m.windows[pair]
	return ok && w.Full()
}
