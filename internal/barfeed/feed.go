// Package barfeed implements the bar feed adapter (C1): delivering
// synchronous, timestamp-aligned bars for each subscribed symbol and
// enforcing the StaleData guard against missing legs or out-of-order
// ticks.
package barfeed

import (
	"time"

	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// Tick is one timestep's complete input: the bars-by-symbol map, the
// tick's timestamp, and the concurrent VIX reading.
type Tick struct {
	Time time.Time
	Bars map[string]types.Bar
	VIX  float64
}

// Feed is the C1 contract both the production (host-driven) and
// replay (local harness) paths satisfy.
type Feed interface {
	// Next returns the next tick. ok is false when no tick is
	// available: a ReplayFeed exhausts at end-of-file, a HostFeed
	// whenever nothing has been pushed since the previous Next.
	Next() (Tick, bool, error)
}

// RequiredSymbols flattens a pair universe into the distinct set of
// leg symbols the engine must see a bar for every tick.
func RequiredSymbols(pairs []types.PairSpec) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range pairs {
		for _, sym := range [2]string{p.Long, p.Short} {
			if !seen[sym] {
				seen[sym] = true
				out = append(out, sym)
			}
		}
	}
	return out
}

// Validator enforces the two C1 invariants shared by every Feed
// implementation: ticks arrive in strictly increasing timestamp order, and
// every required symbol has a non-null bar. It holds the minimal
// cross-tick state (the last-seen timestamp) needed to detect
// out-of-order delivery.
type Validator struct {
	required []string
	lastTick time.Time
	haveLast bool
}

// NewValidator constructs a Validator for the given required symbol
// set.
func NewValidator(required []string) *Validator {
	return &Validator{required: required}
}

// Validate checks one tick. Timestamps must be strictly increasing
// across calls; an out-of-order or exactly repeated tick (the
// duplicate-bar idempotence case of spec §8) is returned as a
// *types.StaleDataError naming the tick itself (symbol left blank).
// Missing individual legs are returned as the `missing` slice so the
// engine can skip only the pairs whose legs are incomplete rather than
// rejecting the whole tick, per spec §4.1.
func (v *Validator) Validate(tick Tick) (missing []string, err error) {
	if v.haveLast && !tick.Time.After(v.lastTick) {
		return nil, &types.StaleDataError{Symbol: "", Reason: "tick timestamp is not strictly increasing"}
	}
	v.lastTick = tick.Time
	v.haveLast = true

	for _, sym := range v.required {
		bar, ok := tick.Bars[sym]
		if !ok || bar.Symbol == "" {
			missing = append(missing, sym)
		}
	}
	return missing, nil
}
