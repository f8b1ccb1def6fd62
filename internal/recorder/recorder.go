// Package recorder implements the equity recorder (C8): an append-only
// equity curve, the emitted order-tag stream, and the final
// parsed-results performance summary.
package recorder

import (
	"sync"

	"go.uber.org/zap"

	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// Recorder accumulates the engine's equity curve, emitted tags, and
// closed trades across the run. It is the single owner of this state
// (spec §5); concurrent readers (the diagnostics server) only ever see
// immutable snapshots taken under its mutex.
type Recorder struct {
	mu sync.RWMutex

	log *zap.Logger

	equity []types.EquityPoint
	tags   []string
	trades []types.ClosedTrade

	lastTimestampMs int64
	haveLast        bool
}

// New constructs an empty Recorder.
func New(log *zap.Logger) *Recorder {
	return &Recorder{log: log}
}

// RecordEquity appends a new EquityPoint. The timestamp must be
// strictly greater than the previously recorded one (spec §3,
// invariant 5); violations are an invariant error rather than silently
// dropped, since a non-monotonic equity curve indicates the host or
// engine fed bars out of order past whatever earlier check should have
// caught it.
func (r *Recorder) RecordEquity(point types.EquityPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.haveLast && point.TimestampUTCMs <= r.lastTimestampMs {
		return &types.InvariantError{Reason: "equity point timestamp is not strictly increasing"}
	}
	r.equity = append(r.equity, point)
	r.lastTimestampMs = point.TimestampUTCMs
	r.haveLast = true
	return nil
}

// RecordTag appends an emitted order tag to the audit stream.
func (r *Recorder) RecordTag(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = append(r.tags, tag)
}

// RecordTrade appends a closed round-trip trade, used at shutdown to
// compute the parsed-results summary.
func (r *Recorder) RecordTrade(trade types.ClosedTrade) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = append(r.trades, trade)
}

// EquitySnapshot returns a copy of the equity curve recorded so far.
func (r *Recorder) EquitySnapshot() []types.EquityPoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.EquityPoint, len(r.equity))
	copy(out, r.equity)
	return out
}

// TagsSnapshot returns a copy of the tag stream recorded so far.
func (r *Recorder) TagsSnapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.tags))
	copy(out, r.tags)
	return out
}

// Finalize computes the parsed-results summary from the complete trade
// list and bundles it with the tag stream and equity curve (spec §4.8,
// §6 Final results contract). Called once at shutdown.
func (r *Recorder) Finalize() types.EngineResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return types.EngineResult{
		Results:     computeParsedResults(r.trades, r.equity),
		Tags:        append([]string(nil), r.tags...),
		EquityCurve: append([]types.EquityPoint(nil), r.equity...),
	}
}
