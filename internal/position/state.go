// Package position implements the per-pair position state machine (C6):
// Flat/Long/Short transitions driven by z-score thresholds and the
// filter stack's entry/exit opinions.
package position

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atlas-desktop/pairs-engine/internal/filters"
	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// Config holds the per-pair thresholds the state machine enforces.
// Validate must be called once at engine Initialize; the ordering
// constraint is a hard configuration error, not a runtime check.
type Config struct {
	ZEntry         float64
	ZExit          float64
	ZStop          float64
	MaxHoldingDays int
}

// Validate enforces z_stop > z_entry > z_exit >= 0 (spec §4.6).
func (c Config) Validate() error {
	if c.ZExit < 0 {
		return &types.ConfigError{Key: "z_exit", Reason: "must be >= 0"}
	}
	if !(c.ZEntry > c.ZExit) {
		return &types.ConfigError{Key: "z_entry", Reason: "must be strictly greater than z_exit"}
	}
	if !(c.ZStop > c.ZEntry) {
		return &types.ConfigError{Key: "z_stop", Reason: "must be strictly greater than z_entry"}
	}
	if c.MaxHoldingDays <= 0 {
		return &types.ConfigError{Key: "max_holding_days", Reason: "must be positive"}
	}
	return nil
}

// Transition describes what the state machine did on a single bar.
type Transition struct {
	Entered    bool
	Side       types.PositionSide
	Exited     bool
	ExitReason types.ExitReason
}

// Machine owns the PositionState for one pair and applies the ordered
// transition rules of spec §4.6.
type Machine struct {
	cfg   Config
	pair  types.Pair
	log   *zap.Logger
	state types.PositionState
}

// New constructs a Machine starting Flat for the given pair. cfg must
// already have passed Validate; New panics on an invalid config since
// that is a programmer/wiring error, not a runtime condition.
func New(pair types.Pair, cfg Config, log *zap.Logger) *Machine {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return &Machine{
		cfg:   cfg,
		pair:  pair,
		log:   log,
		state: types.PositionState{Pair: pair, Side: types.SideFlat},
	}
}

// State returns a copy of the current position state.
func (m *Machine) State() types.PositionState { return m.state }

// Flat reports whether the pair currently holds no position.
func (m *Machine) Flat() bool { return m.state.Side == types.SideFlat }

// EntrySnapshot captures the data the state machine stamps onto a
// position at entry time.
type EntrySnapshot struct {
	Spread       float64
	Z            float64
	Time         time.Time
	VIXTier      types.RegimeTier
	HalfLifeDays float64
	HasHalfLife  bool
}

// TryEnter attempts a Flat -> Long/Short transition. entryOutcome is
// the filter stack's consulted entry opinion for this bar; TryEnter
// does not itself consult the stack so callers can short-circuit when
// z is nowhere near the threshold.
//
// It is an invariant violation to call TryEnter while not Flat.
func (m *Machine) TryEnter(z float64, entry filters.EntryOutcome, snap EntrySnapshot) (Transition, error) {
	if m.state.Side != types.SideFlat {
		return Transition{}, &types.InvariantError{Reason: "TryEnter called while position is not Flat for pair " + m.pair.Name}
	}

	var side types.PositionSide
	switch {
	case z <= -m.cfg.ZEntry:
		side = types.SideLong
	case z >= m.cfg.ZEntry:
		side = types.SideShort
	default:
		return Transition{}, nil
	}

	if !entry.Allowed {
		return Transition{}, nil
	}

	m.state = types.PositionState{
		Pair:              m.pair,
		Side:              side,
		EntrySpread:       snap.Spread,
		EntryZ:            z,
		EntryTime:         snap.Time,
		EntryVIXTier:      snap.VIXTier,
		EntryHalfLifeDays: snap.HalfLifeDays,
		HasHalfLife:       snap.HasHalfLife,
	}

	if m.log != nil {
		m.log.Debug("position entered",
			zap.String("pair", m.pair.Name),
			zap.String("side", string(side)),
			zap.Float64("z", z),
		)
	}

	return Transition{Entered: true, Side: side}, nil
}

// EvaluateExit runs the strict ordered exit evaluation of spec §4.6
// against an open position. forceExit is the filter stack's exit
// consultation for this bar. now is the current bar timestamp, used to
// compute holding_days.
//
// It is an invariant violation to call EvaluateExit while Flat.
func (m *Machine) EvaluateExit(z float64, forceExit types.ExitReason, forceExitFired bool, now time.Time) (Transition, error) {
	if m.state.Side == types.SideFlat {
		return Transition{}, &types.InvariantError{Reason: "EvaluateExit called while position is Flat for pair " + m.pair.Name}
	}

	reason, exit := m.evaluate(z, forceExit, forceExitFired, now)
	if !exit {
		return Transition{}, nil
	}

	prevSide := m.state.Side
	m.state = types.PositionState{Pair: m.pair, Side: types.SideFlat}

	if m.log != nil {
		m.log.Debug("position exited",
			zap.String("pair", m.pair.Name),
			zap.String("prior_side", string(prevSide)),
			zap.String("reason", string(reason)),
			zap.Float64("z", z),
		)
	}

	return Transition{Exited: true, ExitReason: reason}, nil
}

func (m *Machine) evaluate(z float64, forceExit types.ExitReason, forceExitFired bool, now time.Time) (types.ExitReason, bool) {
	if forceExitFired {
		return forceExit, true
	}
	if math.Abs(z) >= m.cfg.ZStop {
		return types.ReasonStopLoss, true
	}
	if m.state.HoldingDays(now) >= m.cfg.MaxHoldingDays {
		return types.ReasonTimeout, true
	}
	switch m.state.Side {
	case types.SideLong:
		if z >= -m.cfg.ZExit {
			return types.ReasonMeanReversion, true
		}
	case types.SideShort:
		if z <= m.cfg.ZExit {
			return types.ReasonMeanReversion, true
		}
	}
	return "", false
}

// SetNotionalPerLeg records the per-leg notional the sizer committed
// to this position. Called once, immediately after a successful entry;
// an invariant violation while Flat.
func (m *Machine) SetNotionalPerLeg(amount decimal.Decimal) error {
	if m.state.Side == types.SideFlat {
		return &types.InvariantError{Reason: "SetNotionalPerLeg called on a Flat position for pair " + m.pair.Name}
	}
	m.state.NotionalPerLeg = amount
	return nil
}

// ForceFlat unconditionally clears the position, used when the engine
// must recover from a host error that leaves the pair's book state
// indeterminate (spec §7 Host error handling). It does not emit an
// exit tag; the caller is responsible for any required bookkeeping.
func (m *Machine) ForceFlat() {
	m.state = types.PositionState{Pair: m.pair, Side: types.SideFlat}
}
