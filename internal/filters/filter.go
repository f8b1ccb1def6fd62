// Package filters implements the fixed, ordered filter stack (C5):
// DataReady, Regime, Cointegration, SpreadDeviation.
package filters

import "github.com/atlas-desktop/pairs-engine/pkg/types"

// Decision is the closed sum type every filter returns. Exactly one of
// the four cases applies per filter per bar (spec §9: a fixed sum type
// with exhaustive match, not an open plugin system).
type Decision struct {
	kind           decisionKind
	entryMultiplier float64
	exitReason     types.ExitReason
}

type decisionKind int

const (
	kindNoOpinion decisionKind = iota
	kindAllowEntry
	kindVetoEntry
	kindForceExit
)

func NoOpinion() Decision { return Decision{kind: kindNoOpinion} }

func AllowEntry(multiplier float64) Decision {
	return Decision{kind: kindAllowEntry, entryMultiplier: multiplier}
}

func VetoEntry() Decision { return Decision{kind: kindVetoEntry} }

func ForceExit(reason types.ExitReason) Decision {
	return Decision{kind: kindForceExit, exitReason: reason}
}

func (d Decision) IsForceExit() bool { return d.kind == kindForceExit }
func (d Decision) IsVetoEntry() bool { return d.kind == kindVetoEntry }
func (d Decision) IsAllowEntry() bool { return d.kind == kindAllowEntry }

func (d Decision) ExitReason() types.ExitReason { return d.exitReason }

// Multiplier returns the entry size multiplier this decision
// contributes: the AllowEntry value, or 1.0 for every other case (spec
// §4.5 composition rule: "default 1.0").
func (d Decision) Multiplier() float64 {
	if d.kind == kindAllowEntry {
		return d.entryMultiplier
	}
	return 1.0
}

// Filter is one ordered predicate in the stack. Inputs is deliberately
// small and explicit rather than a God-object context, mirroring the
// spec's emphasis on auditable, narrow component contracts.
type Filter interface {
	Name() string
	Entry(in Inputs) Decision
	Exit(in Inputs) Decision
}

// Inputs bundles everything a filter needs to decide, for one pair on
// one bar.
type Inputs struct {
	StatsReady    bool
	StatsUnstable bool
	StaleBar      bool

	Regime types.RegimeState

	Cointegration      types.CointegrationMetrics
	HasCointegration    bool
	CointegrationBroken bool // true only on the bar validity flips from true to false

	Z float64
}
