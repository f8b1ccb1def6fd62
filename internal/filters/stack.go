package filters

import "github.com/atlas-desktop/pairs-engine/pkg/types"

// Stack holds the fixed, ordered filter list (spec §4.5: DataReady,
// Regime, Cointegration, SpreadDeviation, in that order) and applies
// the composition rule: ForceExit outranks VetoEntry outranks
// AllowEntry, and the resulting size multiplier is the product of
// every filter's own multiplier.
type Stack struct {
	filters []Filter
}

// NewStack builds the stack in the spec's mandated evaluation order.
func NewStack(dataReady DataReady, regime Regime, coint Cointegration, spread SpreadDeviation) *Stack {
	return &Stack{filters: []Filter{dataReady, regime, coint, spread}}
}

// EntryOutcome is the consulted result of the stack for an entry
// decision.
type EntryOutcome struct {
	Allowed    bool
	Multiplier float64
}

// ConsultEntry evaluates every filter's Entry opinion in order and
// composes the result.
func (s *Stack) ConsultEntry(in Inputs) EntryOutcome {
	allowed := true
	multiplier := 1.0

	for _, f := range s.filters {
		d := f.Entry(in)
		switch {
		case d.IsVetoEntry():
			allowed = false
		case d.IsAllowEntry():
			multiplier *= d.Multiplier()
		}
	}

	if !allowed {
		return EntryOutcome{Allowed: false, Multiplier: 0}
	}
	return EntryOutcome{Allowed: true, Multiplier: multiplier}
}

// ConsultExit evaluates every filter's Exit opinion in the stack's
// declared order and returns the first ForceExit reason encountered
// (spec: filters are evaluated in their declared order; ForceExit is
// the only exit-side outcome a filter may produce).
func (s *Stack) ConsultExit(in Inputs) (types.ExitReason, bool) {
	for _, f := range s.filters {
		d := f.Exit(in)
		if d.IsForceExit() {
			return d.ExitReason(), true
		}
	}
	return "", false
}
