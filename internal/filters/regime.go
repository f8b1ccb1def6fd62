package filters

import "github.com/atlas-desktop/pairs-engine/pkg/types"

// Regime applies the current tier's size multiplier to entries, vetoes
// entry outright when the multiplier is zero, and force-exits open
// positions on the one-shot crisis-liquidate signal (spec §4.5).
// Always enabled.
type Regime struct{}

func (Regime) Name() string { return "Regime" }

func (Regime) Entry(in Inputs) Decision {
	if in.Regime.SizeMultiplier <= 0 {
		return VetoEntry()
	}
	return AllowEntry(in.Regime.SizeMultiplier)
}

func (Regime) Exit(in Inputs) Decision {
	if in.Regime.CrisisLiquidate {
		return ForceExit(types.ReasonVIXCrisis)
	}
	return NoOpinion()
}
