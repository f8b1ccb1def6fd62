package filters

import "github.com/atlas-desktop/pairs-engine/pkg/types"

// Cointegration vetoes entry whenever the cached ADF/half-life
// diagnostics are not valid, and force-exits an open position the
// weekly refresh that flips validity from true to false (spec §4.5).
// Configurable, on by default.
type Cointegration struct {
	Enabled bool
}

func (Cointegration) Name() string { return "Cointegration" }

func (c Cointegration) Entry(in Inputs) Decision {
	if !c.Enabled {
		return NoOpinion()
	}
	if !in.HasCointegration || !in.Cointegration.IsValid {
		return VetoEntry()
	}
	return NoOpinion()
}

func (c Cointegration) Exit(in Inputs) Decision {
	if !c.Enabled {
		return NoOpinion()
	}
	if in.CointegrationBroken {
		return ForceExit(types.ReasonBrokenCointegration)
	}
	return NoOpinion()
}
