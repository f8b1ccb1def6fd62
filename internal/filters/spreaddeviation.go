package filters

import "github.com/atlas-desktop/pairs-engine/pkg/types"

// SpreadDeviation force-exits an open position when the absolute
// z-score exceeds a critical threshold, independent of the state
// machine's own stop-loss level. It has no entry opinion. Disabled by
// default (spec §4.5).
type SpreadDeviation struct {
	Enabled  bool
	Critical float64
}

func (SpreadDeviation) Name() string { return "SpreadDeviation" }

func (SpreadDeviation) Entry(Inputs) Decision { return NoOpinion() }

func (s SpreadDeviation) Exit(in Inputs) Decision {
	if !s.Enabled {
		return NoOpinion()
	}
	if abs(in.Z) > s.Critical {
		return ForceExit(types.ReasonSpreadCritical)
	}
	return NoOpinion()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
