// Package regime classifies the process-wide VIX regime into a sizing
// tier with crisis debouncing (C4).
package regime

import "github.com/atlas-desktop/pairs-engine/pkg/types"

// debounceBars is the number of consecutive bars a new tier must be
// observed before the classifier switches to it (spec §4.4).
const debounceBars = 2

// Classifier owns the single process-wide RegimeState (spec §9: the
// only process-wide mutable, explicitly threaded through component
// calls rather than a package-level global).
type Classifier struct {
	thresholds  types.VIXThresholds
	multipliers map[types.RegimeTier]float64

	currentTier   types.RegimeTier
	pendingTier   types.RegimeTier
	pendingStreak int
	everObserved  bool

	wasCrisis bool
}

// NewClassifier creates a regime classifier from the ascending VIX
// thresholds and per-tier size multipliers bound at Initialize.
func NewClassifier(thresholds types.VIXThresholds, multipliers map[types.RegimeTier]float64) *Classifier {
	return &Classifier{
		thresholds:  thresholds,
		multipliers: multipliers,
		currentTier: types.TierNormal,
	}
}

// tierFor maps a VIX level to the smallest tier containing it (spec
// §4.4: ascending thresholds, smallest containing tier wins).
func (c *Classifier) tierFor(vix float64) types.RegimeTier {
	switch {
	case vix >= c.thresholds.Crisis:
		return types.TierCrisis
	case vix >= c.thresholds.High:
		return types.TierHigh
	case vix >= c.thresholds.Warning:
		return types.TierWarning
	default:
		return types.TierNormal
	}
}

// Update consumes the latest VIX bar and returns the resulting
// RegimeState, including the one-shot CrisisLiquidate signal (spec
// §4.4: raised only on the bar the tier first transitions into
// CRISIS; suppressed on subsequent CRISIS bars until the tier leaves
// CRISIS and re-enters).
func (c *Classifier) Update(vix float64) types.RegimeState {
	observed := c.tierFor(vix)

	if !c.everObserved {
		c.everObserved = true
		c.currentTier = observed
		c.pendingTier = observed
		c.pendingStreak = debounceBars
	} else if observed == c.currentTier {
		c.pendingTier = observed
		c.pendingStreak = 0
	} else {
		if observed == c.pendingTier {
			c.pendingStreak++
		} else {
			c.pendingTier = observed
			c.pendingStreak = 1
		}
		if c.pendingStreak >= debounceBars {
			c.currentTier = observed
			c.pendingStreak = 0
		}
	}

	crisisLiquidate := false
	if c.currentTier == types.TierCrisis && !c.wasCrisis {
		crisisLiquidate = true
	}
	c.wasCrisis = c.currentTier == types.TierCrisis

	return types.RegimeState{
		CurrentVIX:      vix,
		Tier:            c.currentTier,
		SizeMultiplier:  c.multipliers[c.currentTier],
		CrisisLiquidate: crisisLiquidate,
	}
}
