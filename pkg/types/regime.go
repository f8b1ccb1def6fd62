package types

// RegimeTier is the discrete VIX-driven sizing tier (C4).
type RegimeTier string

const (
	TierNormal  RegimeTier = "NORMAL"
	TierWarning RegimeTier = "WARNING"
	TierHigh    RegimeTier = "HIGH"
	TierCrisis  RegimeTier = "CRISIS"
)

// RegimeState is the process-wide, engine-owned regime snapshot (spec
// §3). CrisisLiquidate is a one-shot flag: true only on the single bar
// the tier first transitions into CRISIS.
type RegimeState struct {
	CurrentVIX      float64
	Tier            RegimeTier
	SizeMultiplier  float64
	CrisisLiquidate bool
}
