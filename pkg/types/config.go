package types

// VIXThresholds are the ascending VIX cutoffs separating the four
// sizing tiers (spec §4.4, §6).
type VIXThresholds struct {
	Warning float64
	High    float64
	Crisis  float64
}

// PairSpec is one entry of the externally supplied pair universe.
type PairSpec struct {
	Long  string
	Short string
	Name  string
}

// EngineConfig is the materialised result of C9 parameter binding: the
// complete, validated set of recognised configuration keys from spec
// §6. It is built once at Initialize and never reloaded at runtime.
type EngineConfig struct {
	Pairs []PairSpec

	LookbackPeriod   int
	ZEntry           float64
	ZExit            float64
	ZStop            float64
	MaxHoldingDays   int
	AllocationPerPair float64

	EnableADFFilter      bool
	ADFPMax              float64
	EnableHalfLifeFilter bool
	HalfLifeMaxDays      float64
	EnablePreEntryCheck  bool

	EnableSpreadFilter bool
	ZSpreadCritical    float64

	VIXThresholds  VIXThresholds
	VIXMultipliers map[RegimeTier]float64

	GrossLeverageMax float64
}

// EnableADFOrHalfLife reports whether either leg of the cointegration
// filter is active, which controls whether order tags carry an HL=
// segment (spec §6).
func (c EngineConfig) EnableADFOrHalfLife() bool {
	return c.EnableADFFilter || c.EnableHalfLifeFilter
}
