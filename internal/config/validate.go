package config

import (
	"github.com/atlas-desktop/pairs-engine/internal/position"
	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// Validate enforces every config-time range and ordering constraint
// from spec §4.6/§4.9/§7. Ordering of z_stop/z_entry/z_exit is
// delegated to position.Config.Validate so the single source of truth
// for that rule lives with the state machine that depends on it.
func Validate(cfg types.EngineConfig) error {
	if len(cfg.Pairs) == 0 {
		return &types.ConfigError{Key: "pairs", Reason: "at least one pair is required"}
	}
	seen := make(map[string]bool, len(cfg.Pairs))
	for _, p := range cfg.Pairs {
		if seen[p.Name] {
			return &types.ConfigError{Key: "pairs", Reason: "duplicate pair name " + p.Name}
		}
		seen[p.Name] = true
	}

	if cfg.LookbackPeriod < 2 {
		return &types.ConfigError{Key: "lookback_period", Reason: "must be >= 2"}
	}

	posCfg := position.Config{
		ZEntry:         cfg.ZEntry,
		ZExit:          cfg.ZExit,
		ZStop:          cfg.ZStop,
		MaxHoldingDays: cfg.MaxHoldingDays,
	}
	if err := posCfg.Validate(); err != nil {
		return err
	}

	if cfg.AllocationPerPair <= 0 || cfg.AllocationPerPair > 1 {
		return &types.ConfigError{Key: "allocation_per_pair", Reason: "must be in (0, 1]"}
	}

	if cfg.EnableADFFilter {
		if cfg.ADFPMax <= 0 || cfg.ADFPMax >= 1 {
			return &types.ConfigError{Key: "adf_pmax", Reason: "must be in (0, 1) when enable_adf_filter is true"}
		}
	}
	if cfg.EnableHalfLifeFilter {
		if cfg.HalfLifeMaxDays <= 0 {
			return &types.ConfigError{Key: "half_life_max_days", Reason: "must be positive when enable_half_life_filter is true"}
		}
	}
	if cfg.EnableSpreadFilter {
		if cfg.ZSpreadCritical <= 0 {
			return &types.ConfigError{Key: "z_spread_critical", Reason: "must be positive when enable_spread_filter is true"}
		}
	}

	t := cfg.VIXThresholds
	if !(0 < t.Warning && t.Warning < t.High && t.High < t.Crisis) {
		return &types.ConfigError{Key: "vix_thresholds", Reason: "must satisfy 0 < warning < high < crisis"}
	}

	for _, tier := range []types.RegimeTier{types.TierNormal, types.TierWarning, types.TierHigh, types.TierCrisis} {
		mult, ok := cfg.VIXMultipliers[tier]
		if !ok {
			return &types.ConfigError{Key: "vix_multipliers", Reason: "missing multiplier for tier " + string(tier)}
		}
		if mult < 0 || mult > 1 {
			return &types.ConfigError{Key: "vix_multipliers", Reason: "multiplier for tier " + string(tier) + " must be in [0, 1]"}
		}
	}

	if cfg.GrossLeverageMax <= 0 {
		return &types.ConfigError{Key: "gross_leverage_max", Reason: "must be positive"}
	}

	return nil
}
