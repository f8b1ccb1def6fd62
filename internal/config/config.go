// Package config implements parameter binding (C9): materialising the
// engine's complete configuration from a flat, enumerated key set at
// initialisation, with unknown keys treated as a hard error.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// recognisedKeys is the complete set from spec §6. Anything in the
// loaded file or environment outside this set is a *types.ConfigError,
// not a silently ignored value.
var recognisedKeys = map[string]bool{
	"pairs":                   true,
	"lookback_period":         true,
	"z_entry":                 true,
	"z_exit":                  true,
	"z_stop":                  true,
	"max_holding_days":        true,
	"allocation_per_pair":     true,
	"enable_adf_filter":       true,
	"adf_pmax":                true,
	"enable_half_life_filter": true,
	"half_life_max_days":      true,
	"enable_pre_entry_check":  true,
	"enable_spread_filter":    true,
	"z_spread_critical":       true,
	"vix_thresholds":          true,
	"vix_multipliers":         true,
	"gross_leverage_max":      true,
}

type rawPair struct {
	Long  string `mapstructure:"long"`
	Short string `mapstructure:"short"`
	Name  string `mapstructure:"name"`
}

type rawVIXThresholds struct {
	Warning float64 `mapstructure:"warning"`
	High    float64 `mapstructure:"high"`
	Crisis  float64 `mapstructure:"crisis"`
}

type rawConfig struct {
	Pairs                []rawPair          `mapstructure:"pairs"`
	LookbackPeriod       int                `mapstructure:"lookback_period"`
	ZEntry               float64            `mapstructure:"z_entry"`
	ZExit                float64            `mapstructure:"z_exit"`
	ZStop                float64            `mapstructure:"z_stop"`
	MaxHoldingDays       int                `mapstructure:"max_holding_days"`
	AllocationPerPair    float64            `mapstructure:"allocation_per_pair"`
	EnableADFFilter      bool               `mapstructure:"enable_adf_filter"`
	ADFPMax              float64            `mapstructure:"adf_pmax"`
	EnableHalfLifeFilter bool               `mapstructure:"enable_half_life_filter"`
	HalfLifeMaxDays      float64            `mapstructure:"half_life_max_days"`
	EnablePreEntryCheck  bool               `mapstructure:"enable_pre_entry_check"`
	EnableSpreadFilter   bool               `mapstructure:"enable_spread_filter"`
	ZSpreadCritical      float64            `mapstructure:"z_spread_critical"`
	VIXThresholds        rawVIXThresholds   `mapstructure:"vix_thresholds"`
	VIXMultipliers       map[string]float64 `mapstructure:"vix_multipliers"`
	GrossLeverageMax     float64            `mapstructure:"gross_leverage_max"`
}

// Load reads path (any format viper supports by extension — YAML/JSON/
// TOML) and environment overrides, rejects unrecognised keys, and
// returns a fully validated types.EngineConfig. Called once at engine
// Initialize; there is no runtime reload (spec §4.9).
func Load(path string) (types.EngineConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("PAIRS_ENGINE")
	v.AutomaticEnv()

	v.SetDefault("enable_adf_filter", true)
	v.SetDefault("enable_half_life_filter", true)
	v.SetDefault("enable_spread_filter", false)
	v.SetDefault("enable_pre_entry_check", false)

	if err := v.ReadInConfig(); err != nil {
		return types.EngineConfig{}, &types.ConfigError{Key: path, Reason: fmt.Sprintf("reading config: %v", err)}
	}

	if err := rejectUnknownKeys(v.AllSettings()); err != nil {
		return types.EngineConfig{}, err
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return types.EngineConfig{}, &types.ConfigError{Key: path, Reason: fmt.Sprintf("unmarshal: %v", err)}
	}

	cfg, err := materialise(raw)
	if err != nil {
		return types.EngineConfig{}, err
	}
	if err := Validate(cfg); err != nil {
		return types.EngineConfig{}, err
	}
	return cfg, nil
}

// rejectUnknownKeys walks the top-level settings viper parsed and
// rejects any key outside recognisedKeys. viper.Unmarshal alone
// silently drops unknown keys, which would violate spec §4.9/§7's
// requirement that unknown keys be errors.
func rejectUnknownKeys(settings map[string]interface{}) error {
	for key := range settings {
		if !recognisedKeys[key] {
			return &types.ConfigError{Key: key, Reason: "unrecognised configuration key"}
		}
	}
	return nil
}

func materialise(raw rawConfig) (types.EngineConfig, error) {
	pairs := make([]types.PairSpec, 0, len(raw.Pairs))
	for _, p := range raw.Pairs {
		if p.Long == "" || p.Short == "" || p.Name == "" {
			return types.EngineConfig{}, &types.ConfigError{Key: "pairs", Reason: "every pair requires long, short, and name"}
		}
		pairs = append(pairs, types.PairSpec{Long: p.Long, Short: p.Short, Name: p.Name})
	}

	multipliers := make(map[types.RegimeTier]float64, len(raw.VIXMultipliers))
	for tierName, mult := range raw.VIXMultipliers {
		tier, err := parseTier(tierName)
		if err != nil {
			return types.EngineConfig{}, err
		}
		multipliers[tier] = mult
	}

	return types.EngineConfig{
		Pairs:                pairs,
		LookbackPeriod:       raw.LookbackPeriod,
		ZEntry:               raw.ZEntry,
		ZExit:                raw.ZExit,
		ZStop:                raw.ZStop,
		MaxHoldingDays:       raw.MaxHoldingDays,
		AllocationPerPair:    raw.AllocationPerPair,
		EnableADFFilter:      raw.EnableADFFilter,
		ADFPMax:              raw.ADFPMax,
		EnableHalfLifeFilter: raw.EnableHalfLifeFilter,
		HalfLifeMaxDays:      raw.HalfLifeMaxDays,
		EnablePreEntryCheck:  raw.EnablePreEntryCheck,
		EnableSpreadFilter:   raw.EnableSpreadFilter,
		ZSpreadCritical:      raw.ZSpreadCritical,
		VIXThresholds: types.VIXThresholds{
			Warning: raw.VIXThresholds.Warning,
			High:    raw.VIXThresholds.High,
			Crisis:  raw.VIXThresholds.Crisis,
		},
		VIXMultipliers:   multipliers,
		GrossLeverageMax: raw.GrossLeverageMax,
	}, nil
}

func parseTier(name string) (types.RegimeTier, error) {
	switch name {
	case "normal":
		return types.TierNormal, nil
	case "warning":
		return types.TierWarning, nil
	case "high":
		return types.TierHigh, nil
	case "crisis":
		return types.TierCrisis, nil
	default:
		return "", &types.ConfigError{Key: "vix_multipliers", Reason: fmt.Sprintf("unrecognised tier %q", name)}
	}
}
