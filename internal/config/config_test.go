package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atlas-desktop/pairs-engine/internal/config"
	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const validYAML = `
pairs:
  - long: PNC
    short: KBE
    name: PNC_KBE
lookback_period: 30
z_entry: 2.0
z_exit: 0.5
z_stop: 4.0
max_holding_days: 30
allocation_per_pair: 0.1
enable_adf_filter: true
adf_pmax: 0.1
enable_half_life_filter: true
half_life_max_days: 30
enable_spread_filter: true
z_spread_critical: 3.5
vix_thresholds:
  warning: 20
  high: 30
  crisis: 40
vix_multipliers:
  normal: 1.0
  warning: 0.7
  high: 0.4
  crisis: 0.0
gross_leverage_max: 2.0
`

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, validYAML)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Pairs) != 1 || cfg.Pairs[0].Name != "PNC_KBE" {
		t.Errorf("pairs = %+v", cfg.Pairs)
	}
	if cfg.ZEntry != 2.0 || cfg.ZStop != 4.0 {
		t.Errorf("thresholds not bound correctly: %+v", cfg)
	}
	if cfg.VIXMultipliers[types.TierCrisis] != 0.0 {
		t.Errorf("crisis multiplier = %v, want 0.0", cfg.VIXMultipliers[types.TierCrisis])
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, validYAML+"\nunknown_key: 123\n")
	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for unrecognised key")
	}
	if _, ok := err.(*types.ConfigError); !ok {
		t.Fatalf("expected *types.ConfigError, got %T", err)
	}
}

func TestLoadRejectsBadOrdering(t *testing.T) {
	bad := `
pairs:
  - long: PNC
    short: KBE
    name: PNC_KBE
lookback_period: 30
z_entry: 2.0
z_exit: 2.0
z_stop: 4.0
max_holding_days: 30
allocation_per_pair: 0.1
vix_thresholds:
  warning: 20
  high: 30
  crisis: 40
vix_multipliers:
  normal: 1.0
  warning: 0.7
  high: 0.4
  crisis: 0.0
gross_leverage_max: 2.0
`
	path := writeConfig(t, bad)
	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected config error for z_entry == z_exit")
	}
}

func TestLoadRejectsOutOfRangeAllocation(t *testing.T) {
	bad := `
pairs:
  - long: PNC
    short: KBE
    name: PNC_KBE
lookback_period: 30
z_entry: 2.0
z_exit: 0.5
z_stop: 4.0
max_holding_days: 30
allocation_per_pair: 1.5
vix_thresholds:
  warning: 20
  high: 30
  crisis: 40
vix_multipliers:
  normal: 1.0
  warning: 0.7
  high: 0.4
  crisis: 0.0
gross_leverage_max: 2.0
`
	path := writeConfig(t, bad)
	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected config error for allocation_per_pair > 1")
	}
}

func TestLoadRejectsMissingTierMultiplier(t *testing.T) {
	bad := `
pairs:
  - long: PNC
    short: KBE
    name: PNC_KBE
lookback_period: 30
z_entry: 2.0
z_exit: 0.5
z_stop: 4.0
max_holding_days: 30
allocation_per_pair: 0.1
adf_pmax: 0.1
half_life_max_days: 30
vix_thresholds:
  warning: 20
  high: 30
  crisis: 40
vix_multipliers:
  normal: 1.0
  warning: 0.7
  high: 0.4
gross_leverage_max: 2.0
`
	path := writeConfig(t, bad)
	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected config error for missing crisis tier multiplier")
	}
}

func TestLoadRejectsNoPairs(t *testing.T) {
	bad := `
pairs: []
lookback_period: 30
z_entry: 2.0
z_exit: 0.5
z_stop: 4.0
max_holding_days: 30
allocation_per_pair: 0.1
vix_thresholds:
  warning: 20
  high: 30
  crisis: 40
vix_multipliers:
  normal: 1.0
  warning: 0.7
  high: 0.4
  crisis: 0.0
gross_leverage_max: 2.0
`
	path := writeConfig(t, bad)
	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected config error for empty pair universe")
	}
}
