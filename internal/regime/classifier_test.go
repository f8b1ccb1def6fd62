package regime_test

import (
	"testing"

	"github.com/atlas-desktop/pairs-engine/internal/regime"
	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

func newTestClassifier() *regime.Classifier {
	thresholds := types.VIXThresholds{Warning: 20, High: 30, Crisis: 40}
	multipliers := map[types.RegimeTier]float64{
		types.TierNormal:  1.0,
		types.TierWarning: 0.7,
		types.TierHigh:    0.4,
		types.TierCrisis:  0.0,
	}
	return regime.NewClassifier(thresholds, multipliers)
}

func TestClassifierTierSelection(t *testing.T) {
	c := newTestClassifier()
	if got := c.Update(15).Tier; got != types.TierNormal {
		t.Errorf("vix=15: tier = %v, want NORMAL", got)
	}
}

func TestClassifierDebounceSuppressesSingleBarNoise(t *testing.T) {
	c := newTestClassifier()
	c.Update(15) // establish NORMAL

	state := c.Update(45) // one bar into CRISIS territory
	if state.Tier != types.TierNormal {
		t.Fatalf("expected tier to stay NORMAL after a single crisis-level bar, got %v", state.Tier)
	}
	if state.CrisisLiquidate {
		t.Fatal("did not expect crisis_liquidate on the first crisis-level bar")
	}

	back := c.Update(15) // returns before debounce confirms
	if back.Tier != types.TierNormal {
		t.Fatalf("expected tier NORMAL after reverting, got %v", back.Tier)
	}
	if back.CrisisLiquidate {
		t.Fatal("crisis_liquidate must not fire when debounce was never satisfied")
	}
}

func TestClassifierCrisisOneShot(t *testing.T) {
	c := newTestClassifier()
	c.Update(15)
	c.Update(45) // streak 1
	second := c.Update(45) // streak 2: switches to CRISIS, one-shot fires

	if second.Tier != types.TierCrisis {
		t.Fatalf("expected CRISIS after two consecutive crisis-level bars, got %v", second.Tier)
	}
	if !second.CrisisLiquidate {
		t.Fatal("expected crisis_liquidate on the bar the tier switches into CRISIS")
	}

	third := c.Update(46)
	if third.CrisisLiquidate {
		t.Fatal("crisis_liquidate must not re-fire on subsequent CRISIS bars")
	}
}

func TestClassifierSizeMultiplierByTier(t *testing.T) {
	c := newTestClassifier()
	c.Update(25)
	first := c.Update(25)
	if first.SizeMultiplier != 0.7 {
		t.Errorf("WARNING multiplier = %v, want 0.7", first.SizeMultiplier)
	}
}
