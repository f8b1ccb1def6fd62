package filters_test

import (
	"testing"

	"github.com/atlas-desktop/pairs-engine/internal/filters"
	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

func baseInputs() filters.Inputs {
	return filters.Inputs{
		StatsReady: true,
		Regime:     types.RegimeState{SizeMultiplier: 1.0, Tier: types.TierNormal},
		Cointegration: types.CointegrationMetrics{IsValid: true},
		HasCointegration: true,
	}
}

func newStack(coint, spread bool, critical float64) *filters.Stack {
	return filters.NewStack(
		filters.DataReady{},
		filters.Regime{},
		filters.Cointegration{Enabled: coint},
		filters.SpreadDeviation{Enabled: spread, Critical: critical},
	)
}

func TestEntryVetoedWhenDataNotReady(t *testing.T) {
	s := newStack(true, false, 3.5)
	in := baseInputs()
	in.StatsReady = false

	out := s.ConsultEntry(in)
	if out.Allowed {
		t.Fatal("expected entry vetoed when stats not ready")
	}
}

func TestEntryMultiplierFromRegime(t *testing.T) {
	s := newStack(true, false, 3.5)
	in := baseInputs()
	in.Regime.SizeMultiplier = 0.4

	out := s.ConsultEntry(in)
	if !out.Allowed {
		t.Fatal("expected entry allowed")
	}
	if out.Multiplier != 0.4 {
		t.Errorf("multiplier = %v, want 0.4", out.Multiplier)
	}
}

func TestEntryVetoedWhenRegimeMultiplierZero(t *testing.T) {
	s := newStack(true, false, 3.5)
	in := baseInputs()
	in.Regime.SizeMultiplier = 0

	out := s.ConsultEntry(in)
	if out.Allowed {
		t.Fatal("expected entry vetoed at zero regime multiplier")
	}
}

func TestEntryVetoedWhenCointegrationInvalid(t *testing.T) {
	s := newStack(true, false, 3.5)
	in := baseInputs()
	in.Cointegration.IsValid = false

	out := s.ConsultEntry(in)
	if out.Allowed {
		t.Fatal("expected entry vetoed on invalid cointegration")
	}
}

func TestCointegrationFilterDisabledHasNoOpinion(t *testing.T) {
	s := newStack(false, false, 3.5)
	in := baseInputs()
	in.Cointegration.IsValid = false

	out := s.ConsultEntry(in)
	if !out.Allowed {
		t.Fatal("expected entry allowed when cointegration filter disabled, even with invalid diagnostics")
	}
}

func TestForceExitOnCrisisOutranksEverything(t *testing.T) {
	s := newStack(true, true, 3.5)
	in := baseInputs()
	in.Regime.CrisisLiquidate = true
	in.Z = 10 // would also trip spread-deviation if reached

	reason, exited := s.ConsultExit(in)
	if !exited {
		t.Fatal("expected a force-exit")
	}
	if reason != types.ReasonVIXCrisis {
		t.Errorf("reason = %v, want VIX_CRISIS (Regime precedes SpreadDeviation in stack order)", reason)
	}
}

func TestForceExitOnBrokenCointegration(t *testing.T) {
	s := newStack(true, false, 3.5)
	in := baseInputs()
	in.CointegrationBroken = true

	reason, exited := s.ConsultExit(in)
	if !exited || reason != types.ReasonBrokenCointegration {
		t.Fatalf("reason = %v, exited = %v, want BROKEN_COINTEGRATION", reason, exited)
	}
}

func TestForceExitOnSpreadDeviation(t *testing.T) {
	s := newStack(true, true, 3.5)
	in := baseInputs()
	in.Z = 4.0

	reason, exited := s.ConsultExit(in)
	if !exited || reason != types.ReasonSpreadCritical {
		t.Fatalf("reason = %v, exited = %v, want SPREAD_CRITICAL", reason, exited)
	}
}

func TestNoForceExitWhenNothingTriggers(t *testing.T) {
	s := newStack(true, true, 3.5)
	in := baseInputs()
	in.Z = 1.0

	_, exited := s.ConsultExit(in)
	if exited {
		t.Fatal("expected no force-exit")
	}
}
