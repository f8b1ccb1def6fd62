package sizing_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/atlas-desktop/pairs-engine/internal/sizing"
)

func TestTargetNotionalMultipliesAllFactors(t *testing.T) {
	s := sizing.NewSizer(0.1, 2.0)
	// 100000 * 0.1 * 0.5 (filter) * 0.7 (regime) = 3500
	got := s.TargetNotional(100000, 0.5, 0.7)
	want := decimal.NewFromFloat(3500)
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestCapGrossLeverageNoOpWhenWithinBound(t *testing.T) {
	s := sizing.NewSizer(0.1, 2.0)
	intents := []sizing.Intent{
		{PairName: "A", NotionalPerLeg: decimal.NewFromFloat(1000)},
		{PairName: "B", NotionalPerLeg: decimal.NewFromFloat(1000)},
	}
	out := s.CapGrossLeverage(intents, decimal.Zero, 100000) // cap = 200000, sum = 2000
	for i, in := range out {
		if !in.NotionalPerLeg.Equal(intents[i].NotionalPerLeg) {
			t.Errorf("intent %d shrunk unexpectedly: %s", i, in.NotionalPerLeg)
		}
	}
}

func TestCapGrossLeverageShrinksProportionally(t *testing.T) {
	s := sizing.NewSizer(0.1, 1.0)
	intents := []sizing.Intent{
		{PairName: "A", NotionalPerLeg: decimal.NewFromFloat(8000)},
		{PairName: "B", NotionalPerLeg: decimal.NewFromFloat(2000)},
	}
	// equity 5000, cap = 5000; sum = 10000; factor = 0.5
	out := s.CapGrossLeverage(intents, decimal.Zero, 5000)

	wantA := decimal.NewFromFloat(4000)
	wantB := decimal.NewFromFloat(1000)
	if !out[0].NotionalPerLeg.Equal(wantA) {
		t.Errorf("A: got %s, want %s", out[0].NotionalPerLeg, wantA)
	}
	if !out[1].NotionalPerLeg.Equal(wantB) {
		t.Errorf("B: got %s, want %s", out[1].NotionalPerLeg, wantB)
	}

	sum := out[0].NotionalPerLeg.Add(out[1].NotionalPerLeg)
	capAmt := decimal.NewFromFloat(5000)
	if !sum.Equal(capAmt) {
		t.Errorf("sum after shrink = %s, want %s", sum, capAmt)
	}
}

func TestCapGrossLeverageAccountsForExistingNotional(t *testing.T) {
	s := sizing.NewSizer(0.1, 1.0)
	intents := []sizing.Intent{
		{PairName: "A", NotionalPerLeg: decimal.NewFromFloat(6000)},
		{PairName: "B", NotionalPerLeg: decimal.NewFromFloat(4000)},
	}
	// equity 10000, cap = 10000; an already-open position holds 2000 of
	// that cap, leaving 8000 headroom for the new 10000 of intents:
	// factor = 8000/10000 = 0.8.
	out := s.CapGrossLeverage(intents, decimal.NewFromFloat(2000), 10000)

	wantA := decimal.NewFromFloat(4800)
	wantB := decimal.NewFromFloat(3200)
	if !out[0].NotionalPerLeg.Equal(wantA) {
		t.Errorf("A: got %s, want %s", out[0].NotionalPerLeg, wantA)
	}
	if !out[1].NotionalPerLeg.Equal(wantB) {
		t.Errorf("B: got %s, want %s", out[1].NotionalPerLeg, wantB)
	}
}

func TestCapGrossLeverageSuppressesAllWhenExistingNotionalFillsCap(t *testing.T) {
	s := sizing.NewSizer(0.1, 1.0)
	intents := []sizing.Intent{
		{PairName: "A", NotionalPerLeg: decimal.NewFromFloat(5000)},
	}
	// existing notional alone already consumes the whole cap.
	out := s.CapGrossLeverage(intents, decimal.NewFromFloat(10000), 10000)
	if !out[0].NotionalPerLeg.IsZero() {
		t.Errorf("expected suppression to zero, got %s", out[0].NotionalPerLeg)
	}
}

func TestCapGrossLeverageEmptyIntents(t *testing.T) {
	s := sizing.NewSizer(0.1, 1.0)
	out := s.CapGrossLeverage(nil, decimal.Zero, 5000)
	if len(out) != 0 {
		t.Errorf("expected empty result, got %v", out)
	}
}
