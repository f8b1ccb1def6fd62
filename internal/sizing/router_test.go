package sizing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-desktop/pairs-engine/internal/sizing"
	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

func TestEntryOrdersLongBuysLongLegSellsShortLeg(t *testing.T) {
	r := sizing.NewRouter()
	notional := decimal.NewFromFloat(1000)

	orders, err := r.EntryOrders(testPair(), types.SideLong, notional, 50, 20, -2.0, false, 0, 100, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}

	long, short := orders[0], orders[1]
	if long.Symbol != "PNC" || !long.SignedQuantity.Equal(decimal.NewFromFloat(20)) {
		t.Errorf("long leg = %+v, want +20 PNC (1000/50)", long)
	}
	if short.Symbol != "KBE" || !short.SignedQuantity.Equal(decimal.NewFromFloat(-50)) {
		t.Errorf("short leg = %+v, want -50 KBE (1000/20)", short)
	}
	if long.Tag != short.Tag {
		t.Error("expected both legs to carry the identical tag")
	}
}

func TestEntryOrdersShortSellsLongLegBuysShortLeg(t *testing.T) {
	r := sizing.NewRouter()
	notional := decimal.NewFromFloat(1000)

	orders, err := r.EntryOrders(testPair(), types.SideShort, notional, 50, 20, 2.0, false, 0, 100, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	long, short := orders[0], orders[1]
	if !long.SignedQuantity.Equal(decimal.NewFromFloat(-20)) {
		t.Errorf("long leg qty = %s, want -20", long.SignedQuantity)
	}
	if !short.SignedQuantity.Equal(decimal.NewFromFloat(50)) {
		t.Errorf("short leg qty = %s, want +50", short.SignedQuantity)
	}
}

func TestEntryOrdersRejectsFlatSide(t *testing.T) {
	r := sizing.NewRouter()
	_, err := r.EntryOrders(testPair(), types.SideFlat, decimal.NewFromFloat(1000), 50, 20, 0, false, 0, 100, time.Now())
	if err == nil {
		t.Fatal("expected invariant error for Flat side")
	}
}

func TestEntryOrdersRejectsNonPositivePrice(t *testing.T) {
	r := sizing.NewRouter()
	_, err := r.EntryOrders(testPair(), types.SideLong, decimal.NewFromFloat(1000), 0, 20, -2.0, false, 0, 100, time.Now())
	if err == nil {
		t.Fatal("expected numeric error for non-positive price")
	}
	if _, ok := err.(*types.NumericError); !ok {
		t.Fatalf("expected *types.NumericError, got %T", err)
	}
}

func TestExitTagUsesGeneralGrammarForOrdinaryReasons(t *testing.T) {
	r := sizing.NewRouter()
	tag := r.ExitTag(testPair(), types.ReasonMeanReversion, 0.4, false, 0, 7, 0)

	want := "EXIT|PNC_KBE|MEAN_REVERSION|Z=0.40|DAYS=7"
	if tag != want {
		t.Errorf("tag = %q, want %q", tag, want)
	}
}

func TestExitTagUsesCrisisGrammarForVIXCrisis(t *testing.T) {
	r := sizing.NewRouter()
	tag := r.ExitTag(testPair(), types.ReasonVIXCrisis, 1.0, false, 0, 3, 42.7)

	want := "EXIT|VIX_CRISIS|VIX=42.7|PNC_KBE"
	if tag != want {
		t.Errorf("tag = %q, want %q", tag, want)
	}
}
