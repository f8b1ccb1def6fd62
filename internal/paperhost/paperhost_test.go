package paperhost_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-desktop/pairs-engine/internal/paperhost"
	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

func TestPortfolioEquityTracksMarkToMarket(t *testing.T) {
	h := paperhost.New(100000)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	h.Advance(t0, map[string]types.Bar{"A": {Symbol: "A", Timestamp: t0, Close: 100}})
	if _, err := h.PlaceOrder("A", decimal.NewFromInt(10), "tag"); err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	equity, err := h.PortfolioEquity()
	if err != nil {
		t.Fatalf("equity query failed: %v", err)
	}
	if equity != 100000 {
		t.Errorf("equity right after a fill at cost should be unchanged, got %v", equity)
	}

	t1 := t0.Add(24 * time.Hour)
	h.Advance(t1, map[string]types.Bar{"A": {Symbol: "A", Timestamp: t1, Close: 110}})
	equity, err = h.PortfolioEquity()
	if err != nil {
		t.Fatalf("equity query failed: %v", err)
	}
	want := 100000.0 + 10*(110-100)
	if equity != want {
		t.Errorf("got equity %v, want %v", equity, want)
	}
}

func TestLiquidateReturnsProceedsToCash(t *testing.T) {
	h := paperhost.New(100000)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.Advance(t0, map[string]types.Bar{"A": {Symbol: "A", Timestamp: t0, Close: 50}})

	if _, err := h.PlaceOrder("A", decimal.NewFromInt(-20), "entry"); err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if err := h.Liquidate("A", "exit"); err != nil {
		t.Fatalf("liquidate failed: %v", err)
	}

	equity, _ := h.PortfolioEquity()
	if equity != 100000 {
		t.Errorf("round-trip at constant price should leave equity unchanged, got %v", equity)
	}
}

func TestHistoryReturnsLastNBarsAscending(t *testing.T) {
	h := paperhost.New(1000)
	for i := 0; i < 5; i++ {
		ts := time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)
		h.Advance(ts, map[string]types.Bar{"A": {Symbol: "A", Timestamp: ts, Close: float64(100 + i)}})
	}

	hist, err := h.History("A", 3)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("got %d bars, want 3", len(hist))
	}
	wantCloses := []float64{102, 103, 104}
	for i, b := range hist {
		if b.Close != wantCloses[i] {
			t.Errorf("bar %d: got close %v, want %v", i, b.Close, wantCloses[i])
		}
	}
}

func TestHistoryShorterThanNReturnsWhatExists(t *testing.T) {
	h := paperhost.New(1000)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.Advance(ts, map[string]types.Bar{"A": {Symbol: "A", Timestamp: ts, Close: 100}})

	hist, err := h.History("A", 10)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(hist) != 1 {
		t.Errorf("got %d bars, want 1", len(hist))
	}
}
