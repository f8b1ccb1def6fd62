package recorder_test

import (
	"testing"
	"time"

	"github.com/atlas-desktop/pairs-engine/internal/recorder"
	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

func TestRecordEquityRejectsNonIncreasingTimestamp(t *testing.T) {
	r := recorder.New(nil)
	if err := r.RecordEquity(types.EquityPoint{TimestampUTCMs: 1000, PortfolioValue: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.RecordEquity(types.EquityPoint{TimestampUTCMs: 1000, PortfolioValue: 101})
	if err == nil {
		t.Fatal("expected invariant error for non-increasing timestamp")
	}
	if _, ok := err.(*types.InvariantError); !ok {
		t.Fatalf("expected *types.InvariantError, got %T", err)
	}
}

func TestRecordEquityRejectsDecreasingTimestamp(t *testing.T) {
	r := recorder.New(nil)
	if err := r.RecordEquity(types.EquityPoint{TimestampUTCMs: 2000, PortfolioValue: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.RecordEquity(types.EquityPoint{TimestampUTCMs: 1000, PortfolioValue: 99}); err == nil {
		t.Fatal("expected invariant error for decreasing timestamp")
	}
}

func TestEquitySnapshotIsACopy(t *testing.T) {
	r := recorder.New(nil)
	_ = r.RecordEquity(types.EquityPoint{TimestampUTCMs: 1, PortfolioValue: 100})

	snap := r.EquitySnapshot()
	snap[0].PortfolioValue = 999

	snap2 := r.EquitySnapshot()
	if snap2[0].PortfolioValue != 100 {
		t.Fatal("mutating a snapshot must not affect recorder state")
	}
}

func TestFinalizeComputesParsedResults(t *testing.T) {
	r := recorder.New(nil)
	base := time.Now()

	_ = r.RecordEquity(types.EquityPoint{TimestampUTCMs: base.UnixMilli(), PortfolioValue: 100000})
	_ = r.RecordEquity(types.EquityPoint{TimestampUTCMs: base.Add(24 * time.Hour).UnixMilli(), PortfolioValue: 101000})
	_ = r.RecordEquity(types.EquityPoint{TimestampUTCMs: base.Add(48 * time.Hour).UnixMilli(), PortfolioValue: 99000})
	_ = r.RecordEquity(types.EquityPoint{TimestampUTCMs: base.Add(72 * time.Hour).UnixMilli(), PortfolioValue: 103000})

	r.RecordTrade(types.ClosedTrade{Pair: types.Pair{Name: "AB"}, PnL: 1000, Reason: types.ReasonMeanReversion})
	r.RecordTrade(types.ClosedTrade{Pair: types.Pair{Name: "AB"}, PnL: -500, Reason: types.ReasonStopLoss})
	r.RecordTag("ENTRY|AB|Z=2.10|VIX=100%|SHORT_LEG")
	r.RecordTag("EXIT|AB|STOP_LOSS|Z=4.10|DAYS=1")

	result := r.Finalize()

	if result.Results.TotalTrades != 2 {
		t.Errorf("TotalTrades = %d, want 2", result.Results.TotalTrades)
	}
	if result.Results.WinRate != 0.5 {
		t.Errorf("WinRate = %v, want 0.5", result.Results.WinRate)
	}
	if result.Results.ProfitFactor != 2.0 {
		t.Errorf("ProfitFactor = %v, want 2.0 (1000/500)", result.Results.ProfitFactor)
	}
	wantReturn := (103000.0 - 100000.0) / 100000.0
	if result.Results.TotalReturn != wantReturn {
		t.Errorf("TotalReturn = %v, want %v", result.Results.TotalReturn, wantReturn)
	}
	wantDD := (101000.0 - 99000.0) / 101000.0
	if result.Results.MaxDrawdown != wantDD {
		t.Errorf("MaxDrawdown = %v, want %v", result.Results.MaxDrawdown, wantDD)
	}
	if len(result.Tags) != 2 {
		t.Errorf("Tags len = %d, want 2", len(result.Tags))
	}
	if len(result.EquityCurve) != 4 {
		t.Errorf("EquityCurve len = %d, want 4", len(result.EquityCurve))
	}
}

func TestFinalizeEmptyRunReturnsZeroResults(t *testing.T) {
	r := recorder.New(nil)
	result := r.Finalize()
	if result.Results != (types.ParsedResults{}) {
		t.Errorf("expected zero-value results for empty run, got %+v", result.Results)
	}
}
