package stats_test

import (
	"math"
	"testing"

	"github.com/atlas-desktop/pairs-engine/internal/stats"
)

func TestWindowNotReadyUntilFull(t *testing.T) {
	w := stats.New(5)

	for i := 0; i < 4; i++ {
		r := w.Update(float64(i))
		if r.Ready {
			t.Fatalf("update %d: expected not ready, window has capacity 5", i)
		}
	}

	r := w.Update(4)
	if !r.Ready {
		t.Fatal("expected ready once window reaches capacity")
	}
}

func TestWindowSampleStdDev(t *testing.T) {
	w := stats.New(5)
	values := []float64{2, 4, 4, 4, 5}

	var last stats.Result
	for _, v := range values {
		last = w.Update(v)
	}

	// mean = 3.8, sample variance (ddof=1) = 1.2, stdev ~ 1.0954
	if math.Abs(last.Mean-3.8) > 1e-9 {
		t.Errorf("mean = %v, want 3.8", last.Mean)
	}
	wantStd := math.Sqrt(1.2)
	if math.Abs(last.StdDev-wantStd) > 1e-9 {
		t.Errorf("stdev = %v, want %v", last.StdDev, wantStd)
	}
}

func TestWindowZIncludesCurrentBar(t *testing.T) {
	w := stats.New(3)
	w.Update(1)
	w.Update(1)
	r := w.Update(1)
	if !r.Unstable {
		t.Fatal("expected degenerate/unstable result for a flat window")
	}
	if r.Z != 0 {
		t.Errorf("z = %v, want 0 for degenerate window", r.Z)
	}

	// Now a window with real variance: the z-score must reflect the
	// value just pushed, not the value before it (spec §4.2).
	w2 := stats.New(3)
	w2.Update(1)
	w2.Update(2)
	r2 := w2.Update(3)
	if r2.Z <= 0 {
		t.Errorf("expected positive z when the latest value is the max, got %v", r2.Z)
	}
}

func TestWindowDegenerateMarksUnstable(t *testing.T) {
	w := stats.New(4)
	for i := 0; i < 4; i++ {
		r := w.Update(2.0)
		if i == 3 {
			if !r.Unstable {
				t.Fatal("expected unstable result for zero-variance window")
			}
			if r.Z != 0 {
				t.Errorf("z = %v, want 0", r.Z)
			}
		}
	}
}

func TestWindowEvictsOldest(t *testing.T) {
	w := stats.New(3)
	w.Update(10)
	w.Update(10)
	w.Update(10)
	// Push a 4th value; the window should now reflect {10,10,1} not {10,10,10,1}.
	r := w.Update(1)
	wantMean := (10.0 + 10.0 + 1.0) / 3.0
	if math.Abs(r.Mean-wantMean) > 1e-9 {
		t.Errorf("mean = %v, want %v", r.Mean, wantMean)
	}
}
