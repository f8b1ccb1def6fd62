package types

// SpreadStats is the per-pair rolling-window result C2 returns once the
// window is full: mean and sample standard deviation (ddof=1) of the
// log-price spread, and the z-score of the latest observation.
//
// Unstable is set when the window is full but the sample stdev is at or
// below the degenerate-variance threshold; Z is forced to zero in that
// case and downstream filters must treat the pair as not tradeable.
type SpreadStats struct {
	Mean     float64
	StdDev   float64
	Z        float64
	Unstable bool
}

// CointegrationMetrics is the per-pair cointegration diagnostic snapshot
// (spec §3/§4.3). IsValid is false whenever the refresh had insufficient
// history or hit a numerical singularity; the previous metrics are not
// retained in that case, per spec "metrics blank".
type CointegrationMetrics struct {
	ADFStatistic  float64
	ADFPValue     float64
	HalfLifeDays  float64
	LastRefreshed int64 // unix seconds of the bar the refresh ran on
	IsValid       bool
}
