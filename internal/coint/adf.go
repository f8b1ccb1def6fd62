package coint

// pValueFromTau approximates the ADF (constant, no trend) p-value from
// the Dickey-Fuller tau statistic via linear interpolation over the
// standard asymptotic critical-value table (MacKinnon 1994, case "c").
// This is a hand-rolled approximation, not an exact response-surface
// evaluation: adequate for the engine's pass/fail threshold check
// against adf_pmax, not for reporting a publishable p-value.
var tauTable = []struct {
	tau float64
	p   float64
}{
	{-5.00, 0.0001},
	{-4.00, 0.0010},
	{-3.43, 0.0100},
	{-2.86, 0.0500},
	{-2.57, 0.1000},
	{-2.00, 0.3000},
	{-1.50, 0.5000},
	{-1.00, 0.6800},
	{-0.50, 0.8300},
	{0.00, 0.9200},
	{1.00, 0.9800},
	{2.00, 0.9950},
}

func pValueFromTau(tau float64) float64 {
	if tau <= tauTable[0].tau {
		return tauTable[0].p
	}
	last := tauTable[len(tauTable)-1]
	if tau >= last.tau {
		return last.p
	}
	for i := 1; i < len(tauTable); i++ {
		lo, hi := tauTable[i-1], tauTable[i]
		if tau <= hi.tau {
			frac := (tau - lo.tau) / (hi.tau - lo.tau)
			return lo.p + frac*(hi.p-lo.p)
		}
	}
	return last.p
}
