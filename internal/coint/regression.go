// Package coint provides the cointegration diagnostics (C3): an
// Augmented Dickey-Fuller test and an Ornstein-Uhlenbeck half-life
// estimate, both derived from a single AR(1) regression of the
// log-spread series (spec §4.3).
package coint

import "math"

// ar1Fit is the result of regressing Δs_t = α + β·s_{t-1} + ε over a
// log-spread series.
type ar1Fit struct {
	alpha     float64
	beta      float64
	betaSE    float64
	n         int
	singular  bool
}

// fitAR1 regresses the first difference of series on its own lag-1
// level plus an intercept via ordinary least squares. It reports
// singular=true when the design matrix cannot be inverted (constant
// series, or fewer than 3 usable observations).
func fitAR1(series []float64) ar1Fit {
	n := len(series) - 1
	if n < 3 {
		return ar1Fit{singular: true}
	}

	// x = s_{t-1}, y = Δs_t = s_t - s_{t-1}, for t = 1..len-1
	var sumX, sumY, sumXX, sumXY float64
	for t := 1; t < len(series); t++ {
		x := series[t-1]
		y := series[t] - series[t-1]
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}
	nf := float64(n)
	meanX := sumX / nf
	meanY := sumY / nf

	sxx := sumXX - nf*meanX*meanX
	sxy := sumXY - nf*meanX*meanY

	if sxx <= 1e-12 || math.IsNaN(sxx) {
		return ar1Fit{singular: true}
	}

	beta := sxy / sxx
	alpha := meanY - beta*meanX

	// Residual variance and the standard error of beta.
	var ssr float64
	for t := 1; t < len(series); t++ {
		x := series[t-1]
		y := series[t] - series[t-1]
		resid := y - (alpha + beta*x)
		ssr += resid * resid
	}
	if n <= 2 {
		return ar1Fit{singular: true}
	}
	residVar := ssr / float64(n-2)
	betaVar := residVar / sxx
	if betaVar < 0 || math.IsNaN(betaVar) {
		return ar1Fit{singular: true}
	}
	betaSE := math.Sqrt(betaVar)

	if math.IsNaN(beta) || math.IsNaN(alpha) || math.IsInf(beta, 0) {
		return ar1Fit{singular: true}
	}

	return ar1Fit{alpha: alpha, beta: beta, betaSE: betaSE, n: n}
}

// tStatistic returns the Dickey-Fuller tau statistic for the fitted
// beta (the t-statistic testing beta == 0, i.e. a unit root).
func (f ar1Fit) tStatistic() float64 {
	if f.singular || f.betaSE <= 0 {
		return 0
	}
	return f.beta / f.betaSE
}

// halfLifeDays converts the AR(1) slope into an Ornstein-Uhlenbeck
// half-life in days: -ln(2) / ln(1+beta). Only defined (and only
// meaningful as mean reversion) when beta is strictly negative and
// 1+beta is strictly positive.
func (f ar1Fit) halfLifeDays() (float64, bool) {
	if f.singular {
		return 0, false
	}
	if f.beta >= 0 {
		return 0, false
	}
	base := 1 + f.beta
	if base <= 0 {
		return 0, false
	}
	hl := -math.Ln2 / math.Log(base)
	if math.IsNaN(hl) || math.IsInf(hl, 0) || hl <= 0 {
		return 0, false
	}
	return hl, true
}
