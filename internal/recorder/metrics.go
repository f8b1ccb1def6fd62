package recorder

import (
	"math"

	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// computeParsedResults builds the §4.8 summary from the complete trade
// list and equity curve, using the same hand-rolled loop style as the
// teacher's performance-metrics calculator rather than a stats
// library.
func computeParsedResults(trades []types.ClosedTrade, equity []types.EquityPoint) types.ParsedResults {
	if len(trades) == 0 || len(equity) == 0 {
		return types.ParsedResults{}
	}

	var winningTrades, losingTrades int
	var totalWins, totalLosses float64

	for _, trade := range trades {
		switch {
		case trade.PnL > 0:
			winningTrades++
			totalWins += trade.PnL
		case trade.PnL < 0:
			losingTrades++
			totalLosses += -trade.PnL
		}
	}

	results := types.ParsedResults{
		TotalTrades: len(trades),
	}

	if results.TotalTrades > 0 {
		results.WinRate = float64(winningTrades) / float64(results.TotalTrades)
	}
	if totalLosses > 0 {
		results.ProfitFactor = totalWins / totalLosses
	}

	initial := equity[0].PortfolioValue
	final := equity[len(equity)-1].PortfolioValue
	if initial != 0 {
		results.TotalReturn = (final - initial) / initial
	}

	returns := dailyReturns(equity)
	if len(returns) > 1 {
		avg := mean(returns)
		sd := stdDev(returns)
		if sd > 0 {
			results.SharpeRatio = (avg / sd) * math.Sqrt(252)
		}
	}

	results.MaxDrawdown = maxDrawdown(equity)

	return results
}

func dailyReturns(equity []types.EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].PortfolioValue
		if prev == 0 {
			continue
		}
		returns = append(returns, (equity[i].PortfolioValue-prev)/prev)
	}
	return returns
}

func maxDrawdown(equity []types.EquityPoint) float64 {
	if len(equity) == 0 {
		return 0
	}
	var maxDD float64
	peak := equity[0].PortfolioValue
	for _, point := range equity {
		if point.PortfolioValue > peak {
			peak = point.PortfolioValue
		}
		if peak != 0 {
			dd := (peak - point.PortfolioValue) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSquares float64
	for _, v := range values {
		d := v - m
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}
