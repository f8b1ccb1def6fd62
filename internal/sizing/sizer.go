package sizing

import (
	"github.com/shopspring/decimal"
)

// Sizer computes dollar-neutral per-pair notional targets and enforces
// the configured gross-leverage cap across a single bar's intents
// (spec §4.7).
type Sizer struct {
	allocationPerPair decimal.Decimal
	grossLeverageMax  decimal.Decimal
}

// NewSizer constructs a Sizer. allocationPerPair is the base fraction
// of equity committed to a single pair before filter/regime
// multipliers are applied; grossLeverageMax bounds the sum of
// per-pair notionals as a multiple of equity.
func NewSizer(allocationPerPair, grossLeverageMax float64) *Sizer {
	return &Sizer{
		allocationPerPair: decimal.NewFromFloat(allocationPerPair),
		grossLeverageMax:  decimal.NewFromFloat(grossLeverageMax),
	}
}

// TargetNotional returns the unsigned per-leg notional for a new
// position: portfolio_equity * allocation_per_pair * filterMultiplier
// * regimeMultiplier.
func (s *Sizer) TargetNotional(equity float64, filterMultiplier, regimeMultiplier float64) decimal.Decimal {
	return decimal.NewFromFloat(equity).
		Mul(s.allocationPerPair).
		Mul(decimal.NewFromFloat(filterMultiplier)).
		Mul(decimal.NewFromFloat(regimeMultiplier))
}

// Intent is one pair's proposed per-leg notional for the current bar,
// prior to gross-leverage capping.
type Intent struct {
	PairName       string
	NotionalPerLeg decimal.Decimal
}

// CapGrossLeverage enforces "sum of absolute per-pair notionals never
// exceeds gross_leverage_max * equity" (spec §4.7, §8 invariant 6) for
// the portfolio as a whole, not just the intents passed in: existingNotional
// is the absolute per-leg notional already committed by currently-open
// positions this bar is not touching. Only the new intents are shrunk
// to fit the remaining headroom; positions already open are never
// retroactively resized. If existingNotional alone consumes the whole
// cap, every new intent is suppressed to zero rather than left
// unshrunk. Intents are returned in the same order they were given; an
// empty or already-within-headroom slice is returned unchanged.
func (s *Sizer) CapGrossLeverage(intents []Intent, existingNotional decimal.Decimal, equity float64) []Intent {
	if len(intents) == 0 {
		return intents
	}

	sum := decimal.Zero
	for _, in := range intents {
		sum = sum.Add(in.NotionalPerLeg.Abs())
	}
	if sum.IsZero() {
		return intents
	}

	cap := s.grossLeverageMax.Mul(decimal.NewFromFloat(equity))
	headroom := cap.Sub(existingNotional)
	if headroom.LessThanOrEqual(decimal.Zero) {
		suppressed := make([]Intent, len(intents))
		for i, in := range intents {
			suppressed[i] = Intent{PairName: in.PairName, NotionalPerLeg: decimal.Zero}
		}
		return suppressed
	}
	if sum.LessThanOrEqual(headroom) {
		return intents
	}

	factor := headroom.Div(sum)
	shrunk := make([]Intent, len(intents))
	for i, in := range intents {
		shrunk[i] = Intent{PairName: in.PairName, NotionalPerLeg: in.NotionalPerLeg.Mul(factor)}
	}
	return shrunk
}
