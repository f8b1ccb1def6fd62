// Package types provides the shared data model for the pairs-trading engine.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pair identifies the two legs of a statistical-arbitrage trade.
//
// Name is the stable human identifier (e.g. "PNC_KBE") used in tags and
// logs; LongLeg/ShortLeg are the symbols whose log-price spread is traded.
type Pair struct {
	Name     string
	LongLeg  string
	ShortLeg string
}

// PositionSide distinguishes the two non-flat position states.
type PositionSide string

const (
	SideFlat  PositionSide = "flat"
	SideLong  PositionSide = "long"
	SideShort PositionSide = "short"
)

// ExitReason enumerates the exact reason strings the order-tag schema
// allows. Do not add values without updating the tag grammar.
type ExitReason string

const (
	ReasonMeanReversion       ExitReason = "MEAN_REVERSION"
	ReasonTimeout             ExitReason = "TIMEOUT"
	ReasonStopLoss            ExitReason = "STOP_LOSS"
	ReasonSpreadCritical      ExitReason = "SPREAD_CRITICAL"
	ReasonBrokenCointegration ExitReason = "BROKEN_COINTEGRATION"
	ReasonVIXCrisis           ExitReason = "VIX_CRISIS"
)

// PositionState is the per-pair state the position state machine (C6)
// owns. Side == SideFlat means the entry fields are meaningless.
type PositionState struct {
	Pair              Pair
	Side              PositionSide
	EntrySpread       float64
	EntryZ            float64
	EntryTime         time.Time
	EntryVIXTier      RegimeTier
	EntryHalfLifeDays float64
	HasHalfLife       bool
	NotionalPerLeg    decimal.Decimal
}

// HoldingDays returns the number of whole days the position has been
// open as of "now". Flat positions return zero.
func (s PositionState) HoldingDays(now time.Time) int {
	if s.Side == SideFlat {
		return 0
	}
	return int(now.Sub(s.EntryTime).Hours() / 24)
}
