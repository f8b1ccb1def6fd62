package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the immutable record the engine emits to the host for every
// leg of every intent. SignedQuantity is positive for a buy, negative
// for a sell; Tag follows the bit-exact grammar in spec §6.
type Order struct {
	Timestamp      time.Time
	Symbol         string
	SignedQuantity decimal.Decimal
	Tag            string
}

// EquityPoint is a single sample of the append-only equity curve. The
// recorder (C8) guarantees TimestampUTCMs is strictly increasing across
// the sequence.
type EquityPoint struct {
	TimestampUTCMs int64
	PortfolioValue float64
}

// ParsedResults is the final performance summary computed from the
// complete trade list at shutdown (spec §4.8).
type ParsedResults struct {
	SharpeRatio   float64
	MaxDrawdown   float64
	TotalReturn   float64
	TotalTrades   int
	WinRate       float64
	ProfitFactor  float64
}

// ClosedTrade is the realized round-trip the metrics in ParsedResults
// are computed from: one pair entry followed by its exit.
type ClosedTrade struct {
	Pair       Pair
	Side       PositionSide
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64 // exp(entry log-spread): the long/short price ratio at entry
	PnL        float64
	Reason     ExitReason
}

// EngineResult is the outbound bundle the host receives at shutdown:
// the performance summary, the ordered tag stream, and the equity
// series (spec §6 Final results contract).
type EngineResult struct {
	Results     ParsedResults
	Tags        []string
	EquityCurve []EquityPoint
}
