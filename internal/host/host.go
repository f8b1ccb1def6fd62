// Package host defines the outbound contract the engine calls into
// (spec §6): the operations the backtest/live host provides, which the
// engine treats as an opaque external collaborator.
package host

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// Adapter is everything the engine needs from its host: order
// placement, liquidation, portfolio equity, the host's clock, and
// historical series for cointegration refreshes. The engine never
// performs I/O itself; every effectful operation routes through this
// interface so the core stays synchronous and side-effect-free outside
// of it.
type Adapter interface {
	// PlaceOrder submits one leg of an intent and returns the host's
	// order ID.
	PlaceOrder(symbol string, signedQuantity decimal.Decimal, tag string) (orderID string, err error)

	// Liquidate closes out a symbol's entire position immediately.
	Liquidate(symbol string, tag string) error

	// PortfolioEquity returns the current total portfolio value.
	PortfolioEquity() (float64, error)

	// CurrentTime returns the host's notion of "now". The engine
	// measures holding days from each tick's timestamp, not from this
	// clock.
	CurrentTime() time.Time

	// History returns the last n completed bars for symbol, used by
	// the weekly cointegration refresh (C3). The returned series is in
	// ascending timestamp order.
	History(symbol string, n int) ([]types.Bar, error)
}

// OrderEvent is delivered by the host through OnOrderEvent: a fill,
// rejection, or status update for a previously placed order.
type OrderEvent struct {
	OrderID  string
	Symbol   string
	Status   OrderStatus
	Reason   string
	FilledAt time.Time
}

// OrderStatus enumerates the terminal and non-terminal states an
// OrderEvent can report.
type OrderStatus string

const (
	OrderFilled    OrderStatus = "FILLED"
	OrderPartial   OrderStatus = "PARTIAL"
	OrderRejected  OrderStatus = "REJECTED"
	OrderCancelled OrderStatus = "CANCELLED"
)
