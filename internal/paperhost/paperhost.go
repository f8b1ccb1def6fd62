// Package paperhost implements a paper-trading host.Adapter for
// cmd/engine's local replay harness, adapted from the teacher's
// backtester.Portfolio cash/position bookkeeping (no commission or
// slippage model: this harness exists to exercise the engine's own
// decision logic against recorded bars, not to model execution cost).
package paperhost

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// position is one open simulated holding.
type position struct {
	quantity     decimal.Decimal
	avgPrice     decimal.Decimal
	currentPrice decimal.Decimal
}

// Host simulates a broker against an in-memory bar history: fills
// every order immediately at the symbol's last advanced close, tracks
// cash/position mark-to-market equity, and answers History from bars
// it has been fed so far via Advance.
type Host struct {
	mu sync.RWMutex

	cash      decimal.Decimal
	positions map[string]*position
	history   map[string][]types.Bar
	now       time.Time
}

// New constructs a Host seeded with startingCash.
func New(startingCash float64) *Host {
	return &Host{
		cash:      decimal.NewFromFloat(startingCash),
		positions: make(map[string]*position),
		history:   make(map[string][]types.Bar),
	}
}

// Advance records the bars for this tick into the history buffer used
// by History, and updates the host's notion of "now" and every open
// position's mark-to-market price. The caller (cmd/engine's replay
// loop) must call this before Engine.OnBar each tick.
func (h *Host) Advance(t time.Time, bars map[string]types.Bar) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.now = t
	for symbol, bar := range bars {
		h.history[symbol] = append(h.history[symbol], bar)
		if pos, ok := h.positions[symbol]; ok {
			pos.currentPrice = decimal.NewFromFloat(bar.Close)
		}
	}
}

// PlaceOrder fills immediately at the host's most recently advanced
// price for symbol.
func (h *Host) PlaceOrder(symbol string, signedQuantity decimal.Decimal, tag string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	priceF, ok := h.lastPriceLocked(symbol)
	if !ok {
		return "", fmt.Errorf("paperhost: no price history for %s", symbol)
	}
	price := decimal.NewFromFloat(priceF)

	cost := signedQuantity.Mul(price)
	h.cash = h.cash.Sub(cost)

	if pos, exists := h.positions[symbol]; exists {
		totalQty := pos.quantity.Add(signedQuantity)
		if totalQty.IsZero() {
			delete(h.positions, symbol)
		} else {
			pos.quantity = totalQty
			pos.currentPrice = price
		}
	} else {
		h.positions[symbol] = &position{quantity: signedQuantity, avgPrice: price, currentPrice: price}
	}

	return uuid.NewString(), nil
}

// Liquidate closes symbol's entire position at its last marked price.
func (h *Host) Liquidate(symbol string, tag string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	pos, ok := h.positions[symbol]
	if !ok {
		return nil
	}
	proceeds := pos.quantity.Mul(pos.currentPrice)
	h.cash = h.cash.Add(proceeds)
	delete(h.positions, symbol)
	return nil
}

// PortfolioEquity returns cash plus the mark-to-market value of every
// open position.
func (h *Host) PortfolioEquity() (float64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	equity := h.cash
	for _, pos := range h.positions {
		equity = equity.Add(pos.quantity.Mul(pos.currentPrice))
	}
	return equity.InexactFloat64(), nil
}

// CurrentTime returns the timestamp of the most recently advanced tick.
func (h *Host) CurrentTime() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.now
}

// History returns up to the last n bars recorded for symbol, in
// ascending timestamp order.
func (h *Host) History(symbol string, n int) ([]types.Bar, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	series := h.history[symbol]
	if len(series) <= n {
		out := make([]types.Bar, len(series))
		copy(out, series)
		return out, nil
	}
	out := make([]types.Bar, n)
	copy(out, series[len(series)-n:])
	return out, nil
}

func (h *Host) lastPriceLocked(symbol string) (float64, bool) {
	series := h.history[symbol]
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1].Close, true
}
