package types

import "time"

// Bar is a single completed closing-price observation for one symbol, the unit
// C1 delivers to the engine once per tick.
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Close     float64
}
