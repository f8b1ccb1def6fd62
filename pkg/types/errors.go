package types

import "fmt"

// ConfigError reports an invalid or inconsistent configuration value.
// It is always fatal at Initialize (spec §7).
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Reason)
}

// StaleDataError reports a missing or out-of-order bar for a required
// symbol. Recovered locally: the engine skips the affected pair(s) for
// the current tick (spec §7).
type StaleDataError struct {
	Symbol string
	Reason string
}

func (e *StaleDataError) Error() string {
	return fmt.Sprintf("stale data: %s: %s", e.Symbol, e.Reason)
}

// NumericError reports a degenerate variance, non-finite spread, or
// regression singularity. Recovered locally by suppressing the
// affected z-score or diagnostic (spec §7).
type NumericError struct {
	Pair   string
	Reason string
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("numeric: %s: %s", e.Pair, e.Reason)
}

// HostError reports an order rejection or portfolio-query failure from
// the host. Recoverable if the engine can restore a consistent Flat
// state for the affected pair; fatal otherwise (spec §7).
type HostError struct {
	Pair     string
	Reason   string
	Fatal    bool
	Wrapped  error
}

func (e *HostError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("host: %s: %s: %v", e.Pair, e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("host: %s: %s", e.Pair, e.Reason)
}

func (e *HostError) Unwrap() error { return e.Wrapped }

// InvariantError reports an internal assertion failure (e.g. the state
// machine attempting an illegal transition). Always fatal (spec §7).
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated: %s", e.Reason)
}
