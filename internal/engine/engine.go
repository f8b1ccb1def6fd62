// Package engine orchestrates C1 through C9 into the single-threaded,
// synchronous per-bar control flow: validate the tick, classify the
// regime, advance the weekly cointegration budget, update rolling
// statistics, consult the filter stack, step each pair's position state
// machine, route orders to the host, and record equity/tags/trades.
package engine

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atlas-desktop/pairs-engine/internal/barfeed"
	"github.com/atlas-desktop/pairs-engine/internal/coint"
	"github.com/atlas-desktop/pairs-engine/internal/config"
	"github.com/atlas-desktop/pairs-engine/internal/filters"
	"github.com/atlas-desktop/pairs-engine/internal/host"
	"github.com/atlas-desktop/pairs-engine/internal/position"
	"github.com/atlas-desktop/pairs-engine/internal/recorder"
	"github.com/atlas-desktop/pairs-engine/internal/regime"
	"github.com/atlas-desktop/pairs-engine/internal/sizing"
	"github.com/atlas-desktop/pairs-engine/internal/stats"
	"github.com/atlas-desktop/pairs-engine/internal/telemetry"
	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// Engine owns one Machine per configured pair plus the shared,
// process-wide C2–C5 and C7–C9 collaborators, and drives them through
// the fixed per-bar sequence of spec §2/§5.
type Engine struct {
	cfg  types.EngineConfig
	log  *zap.Logger
	host host.Adapter

	statsMgr  *stats.Manager
	cointMgr  *coint.Manager
	regimeClf *regime.Classifier
	stack     *filters.Stack
	sizer     *sizing.Sizer
	router    *sizing.Router
	rec       *recorder.Recorder
	validator *barfeed.Validator
	metrics   *telemetry.Metrics

	pairs         []types.Pair
	positions     map[string]*position.Machine
	wasCointValid map[string]bool

	lastRegime types.RegimeState
	stream     StreamSink
}

// StreamSink receives new equity points and order tags as the recorder
// accepts them, for the diagnostics server's WS /v1/stream push.
// *diagnostics.Hub satisfies this; the interface lives here so
// internal/engine does not need to import internal/diagnostics.
type StreamSink interface {
	PublishEquity(point interface{})
	PublishTag(tag string)
}

// SetStreamSink attaches a diagnostics push hub. Optional: a nil sink
// leaves every push a no-op.
func (e *Engine) SetStreamSink(sink StreamSink) {
	e.stream = sink
}

func (e *Engine) publishEquity(point types.EquityPoint) {
	if e.stream != nil {
		e.stream.PublishEquity(point)
	}
}

func (e *Engine) publishTag(tag string) {
	if e.stream != nil {
		e.stream.PublishTag(tag)
	}
}

// Initialize builds an Engine from a validated configuration, ready to
// receive bars via OnBar. cfg need not have been loaded through
// internal/config.Load; Initialize re-validates it so a directly
// constructed EngineConfig is held to the same bar.
func Initialize(cfg types.EngineConfig, h host.Adapter, log *zap.Logger) (*Engine, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	pairs := make([]types.Pair, len(cfg.Pairs))
	pairNames := make([]string, len(cfg.Pairs))
	positions := make(map[string]*position.Machine, len(cfg.Pairs))
	posCfg := position.Config{
		ZEntry:         cfg.ZEntry,
		ZExit:          cfg.ZExit,
		ZStop:          cfg.ZStop,
		MaxHoldingDays: cfg.MaxHoldingDays,
	}
	for i, spec := range cfg.Pairs {
		pair := types.Pair{Name: spec.Name, LongLeg: spec.Long, ShortLeg: spec.Short}
		pairs[i] = pair
		pairNames[i] = pair.Name
		positions[pair.Name] = position.New(pair, posCfg, log)
	}

	pMax, hlMax := cfg.ADFPMax, cfg.HalfLifeMaxDays
	if !cfg.EnableADFFilter {
		pMax = 1
	}
	if !cfg.EnableHalfLifeFilter {
		hlMax = math.Inf(1)
	}

	e := &Engine{
		cfg:           cfg,
		log:           log,
		host:          h,
		statsMgr:      stats.NewManager(cfg.LookbackPeriod),
		cointMgr:      coint.NewManager(pMax, hlMax, pairNames),
		regimeClf:     regime.NewClassifier(cfg.VIXThresholds, cfg.VIXMultipliers),
		stack: filters.NewStack(
			filters.DataReady{},
			filters.Regime{},
			filters.Cointegration{Enabled: cfg.EnableADFOrHalfLife()},
			filters.SpreadDeviation{Enabled: cfg.EnableSpreadFilter, Critical: cfg.ZSpreadCritical},
		),
		sizer:         sizing.NewSizer(cfg.AllocationPerPair, cfg.GrossLeverageMax),
		router:        sizing.NewRouter(),
		rec:           recorder.New(log),
		validator:     barfeed.NewValidator(barfeed.RequiredSymbols(cfg.Pairs)),
		pairs:         pairs,
		positions:     positions,
		wasCointValid: make(map[string]bool, len(pairs)),
	}
	return e, nil
}

// SetMetrics attaches a Prometheus metrics recorder. Optional: a nil or
// never-attached Metrics leaves every Observe* call a no-op, the same
// nilable-collaborator pattern already used for the *zap.Logger.
func (e *Engine) SetMetrics(m *telemetry.Metrics) {
	e.metrics = m
}

// pendingEntry is a Flat pair's tentative entry, deferred past the
// per-pair loop so every entry on this bar can be sized against the
// same gross-leverage headroom (spec §4.7, §8 invariant 6).
type pendingEntry struct {
	pair             types.Pair
	side             types.PositionSide
	z                float64
	spread           float64
	halfLifeDays     float64
	hasHalfLife      bool
	filterMultiplier float64
	longPrice        float64
	shortPrice       float64
}

// OnBar advances the engine by exactly one tick. Recoverable errors
// (StaleData, Numeric, recoverable Host) are logged and only affect the
// pairs or orders involved; Invariant errors and unrecoverable Host
// errors are returned so the caller can shut down (spec §7).
func (e *Engine) OnBar(tick barfeed.Tick) error {
	missing, err := e.validator.Validate(tick)
	if err != nil {
		if e.log != nil {
			e.log.Warn("tick rejected", zap.Error(err))
		}
		return nil
	}
	e.metrics.IncBarsProcessed()
	missingSet := make(map[string]bool, len(missing))
	for _, sym := range missing {
		missingSet[sym] = true
	}

	regimeState := e.regimeClf.Update(tick.VIX)
	e.lastRegime = regimeState
	e.metrics.ObserveRegime(regimeState.Tier)

	if _, didRefresh := e.cointMgr.Tick(tick.Time, e.historyFor); didRefresh {
		e.metrics.ObserveCointegrationRefresh()
	}

	equity, equityErr := e.host.PortfolioEquity()
	if equityErr != nil && e.log != nil {
		e.log.Warn("portfolio equity query failed, suppressing new entries this bar", zap.Error(equityErr))
	}

	var pending []pendingEntry
	existingNotional := decimal.Zero

	for _, pair := range e.pairs {
		machine := e.positions[pair.Name]

		if missingSet[pair.LongLeg] || missingSet[pair.ShortLeg] {
			if e.log != nil {
				e.log.Warn("skipping pair for stale tick", zap.String("pair", pair.Name))
			}
			if !machine.Flat() {
				existingNotional = existingNotional.Add(machine.State().NotionalPerLeg.Abs())
			}
			continue
		}

		longBar := tick.Bars[pair.LongLeg]
		shortBar := tick.Bars[pair.ShortLeg]
		if longBar.Close <= 0 || shortBar.Close <= 0 {
			if e.log != nil {
				e.log.Warn("non-positive close price, spread undefined",
					zap.String("pair", pair.Name))
			}
			if !machine.Flat() {
				existingNotional = existingNotional.Add(machine.State().NotionalPerLeg.Abs())
			}
			continue
		}

		spread := math.Log(longBar.Close) - math.Log(shortBar.Close)
		result := e.statsMgr.Update(pair.Name, spread)

		cointMetrics, hasCoint := e.cointMgr.Get(pair.Name)
		wasValid := e.wasCointValid[pair.Name]
		cointBroken := hasCoint && wasValid && !cointMetrics.IsValid
		if hasCoint {
			e.wasCointValid[pair.Name] = cointMetrics.IsValid
		}

		// A leg can be present in the tick yet still stale: a thinly
		// traded symbol that didn't print this tick can arrive carrying
		// its last-known bar rather than being omitted outright, which
		// the missing-leg check above would not catch. A bar whose own
		// Timestamp disagrees with the tick's is exactly that case.
		staleBar := !longBar.Timestamp.Equal(tick.Time) || !shortBar.Timestamp.Equal(tick.Time)

		in := filters.Inputs{
			StatsReady:          result.Ready,
			StatsUnstable:       result.Unstable,
			StaleBar:            staleBar,
			Regime:              regimeState,
			Cointegration:       cointMetrics,
			HasCointegration:    hasCoint,
			CointegrationBroken: cointBroken,
			Z:                   result.Z,
		}

		if machine.Flat() {
			if !result.Ready || equityErr != nil {
				continue
			}

			if e.cfg.EnablePreEntryCheck {
				if history, ok := e.historyFor(pair.Name); ok {
					cointMetrics = e.cointMgr.ForceRefresh(pair.Name, history, tick.Time)
					e.metrics.ObserveCointegrationRefresh()
					hasCoint = true
					e.wasCointValid[pair.Name] = cointMetrics.IsValid
					in.Cointegration = cointMetrics
					in.HasCointegration = true
				}
			}

			entryOutcome := e.stack.ConsultEntry(in)
			hasHalfLife := hasCoint && e.cfg.EnableADFOrHalfLife()
			trans, err := machine.TryEnter(result.Z, entryOutcome, position.EntrySnapshot{
				Spread:       spread,
				Z:            result.Z,
				Time:         tick.Time,
				VIXTier:      regimeState.Tier,
				HalfLifeDays: cointMetrics.HalfLifeDays,
				HasHalfLife:  hasHalfLife,
			})
			if err != nil {
				return err
			}
			if trans.Entered {
				pending = append(pending, pendingEntry{
					pair:             pair,
					side:             trans.Side,
					z:                result.Z,
					spread:           spread,
					halfLifeDays:     cointMetrics.HalfLifeDays,
					hasHalfLife:      hasHalfLife,
					filterMultiplier: entryOutcome.Multiplier,
					longPrice:        longBar.Close,
					shortPrice:       shortBar.Close,
				})
			}
			continue
		}

		prevState := machine.State()
		forceReason, forceFired := e.stack.ConsultExit(in)
		trans, err := machine.EvaluateExit(result.Z, forceReason, forceFired, tick.Time)
		if err != nil {
			return err
		}
		if !trans.Exited {
			existingNotional = existingNotional.Add(prevState.NotionalPerLeg.Abs())
			continue
		}

		holdingDays := prevState.HoldingDays(tick.Time)
		tag := e.router.ExitTag(pair, trans.ExitReason, result.Z, prevState.HasHalfLife,
			prevState.EntryHalfLifeDays, holdingDays, regimeState.CurrentVIX)

		longErr := e.host.Liquidate(pair.LongLeg, tag)
		shortErr := e.host.Liquidate(pair.ShortLeg, tag)
		if longErr != nil || shortErr != nil {
			wrapped := longErr
			if wrapped == nil {
				wrapped = shortErr
			}
			return &types.HostError{
				Pair:    pair.Name,
				Reason:  "liquidate failed on exit, pair left half-open",
				Fatal:   true,
				Wrapped: wrapped,
			}
		}

		e.rec.RecordTag(tag)
		e.publishTag(tag)
		e.metrics.ObserveExit(pair.Name, trans.ExitReason)
		sign := 1.0
		if prevState.Side == types.SideShort {
			sign = -1.0
		}
		pnl := sign * (spread - prevState.EntrySpread) * prevState.NotionalPerLeg.InexactFloat64()
		e.rec.RecordTrade(types.ClosedTrade{
			Pair:       pair,
			Side:       prevState.Side,
			EntryTime:  prevState.EntryTime,
			ExitTime:   tick.Time,
			EntryPrice: math.Exp(prevState.EntrySpread),
			PnL:        pnl,
			Reason:     trans.ExitReason,
		})
	}

	if err := e.placeEntries(pending, existingNotional, equity, tick); err != nil {
		return err
	}

	if equityErr == nil && equity > 0 {
		e.metrics.SetGrossLeverage(e.totalNotional().Div(decimal.NewFromFloat(equity)).InexactFloat64())
	}

	if equityErr == nil {
		point := types.EquityPoint{
			TimestampUTCMs: tick.Time.UnixMilli(),
			PortfolioValue: equity,
		}
		if err := e.rec.RecordEquity(point); err != nil {
			return err
		}
		e.publishEquity(point)
	}

	return nil
}

// placeEntries sizes every pending entry against the gross-leverage
// headroom left by currently open positions, then routes and places
// the resulting dollar-neutral leg orders.
func (e *Engine) placeEntries(pending []pendingEntry, existingNotional decimal.Decimal, equity float64, tick barfeed.Tick) error {
	if len(pending) == 0 {
		return nil
	}

	raw := make([]sizing.Intent, len(pending))
	for i, p := range pending {
		notional := e.sizer.TargetNotional(equity, p.filterMultiplier, e.lastRegime.SizeMultiplier)
		raw[i] = sizing.Intent{PairName: p.pair.Name, NotionalPerLeg: notional}
	}
	capped := e.sizer.CapGrossLeverage(raw, existingNotional, equity)

	for i, p := range pending {
		machine := e.positions[p.pair.Name]
		notional := capped[i].NotionalPerLeg

		if err := machine.SetNotionalPerLeg(notional); err != nil {
			return err
		}
		if notional.IsZero() {
			if e.log != nil {
				e.log.Warn("entry suppressed, no gross-leverage headroom remaining",
					zap.String("pair", p.pair.Name))
			}
			continue
		}

		sizePct := int(math.Round(e.lastRegime.SizeMultiplier * 100))
		orders, err := e.router.EntryOrders(p.pair, p.side, notional, p.longPrice, p.shortPrice,
			p.z, p.hasHalfLife, p.halfLifeDays, sizePct, tick.Time)
		if err != nil {
			machine.ForceFlat()
			if e.log != nil {
				e.log.Warn("entry order construction failed", zap.String("pair", p.pair.Name), zap.Error(err))
			}
			continue
		}

		longOrder, shortOrder := orders[0], orders[1]
		if _, err := e.host.PlaceOrder(longOrder.Symbol, longOrder.SignedQuantity, longOrder.Tag); err != nil {
			machine.ForceFlat()
			if e.log != nil {
				e.log.Warn("entry rejected on first leg", zap.String("pair", p.pair.Name), zap.Error(err))
			}
			continue
		}
		if _, err := e.host.PlaceOrder(shortOrder.Symbol, shortOrder.SignedQuantity, shortOrder.Tag); err != nil {
			machine.ForceFlat()
			if compErr := e.host.Liquidate(longOrder.Symbol, longOrder.Tag); compErr != nil {
				return &types.HostError{
					Pair:    p.pair.Name,
					Reason:  "second leg rejected and compensating liquidate of first leg failed, pair left half-open",
					Fatal:   true,
					Wrapped: compErr,
				}
			}
			if e.log != nil {
				e.log.Warn("entry rejected on second leg, compensating liquidate succeeded",
					zap.String("pair", p.pair.Name), zap.Error(err))
			}
			continue
		}

		e.rec.RecordTag(longOrder.Tag)
		e.publishTag(longOrder.Tag)
		e.metrics.ObserveEntry(p.pair.Name, p.side)
	}
	return nil
}

// totalNotional sums the absolute per-leg notional across every
// currently open position, for the gross-leverage gauge.
func (e *Engine) totalNotional() decimal.Decimal {
	sum := decimal.Zero
	for _, m := range e.positions {
		if !m.Flat() {
			sum = sum.Add(m.State().NotionalPerLeg.Abs())
		}
	}
	return sum
}

// historyFor returns the log-price-spread series the weekly
// cointegration refresh needs for pair, built from the host's bar
// history for both legs (spec §4.3).
func (e *Engine) historyFor(pairName string) ([]float64, bool) {
	var pair types.Pair
	found := false
	for _, p := range e.pairs {
		if p.Name == pairName {
			pair = p
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}

	longHist, err := e.host.History(pair.LongLeg, e.cfg.LookbackPeriod)
	if err != nil {
		return nil, false
	}
	shortHist, err := e.host.History(pair.ShortLeg, e.cfg.LookbackPeriod)
	if err != nil {
		return nil, false
	}
	if len(longHist) != len(shortHist) || len(longHist) == 0 {
		return nil, false
	}

	series := make([]float64, len(longHist))
	for i := range longHist {
		if longHist[i].Close <= 0 || shortHist[i].Close <= 0 {
			return nil, false
		}
		series[i] = math.Log(longHist[i].Close) - math.Log(shortHist[i].Close)
	}
	return series, true
}

// OnOrderEvent records terminal fill/rejection information delivered
// asynchronously by the host after PlaceOrder/Liquidate returns. The
// engine's own book state is already updated synchronously at order
// time (spec §4.6 "Failure handling"); this callback exists for
// logging and future reconciliation, not for driving the state
// machine, so rejections are not retried here.
func (e *Engine) OnOrderEvent(event host.OrderEvent) error {
	if e.log == nil {
		return nil
	}
	switch event.Status {
	case host.OrderRejected, host.OrderCancelled:
		e.log.Warn("order event",
			zap.String("order_id", event.OrderID),
			zap.String("symbol", event.Symbol),
			zap.String("status", string(event.Status)),
			zap.String("reason", event.Reason))
	default:
		e.log.Debug("order event",
			zap.String("order_id", event.OrderID),
			zap.String("symbol", event.Symbol),
			zap.String("status", string(event.Status)))
	}
	return nil
}

// Shutdown finalises the recorder into the outbound EngineResult (spec
// §6 Final results contract). It performs no I/O of its own; the host
// owns delivering the result onward.
func (e *Engine) Shutdown() types.EngineResult {
	return e.rec.Finalize()
}

// EquitySnapshot exposes the recorder's current equity curve for the
// diagnostics surface without giving read access to the full Engine.
func (e *Engine) EquitySnapshot() []types.EquityPoint { return e.rec.EquitySnapshot() }

// TagsSnapshot exposes the recorder's current tag stream for the
// diagnostics surface.
func (e *Engine) TagsSnapshot() []string { return e.rec.TagsSnapshot() }

// RegimeSnapshot exposes the most recently computed regime state for
// the diagnostics surface.
func (e *Engine) RegimeSnapshot() types.RegimeState { return e.lastRegime }

// PositionSnapshot returns the current state of one configured pair,
// for diagnostics and tests. ok is false for an unknown pair name.
func (e *Engine) PositionSnapshot(pairName string) (types.PositionState, bool) {
	m, ok := e.positions[pairName]
	if !ok {
		return types.PositionState{}, false
	}
	return m.State(), true
}

// String implements fmt.Stringer for log-friendly identification in
// diagnostics output.
func (e *Engine) String() string {
	return fmt.Sprintf("engine(pairs=%d)", len(e.pairs))
}
