package sizing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

var errNonPositivePrice = errors.New("non-positive price")

// Router turns a position-state-machine transition into the pair of
// dollar-neutral leg orders the host contract expects (spec §4.7).
type Router struct{}

// NewRouter constructs a Router. It holds no state: every call is a
// pure function of its arguments.
func NewRouter() *Router { return &Router{} }

// EntryOrders builds the long-leg and short-leg orders for a new
// position. notionalPerLeg is the unsigned target notional per leg,
// already gross-leverage-capped; longPrice/shortPrice are the current
// bar's close prices for each leg, used to convert notional to
// quantity. Going Long means buying the long leg and selling the short
// leg; Short is the mirror image.
func (r *Router) EntryOrders(
	pair types.Pair,
	side types.PositionSide,
	notionalPerLeg decimal.Decimal,
	longPrice, shortPrice float64,
	z float64,
	halfLifeEnabled bool,
	halfLifeDays float64,
	sizePct int,
	now time.Time,
) ([]types.Order, error) {
	if side == types.SideFlat {
		return nil, &types.InvariantError{Reason: "EntryOrders called with Flat side for pair " + pair.Name}
	}

	tag := EntryTag(pair, z, halfLifeEnabled, halfLifeDays, sizePct, side)

	longLegQty, err := quantity(notionalPerLeg, longPrice)
	if err != nil {
		return nil, &types.NumericError{Pair: pair.Name, Reason: err.Error()}
	}
	shortLegQty, err := quantity(notionalPerLeg, shortPrice)
	if err != nil {
		return nil, &types.NumericError{Pair: pair.Name, Reason: err.Error()}
	}

	// Long: buy the long leg, sell the short leg. Short is the mirror.
	longLegSigned, shortLegSigned := longLegQty, shortLegQty.Neg()
	if side == types.SideShort {
		longLegSigned, shortLegSigned = longLegQty.Neg(), shortLegQty
	}

	return []types.Order{
		{Timestamp: now, Symbol: pair.LongLeg, SignedQuantity: longLegSigned, Tag: tag},
		{Timestamp: now, Symbol: pair.ShortLeg, SignedQuantity: shortLegSigned, Tag: tag},
	}, nil
}

// ExitTag selects the tag to pass to the host's liquidate call for both
// legs of a closing position: the general EXIT grammar for every
// reason except VIX_CRISIS, which uses the distinct regime-forced-exit
// form. Exits close both legs to zero via the host's own liquidate
// primitive, so unlike EntryOrders this does not need to compute a
// quantity.
func (r *Router) ExitTag(
	pair types.Pair,
	reason types.ExitReason,
	z float64,
	halfLifeEnabled bool,
	halfLifeDays float64,
	holdingDays int,
	currentVIX float64,
) string {
	if reason == types.ReasonVIXCrisis {
		return CrisisExitTag(pair, currentVIX)
	}
	return ExitTag(pair, reason, z, halfLifeEnabled, halfLifeDays, holdingDays)
}

func quantity(notional decimal.Decimal, price float64) (decimal.Decimal, error) {
	if price <= 0 {
		return decimal.Zero, errNonPositivePrice
	}
	return notional.Div(decimal.NewFromFloat(price)), nil
}
