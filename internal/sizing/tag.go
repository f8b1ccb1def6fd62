package sizing

import (
	"fmt"

	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// optionalHalfLife renders the "|HL=<hl:.1f>" segment, present iff the
// cointegration filter's ADF or half-life leg is enabled (spec §6).
func optionalHalfLife(enabled bool, halfLifeDays float64) string {
	if !enabled {
		return ""
	}
	return fmt.Sprintf("|HL=%.1f", halfLifeDays)
}

// EntryTag builds the bit-exact entry order tag:
//
//	ENTRY|<pair_name>|Z=<z:.2f>[|HL=<hl:.1f>]|VIX=<size_pct:d>%|<LONG_LEG|SHORT_LEG>
func EntryTag(pair types.Pair, z float64, halfLifeEnabled bool, halfLifeDays float64, sizePct int, side types.PositionSide) string {
	legLabel := "SHORT_LEG"
	if side == types.SideLong {
		legLabel = "LONG_LEG"
	}
	return fmt.Sprintf("ENTRY|%s|Z=%.2f%s|VIX=%d%%|%s",
		pair.Name, z, optionalHalfLife(halfLifeEnabled, halfLifeDays), sizePct, legLabel)
}

// ExitTag builds the bit-exact exit order tag for every reason other
// than VIX_CRISIS, which uses the distinct regime-forced-exit form
// built by CrisisExitTag:
//
//	EXIT|<pair_name>|<REASON>|Z=<z:.2f>[|HL=<hl:.1f>]|DAYS=<days:d>
func ExitTag(pair types.Pair, reason types.ExitReason, z float64, halfLifeEnabled bool, halfLifeDays float64, days int) string {
	return fmt.Sprintf("EXIT|%s|%s|Z=%.2f%s|DAYS=%d",
		pair.Name, reason, z, optionalHalfLife(halfLifeEnabled, halfLifeDays), days)
}

// CrisisExitTag builds the regime forced-exit tag, which departs from
// the general EXIT grammar (no Z/HL/DAYS segments, pair name last):
//
//	EXIT|VIX_CRISIS|VIX=<vix:.1f>|<pair_name>
func CrisisExitTag(pair types.Pair, vix float64) string {
	return fmt.Sprintf("EXIT|VIX_CRISIS|VIX=%.1f|%s", vix, pair.Name)
}
