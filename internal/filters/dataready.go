package filters

// DataReady vetoes entry whenever the rolling window is not yet full,
// the latest stats read is unstable (degenerate variance), or the bar
// itself was stale. It has no opinion on exits and is always enabled
// (spec §4.5).
type DataReady struct{}

func (DataReady) Name() string { return "DataReady" }

func (DataReady) Entry(in Inputs) Decision {
	if in.StaleBar || !in.StatsReady || in.StatsUnstable {
		return VetoEntry()
	}
	return NoOpinion()
}

func (DataReady) Exit(Inputs) Decision { return NoOpinion() }
