package service

// Physical model constants. Flow scales with the commanded level and loses up
// to half its throughput as the filter clogs; power rises with the extra work
// the pump does pushing through a dirty filter.
const (
	MaxFlowLPS     = 10.0 // l/s at level 100 with a fresh filter
	BasePowerW     = 100.0
	PowerPerLevelW = 5.0 // W per level percent at zero clogging
	CloggingFactor = 2.0 // power multiplier growth per unit clogging
	StandbyPowerW  = 50.0

	AlarmThreshold    = 30.0 // filter condition below which the pump trips
	FilterFullPercent = 100.0
)

// computeOutputs derives flow and power draw from the commanded level and the
// filter condition. A level of zero draws nothing.
func computeOutputs(level, filter float64) (flowLPS, powerW float64) {
	if level <= 0 {
		return 0, 0
	}
	flowLPS = (level / 100.0) * MaxFlowLPS * (0.5 + filter/200.0)

	clogging := (FilterFullPercent - filter) / 100.0
	powerW = BasePowerW + level*PowerPerLevelW*(1+clogging*CloggingFactor)
	return flowLPS, powerW
}

// degradeFilter applies linear wear: the filter goes from 100 to 0 in
// rateMinutes of continuous running, floored at 0.
func degradeFilter(filter, elapsedMinutes, rateMinutes float64) float64 {
	filter -= FilterFullPercent * elapsedMinutes / rateMinutes
	if filter < 0 {
		return 0
	}
	return filter
}
