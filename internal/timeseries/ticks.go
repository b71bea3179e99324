package timeseries

import "math"

// TickStep is the spacing of regular gridlines.
const TickStep = 0.5

// MaxGridTicks bounds the regular gridlines for one axis. Past it the step
// widens to the smallest multiple of TickStep that fits, so a corrupt bank
// level cannot blow up the tick slice.
const MaxGridTicks = 200

// GenerateAxisTicks returns ascending tick values covering [0, threshold+1]:
// every multiple of TickStep below the threshold, the threshold itself, the
// multiples above it up to threshold+1, and threshold+1 as the top of the
// domain. No value appears twice, so the threshold always sits on a labeled
// gridline whatever its fractional part.
//
// A non-positive or non-finite threshold yields the ticks of [0, 1].
func GenerateAxisTicks(threshold float64) []float64 {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return []float64{0, TickStep, 2 * TickStep}
	}

	top := threshold + 1
	step := TickStep
	if top/step > MaxGridTicks {
		step = math.Ceil(top/MaxGridTicks/TickStep) * TickStep
	}
	ticks := make([]float64, 0, int(top/step)+3)

	i := 0
	for ; float64(i)*step < threshold; i++ {
		ticks = append(ticks, float64(i)*step)
	}
	ticks = append(ticks, threshold)

	for ; float64(i)*step <= top; i++ {
		v := float64(i) * step
		if v > ticks[len(ticks)-1] {
			ticks = append(ticks, v)
		}
	}
	if top > ticks[len(ticks)-1] {
		ticks = append(ticks, top)
	}
	return ticks
}
