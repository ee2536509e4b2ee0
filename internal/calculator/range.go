package calculator

// RollingRange returns the highest high and lowest low over the lookback
// window ending at index.
func RollingRange(highs, lows []float64, index, lookback int) (high, low float64) {
	start, end, ok := window(len(highs), index, lookback)
	if !ok || len(lows) != len(highs) {
		return Undefined(), Undefined()
	}
	high = RollingHighestClose(highs, end, end-start+1)
	low = LowestSince(lows[:end+1], start)
	return high, low
}

// RangePosition returns where current sits within [low, high], clamped to 0..1.
// A zero-width range yields 0.5.
func RangePosition(current, high, low float64) float64 {
	if !Defined(current, high, low) || high < low {
		return Undefined()
	}
	if high == low {
		return 0.5
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos
}
