package strategy

import (
	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

// StructureSignals derives HH/HL/LH/LL from the last three swing highs and
// swing lows within the trailing lookback window. Fewer than five bars yields
// all flags false.
func StructureSignals(bars []model.Bar, lookback int) model.StructureSignals {
	if len(bars) < 5 {
		return model.StructureSignals{}
	}
	if lookback > 0 && lookback < len(bars) {
		bars = bars[len(bars)-lookback:]
	}
	highs := model.Highs(bars)
	lows := model.Lows(bars)

	peaks := pick(highs, lastN(calculator.LocalPeaks(highs), 3))
	troughs := pick(lows, lastN(calculator.LocalTroughs(lows), 3))

	return model.StructureSignals{
		HH: strictly(peaks, func(a, b float64) bool { return b > a }),
		LH: strictly(peaks, func(a, b float64) bool { return b < a }),
		HL: strictly(troughs, func(a, b float64) bool { return b > a }),
		LL: strictly(troughs, func(a, b float64) bool { return b < a }),
	}
}

func lastN(idx []int, n int) []int {
	if len(idx) > n {
		return idx[len(idx)-n:]
	}
	return idx
}

func pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

// strictly reports whether every successive pair satisfies cmp. Needs two points.
func strictly(points []float64, cmp func(prev, next float64) bool) bool {
	if len(points) < 2 {
		return false
	}
	for i := 1; i < len(points); i++ {
		if !cmp(points[i-1], points[i]) {
			return false
		}
	}
	return true
}
