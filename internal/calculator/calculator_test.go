package calculator

import (
	"math"
	"testing"

	"TradeSentinel/internal/model"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func flatBars(n int, o, h, l, c float64, vol int64) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{Time: int64(1700000000 + i*86400), Open: o, High: h, Low: l, Close: c, Volume: vol}
	}
	return bars
}

func TestEMA_ConstantSeriesIsExact(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 42.5
	}
	for _, period := range []int{1, 5, 20, 50} {
		ema := EMA(values, period)
		if len(ema) != len(values) {
			t.Fatalf("period %d: expected aligned length %d, got %d", period, len(values), len(ema))
		}
		for i := 0; i < period-1; i++ {
			if !IsUndefined(ema[i]) {
				t.Errorf("period %d: index %d should be undefined, got %f", period, i, ema[i])
			}
		}
		for i := period - 1; i < len(ema); i++ {
			if ema[i] != 42.5 {
				t.Errorf("period %d: index %d expected 42.5, got %f", period, i, ema[i])
			}
		}
	}
}

func TestEMA_SeedAndRecurrence(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	ema := EMA(values, 3)
	if !approx(ema[2], 2, 1e-12) {
		t.Fatalf("seed should be SMA of first 3 values (2), got %f", ema[2])
	}
	alpha := 2.0 / 4.0
	want := 4*alpha + 2*(1-alpha)
	if !approx(ema[3], want, 1e-12) {
		t.Errorf("ema[3]: expected %f, got %f", want, ema[3])
	}
	want = 5*alpha + want*(1-alpha)
	if !approx(ema[4], want, 1e-12) {
		t.Errorf("ema[4]: expected %f, got %f", want, ema[4])
	}
}

func TestEMA_ShortInputAllUndefined(t *testing.T) {
	ema := EMA([]float64{1, 2}, 5)
	if len(ema) != 2 || !IsUndefined(ema[0]) || !IsUndefined(ema[1]) {
		t.Errorf("expected two undefined values, got %v", ema)
	}
	if got := EMA(nil, 3); len(got) != 0 {
		t.Errorf("expected empty series for empty input, got %v", got)
	}
}

func TestEMA_UndefinedInputPropagates(t *testing.T) {
	values := []float64{1, 2, 3, math.NaN(), 5, 6, 7}
	ema := EMA(values, 2)
	for i := 3; i < len(ema); i++ {
		if !IsUndefined(ema[i]) {
			t.Errorf("index %d should be undefined after an undefined input, got %f", i, ema[i])
		}
	}
	if IsUndefined(ema[2]) {
		t.Error("index 2 precedes the undefined input and should be defined")
	}
}

func TestSMA(t *testing.T) {
	sma := SMA([]float64{2, 4, 6, 8}, 2)
	want := []float64{math.NaN(), 3, 5, 7}
	for i := range want {
		if i == 0 {
			if !IsUndefined(sma[0]) {
				t.Errorf("index 0 should be undefined")
			}
			continue
		}
		if !approx(sma[i], want[i], 1e-12) {
			t.Errorf("index %d: expected %f, got %f", i, want[i], sma[i])
		}
	}
}

func TestTrueRange(t *testing.T) {
	bars := []model.Bar{
		{High: 10, Low: 8, Close: 9},
		{High: 12, Low: 11, Close: 11.5},  // gap up: |12-9|
		{High: 11, Low: 7, Close: 8},      // |7-11.5|
		{High: 8.5, Low: 8.2, Close: 8.4}, // |8.5-8|
	}
	tr := TrueRange(bars)
	want := []float64{2, 3, 4.5, 0.5}
	for i := range want {
		if !approx(tr[i], want[i], 1e-12) {
			t.Errorf("tr[%d]: expected %f, got %f", i, want[i], tr[i])
		}
	}
}

func TestTrueRange_UndefinedPrevClosePropagates(t *testing.T) {
	bars := flatBars(20, 100, 105, 100, 102, 1000)
	bars[10].Close = math.NaN()
	tr := TrueRange(bars)
	if !approx(tr[10], 5, 1e-12) {
		t.Errorf("tr[10] has a defined previous close, expected 5, got %f", tr[10])
	}
	if !IsUndefined(tr[11]) {
		t.Errorf("tr[11] follows an undefined close and should be undefined, got %f", tr[11])
	}
	if !approx(tr[12], 5, 1e-12) {
		t.Errorf("tr[12] expected 5, got %f", tr[12])
	}

	bars = flatBars(5, 100, 105, 100, 102, 1000)
	bars[2].High = math.NaN()
	if tr := TrueRange(bars); !IsUndefined(tr[2]) {
		t.Errorf("undefined high should give an undefined range, got %f", tr[2])
	}
}

func TestATR_UndefinedInputPropagates(t *testing.T) {
	bars := flatBars(20, 100, 105, 100, 102, 1000)
	bars[10].Close = math.NaN()
	for i, v := range ATR(bars, 14) {
		if !IsUndefined(v) {
			t.Errorf("atr[%d]: seed window holds an undefined range, got %f", i, v)
		}
	}

	bars = flatBars(20, 100, 105, 100, 102, 1000)
	bars[15].Close = math.NaN()
	atr := ATR(bars, 14)
	if !approx(atr[15], 5, 1e-12) {
		t.Errorf("atr[15] precedes the undefined range, expected 5, got %f", atr[15])
	}
	for i := 16; i < len(atr); i++ {
		if !IsUndefined(atr[i]) {
			t.Errorf("atr[%d] should be undefined, got %f", i, atr[i])
		}
	}
}

func TestATR_ConstantBarsConvergeToZero(t *testing.T) {
	atr := ATR(flatBars(30, 50, 50, 50, 50, 100), 14)
	for i := 13; i < len(atr); i++ {
		if atr[i] != 0 {
			t.Errorf("atr[%d]: expected 0, got %f", i, atr[i])
		}
	}
	for i := 0; i < 13; i++ {
		if !IsUndefined(atr[i]) {
			t.Errorf("atr[%d] should be undefined", i)
		}
	}
}

func TestATR_FixedRange(t *testing.T) {
	atr := ATR(flatBars(20, 100, 105, 100, 102, 1000), 14)
	if got := Last(atr); !approx(got, 5.0, 1e-9) {
		t.Errorf("expected ATR 5.0, got %f", got)
	}
}

func TestATR_WilderSmoothing(t *testing.T) {
	bars := flatBars(4, 10, 11, 10, 10.5, 1)
	bars[3].High = 14 // tr = max(4, 3.5, 0.5) = 4
	atr := ATR(bars, 3)
	if !approx(atr[2], 1, 1e-12) {
		t.Fatalf("seed: expected 1, got %f", atr[2])
	}
	want := 1*2.0/3.0 + 4.0/3.0
	if !approx(atr[3], want, 1e-12) {
		t.Errorf("atr[3]: expected %f, got %f", want, atr[3])
	}
}

func TestATR_Degenerate(t *testing.T) {
	if got := ATR(nil, 14); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
	got := ATR(flatBars(5, 1, 2, 1, 1, 1), 14)
	for i, v := range got {
		if !IsUndefined(v) {
			t.Errorf("index %d should be undefined, got %f", i, v)
		}
	}
}

func TestRollingHighestClose(t *testing.T) {
	closes := []float64{5, 9, 7, 3, 8}
	tests := []struct {
		index, lookback int
		want            float64
	}{
		{4, 2, 8},
		{4, 3, 8},
		{3, 3, 9},
		{1, 60, 9}, // window clamped at 0
		{0, 1, 5},
	}
	for _, tt := range tests {
		if got := RollingHighestClose(closes, tt.index, tt.lookback); got != tt.want {
			t.Errorf("index %d lookback %d: expected %f, got %f", tt.index, tt.lookback, tt.want, got)
		}
	}
	if !IsUndefined(RollingHighestClose(closes, -1, 3)) {
		t.Error("negative index should be undefined")
	}
	if !IsUndefined(RollingHighestClose(nil, 0, 3)) {
		t.Error("empty window should be undefined")
	}
	if !IsUndefined(RollingHighestClose([]float64{1, math.NaN(), 2}, 2, 3)) {
		t.Error("undefined close inside the window should be undefined")
	}
}

func TestRollingAvgVolume(t *testing.T) {
	vols := []float64{100, 200, 300, 400}
	if got := RollingAvgVolume(vols, 3, 2); got != 350 {
		t.Errorf("expected 350, got %f", got)
	}
	if got := RollingAvgVolume(vols, 1, 20); got != 150 {
		t.Errorf("expected 150 with a clamped window, got %f", got)
	}
	if !IsUndefined(RollingAvgVolume(vols, 4, 2)) {
		t.Error("out-of-range index should be undefined")
	}
}

func TestLocalPeaksAndTroughs(t *testing.T) {
	values := []float64{5, 7, 6, 6, 8, 4, 9}
	peaks := LocalPeaks(values)
	if len(peaks) != 2 || peaks[0] != 1 || peaks[1] != 4 {
		t.Errorf("expected peaks [1 4], got %v", peaks)
	}
	troughs := LocalTroughs(values)
	if len(troughs) != 1 || troughs[0] != 5 {
		t.Errorf("expected troughs [5], got %v", troughs)
	}
	// Plateaus are not strict extrema and endpoints never qualify.
	if got := LocalPeaks([]float64{9, 1, 1, 1, 9}); len(got) != 0 {
		t.Errorf("expected no peaks, got %v", got)
	}
}

func TestOBV(t *testing.T) {
	closes := []float64{10, 11, 11, 10, 12}
	vols := []float64{500, 100, 200, 300, 400}
	obv := OBV(closes, vols)
	want := []float64{0, 100, 100, -200, 200}
	for i := range want {
		if obv[i] != want[i] {
			t.Errorf("obv[%d]: expected %f, got %f", i, want[i], obv[i])
		}
	}
	obv = OBV([]float64{1, math.NaN(), 2, 3}, []float64{1, 1, 1, 1})
	for i := 1; i < len(obv); i++ {
		if !IsUndefined(obv[i]) {
			t.Errorf("obv[%d] should be undefined after an undefined close", i)
		}
	}
}

func TestRSI(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = float64(100 + i)
	}
	rsi := RSI(closes, 14)
	for i := 0; i < 14; i++ {
		if !IsUndefined(rsi[i]) {
			t.Errorf("rsi[%d] should be undefined", i)
		}
	}
	if got := Last(rsi); !approx(got, 100, 1e-9) {
		t.Errorf("monotonic rise should give RSI 100, got %f", got)
	}
	short := RSI(closes[:10], 14)
	if !IsUndefined(Last(short)) {
		t.Error("short input should be undefined")
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		current, high, low, want float64
	}{
		{150, 200, 100, 0.5},
		{250, 200, 100, 1},
		{50, 200, 100, 0},
		{100, 100, 100, 0.5},
	}
	for _, tt := range tests {
		if got := RangePosition(tt.current, tt.high, tt.low); got != tt.want {
			t.Errorf("RangePosition(%v,%v,%v): expected %f, got %f", tt.current, tt.high, tt.low, tt.want, got)
		}
	}
	if !IsUndefined(RangePosition(1, 0, 2)) {
		t.Error("inverted range should be undefined")
	}
	if !IsUndefined(RangePosition(math.NaN(), 2, 1)) {
		t.Error("undefined operand should be undefined")
	}
}

func TestRollingRange(t *testing.T) {
	highs := []float64{5, 8, 6, 7}
	lows := []float64{1, 4, 2, 3}
	h, l := RollingRange(highs, lows, 3, 3)
	if h != 8 || l != 2 {
		t.Errorf("expected (8, 2), got (%f, %f)", h, l)
	}
}
