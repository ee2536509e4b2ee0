package calculator

// OBV computes on-balance volume. Day 0 starts at zero; volume is added on a
// higher close, subtracted on a lower close, and OBV holds on a flat close.
func OBV(closes, volumes []float64) []float64 {
	n := len(closes)
	if len(volumes) < n {
		n = len(volumes)
	}
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		switch {
		case IsUndefined(closes[i]) || IsUndefined(closes[i-1]) || IsUndefined(out[i-1]):
			out[i] = Undefined()
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}
