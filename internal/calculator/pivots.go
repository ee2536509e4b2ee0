package calculator

// LocalPeaks returns the indices of strict local maxima. Endpoints never qualify.
func LocalPeaks(values []float64) []int {
	var idx []int
	for i := 1; i < len(values)-1; i++ {
		if values[i] > values[i-1] && values[i] > values[i+1] {
			idx = append(idx, i)
		}
	}
	return idx
}

// LocalTroughs returns the indices of strict local minima. Endpoints never qualify.
func LocalTroughs(values []float64) []int {
	var idx []int
	for i := 1; i < len(values)-1; i++ {
		if values[i] < values[i-1] && values[i] < values[i+1] {
			idx = append(idx, i)
		}
	}
	return idx
}
