package imaging

import "gonum.org/v1/gonum/stat"

// Floats widens an 8-bit plane to float64.
func Floats(p []uint8) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = float64(v)
	}
	return out
}

// MeanVar returns the mean and population variance of an 8-bit plane.
func MeanVar(p []uint8) (mean, variance float64) {
	if len(p) == 0 {
		return 0, 0
	}
	return stat.PopMeanVariance(Floats(p), nil)
}

// Mean returns the arithmetic mean of an 8-bit plane.
func Mean(p []uint8) float64 {
	if len(p) == 0 {
		return 0
	}
	var sum int
	for _, v := range p {
		sum += int(v)
	}
	return float64(sum) / float64(len(p))
}

// StdDev returns the population standard deviation of an 8-bit plane.
func StdDev(p []uint8) float64 {
	if len(p) == 0 {
		return 0
	}
	return stat.PopStdDev(Floats(p), nil)
}

// CountAbove returns how many samples exceed t.
func CountAbove(p []uint8, t uint8) int {
	var n int
	for _, v := range p {
		if v > t {
			n++
		}
	}
	return n
}
