package stats

import "math"

// R2 calculates the coefficient of determination of predictions against
// actual values. Returns 0 when the actual values have no variance.
func R2(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}

	mean := Mean(actual)
	var ssRes, ssTot float64
	for i, a := range actual {
		resid := a - predicted[i]
		ssRes += resid * resid
		dev := a - mean
		ssTot += dev * dev
	}

	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// MAE calculates the mean absolute error
func MAE(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}

	var sum float64
	for i, a := range actual {
		sum += math.Abs(a - predicted[i])
	}
	return sum / float64(len(actual))
}

// RMSE calculates the root mean squared error
func RMSE(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}

	var sum float64
	for i, a := range actual {
		diff := a - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}
