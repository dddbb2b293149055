package learning

import "math"

// MSE is the mean squared error, 0 for empty input.
func MSE(pred, target []float64) float64 {
	if len(pred) == 0 {
		return 0
	}
	var sum float64
	for i := range pred {
		d := pred[i] - target[i]
		sum += d * d
	}
	return sum / float64(len(pred))
}

// RMSE is the square root of MSE
func RMSE(pred, target []float64) float64 {
	return math.Sqrt(MSE(pred, target))
}

// MAE is the mean absolute error, 0 for empty input.
func MAE(pred, target []float64) float64 {
	if len(pred) == 0 {
		return 0
	}
	var sum float64
	for i := range pred {
		sum += math.Abs(pred[i] - target[i])
	}
	return sum / float64(len(pred))
}
