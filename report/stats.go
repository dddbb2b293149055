// Package report computes error statistics of a regression and renders them
// as text tables.
package report

import "math"
import "sort"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/floats"
import "gonum.org/v1/gonum/stat"

// Bins is the default number of histogram bins
const Bins = 11

// Levels are the reported percentiles of the absolute error
var Levels = []float64{0.05, 0.25, 0.5, 0.75, 0.95}

// Percentile of the absolute error
type Percentile struct {
	P      float64
	AbsErr float64
}

// Bin of the signed error histogram, counting errors in [Lo, Hi)
type Bin struct {
	Lo, Hi float64
	Count  int
}

// Stats summarize prediction errors (prediction minus target)
type Stats struct {
	N       int
	MAE     float64
	RMSE    float64
	Bias    float64 // mean signed error
	StdErr  float64 // population standard deviation of the signed error
	MaxAbs  float64
	R2      float64 // NaN when the targets are constant
	Pearson float64 // NaN when predictions or targets are constant

	Percentiles []Percentile
	Histogram   []Bin
}

// Compute the error statistics with the default number of bins
func Compute(pred, target []float64) (Stats, error) {
	return ComputeBins(pred, target, Bins)
}

// ComputeBins computes the error statistics with a histogram of bins bins,
// symmetric around zero and just wide enough for the largest error. A
// non-finite prediction or target is an error.
func ComputeBins(pred, target []float64, bins int) (Stats, error) {
	if len(pred) != len(target) {
		return Stats{}, errors.Errorf("%d predictions for %d targets", len(pred), len(target))
	}
	if len(pred) == 0 {
		return Stats{}, errors.New("no predictions")
	}
	for i := range pred {
		if !finite(pred[i]) || !finite(target[i]) {
			return Stats{}, errors.Errorf("row %d: prediction %v, target %v", i, pred[i], target[i])
		}
	}
	if bins < 1 {
		bins = 1
	}

	var s = Stats{N: len(pred)}
	var errs = make([]float64, len(pred))
	var abs = make([]float64, len(pred))
	floats.SubTo(errs, pred, target)
	for i, e := range errs {
		abs[i] = math.Abs(e)
	}

	var variance float64
	s.Bias, variance = stat.PopMeanVariance(errs, nil)
	s.StdErr = math.Sqrt(variance)
	s.MAE = stat.Mean(abs, nil)
	s.RMSE = math.Sqrt(floats.Dot(errs, errs) / float64(len(errs)))
	s.MaxAbs = floats.Max(abs)
	s.R2 = stat.RSquaredFrom(pred, target, nil)
	s.Pearson = stat.Correlation(pred, target, nil)

	sort.Float64s(abs)
	for _, p := range Levels {
		s.Percentiles = append(s.Percentiles, Percentile{P: p, AbsErr: stat.Quantile(p, stat.Empirical, abs, nil)})
	}

	s.Histogram = histogram(errs, s.MaxAbs, bins)
	return s, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func histogram(errs []float64, maxAbs float64, bins int) []Bin {
	var limit = maxAbs
	if limit == 0 {
		limit = 1
	}
	var dividers = floats.Span(make([]float64, bins+1), -limit, limit)
	// the largest error must fall inside the last bin
	dividers[bins] = math.Nextafter(limit, math.Inf(1))

	var sorted = append([]float64(nil), errs...)
	sort.Float64s(sorted)
	var counts = stat.Histogram(nil, dividers, sorted, nil)

	var out = make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	return out
}
