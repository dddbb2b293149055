package datasets

import "math"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/stat"

// StandardScaler standardizes features and target to zero mean and unit
// variance using statistics of the data it was fitted on.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`

	TargetMean float64 `json:"target_mean"`
	TargetStd  float64 `json:"target_std"`
}

// Fit computes per-column mean and population standard deviation of d.
func (s *StandardScaler) Fit(d Dataset) error {
	if d.Len() == 0 {
		return ErrEmpty
	}
	if err := d.Check(); err != nil {
		return err
	}
	var w = d.Width()
	s.Mean = make([]float64, w)
	s.Std = make([]float64, w)
	var col = make([]float64, d.Len())
	for j := 0; j < w; j++ {
		for i, row := range d.X {
			col[i] = row[j]
		}
		s.Mean[j], s.Std[j] = meanStd(col)
	}
	s.TargetMean, s.TargetStd = meanStd(d.Y)
	return nil
}

// meanStd returns the mean and the population (biased) standard deviation.
func meanStd(x []float64) (float64, float64) {
	mean, variance := stat.PopMeanVariance(x, nil)
	return mean, math.Sqrt(variance)
}

// Fitted reports whether Fit was called
func (s *StandardScaler) Fitted() bool {
	return s != nil && len(s.Mean) > 0
}

// Width is the number of columns the scaler was fitted on
func (s *StandardScaler) Width() int {
	return len(s.Mean)
}

// Check reports a scaler whose statistics don't line up, as a corrupt model file may hold.
func (s *StandardScaler) Check() error {
	if len(s.Std) != len(s.Mean) {
		return errors.Wrapf(ErrShape, "scaler has %d means and %d deviations", len(s.Mean), len(s.Std))
	}
	return nil
}

// Transform returns a standardized copy of row. A zero-variance column is only centred.
func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if err := s.Check(); err != nil {
		return nil, err
	}
	if len(row) != len(s.Mean) {
		return nil, errors.Wrapf(ErrShape, "scaler fitted on %d columns, got %d", len(s.Mean), len(row))
	}
	var out = make([]float64, len(row))
	for j, v := range row {
		out[j] = v - s.Mean[j]
		if s.Std[j] > 0 {
			out[j] /= s.Std[j]
		}
	}
	return out, nil
}

// TransformAll returns a standardized copy of the dataset; ids are shared.
func (s *StandardScaler) TransformAll(d Dataset) (Dataset, error) {
	var out = Dataset{
		X:   make([][]float64, d.Len()),
		Y:   make([]float64, d.Len()),
		IDs: d.IDs,
	}
	for i := range d.X {
		row, err := s.Transform(d.X[i])
		if err != nil {
			return Dataset{}, errors.Wrapf(err, "row %d", i)
		}
		out.X[i] = row
		out.Y[i] = s.TransformTarget(d.Y[i])
	}
	return out, nil
}

// TransformTarget standardizes a target value
func (s *StandardScaler) TransformTarget(y float64) float64 {
	y -= s.TargetMean
	if s.TargetStd > 0 {
		y /= s.TargetStd
	}
	return y
}

// InverseTarget maps a standardized prediction back to physical units
func (s *StandardScaler) InverseTarget(y float64) float64 {
	if s.TargetStd > 0 {
		y *= s.TargetStd
	}
	return y + s.TargetMean
}
