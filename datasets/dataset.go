// Package datasets implements the in-memory feature matrix shared by every
// problem, plus shuffling, splitting and standard scaling.
package datasets

import "math/rand"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/mat"

// ErrEmpty is returned when an operation needs at least one row.
var ErrEmpty = errors.New("dataset is empty")

// ErrShape is returned when rows have inconsistent width.
var ErrShape = errors.New("dataset shape mismatch")

// Dataset is a feature matrix X with one target in Y per row.
// IDs is optional and, when present, has the same length as Y.
type Dataset struct {
	X   [][]float64
	Y   []float64
	IDs []string
}

// Len returns the number of rows
func (d Dataset) Len() int {
	return len(d.Y)
}

// Width returns the number of feature columns, 0 for an empty dataset
func (d Dataset) Width() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}

// Append adds one row.
func (d *Dataset) Append(id string, x []float64, y float64) {
	d.X = append(d.X, x)
	d.Y = append(d.Y, y)
	d.IDs = append(d.IDs, id)
}

// Check verifies that X, Y and IDs agree and every row has the same width.
func (d Dataset) Check() error {
	if len(d.X) != len(d.Y) {
		return errors.Wrapf(ErrShape, "%d rows but %d targets", len(d.X), len(d.Y))
	}
	if d.IDs != nil && len(d.IDs) != len(d.Y) {
		return errors.Wrapf(ErrShape, "%d ids but %d targets", len(d.IDs), len(d.Y))
	}
	var w = d.Width()
	for i, row := range d.X {
		if len(row) != w {
			return errors.Wrapf(ErrShape, "row %d has width %d, expected %d", i, len(row), w)
		}
	}
	return nil
}

// Shuffle permutes rows, targets and ids together
func (d Dataset) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.Y), func(i, j int) {
		d.X[i], d.X[j] = d.X[j], d.X[i]
		d.Y[i], d.Y[j] = d.Y[j], d.Y[i]
		if d.IDs != nil {
			d.IDs[i], d.IDs[j] = d.IDs[j], d.IDs[i]
		}
	})
}

// Split splits the dataset into a train part holding the first fraction of rows
// and a test part holding the rest. Fraction is clamped to [0, 1].
// Both parts share backing arrays with d.
func (d Dataset) Split(fraction float64) (train, test Dataset) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	var n = int(fraction * float64(d.Len()))
	train = Dataset{X: d.X[:n], Y: d.Y[:n]}
	test = Dataset{X: d.X[n:], Y: d.Y[n:]}
	if d.IDs != nil {
		train.IDs = d.IDs[:n]
		test.IDs = d.IDs[n:]
	}
	return
}

// Dense copies the dataset into a gonum matrix and target vector.
func (d Dataset) Dense() (*mat.Dense, *mat.VecDense, error) {
	if d.Len() == 0 {
		return nil, nil, ErrEmpty
	}
	if err := d.Check(); err != nil {
		return nil, nil, err
	}
	var w = d.Width()
	var data = make([]float64, 0, d.Len()*w)
	for _, row := range d.X {
		data = append(data, row...)
	}
	var y = make([]float64, d.Len())
	copy(y, d.Y)
	return mat.NewDense(d.Len(), w, data), mat.NewVecDense(d.Len(), y), nil
}
