package datasets

import "math"
import "math/rand"
import "testing"

import "github.com/pkg/errors"

func sample(n int) (d Dataset) {
	for i := 0; i < n; i++ {
		d.Append(string(rune('a'+i)), []float64{float64(i), float64(2 * i)}, float64(10*i))
	}
	return
}

func TestShuffleKeepsRowsTogether(t *testing.T) {
	d := sample(20)
	d.Shuffle(rand.New(rand.NewSource(1)))
	for i := range d.Y {
		if d.X[i][1] != 2*d.X[i][0] || d.Y[i] != 10*d.X[i][0] {
			t.Fatalf("row %d was torn apart: %v %v", i, d.X[i], d.Y[i])
		}
		if d.IDs[i] != string(rune('a'+int(d.X[i][0]))) {
			t.Fatalf("id %d was torn apart: %q", i, d.IDs[i])
		}
	}
}

func TestSplit(t *testing.T) {
	d := sample(10)
	for _, tc := range []struct {
		fraction    float64
		train, test int
	}{
		{0.8, 8, 2},
		{0.75, 7, 3},
		{0, 0, 10},
		{1, 10, 0},
		{-1, 0, 10},
		{2, 10, 0},
	} {
		train, test := d.Split(tc.fraction)
		if train.Len() != tc.train || test.Len() != tc.test {
			t.Errorf("split %v: got %d/%d, want %d/%d", tc.fraction, train.Len(), test.Len(), tc.train, tc.test)
		}
		if len(train.IDs) != train.Len() || len(test.IDs) != test.Len() {
			t.Errorf("split %v: ids not split along", tc.fraction)
		}
	}
}

func TestCheck(t *testing.T) {
	d := sample(3)
	if err := d.Check(); err != nil {
		t.Fatal(err)
	}
	d.X[1] = []float64{1}
	if err := d.Check(); err == nil {
		t.Errorf("ragged rows not detected")
	}
}

func TestDense(t *testing.T) {
	if _, _, err := (Dataset{}).Dense(); err != ErrEmpty {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
	x, y, err := sample(4).Dense()
	if err != nil {
		t.Fatal(err)
	}
	r, c := x.Dims()
	if r != 4 || c != 2 || y.Len() != 4 {
		t.Fatalf("bad dims %dx%d, %d", r, c, y.Len())
	}
	if x.At(3, 1) != 6 || y.AtVec(2) != 20 {
		t.Errorf("bad values %v %v", x.At(3, 1), y.AtVec(2))
	}
}

func TestStandardScaler(t *testing.T) {
	var d Dataset
	d.Append("", []float64{1, 5}, 2)
	d.Append("", []float64{3, 5}, 4)
	d.Append("", []float64{5, 5}, 6)

	var s StandardScaler
	if err := s.Fit(d); err != nil {
		t.Fatal(err)
	}
	if s.Mean[0] != 3 || s.Mean[1] != 5 || s.TargetMean != 4 {
		t.Errorf("bad means %v %v", s.Mean, s.TargetMean)
	}
	if math.Abs(s.Std[0]-math.Sqrt(8.0/3)) > 1e-12 || s.Std[1] != 0 {
		t.Errorf("bad std %v", s.Std)
	}

	out, err := s.TransformAll(d)
	if err != nil {
		t.Fatal(err)
	}
	var sum, sq float64
	for _, row := range out.X {
		sum += row[0]
		sq += row[0] * row[0]
		if row[1] != 0 {
			t.Errorf("constant column must be centred to 0, got %v", row[1])
		}
	}
	if math.Abs(sum) > 1e-12 || math.Abs(sq/3-1) > 1e-12 {
		t.Errorf("column not standardized: sum %v, mean square %v", sum, sq/3)
	}
	for i, y := range out.Y {
		if math.Abs(s.InverseTarget(y)-d.Y[i]) > 1e-12 {
			t.Errorf("target %d does not round trip: %v", i, s.InverseTarget(y))
		}
	}

	if _, err := s.Transform([]float64{1}); err == nil {
		t.Errorf("width mismatch not reported")
	}
	var empty StandardScaler
	if err := empty.Fit(Dataset{}); err != ErrEmpty {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestScalerMismatchedStatistics(t *testing.T) {
	s := StandardScaler{Mean: []float64{0}, Std: []float64{}}
	if err := s.Check(); errors.Cause(err) != ErrShape {
		t.Errorf("expected ErrShape, got %v", err)
	}
	if _, err := s.Transform([]float64{1}); errors.Cause(err) != ErrShape {
		t.Errorf("transform with missing deviations: %v", err)
	}
}
