// Package feedforward implements a feedforward network type: a multilayer
// perceptron of dense layers trained by backpropagation.
package feedforward

import "math"
import "math/rand"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/crystal/datasets"

// ErrShape is returned when inputs don't match the network topology.
var ErrShape = errors.New("network shape mismatch")

// layer is one dense layer computing act(x·Wᵀ + b)
type layer struct {
	w   *mat.Dense // outputs x inputs
	b   []float64
	act Activation
}

// FeedforwardNetwork is the feedforward network
type FeedforwardNetwork struct {
	inputs int
	layers []layer

	// Scaler is the standardization the network was trained with, saved along the weights.
	Scaler *datasets.StandardScaler
}

// NewInput sets the input width. It must be called before the first NewLayer.
func (f *FeedforwardNetwork) NewInput(n int) {
	f.inputs = n
	f.layers = nil
}

// NewLayer adds a dense layer of n units to the end of network. Weights start at zero, see Init.
func (f *FeedforwardNetwork) NewLayer(n int, act Activation) {
	var in = f.GetOutputs()
	f.layers = append(f.layers, layer{
		w:   mat.NewDense(n, in, nil),
		b:   make([]float64, n),
		act: act,
	})
}

// Init draws fresh weights: He uniform for ReLU layers, Glorot uniform otherwise. Biases are zeroed.
func (f *FeedforwardNetwork) Init(rng *rand.Rand) {
	for _, l := range f.layers {
		out, in := l.w.Dims()
		var limit float64
		if l.act == ReLU {
			limit = math.Sqrt(6 / float64(in))
		} else {
			limit = math.Sqrt(6 / float64(in+out))
		}
		var data = l.w.RawMatrix().Data
		for i := range data {
			data[i] = (2*rng.Float64() - 1) * limit
		}
		for i := range l.b {
			l.b[i] = 0
		}
	}
}

// Len returns the number of trainable parameters inside the network.
func (f FeedforwardNetwork) Len() (o int) {
	for _, l := range f.layers {
		o += len(l.w.RawMatrix().Data) + len(l.b)
	}
	return
}

// LenLayers returns the number of dense layers
func (f FeedforwardNetwork) LenLayers() int {
	return len(f.layers)
}

// GetInputs returns the input width
func (f FeedforwardNetwork) GetInputs() int {
	return f.inputs
}

// GetOutputs returns the output width, the input width for a network without layers
func (f FeedforwardNetwork) GetOutputs() int {
	if len(f.layers) == 0 {
		return f.inputs
	}
	r, _ := f.layers[len(f.layers)-1].w.Dims()
	return r
}

// GetActivation returns the activation of layer n
func (f FeedforwardNetwork) GetActivation(n int) Activation {
	return f.layers[n].act
}

// Params returns live views of all parameters: for each layer its weights, then its biases.
// Writing into them changes the network.
func (f FeedforwardNetwork) Params() [][]float64 {
	var out = make([][]float64, 0, 2*len(f.layers))
	for _, l := range f.layers {
		out = append(out, l.w.RawMatrix().Data, l.b)
	}
	return out
}

// Forward computes the network output for a batch, one row per sample.
// It only reads the network, so it may run concurrently.
func (f FeedforwardNetwork) Forward(x *mat.Dense) (*mat.Dense, error) {
	_, c := x.Dims()
	if c != f.inputs || len(f.layers) == 0 {
		return nil, errors.Wrapf(ErrShape, "batch has %d columns, network takes %d", c, f.inputs)
	}
	var a = x
	for _, l := range f.layers {
		a = l.forward(a)
		a.Apply(func(_, _ int, v float64) float64 { return l.act.apply(v) }, a)
	}
	return a, nil
}

// forward computes x·Wᵀ + b without activation
func (l layer) forward(x *mat.Dense) *mat.Dense {
	var z mat.Dense
	z.Mul(x, l.w.T())
	r, _ := z.Dims()
	for i := 0; i < r; i++ {
		row := z.RawRowView(i)
		for j := range row {
			row[j] += l.b[j]
		}
	}
	return &z
}

// Infer returns the first output for a single sample.
func (f FeedforwardNetwork) Infer(x []float64) (float64, error) {
	out, err := f.Forward(mat.NewDense(1, len(x), append([]float64(nil), x...)))
	if err != nil {
		return 0, err
	}
	return out.At(0, 0), nil
}

// Backward runs the batch forward, returning the mean squared error against y
// and its gradient for every parameter, aligned with Params. The network must
// have a single output.
func (f FeedforwardNetwork) Backward(x *mat.Dense, y []float64) (loss float64, grads [][]float64, err error) {
	n, c := x.Dims()
	if c != f.inputs || len(f.layers) == 0 || f.GetOutputs() != 1 {
		return 0, nil, errors.Wrapf(ErrShape, "batch has %d columns, network takes %d and yields %d", c, f.inputs, f.GetOutputs())
	}
	if n != len(y) || n == 0 {
		return 0, nil, errors.Wrapf(ErrShape, "batch has %d rows and %d targets", n, len(y))
	}

	// acts[i] is the input of layer i, zs[i] its pre-activation
	var acts = make([]*mat.Dense, len(f.layers)+1)
	var zs = make([]*mat.Dense, len(f.layers))
	acts[0] = x
	for i, l := range f.layers {
		zs[i] = l.forward(acts[i])
		var a mat.Dense
		a.Apply(func(_, _ int, v float64) float64 { return l.act.apply(v) }, zs[i])
		acts[i+1] = &a
	}

	var out = acts[len(f.layers)]
	var delta = mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		d := out.At(i, 0) - y[i]
		loss += d * d
		delta.Set(i, 0, 2*d/float64(n))
	}
	loss /= float64(n)

	grads = make([][]float64, 2*len(f.layers))
	for i := len(f.layers) - 1; i >= 0; i-- {
		l := f.layers[i]
		z := zs[i]
		delta.Apply(func(r, c int, v float64) float64 { return v * l.act.derivative(z.At(r, c)) }, delta)

		var gw mat.Dense
		gw.Mul(delta.T(), acts[i])
		grads[2*i] = gw.RawMatrix().Data

		gb := make([]float64, len(l.b))
		rows, _ := delta.Dims()
		for r := 0; r < rows; r++ {
			for j, v := range delta.RawRowView(r) {
				gb[j] += v
			}
		}
		grads[2*i+1] = gb

		if i > 0 {
			var next mat.Dense
			next.Mul(delta, l.w)
			delta = &next
		}
	}
	return loss, grads, nil
}
