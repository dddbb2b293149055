package feedforward

import "compress/zlib"
import "encoding/json"
import "io"
import "os"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/crystal/datasets"

type weightsFile struct {
	Inputs int                      `json:"inputs"`
	Layers []layerFile              `json:"layers"`
	Scaler *datasets.StandardScaler `json:"scaler,omitempty"`
}

type layerFile struct {
	Outputs    int       `json:"outputs"`
	Activation string    `json:"activation"`
	Weights    []float64 `json:"weights"`
	Biases     []float64 `json:"biases"`
}

// WriteZlibWeightsToFile writes model weights to a zlib compressed json file
func (f FeedforwardNetwork) WriteZlibWeightsToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "create model %q", name)
	}
	err = f.WriteZlibWeights(file)
	if cerr := file.Close(); err == nil && cerr != nil {
		err = errors.Wrapf(cerr, "close model %q", name)
	}
	return err
}

// WriteZlibWeights writes model weights to a writer
func (f FeedforwardNetwork) WriteZlibWeights(w io.Writer) error {
	var doc = weightsFile{Inputs: f.inputs, Scaler: f.Scaler}
	for _, l := range f.layers {
		r, _ := l.w.Dims()
		doc.Layers = append(doc.Layers, layerFile{
			Outputs:    r,
			Activation: l.act.String(),
			Weights:    l.w.RawMatrix().Data,
			Biases:     l.b,
		})
	}
	zw := zlib.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(doc); err != nil {
		return errors.Wrap(err, "encode weights")
	}
	return errors.Wrap(zw.Close(), "compress weights")
}

// ReadZlibWeightsFromFile reads model weights from a zlib compressed json file
func (f *FeedforwardNetwork) ReadZlibWeightsFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return errors.Wrapf(err, "open model %q", name)
	}
	defer file.Close()
	return errors.Wrapf(f.ReadZlibWeights(file), "model %q", name)
}

// ReadZlibWeights reads model weights from a reader. A network without layers
// adopts the stored topology; otherwise the stored topology must match.
func (f *FeedforwardNetwork) ReadZlibWeights(r io.Reader) error {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return errors.Wrap(err, "decompress weights")
	}
	defer zr.Close()

	var doc weightsFile
	if err := json.NewDecoder(zr).Decode(&doc); err != nil {
		return errors.Wrap(err, "decode weights")
	}

	var net FeedforwardNetwork
	net.NewInput(doc.Inputs)
	for i, l := range doc.Layers {
		act, err := ParseActivation(l.Activation)
		if err != nil {
			return errors.Wrapf(err, "layer %d", i)
		}
		in := net.GetOutputs()
		if l.Outputs <= 0 || in <= 0 || len(l.Weights) != l.Outputs*in || len(l.Biases) != l.Outputs {
			return errors.Wrapf(ErrShape, "layer %d stores %d weights and %d biases for %dx%d", i, len(l.Weights), len(l.Biases), l.Outputs, in)
		}
		net.layers = append(net.layers, layer{
			w:   mat.NewDense(l.Outputs, in, l.Weights),
			b:   l.Biases,
			act: act,
		})
	}
	if doc.Scaler != nil {
		if err := doc.Scaler.Check(); err != nil {
			return err
		}
		if doc.Scaler.Fitted() && doc.Scaler.Width() != doc.Inputs {
			return errors.Wrapf(ErrShape, "scaler fitted on %d columns, network takes %d", doc.Scaler.Width(), doc.Inputs)
		}
	}
	net.Scaler = doc.Scaler

	if len(f.layers) > 0 && !f.sameTopology(net) {
		return errors.Wrap(ErrShape, "stored topology differs from the network")
	}
	*f = net
	return nil
}

func (f FeedforwardNetwork) sameTopology(g FeedforwardNetwork) bool {
	if f.inputs != g.inputs || len(f.layers) != len(g.layers) {
		return false
	}
	for i := range f.layers {
		r1, c1 := f.layers[i].w.Dims()
		r2, c2 := g.layers[i].w.Dims()
		if r1 != r2 || c1 != c2 || f.layers[i].act != g.layers[i].act {
			return false
		}
	}
	return true
}
