package trainer

import "log/slog"
import "math"
import "sync"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/crystal/datasets"
import "github.com/neurlang/crystal/learning"
import "github.com/neurlang/crystal/net/feedforward"
import "github.com/neurlang/crystal/parallel"

// Evaluation is the network's error on a dataset, in physical units.
type Evaluation struct {
	MSE  float64
	MAE  float64
	Pred []float64
}

// Predict runs the network over raw rows, standardizing inputs and mapping
// outputs back with the network's scaler.
func Predict(net *feedforward.FeedforwardNetwork, ds datasets.Dataset, threads int) ([]float64, error) {
	if !net.Scaler.Fitted() {
		return nil, errors.New("network has no fitted scaler")
	}
	var pred = make([]float64, ds.Len())
	var (
		mut      sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mut.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mut.Unlock()
	}
	parallel.ForChunks(ds.Len(), threads, func(from, to int) {
		x := mat.NewDense(to-from, net.GetInputs(), nil)
		for i := from; i < to; i++ {
			row, err := net.Scaler.Transform(ds.X[i])
			if err != nil {
				fail(errors.Wrapf(err, "row %d", i))
				return
			}
			copy(x.RawRowView(i-from), row)
		}
		out, err := net.Forward(x)
		if err != nil {
			fail(err)
			return
		}
		for i := from; i < to; i++ {
			pred[i] = net.Scaler.InverseTarget(out.At(i-from, 0))
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return pred, nil
}

// NewEvaluateFunc returns a closure measuring the network on the raw test set.
// When the test MSE is lower than *best and dstmodel names a file, the model
// is written there. best is updated with every improvement; nil means always save.
func NewEvaluateFunc(net *feedforward.FeedforwardNetwork, test datasets.Dataset, threads int, best *float64, dstmodel *string) func() (Evaluation, error) {
	return func() (Evaluation, error) {
		pred, err := Predict(net, test, threads)
		if err != nil {
			return Evaluation{}, err
		}
		var ev = Evaluation{
			MSE:  learning.MSE(pred, test.Y),
			MAE:  learning.MAE(pred, test.Y),
			Pred: pred,
		}
		var improved = best == nil || ev.MSE < *best
		if improved && dstmodel != nil && *dstmodel != "" {
			if err := net.WriteZlibWeightsToFile(*dstmodel); err != nil {
				return ev, err
			}
			slog.Debug("model saved", "path", *dstmodel, "test_mse", ev.MSE)
		}
		if improved && best != nil {
			*best = ev.MSE
		}
		return ev, nil
	}
}

// NoBest is the starting value for the best test MSE
func NoBest() *float64 {
	var b = math.Inf(1)
	return &b
}
