package trainer

import "math/rand"

import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/crystal/datasets"
import "github.com/neurlang/crystal/learning"
import "github.com/neurlang/crystal/net/feedforward"

// NewTrainEpochFunc returns a closure running one epoch over the standardized
// train set: shuffle, then forward, MSE, backward and an Adam step per
// minibatch. It returns the mean training loss of the epoch.
// opt must have been created over net.Params() after any Resume.
func NewTrainEpochFunc(net *feedforward.FeedforwardNetwork, opt *learning.Adam, train datasets.Dataset, batchSize int, rng *rand.Rand) func() (float64, error) {
	var order = make([]int, train.Len())
	for i := range order {
		order[i] = i
	}
	var width = train.Width()
	if batchSize <= 0 {
		batchSize = 1
	}

	return func() (float64, error) {
		if len(order) == 0 {
			return 0, datasets.ErrEmpty
		}
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var total float64
		for from := 0; from < len(order); from += batchSize {
			to := min(from+batchSize, len(order))
			x := mat.NewDense(to-from, width, nil)
			y := make([]float64, to-from)
			for i, idx := range order[from:to] {
				copy(x.RawRowView(i), train.X[idx])
				y[i] = train.Y[idx]
			}
			loss, grads, err := net.Backward(x, y)
			if err != nil {
				return 0, err
			}
			opt.Step(grads)
			total += loss * float64(to-from)
		}
		return total / float64(len(order)), nil
	}
}
