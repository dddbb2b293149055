// Package learning implements the optimizer, learning rate schedules and
// hyperparameters used to train the regression networks.
package learning

import "github.com/pkg/errors"

// HyperParameters configure one training run
type HyperParameters struct {
	Hidden     []int  // units of each hidden layer
	Activation string // hidden layer activation: relu, tanh or identity

	Epochs    int // passes over the training set
	BatchSize int // samples per Adam step

	LearningRate float64 // initial Adam step size
	Beta1        float64 // first moment decay
	Beta2        float64 // second moment decay
	Eps          float64 // denominator guard
	WeightDecay  float64 // L2 penalty added to the gradient, 0 disables

	Schedule string  // step, exponential, linear or constant
	StepSize int     // epochs between decays of the step schedule
	Gamma    float64 // decay factor of the step and exponential schedules

	TrainFraction float64 // share of rows used for training, the rest is the test set
	Seed          int64   // seeds weight init and shuffling
	Threads       int     // workers for evaluation, 0 is one per core
}

// Defaults returns the hyperparameters used when nothing is configured.
func Defaults() HyperParameters {
	return HyperParameters{
		Hidden:        []int{64, 32},
		Activation:    "relu",
		Epochs:        200,
		BatchSize:     64,
		LearningRate:  1e-3,
		Beta1:         0.9,
		Beta2:         0.999,
		Eps:           1e-8,
		Schedule:      "step",
		StepSize:      50,
		Gamma:         0.5,
		TrainFraction: 0.8,
		Seed:          42,
	}
}

// Validate reports the first unusable setting
func (h HyperParameters) Validate() error {
	for i, n := range h.Hidden {
		if n <= 0 {
			return errors.Errorf("hidden layer %d has %d units", i, n)
		}
	}
	switch {
	case h.Epochs <= 0:
		return errors.Errorf("epochs must be positive, got %d", h.Epochs)
	case h.BatchSize <= 0:
		return errors.Errorf("batch size must be positive, got %d", h.BatchSize)
	case h.LearningRate <= 0:
		return errors.Errorf("learning rate must be positive, got %v", h.LearningRate)
	case h.Beta1 < 0 || h.Beta1 >= 1:
		return errors.Errorf("beta1 must be in [0, 1), got %v", h.Beta1)
	case h.Beta2 < 0 || h.Beta2 >= 1:
		return errors.Errorf("beta2 must be in [0, 1), got %v", h.Beta2)
	case h.Eps <= 0:
		return errors.Errorf("eps must be positive, got %v", h.Eps)
	case h.WeightDecay < 0:
		return errors.Errorf("weight decay must not be negative, got %v", h.WeightDecay)
	case h.TrainFraction <= 0 || h.TrainFraction >= 1:
		return errors.Errorf("train fraction must be in (0, 1), got %v", h.TrainFraction)
	}
	if _, err := NewSchedule(h); err != nil {
		return err
	}
	return nil
}
