package learning

import "math"

import "github.com/pkg/errors"

// Schedule gives the learning rate for an epoch, counted from 0.
type Schedule interface {
	Rate(epoch int) float64
}

// Constant keeps the learning rate
type Constant float64

func (c Constant) Rate(int) float64 {
	return float64(c)
}

// StepLR multiplies the learning rate by Gamma every StepSize epochs.
type StepLR struct {
	Base     float64
	StepSize int
	Gamma    float64
}

func (s StepLR) Rate(epoch int) float64 {
	return s.Base * math.Pow(s.Gamma, float64(epoch/s.StepSize))
}

// ExponentialLR multiplies the learning rate by Gamma every epoch.
type ExponentialLR struct {
	Base  float64
	Gamma float64
}

func (e ExponentialLR) Rate(epoch int) float64 {
	return e.Base * math.Pow(e.Gamma, float64(epoch))
}

// LinearLR decays the learning rate linearly to 0 over Epochs.
type LinearLR struct {
	Base   float64
	Epochs int
}

func (l LinearLR) Rate(epoch int) float64 {
	if epoch >= l.Epochs {
		return 0
	}
	return l.Base * (1 - float64(epoch)/float64(l.Epochs))
}

// NewSchedule picks the schedule named by h.Schedule
func NewSchedule(h HyperParameters) (Schedule, error) {
	switch h.Schedule {
	case "step":
		if h.StepSize <= 0 {
			return nil, errors.Errorf("step schedule needs a positive step size, got %d", h.StepSize)
		}
		if h.Gamma <= 0 {
			return nil, errors.Errorf("step schedule needs a positive gamma, got %v", h.Gamma)
		}
		return StepLR{Base: h.LearningRate, StepSize: h.StepSize, Gamma: h.Gamma}, nil
	case "exponential":
		if h.Gamma <= 0 {
			return nil, errors.Errorf("exponential schedule needs a positive gamma, got %v", h.Gamma)
		}
		return ExponentialLR{Base: h.LearningRate, Gamma: h.Gamma}, nil
	case "linear":
		return LinearLR{Base: h.LearningRate, Epochs: h.Epochs}, nil
	case "constant", "":
		return Constant(h.LearningRate), nil
	}
	return nil, errors.Errorf("unknown schedule %q", h.Schedule)
}
