package feedforward

import "math"
import "strings"

import "github.com/pkg/errors"

// Activation is the nonlinearity applied after a dense layer
type Activation byte

const (
	Identity Activation = iota
	ReLU
	Tanh
)

func (a Activation) apply(v float64) float64 {
	switch a {
	case ReLU:
		if v > 0 {
			return v
		}
		return 0
	case Tanh:
		return math.Tanh(v)
	}
	return v
}

// derivative takes the pre-activation value
func (a Activation) derivative(z float64) float64 {
	switch a {
	case ReLU:
		if z > 0 {
			return 1
		}
		return 0
	case Tanh:
		t := math.Tanh(z)
		return 1 - t*t
	}
	return 1
}

func (a Activation) String() string {
	switch a {
	case ReLU:
		return "relu"
	case Tanh:
		return "tanh"
	}
	return "identity"
}

// ParseActivation parses the name returned by String
func ParseActivation(name string) (Activation, error) {
	switch strings.ToLower(name) {
	case "relu":
		return ReLU, nil
	case "tanh":
		return Tanh, nil
	case "identity", "linear", "":
		return Identity, nil
	}
	return 0, errors.Errorf("unknown activation %q", name)
}
